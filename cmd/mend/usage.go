package main

import (
	"fmt"
	"os"
)

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  mend [-r root] [-t] [-n] [-d depth] run [file.mend]")
	fmt.Fprintln(os.Stderr, "  mend [-r root] [-t] [-n] [-d depth] <file.mend>")
	fmt.Fprintln(os.Stderr, "  mend deps install")
	fmt.Fprintln(os.Stderr, "  mend deps update [dependency ...]")
	fmt.Fprintln(os.Stderr, "  mend version")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Flags:")
	fmt.Fprintln(os.Stderr, "  -r root   folder imports are resolved against")
	fmt.Fprintln(os.Stderr, "  -t        trace every statement")
	fmt.Fprintln(os.Stderr, "  -n        disable coloured diagnostics")
	fmt.Fprintln(os.Stderr, "  -d depth  maximum nesting depth of calls, loops and imports")
}
