package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"git.sr.ht/~sircmpwn/getopt"
	"github.com/fatih/color"
)

const cliToolVersion = "mend 0.1.0"

// cliOptions holds the global flags that precede the subcommand.
type cliOptions struct {
	root     string
	traceAll bool
	color    bool
	maxDepth int
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return 1
	}
	switch args[0] {
	case "--help":
		printUsage()
		return 0
	case "--version":
		fmt.Fprintln(os.Stdout, cliToolVersion)
		return 0
	}

	opts, rest, err := parseFlags(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mend: %v\n", err)
		printUsage()
		return 1
	}
	if opts == nil {
		printUsage()
		return 0
	}
	if !opts.color {
		color.NoColor = true
	}
	if len(rest) == 0 {
		printUsage()
		return 1
	}

	switch rest[0] {
	case "help":
		printUsage()
		return 0
	case "version":
		fmt.Fprintln(os.Stdout, cliToolVersion)
		return 0
	case "run":
		return runEntry(rest[1:], opts)
	case "deps":
		return runDeps(rest[1:])
	default:
		return runEntry(rest, opts)
	}
}

// parseFlags consumes the leading flags. A nil options value means -h was
// given.
func parseFlags(args []string) (*cliOptions, []string, error) {
	argv := append([]string{"mend"}, args...)
	parsed, optind, err := getopt.Getopts(argv, "r:tnd:h")
	if err != nil {
		return nil, nil, err
	}
	opts := &cliOptions{color: true}
	for _, opt := range parsed {
		switch opt.Option {
		case 'r':
			opts.root = strings.TrimSpace(opt.Value)
		case 't':
			opts.traceAll = true
		case 'n':
			opts.color = false
		case 'd':
			depth, err := strconv.Atoi(opt.Value)
			if err != nil || depth <= 0 {
				return nil, nil, fmt.Errorf("invalid -d parameter %q: expected a positive integer", opt.Value)
			}
			opts.maxDepth = depth
		case 'h':
			return nil, argv[optind:], nil
		}
	}
	return opts, argv[optind:], nil
}
