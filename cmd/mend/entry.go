package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/voidwyrm-2/Mend/pkg/diag"
	"github.com/voidwyrm-2/Mend/pkg/driver"
	"github.com/voidwyrm-2/Mend/pkg/interpreter"
)

func runEntry(args []string, opts *cliOptions) int {
	if len(args) > 1 {
		fmt.Fprintf(os.Stderr, "unexpected arguments: %s\n", strings.Join(args[1:], " "))
		return 1
	}

	var (
		manifest  *driver.Manifest
		entryPath string
		err       error
	)
	if len(args) == 0 {
		manifest, err = loadManifestFrom(".")
		if err != nil {
			if errors.Is(err, driver.ErrManifestNotFound) {
				fmt.Fprintf(os.Stderr, "mend run requires a source file (%s not found)\n", driver.ManifestName)
			} else {
				fmt.Fprintf(os.Stderr, "failed to load manifest: %v\n", err)
			}
			return 1
		}
		entryPath = manifest.EntryPath()
		if entryPath == "" {
			fmt.Fprintf(os.Stderr, "manifest %s does not declare an entry\n", manifest.Path)
			return 1
		}
	} else {
		entryPath, err = filepath.Abs(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to resolve %s: %v\n", args[0], err)
			return 1
		}
		manifest, err = loadManifestFrom(filepath.Dir(entryPath))
		if err != nil {
			if !errors.Is(err, driver.ErrManifestNotFound) {
				fmt.Fprintf(os.Stderr, "failed to read manifest for %s: %v\n", args[0], err)
				return 1
			}
			manifest = nil
		}
	}

	if _, err := loadLockfileForManifest(manifest); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	return executeEntry(entryPath, importRootFor(opts, manifest, entryPath), opts)
}

func loadManifestFrom(start string) (*driver.Manifest, error) {
	path, err := driver.FindManifest(start)
	if err != nil {
		return nil, err
	}
	return driver.LoadManifest(path)
}

// importRootFor picks -r, then the manifest root, then the entry's folder.
func importRootFor(opts *cliOptions, manifest *driver.Manifest, entryPath string) string {
	if opts.root != "" {
		if abs, err := filepath.Abs(opts.root); err == nil {
			return abs
		}
		return opts.root
	}
	if manifest != nil {
		return manifest.ImportRoot()
	}
	return filepath.Dir(entryPath)
}

func executeEntry(entryPath, root string, opts *cliOptions) int {
	interp := interpreter.New(interpreter.Options{
		Input:    interpreter.NewReaderInput(os.Stdin),
		Output:   os.Stdout,
		Reporter: diag.NewTextReporter(os.Stderr, opts.color),
		Trace:    os.Stderr,
		TraceAll: opts.traceAll,
		MaxDepth: opts.maxDepth,
	})
	res, err := interp.RunFile(entryPath, root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	if res.Failed() {
		return 1
	}
	return 0
}
