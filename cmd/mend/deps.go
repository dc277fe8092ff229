package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/voidwyrm-2/Mend/pkg/driver"
)

func runDeps(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "mend deps requires a subcommand (install, update)")
		return 1
	}
	switch args[0] {
	case "install":
		if len(args) > 1 {
			fmt.Fprintf(os.Stderr, "mend deps install does not take arguments (received %s)\n", strings.Join(args[1:], " "))
			return 1
		}
		return runDepsInstall()
	case "update":
		return runDepsUpdate(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown deps subcommand %q\n", args[0])
		return 1
	}
}

// depsContext is what both deps subcommands load before installing.
type depsContext struct {
	manifest    *driver.Manifest
	cacheDir    string
	lock        *driver.Lockfile
	lockCreated bool
}

func loadDepsContext() (*depsContext, bool) {
	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to determine working directory: %v\n", err)
		return nil, false
	}
	manifestPath, err := driver.FindManifest(cwd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "unable to locate %s: %v\n", driver.ManifestName, err)
		return nil, false
	}
	manifest, err := driver.LoadManifest(manifestPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read manifest: %v\n", err)
		return nil, false
	}
	cacheDir, err := resolveMendHome()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to resolve MEND_HOME: %v\n", err)
		return nil, false
	}

	ctx := &depsContext{manifest: manifest, cacheDir: cacheDir}
	lockPath := lockfilePath(manifest)
	lock, err := driver.LoadLockfile(lockPath)
	switch {
	case err == nil:
		if lock.Root != manifest.Name {
			fmt.Fprintf(os.Stderr, "lockfile root %q does not match manifest name %q\n", lock.Root, manifest.Name)
			return nil, false
		}
	case errors.Is(err, os.ErrNotExist):
		lock = driver.NewLockfile(manifest.Name, cliToolVersion)
		ctx.lockCreated = true
	default:
		fmt.Fprintf(os.Stderr, "failed to read lockfile: %v\n", err)
		return nil, false
	}
	lock.Path = lockPath
	lock.Tool = cliToolVersion
	ctx.lock = lock
	return ctx, true
}

func runDepsInstall() int {
	ctx, ok := loadDepsContext()
	if !ok {
		return 1
	}
	manifest, lock := ctx.manifest, ctx.lock

	fmt.Fprintf(os.Stdout, "Manifest: %s\n", manifest.Path)
	fmt.Fprintf(os.Stdout, "Root package: %s\n", manifest.Name)
	fmt.Fprintf(os.Stdout, "Dependencies: %d\n", len(manifest.Dependencies))
	fmt.Fprintf(os.Stdout, "Cache directory: %s\n", ctx.cacheDir)

	installer := newDependencyInstaller(manifest, ctx.cacheDir)
	changed, logs, err := installer.Install(lock)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to resolve dependencies: %v\n", err)
		return 1
	}
	for _, line := range logs {
		fmt.Fprintln(os.Stdout, line)
	}

	if changed || ctx.lockCreated {
		action := "Updated"
		if ctx.lockCreated {
			action = "Created"
		}
		if err := driver.WriteLockfile(lock, lock.Path); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write lockfile: %v\n", err)
			return 1
		}
		fmt.Fprintf(os.Stdout, "%s %s: %s\n", action, driver.LockfileName, lock.Path)
	} else {
		fmt.Fprintf(os.Stdout, "%s already up to date: %s\n", driver.LockfileName, lock.Path)
	}

	fmt.Fprintln(os.Stdout, "Dependencies installed.")
	return 0
}

func runDepsUpdate(targets []string) int {
	ctx, ok := loadDepsContext()
	if !ok {
		return 1
	}
	manifest, lock := ctx.manifest, ctx.lock

	updateSet := make(map[string]struct{}, len(targets))
	for _, target := range targets {
		name := strings.TrimSpace(target)
		if _, ok := manifest.Dependencies[name]; !ok {
			fmt.Fprintf(os.Stderr, "dependency %q not declared in manifest\n", target)
			return 1
		}
		updateSet[name] = struct{}{}
	}

	// Dropping a locked entry makes the installer resolve it afresh.
	if len(updateSet) == 0 {
		lock.Packages = nil
	} else {
		for name := range updateSet {
			lock.Remove(name)
		}
	}

	installer := newDependencyInstaller(manifest, ctx.cacheDir)
	changed, logs, err := installer.Install(lock)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to update dependencies: %v\n", err)
		return 1
	}
	for _, line := range logs {
		fmt.Fprintln(os.Stdout, line)
	}

	if changed || ctx.lockCreated {
		if err := driver.WriteLockfile(lock, lock.Path); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write lockfile: %v\n", err)
			return 1
		}
		fmt.Fprintf(os.Stdout, "Updated %s: %s\n", driver.LockfileName, lock.Path)
	} else {
		fmt.Fprintln(os.Stdout, "Dependencies already up to date.")
	}
	return 0
}
