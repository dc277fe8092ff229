package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/voidwyrm-2/Mend/pkg/driver"
)

// dependencyInstaller resolves manifest dependencies into the MEND_HOME
// cache and copies each one into the project's mend_modules folder.
type dependencyInstaller struct {
	manifest *driver.Manifest
	cacheDir string
	git      *gitFetcher
	path     *pathFetcher
	logs     []string
}

func newDependencyInstaller(manifest *driver.Manifest, cacheDir string) *dependencyInstaller {
	var root string
	if manifest != nil {
		root = manifest.Dir()
	}
	return &dependencyInstaller{
		manifest: manifest,
		cacheDir: cacheDir,
		git:      newGitFetcher(cacheDir),
		path:     &pathFetcher{projectDir: root},
		logs:     []string{},
	}
}

// Install brings lock in line with the manifest. It reports whether the
// lockfile changed along with human-readable progress lines.
func (d *dependencyInstaller) Install(lock *driver.Lockfile) (bool, []string, error) {
	if d.manifest == nil {
		return false, d.logs, nil
	}
	changed := false
	modules := d.manifest.ModulesPath()

	for _, name := range d.manifest.DependencyNames() {
		spec := d.manifest.Dependencies[name]
		pkg, srcDir, err := d.resolve(name, spec, lock)
		if err != nil {
			return false, d.logs, fmt.Errorf("dependency %q: %w", name, err)
		}
		dest := filepath.Join(modules, name)
		if err := copyOrSyncDir(srcDir, dest); err != nil {
			return false, d.logs, fmt.Errorf("dependency %q: copy %s -> %s: %w", name, srcDir, dest, err)
		}
		if lock.Upsert(pkg) {
			changed = true
		}
		d.logs = append(d.logs, fmt.Sprintf("Installed %s %s (%s)", pkg.Name, pkg.Version, pkg.Source))
	}

	var stale []string
	for _, pkg := range lock.Packages {
		if _, ok := d.manifest.Dependencies[pkg.Name]; !ok {
			stale = append(stale, pkg.Name)
		}
	}
	for _, name := range stale {
		lock.Remove(name)
		if err := os.RemoveAll(filepath.Join(modules, name)); err != nil {
			return false, d.logs, fmt.Errorf("remove stale dependency %q: %w", name, err)
		}
		d.logs = append(d.logs, fmt.Sprintf("Removed %s", name))
		changed = true
	}
	return changed, d.logs, nil
}

func (d *dependencyInstaller) resolve(name string, spec *driver.DependencySpec, lock *driver.Lockfile) (*driver.LockedPackage, string, error) {
	if spec.Path != "" {
		return d.path.Fetch(name, spec)
	}
	locked, ok := lock.Find(name)
	if !ok {
		return d.git.Fetch(name, spec)
	}
	commit, ok := lockedCommit(locked, spec.Git)
	if !ok {
		return d.git.Fetch(name, spec)
	}
	// Reinstall the locked commit rather than whatever the tag or branch
	// points at now.
	pinned := *spec
	pinned.Rev, pinned.Tag, pinned.Branch = commit, "", ""
	pkg, dir, err := d.git.Fetch(name, &pinned)
	if err != nil {
		return nil, "", err
	}
	pkg.Version = locked.Version
	return pkg, dir, nil
}

// lockedCommit extracts the commit from a "git+<url>@<commit>" source when
// the url still matches the manifest.
func lockedCommit(pkg *driver.LockedPackage, url string) (string, bool) {
	prefix := "git+" + strings.TrimSpace(url) + "@"
	if !strings.HasPrefix(pkg.Source, prefix) {
		return "", false
	}
	commit := strings.TrimPrefix(pkg.Source, prefix)
	return commit, commit != ""
}

type pathFetcher struct {
	projectDir string
}

func (p *pathFetcher) Fetch(name string, spec *driver.DependencySpec) (*driver.LockedPackage, string, error) {
	dir := spec.Path
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(p.projectDir, dir)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, "", fmt.Errorf("path dependency %s: %w", spec.Path, err)
	}
	if !info.IsDir() {
		return nil, "", fmt.Errorf("path dependency %s is not a directory", spec.Path)
	}
	checksum, err := dirChecksum(dir)
	if err != nil {
		return nil, "", err
	}
	return &driver.LockedPackage{
		Name:     name,
		Version:  packageVersion(dir),
		Source:   "path:" + spec.Path,
		Checksum: checksum,
	}, dir, nil
}

// packageVersion reads the version of a dependency that ships its own
// mend.yml.
func packageVersion(dir string) string {
	manifest, err := driver.LoadManifest(filepath.Join(dir, driver.ManifestName))
	if err != nil || manifest.Version == "" {
		return "0.0.0"
	}
	return manifest.Version
}
