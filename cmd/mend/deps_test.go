package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/voidwyrm-2/Mend/pkg/driver"
)

func TestDepsInstallGitDependencyAndRun(t *testing.T) {
	root := t.TempDir()
	repo := filepath.Join(root, "gitlib")
	writeFile(t, filepath.Join(repo, "lib.mend"), `immut libname as "gitlib"`)
	rev := initGitRepo(t, repo)

	project := filepath.Join(root, "app")
	writeFile(t, filepath.Join(project, "mend.yml"), `
name: app
version: "0.1.0"
entry: main.mend
dependencies:
  gitlib:
    git: `+repo+`
    rev: `+rev+`
`)
	writeFile(t, filepath.Join(project, "main.mend"), `
import "mend_modules/gitlib/lib.mend"
log libname
`)
	t.Setenv("MEND_HOME", filepath.Join(root, "cache"))
	chdir(t, project)

	code, stdout, stderr := captureCLI(t, []string{"deps", "install"})
	if code != 0 {
		t.Fatalf("mend deps install exited %d (stderr: %q)", code, stderr)
	}
	if !strings.Contains(stdout, "Created mend.lock") {
		t.Fatalf("expected lockfile creation, got %q", stdout)
	}

	lock, err := driver.LoadLockfile(filepath.Join(project, driver.LockfileName))
	if err != nil {
		t.Fatalf("LoadLockfile: %v", err)
	}
	pkg, ok := lock.Find("gitlib")
	if !ok || len(lock.Packages) != 1 {
		t.Fatalf("lock packages unexpected: %#v", lock.Packages)
	}
	if pkg.Version != rev || pkg.Source != "git+"+repo+"@"+rev || pkg.Checksum == "" {
		t.Fatalf("unexpected lock entry %#v", pkg)
	}
	if _, err := os.Stat(filepath.Join(project, driver.ModulesDir, "gitlib", ".git")); !os.IsNotExist(err) {
		t.Fatalf("expected git metadata to stay out of mend_modules, got %v", err)
	}

	code, stdout, stderr = captureCLI(t, []string{"-n", "run"})
	if code != 0 || stdout != "gitlib\n" {
		t.Fatalf("mend run exited %d with %q (stderr: %q)", code, stdout, stderr)
	}

	code, stdout, stderr = captureCLI(t, []string{"deps", "install"})
	if code != 0 || !strings.Contains(stdout, "mend.lock already up to date") {
		t.Fatalf("expected no-op reinstall, got %d %q (stderr: %q)", code, stdout, stderr)
	}
}

func TestDepsInstallKeepsLockedBranchCommitUntilUpdate(t *testing.T) {
	root := t.TempDir()
	repo := filepath.Join(root, "colors")
	writeFile(t, filepath.Join(repo, "lib.mend"), `immut shade as "red"`)
	first := initGitRepo(t, repo)

	project := filepath.Join(root, "app")
	writeFile(t, filepath.Join(project, "mend.yml"), `
name: app
dependencies:
  colors:
    git: `+repo+`
    branch: master
`)
	t.Setenv("MEND_HOME", filepath.Join(root, "cache"))
	chdir(t, project)

	if code, _, stderr := captureCLI(t, []string{"deps", "install"}); code != 0 {
		t.Fatalf("mend deps install exited %d (stderr: %q)", code, stderr)
	}
	lockPath := filepath.Join(project, driver.LockfileName)
	lock, err := driver.LoadLockfile(lockPath)
	if err != nil {
		t.Fatalf("LoadLockfile: %v", err)
	}
	if pkg, _ := lock.Find("colors"); pkg == nil || pkg.Version != "master@"+first {
		t.Fatalf("expected branch pinned to first commit, got %#v", lock.Packages)
	}

	second := commitFile(t, repo, "lib.mend", `immut shade as "blue"`)

	if code, _, stderr := captureCLI(t, []string{"deps", "install"}); code != 0 {
		t.Fatalf("reinstall exited %d (stderr: %q)", code, stderr)
	}
	installed := filepath.Join(project, driver.ModulesDir, "colors", "lib.mend")
	if data, _ := os.ReadFile(installed); !strings.Contains(string(data), "red") {
		t.Fatalf("expected locked commit to stay installed, got %q", data)
	}

	code, stdout, stderr := captureCLI(t, []string{"deps", "update", "colors"})
	if code != 0 || !strings.Contains(stdout, "Updated mend.lock") {
		t.Fatalf("mend deps update exited %d with %q (stderr: %q)", code, stdout, stderr)
	}
	lock, err = driver.LoadLockfile(lockPath)
	if err != nil {
		t.Fatalf("LoadLockfile: %v", err)
	}
	if pkg, _ := lock.Find("colors"); pkg == nil || pkg.Version != "master@"+second {
		t.Fatalf("expected branch moved to second commit, got %#v", lock.Packages)
	}
	if data, _ := os.ReadFile(installed); !strings.Contains(string(data), "blue") {
		t.Fatalf("expected updated module contents, got %q", data)
	}
}

func TestDepsInstallPathDependencyAndPrune(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "shared", "mend.yml"), `
name: shared
version: "2.0.0"
`)
	writeFile(t, filepath.Join(root, "shared", "util.mend"), `immut util as 1`)

	project := filepath.Join(root, "app")
	writeFile(t, filepath.Join(project, "mend.yml"), `
name: app
dependencies:
  shared: ../shared
`)
	t.Setenv("MEND_HOME", filepath.Join(root, "cache"))
	chdir(t, project)

	if code, _, stderr := captureCLI(t, []string{"deps", "install"}); code != 0 {
		t.Fatalf("mend deps install exited %d (stderr: %q)", code, stderr)
	}
	lock, err := driver.LoadLockfile(filepath.Join(project, driver.LockfileName))
	if err != nil {
		t.Fatalf("LoadLockfile: %v", err)
	}
	pkg, ok := lock.Find("shared")
	if !ok || pkg.Version != "2.0.0" || pkg.Source != "path:../shared" {
		t.Fatalf("unexpected path entry %#v", pkg)
	}
	modulePath := filepath.Join(project, driver.ModulesDir, "shared", "util.mend")
	if _, err := os.Stat(modulePath); err != nil {
		t.Fatalf("expected copied module: %v", err)
	}

	writeFile(t, filepath.Join(project, "mend.yml"), `name: app`)
	code, stdout, stderr := captureCLI(t, []string{"deps", "install"})
	if code != 0 || !strings.Contains(stdout, "Removed shared") {
		t.Fatalf("expected stale dependency removal, got %d %q (stderr: %q)", code, stdout, stderr)
	}
	if _, err := os.Stat(modulePath); !os.IsNotExist(err) {
		t.Fatalf("expected module to be pruned, got %v", err)
	}
	lock, err = driver.LoadLockfile(filepath.Join(project, driver.LockfileName))
	if err != nil {
		t.Fatalf("LoadLockfile: %v", err)
	}
	if len(lock.Packages) != 0 {
		t.Fatalf("expected empty lock, got %#v", lock.Packages)
	}
}

func TestDepsUpdateRejectsUnknownDependency(t *testing.T) {
	project := t.TempDir()
	writeFile(t, filepath.Join(project, "mend.yml"), `name: app`)
	t.Setenv("MEND_HOME", filepath.Join(project, ".cache"))
	chdir(t, project)

	code, _, stderr := captureCLI(t, []string{"deps", "update", "ghost"})
	if code != 1 || !strings.Contains(stderr, `dependency "ghost" not declared in manifest`) {
		t.Fatalf("expected unknown dependency error, got %d %q", code, stderr)
	}
}

func TestDepsSubcommandErrors(t *testing.T) {
	if code, _, stderr := captureCLI(t, []string{"deps"}); code != 1 || !strings.Contains(stderr, "requires a subcommand") {
		t.Fatalf("expected missing subcommand error, got %d %q", code, stderr)
	}
	if code, _, stderr := captureCLI(t, []string{"deps", "prune"}); code != 1 || !strings.Contains(stderr, "unknown deps subcommand") {
		t.Fatalf("expected unknown subcommand error, got %d %q", code, stderr)
	}
	if code, _, stderr := captureCLI(t, []string{"deps", "install", "extra"}); code != 1 || !strings.Contains(stderr, "does not take arguments") {
		t.Fatalf("expected argument error, got %d %q", code, stderr)
	}
}

func TestGitRevisionFromSpec(t *testing.T) {
	cases := []struct {
		spec       driver.DependencySpec
		revision   string
		descriptor string
	}{
		{driver.DependencySpec{Rev: "abc123"}, "abc123", "abc123"},
		{driver.DependencySpec{Tag: "v1.0"}, "refs/tags/v1.0", "v1.0"},
		{driver.DependencySpec{Branch: "main"}, "refs/heads/main", "main"},
	}
	for _, tc := range cases {
		rev, desc, err := gitRevisionFromSpec(&tc.spec)
		if err != nil {
			t.Fatalf("gitRevisionFromSpec(%#v): %v", tc.spec, err)
		}
		if string(rev) != tc.revision || desc != tc.descriptor {
			t.Fatalf("expected %q/%q, got %q/%q", tc.revision, tc.descriptor, rev, desc)
		}
	}
	if _, _, err := gitRevisionFromSpec(&driver.DependencySpec{Git: "x"}); err == nil {
		t.Fatalf("expected error for unpinned spec")
	}
	if got := gitPinnedVersion("v1.0", "abc"); got != "v1.0@abc" {
		t.Fatalf("gitPinnedVersion = %q", got)
	}
	if got := sanitizePathSegment("v1.0@abc/def"); got != "v1.0_abc_def" {
		t.Fatalf("sanitizePathSegment = %q", got)
	}
}

func TestDirChecksumIgnoresGitMetadata(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "lib.mend"), `immut a as 1`)
	before, err := dirChecksum(dir)
	if err != nil {
		t.Fatalf("dirChecksum: %v", err)
	}
	writeFile(t, filepath.Join(dir, ".git", "HEAD"), `ref: refs/heads/master`)
	after, err := dirChecksum(dir)
	if err != nil {
		t.Fatalf("dirChecksum: %v", err)
	}
	if before != after {
		t.Fatalf("expected .git to be ignored")
	}
	writeFile(t, filepath.Join(dir, "lib.mend"), `immut a as 2`)
	changed, err := dirChecksum(dir)
	if err != nil {
		t.Fatalf("dirChecksum: %v", err)
	}
	if changed == before {
		t.Fatalf("expected content change to alter the checksum")
	}
}

func commitFile(t *testing.T, dir, rel, contents string) string {
	t.Helper()
	writeFile(t, filepath.Join(dir, rel), contents)
	repo, err := git.PlainOpen(dir)
	if err != nil {
		t.Fatalf("PlainOpen: %v", err)
	}
	worktree, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Worktree: %v", err)
	}
	if _, err := worktree.Add(rel); err != nil {
		t.Fatalf("Add: %v", err)
	}
	hash, err := worktree.Commit("update "+rel, &git.CommitOptions{
		Author: &object.Signature{
			Name:  "Mend CLI",
			Email: "mend@example.com",
			When:  time.Now(),
		},
	})
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	return hash.String()
}
