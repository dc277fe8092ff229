package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/voidwyrm-2/Mend/pkg/driver"
)

func resolveMendHome() (string, error) {
	if home := strings.TrimSpace(os.Getenv("MEND_HOME")); home != "" {
		abs, err := filepath.Abs(home)
		if err != nil {
			return "", fmt.Errorf("resolve MEND_HOME %q: %w", home, err)
		}
		return abs, nil
	}
	userHome, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve user home: %w", err)
	}
	return filepath.Join(userHome, ".mend"), nil
}

func lockfilePath(manifest *driver.Manifest) string {
	return filepath.Join(manifest.Dir(), driver.LockfileName)
}

// loadLockfileForManifest returns nil when the project has no lockfile and
// needs none.
func loadLockfileForManifest(manifest *driver.Manifest) (*driver.Lockfile, error) {
	if manifest == nil {
		return nil, nil
	}
	lock, err := driver.LoadLockfile(lockfilePath(manifest))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if len(manifest.Dependencies) > 0 {
				return nil, fmt.Errorf("%s missing for %q; run `mend deps install`", driver.LockfileName, manifest.Name)
			}
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read lockfile %s: %w", lockfilePath(manifest), err)
	}
	if lock.Root != manifest.Name {
		return nil, fmt.Errorf("lockfile root %q does not match manifest name %q", lock.Root, manifest.Name)
	}
	for _, name := range manifest.DependencyNames() {
		if _, ok := lock.Find(name); !ok {
			return nil, fmt.Errorf("dependency %q is not locked; run `mend deps install`", name)
		}
	}
	return lock, nil
}
