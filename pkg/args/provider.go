package args

import (
	"fmt"
	"path/filepath"
)

// PathProvider locates installed package resources.
// It is injected wherever a default value depends on the installation layout,
// so that no plan reads process-wide lookup state.
type PathProvider interface {
	// ShareDir returns the share directory of the package (e.g. <prefix>/share/kobuki_description).
	ShareDir(pkg string) (string, error)
}

// SharePrefix resolves packages under a single share root: <Root>/<pkg>.
type SharePrefix struct {
	Root string
}

// ShareDir implements PathProvider.
func (p SharePrefix) ShareDir(pkg string) (string, error) {
	if p.Root == "" {
		return "", fmt.Errorf("share root is not configured (needed for package %q)", pkg)
	}
	if pkg == "" {
		return "", fmt.Errorf("empty package name")
	}
	return filepath.Join(p.Root, pkg), nil
}

// Fixed maps package names to directories. Used in tests and for overlays.
type Fixed map[string]string

// ShareDir implements PathProvider.
func (f Fixed) ShareDir(pkg string) (string, error) {
	dir, ok := f[pkg]
	if !ok {
		return "", fmt.Errorf("package %q not found", pkg)
	}
	return dir, nil
}

// PackageFile joins a path below the share directory of pkg.
func PackageFile(p PathProvider, pkg string, elem ...string) (string, error) {
	dir, err := p.ShareDir(pkg)
	if err != nil {
		return "", err
	}
	return filepath.Join(append([]string{dir}, elem...)...), nil
}
