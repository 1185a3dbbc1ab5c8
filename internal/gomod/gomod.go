// Package gomod reads module facts from a project's go.mod file.
package gomod

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/mod/modfile"
)

// Info holds the module facts the generator needs.
type Info struct {
	ModulePath string
	GoVersion  string
	Deps       []Dep // direct requirements only
	Dir        string
}

// Dep is a direct module requirement.
type Dep struct {
	Path    string
	Version string
}

// Read parses <projectRoot>/go.mod.
func Read(projectRoot string) (*Info, error) {
	path := filepath.Join(projectRoot, "go.mod")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read go.mod: %w", err)
	}

	file, err := modfile.Parse(path, data, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to parse go.mod: %w", err)
	}
	if file.Module == nil || file.Module.Mod.Path == "" {
		return nil, fmt.Errorf("go.mod at %s has no module directive", path)
	}

	info := &Info{
		ModulePath: file.Module.Mod.Path,
		Dir:        projectRoot,
	}
	if file.Go != nil {
		info.GoVersion = file.Go.Version
	}
	for _, req := range file.Require {
		if req.Indirect {
			continue
		}
		info.Deps = append(info.Deps, Dep{Path: req.Mod.Path, Version: req.Mod.Version})
	}
	return info, nil
}

var majorSuffix = regexp.MustCompile(`^v[2-9][0-9]*$`)

// Name returns the short module name: the last path element, skipping a
// trailing major-version element like /v2.
func (i *Info) Name() string {
	path := strings.TrimSuffix(i.ModulePath, "/")
	elems := strings.Split(path, "/")
	for len(elems) > 1 && majorSuffix.MatchString(elems[len(elems)-1]) {
		elems = elems[:len(elems)-1]
	}
	return elems[len(elems)-1]
}
