package site

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"git.home.luguber.info/inful/refdocs/internal/config"
	"git.home.luguber.info/inful/refdocs/internal/pagemeta"
	"git.home.luguber.info/inful/refdocs/internal/theme"
)

// UninstallResult summarizes what an uninstall removed and preserved.
type UninstallResult struct {
	Removed int      // files and trees deleted
	Kept    []string // managed pages preserved because the user edited them
}

// Uninstall removes the generated files from the docs workspace. Managed
// content pages are deleted only while still tool-owned; user-edited pages
// and the narrative sources always stay.
func Uninstall(cfg *config.Config, projectRoot string) (*UninstallResult, error) {
	g := NewGenerator(cfg, projectRoot)
	res := &UninstallResult{}

	manifest, err := LoadManifest(g.stateDir())
	if err != nil {
		return nil, err
	}
	rels := make([]string, 0, len(manifest))
	for rel := range manifest {
		rels = append(rels, rel)
	}
	sort.Strings(rels)

	for _, rel := range rels {
		path := filepath.Join(g.contentDir(), filepath.FromSlash(rel))
		data, rerr := os.ReadFile(path)
		if errors.Is(rerr, fs.ErrNotExist) {
			continue
		}
		if rerr != nil {
			return nil, rerr
		}
		pristine, perr := pagemeta.Pristine(data)
		if perr != nil || !pristine {
			res.Kept = append(res.Kept, rel)
			continue
		}
		if err := os.Remove(path); err != nil {
			return nil, err
		}
		res.Removed++
	}
	pruneEmptyDirs(g.contentDir())

	for rel := range layoutFiles {
		res.removeFile(filepath.Join(g.docsDir, rel))
	}
	pruneEmptyDirs(filepath.Join(g.docsDir, "layouts"))

	staticNames := append(theme.AssetNames(), "llms.txt", "source-links.json", "github-stats.json")
	for _, name := range staticNames {
		res.removeFile(filepath.Join(g.staticDir(), name))
	}
	pruneEmptyDirs(g.staticDir())

	res.removeFile(filepath.Join(g.docsDir, "hugo.yaml"))
	if data, err := os.ReadFile(filepath.Join(g.docsDir, ".gitignore")); err == nil && string(data) == gitignoreTemplate {
		res.removeFile(filepath.Join(g.docsDir, ".gitignore"))
	}

	res.removeTree(g.PublicDir())
	res.removeTree(g.PublicDir() + ".prev")
	for _, stale := range staleStagingDirs(g.docsDir) {
		res.removeTree(stale)
	}
	res.removeTree(g.stateDir())

	return res, nil
}

func (r *UninstallResult) removeFile(path string) {
	if err := os.Remove(path); err == nil {
		r.Removed++
	}
}

func (r *UninstallResult) removeTree(path string) {
	if _, err := os.Stat(path); err != nil {
		return
	}
	if err := os.RemoveAll(path); err == nil {
		r.Removed++
	}
}

// pruneEmptyDirs removes now-empty directories bottom up, including root
// itself when nothing is left.
func pruneEmptyDirs(root string) {
	var dirs []string
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err == nil && d.IsDir() {
			dirs = append(dirs, path)
		}
		return nil
	})
	sort.Sort(sort.Reverse(sort.StringSlice(dirs)))
	for _, d := range dirs {
		// Fails while non-empty, which is exactly the check we want.
		_ = os.Remove(d)
	}
}
