package site

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/inful/mdfp"

	"git.home.luguber.info/inful/refdocs/internal/frontmatter"
	"git.home.luguber.info/inful/refdocs/internal/pagemeta"
)

// newPage builds a fresh managed document around a markdown body.
func newPage(body string) *frontmatter.Document {
	return &frontmatter.Document{Fields: map[string]any{}, Body: []byte(body), Present: true}
}

// writeManaged stamps and writes a generated page, preserving user edits.
//
// When the target already exists its uid is carried over so /_uid/ links
// stay stable across rebuilds. A page whose stored fingerprint no longer
// matches its content belongs to the user: it is left untouched and the
// build records a warning. Files the frontmatter parser rejects are
// treated the same way.
func (bs *BuildState) writeManaged(stage StageName, relPath string, doc *frontmatter.Document) error {
	path := filepath.Join(bs.Generator.contentDir(), relPath)
	if existing, err := os.ReadFile(path); err == nil {
		pristine, perr := pagemeta.Pristine(existing)
		if perr != nil || !pristine {
			bs.Report.Warn(stage, fmt.Errorf("page %s was edited by hand, keeping the edited version", relPath))
			bs.recordManifest(relPath, storedFingerprint(existing))
			return nil
		}
		if old, perr := frontmatter.Parse(existing); perr == nil {
			if uid := old.String(pagemeta.FieldUID); uid != "" {
				doc.Set(pagemeta.FieldUID, uid)
			}
		}
	}

	uid, _ := pagemeta.EnsureUID(doc)
	if _, err := pagemeta.EnsureUIDAlias(doc, uid); err != nil {
		return fmt.Errorf("page %s: %w", relPath, err)
	}
	if _, err := pagemeta.Stamp(doc, time.Now()); err != nil {
		return fmt.Errorf("stamp page %s: %w", relPath, err)
	}

	out, err := doc.Render()
	if err != nil {
		return fmt.Errorf("render page %s: %w", relPath, err)
	}
	if err := bs.writePage(relPath, out); err != nil {
		return err
	}
	bs.recordManifest(relPath, doc.String(mdfp.FingerprintField))
	return nil
}

// recordManifest notes the fingerprint a managed page carries on disk, for
// the page manifest written in the publish stage.
func (bs *BuildState) recordManifest(relPath, fingerprint string) {
	if bs.Manifest == nil {
		bs.Manifest = map[string]string{}
	}
	bs.Manifest[filepath.ToSlash(relPath)] = fingerprint
}

func storedFingerprint(content []byte) string {
	doc, err := frontmatter.Parse(content)
	if err != nil {
		return ""
	}
	return doc.String(mdfp.FingerprintField)
}
