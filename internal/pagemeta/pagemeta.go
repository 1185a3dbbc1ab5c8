// Package pagemeta maintains the managed frontmatter fields on generated and
// guide pages: stable uids, uid aliases, content fingerprints and lastmod.
//
// The fingerprint marks a page as tool-owned. Pages whose stored fingerprint
// no longer matches their content are treated as user-edited and are never
// overwritten or removed.
package pagemeta

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/inful/mdfp"

	"git.home.luguber.info/inful/refdocs/internal/frontmatter"
)

const (
	FieldUID     = "uid"
	FieldLastmod = "lastmod"
	FieldAliases = "aliases"
)

// volatileFields are excluded from the canonical fingerprint so that
// stamping a page does not invalidate its own fingerprint.
var volatileFields = []string{mdfp.FingerprintField, FieldLastmod, FieldUID, FieldAliases}

// CanonicalFingerprint computes the content fingerprint of a document.
//
// Canonicalization: volatile fields (fingerprint, lastmod, uid, aliases) are
// excluded, the remaining fields serialize with LF newlines, and a single
// trailing newline is trimmed before hashing.
func CanonicalFingerprint(doc *frontmatter.Document) (string, error) {
	if doc == nil {
		return "", errors.New("document is nil")
	}

	stable := make(map[string]any, len(doc.Fields))
	for k, v := range doc.Fields {
		if slices.Contains(volatileFields, k) {
			continue
		}
		stable[k] = v
	}

	head := ""
	if len(stable) > 0 {
		raw, err := frontmatter.SerializeFields(stable, frontmatter.Style{Newline: "\n"})
		if err != nil {
			return "", err
		}
		head = trimSingleTrailingNewline(string(raw))
	}

	return mdfp.CalculateFingerprintFromParts(head, string(doc.Body)), nil
}

// Stamp upserts the canonical fingerprint and, when it changed, bumps
// lastmod to now in UTC as YYYY-MM-DD.
func Stamp(doc *frontmatter.Document, now time.Time) (changed bool, err error) {
	if doc == nil {
		return false, errors.New("document is nil")
	}

	fp, err := CanonicalFingerprint(doc)
	if err != nil {
		return false, err
	}

	old, _ := doc.Fields[mdfp.FingerprintField].(string)
	if old != fp {
		doc.Set(mdfp.FingerprintField, fp)
		doc.Set(FieldLastmod, now.UTC().Format("2006-01-02"))
		changed = true
	}
	return changed, nil
}

// Pristine reports whether content still carries the fingerprint its fields
// and body hash to. Pages without a fingerprint field are never pristine.
func Pristine(content []byte) (bool, error) {
	doc, err := frontmatter.Parse(content)
	if err != nil {
		return false, err
	}

	stored := doc.String(mdfp.FingerprintField)
	if stored == "" {
		return false, nil
	}

	fp, err := CanonicalFingerprint(doc)
	if err != nil {
		return false, err
	}
	return stored == fp, nil
}

// EnsureUID assigns a fresh uuid when the document has none.
func EnsureUID(doc *frontmatter.Document) (uid string, changed bool) {
	if existing := doc.String(FieldUID); existing != "" {
		return existing, false
	}
	uid = uuid.NewString()
	doc.Set(FieldUID, uid)
	return uid, true
}

// EnsureUIDAlias makes sure aliases contains "/_uid/<uid>/" so inbound links
// survive page renames.
func EnsureUIDAlias(doc *frontmatter.Document, uid string) (changed bool, err error) {
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return false, errors.New("uid is empty")
	}
	expected := "/_uid/" + uid + "/"

	current, ok := doc.Fields[FieldAliases]
	if !ok || current == nil {
		doc.Set(FieldAliases, []string{expected})
		return true, nil
	}

	var list []string
	switch v := current.(type) {
	case []string:
		list = v
	case []any:
		list = make([]string, 0, len(v))
		for _, item := range v {
			list = append(list, strings.TrimSpace(fmt.Sprint(item)))
		}
	default:
		if s := strings.TrimSpace(fmt.Sprint(v)); s != "" {
			list = []string{s}
		}
	}

	if slices.Contains(list, expected) {
		doc.Set(FieldAliases, list)
		return false, nil
	}
	doc.Set(FieldAliases, append(list, expected))
	return true, nil
}

// EnsureTitle sets title to fallback when missing or blank.
func EnsureTitle(doc *frontmatter.Document, fallback string) (changed bool) {
	if doc.String("title") != "" {
		return false
	}
	doc.Set("title", fallback)
	return true
}

// EnsureDate sets date to fallback when missing.
func EnsureDate(doc *frontmatter.Document, fallback time.Time) (changed bool) {
	if doc.Has("date") {
		return false
	}
	doc.Set("date", fallback.Format("2006-01-02T15:04:05-07:00"))
	return true
}

// Load reads and parses a markdown file.
func Load(path string) (*frontmatter.Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return frontmatter.Parse(content)
}

// Write renders the document and writes it to path.
func Write(path string, doc *frontmatter.Document) error {
	out, err := doc.Render()
	if err != nil {
		return err
	}
	return os.WriteFile(path, out, 0o644)
}

func trimSingleTrailingNewline(s string) string {
	if before, ok := strings.CutSuffix(s, "\r\n"); ok {
		return before
	}
	if before, ok := strings.CutSuffix(s, "\n"); ok {
		return before
	}
	return s
}
