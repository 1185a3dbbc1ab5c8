package frontmatter

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrUnterminatedFrontmatter indicates the document started with a YAML
// frontmatter delimiter but never closed it.
var ErrUnterminatedFrontmatter = errors.New("frontmatter opening delimiter found but closing delimiter is missing")

// Style captures the newline shape of a document so a rewrite stays
// byte-stable for untouched files.
type Style struct {
	Newline            string
	HasTrailingNewline bool
}

// Document is a markdown file split into YAML frontmatter fields and body.
//
// Fields is never nil after Parse. Present records whether the source had a
// `---` delimited block; Render re-emits a block when Present is true or when
// fields were added to a document that had none.
type Document struct {
	Fields  map[string]any
	Body    []byte
	Present bool
	Style   Style
}

// Parse splits content into frontmatter fields and markdown body.
//
// Documents without a leading `---` delimiter parse with Present=false and
// the full input as Body.
func Parse(content []byte) (*Document, error) {
	style := detectStyle(content)
	nl := style.Newline

	doc := &Document{Fields: map[string]any{}, Style: style}

	open := []byte("---" + nl)
	if !bytes.HasPrefix(content, open) {
		doc.Body = content
		return doc, nil
	}

	rest := content[len(open):]
	var raw, body []byte
	switch {
	case bytes.HasPrefix(rest, open):
		// Empty block: `---` immediately followed by `---`.
		body = rest[len(open):]
	default:
		closeSeq := []byte(nl + "---" + nl)
		idx := bytes.Index(rest, closeSeq)
		if idx < 0 {
			return nil, ErrUnterminatedFrontmatter
		}
		raw = rest[:idx+len(nl)]
		body = rest[idx+len(closeSeq):]
	}

	doc.Present = true
	doc.Body = body

	if len(raw) > 0 {
		if err := yaml.Unmarshal(raw, &doc.Fields); err != nil {
			return nil, fmt.Errorf("failed to parse frontmatter: %w", err)
		}
		if doc.Fields == nil {
			doc.Fields = map[string]any{}
		}
	}
	return doc, nil
}

// Render reassembles the document.
//
// A frontmatter block is emitted when the source had one or when fields have
// since been added; a field-less document that never had a block renders as
// its bare body.
func (d *Document) Render() ([]byte, error) {
	if !d.Present && len(d.Fields) == 0 {
		return d.Body, nil
	}

	nl := d.Style.Newline
	if nl == "" {
		nl = "\n"
	}

	raw, err := serializeFields(d.Fields, nl)
	if err != nil {
		return nil, err
	}

	delim := []byte("---" + nl)
	out := make([]byte, 0, 2*len(delim)+len(raw)+len(d.Body))
	out = append(out, delim...)
	out = append(out, raw...)
	out = append(out, delim...)
	out = append(out, d.Body...)
	return out, nil
}

// String returns the field as a trimmed string, or "" when absent.
func (d *Document) String(key string) string {
	v, ok := d.Fields[key]
	if !ok || v == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

// Has reports whether the field is set to a non-nil value.
func (d *Document) Has(key string) bool {
	v, ok := d.Fields[key]
	return ok && v != nil
}

// Set assigns a frontmatter field.
func (d *Document) Set(key string, value any) {
	if d.Fields == nil {
		d.Fields = map[string]any{}
	}
	d.Fields[key] = value
}

func detectStyle(content []byte) Style {
	newline := "\n"
	for i := 0; i+1 < len(content); i++ {
		if content[i] == '\r' && content[i+1] == '\n' {
			newline = "\r\n"
			break
		}
		if content[i] == '\n' {
			break
		}
	}
	return Style{
		Newline:            newline,
		HasTrailingNewline: len(content) > 0 && content[len(content)-1] == '\n',
	}
}
