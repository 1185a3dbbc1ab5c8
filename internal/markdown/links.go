package markdown

import "strings"

type LinkKind string

const (
	LinkKindInline              LinkKind = "inline"
	LinkKindImage               LinkKind = "image"
	LinkKindAuto                LinkKind = "auto"
	LinkKindReferenceDefinition LinkKind = "reference_definition"
)

type Link struct {
	Kind        LinkKind
	Destination string
}

// IsExternal reports whether the destination carries a URL scheme (or is
// protocol-relative) and so points outside the site tree.
func (l Link) IsExternal() bool {
	d := l.Destination
	if strings.HasPrefix(d, "//") {
		return true
	}
	i := strings.IndexByte(d, ':')
	if i <= 0 {
		return false
	}
	for j, c := range d[:i] {
		alpha := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
		other := (c >= '0' && c <= '9') || c == '+' || c == '.' || c == '-'
		if !alpha && !(j > 0 && other) {
			return false
		}
	}
	return true
}
