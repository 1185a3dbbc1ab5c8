package markdown

import (
	"errors"
	"fmt"
	"sort"
)

// Edit is a targeted byte-range replacement. Start and End are offsets into
// the original source with End exclusive; Replacement replaces
// source[Start:End]. Edits keep modifications minimal-diff instead of
// re-rendering Markdown.
type Edit struct {
	Start       int
	End         int
	Replacement []byte
}

// ApplyEdits applies non-overlapping edits to source.
//
// Edits are applied from the end of the file toward the beginning so earlier
// edits do not invalidate the offsets of later ones.
func ApplyEdits(source []byte, edits []Edit) ([]byte, error) {
	if len(edits) == 0 {
		return source, nil
	}

	sorted := make([]Edit, len(edits))
	copy(sorted, edits)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Start == sorted[j].Start {
			return sorted[i].End > sorted[j].End
		}
		return sorted[i].Start > sorted[j].Start
	})

	for i, e := range sorted {
		switch {
		case e.Start < 0 || e.End < e.Start:
			return nil, fmt.Errorf("invalid edit[%d]: bad range [%d,%d)", i, e.Start, e.End)
		case e.End > len(source):
			return nil, fmt.Errorf("invalid edit[%d]: range out of bounds", i)
		case i > 0 && e.End > sorted[i-1].Start:
			// Descending by Start, so the current edit must end at or before
			// the previous edit's start.
			return nil, errors.New("invalid edits: overlapping ranges")
		}
	}

	out := append([]byte(nil), source...)
	for _, e := range sorted {
		next := make([]byte, 0, len(out)-(e.End-e.Start)+len(e.Replacement))
		next = append(next, out[:e.Start]...)
		next = append(next, e.Replacement...)
		next = append(next, out[e.End:]...)
		out = next
	}
	return out, nil
}
