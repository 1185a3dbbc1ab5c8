package markdown

import (
	"bytes"
	"strings"
)

// ShiftHeadings demotes every ATX heading by n levels, clamped at h6.
// Headings inside fenced or indented code blocks are left alone.
//
// Embedding a README under a page that supplies its own title needs the
// README's h1 to become h2 so the document keeps a single top-level heading.
func ShiftHeadings(body []byte, n int) []byte {
	if n <= 0 {
		return body
	}

	var edits []Edit
	offset := 0
	inFence := false
	fence := ""

	for _, line := range splitLinesKeepEnds(body) {
		trimmed := strings.TrimSpace(string(line))
		switch {
		case strings.HasPrefix(trimmed, "```"):
			inFence, fence = toggleFencedBlock(inFence, fence, "```")
		case strings.HasPrefix(trimmed, "~~~"):
			inFence, fence = toggleFencedBlock(inFence, fence, "~~~")
		case !inFence && !strings.HasPrefix(string(line), "    ") && !strings.HasPrefix(string(line), "\t"):
			if at, level := atxHeading(line); level > 0 {
				grow := min(n, 6-level)
				if grow > 0 {
					edits = append(edits, Edit{
						Start:       offset + at,
						End:         offset + at,
						Replacement: bytes.Repeat([]byte("#"), grow),
					})
				}
			}
		}
		offset += len(line)
	}

	out, err := ApplyEdits(body, edits)
	if err != nil {
		// Edits are insertion points computed from the same walk; they
		// cannot overlap.
		return body
	}
	return out
}

// StripLeadingH1 removes the document's first line when it is an h1,
// together with following blank lines. Companion pages get their title from
// frontmatter, so a leading `# Title` would render twice.
func StripLeadingH1(body []byte) []byte {
	lines := splitLinesKeepEnds(body)
	if len(lines) == 0 {
		return body
	}
	if at, level := atxHeading(lines[0]); at != 0 || level != 1 {
		return body
	}
	rest := body[len(lines[0]):]
	return bytes.TrimLeft(rest, " \t\r\n")
}

// atxHeading reports the offset of the first '#' and the heading level, or
// (0, 0) when the line is not an ATX heading. Up to three leading spaces are
// allowed, per CommonMark.
func atxHeading(line []byte) (at, level int) {
	i := 0
	for i < len(line) && i < 3 && line[i] == ' ' {
		i++
	}
	at = i
	for i < len(line) && line[i] == '#' {
		level++
		i++
	}
	if level == 0 || level > 6 {
		return 0, 0
	}
	if i < len(line) && line[i] != ' ' && line[i] != '\t' && line[i] != '\n' && line[i] != '\r' {
		return 0, 0
	}
	return at, level
}

func splitLinesKeepEnds(body []byte) [][]byte {
	var lines [][]byte
	start := 0
	for i, c := range body {
		if c == '\n' {
			lines = append(lines, body[start:i+1])
			start = i + 1
		}
	}
	if start < len(body) {
		lines = append(lines, body[start:])
	}
	return lines
}
