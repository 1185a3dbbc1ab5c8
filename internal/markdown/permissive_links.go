package markdown

import "strings"

// extractPermissiveLinks scans for inline links, images and reference
// definitions whose destinations contain whitespace. CommonMark rejects
// those, so the strict parse cannot have reported them already.
func extractPermissiveLinks(body []byte) []Link {
	inFence := false
	fence := ""

	out := make([]Link, 0)
	for _, line := range strings.Split(string(body), "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			inFence, fence = toggleFencedBlock(inFence, fence, "```")
			continue
		}
		if strings.HasPrefix(trimmed, "~~~") {
			inFence, fence = toggleFencedBlock(inFence, fence, "~~~")
			continue
		}
		if inFence || strings.HasPrefix(line, "    ") || strings.HasPrefix(line, "\t") {
			continue
		}

		clean := stripInlineCodeSpans(line)
		out = append(out, inlineTargetsWithWhitespace(clean)...)
		if link, ok := referenceDefinitionWithWhitespace(clean); ok {
			out = append(out, link)
		}
	}
	return out
}

// inlineTargetsWithWhitespace finds `](dest)` and `![...](dest)` targets on
// a single line.
func inlineTargetsWithWhitespace(line string) []Link {
	var links []Link
	for i := 0; i+1 < len(line); i++ {
		if line[i] != ']' || line[i+1] != '(' {
			continue
		}
		end := strings.Index(line[i+2:], ")")
		if end == -1 {
			continue
		}
		target := line[i+2 : i+2+end]
		if !strings.ContainsAny(target, " \t") {
			continue
		}

		kind := LinkKindInline
		if open := strings.LastIndex(line[:i], "["); open > 0 && line[open-1] == '!' {
			kind = LinkKindImage
		} else if open == -1 {
			continue
		}
		links = append(links, Link{Kind: kind, Destination: target})
	}
	return links
}

func referenceDefinitionWithWhitespace(line string) (Link, bool) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "[") {
		return Link{}, false
	}
	label, after, ok := strings.Cut(trimmed, "]:")
	if !ok {
		return Link{}, false
	}
	// Footnote definitions ([^1]: ...) are not reference link definitions.
	if strings.HasPrefix(strings.TrimSpace(label), "[^") {
		return Link{}, false
	}

	target := strings.TrimSpace(after)
	if before, _, ok := strings.Cut(target, " \""); ok {
		target = before
	} else if before, _, ok := strings.Cut(target, " '"); ok {
		target = before
	}
	target = strings.TrimSpace(target)
	if target == "" || !strings.ContainsAny(target, " \t") {
		return Link{}, false
	}
	return Link{Kind: LinkKindReferenceDefinition, Destination: target}, true
}

func toggleFencedBlock(inFence bool, active, fence string) (bool, string) {
	if !inFence {
		return true, fence
	}
	if active == fence {
		return false, ""
	}
	return inFence, active
}

// stripInlineCodeSpans removes `code` spans so bracket syntax inside them is
// not mistaken for links.
func stripInlineCodeSpans(s string) string {
	if !strings.Contains(s, "`") {
		return s
	}

	var out strings.Builder
	out.Grow(len(s))
	for i := 0; i < len(s); {
		if s[i] != '`' {
			out.WriteByte(s[i])
			i++
			continue
		}
		run := 1
		for i+run < len(s) && s[i+run] == '`' {
			run++
		}
		marker := strings.Repeat("`", run)
		closeRel := strings.Index(s[i+run:], marker)
		if closeRel == -1 {
			// Unclosed span; keep the backticks.
			out.WriteString(marker)
			i += run
			continue
		}
		i = i + run + closeRel + run
	}
	return out.String()
}
