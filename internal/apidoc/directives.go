package apidoc

import (
	"go/ast"
	"strconv"
	"strings"
)

// directives are doc-comment annotations, one per line:
//
//	//refdocs:family storage
//	//refdocs:order 2
//	//refdocs:seealso Store
//	//refdocs:hidden
//
// They use Go's tool-directive form (no space after //), so go/doc already
// drops them from the rendered comment text; they are read back here from
// the raw comment group.
type directives struct {
	family  string
	order   int
	hasOrd  bool
	seeAlso []string
	hidden  bool
}

const directivePrefix = "refdocs:"

func parseDirectives(doc *ast.CommentGroup) directives {
	var d directives
	if doc == nil {
		return d
	}

	for _, c := range doc.List {
		line := strings.TrimPrefix(c.Text, "//")
		if !strings.HasPrefix(line, directivePrefix) {
			continue
		}
		verb, arg, _ := strings.Cut(strings.TrimPrefix(line, directivePrefix), " ")
		arg = strings.TrimSpace(arg)

		switch verb {
		case "family":
			if arg != "" {
				d.family = arg
			}
		case "order":
			if n, err := strconv.Atoi(arg); err == nil {
				d.order = n
				d.hasOrd = true
			}
		case "seealso":
			if arg != "" {
				d.seeAlso = append(d.seeAlso, strings.Fields(arg)...)
			}
		case "hidden":
			d.hidden = true
		}
		// Unknown verbs are ignored.
	}
	return d
}
