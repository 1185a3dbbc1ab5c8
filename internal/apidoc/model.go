// Package apidoc builds a documentation model of a Go package's exported
// API using go/parser and go/doc. The model is the single input for
// reference-page generation, source links and llms.txt.
package apidoc

// ObjectKind classifies a documented object.
type ObjectKind string

const (
	KindType     ObjectKind = "type"
	KindFunction ObjectKind = "function"
	KindMethod   ObjectKind = "method"
	KindGroup    ObjectKind = "group"
)

// Package is the documentation model of one Go package.
type Package struct {
	Name       string
	ImportPath string
	Doc        string
	Synopsis   string

	// Sections hold the documented objects in presentation order.
	Sections []*Section

	// Warnings collects non-fatal discovery findings (manifest names that
	// were not found, duplicate includes, and similar).
	Warnings []string
}

// Section is one group of objects on the reference index.
type Section struct {
	Key     string
	Title   string
	Objects []*Object
}

// Object is a single documented API object: a type, a function, a method
// page split out of a large type, or a const/var group.
type Object struct {
	Name     string
	Kind     ObjectKind
	Synopsis string

	// Declaration is the original source text of the declaration, without
	// the doc comment. For functions this stops at the signature.
	Declaration string

	// Doc is the comment text with directive lines already removed.
	Doc string

	// GroupNames lists every name a const/var group declares.
	GroupNames []string

	File string
	Line int

	Constructors []*Member
	Methods      []*Member
	Examples     []*Example

	// Values holds const/var groups go/doc associated with this type.
	Values []*Value

	// SeeAlso holds object names from refdocs:seealso directives.
	SeeAlso []string

	// SplitMethods marks a type whose methods render as their own section.
	SplitMethods bool

	family string
	order  int
}

// Member is a function attached to a type: a constructor or a method.
type Member struct {
	Name        string
	Synopsis    string
	Declaration string
	Doc         string
	File        string
	Line        int
	Examples    []*Example
}

// Value is one const or var declaration group.
type Value struct {
	Names       []string
	Declaration string
	Doc         string
	File        string
	Line        int
}

// orderUnset sorts after every explicit refdocs:order value.
const orderUnset = int(^uint(0) >> 1)

// Example is a runnable Example* function associated with an object.
type Example struct {
	Name   string
	Suffix string
	Code   string
	Output string
}

// Objects returns every object across all sections in presentation order.
func (p *Package) Objects() []*Object {
	var out []*Object
	for _, s := range p.Sections {
		out = append(out, s.Objects...)
	}
	return out
}

// Empty reports whether the model documents nothing.
func (p *Package) Empty() bool {
	for _, s := range p.Sections {
		if len(s.Objects) > 0 {
			return false
		}
	}
	return true
}
