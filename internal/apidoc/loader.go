package apidoc

import (
	"fmt"
	"go/ast"
	"go/doc"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"sort"
	"strings"
)

// LoadOptions selects the package to document and how to shape the model.
type LoadOptions struct {
	// Dir is the package directory on disk.
	Dir string
	// ImportPath is the package's import path, used in headers and links.
	ImportPath string

	// Manifest switches discovery from "every exported name" to "exactly
	// the include list".
	Manifest bool
	Include  []string
	Exclude  []string

	// Families maps a family key to a section title override.
	Families map[string]string

	// LargeTypeThreshold is the method count above which a type's methods
	// split into their own section.
	LargeTypeThreshold int
}

// Load parses the package in opts.Dir and builds its documentation model.
func Load(opts LoadOptions) (*Package, error) {
	l := &loader{
		opts: opts,
		fset: token.NewFileSet(),
		src:  make(map[string][]byte),
	}
	return l.load()
}

type loader struct {
	opts   LoadOptions
	fset   *token.FileSet
	src    map[string][]byte
	docPkg *doc.Package
}

func (l *loader) load() (*Package, error) {
	astPkg, err := l.parseTarget()
	if err != nil {
		return nil, err
	}

	docPkg := doc.New(astPkg, l.opts.ImportPath, doc.PreserveAST)
	l.docPkg = docPkg

	pkg := &Package{
		Name:       docPkg.Name,
		ImportPath: l.opts.ImportPath,
		Doc:        docPkg.Doc,
		Synopsis:   docPkg.Synopsis(docPkg.Doc),
	}

	filter := newNameFilter(l.opts.Manifest, l.opts.Include, l.opts.Exclude)
	seen := make(map[string]bool)

	var objects []*Object

	for _, t := range docPkg.Types {
		seen[t.Name] = true
		d := parseDirectives(typeDoc(t))
		if d.hidden || !filter.keep(t.Name) {
			continue
		}
		objects = append(objects, l.typeObject(t, d))
	}

	for _, f := range docPkg.Funcs {
		seen[f.Name] = true
		d := parseDirectives(f.Decl.Doc)
		if d.hidden || !filter.keep(f.Name) {
			continue
		}
		objects = append(objects, l.funcObject(f, d))
	}

	for _, v := range append(append([]*doc.Value{}, docPkg.Consts...), docPkg.Vars...) {
		obj := l.groupObject(v, filter, seen)
		if obj != nil {
			objects = append(objects, obj)
		}
	}

	if missing := filter.missing(seen); len(missing) > 0 {
		sort.Strings(missing)
		for _, name := range missing {
			pkg.Warnings = append(pkg.Warnings, fmt.Sprintf("include entry %q matches no exported name", name))
		}
	}

	l.attachExamples(objects)

	pkg.Sections = buildSections(objects, l.opts)
	return pkg, nil
}

// parseTarget parses the non-test sources in Dir and picks the package to
// document: the single library package, or main when nothing else exists.
func (l *loader) parseTarget() (*ast.Package, error) {
	notTest := func(fi fs.FileInfo) bool {
		return !strings.HasSuffix(fi.Name(), "_test.go")
	}
	pkgs, err := parser.ParseDir(l.fset, l.opts.Dir, notTest, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("failed to parse package: %w", err)
	}

	var libs []*ast.Package
	var main *ast.Package
	for name, p := range pkgs {
		if name == "main" {
			main = p
			continue
		}
		libs = append(libs, p)
	}

	switch {
	case len(libs) == 1:
		return libs[0], nil
	case len(libs) > 1:
		return nil, ErrAmbiguousPackage
	case main != nil:
		return main, nil
	default:
		return nil, ErrNoPackage
	}
}

func (l *loader) typeObject(t *doc.Type, d directives) *Object {
	pos := l.fset.Position(t.Decl.Pos())
	obj := &Object{
		Name:        t.Name,
		Kind:        KindType,
		Synopsis:    l.docPkg.Synopsis(t.Doc),
		Declaration: l.slice(t.Decl.Pos(), t.Decl.End()),
		Doc:         t.Doc,
		File:        pos.Filename,
		Line:        pos.Line,
		SeeAlso:     d.seeAlso,
		family:      d.family,
		order:       d.order,
	}
	if !d.hasOrd {
		obj.order = orderUnset
	}

	for _, f := range sortedBySource(l.fset, t.Funcs) {
		obj.Constructors = append(obj.Constructors, l.member(f))
	}
	for _, m := range sortedBySource(l.fset, t.Methods) {
		if md := parseDirectives(m.Decl.Doc); md.hidden {
			continue
		}
		obj.Methods = append(obj.Methods, l.member(m))
	}
	for _, group := range append(append([]*doc.Value{}, t.Consts...), t.Vars...) {
		obj.Values = append(obj.Values, l.value(group))
	}
	return obj
}

func (l *loader) funcObject(f *doc.Func, d directives) *Object {
	pos := l.fset.Position(f.Decl.Pos())
	obj := &Object{
		Name:        f.Name,
		Kind:        KindFunction,
		Synopsis:    l.docPkg.Synopsis(f.Doc),
		Declaration: l.slice(f.Decl.Pos(), f.Decl.Type.End()),
		Doc:         f.Doc,
		File:        pos.Filename,
		Line:        pos.Line,
		SeeAlso:     d.seeAlso,
		family:      d.family,
		order:       d.order,
	}
	if !d.hasOrd {
		obj.order = orderUnset
	}
	return obj
}

// groupObject builds a const/var group object, filtering individual names.
// A group whose every name is filtered out disappears.
func (l *loader) groupObject(v *doc.Value, filter *nameFilter, seen map[string]bool) *Object {
	d := parseDirectives(v.Decl.Doc)

	var names []string
	for _, n := range v.Names {
		if !ast.IsExported(n) {
			continue
		}
		seen[n] = true
		if filter.keep(n) {
			names = append(names, n)
		}
	}
	if d.hidden || len(names) == 0 {
		return nil
	}

	pos := l.fset.Position(v.Decl.Pos())
	obj := &Object{
		Name:        names[0],
		Kind:        KindGroup,
		Synopsis:    l.docPkg.Synopsis(v.Doc),
		Declaration: l.slice(v.Decl.Pos(), v.Decl.End()),
		Doc:         v.Doc,
		GroupNames:  names,
		File:        pos.Filename,
		Line:        pos.Line,
		SeeAlso:     d.seeAlso,
		family:      d.family,
		order:       d.order,
	}
	if !d.hasOrd {
		obj.order = orderUnset
	}
	return obj
}

func (l *loader) member(f *doc.Func) *Member {
	pos := l.fset.Position(f.Decl.Pos())
	return &Member{
		Name:        f.Name,
		Synopsis:    l.docPkg.Synopsis(f.Doc),
		Declaration: l.slice(f.Decl.Pos(), f.Decl.Type.End()),
		Doc:         f.Doc,
		File:        pos.Filename,
		Line:        pos.Line,
	}
}

func (l *loader) value(v *doc.Value) *Value {
	pos := l.fset.Position(v.Decl.Pos())
	return &Value{
		Names:       v.Names,
		Declaration: l.slice(v.Decl.Pos(), v.Decl.End()),
		Doc:         v.Doc,
		File:        pos.Filename,
		Line:        pos.Line,
	}
}

// attachExamples parses the directory's _test.go files and associates
// Example* functions with their objects by name.
func (l *loader) attachExamples(objects []*Object) {
	isTest := func(fi fs.FileInfo) bool {
		return strings.HasSuffix(fi.Name(), "_test.go")
	}
	pkgs, err := parser.ParseDir(l.fset, l.opts.Dir, isTest, parser.ParseComments)
	if err != nil {
		return
	}

	var files []*ast.File
	for _, p := range pkgs {
		for _, f := range p.Files {
			files = append(files, f)
		}
	}
	if len(files) == 0 {
		return
	}

	byName := make(map[string]*Object, len(objects))
	for _, obj := range objects {
		byName[obj.Name] = obj
	}
	// Constructor examples (ExampleNew) belong on the constructed type.
	for _, obj := range objects {
		for _, ctor := range obj.Constructors {
			if _, taken := byName[ctor.Name]; !taken {
				byName[ctor.Name] = obj
			}
		}
	}

	for _, ex := range doc.Examples(files...) {
		if ex.Name == "" {
			continue
		}
		target, _, _ := strings.Cut(ex.Name, "_")
		obj, ok := byName[target]
		if !ok {
			continue
		}
		obj.Examples = append(obj.Examples, &Example{
			Name:   ex.Name,
			Suffix: ex.Suffix,
			Code:   l.exampleCode(ex),
			Output: ex.Output,
		})
	}
}

// exampleCode extracts an example's body from source, unwrapping the outer
// braces and one level of indentation. The output comment is carried in
// Example.Output, so it is dropped from the code block.
func (l *loader) exampleCode(ex *doc.Example) string {
	code := l.slice(ex.Code.Pos(), ex.Code.End())
	if strings.HasPrefix(code, "{") && strings.HasSuffix(code, "}") {
		code = strings.Trim(code[1:len(code)-1], "\n")
		var out []string
		for _, line := range strings.Split(code, "\n") {
			out = append(out, strings.TrimPrefix(line, "\t"))
		}
		code = strings.Join(out, "\n")
	}

	if ex.Output != "" || ex.EmptyOutput {
		lines := strings.Split(code, "\n")
		for i := len(lines) - 1; i >= 0; i-- {
			marker := strings.ToLower(strings.TrimSpace(lines[i]))
			if strings.HasPrefix(marker, "// output:") || strings.HasPrefix(marker, "// unordered output:") {
				code = strings.TrimRight(strings.Join(lines[:i], "\n"), "\n")
				break
			}
		}
	}
	return code
}

// slice returns the original source text between two positions.
func (l *loader) slice(from, to token.Pos) string {
	start := l.fset.Position(from)
	end := l.fset.Position(to)
	if start.Filename == "" || start.Filename != end.Filename {
		return ""
	}

	src, ok := l.src[start.Filename]
	if !ok {
		content, err := os.ReadFile(start.Filename)
		if err != nil {
			return ""
		}
		src = content
		l.src[start.Filename] = src
	}

	if start.Offset < 0 || end.Offset > len(src) || start.Offset > end.Offset {
		return ""
	}
	return string(src[start.Offset:end.Offset])
}

func sortedBySource(fset *token.FileSet, funcs []*doc.Func) []*doc.Func {
	out := make([]*doc.Func, len(funcs))
	copy(out, funcs)
	sort.SliceStable(out, func(i, j int) bool {
		pi, pj := fset.Position(out[i].Decl.Pos()), fset.Position(out[j].Decl.Pos())
		if pi.Filename != pj.Filename {
			return pi.Filename < pj.Filename
		}
		return pi.Offset < pj.Offset
	})
	return out
}

// typeDoc returns the raw doc comment group of a type declaration. For a
// single-spec declaration the comment may sit on the spec instead.
func typeDoc(t *doc.Type) *ast.CommentGroup {
	if t.Decl.Doc != nil {
		return t.Decl.Doc
	}
	for _, spec := range t.Decl.Specs {
		if ts, ok := spec.(*ast.TypeSpec); ok && ts.Name.Name == t.Name && ts.Doc != nil {
			return ts.Doc
		}
	}
	return nil
}
