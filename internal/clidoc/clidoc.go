// Package clidoc extracts a command tree from a main package without
// executing it. It recognizes the two CLI frameworks this tool documents:
// kong (command structs wired through `cmd:""` struct tags) and cobra
// (&cobra.Command{...} literals wired through AddCommand calls). The scan is
// purely syntactic; flag defaults that are not literals are reported as the
// source expression.
package clidoc

import (
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Tree is the extracted command hierarchy of one binary.
type Tree struct {
	// Framework is "kong" or "cobra".
	Framework string
	Root      *Command
}

// Command is one node of the tree. Children preserve declaration order for
// kong and AddCommand order for cobra.
type Command struct {
	Name        string
	Synopsis    string
	Description string
	Flags       []Flag
	Children    []*Command
}

// Flag describes one flag or positional argument of a command.
type Flag struct {
	Name    string
	Short   string
	Type    string
	Default string
	Help    string
	// Arg marks a positional argument rather than a --flag.
	Arg bool
}

// LoadOptions configures Load.
type LoadOptions struct {
	// Dir is the main package directory of the binary.
	Dir string
	// BinaryName names the root command. Defaults to the base of Dir.
	BinaryName string
}

// Load parses the package in opts.Dir and extracts its command tree. It
// returns ErrNoCommands when the package parses but contains neither a kong
// command struct nor a cobra command literal.
func Load(opts LoadOptions) (*Tree, error) {
	sc, err := scanDir(opts.Dir)
	if err != nil {
		return nil, err
	}
	name := opts.BinaryName
	if name == "" {
		abs, err := filepath.Abs(opts.Dir)
		if err != nil {
			abs = opts.Dir
		}
		name = filepath.Base(abs)
	}

	if root, ok := extractKong(sc, name); ok {
		return &Tree{Framework: "kong", Root: root}, nil
	}
	if root, ok := extractCobra(sc, name); ok {
		return &Tree{Framework: "cobra", Root: root}, nil
	}
	return nil, ErrNoCommands
}

// Walk visits c and all its descendants depth first.
func (c *Command) Walk(fn func(path []string, cmd *Command)) {
	c.walk(nil, fn)
}

func (c *Command) walk(prefix []string, fn func(path []string, cmd *Command)) {
	path := append(append([]string(nil), prefix...), c.Name)
	fn(path, c)
	for _, child := range c.Children {
		child.walk(path, fn)
	}
}

// scan holds the parsed package plus raw source for expression slicing.
type scan struct {
	fset  *token.FileSet
	files []*ast.File
	src   map[string][]byte
}

func scanDir(dir string) (*scan, error) {
	sc := &scan{fset: token.NewFileSet(), src: map[string][]byte{}}
	pkgs, err := parser.ParseDir(sc.fset, dir, func(fi os.FileInfo) bool {
		return !strings.HasSuffix(fi.Name(), "_test.go")
	}, parser.ParseComments)
	if err != nil {
		return nil, err
	}

	pkg, ok := pkgs["main"]
	if !ok {
		for _, p := range pkgs {
			if !strings.HasSuffix(p.Name, "_test") {
				pkg = p
			}
		}
	}
	if pkg == nil {
		return nil, ErrNoCommands
	}

	names := make([]string, 0, len(pkg.Files))
	for name := range pkg.Files {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		sc.files = append(sc.files, pkg.Files[name])
	}
	return sc, nil
}

// slice returns the source text of an expression, e.g. a flag default that
// is not a plain literal.
func (sc *scan) slice(node ast.Node) string {
	pos := sc.fset.Position(node.Pos())
	end := sc.fset.Position(node.End())
	data, ok := sc.src[pos.Filename]
	if !ok {
		b, err := os.ReadFile(pos.Filename)
		if err != nil {
			return ""
		}
		data = b
		sc.src[pos.Filename] = data
	}
	if pos.Offset < 0 || end.Offset > len(data) || pos.Offset > end.Offset {
		return ""
	}
	return string(data[pos.Offset:end.Offset])
}
