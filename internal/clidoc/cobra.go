package clidoc

import (
	"go/ast"
	"go/token"
	"strconv"
	"strings"
)

// cobraFlagTypes maps pflag registration method bases to the Go type the
// flag holds. Method names decompose as <base>[Var][P].
var cobraFlagTypes = map[string]string{
	"String":      "string",
	"Bool":        "bool",
	"Int":         "int",
	"Int64":       "int64",
	"Uint":        "uint",
	"Float64":     "float64",
	"Duration":    "time.Duration",
	"StringSlice": "[]string",
	"StringArray": "[]string",
	"IntSlice":    "[]int",
	"Count":       "int",
}

// cobraDef is one discovered command definition, bound either to a package
// variable or to a factory function returning *cobra.Command.
type cobraDef struct {
	cmd     *Command
	name    string // variable or function name
	isChild bool
}

// extractCobra finds &cobra.Command{...} literals and connects them through
// AddCommand calls and Flags()/PersistentFlags() registrations. The root is
// the command nothing adds as a child, preferring a variable named rootCmd.
func extractCobra(sc *scan, binaryName string) (*Command, bool) {
	ex := &cobraExtractor{sc: sc, byName: map[string]*cobraDef{}}
	for _, file := range sc.files {
		ex.collectDefs(file)
	}
	if len(ex.defs) == 0 {
		return nil, false
	}
	for _, file := range sc.files {
		ex.collectEdges(file)
	}

	var root *cobraDef
	for _, def := range ex.defs {
		if def.isChild {
			continue
		}
		if root == nil || def.name == "rootCmd" {
			root = def
		}
	}
	if root == nil {
		root = ex.defs[0]
	}
	if root.cmd.Name == "" {
		root.cmd.Name = binaryName
	}
	return root.cmd, true
}

type cobraExtractor struct {
	sc     *scan
	defs   []*cobraDef
	byName map[string]*cobraDef
	// locals maps factory-function locals ("cmd := &cobra.Command{...}")
	// to their definition, keyed per function.
	locals map[*ast.FuncDecl]map[string]*cobraDef
}

func (ex *cobraExtractor) collectDefs(file *ast.File) {
	if ex.locals == nil {
		ex.locals = map[*ast.FuncDecl]map[string]*cobraDef{}
	}
	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.GenDecl:
			for _, spec := range d.Specs {
				vs, ok := spec.(*ast.ValueSpec)
				if !ok {
					continue
				}
				for i, value := range vs.Values {
					if i >= len(vs.Names) {
						break
					}
					if lit := cobraLiteral(value); lit != nil {
						ex.define(vs.Names[i].Name, lit)
					}
				}
			}
		case *ast.FuncDecl:
			ex.collectFuncDefs(d)
		}
	}
}

// collectFuncDefs picks up commands defined inside functions: assignments to
// package variables in init, and factory functions that build a command in a
// local and return it.
func (ex *cobraExtractor) collectFuncDefs(fd *ast.FuncDecl) {
	if fd.Body == nil {
		return
	}
	isFactory := returnsCobraCommand(fd)
	ast.Inspect(fd.Body, func(n ast.Node) bool {
		assign, ok := n.(*ast.AssignStmt)
		if !ok {
			return true
		}
		for i, rhs := range assign.Rhs {
			if i >= len(assign.Lhs) {
				break
			}
			lit := cobraLiteral(rhs)
			if lit == nil {
				continue
			}
			ident, ok := assign.Lhs[i].(*ast.Ident)
			if !ok {
				continue
			}
			if assign.Tok == token.DEFINE {
				// A local. Only meaningful inside a factory, where
				// the function name becomes the handle.
				if !isFactory {
					continue
				}
				def := ex.define(fd.Name.Name, lit)
				if ex.locals[fd] == nil {
					ex.locals[fd] = map[string]*cobraDef{}
				}
				ex.locals[fd][ident.Name] = def
				continue
			}
			ex.define(ident.Name, lit)
		}
		return true
	})
}

func (ex *cobraExtractor) define(name string, lit *ast.CompositeLit) *cobraDef {
	if def, ok := ex.byName[name]; ok {
		return def
	}
	def := &cobraDef{cmd: commandFromLiteral(lit), name: name}
	ex.defs = append(ex.defs, def)
	ex.byName[name] = def
	return def
}

func (ex *cobraExtractor) collectEdges(file *ast.File) {
	for _, decl := range file.Decls {
		fd, ok := decl.(*ast.FuncDecl)
		if !ok || fd.Body == nil {
			continue
		}
		locals := ex.locals[fd]
		ast.Inspect(fd.Body, func(n ast.Node) bool {
			call, ok := n.(*ast.CallExpr)
			if !ok {
				return true
			}
			sel, ok := call.Fun.(*ast.SelectorExpr)
			if !ok {
				return true
			}
			switch {
			case sel.Sel.Name == "AddCommand":
				if parent := ex.resolve(sel.X, locals); parent != nil {
					ex.addChildren(parent, call.Args, locals)
				}
			default:
				ex.collectFlagCall(call, sel, locals)
			}
			return true
		})
	}
}

func (ex *cobraExtractor) addChildren(parent *cobraDef, args []ast.Expr, locals map[string]*cobraDef) {
	for _, arg := range args {
		var child *cobraDef
		switch a := arg.(type) {
		case *ast.Ident:
			child = ex.resolveName(a.Name, locals)
		case *ast.CallExpr:
			if ident, ok := a.Fun.(*ast.Ident); ok {
				child = ex.resolveName(ident.Name, locals)
			}
		default:
			if lit := cobraLiteral(arg); lit != nil {
				child = &cobraDef{cmd: commandFromLiteral(lit)}
			}
		}
		if child == nil || child == parent {
			continue
		}
		child.isChild = true
		parent.cmd.Children = append(parent.cmd.Children, child.cmd)
	}
}

// collectFlagCall matches cmd.Flags().StringVarP(&v, "name", "n", "def",
// "usage") and friends, on Flags() or PersistentFlags().
func (ex *cobraExtractor) collectFlagCall(call *ast.CallExpr, sel *ast.SelectorExpr, locals map[string]*cobraDef) {
	inner, ok := sel.X.(*ast.CallExpr)
	if !ok {
		return
	}
	innerSel, ok := inner.Fun.(*ast.SelectorExpr)
	if !ok || (innerSel.Sel.Name != "Flags" && innerSel.Sel.Name != "PersistentFlags") {
		return
	}
	def := ex.resolve(innerSel.X, locals)
	if def == nil {
		return
	}

	method := sel.Sel.Name
	base := method
	hasShort := len(base) > 1 && strings.HasSuffix(base, "P")
	if hasShort {
		base = base[:len(base)-1]
	}
	base, hasVar := strings.CutSuffix(base, "Var")
	goType, ok := cobraFlagTypes[base]
	if !ok {
		return
	}

	args := call.Args
	idx := 0
	if hasVar {
		idx++ // skip the pointer target
	}
	need := 2 // name, usage
	if hasShort {
		need++
	}
	if base != "Count" {
		need++ // default value
	}
	if len(args) < idx+need {
		return
	}

	flag := Flag{Type: goType}
	flag.Name = ex.stringArg(args[idx])
	idx++
	if hasShort {
		flag.Short = ex.stringArg(args[idx])
		idx++
	}
	if base != "Count" {
		flag.Default = ex.stringArg(args[idx])
		idx++
	}
	flag.Help = ex.stringArg(args[idx])
	def.cmd.Flags = append(def.cmd.Flags, flag)
}

func (ex *cobraExtractor) resolve(expr ast.Expr, locals map[string]*cobraDef) *cobraDef {
	ident, ok := expr.(*ast.Ident)
	if !ok {
		return nil
	}
	return ex.resolveName(ident.Name, locals)
}

func (ex *cobraExtractor) resolveName(name string, locals map[string]*cobraDef) *cobraDef {
	if def, ok := locals[name]; ok {
		return def
	}
	return ex.byName[name]
}

// stringArg renders a call argument: quoted literals unquote to their value,
// anything else keeps its source form.
func (ex *cobraExtractor) stringArg(expr ast.Expr) string {
	if lit, ok := expr.(*ast.BasicLit); ok && lit.Kind == token.STRING {
		if s, err := strconv.Unquote(lit.Value); err == nil {
			return s
		}
	}
	return ex.sc.slice(expr)
}

// cobraLiteral unwraps expr to a cobra.Command composite literal, or nil.
func cobraLiteral(expr ast.Expr) *ast.CompositeLit {
	if unary, ok := expr.(*ast.UnaryExpr); ok && unary.Op == token.AND {
		expr = unary.X
	}
	lit, ok := expr.(*ast.CompositeLit)
	if !ok {
		return nil
	}
	sel, ok := lit.Type.(*ast.SelectorExpr)
	if !ok || sel.Sel.Name != "Command" {
		return nil
	}
	pkg, ok := sel.X.(*ast.Ident)
	if !ok || pkg.Name != "cobra" {
		return nil
	}
	return lit
}

func commandFromLiteral(lit *ast.CompositeLit) *Command {
	cmd := &Command{}
	for _, elt := range lit.Elts {
		kv, ok := elt.(*ast.KeyValueExpr)
		if !ok {
			continue
		}
		key, ok := kv.Key.(*ast.Ident)
		if !ok {
			continue
		}
		val, ok := kv.Value.(*ast.BasicLit)
		if !ok || val.Kind != token.STRING {
			continue
		}
		text, err := strconv.Unquote(val.Value)
		if err != nil {
			continue
		}
		switch key.Name {
		case "Use":
			if fields := strings.Fields(text); len(fields) > 0 {
				cmd.Name = fields[0]
			}
		case "Short":
			cmd.Synopsis = text
		case "Long":
			cmd.Description = strings.TrimSpace(text)
		}
	}
	return cmd
}

func returnsCobraCommand(fd *ast.FuncDecl) bool {
	if fd.Type.Results == nil || len(fd.Type.Results.List) != 1 {
		return false
	}
	star, ok := fd.Type.Results.List[0].Type.(*ast.StarExpr)
	if !ok {
		return false
	}
	sel, ok := star.X.(*ast.SelectorExpr)
	if !ok || sel.Sel.Name != "Command" {
		return false
	}
	pkg, ok := sel.X.(*ast.Ident)
	return ok && pkg.Name == "cobra"
}
