package clidoc

import (
	"go/ast"
	"reflect"
	"strconv"
	"strings"
	"unicode"
)

// extractKong finds kong command structs: any struct with at least one field
// tagged `cmd:""`. The root is the struct no other command struct mounts,
// preferring one named CLI when several qualify.
func extractKong(sc *scan, binaryName string) (*Command, bool) {
	structs := map[string]*ast.StructType{}
	var order []string
	for _, file := range sc.files {
		for _, decl := range file.Decls {
			gd, ok := decl.(*ast.GenDecl)
			if !ok {
				continue
			}
			for _, spec := range gd.Specs {
				ts, ok := spec.(*ast.TypeSpec)
				if !ok {
					continue
				}
				st, ok := ts.Type.(*ast.StructType)
				if !ok {
					continue
				}
				structs[ts.Name.Name] = st
				order = append(order, ts.Name.Name)
			}
		}
	}

	commandStructs := map[string]bool{}
	mounted := map[string]bool{}
	for name, st := range structs {
		for _, field := range st.Fields.List {
			tag := fieldTag(field)
			if _, ok := tag.Lookup("cmd"); !ok {
				continue
			}
			commandStructs[name] = true
			if child := typeName(field.Type); child != "" {
				mounted[child] = true
			}
		}
	}
	if len(commandStructs) == 0 {
		return nil, false
	}

	var root string
	for _, name := range order {
		if !commandStructs[name] || mounted[name] {
			continue
		}
		if root == "" || name == "CLI" {
			root = name
		}
	}
	if root == "" {
		return nil, false
	}

	b := kongBuilder{sc: sc, structs: structs, visited: map[string]bool{}}
	cmd := b.build(root)
	cmd.Name = binaryName
	return cmd, true
}

type kongBuilder struct {
	sc      *scan
	structs map[string]*ast.StructType
	visited map[string]bool
}

func (b *kongBuilder) build(structName string) *Command {
	cmd := &Command{}
	st, ok := b.structs[structName]
	if !ok || b.visited[structName] {
		return cmd
	}
	b.visited[structName] = true
	defer delete(b.visited, structName)

	for _, field := range st.Fields.List {
		tag := fieldTag(field)
		if tag.Get("kong") == "-" {
			continue
		}

		if _, isCmd := tag.Lookup("cmd"); isCmd {
			child := b.build(typeName(field.Type))
			child.Name = flagName(field, tag)
			child.Synopsis = tag.Get("help")
			cmd.Children = append(cmd.Children, child)
			continue
		}

		// Embedded structs contribute their flags to the host command.
		if len(field.Names) == 0 {
			if name := typeName(field.Type); b.structs[name] != nil {
				inner := b.build(name)
				cmd.Flags = append(cmd.Flags, inner.Flags...)
				cmd.Children = append(cmd.Children, inner.Children...)
			}
			continue
		}
		if !ast.IsExported(field.Names[0].Name) {
			continue
		}

		_, positional := tag.Lookup("arg")
		cmd.Flags = append(cmd.Flags, Flag{
			Name:    flagName(field, tag),
			Short:   tag.Get("short"),
			Type:    b.sc.slice(field.Type),
			Default: tag.Get("default"),
			Help:    tag.Get("help"),
			Arg:     positional,
		})
	}
	return cmd
}

func fieldTag(field *ast.Field) reflect.StructTag {
	if field.Tag == nil {
		return ""
	}
	raw, err := strconv.Unquote(field.Tag.Value)
	if err != nil {
		return ""
	}
	return reflect.StructTag(raw)
}

func flagName(field *ast.Field, tag reflect.StructTag) string {
	if name := tag.Get("name"); name != "" {
		return name
	}
	if len(field.Names) == 0 {
		return kebabCase(typeName(field.Type))
	}
	return kebabCase(field.Names[0].Name)
}

// typeName resolves the struct name a field type refers to, looking through
// pointers. Selector types (other packages) are out of reach for the scan
// and resolve to "".
func typeName(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.StarExpr:
		return typeName(t.X)
	}
	return ""
}

// kebabCase mirrors kong's derivation of flag and command names from Go
// field names: "NoRefresh" becomes "no-refresh", "HTTPAddr" becomes
// "http-addr".
func kebabCase(name string) string {
	runes := []rune(name)
	var sb strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) && i > 0 {
			prevLower := unicode.IsLower(runes[i-1])
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if prevLower || (unicode.IsUpper(runes[i-1]) && nextLower) {
				sb.WriteByte('-')
			}
		}
		sb.WriteRune(unicode.ToLower(r))
	}
	return sb.String()
}
