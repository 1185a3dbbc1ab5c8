package apidoc

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	sectionTypes     = "types"
	sectionFunctions = "functions"
	sectionGroups    = "constants-variables"
)

// buildSections arranges objects into presentation sections.
//
// When any object carries a refdocs:family directive, sections follow
// family keys in first-seen order and unfamilied objects fall back to the
// default kind split appended afterwards. Without families the default
// split is Types / Functions / Constants & Variables.
func buildSections(objects []*Object, opts LoadOptions) []*Section {
	var sections []*Section
	index := make(map[string]*Section)

	section := func(key, title string) *Section {
		if s, ok := index[key]; ok {
			return s
		}
		s := &Section{Key: key, Title: title}
		index[key] = s
		sections = append(sections, s)
		return s
	}

	// Family sections first, in first-seen order, then the kind fallback
	// for anything unfamilied.
	for _, obj := range objects {
		if obj.family != "" {
			section(obj.family, familyTitle(obj.family, opts.Families)).add(obj)
		}
	}
	for _, obj := range objects {
		if obj.family != "" {
			continue
		}
		switch obj.Kind {
		case KindType:
			section(sectionTypes, "Types").add(obj)
		case KindFunction:
			section(sectionFunctions, "Functions").add(obj)
		default:
			section(sectionGroups, "Constants & Variables").add(obj)
		}
	}

	for _, s := range sections {
		sortObjects(s.Objects)
	}

	return splitLargeTypes(sections, opts.LargeTypeThreshold)
}

func (s *Section) add(obj *Object) {
	s.Objects = append(s.Objects, obj)
}

// sortObjects orders by explicit refdocs:order first, then by name.
func sortObjects(objs []*Object) {
	sort.SliceStable(objs, func(i, j int) bool {
		if objs[i].order != objs[j].order {
			return objs[i].order < objs[j].order
		}
		return objs[i].Name < objs[j].Name
	})
}

// splitLargeTypes inserts a "<Type> methods" section directly after the
// section of every type with more methods than the threshold.
func splitLargeTypes(sections []*Section, threshold int) []*Section {
	if threshold <= 0 {
		return sections
	}

	var out []*Section
	for _, s := range sections {
		out = append(out, s)
		for _, obj := range s.Objects {
			if obj.Kind != KindType || len(obj.Methods) <= threshold {
				continue
			}
			obj.SplitMethods = true
			out = append(out, methodSection(obj))
		}
	}
	return out
}

func methodSection(obj *Object) *Section {
	s := &Section{
		Key:   strings.ToLower(obj.Name) + "-methods",
		Title: obj.Name + " methods",
	}
	for _, m := range obj.Methods {
		page := &Object{
			Name:        obj.Name + "." + m.Name,
			Kind:        KindMethod,
			Synopsis:    m.Synopsis,
			Declaration: m.Declaration,
			Doc:         m.Doc,
			File:        m.File,
			Line:        m.Line,
		}
		prefix := obj.Name + "_" + m.Name
		for _, ex := range obj.Examples {
			if ex.Name == prefix || strings.HasPrefix(ex.Name, prefix+"_") {
				page.Examples = append(page.Examples, ex)
			}
		}
		s.Objects = append(s.Objects, page)
	}
	return s
}

// familyTitle resolves a family key to its display title: the configured
// override, or the key auto-titled from kebab/snake case.
func familyTitle(key string, overrides map[string]string) string {
	if t, ok := overrides[key]; ok && strings.TrimSpace(t) != "" {
		return t
	}
	return autoTitle(key)
}

var titleCaser = cases.Title(language.English)

func autoTitle(key string) string {
	words := strings.FieldsFunc(key, func(r rune) bool {
		return r == '-' || r == '_'
	})
	return titleCaser.String(strings.Join(words, " "))
}
