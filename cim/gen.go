package cim

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/tools/imports"
)

func printerf(w io.Writer) func(format string, args ...any) {
	return func(format string, args ...any) {
		fmt.Fprintf(w, format, args...)
	}
}

// renderer holds the resolved model for one emission pass. All iteration is
// sorted so re-running against an unchanged model produces byte-identical
// output.
type renderer struct {
	cat  *Catalog
	lits *LiteralTable
	opts Options
	ws   *Warnings
}

func pkgNameFor(module string) string {
	return strings.ToLower(identifier(module))
}

func (r *renderer) header() string {
	if r.cat.Version != "" {
		return fmt.Sprintf("// Code generated by cimgo (source model version %s); DO NOT EDIT.\n\n", r.cat.Version)
	}
	return "// Code generated by cimgo; DO NOT EDIT.\n\n"
}

func goFieldName(attr string) string {
	name := identifier(attr)
	if name[0] >= '0' && name[0] <= '9' {
		name = "X" + name
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

// fieldNames maps a class's attributes to unique exported field names, in
// attribute order. Distinct attribute names can sanitize to the same
// identifier, so later duplicates take a numeric suffix.
func fieldNames(attrs []ReflectedAttribute) []string {
	used := make(map[string]bool, len(attrs))
	out := make([]string, 0, len(attrs))
	for _, a := range attrs {
		name := goFieldName(a.Name)
		for n := 2; used[name]; n++ {
			name = goFieldName(a.Name) + strconv.Itoa(n)
		}
		used[name] = true
		out = append(out, name)
	}
	return out
}

// fieldType resolves one attribute type to generated Go source, recording
// any imports the referring module file needs.
func (r *renderer) fieldType(owner TypeID, attr string, t TypeRef, imps map[string]bool) string {
	curMod := owner.Module()
	switch t.Kind {
	case "bool":
		return "bool"
	case "int":
		return "int"
	case "float":
		return "float64"
	case "string":
		return "string"
	case "datetime":
		imps["time"] = true
		return "time.Time"
	case "any":
		return "any"
	case "map":
		return "map[string]any"
	case "list":
		if t.Items == nil {
			return "[]any"
		}
		return "[]" + r.fieldType(owner, attr, *t.Items, imps)
	case "class":
		cls, ok := r.cat.ResolveClass(curMod, t.Ref)
		if !ok {
			r.ws.add(Warning{
				Class:   owner,
				Attr:    attr,
				Code:    WarnUnknownType,
				Message: fmt.Sprintf("class reference %q not found in catalog; using any", t.Ref),
			})
			return "any"
		}
		if cls.ID.Module() == curMod {
			return "*" + cls.ID.Name()
		}
		pkg := pkgNameFor(cls.ID.Module())
		imps[r.opts.ImportPrefix+"/"+pkg] = true
		return "*" + pkg + "." + cls.ID.Name()
	case "enum":
		e, ok := r.cat.ResolveEnum(curMod, t.Ref)
		if !ok {
			r.ws.add(Warning{
				Class:   owner,
				Attr:    attr,
				Code:    WarnUnknownType,
				Message: fmt.Sprintf("enumeration reference %q not found in catalog; using any", t.Ref),
			})
			return "any"
		}
		lit, ok := r.lits.Lookup(e.ID)
		if !ok {
			// empty enumeration, already warned by Literalize
			return "string"
		}
		imps[r.opts.ImportPrefix+"/literals"] = true
		return "literals." + lit.Name
	default:
		r.ws.add(Warning{
			Class:   owner,
			Attr:    attr,
			Code:    WarnUnknownType,
			Message: fmt.Sprintf("unrecognized type kind %q; using any", t.Kind),
		})
		return "any"
	}
}

// defaultExpr renders the constructor initializer for one attribute, or ""
// when the attribute has no statically expressible default.
func (r *renderer) defaultExpr(owner TypeID, a ReflectedAttribute) string {
	if a.Default == nil {
		return ""
	}
	switch a.Type.Kind {
	case "bool":
		if v, ok := a.Default.(bool); ok {
			return strconv.FormatBool(v)
		}
	case "int":
		if v, ok := asInt(a.Default); ok {
			return strconv.FormatInt(v, 10)
		}
	case "float":
		if v, ok := asFloat(a.Default); ok {
			return strconv.FormatFloat(v, 'g', -1, 64)
		}
	case "string":
		if v, ok := a.Default.(string); ok {
			return strconv.Quote(v)
		}
	case "enum":
		v, ok := a.Default.(string)
		if !ok {
			return ""
		}
		e, found := r.cat.ResolveEnum(owner.Module(), a.Type.Ref)
		if !found {
			return ""
		}
		lit, found := r.lits.Lookup(e.ID)
		if !found {
			// degraded to plain string
			return strconv.Quote(v)
		}
		if _, member := lit.ValueMap[v]; member {
			return "literals." + lit.ConstName(v)
		}
		return "literals." + lit.Name + "(" + strconv.Quote(v) + ")"
	}
	return ""
}

func asInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		return int64(n), true
	}
	return 0, false
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func writeDocComment(pf func(string, ...any), url string, lines []string) {
	pf("// %s\n", url)
	if len(lines) > 0 {
		pf("//\n")
		for _, l := range lines {
			pf("// %s\n", l)
		}
	}
}

// renderModule emits the generated file for one source module: a struct and
// constructor per flattened class.
func (r *renderer) renderModule(module string, classes []*DocumentedClass) ([]byte, error) {
	pkg := pkgNameFor(module)
	body := new(bytes.Buffer)
	pf := printerf(body)

	imps := make(map[string]bool)
	for _, c := range classes {
		names := fieldNames(c.Attributes)

		writeDocComment(pf, c.URL, c.DocLines)
		pf("type %s struct {\n", c.ID.Name())
		for i, a := range c.Attributes {
			pf("\t%s %s `json:%q`\n", names[i], r.fieldType(c.ID, a.Name, a.Type, imps), a.Name)
		}
		pf("}\n\n")

		pf("// New%s returns a %s with the source model's default values applied.\n", c.ID.Name(), c.ID.Name())
		pf("func New%s() *%s {\n", c.ID.Name(), c.ID.Name())
		pf("\treturn &%s{\n", c.ID.Name())
		for i, a := range c.Attributes {
			if expr := r.defaultExpr(c.ID, a); expr != "" {
				pf("\t\t%s: %s,\n", names[i], expr)
			}
		}
		pf("\t}\n}\n\n")
	}

	out := new(bytes.Buffer)
	opf := printerf(out)
	opf("%s", r.header())
	opf("// Package %s contains generated classes for the %s source module.\n", pkg, module)
	opf("package %s\n\n", pkg)
	writeImports(opf, imps)
	out.Write(body.Bytes())

	return r.format(pkg+"/"+pkg+".go", out.Bytes())
}

// renderLiterals emits the literals package: one string-literal type, const
// block, and value map per enumeration.
func (r *renderer) renderLiterals() ([]byte, error) {
	out := new(bytes.Buffer)
	pf := printerf(out)
	pf("%s", r.header())
	pf("// Package literals contains string-literal types generated from the\n")
	pf("// source model's enumerations.\n")
	pf("package literals\n\n")

	for _, lit := range r.lits.All() {
		pf("// %s mirrors the %s enumeration.\n", lit.Name, lit.Enum)
		for i, l := range normalizeDoc(lit.Doc) {
			if i == 0 {
				pf("//\n")
			}
			pf("// %s\n", l)
		}
		pf("type %s string\n\n", lit.Name)

		pf("const (\n")
		for _, v := range lit.Values {
			pf("\t%s %s = %q\n", lit.ConstName(v), lit.Name, v)
		}
		pf(")\n\n")

		pf("// %sValues maps each member to its numeric value in the source model.\n", lit.Name)
		pf("var %sValues = map[%s]int{\n", lit.Name, lit.Name)
		for _, v := range lit.Values {
			pf("\t%s: %d,\n", lit.ConstName(v), lit.ValueMap[v])
		}
		pf("}\n\n")
	}

	return r.format("literals/literals.go", out.Bytes())
}

// renderRoot emits the aggregator file re-exporting every generated class
// under its original unqualified name. Two classes from different modules
// with the same unqualified name are a fatal collision.
func (r *renderer) renderRoot(all []*DocumentedClass) ([]byte, error) {
	byName := make(map[string]TypeID, len(all))
	names := make([]string, 0, len(all))
	for _, c := range all {
		name := c.ID.Name()
		if prev, ok := byName[name]; ok {
			first, second := prev, c.ID
			if second < first {
				first, second = second, first
			}
			return nil, &NameCollisionError{Name: name, First: first, Second: second}
		}
		byName[name] = c.ID
		names = append(names, name)
	}
	sort.Strings(names)

	out := new(bytes.Buffer)
	pf := printerf(out)
	pf("%s", r.header())
	pf("// Package %s re-exports every generated class for single-point import.\n", r.opts.Package)
	pf("package %s\n\n", r.opts.Package)

	imps := make(map[string]bool)
	for _, name := range names {
		imps[r.opts.ImportPrefix+"/"+pkgNameFor(byName[name].Module())] = true
	}
	writeImports(pf, imps)

	pf("// ModelVersion is the source model version the package was generated from.\n")
	pf("const ModelVersion = %q\n\n", r.cat.Version)
	pf("// GeneratorVersion is the cimgo version that produced the package.\n")
	pf("const GeneratorVersion = %q\n\n", Version)

	for _, name := range names {
		pf("type %s = %s.%s\n", name, pkgNameFor(byName[name].Module()), name)
	}

	return r.format(r.opts.Package+".go", out.Bytes())
}

func writeImports(pf func(string, ...any), imps map[string]bool) {
	if len(imps) == 0 {
		return
	}
	paths := make([]string, 0, len(imps))
	for p := range imps {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	pf("import (\n")
	for _, p := range paths {
		pf("\t%q\n", p)
	}
	pf(")\n\n")
}

// format runs the canonical gofmt pass over one generated file. A failure
// here is a generator bug, not a model problem.
func (r *renderer) format(name string, src []byte) ([]byte, error) {
	out, err := imports.Process(name, src, &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: true,
	})
	if err != nil {
		return nil, fmt.Errorf("formatting generated file %s: %w", name, err)
	}
	return out, nil
}
