// Package cim generates a statically-typed Go mirror of the Esri CIM
// (Cartographic Information Model) object model: one flattened struct per
// class, string-literal types for enumerations, doc comments linking to the
// published cim-spec documentation, and a root aggregator package.
//
// The pipeline runs in five stages over an in-memory model read once from a
// Source: catalog building, hierarchy flattening, enumeration
// literalization, documentation linking, and rendering. Fatal errors abort
// the run before any file is written; non-fatal findings are collected as
// warnings and reported at the end.
package cim

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Version is the generator version stamped in to emitted output.
const Version = "0.1.0"

// NameCollisionError reports two distinct generated classes resolving to
// the same unqualified export identifier in the aggregator package.
type NameCollisionError struct {
	Name          string
	First, Second TypeID
}

func (e *NameCollisionError) Error() string {
	return fmt.Sprintf("name collision on %q: %s and %s both export it", e.Name, e.First, e.Second)
}

// Options configures one generation run.
type Options struct {
	// Package is the root aggregator package name. Defaults to "cim".
	Package string
	// ImportPrefix is the import path of the generated root package,
	// e.g. "example.com/myproj/cim". Required: cross-module field types
	// and aggregator aliases import the generated subpackages through it.
	ImportPrefix string
}

// Result is the outcome of one generation run: the rendered file set
// (relative path to content) and the warnings collected along the way.
type Result struct {
	Files    map[string][]byte
	Warnings []Warning
}

// Generate runs the whole pipeline against a source and returns the
// rendered files. Nothing is written to disk; see WriteFiles. On fatal
// error no partial result is returned.
func Generate(src Source, opts Options) (*Result, error) {
	if opts.Package == "" {
		opts.Package = "cim"
	}
	if opts.ImportPrefix == "" {
		return nil, fmt.Errorf("generate: import prefix is required")
	}

	ws := &Warnings{}

	cat, err := BuildCatalog(src)
	if err != nil {
		return nil, err
	}

	flat := Flatten(cat, ws)
	lits := Literalize(cat, ws)

	docs := make(map[TypeID]*DocumentedClass, len(flat))
	for id, fc := range flat {
		docs[id] = Document(fc)
	}

	r := &renderer{cat: cat, lits: lits, opts: opts, ws: ws}
	files := make(map[string][]byte)

	var all []*DocumentedClass
	for _, module := range cat.Modules {
		var classes []*DocumentedClass
		for _, c := range cat.ModuleClasses(module) {
			classes = append(classes, docs[c.ID])
		}
		if len(classes) == 0 {
			continue
		}
		all = append(all, classes...)

		b, err := r.renderModule(module, classes)
		if err != nil {
			return nil, err
		}
		pkg := pkgNameFor(module)
		files[pkg+"/"+pkg+".go"] = b
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	if len(lits.All()) > 0 {
		b, err := r.renderLiterals()
		if err != nil {
			return nil, err
		}
		files["literals/literals.go"] = b
	}

	root, err := r.renderRoot(all)
	if err != nil {
		return nil, err
	}
	files[opts.Package+".go"] = root

	return &Result{Files: files, Warnings: ws.All()}, nil
}

// WriteFiles emits a generation result under dir, creating package
// directories as needed. Only called after the whole run has succeeded, so
// a fatal generation error never leaves partial output behind.
func WriteFiles(res *Result, dir string) error {
	paths := make([]string, 0, len(res.Files))
	for p := range res.Files {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, p := range paths {
		full := filepath.Join(dir, filepath.FromSlash(p))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(full, res.Files[p], 0o644); err != nil {
			return err
		}
	}
	return nil
}
