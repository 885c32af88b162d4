package cim

import (
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
)

// TypeID is a module-qualified type identity, e.g. "CIMLayer.CIMVectorLayer".
type TypeID string

// Module returns the owning module part of the identity.
func (id TypeID) Module() string {
	s := string(id)
	if i := strings.LastIndex(s, "."); i >= 0 {
		return s[:i]
	}
	return ""
}

// Name returns the unqualified type name.
func (id TypeID) Name() string {
	s := string(id)
	if i := strings.LastIndex(s, "."); i >= 0 {
		return s[i+1:]
	}
	return s
}

// ReflectedClass is one class as reported by the reflection surface:
// identity, immediate bases, and declared attributes in declaration order.
type ReflectedClass struct {
	ID         TypeID
	Doc        string
	Bases      []string
	Attributes []ReflectedAttribute
}

// ReflectedAttribute is one declared attribute of a ReflectedClass.
type ReflectedAttribute struct {
	Name    string
	Type    TypeRef
	Default any
}

// ReflectedEnum is one enumeration as reported by the reflection surface.
type ReflectedEnum struct {
	ID      TypeID
	Doc     string
	Members map[string]int
}

// Source is the read-only reflection surface over the live object model.
// The generation pipeline depends only on this interface, so a fixture
// catalog can stand in for the real model in tests.
type Source interface {
	// RootTypes returns the identity of every reflectable class, sorted.
	RootTypes() []TypeID

	// ReflectClass resolves a class identity to its declaration.
	ReflectClass(id TypeID) (*ReflectedClass, error)

	// EnumTypes returns the identity of every reflectable enumeration, sorted.
	EnumTypes() []TypeID

	// ReflectEnum resolves an enumeration identity to its declaration.
	ReflectEnum(id TypeID) (*ReflectedEnum, error)

	// ModelVersion reports the source object model version, if known.
	ModelVersion() string
}

// BaseSource is a trivial in-memory Source implementation fed from model
// dump files.
type BaseSource struct {
	classes map[TypeID]*ReflectedClass
	enums   map[TypeID]*ReflectedEnum
	version string
}

// NewBaseSource creates a new empty BaseSource.
func NewBaseSource() BaseSource {
	return BaseSource{
		classes: make(map[TypeID]*ReflectedClass),
		enums:   make(map[TypeID]*ReflectedEnum),
	}
}

func (s *BaseSource) RootTypes() []TypeID {
	out := make([]TypeID, 0, len(s.classes))
	for id := range s.classes {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (s *BaseSource) ReflectClass(id TypeID) (*ReflectedClass, error) {
	c, ok := s.classes[id]
	if !ok {
		return nil, fmt.Errorf("class not found in source: %s", id)
	}
	return c, nil
}

func (s *BaseSource) EnumTypes() []TypeID {
	out := make([]TypeID, 0, len(s.enums))
	for id := range s.enums {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (s *BaseSource) ReflectEnum(id TypeID) (*ReflectedEnum, error) {
	e, ok := s.enums[id]
	if !ok {
		return nil, fmt.Errorf("enumeration not found in source: %s", id)
	}
	return e, nil
}

func (s *BaseSource) ModelVersion() string {
	return s.version
}

// AddModelFile inserts one model dump in to the source. Class and
// enumeration identities must be unique across all loaded dumps.
func (s *BaseSource) AddModelFile(mf *ModelFile) error {
	if err := mf.check(); err != nil {
		return err
	}
	for name, def := range mf.Classes {
		if name == "" || strings.Contains(name, ".") {
			return fmt.Errorf("class name invalid: %s", name)
		}
		id := TypeID(mf.Module + "." + name)
		if _, ok := s.classes[id]; ok {
			return fmt.Errorf("source already contained a class with identity: %s", id)
		}
		s.classes[id] = &ReflectedClass{
			ID:         id,
			Doc:        def.Doc,
			Bases:      def.Bases,
			Attributes: reflectAttributes(def.Attributes),
		}
	}
	for name, def := range mf.Enums {
		if name == "" || strings.Contains(name, ".") {
			return fmt.Errorf("enumeration name invalid: %s", name)
		}
		id := TypeID(mf.Module + "." + name)
		if _, ok := s.enums[id]; ok {
			return fmt.Errorf("source already contained an enumeration with identity: %s", id)
		}
		s.enums[id] = &ReflectedEnum{
			ID:      id,
			Doc:     def.Doc,
			Members: def.Members,
		}
	}
	if mf.Version != "" {
		s.version = mf.Version
	}
	return nil
}

func reflectAttributes(defs []AttributeDef) []ReflectedAttribute {
	out := make([]ReflectedAttribute, 0, len(defs))
	for _, d := range defs {
		out = append(out, ReflectedAttribute{
			Name:    d.Name,
			Type:    d.Type,
			Default: d.Default,
		})
	}
	return out
}

// LoadFile reads a single model dump file in to the source.
func (s *BaseSource) LoadFile(p string) error {
	mf, err := ReadModelFile(p)
	if err != nil {
		return err
	}
	return s.AddModelFile(mf)
}

func modelFileExt(p string) bool {
	switch filepath.Ext(p) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}

// LoadDirectory recursively loads all model dump files from a directory.
func (s *BaseSource) LoadDirectory(dirPath string) error {
	walkFunc := func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !modelFileExt(p) {
			return nil
		}
		slog.Debug("loading CIM model dump file", "path", p)
		return s.LoadFile(p)
	}
	return filepath.WalkDir(dirPath, walkFunc)
}

// LoadEmbedFS recursively loads all model dump files from an embed.FS.
func (s *BaseSource) LoadEmbedFS(efs embed.FS) error {
	walkFunc := func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !modelFileExt(p) {
			return nil
		}

		slog.Debug("loading embedded CIM model dump file", "path", p)
		b, err := efs.ReadFile(p)
		if err != nil {
			return err
		}
		mf, err := parseModelFile(b, p)
		if err != nil {
			return err
		}
		return s.AddModelFile(mf)
	}
	return fs.WalkDir(efs, ".", walkFunc)
}

// Catalog is the complete reflected type set for one generation run,
// identity-keyed, read once from the Source and immutable afterwards.
type Catalog struct {
	Classes map[TypeID]*ReflectedClass
	Enums   map[TypeID]*ReflectedEnum

	// Modules is the sorted set of source module names seen.
	Modules []string
	Version string

	// unqualified-name indexes for reference resolution
	classByName map[string][]TypeID
	enumByName  map[string][]TypeID
}

// BuildCatalog enumerates every class and enumeration reachable from the
// source's root type set, visiting each identity exactly once.
func BuildCatalog(src Source) (*Catalog, error) {
	cat := &Catalog{
		Classes:     make(map[TypeID]*ReflectedClass),
		Enums:       make(map[TypeID]*ReflectedEnum),
		Version:     src.ModelVersion(),
		classByName: make(map[string][]TypeID),
		enumByName:  make(map[string][]TypeID),
	}

	mods := make(map[string]bool)
	for _, id := range src.RootTypes() {
		if _, ok := cat.Classes[id]; ok {
			continue
		}
		c, err := src.ReflectClass(id)
		if err != nil {
			return nil, fmt.Errorf("reflecting class %s: %w", id, err)
		}
		cat.Classes[id] = c
		cat.classByName[id.Name()] = append(cat.classByName[id.Name()], id)
		mods[id.Module()] = true
	}
	for _, id := range src.EnumTypes() {
		if _, ok := cat.Enums[id]; ok {
			continue
		}
		e, err := src.ReflectEnum(id)
		if err != nil {
			return nil, fmt.Errorf("reflecting enumeration %s: %w", id, err)
		}
		cat.Enums[id] = e
		cat.enumByName[id.Name()] = append(cat.enumByName[id.Name()], id)
		mods[id.Module()] = true
	}

	for m := range mods {
		cat.Modules = append(cat.Modules, m)
	}
	sort.Strings(cat.Modules)
	return cat, nil
}

// ResolveClass resolves an attribute's class reference, qualified or not.
// An unqualified reference prefers a class in the referring module, then a
// unique match anywhere in the catalog.
func (c *Catalog) ResolveClass(fromModule, ref string) (*ReflectedClass, bool) {
	if strings.Contains(ref, ".") {
		cls, ok := c.Classes[TypeID(ref)]
		return cls, ok
	}
	if cls, ok := c.Classes[TypeID(fromModule+"."+ref)]; ok {
		return cls, true
	}
	ids := c.classByName[ref]
	if len(ids) == 1 {
		return c.Classes[ids[0]], true
	}
	return nil, false
}

// ResolveEnum resolves an attribute's enumeration reference, with the same
// rules as ResolveClass.
func (c *Catalog) ResolveEnum(fromModule, ref string) (*ReflectedEnum, bool) {
	if strings.Contains(ref, ".") {
		e, ok := c.Enums[TypeID(ref)]
		return e, ok
	}
	if e, ok := c.Enums[TypeID(fromModule+"."+ref)]; ok {
		return e, true
	}
	ids := c.enumByName[ref]
	if len(ids) == 1 {
		return c.Enums[ids[0]], true
	}
	return nil, false
}

// ModuleClasses returns the catalog classes owned by one module, sorted by
// name for stable generated output.
func (c *Catalog) ModuleClasses(module string) []*ReflectedClass {
	var out []*ReflectedClass
	for id, cls := range c.Classes {
		if id.Module() == module {
			out = append(out, cls)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
