package cim

import (
	"fmt"
	"sort"
)

// FlattenedClass is a class with its complete attribute set resolved: the
// union of its own declarations and every transitive base's, with no base
// reference left. Attribute names are unique within a flattened class.
type FlattenedClass struct {
	ID         TypeID
	Doc        string
	Attributes []ReflectedAttribute
}

// Flatten computes the FlattenedClass for every catalog class.
//
// Attributes are ordered by declaring-class depth ascending (root-most base
// first) and declaration order within a class. When a name is declared at
// more than one level, the most-derived declaration wins but the attribute
// keeps the position of its shallowest declaration, so generated output is
// stable across runs.
func Flatten(cat *Catalog, ws *Warnings) map[TypeID]*FlattenedClass {
	ids := make([]TypeID, 0, len(cat.Classes))
	for id := range cat.Classes {
		ids = append(ids, id)
	}
	// sorted traversal keeps warning order stable across runs
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make(map[TypeID]*FlattenedClass, len(cat.Classes))
	for _, id := range ids {
		c := cat.Classes[id]
		out[id] = &FlattenedClass{
			ID:         id,
			Doc:        c.Doc,
			Attributes: flattenClass(cat, c, ws),
		}
	}
	return out
}

func flattenClass(cat *Catalog, c *ReflectedClass, ws *Warnings) []ReflectedAttribute {
	var merged []ReflectedAttribute
	index := make(map[string]int)

	// merge appends unseen names and overrides seen ones in place, so a
	// derived redeclaration wins without moving the attribute.
	merge := func(attrs []ReflectedAttribute) {
		for _, a := range attrs {
			if i, ok := index[a.Name]; ok {
				merged[i] = a
				continue
			}
			index[a.Name] = len(merged)
			merged = append(merged, a)
		}
	}

	// seen dedups ancestors shared across branches (a diamond merges its
	// root once); path tracks the active base chain, so only a base that
	// is its own ancestor counts as a cycle.
	seen := map[TypeID]bool{c.ID: true}
	path := map[TypeID]bool{c.ID: true}

	var walk func(cls *ReflectedClass)
	walk = func(cls *ReflectedClass) {
		for _, ref := range cls.Bases {
			base, ok := cat.ResolveClass(cls.ID.Module(), ref)
			if !ok {
				ws.add(Warning{
					Class:   c.ID,
					Code:    WarnMissingBase,
					Message: fmt.Sprintf("base class %q of %s not found in catalog", ref, cls.ID),
				})
				continue
			}
			if path[base.ID] {
				ws.add(Warning{
					Class:   c.ID,
					Code:    WarnCycleGuard,
					Message: fmt.Sprintf("base-class cycle through %s truncated", base.ID),
				})
				continue
			}
			if seen[base.ID] {
				continue
			}
			seen[base.ID] = true
			path[base.ID] = true
			walk(base)
			delete(path, base.ID)
			merge(base.Attributes)
		}
	}
	walk(c)
	merge(c.Attributes)

	return merged
}
