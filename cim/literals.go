package cim

import (
	"sort"
	"strconv"
)

// EnumLiteral is the generated replacement for one enumeration: a stable
// identifier plus the sorted, deduplicated member set. Literals are keyed by
// enumeration identity, never merged by value equality, so two attributes of
// the same enumeration type share one literal and two enumerations with
// overlapping members stay distinct.
type EnumLiteral struct {
	// Enum is the source enumeration identity.
	Enum TypeID
	// Name is the generated identifier, disambiguated with a numeric
	// suffix when two enumerations derive the same one.
	Name string
	Doc  string
	// Values are member names, sorted and deduplicated.
	Values []string
	// ValueMap holds the numeric value each member has in the source model.
	ValueMap map[string]int
}

// LiteralTable maps enumeration identities to their generated literals.
type LiteralTable struct {
	byEnum map[TypeID]*EnumLiteral
	order  []*EnumLiteral
}

// Literalize builds the literal for every catalog enumeration. An
// enumeration with zero resolvable members yields no literal: attributes of
// that type degrade to an unconstrained string in the generated output, and
// the degradation is surfaced as an empty-enum warning.
func Literalize(cat *Catalog, ws *Warnings) *LiteralTable {
	tbl := &LiteralTable{byEnum: make(map[TypeID]*EnumLiteral)}

	ids := make([]TypeID, 0, len(cat.Enums))
	for id := range cat.Enums {
		ids = append(ids, id)
	}
	// name-first sort so the unsuffixed identifier goes to the first
	// module in order, deterministically
	sort.Slice(ids, func(i, j int) bool {
		if ids[i].Name() != ids[j].Name() {
			return ids[i].Name() < ids[j].Name()
		}
		return ids[i] < ids[j]
	})

	used := make(map[string]bool)
	for _, id := range ids {
		e := cat.Enums[id]
		if len(e.Members) == 0 {
			ws.add(Warning{
				Enum:    id,
				Code:    WarnEmptyEnum,
				Message: "enumeration has no members; attributes degrade to plain string",
			})
			continue
		}

		name := id.Name()
		for n := 2; used[name]; n++ {
			name = id.Name() + strconv.Itoa(n)
		}
		used[name] = true

		lit := &EnumLiteral{
			Enum:     id,
			Name:     name,
			Doc:      e.Doc,
			Values:   memberNames(e.Members),
			ValueMap: e.Members,
		}
		tbl.byEnum[id] = lit
		tbl.order = append(tbl.order, lit)
	}
	return tbl
}

func memberNames(members map[string]int) []string {
	out := make([]string, 0, len(members))
	for m := range members {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

// Lookup returns the literal generated for an enumeration identity.
func (t *LiteralTable) Lookup(id TypeID) (*EnumLiteral, bool) {
	lit, ok := t.byEnum[id]
	return lit, ok
}

// All returns every literal in generation order.
func (t *LiteralTable) All() []*EnumLiteral {
	return t.order
}

// ConstName returns the generated constant identifier for one member of the
// literal, e.g. BlendingModeAlpha.
func (l *EnumLiteral) ConstName(member string) string {
	return l.Name + identifier(member)
}

// identifier strips characters that cannot appear in a generated Go
// identifier. Member names in the source model are identifier-like already;
// this guards against the occasional stray punctuation.
func identifier(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
			out = append(out, r)
		}
	}
	if len(out) == 0 {
		return "X"
	}
	return string(out)
}
