package cim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixtureCatalog(t *testing.T) *Catalog {
	t.Helper()
	src := NewBaseSource()
	require.NoError(t, src.LoadDirectory("testdata/model"))
	cat, err := BuildCatalog(&src)
	require.NoError(t, err)
	return cat
}

func attrNames(attrs []ReflectedAttribute) []string {
	out := make([]string, 0, len(attrs))
	for _, a := range attrs {
		out = append(out, a.Name)
	}
	return out
}

func TestFlattenCompleteness(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	cat := fixtureCatalog(t)
	ws := &Warnings{}
	flat := Flatten(cat, ws)

	fc, ok := flat["CIMLayer.CIMVectorLayer"]
	require.True(ok)

	// root-most base first, declaration order within each level, and the
	// derived transparency override keeps its base position
	assert.Equal([]string{
		"name", "uRI",
		"visibility", "transparency", "blendingMode",
		"featureTable", "scaleSymbols", "labelClasses",
	}, attrNames(fc.Attributes))

	// derived declaration wins the collision
	assert.Equal(float64(50), fc.Attributes[3].Default)

	// classes without bases flatten to their own declarations
	ft := flat["CIMLayer.CIMFeatureTable"]
	assert.Len(ft.Attributes, 5)

	assert.Empty(ws.All())
}

func TestFlattenCycleGuard(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	src := NewBaseSource()
	require.NoError(src.AddModelFile(&ModelFile{
		CIMModel: 1,
		Module:   "CIMTest",
		Classes: map[string]*ClassDef{
			"A": {
				Bases:      []string{"B"},
				Attributes: []AttributeDef{{Name: "alpha", Type: TypeRef{Kind: "string"}}},
			},
			"B": {
				Bases:      []string{"A"},
				Attributes: []AttributeDef{{Name: "beta", Type: TypeRef{Kind: "string"}}},
			},
		},
	}))
	cat, err := BuildCatalog(&src)
	require.NoError(err)

	ws := &Warnings{}
	flat := Flatten(cat, ws)

	assert.Equal([]string{"beta", "alpha"}, attrNames(flat["CIMTest.A"].Attributes))
	assert.Equal([]string{"alpha", "beta"}, attrNames(flat["CIMTest.B"].Attributes))

	var codes []string
	for _, w := range ws.All() {
		codes = append(codes, w.Code)
	}
	assert.Contains(codes, WarnCycleGuard)
}

func TestFlattenDiamondHierarchy(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	src := NewBaseSource()
	require.NoError(src.AddModelFile(&ModelFile{
		CIMModel: 1,
		Module:   "CIMTest",
		Classes: map[string]*ClassDef{
			"Root": {
				Attributes: []AttributeDef{{Name: "r", Type: TypeRef{Kind: "string"}}},
			},
			"Left": {
				Bases:      []string{"Root"},
				Attributes: []AttributeDef{{Name: "l", Type: TypeRef{Kind: "string"}}},
			},
			"Right": {
				Bases:      []string{"Root"},
				Attributes: []AttributeDef{{Name: "rt", Type: TypeRef{Kind: "string"}}},
			},
			"Bottom": {
				Bases:      []string{"Left", "Right"},
				Attributes: []AttributeDef{{Name: "b", Type: TypeRef{Kind: "string"}}},
			},
		},
	}))
	cat, err := BuildCatalog(&src)
	require.NoError(err)

	ws := &Warnings{}
	flat := Flatten(cat, ws)

	// the shared root base merges exactly once, and reaching it through a
	// second branch is not a cycle
	assert.Equal([]string{"r", "l", "rt", "b"}, attrNames(flat["CIMTest.Bottom"].Attributes))
	assert.Equal([]string{"r", "l"}, attrNames(flat["CIMTest.Left"].Attributes))
	assert.Empty(ws.All())
}

func TestFlattenSelfReference(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	src := NewBaseSource()
	require.NoError(src.AddModelFile(&ModelFile{
		CIMModel: 1,
		Module:   "CIMTest",
		Classes: map[string]*ClassDef{
			"Loop": {
				Bases:      []string{"Loop"},
				Attributes: []AttributeDef{{Name: "x", Type: TypeRef{Kind: "int"}}},
			},
		},
	}))
	cat, err := BuildCatalog(&src)
	require.NoError(err)

	ws := &Warnings{}
	flat := Flatten(cat, ws)

	assert.Equal([]string{"x"}, attrNames(flat["CIMTest.Loop"].Attributes))
	require.Len(ws.All(), 1)
	assert.Equal(WarnCycleGuard, ws.All()[0].Code)
}

func TestFlattenMissingBase(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	src := NewBaseSource()
	require.NoError(src.AddModelFile(&ModelFile{
		CIMModel: 1,
		Module:   "CIMTest",
		Classes: map[string]*ClassDef{
			"Orphan": {
				Bases:      []string{"Gone"},
				Attributes: []AttributeDef{{Name: "x", Type: TypeRef{Kind: "int"}}},
			},
		},
	}))
	cat, err := BuildCatalog(&src)
	require.NoError(err)

	ws := &Warnings{}
	flat := Flatten(cat, ws)

	assert.Equal([]string{"x"}, attrNames(flat["CIMTest.Orphan"].Attributes))
	require.Len(ws.All(), 1)
	assert.Equal(WarnMissingBase, ws.All()[0].Code)
}
