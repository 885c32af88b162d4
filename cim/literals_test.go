package cim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLiteralizeCoverage(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	cat := fixtureCatalog(t)
	ws := &Warnings{}
	tbl := Literalize(cat, ws)

	lit, ok := tbl.Lookup("CIMLayer.BlendingMode")
	require.True(ok)
	assert.Equal("BlendingMode", lit.Name)
	assert.Equal([]string{"Alpha", "Multiply", "Screen"}, lit.Values)
	assert.Equal(map[string]int{"Alpha": 0, "Screen": 1, "Multiply": 2}, lit.ValueMap)
	assert.Equal("BlendingModeAlpha", lit.ConstName("Alpha"))

	_, ok = tbl.Lookup("CIMSymbols.FeaturesToLabel")
	assert.True(ok)

	// empty enumeration yields no literal and a warning
	_, ok = tbl.Lookup("CIMLayer.EmptyPlaceholder")
	assert.False(ok)
	require.Len(ws.All(), 1)
	assert.Equal(WarnEmptyEnum, ws.All()[0].Code)
	assert.Equal(TypeID("CIMLayer.EmptyPlaceholder"), ws.All()[0].Enum)

	assert.Len(tbl.All(), 2)
}

func TestLiteralizeNameDisambiguation(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	src := NewBaseSource()
	require.NoError(src.AddModelFile(&ModelFile{
		CIMModel: 1,
		Module:   "CIMAlpha",
		Enums: map[string]*EnumDef{
			"Widget": {Members: map[string]int{"On": 1}},
		},
	}))
	require.NoError(src.AddModelFile(&ModelFile{
		CIMModel: 1,
		Module:   "CIMBeta",
		Enums: map[string]*EnumDef{
			"Widget": {Members: map[string]int{"Off": 0}},
		},
	}))
	cat, err := BuildCatalog(&src)
	require.NoError(err)

	ws := &Warnings{}
	tbl := Literalize(cat, ws)

	a, ok := tbl.Lookup("CIMAlpha.Widget")
	require.True(ok)
	b, ok := tbl.Lookup("CIMBeta.Widget")
	require.True(ok)

	assert.Equal("Widget", a.Name)
	assert.Equal("Widget2", b.Name)
}

func TestLiteralsKeyedByIdentityNotValues(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	// two enumerations with identical member sets stay separate literals
	src := NewBaseSource()
	require.NoError(src.AddModelFile(&ModelFile{
		CIMModel: 1,
		Module:   "CIMTest",
		Enums: map[string]*EnumDef{
			"HorizontalAlignment": {Members: map[string]int{"Left": 0, "Right": 1}},
			"VerticalAlignment":   {Members: map[string]int{"Left": 0, "Right": 1}},
		},
	}))
	cat, err := BuildCatalog(&src)
	require.NoError(err)

	tbl := Literalize(cat, &Warnings{})
	assert.Len(tbl.All(), 2)
}

func TestIdentifierSanitizer(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("esriMetersPerSecond", identifier("esriMetersPerSecond"))
	assert.Equal("a1_b", identifier("a1_b"))
	assert.Equal("NoDash", identifier("No-Dash"))
	assert.Equal("X", identifier("---"))
}
