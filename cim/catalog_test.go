package cim

import (
	"embed"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//go:embed testdata/model
var embedModel embed.FS

func TestEmbedSource(t *testing.T) {
	assert := assert.New(t)

	src := NewBaseSource()
	err := src.LoadEmbedFS(embedModel)
	assert.NoError(err)

	_, err = src.ReflectClass("CIMLayer.CIMVectorLayer")
	assert.NoError(err)

	_, err = src.ReflectClass("CIMLayer.NotThere")
	assert.Error(err)

	_, err = src.ReflectEnum("CIMSymbols.FeaturesToLabel")
	assert.NoError(err)

	assert.Equal("3.3.0", src.ModelVersion())
}

func TestDirSource(t *testing.T) {
	assert := assert.New(t)

	src := NewBaseSource()
	err := src.LoadDirectory("testdata/model")
	assert.NoError(err)

	assert.Len(src.RootTypes(), 5)
	assert.Len(src.EnumTypes(), 3)
}

func TestDuplicateIdentity(t *testing.T) {
	assert := assert.New(t)

	src := NewBaseSource()
	mf := &ModelFile{
		CIMModel: 1,
		Module:   "CIMLayer",
		Classes:  map[string]*ClassDef{"CIMBaseLayer": {}},
	}
	assert.NoError(src.AddModelFile(mf))
	assert.Error(src.AddModelFile(mf))
}

func TestBuildCatalog(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	src := NewBaseSource()
	require.NoError(src.LoadDirectory("testdata/model"))

	cat, err := BuildCatalog(&src)
	require.NoError(err)

	assert.Equal([]string{"CIMLayer", "CIMSymbols"}, cat.Modules)
	assert.Equal("3.3.0", cat.Version)
	assert.Len(cat.Classes, 5)
	assert.Len(cat.Enums, 3)

	// unqualified reference, same module
	c, ok := cat.ResolveClass("CIMLayer", "CIMFeatureTable")
	require.True(ok)
	assert.Equal(TypeID("CIMLayer.CIMFeatureTable"), c.ID)

	// unqualified reference, unique match in another module
	c, ok = cat.ResolveClass("CIMLayer", "CIMLabelClass")
	require.True(ok)
	assert.Equal(TypeID("CIMSymbols.CIMLabelClass"), c.ID)

	// qualified reference
	c, ok = cat.ResolveClass("CIMSymbols", "CIMLayer.CIMVectorLayer")
	require.True(ok)
	assert.Equal(TypeID("CIMLayer.CIMVectorLayer"), c.ID)

	_, ok = cat.ResolveClass("CIMLayer", "NotThere")
	assert.False(ok)

	e, ok := cat.ResolveEnum("CIMLayer", "BlendingMode")
	require.True(ok)
	assert.Equal(TypeID("CIMLayer.BlendingMode"), e.ID)
}

func TestTypeID(t *testing.T) {
	assert := assert.New(t)

	id := TypeID("CIMLayer.CIMVectorLayer")
	assert.Equal("CIMLayer", id.Module())
	assert.Equal("CIMVectorLayer", id.Name())

	bare := TypeID("CIMVectorLayer")
	assert.Equal("", bare.Module())
	assert.Equal("CIMVectorLayer", bare.Name())
}

func TestReadModelFileRejectsUnknown(t *testing.T) {
	assert := assert.New(t)

	_, err := ReadModelFile("testdata/model/missing.json")
	assert.Error(err)

	src := NewBaseSource()
	err = src.AddModelFile(&ModelFile{CIMModel: 2, Module: "CIMLayer"})
	assert.Error(err)
}
