package cim

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ModelFile is a CIM model dump file: one source module's worth of classes
// and enumerations, as exported from the live object model.
type ModelFile struct {
	// path of the file read
	path string

	// dump format version, e.g. 1
	CIMModel int    `json:"cimModel" yaml:"cimModel"`
	Module   string `json:"module" yaml:"module"`
	// version of the source object model, e.g. "3.3.0"
	Version string               `json:"version,omitempty" yaml:"version,omitempty"`
	Classes map[string]*ClassDef `json:"classes,omitempty" yaml:"classes,omitempty"`
	Enums   map[string]*EnumDef  `json:"enums,omitempty" yaml:"enums,omitempty"`
}

// ClassDef is one class declaration in a model dump. Bases are immediate
// base-class references only, never resolved transitively.
type ClassDef struct {
	Bases      []string       `json:"bases,omitempty" yaml:"bases,omitempty"`
	Doc        string         `json:"doc,omitempty" yaml:"doc,omitempty"`
	Attributes []AttributeDef `json:"attributes,omitempty" yaml:"attributes,omitempty"`
}

// AttributeDef is one declared attribute: name, value type, and the default
// value the live model assigns on construction (if any).
type AttributeDef struct {
	Name    string  `json:"name" yaml:"name"`
	Type    TypeRef `json:"type" yaml:"type"`
	Default any     `json:"default,omitempty" yaml:"default,omitempty"`
}

// TypeRef describes an attribute value type.
//
// Kind is one of: "bool", "int", "float", "string", "datetime", "any",
// "list", "map", "class", "enum". Ref names the target class or enumeration
// for the "class" and "enum" kinds, either unqualified ("CIMFeatureTable")
// or module-qualified ("CIMLayer.CIMFeatureTable"). Items is the element
// type for the "list" kind.
type TypeRef struct {
	Kind  string   `json:"kind" yaml:"kind"`
	Ref   string   `json:"ref,omitempty" yaml:"ref,omitempty"`
	Items *TypeRef `json:"items,omitempty" yaml:"items,omitempty"`
}

// EnumDef is one enumeration declaration: member name to numeric value.
type EnumDef struct {
	Doc     string         `json:"doc,omitempty" yaml:"doc,omitempty"`
	Members map[string]int `json:"members,omitempty" yaml:"members,omitempty"`
}

// ReadModelFile reads a single model dump file, JSON or YAML by extension.
func ReadModelFile(f string) (*ModelFile, error) {
	b, err := os.ReadFile(f)
	if err != nil {
		return nil, err
	}
	return parseModelFile(b, f)
}

func parseModelFile(b []byte, path string) (*ModelFile, error) {
	var mf ModelFile
	switch ext := filepath.Ext(path); ext {
	case ".json":
		if err := json.Unmarshal(b, &mf); err != nil {
			return nil, fmt.Errorf("parsing model file %q: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &mf); err != nil {
			return nil, fmt.Errorf("parsing model file %q: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported model file extension %q: %s", ext, path)
	}
	mf.path = path

	if err := mf.check(); err != nil {
		return nil, fmt.Errorf("model file %q: %w", path, err)
	}
	return &mf, nil
}

func (mf *ModelFile) check() error {
	if mf.CIMModel != 1 {
		return fmt.Errorf("unsupported model dump version: %d", mf.CIMModel)
	}
	if mf.Module == "" {
		return fmt.Errorf("missing module name")
	}
	if strings.Contains(mf.Module, ".") {
		return fmt.Errorf("module name must be unqualified: %s", mf.Module)
	}
	return nil
}
