package cim

import (
	"fmt"
	"strings"
)

// docURLTemplate is the published cim-spec documentation convention:
// one markdown page per source module, one anchor per class.
const docURLTemplate = "https://github.com/Esri/cim-spec/blob/main/docs/v3/%s.md#%s-1"

// DocURL derives the external documentation URL for a class. Pure string
// interpolation of (module name, class name); the URL is never validated.
func DocURL(module, class string) string {
	return fmt.Sprintf(docURLTemplate, module, strings.ToLower(class))
}

// DocumentedClass is a FlattenedClass decorated with its documentation URL
// and normalized doc lines, ready for rendering.
type DocumentedClass struct {
	*FlattenedClass
	URL string
	// DocLines is the normalized class documentation, one rendered line
	// per entry. May be empty.
	DocLines []string
}

// Document decorates a flattened class with its doc link and text. The URL
// is always the first line of the rendered documentation; any further text
// follows after a blank line.
func Document(fc *FlattenedClass) *DocumentedClass {
	return &DocumentedClass{
		FlattenedClass: fc,
		URL:            DocURL(fc.ID.Module(), fc.ID.Name()),
		DocLines:       normalizeDoc(fc.Doc),
	}
}

// normalizeDoc flattens the source model's doc text for comment rendering:
// raw newlines and runs of spaces collapse, and the model's "///" soft
// break becomes a real line break.
func normalizeDoc(doc string) []string {
	doc = strings.TrimSpace(doc)
	if doc == "" {
		return nil
	}
	doc = strings.ReplaceAll(doc, "\n", " ")
	for strings.Contains(doc, "  ") {
		doc = strings.ReplaceAll(doc, "  ", " ")
	}
	var out []string
	for _, line := range strings.Split(doc, "///") {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}
