package cim

import "fmt"

// Warning codes surfaced by a generation run. Warnings never stop output
// emission; they are collected and reported at the end of the run.
const (
	WarnCycleGuard  = "cycle-guard"
	WarnMissingBase = "missing-base"
	WarnEmptyEnum   = "empty-enum"
	WarnUnknownType = "unknown-type"
)

// Warning is one non-fatal finding from a generation run.
type Warning struct {
	Class   TypeID `json:"class,omitempty"`
	Enum    TypeID `json:"enum,omitempty"`
	Attr    string `json:"attr,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (w Warning) String() string {
	ctx := string(w.Class)
	if w.Enum != "" {
		ctx = string(w.Enum)
	}
	if w.Attr != "" {
		ctx = ctx + "." + w.Attr
	}
	if ctx == "" {
		return fmt.Sprintf("%s: %s", w.Code, w.Message)
	}
	return fmt.Sprintf("%s: %s: %s", w.Code, ctx, w.Message)
}

// Warnings accumulates findings across the pipeline stages of one run.
type Warnings struct {
	list []Warning
}

func (ws *Warnings) add(w Warning) {
	ws.list = append(ws.list, w)
}

// All returns the collected warnings in the order recorded.
func (ws *Warnings) All() []Warning {
	return ws.list
}
