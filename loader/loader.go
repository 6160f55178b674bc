// Package loader reads a compiled story document into a content.Tree:
// a version-gated top-level parse that dispatches into per-shape reader
// functions, each wrapping its own errors with context.
package loader

import (
	"encoding/json"
	"fmt"

	"loom/content"
)

const (
	minCompatVersion = 18
	currentVersion   = 21
)

// document is the rooted JSON object a compiled story serializes to.
type document struct {
	InkVersion int             `json:"inkVersion"`
	Root       json.RawMessage `json:"root"`
	ListDefs   map[string]map[string]int `json:"listDefs"`
}

// Load parses raw into a content.Tree, failing with one of the
// load-error codes: version-too-old, version-too-new, missing-root,
// malformed-document.
func Load(raw []byte) (*content.Tree, error) {
	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, &LoadError{Code: ErrMalformedDocument, Message: err.Error()}
	}
	if doc.InkVersion < minCompatVersion {
		return nil, &LoadError{Code: ErrVersionTooOld, Message: fmt.Sprintf("ink version %d is older than the minimum supported %d", doc.InkVersion, minCompatVersion)}
	}
	if doc.InkVersion > currentVersion {
		return nil, &LoadError{Code: ErrVersionTooNew, Message: fmt.Sprintf("ink version %d is newer than the current %d", doc.InkVersion, currentVersion)}
	}
	if len(doc.Root) == 0 {
		return nil, &LoadError{Code: ErrMissingRoot, Message: "document has no root container"}
	}

	tree := content.NewTree()
	for origin, items := range doc.ListDefs {
		tree.ListDefs[origin] = items
	}

	b := &builder{tree: tree}
	if err := b.buildContainerInto(doc.Root, tree.Root); err != nil {
		return nil, &LoadError{Code: ErrMalformedDocument, Message: err.Error()}
	}
	return tree, nil
}

// LoadError is a fatal load-time failure.
type LoadError struct {
	Code    ErrorCode
	Message string
}

func (e *LoadError) Error() string { return string(e.Code) + ": " + e.Message }

// ErrorCode names a load-error taxonomy entry.
type ErrorCode string

const (
	ErrVersionTooOld     ErrorCode = "version-too-old"
	ErrVersionTooNew     ErrorCode = "version-too-new"
	ErrMissingRoot       ErrorCode = "missing-root"
	ErrMalformedDocument ErrorCode = "malformed-document"
)
