// Package engine abstracts OCR providers behind a single capability
// interface so the recognizer does not care whether text comes from the
// linked Tesseract library or an external binary.
package engine

import (
	"context"
	"errors"
)

// ErrNoEngine is returned by Select when no candidate engine probes as usable.
// Callers treat it as a recoverable condition: every image becomes an
// extraction failure and flows into the image-fallback policy.
var ErrNoEngine = errors.New("no OCR engine available")

// Engine is a concrete OCR implementation. Language codes are opaque strings
// in the engine's own convention (Tesseract uses three-letter codes).
type Engine interface {
	Name() string
	Available() bool
	Recognize(ctx context.Context, imagePath, lang string) (string, error)
}

// Default returns the built-in preference order: the linked Tesseract library
// first, the external tesseract binary as a secondary.
func Default() []Engine {
	return []Engine{NewTesseract(), NewTesseractCLI()}
}
