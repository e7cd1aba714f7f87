package engine

import "log"

// Handle wraps the engine chosen for a run. It is constructed once by Select
// and passed explicitly into the recognizer so the pipeline stays reentrant;
// nothing here is process-global.
type Handle struct {
	engine Engine
}

// Engine returns the selected engine.
func (h *Handle) Engine() Engine { return h.engine }

// Name returns the selected engine's name.
func (h *Handle) Name() string { return h.engine.Name() }

// Select probes the candidate engines in preference order and returns a
// handle on the first usable one. Probing may spawn processes, so engines
// memoize their own probe; Select calls Available at most once per engine.
// Returns ErrNoEngine when nothing probes successfully.
func Select(engines ...Engine) (*Handle, error) {
	for _, e := range engines {
		if e.Available() {
			return &Handle{engine: e}, nil
		}
		log.Printf("OCR engine %s unavailable, trying next", e.Name())
	}
	return nil, ErrNoEngine
}
