package engine

import (
	"context"
	"errors"
	"testing"
)

type fakeEngine struct {
	name      string
	available bool
	probes    int
	text      string
	err       error
}

func (f *fakeEngine) Name() string { return f.name }

func (f *fakeEngine) Available() bool {
	f.probes++
	return f.available
}

func (f *fakeEngine) Recognize(ctx context.Context, imagePath, lang string) (string, error) {
	return f.text, f.err
}

func TestSelectPrefersFirstAvailable(t *testing.T) {
	a := &fakeEngine{name: "a", available: false}
	b := &fakeEngine{name: "b", available: true}
	c := &fakeEngine{name: "c", available: true}
	h, err := Select(a, b, c)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if h.Name() != "b" {
		t.Fatalf("expected engine b, got %s", h.Name())
	}
	if c.probes != 0 {
		t.Fatalf("engine c should not have been probed after b succeeded")
	}
}

func TestSelectProbesEachEngineOnce(t *testing.T) {
	a := &fakeEngine{name: "a", available: false}
	b := &fakeEngine{name: "b", available: false}
	_, err := Select(a, b)
	if !errors.Is(err, ErrNoEngine) {
		t.Fatalf("expected ErrNoEngine, got %v", err)
	}
	if a.probes != 1 || b.probes != 1 {
		t.Fatalf("expected one probe each, got a=%d b=%d", a.probes, b.probes)
	}
}

func TestSelectNoEngines(t *testing.T) {
	if _, err := Select(); !errors.Is(err, ErrNoEngine) {
		t.Fatalf("expected ErrNoEngine, got %v", err)
	}
}
