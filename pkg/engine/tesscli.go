package engine

import (
	"context"
	"fmt"
	"os/exec"
	"sync"
)

// TesseractCLI shells out to the external `tesseract` binary. It is the
// secondary engine: slower per call than the linked library but usable when
// the library was built against a broken installation.
type TesseractCLI struct {
	binary    string
	probeOnce sync.Once
	usable    bool
}

// NewTesseractCLI returns the binary-backed engine.
func NewTesseractCLI() *TesseractCLI {
	return &TesseractCLI{binary: "tesseract"}
}

func (t *TesseractCLI) Name() string { return "tesseract-cli" }

// Available reports whether the tesseract binary is on PATH. Probed once.
func (t *TesseractCLI) Available() bool {
	t.probeOnce.Do(func() {
		_, err := exec.LookPath(t.binary)
		t.usable = err == nil
	})
	return t.usable
}

// Recognize invokes `tesseract IMAGE stdout -l LANG` and returns its output.
func (t *TesseractCLI) Recognize(ctx context.Context, imagePath, lang string) (string, error) {
	args := []string{imagePath, "stdout"}
	if lang != "" {
		args = append(args, "-l", lang)
	}
	cmd := exec.CommandContext(ctx, t.binary, args...)
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("tesseract binary: %w", err)
	}
	return string(out), nil
}
