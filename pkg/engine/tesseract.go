package engine

import (
	"bytes"
	"context"
	"fmt"
	"image/color"
	"image/png"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"
)

// Tesseract recognizes text through the linked libtesseract (gosseract).
type Tesseract struct {
	probeOnce sync.Once
	usable    bool
}

// NewTesseract returns the library-backed Tesseract engine.
func NewTesseract() *Tesseract {
	return &Tesseract{}
}

func (t *Tesseract) Name() string { return "tesseract" }

// Available probes the engine once by recognizing a tiny blank image. The
// probe fails when the runtime library or tessdata is broken; a panic from
// the cgo layer is absorbed into "unavailable".
func (t *Tesseract) Available() bool {
	t.probeOnce.Do(func() {
		t.usable = probeTesseract()
	})
	return t.usable
}

func probeTesseract() (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
		}
	}()
	client := gosseract.NewClient()
	defer client.Close()
	if err := client.SetImageFromBytes(blankPNG()); err != nil {
		return false
	}
	if _, err := client.Text(); err != nil {
		return false
	}
	return true
}

// Recognize runs a single OCR pass over the image file. The context is
// honored between setup steps; the Text call itself is bounded by the
// recognizer's timeout wrapper.
func (t *Tesseract) Recognize(ctx context.Context, imagePath, lang string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	client := gosseract.NewClient()
	defer client.Close()
	if lang != "" {
		if err := client.SetLanguage(lang); err != nil {
			return "", fmt.Errorf("set language %q: %w", lang, err)
		}
	}
	if err := client.SetImage(imagePath); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("tesseract: %w", err)
	}
	return text, nil
}

func blankPNG() []byte {
	img := imaging.New(8, 8, color.NRGBA{255, 255, 255, 255})
	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}
