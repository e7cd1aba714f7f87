// Package recognize orchestrates preprocessing, engine invocation and
// language fallback for a single source image. All per-image failures are
// absorbed here and reported as data (Result.Succeeded), never as errors
// crossing into slide assembly.
package recognize

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/disintegration/imaging"

	"img2deck/pkg/engine"
	"img2deck/pkg/preprocess"
)

// Request describes one OCR attempt.
type Request struct {
	Path         string
	DisplayName  string
	Lang         string
	FallbackLang string
}

// Result is produced exactly once per Request. Succeeded is false when both
// languages yielded empty text, the image could not be decoded, or no engine
// was available.
type Result struct {
	RawText      string
	LangUsed     string
	FallbackUsed bool
	Succeeded    bool
}

// Recognizer binds a selected engine handle to a preprocessing config. A nil
// handle means no engine probed successfully; every Recognize call then fails
// fast without touching the image.
type Recognizer struct {
	handle  *engine.Handle
	cfg     preprocess.Config
	timeout time.Duration
}

// New constructs a Recognizer. handle may be nil. timeout bounds each engine
// invocation so one malformed image cannot hang the run; zero disables the
// bound.
func New(handle *engine.Handle, cfg preprocess.Config, timeout time.Duration) *Recognizer {
	return &Recognizer{handle: handle, cfg: cfg, timeout: timeout}
}

// Recognize runs the full language-fallback strategy for one image.
func (r *Recognizer) Recognize(ctx context.Context, req Request) Result {
	if r.handle == nil {
		return Result{}
	}

	imgPath, cleanup, err := r.prepare(req.Path)
	if err != nil {
		log.Printf("preprocess %s failed: %v", req.DisplayName, err)
		return Result{}
	}
	defer cleanup()

	if text, ok := r.invoke(ctx, imgPath, req.Lang); ok {
		return Result{RawText: text, LangUsed: req.Lang, Succeeded: true}
	}
	// A single-language model can silently return near-empty output on text
	// it cannot segment; retry once with the fallback model.
	if req.FallbackLang != "" && req.FallbackLang != req.Lang {
		if text, ok := r.invoke(ctx, imgPath, req.FallbackLang); ok {
			return Result{RawText: text, LangUsed: req.FallbackLang, FallbackUsed: true, Succeeded: true}
		}
	}
	return Result{}
}

// prepare decodes and preprocesses the source image, writing the normalized
// version to a temp PNG for the engine. With preprocessing disabled the
// original path is used directly and cleanup is a no-op.
func (r *Recognizer) prepare(path string) (string, func(), error) {
	if !r.cfg.Enabled {
		if _, err := os.Stat(path); err != nil {
			return "", nil, err
		}
		return path, func() {}, nil
	}
	img, err := imaging.Open(path)
	if err != nil {
		return "", nil, fmt.Errorf("open image: %w", err)
	}
	processed := preprocess.Apply(img, r.cfg)
	tmp, err := os.CreateTemp("", "img2deck-*.png")
	if err != nil {
		return "", nil, err
	}
	name := tmp.Name()
	_ = tmp.Close()
	if err := imaging.Save(processed, name); err != nil {
		_ = os.Remove(name)
		return "", nil, fmt.Errorf("save preprocessed image: %w", err)
	}
	return name, func() { _ = os.Remove(name) }, nil
}

// invoke runs one engine call with the configured timeout. Engine errors,
// timeouts and panics all collapse to "no usable text".
func (r *Recognizer) invoke(ctx context.Context, imgPath, lang string) (string, bool) {
	callCtx := ctx
	cancel := func() {}
	if r.timeout > 0 {
		callCtx, cancel = context.WithTimeout(ctx, r.timeout)
	}
	defer cancel()

	type outcome struct {
		text string
		err  error
	}
	ch := make(chan outcome, 1)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				ch <- outcome{err: fmt.Errorf("engine panic: %v", rec)}
			}
		}()
		text, err := r.handle.Engine().Recognize(callCtx, imgPath, lang)
		ch <- outcome{text: text, err: err}
	}()

	select {
	case <-callCtx.Done():
		log.Printf("OCR %s lang=%s aborted: %v", r.handle.Name(), lang, callCtx.Err())
		return "", false
	case out := <-ch:
		if out.err != nil {
			log.Printf("OCR %s lang=%s failed: %v", r.handle.Name(), lang, out.err)
			return "", false
		}
		text := strings.TrimSpace(out.text)
		if text == "" {
			return "", false
		}
		return out.text, true
	}
}
