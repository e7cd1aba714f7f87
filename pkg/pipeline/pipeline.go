// Package pipeline runs the whole extraction-and-structuring flow: for each
// input image, preprocess + OCR + structuring + slide assembly, appending to
// an in-memory deck whose order always matches the input order.
package pipeline

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"img2deck/pkg/deck"
	"img2deck/pkg/engine"
	"img2deck/pkg/pptx"
	"img2deck/pkg/preprocess"
	"img2deck/pkg/recognize"
	"img2deck/pkg/structure"
)

// Options configure one run. Zero values fall back to defaults where noted.
type Options struct {
	Lang         string
	FallbackLang string
	TitleFrom    structure.TitleFrom
	MinBulletLen int
	Preprocess   preprocess.Config
	// ImageFallback embeds the original image when no usable text came out.
	ImageFallback bool
	// Engines overrides the engine preference order (used by tests and by
	// callers that disable one backend). Nil means the built-in order.
	Engines []engine.Engine
	// Workers > 1 processes images concurrently; deck order is still input
	// order.
	Workers int
	// Timeout bounds each OCR invocation. Zero means no bound.
	Timeout time.Duration
}

// outcome pairs a slide (or skip) with the input it came from.
type outcome struct {
	slide   deck.Slide
	ok      bool
	display string
}

// DisplayName derives the title-friendly name of an input path (the file
// stem).
func DisplayName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Run processes inputs in order and returns the deck plus outcome counts.
// Per-image failures never abort the run; the only error conditions are
// programmer-level (none currently). A missing engine simply routes every
// image through the fallback policy.
func Run(ctx context.Context, inputs []string, opts Options) (deck.Deck, deck.Summary) {
	engines := opts.Engines
	if engines == nil {
		engines = engine.Default()
	}
	handle, err := engine.Select(engines...)
	if err != nil {
		log.Printf("OCR disabled for this run: %v", err)
		handle = nil
	} else {
		log.Printf("Using OCR engine: %s", handle.Name())
	}
	rec := recognize.New(handle, opts.Preprocess, opts.Timeout)

	outcomes := make([]outcome, len(inputs))
	if opts.Workers > 1 && len(inputs) > 1 {
		runParallel(ctx, inputs, outcomes, rec, opts)
	} else {
		for i, path := range inputs {
			outcomes[i] = processOne(ctx, path, rec, opts)
		}
	}

	var d deck.Deck
	summary := deck.Summary{Total: len(inputs)}
	for _, out := range outcomes {
		if !out.ok {
			summary.Skipped++
			summary.SkippedNames = append(summary.SkippedNames, out.display)
			continue
		}
		d.Append(out.slide)
		if out.slide.Kind == deck.TextSlide {
			summary.TextSlides++
		} else {
			summary.ImageSlides++
		}
	}
	return d, summary
}

// runParallel fans inputs out over a bounded worker pool, writing results by
// input index so the caller sees them in original order.
func runParallel(ctx context.Context, inputs []string, outcomes []outcome, rec *recognize.Recognizer, opts Options) {
	type job struct {
		idx  int
		path string
	}
	jobs := make(chan job)
	var wg sync.WaitGroup
	workers := opts.Workers
	if workers > len(inputs) {
		workers = len(inputs)
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				outcomes[j.idx] = processOne(ctx, j.path, rec, opts)
			}
		}()
	}
	for i, p := range inputs {
		jobs <- job{idx: i, path: p}
	}
	close(jobs)
	wg.Wait()
}

// processOne runs the per-image flow and applies the slide decision table.
func processOne(ctx context.Context, path string, rec *recognize.Recognizer, opts Options) outcome {
	display := DisplayName(path)
	if _, err := os.Stat(path); err != nil {
		log.Printf("[warn] file not found, skipping: %s", path)
		return outcome{display: display}
	}

	res := rec.Recognize(ctx, recognize.Request{
		Path:         path,
		DisplayName:  display,
		Lang:         opts.Lang,
		FallbackLang: opts.FallbackLang,
	})

	var content structure.Content
	if res.Succeeded {
		c, err := structure.Structure(res, structure.Options{
			TitleFrom:    opts.TitleFrom,
			DisplayName:  display,
			MinBulletLen: opts.MinBulletLen,
		})
		if err != nil {
			// Unreachable with a succeeded result; treat as extraction failure.
			log.Printf("structure %s: %v", display, err)
			res.Succeeded = false
		} else {
			content = c
		}
	}

	slide, ok := deck.Assemble(path, display, content, res.Succeeded, opts.ImageFallback)
	if !ok {
		log.Printf("[skip] no usable content for %s", display)
	}
	return outcome{slide: slide, ok: ok, display: display}
}

// Render feeds the deck into the presentation builder. Image slides whose
// source cannot be embedded (undecodable file) are dropped and reported by
// display name; text slides cannot fail.
func Render(d deck.Deck, b *pptx.Builder) (dropped []string) {
	for _, s := range d.Slides {
		switch s.Kind {
		case deck.TextSlide:
			b.AddTextSlide(s.Title, s.Bullets)
		case deck.ImageSlide:
			if err := b.AddImageSlide(s.Title, s.ImagePath); err != nil {
				log.Printf("[skip] cannot embed %s: %v", s.Title, err)
				dropped = append(dropped, s.Title)
			}
		}
	}
	return dropped
}
