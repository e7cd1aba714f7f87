package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"img2deck/pkg/pipeline"
	"img2deck/pkg/pptx"
	"img2deck/pkg/preprocess"
	"img2deck/pkg/structure"
)

// buildFlags holds the parsed build-mode options plus positional inputs.
type buildFlags struct {
	output string
	inputs []string
	opts   pipeline.Options
	style  pptx.Style
}

func parseBuildFlags(args []string) (*buildFlags, error) {
	fs := flag.NewFlagSet("build", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	bf := &buildFlags{}
	fs.StringVar(&bf.output, "output", "slides_from_images.pptx", "output .pptx path")
	fs.StringVar(&bf.output, "o", "slides_from_images.pptx", "output .pptx path (shorthand)")

	lang := fs.String("lang", "vie", "primary OCR language")
	fallbackLang := fs.String("fallback-lang", "eng", "language retried when the primary yields nothing (empty disables)")
	titleFrom := fs.String("title-from", "first-line", "slide title source: first-line or filename")
	noPreprocess := fs.Bool("no-preprocess", false, "feed original images to OCR unchanged")
	deskew := fs.Bool("deskew", false, "estimate and correct page skew before OCR")
	fixedThreshold := fs.Int("threshold", 0, "fixed binarization threshold 1-255 (0 = adaptive)")
	minBulletLen := fs.Int("min-bullet-len", 1, "drop bullets shorter than this many characters")
	imageFallback := fs.Bool("image-fallback", false, "embed the original image when OCR finds no text")
	workers := fs.Int("workers", 1, "images processed concurrently")
	ocrTimeout := fs.Duration("ocr-timeout", 60*time.Second, "per-image OCR time limit")

	fontName := fs.String("font-name", "DejaVu Sans", "font for all slide text")
	titleSize := fs.Int("title-size", 40, "title font size in points")
	bulletSize := fs.Int("bullet-size", 24, "bullet font size in points")
	accentColor := fs.String("accent-color", "#1f77b4", "title color as hex RGB")
	wide := fs.Bool("wide", false, "16:9 slides instead of 4:3")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	bf.inputs = fs.Args()
	if len(bf.inputs) == 0 {
		return nil, fmt.Errorf("no input images given")
	}

	switch *titleFrom {
	case string(structure.TitleFirstLine), string(structure.TitleFilename):
	default:
		return nil, fmt.Errorf("invalid --title-from %q: want first-line or filename", *titleFrom)
	}
	if *fixedThreshold < 0 || *fixedThreshold > 255 {
		return nil, fmt.Errorf("invalid --threshold %d: want 1-255", *fixedThreshold)
	}
	if !strings.HasSuffix(strings.ToLower(bf.output), ".pptx") {
		bf.output += ".pptx"
	}

	pre := preprocess.DefaultConfig()
	if *noPreprocess {
		pre = preprocess.Config{}
	} else {
		if *fixedThreshold > 0 {
			pre.Adaptive = false
			pre.Threshold = uint8(*fixedThreshold)
		}
		pre.Deskew = *deskew
	}

	bf.opts = pipeline.Options{
		Lang:          *lang,
		FallbackLang:  *fallbackLang,
		TitleFrom:     structure.TitleFrom(*titleFrom),
		MinBulletLen:  *minBulletLen,
		Preprocess:    pre,
		ImageFallback: *imageFallback,
		Workers:       *workers,
		Timeout:       *ocrTimeout,
	}

	bf.style = pptx.Style{
		FontName:    *fontName,
		TitleSize:   *titleSize,
		BulletSize:  *bulletSize,
		AccentColor: *accentColor,
		Widescreen:  *wide,
	}
	return bf, nil
}

// runBuild converts the given images into a slide deck and returns the
// process exit code. Per-image failures are reported and skipped; only setup
// and serialization problems are fatal.
func runBuild(args []string) int {
	bf, err := parseBuildFlags(args)
	if err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		return 2
	}

	builder, err := pptx.New(bf.style)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 2
	}

	d, summary := pipeline.Run(context.Background(), bf.inputs, bf.opts)
	dropped := pipeline.Render(d, builder)
	for _, name := range dropped {
		log.Printf("skip %s: could not embed image", name)
	}
	summary.ImageSlides -= len(dropped)
	summary.Skipped += len(dropped)

	if summary.TextSlides+summary.ImageSlides == 0 {
		log.Printf("no slides produced from %d image(s); writing empty deck", summary.Total)
	}
	if err := builder.Save(bf.output); err != nil {
		fmt.Fprintln(os.Stderr, "error: write deck:", err)
		return 1
	}

	log.Printf("wrote %s: %d text slide(s), %d image slide(s), %d skipped of %d image(s)",
		bf.output, summary.TextSlides, summary.ImageSlides, summary.Skipped, summary.Total)
	for _, name := range summary.SkippedNames {
		log.Printf("skipped: %s", name)
	}
	return 0
}
