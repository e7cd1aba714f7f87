package main

import (
	"testing"
	"time"

	"img2deck/pkg/structure"
)

func TestParseBuildFlagsDefaults(t *testing.T) {
	bf, err := parseBuildFlags([]string{"a.png", "b.jpg"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if bf.output != "slides_from_images.pptx" {
		t.Fatalf("output = %q", bf.output)
	}
	if len(bf.inputs) != 2 || bf.inputs[0] != "a.png" {
		t.Fatalf("inputs = %v", bf.inputs)
	}
	if bf.opts.Lang != "vie" || bf.opts.FallbackLang != "eng" {
		t.Fatalf("langs = %q/%q", bf.opts.Lang, bf.opts.FallbackLang)
	}
	if bf.opts.TitleFrom != structure.TitleFirstLine {
		t.Fatalf("title-from = %q", bf.opts.TitleFrom)
	}
	if !bf.opts.Preprocess.Enabled || !bf.opts.Preprocess.Adaptive {
		t.Fatalf("preprocess = %+v", bf.opts.Preprocess)
	}
	if bf.opts.Timeout != 60*time.Second {
		t.Fatalf("timeout = %v", bf.opts.Timeout)
	}
	if bf.style.FontName != "DejaVu Sans" || bf.style.TitleSize != 40 || bf.style.BulletSize != 24 {
		t.Fatalf("style = %+v", bf.style)
	}
	if bf.style.AccentColor != "#1f77b4" {
		t.Fatalf("accent = %q", bf.style.AccentColor)
	}
}

func TestParseBuildFlagsNoInputs(t *testing.T) {
	if _, err := parseBuildFlags([]string{"--lang", "eng"}); err == nil {
		t.Fatal("expected error for zero inputs")
	}
}

func TestParseBuildFlagsBadTitleFrom(t *testing.T) {
	if _, err := parseBuildFlags([]string{"--title-from", "banner", "a.png"}); err == nil {
		t.Fatal("expected error for unknown title source")
	}
}

func TestParseBuildFlagsFixedThreshold(t *testing.T) {
	bf, err := parseBuildFlags([]string{"--threshold", "128", "a.png"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if bf.opts.Preprocess.Adaptive {
		t.Fatal("fixed threshold should disable adaptive mode")
	}
	if bf.opts.Preprocess.Threshold != 128 {
		t.Fatalf("threshold = %d", bf.opts.Preprocess.Threshold)
	}
	if _, err := parseBuildFlags([]string{"--threshold", "300", "a.png"}); err == nil {
		t.Fatal("expected error for out-of-range threshold")
	}
}

func TestParseBuildFlagsNoPreprocess(t *testing.T) {
	bf, err := parseBuildFlags([]string{"--no-preprocess", "a.png"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if bf.opts.Preprocess.Enabled {
		t.Fatal("expected preprocessing disabled")
	}
}

func TestParseBuildFlagsOutputExtension(t *testing.T) {
	bf, err := parseBuildFlags([]string{"-o", "deck", "a.png"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if bf.output != "deck.pptx" {
		t.Fatalf("output = %q", bf.output)
	}
}
