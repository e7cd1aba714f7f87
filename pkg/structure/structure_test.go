package structure

import (
	"errors"
	"reflect"
	"testing"

	"img2deck/pkg/recognize"
)

func okResult(text string) recognize.Result {
	return recognize.Result{RawText: text, LangUsed: "vie", Succeeded: true}
}

func TestFirstLineTitleAndBullets(t *testing.T) {
	res := okResult("Đề bài\n- Câu 1: tính tổng\n- Câu 2: vẽ đồ thị\n")
	c, err := Structure(res, Options{TitleFrom: TitleFirstLine, DisplayName: "debai"})
	if err != nil {
		t.Fatalf("structure: %v", err)
	}
	if c.Title != "Đề bài" {
		t.Fatalf("title = %q", c.Title)
	}
	want := []string{"Câu 1: tính tổng", "Câu 2: vẽ đồ thị"}
	if !reflect.DeepEqual(c.Bullets, want) {
		t.Fatalf("bullets = %#v, want %#v", c.Bullets, want)
	}
}

func TestFilenameTitleIgnoresText(t *testing.T) {
	res := okResult("Some heading\nA bullet")
	c, err := Structure(res, Options{TitleFrom: TitleFilename, DisplayName: "yeucau"})
	if err != nil {
		t.Fatalf("structure: %v", err)
	}
	if c.Title != "yeucau" {
		t.Fatalf("title = %q, want display name", c.Title)
	}
	// No line is consumed by the title under the filename policy.
	want := []string{"Some heading", "A bullet"}
	if !reflect.DeepEqual(c.Bullets, want) {
		t.Fatalf("bullets = %#v, want %#v", c.Bullets, want)
	}
}

func TestFailedResultIsPreconditionError(t *testing.T) {
	_, err := Structure(recognize.Result{}, Options{TitleFrom: TitleFirstLine, DisplayName: "x"})
	if !errors.Is(err, ErrNotRecognized) {
		t.Fatalf("expected ErrNotRecognized, got %v", err)
	}
}

func TestEmptyTextFallsBackToDisplayName(t *testing.T) {
	c, err := Structure(okResult("  \n\r\n "), Options{TitleFrom: TitleFirstLine, DisplayName: "scan01"})
	if err != nil {
		t.Fatalf("structure: %v", err)
	}
	if c.Title != "scan01" {
		t.Fatalf("title = %q", c.Title)
	}
	if len(c.Bullets) != 0 {
		t.Fatalf("expected no bullets, got %#v", c.Bullets)
	}
}

func TestBulletGlyphStripping(t *testing.T) {
	cases := []struct{ in, want string }{
		{"• điểm một", "điểm một"},
		{"* star", "star"},
		{"– dash", "dash"},
		{"1. numbered", "numbered"},
		{"2) numbered too", "numbered too"},
		{"plain", "plain"},
		{"-no space", "no space"},
	}
	for _, tc := range cases {
		if got := stripBulletPrefix(tc.in); got != tc.want {
			t.Fatalf("stripBulletPrefix(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestDuplicateBulletsPreserved(t *testing.T) {
	res := okResult("Title\nrepeat\nrepeat\nrepeat")
	c, err := Structure(res, Options{TitleFrom: TitleFirstLine, DisplayName: "d"})
	if err != nil {
		t.Fatalf("structure: %v", err)
	}
	if len(c.Bullets) != 3 {
		t.Fatalf("OCR repetition must be preserved, got %#v", c.Bullets)
	}
}

func TestMinBulletLength(t *testing.T) {
	res := okResult("Title\nab\n-\nx\nlong enough")
	c, err := Structure(res, Options{TitleFrom: TitleFirstLine, DisplayName: "d", MinBulletLen: 2})
	if err != nil {
		t.Fatalf("structure: %v", err)
	}
	want := []string{"ab", "long enough"}
	if !reflect.DeepEqual(c.Bullets, want) {
		t.Fatalf("bullets = %#v, want %#v", c.Bullets, want)
	}
}

func TestBulletEqualToTitleDropped(t *testing.T) {
	res := okResult("Heading\nheading\nbody")
	c, err := Structure(res, Options{TitleFrom: TitleFirstLine, DisplayName: "d"})
	if err != nil {
		t.Fatalf("structure: %v", err)
	}
	want := []string{"body"}
	if !reflect.DeepEqual(c.Bullets, want) {
		t.Fatalf("bullets = %#v, want %#v", c.Bullets, want)
	}
}
