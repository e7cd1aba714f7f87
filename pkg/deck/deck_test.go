package deck

import (
	"testing"

	"img2deck/pkg/structure"
)

func TestAssembleDecisionTable(t *testing.T) {
	withBullets := structure.Content{Title: "T", Bullets: []string{"b1"}}
	noBullets := structure.Content{Title: "T"}

	cases := []struct {
		name          string
		content       structure.Content
		succeeded     bool
		imageFallback bool
		wantOK        bool
		wantKind      Kind
		wantTitle     string
	}{
		{"text wins regardless of fallback", withBullets, true, false, true, TextSlide, "T"},
		{"text wins with fallback on", withBullets, true, true, true, TextSlide, "T"},
		{"no bullets falls back to image", noBullets, true, true, true, ImageSlide, "T"},
		{"no bullets without fallback skips", noBullets, true, false, false, TextSlide, ""},
		{"failure falls back to image titled by name", structure.Content{}, false, true, true, ImageSlide, "scan"},
		{"failure without fallback skips", structure.Content{}, false, false, false, TextSlide, ""},
	}
	for _, tc := range cases {
		s, ok := Assemble("scan.png", "scan", tc.content, tc.succeeded, tc.imageFallback)
		if ok != tc.wantOK {
			t.Fatalf("%s: ok = %v, want %v", tc.name, ok, tc.wantOK)
		}
		if !ok {
			continue
		}
		if s.Kind != tc.wantKind {
			t.Fatalf("%s: kind = %v, want %v", tc.name, s.Kind, tc.wantKind)
		}
		if s.Title != tc.wantTitle {
			t.Fatalf("%s: title = %q, want %q", tc.name, s.Title, tc.wantTitle)
		}
		if s.Kind == ImageSlide && s.ImagePath != "scan.png" {
			t.Fatalf("%s: image path = %q", tc.name, s.ImagePath)
		}
	}
}

func TestDeckPreservesOrder(t *testing.T) {
	var d Deck
	d.Append(Slide{Kind: TextSlide, Title: "a"})
	d.Append(Slide{Kind: ImageSlide, Title: "b"})
	d.Append(Slide{Kind: TextSlide, Title: "c"})
	if len(d.Slides) != 3 {
		t.Fatalf("len = %d", len(d.Slides))
	}
	for i, want := range []string{"a", "b", "c"} {
		if d.Slides[i].Title != want {
			t.Fatalf("slide %d title = %q, want %q", i, d.Slides[i].Title, want)
		}
	}
}
