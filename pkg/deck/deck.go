// Package deck holds the in-memory slide model and the assembly policy that
// decides, per source image, between a text slide, an image-fallback slide,
// or skipping the image entirely.
package deck

import "img2deck/pkg/structure"

// Kind tags a slide descriptor variant.
type Kind int

const (
	// TextSlide carries a title and bullet list.
	TextSlide Kind = iota
	// ImageSlide carries a title and the embedded original image.
	ImageSlide
)

// Slide is one slide descriptor. For TextSlide, Bullets is non-empty and
// ImagePath is unset; for ImageSlide the reverse holds.
type Slide struct {
	Kind    Kind
	Title   string
	Bullets []string
	// ImagePath identifies the source image to embed.
	ImagePath string
}

// Deck is the ordered, append-only sequence of slides for one run.
type Deck struct {
	Slides []Slide
}

// Append adds a slide preserving insertion order.
func (d *Deck) Append(s Slide) {
	d.Slides = append(d.Slides, s)
}

// Summary reports per-run outcome counts. Skipped images are not failures;
// the run still succeeds and reports them by name.
type Summary struct {
	Total        int
	TextSlides   int
	ImageSlides  int
	Skipped      int
	SkippedNames []string
}

// Assemble applies the slide decision table:
//
//	succeeded, bullets       -> text slide
//	succeeded, no bullets    -> image slide when fallback enabled, else skip
//	failed                   -> image slide (titled by display name) when
//	                            fallback enabled, else skip
//
// The second return is false when the image contributes no slide.
func Assemble(imagePath, displayName string, content structure.Content, succeeded, imageFallback bool) (Slide, bool) {
	if succeeded && len(content.Bullets) > 0 {
		return Slide{Kind: TextSlide, Title: content.Title, Bullets: content.Bullets}, true
	}
	if !imageFallback {
		return Slide{}, false
	}
	title := content.Title
	if !succeeded || title == "" {
		title = displayName
	}
	return Slide{Kind: ImageSlide, Title: title, ImagePath: imagePath}, true
}
