// Package structure derives slide content (title + bullets) from raw
// recognized text.
package structure

import (
	"errors"
	"strings"

	"img2deck/pkg/recognize"
)

// ErrNotRecognized is returned when Structure is called on a failed
// recognition result. That is a programmer error in the caller, not a
// runtime condition this package recovers from.
var ErrNotRecognized = errors.New("structure called on failed recognition result")

// TitleFrom selects how the slide title is derived.
type TitleFrom string

const (
	TitleFirstLine TitleFrom = "first-line"
	TitleFilename  TitleFrom = "filename"
)

// Options configure structuring. MinBulletLen drops bullets shorter than the
// given rune count after glyph stripping; OCR noise characteristics vary by
// input quality, so it is configuration rather than a constant.
type Options struct {
	TitleFrom    TitleFrom
	DisplayName  string
	MinBulletLen int
}

// Content is the structured form of one image's recognized text. Bullets are
// trimmed and stripped of leading bullet glyphs; duplicates are preserved as
// OCR produced them.
type Content struct {
	Title   string
	Bullets []string
}

// Structure splits raw OCR text into a title and bullet list.
func Structure(res recognize.Result, opts Options) (Content, error) {
	if !res.Succeeded {
		return Content{}, ErrNotRecognized
	}
	minLen := opts.MinBulletLen
	if minLen < 1 {
		minLen = 1
	}

	var lines []string
	for _, ln := range strings.Split(res.RawText, "\n") {
		ln = strings.TrimSpace(strings.TrimRight(ln, "\r"))
		if ln != "" {
			lines = append(lines, ln)
		}
	}

	var title string
	candidates := lines
	switch {
	case opts.TitleFrom == TitleFilename || len(lines) == 0:
		title = opts.DisplayName
	default:
		title = stripBulletPrefix(lines[0])
		if title == "" {
			title = opts.DisplayName
		}
		candidates = lines[1:]
	}

	var bullets []string
	for _, raw := range candidates {
		b := stripBulletPrefix(raw)
		if len([]rune(b)) < minLen {
			continue
		}
		if strings.EqualFold(b, title) {
			continue
		}
		bullets = append(bullets, b)
	}
	return Content{Title: title, Bullets: bullets}, nil
}

var bulletGlyphs = []string{"•", "·", "ꞏ", "*", "–", "—", "-"}

// stripBulletPrefix removes one leading bullet glyph or a simple numeric
// prefix like "1." / "1)" and re-trims.
func stripBulletPrefix(s string) string {
	s = strings.TrimSpace(s)
	for _, g := range bulletGlyphs {
		if strings.HasPrefix(s, g) {
			return strings.TrimSpace(s[len(g):])
		}
	}
	r := []rune(s)
	if len(r) >= 2 && r[0] >= '0' && r[0] <= '9' && (r[1] == '.' || r[1] == ')') {
		return strings.TrimSpace(string(r[2:]))
	}
	return s
}
