// Package pptx serializes an in-memory deck to a PowerPoint (OOXML) file.
// The corpus offers no PPTX-writing library, so the package emits the OOXML
// parts directly with archive/zip and hand-built XML.
package pptx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

// EMU per inch; all OOXML geometry is in English Metric Units.
const emuPerInch = 914400

const (
	slideHeightEMU   = 6858000 // 7.5in
	slideWidth43EMU  = 9144000  // 10in
	slideWidth169EMU = 12192000 // 13.33in
)

var hexColorRE = regexp.MustCompile(`^[0-9a-fA-F]{6}$`)

// Style is pass-through visual configuration; the builder forwards it into
// run properties without interpreting it.
type Style struct {
	FontName    string
	TitleSize   int // points
	BulletSize  int // points
	AccentColor string // 6-digit hex, with or without leading '#'
	Widescreen  bool
}

// DefaultStyle mirrors the tool's documented defaults.
func DefaultStyle() Style {
	return Style{
		FontName:    "DejaVu Sans",
		TitleSize:   40,
		BulletSize:  24,
		AccentColor: "#1f77b4",
	}
}

// ParseAccent validates a 6-digit hex color and returns it normalized to
// uppercase without the leading '#'.
func ParseAccent(s string) (string, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if !hexColorRE.MatchString(s) {
		return "", fmt.Errorf("accent color must be a 6-digit hex string, got %q", s)
	}
	return strings.ToUpper(s), nil
}

type mediaPart struct {
	name string // file name under ppt/media/
	data []byte
}

type slidePart struct {
	xml   string
	media *mediaPart // nil for text slides
}

// Builder accumulates slides and writes the final package. Slides appear in
// the output in Add order.
type Builder struct {
	style  Style
	accent string
	slides []slidePart
}

// New constructs a Builder, validating the style up front so configuration
// errors abort the run before any OCR work happens.
func New(style Style) (*Builder, error) {
	accent, err := ParseAccent(style.AccentColor)
	if err != nil {
		return nil, err
	}
	if style.TitleSize <= 0 || style.BulletSize <= 0 {
		return nil, fmt.Errorf("font sizes must be positive (title=%d bullet=%d)", style.TitleSize, style.BulletSize)
	}
	if style.FontName == "" {
		style.FontName = DefaultStyle().FontName
	}
	return &Builder{style: style, accent: accent}, nil
}

// SlideCount returns the number of slides added so far.
func (b *Builder) SlideCount() int { return len(b.slides) }

func (b *Builder) slideWidth() int {
	if b.style.Widescreen {
		return slideWidth169EMU
	}
	return slideWidth43EMU
}

// AddTextSlide appends a title-and-bullets slide.
func (b *Builder) AddTextSlide(title string, bullets []string) {
	b.slides = append(b.slides, slidePart{xml: b.textSlideXML(title, bullets)})
}

// AddImageSlide appends a slide embedding the image file under a title. The
// image must be decodable (dimensions are needed for placement); PNG and
// JPEG bytes are embedded as-is.
func (b *Builder) AddImageSlide(title, imagePath string) error {
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return fmt.Errorf("read image: %w", err)
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decode image %s: %w", filepath.Base(imagePath), err)
	}
	ext := "png"
	switch format {
	case "jpeg":
		ext = "jpeg"
	case "png", "gif":
		ext = format
	default:
		return fmt.Errorf("unsupported image format %q", format)
	}
	media := &mediaPart{
		name: fmt.Sprintf("image%d.%s", len(b.slides)+1, ext),
		data: data,
	}
	b.slides = append(b.slides, slidePart{
		xml:   b.imageSlideXML(title, cfg.Width, cfg.Height),
		media: media,
	})
	return nil
}

// Save writes the package to path.
func (b *Builder) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := b.SaveTo(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// SaveTo streams the package to w.
func (b *Builder) SaveTo(w io.Writer) error {
	zw := zip.NewWriter(w)
	parts := []struct {
		name string
		data string
	}{
		{"[Content_Types].xml", b.contentTypesXML()},
		{"_rels/.rels", relsRoot},
		{"ppt/presentation.xml", b.presentationXML()},
		{"ppt/_rels/presentation.xml.rels", b.presentationRels()},
		{"ppt/slideMasters/slideMaster1.xml", slideMasterXML},
		{"ppt/slideMasters/_rels/slideMaster1.xml.rels", slideMasterRels},
		{"ppt/slideLayouts/slideLayout1.xml", slideLayoutXML},
		{"ppt/slideLayouts/_rels/slideLayout1.xml.rels", slideLayoutRels},
		{"ppt/theme/theme1.xml", themeXML},
	}
	for i, s := range b.slides {
		n := i + 1
		parts = append(parts,
			struct {
				name string
				data string
			}{fmt.Sprintf("ppt/slides/slide%d.xml", n), s.xml},
			struct {
				name string
				data string
			}{fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", n), b.slideRels(s)},
		)
	}
	for _, p := range parts {
		f, err := zw.Create(p.name)
		if err != nil {
			return fmt.Errorf("zip %s: %w", p.name, err)
		}
		if _, err := f.Write([]byte(p.data)); err != nil {
			return fmt.Errorf("zip %s: %w", p.name, err)
		}
	}
	for _, s := range b.slides {
		if s.media == nil {
			continue
		}
		f, err := zw.Create("ppt/media/" + s.media.name)
		if err != nil {
			return fmt.Errorf("zip media: %w", err)
		}
		if _, err := f.Write(s.media.data); err != nil {
			return fmt.Errorf("zip media: %w", err)
		}
	}
	return zw.Close()
}

func (b *Builder) contentTypesXML() string {
	var sb strings.Builder
	sb.WriteString(xmlHeader)
	sb.WriteString(`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">`)
	sb.WriteString(`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>`)
	sb.WriteString(`<Default Extension="xml" ContentType="application/xml"/>`)
	sb.WriteString(`<Default Extension="png" ContentType="image/png"/>`)
	sb.WriteString(`<Default Extension="jpeg" ContentType="image/jpeg"/>`)
	sb.WriteString(`<Default Extension="gif" ContentType="image/gif"/>`)
	sb.WriteString(`<Override PartName="/ppt/presentation.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.presentation.main+xml"/>`)
	sb.WriteString(`<Override PartName="/ppt/slideMasters/slideMaster1.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slideMaster+xml"/>`)
	sb.WriteString(`<Override PartName="/ppt/slideLayouts/slideLayout1.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slideLayout+xml"/>`)
	sb.WriteString(`<Override PartName="/ppt/theme/theme1.xml" ContentType="application/vnd.openxmlformats-officedocument.theme+xml"/>`)
	for i := range b.slides {
		fmt.Fprintf(&sb, `<Override PartName="/ppt/slides/slide%d.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slide+xml"/>`, i+1)
	}
	sb.WriteString(`</Types>`)
	return sb.String()
}

func (b *Builder) presentationXML() string {
	var sb strings.Builder
	sb.WriteString(xmlHeader)
	sb.WriteString(`<p:presentation xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main">`)
	sb.WriteString(`<p:sldMasterIdLst><p:sldMasterId id="2147483648" r:id="rId1"/></p:sldMasterIdLst>`)
	if len(b.slides) > 0 {
		sb.WriteString(`<p:sldIdLst>`)
		for i := range b.slides {
			fmt.Fprintf(&sb, `<p:sldId id="%d" r:id="rId%d"/>`, 256+i, 2+i)
		}
		sb.WriteString(`</p:sldIdLst>`)
	}
	fmt.Fprintf(&sb, `<p:sldSz cx="%d" cy="%d"/>`, b.slideWidth(), slideHeightEMU)
	sb.WriteString(`<p:notesSz cx="6858000" cy="9144000"/>`)
	sb.WriteString(`</p:presentation>`)
	return sb.String()
}

func (b *Builder) presentationRels() string {
	var sb strings.Builder
	sb.WriteString(xmlHeader)
	sb.WriteString(`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
	sb.WriteString(`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideMaster" Target="slideMasters/slideMaster1.xml"/>`)
	for i := range b.slides {
		fmt.Fprintf(&sb, `<Relationship Id="rId%d" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide" Target="slides/slide%d.xml"/>`, 2+i, i+1)
	}
	sb.WriteString(`</Relationships>`)
	return sb.String()
}

func (b *Builder) slideRels(s slidePart) string {
	var sb strings.Builder
	sb.WriteString(xmlHeader)
	sb.WriteString(`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
	sb.WriteString(`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideLayout" Target="../slideLayouts/slideLayout1.xml"/>`)
	if s.media != nil {
		fmt.Fprintf(&sb, `<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/image" Target="../media/%s"/>`, s.media.name)
	}
	sb.WriteString(`</Relationships>`)
	return sb.String()
}
