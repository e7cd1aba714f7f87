package pptx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"image/color"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
)

func readZipPart(t *testing.T, zr *zip.Reader, name string) []byte {
	t.Helper()
	for _, f := range zr.File {
		if f.Name == name {
			rc, err := f.Open()
			if err != nil {
				t.Fatalf("open %s: %v", name, err)
			}
			defer rc.Close()
			data, err := io.ReadAll(rc)
			if err != nil {
				t.Fatalf("read %s: %v", name, err)
			}
			return data
		}
	}
	t.Fatalf("part %s not found in package", name)
	return nil
}

// slideText extracts the character data of all <a:t> elements in a slide part.
func slideText(t *testing.T, data []byte) []string {
	t.Helper()
	dec := xml.NewDecoder(bytes.NewReader(data))
	var out []string
	inText := false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("decode slide xml: %v", err)
		}
		switch el := tok.(type) {
		case xml.StartElement:
			if el.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			if el.Name.Local == "t" {
				inText = false
			}
		case xml.CharData:
			if inText {
				out = append(out, string(el))
			}
		}
	}
	return out
}

func buildToZip(t *testing.T, b *Builder) *zip.Reader {
	t.Helper()
	var buf bytes.Buffer
	if err := b.SaveTo(&buf); err != nil {
		t.Fatalf("save: %v", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("reopen package: %v", err)
	}
	return zr
}

func TestTextSlideRoundTrip(t *testing.T) {
	b, err := New(DefaultStyle())
	if err != nil {
		t.Fatalf("new builder: %v", err)
	}
	b.AddTextSlide("Đề bài", []string{"Câu 1: ...", "Câu 2: ..."})
	zr := buildToZip(t, b)

	for _, part := range []string{
		"[Content_Types].xml",
		"_rels/.rels",
		"ppt/presentation.xml",
		"ppt/slideMasters/slideMaster1.xml",
		"ppt/slideLayouts/slideLayout1.xml",
		"ppt/theme/theme1.xml",
		"ppt/slides/slide1.xml",
		"ppt/slides/_rels/slide1.xml.rels",
	} {
		readZipPart(t, zr, part)
	}

	texts := slideText(t, readZipPart(t, zr, "ppt/slides/slide1.xml"))
	joined := strings.Join(texts, "|")
	for _, want := range []string{"Đề bài", "Câu 1: ...", "Câu 2: ..."} {
		if !strings.Contains(joined, want) {
			t.Fatalf("slide text %q missing %q", joined, want)
		}
	}
}

func TestImageSlideEmbedsMedia(t *testing.T) {
	img := imaging.New(200, 100, color.NRGBA{10, 20, 30, 255})
	path := filepath.Join(t.TempDir(), "scan.png")
	if err := imaging.Save(img, path); err != nil {
		t.Fatalf("save fixture: %v", err)
	}
	b, err := New(DefaultStyle())
	if err != nil {
		t.Fatalf("new builder: %v", err)
	}
	if err := b.AddImageSlide("scan", path); err != nil {
		t.Fatalf("add image slide: %v", err)
	}
	zr := buildToZip(t, b)
	readZipPart(t, zr, "ppt/media/image1.png")
	rels := string(readZipPart(t, zr, "ppt/slides/_rels/slide1.xml.rels"))
	if !strings.Contains(rels, "../media/image1.png") {
		t.Fatalf("slide rels missing image relationship: %s", rels)
	}
	slide := string(readZipPart(t, zr, "ppt/slides/slide1.xml"))
	if !strings.Contains(slide, `r:embed="rId2"`) {
		t.Fatalf("slide missing blip embed: %s", slide)
	}
}

func TestImageSlideRejectsUndecodable(t *testing.T) {
	b, _ := New(DefaultStyle())
	if err := b.AddImageSlide("x", filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Fatalf("expected error for missing image")
	}
}

func TestWidescreenSize(t *testing.T) {
	style := DefaultStyle()
	style.Widescreen = true
	b, err := New(style)
	if err != nil {
		t.Fatalf("new builder: %v", err)
	}
	b.AddTextSlide("t", []string{"b"})
	zr := buildToZip(t, b)
	pres := string(readZipPart(t, zr, "ppt/presentation.xml"))
	if !strings.Contains(pres, `cx="12192000" cy="6858000"`) {
		t.Fatalf("expected 16:9 slide size, got %s", pres)
	}
}

func TestParseAccent(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"#1f77b4", "1F77B4", false},
		{"1F77B4", "1F77B4", false},
		{"#fff", "", true},
		{"notahex", "", true},
		{"", "", true},
	}
	for _, tc := range cases {
		got, err := ParseAccent(tc.in)
		if tc.wantErr != (err != nil) {
			t.Fatalf("ParseAccent(%q) err = %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ParseAccent(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFitRect(t *testing.T) {
	w, h := fitRect(200, 100, 1000, 1000)
	if w != 1000 || h != 500 {
		t.Fatalf("landscape fit = %d,%d", w, h)
	}
	w, h = fitRect(100, 200, 1000, 1000)
	if w != 500 || h != 1000 {
		t.Fatalf("portrait fit = %d,%d", w, h)
	}
	w, h = fitRect(0, 0, 800, 600)
	if w != 800 || h != 600 {
		t.Fatalf("degenerate fit = %d,%d", w, h)
	}
}
