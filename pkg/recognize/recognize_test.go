package recognize

import (
	"context"
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/disintegration/imaging"

	"img2deck/pkg/engine"
	"img2deck/pkg/preprocess"
)

// langEngine returns canned text per language code and counts invocations.
type langEngine struct {
	byLang map[string]string
	err    error
	calls  []string
}

func (f *langEngine) Name() string    { return "fake" }
func (f *langEngine) Available() bool { return true }

func (f *langEngine) Recognize(ctx context.Context, imagePath, lang string) (string, error) {
	f.calls = append(f.calls, lang)
	if f.err != nil {
		return "", f.err
	}
	return f.byLang[lang], nil
}

func writeTestImage(t *testing.T) string {
	t.Helper()
	img := imaging.New(60, 40, color.NRGBA{255, 255, 255, 255})
	path := filepath.Join(t.TempDir(), "page.png")
	if err := imaging.Save(img, path); err != nil {
		t.Fatalf("save test image: %v", err)
	}
	return path
}

func TestNoEngineFailsFast(t *testing.T) {
	r := New(nil, preprocess.DefaultConfig(), 0)
	res := r.Recognize(context.Background(), Request{Path: "does-not-exist.png", Lang: "vie"})
	if res.Succeeded {
		t.Fatalf("expected failure with no engine")
	}
	if res.RawText != "" {
		t.Fatalf("expected empty text, got %q", res.RawText)
	}
}

func TestPrimaryLanguageSucceeds(t *testing.T) {
	fake := &langEngine{byLang: map[string]string{"vie": "Đề bài\nCâu 1"}}
	h, err := engine.Select(fake)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	r := New(h, preprocess.Config{}, 0)
	res := r.Recognize(context.Background(), Request{Path: writeTestImage(t), Lang: "vie", FallbackLang: "eng"})
	if !res.Succeeded || res.LangUsed != "vie" || res.FallbackUsed {
		t.Fatalf("unexpected result: %+v", res)
	}
	if len(fake.calls) != 1 {
		t.Fatalf("expected a single engine call, got %v", fake.calls)
	}
}

func TestFallbackLanguageUsedWhenPrimaryEmpty(t *testing.T) {
	fake := &langEngine{byLang: map[string]string{"vie": "  \n ", "eng": "Some text"}}
	h, err := engine.Select(fake)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	r := New(h, preprocess.Config{}, 0)
	res := r.Recognize(context.Background(), Request{Path: writeTestImage(t), Lang: "vie", FallbackLang: "eng"})
	if !res.Succeeded {
		t.Fatalf("expected success via fallback: %+v", res)
	}
	if res.LangUsed != "eng" || !res.FallbackUsed {
		t.Fatalf("expected fallback language, got %+v", res)
	}
	if len(fake.calls) != 2 {
		t.Fatalf("expected two engine calls, got %v", fake.calls)
	}
}

func TestFallbackSkippedWhenSameAsPrimary(t *testing.T) {
	fake := &langEngine{byLang: map[string]string{}}
	h, _ := engine.Select(fake)
	r := New(h, preprocess.Config{}, 0)
	res := r.Recognize(context.Background(), Request{Path: writeTestImage(t), Lang: "eng", FallbackLang: "eng"})
	if res.Succeeded {
		t.Fatalf("expected failure: %+v", res)
	}
	if len(fake.calls) != 1 {
		t.Fatalf("identical fallback language must not be retried, calls=%v", fake.calls)
	}
}

func TestEngineErrorAbsorbed(t *testing.T) {
	fake := &langEngine{err: errors.New("spawn failed")}
	h, _ := engine.Select(fake)
	r := New(h, preprocess.Config{}, time.Second)
	res := r.Recognize(context.Background(), Request{Path: writeTestImage(t), Lang: "vie", FallbackLang: "eng"})
	if res.Succeeded {
		t.Fatalf("engine error must map to failure, got %+v", res)
	}
}

func TestUndecodableImageFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.png")
	if err := os.WriteFile(path, []byte("not an image"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	fake := &langEngine{byLang: map[string]string{"vie": "text"}}
	h, _ := engine.Select(fake)
	r := New(h, preprocess.DefaultConfig(), 0)
	res := r.Recognize(context.Background(), Request{Path: path, Lang: "vie"})
	if res.Succeeded {
		t.Fatalf("decode failure must map to extraction failure")
	}
	if len(fake.calls) != 0 {
		t.Fatalf("engine must not run on an undecodable image")
	}
}
