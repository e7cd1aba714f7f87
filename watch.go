package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"img2deck/pkg/pipeline"
	"img2deck/pkg/pptx"
	"img2deck/pkg/preprocess"
	"img2deck/pkg/structure"
)

// runWatch keeps a deck in sync with a directory: it builds once from the
// current contents, then rebuilds whenever a new image appears and has been
// stable on disk for a short while.
func runWatch(args []string) int {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	dir := fs.String("dir", ".", "directory to watch for images")
	output := fs.String("output", "slides_from_images.pptx", "output .pptx path")
	lang := fs.String("lang", "vie", "primary OCR language")
	fallbackLang := fs.String("fallback-lang", "eng", "language retried when the primary yields nothing")
	titleFrom := fs.String("title-from", "first-line", "slide title source: first-line or filename")
	imageFallback := fs.Bool("image-fallback", false, "embed the original image when OCR finds no text")
	wide := fs.Bool("wide", false, "16:9 slides instead of 4:3")
	workers := fs.Int("workers", 1, "images processed concurrently")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	switch *titleFrom {
	case string(structure.TitleFirstLine), string(structure.TitleFilename):
	default:
		fmt.Fprintf(os.Stderr, "error: invalid --title-from %q\n", *titleFrom)
		return 2
	}
	if _, err := os.Stat(*dir); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 2
	}

	opts := pipeline.Options{
		Lang:          *lang,
		FallbackLang:  *fallbackLang,
		TitleFrom:     structure.TitleFrom(*titleFrom),
		Preprocess:    preprocess.DefaultConfig(),
		ImageFallback: *imageFallback,
		Workers:       *workers,
		Timeout:       60 * time.Second,
	}
	style := pptx.DefaultStyle()
	style.Widescreen = *wide

	rebuild := func() {
		files := listImageFiles(*dir)
		if len(files) == 0 {
			log.Printf("no images in %s yet", *dir)
			return
		}
		inputs := make([]string, len(files))
		for i, f := range files {
			inputs[i] = filepath.Join(*dir, f)
		}
		builder, err := pptx.New(style)
		if err != nil {
			log.Printf("rebuild failed: %v", err)
			return
		}
		d, summary := pipeline.Run(context.Background(), inputs, opts)
		dropped := pipeline.Render(d, builder)
		if err := builder.Save(*output); err != nil {
			log.Printf("rebuild failed: write %s: %v", *output, err)
			return
		}
		log.Printf("rebuilt %s from %d image(s): %d text, %d image, %d skipped",
			*output, summary.Total, summary.TextSlides, summary.ImageSlides-len(dropped), summary.Skipped+len(dropped))
	}

	rebuild()

	if err := watchDirectory(*dir, rebuild); err != nil {
		fmt.Fprintln(os.Stderr, "error: watch:", err)
		return 1
	}
	return 0
}

// watchDirectory blocks, invoking rebuild after new image files have stopped
// changing. Events are debounced so a burst of copies triggers one rebuild.
func watchDirectory(dir string, rebuild func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Add(dir); err != nil {
		return err
	}
	log.Printf("Watching %s (debounced) ...", dir)

	// simple debounce map of pending files
	pending := map[string]time.Time{}
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				name := filepath.Base(ev.Name)
				if !isSupportedExt(name) {
					continue
				}
				pending[name] = time.Now()
			}
		case <-ticker.C:
			now := time.Now()
			ready := false
			for name, t := range pending {
				if now.Sub(t) > 300*time.Millisecond { // stable
					delete(pending, name)
					ready = true
				}
			}
			if ready {
				rebuild()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Printf("watch error: %v", err)
		}
	}
}

func listImageFiles(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !isSupportedExt(e.Name()) {
			continue
		}
		out = append(out, e.Name())
	}
	sort.Strings(out)
	return out
}

func isSupportedExt(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff":
		return true
	}
	return false
}
