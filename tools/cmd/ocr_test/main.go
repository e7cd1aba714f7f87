package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"img2deck/pkg/engine"
	"img2deck/pkg/pipeline"
	"img2deck/pkg/preprocess"
	"img2deck/pkg/recognize"
)

// Quick smoke tool: runs the recognition path on one image and dumps the raw
// result, once with preprocessing and once without, so threshold changes can
// be compared against real scans.
func main() {
	if len(os.Args) < 2 {
		fmt.Println("usage: go run ./tools/cmd/ocr_test <image> [lang]")
		os.Exit(2)
	}
	path := os.Args[1]
	lang := "vie"
	if len(os.Args) > 2 {
		lang = os.Args[2]
	}

	handle, err := engine.Select(engine.Default()...)
	if err != nil {
		log.Fatalf("no OCR engine: %v", err)
	}
	fmt.Printf("engine=%s\n", handle.Name())

	req := recognize.Request{
		Path:         path,
		DisplayName:  pipeline.DisplayName(path),
		Lang:         lang,
		FallbackLang: "eng",
	}
	for _, cfg := range []preprocess.Config{preprocess.DefaultConfig(), {}} {
		rec := recognize.New(handle, cfg, 60*time.Second)
		res := rec.Recognize(context.Background(), req)
		fmt.Printf("preprocess=%v succeeded=%v lang=%s fallback=%v\n",
			cfg.Enabled, res.Succeeded, res.LangUsed, res.FallbackUsed)
		fmt.Printf("text:\n%s\n----\n", res.RawText)
	}
}
