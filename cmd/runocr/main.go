// Command runocr runs text extraction over a single document and
// prints the transcript. Useful for checking the tesseract/pdftoppm
// setup without the rest of the pipeline.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/taxlens/invoice-analyzer/internal/common"
	"github.com/taxlens/invoice-analyzer/internal/observability/logging"
	"github.com/taxlens/invoice-analyzer/internal/ocr"
)

func main() {
	_ = godotenv.Load()
	log := logging.NewJSONLogger("runocr", os.Getenv("LOG_LEVEL"))

	if len(os.Args) != 2 {
		log.Error("usage", "cmd", "runocr <path-to-pdf-or-image>")
		os.Exit(2)
	}
	path := os.Args[1]

	cfg := common.LoadConfig()
	extractor := ocr.NewExtractor(ocr.Config{
		TesseractLang: cfg.OCR.Language,
		DPI:           cfg.OCR.RasterDPI,
		TessdataDir:   cfg.OCR.TessdataDir,
		WorkDir:       cfg.OCR.WorkDir,
	}, log)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	res, err := extractor.Extract(ctx, path)
	if err != nil {
		log.Error("text extraction failed", "path", path, "err", err)
		os.Exit(1)
	}

	log.Info("text extraction OK",
		"method", res.Method,
		"source_type", res.SourceType,
		"pages", res.Pages,
		"bytes", len(res.Text),
		"warnings", len(res.Warnings),
		"duration_ms", res.Duration.Milliseconds(),
	)
	fmt.Println(res.Text)
}
