package ocr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/taxlens/invoice-analyzer/constants"
)

// extractImage runs tesseract through a preprocessing ladder. The
// first strategy that yields any text wins: an enhanced grayscale
// copy, then the file as uploaded, then the raw bytes over stdin.
// Phone camera shots usually need the first, clean exports the second.
func (e *Extractor) extractImage(ctx context.Context, path string) (ExtractionResult, error) {
	var warns []string

	enhanced, cleanup, err := e.preprocessImage(path)
	if err != nil {
		warns = append(warns, fmt.Sprintf("preprocess: %v", err))
	} else {
		txt, w, ocrErr := e.tesseractOCR(ctx, enhanced)
		cleanup()
		warns = append(warns, w...)
		if ocrErr != nil {
			warns = append(warns, ocrErr.Error())
		} else if strings.TrimSpace(txt) != "" {
			return e.imageResult(txt, warns), nil
		}
	}

	txt, w, err := e.tesseractOCR(ctx, path)
	warns = append(warns, w...)
	if err == nil && strings.TrimSpace(txt) != "" {
		return e.imageResult(txt, warns), nil
	}
	if err != nil {
		warns = append(warns, err.Error())
	}

	raw, readErr := os.ReadFile(path)
	if readErr != nil {
		return ExtractionResult{SourceType: constants.IMAGE, Method: "image-ocr", Warnings: warns}, readErr
	}
	txt, w, err = e.tesseractStdin(ctx, raw)
	warns = append(warns, w...)
	if err != nil {
		return ExtractionResult{SourceType: constants.IMAGE, Method: "image-ocr", Warnings: warns}, err
	}
	return e.imageResult(txt, warns), nil
}

func (e *Extractor) imageResult(txt string, warns []string) ExtractionResult {
	return ExtractionResult{
		Text:       Normalize(txt),
		Pages:      1,
		SourceType: constants.IMAGE,
		Method:     "image-ocr",
		Language:   e.cfg.TesseractLang,
		Warnings:   warns,
	}
}

// preprocessImage writes an enhanced grayscale copy of the upload.
// Contrast and sharpening lift faded prints and uneven phone lighting
// enough for tesseract to lock onto.
func (e *Extractor) preprocessImage(path string) (string, func(), error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return "", nil, err
	}
	enhanced := imaging.Grayscale(img)
	enhanced = imaging.AdjustContrast(enhanced, 30)
	enhanced = imaging.Sharpen(enhanced, 1.5)

	tmpDir, err := os.MkdirTemp(e.cfg.WorkDir, "tl-img-*")
	if err != nil {
		return "", nil, err
	}
	cleanup := func() { _ = os.RemoveAll(tmpDir) }
	out := filepath.Join(tmpDir, "enhanced.jpg")
	if err := imaging.Save(enhanced, out, imaging.JPEGQuality(95)); err != nil {
		cleanup()
		return "", nil, err
	}
	return out, cleanup, nil
}

func (e *Extractor) tesseractOCR(ctx context.Context, path string) (string, []string, error) {
	args := []string{path, "stdout", "-l", e.cfg.TesseractLang}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}

	// tesseract <file> stdout -l <lang>
	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		return "", []string{string(errb)}, fmt.Errorf("tesseract: %w", err)
	}

	// minor cleanup of obvious line noise
	txt := reBoxNoise.ReplaceAllString(string(out), "")
	return txt, nil, nil
}

// tesseractStdin feeds the raw upload to tesseract on stdin. Some
// camera JPEGs carry extensions the page decoders reject while
// tesseract's own loader still reads them.
func (e *Extractor) tesseractStdin(ctx context.Context, raw []byte) (string, []string, error) {
	args := []string{"-", "stdout", "-l", e.cfg.TesseractLang}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}

	out, errb, err := e.runner.RunInput(ctx, raw, e.cfg.Tesseract, args...)
	if err != nil {
		return "", []string{string(errb)}, fmt.Errorf("tesseract stdin: %w", err)
	}

	txt := reBoxNoise.ReplaceAllString(string(out), "")
	return txt, nil, nil
}
