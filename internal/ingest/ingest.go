// Package ingest registers invoice documents from the local
// filesystem: hash, dedup, and record each file before the pipeline
// picks it up.
package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/taxlens/invoice-analyzer/constants"
	"github.com/taxlens/invoice-analyzer/internal/entity"
	"github.com/taxlens/invoice-analyzer/internal/repository"
)

// Result is the per-file ingest outcome.
type Result struct {
	SourcePath   string    `json:"source_path"`
	FileID       uuid.UUID `json:"file_id"`
	Deduplicated bool      `json:"deduplicated"`
	HashHex      string    `json:"hash_hex"`
	FileExt      string    `json:"file_ext"`
	UploadedAt   time.Time `json:"uploaded_at"`
	Err          string    `json:"err,omitempty"`
}

// DirStats summarizes a directory ingest.
type DirStats struct {
	Scanned      uint32 `json:"scanned"`
	Matched      uint32 `json:"matched"`
	Succeeded    uint32 `json:"succeeded"`
	Deduplicated uint32 `json:"deduplicated"`
	Failed       uint32 `json:"failed"`
}

// FSIngestor reads invoice documents from the local filesystem and
// records them through the files repository. Content-identical files
// are deduplicated by sha256, whatever their path.
type FSIngestor struct {
	files  repository.InvoiceFileRepository
	logger *slog.Logger
}

func NewFSIngestor(files repository.InvoiceFileRepository, logger *slog.Logger) *FSIngestor {
	if logger == nil {
		logger = slog.Default()
	}
	return &FSIngestor{files: files, logger: logger}
}

// IngestPath registers a single document. The extension must be one of
// the uploadable types.
func (i *FSIngestor) IngestPath(ctx context.Context, userID uint, path string) (Result, error) {
	var out Result

	abs, err := filepath.Abs(path)
	if err != nil {
		return out, fmt.Errorf("resolve path: %w", err)
	}

	ext := constants.NormalizeExt(filepath.Ext(abs))
	if !constants.IsAllowedExt(ext) {
		return out, fmt.Errorf("unsupported or missing extension: %q", ext)
	}

	f, err := os.Open(abs)
	if err != nil {
		return out, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	size, err := io.Copy(h, f)
	if err != nil {
		return out, fmt.Errorf("hash: %w", err)
	}
	sum := h.Sum(nil)

	row, dedup, err := i.files.UpsertByHash(ctx, &entity.InvoiceFile{
		UserID:      userID,
		SourcePath:  abs,
		ContentHash: sum,
		Filename:    filepath.Base(abs),
		FileExt:     ext,
		FileSize:    int(size),
		UploadedAt:  time.Now().UTC(),
	})
	if err != nil {
		return out, err
	}

	out = Result{
		SourcePath:   row.SourcePath,
		FileID:       row.ID,
		Deduplicated: dedup,
		HashHex:      hex.EncodeToString(sum),
		FileExt:      row.FileExt,
		UploadedAt:   row.UploadedAt,
	}
	return out, nil
}
