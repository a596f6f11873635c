package llm

import "context"

// ExtractRequest carries one document's OCR transcript into the model.
type ExtractRequest struct {
	OCRText      string
	FilenameHint string
}

// FieldExtractor is the interface the pipeline depends on. The parsed
// map keeps whatever shape the model produced; reconciliation owns
// type coercion and defaulting. The raw reply is returned alongside so
// callers can persist it for audit.
type FieldExtractor interface {
	ExtractFields(ctx context.Context, req ExtractRequest) (map[string]any, []byte /*rawJSON*/, error)
}
