package constants

// JobStatus is the canonical status for rows in extract_jobs.
type JobStatus string

// Stable values (store these exact strings in DB).
const (
	JobStatusQueued  JobStatus = "QUEUED"  // queued for processing
	JobStatusRunning JobStatus = "RUNNING" // in progress
	JobStatusOCROK   JobStatus = "OCR_OK"  // stage 1 completed (text extracted)
	JobStatusLLMOK   JobStatus = "LLM_OK"  // stage 2 completed (fields extracted)
	JobStatusFailed  JobStatus = "FAILED"  // terminal failure
)

// BatchMode selects how extracted records leave a batch.
type BatchMode string

const (
	// BatchModeDirect accepts every extracted record as-is.
	BatchModeDirect BatchMode = "direct"
	// BatchModeVerify holds records for per-document review before acceptance.
	BatchModeVerify BatchMode = "verify"
)

// ParseBatchMode returns the mode for s, defaulting to direct.
func ParseBatchMode(s string) BatchMode {
	if s == string(BatchModeVerify) {
		return BatchModeVerify
	}
	return BatchModeDirect
}
