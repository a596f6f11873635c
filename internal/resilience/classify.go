package resilience

import (
	"context"
	"errors"

	"github.com/taxlens/invoice-analyzer/internal/common"
)

// ModelCallClassifier routes extraction errors. Transport and API
// failures count against the circuit; an unparseable reply does not,
// since the service answered and only the content was bad. Context
// cancellation is the caller's doing and records nothing.
func ModelCallClassifier(err error) ErrorClassification {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ErrorClassification{Retryable: false, RecordFailure: false}
	case errors.Is(err, common.ErrParseFailure):
		return ErrorClassification{Retryable: false, RecordFailure: false}
	case errors.Is(err, common.ErrModelInvocation):
		return ErrorClassification{Retryable: true, RecordFailure: true}
	default:
		return ErrorClassification{Retryable: false, RecordFailure: true}
	}
}
