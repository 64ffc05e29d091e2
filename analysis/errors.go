package analysis

import (
	"fmt"

	"github.com/somnia-sleep/somnia/internal/apperr"
)

var (
	// ErrAnalysisFailed matches every gateway failure.
	ErrAnalysisFailed = &apperr.Error{
		Message: "sleep analysis failed",
	}

	// ErrUnreachable marks a failure to reach the inference service at all.
	ErrUnreachable = &apperr.Error{
		Message: "inference service is unreachable",
	}

	errMalformedResponse = &apperr.Error{
		Message: "inference service returned a malformed response",
	}

	errNegative = &apperr.Error{
		Message: "%s must not be negative",
	}

	errUnknownMode = &apperr.Error{
		Message: "unknown analysis mode %q: expected local, remote or auto",
	}
)

// StatusError is returned when the inference service answers with a non-2xx
// status.
type StatusError struct {
	Body string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("inference service responded %d: %s", e.Code, e.Body)
}
