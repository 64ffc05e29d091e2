package models

import "github.com/somnia-sleep/somnia/internal/apperr"

var (
	errNegativeField = &apperr.Error{
		Message: "invalid result: %s must not be negative",
	}

	errOutOfRange = &apperr.Error{
		Message: "invalid result: %s must be between 0 and 100, got %.2f",
	}

	errAHIMismatch = &apperr.Error{
		Message: "invalid result: ahi %.3f does not match apnea events per hour %.3f",
	}

	errSeverityMismatch = &apperr.Error{
		Message: "invalid result: severity %q does not match ahi %.2f",
	}

	errPositionsSum = &apperr.Error{
		Message: "invalid result: sleep positions %d/%d/%d must sum to 100",
	}

	errSectionWithoutFlag = &apperr.Error{
		Message: "invalid result: %s metrics present but the modality was not active",
	}

	errFlagWithoutSection = &apperr.Error{
		Message: "invalid result: %s marked active but its metrics are missing",
	}
)

