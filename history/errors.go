package history

import "github.com/somnia-sleep/somnia/internal/apperr"

var (
	// ErrSaveHistory matches every failure to persist the history.
	ErrSaveHistory = &apperr.Error{
		Message: "unable to save sleep history",
	}

	errLoadHistory = &apperr.Error{
		Message: "unable to load sleep history",
	}

	errCorruptHistory = &apperr.Error{
		Message: "stored sleep history is corrupt",
	}

	errResultNotFound = &apperr.Error{
		Message: "no stored result with id %q",
	}
)
