package store

import "github.com/somnia-sleep/somnia/internal/apperr"

var (
	// ErrNotFound is returned by Get for missing keys.
	ErrNotFound = &apperr.Error{
		Message: "key not found",
	}

	errSomniaRunning = &apperr.Error{
		Message: "is somnia already running? Only one instance can use the database at a time",
	}

	errUnknownDriver = &apperr.Error{
		Message: "unknown storage driver %q: must be bolt, redis or memory",
	}

	errStorage = &apperr.Error{
		Message: "storage operation on %q failed",
	}
)
