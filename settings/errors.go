package settings

import "github.com/somnia-sleep/somnia/internal/apperr"

// ErrSaveSettings matches every failure to persist the settings.
var ErrSaveSettings = &apperr.Error{
	Message: "unable to save monitoring settings",
}
