package pathutil

import "github.com/somnia-sleep/somnia/internal/apperr"

var errResolve = &apperr.Error{
	Message: "unable to resolve application paths",
}
