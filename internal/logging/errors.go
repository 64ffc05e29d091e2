package logging

import "github.com/somnia-sleep/somnia/internal/apperr"

var errLogLevel = &apperr.Error{
	Message: "invalid log level %q",
}
