package timeutil

import "github.com/somnia-sleep/somnia/internal/apperr"

var errParseDate = &apperr.Error{
	Message: "unable to parse date %q",
}
