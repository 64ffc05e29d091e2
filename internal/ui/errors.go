package ui

import "github.com/somnia-sleep/somnia/internal/apperr"

var errRenderTable = &apperr.Error{
	Message: "failed to render table",
}
