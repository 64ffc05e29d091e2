package app

import "github.com/somnia-sleep/somnia/internal/apperr"

var (
	errParseResultCmd = &apperr.Error{
		Message: "unable to parse hooks.result_cmd",
	}

	errRunResultCmd = &apperr.Error{
		Message: "result command failed",
	}

	errNotify = &apperr.Error{
		Message: "unable to display notification",
	}

	errMissingID = &apperr.Error{
		Message: "a result ID is required (see 'somnia history')",
	}

	errAmbiguousID = &apperr.Error{
		Message: "result ID prefix %q matches more than one result",
	}

	errResultNotFound = &apperr.Error{
		Message: "no stored result matches %q",
	}

	errNoDevices = &apperr.Error{
		Message: "no wearables in range",
	}
)
