package session

import "github.com/somnia-sleep/somnia/internal/apperr"

var (
	ErrSessionActive = &apperr.Error{
		Message: "a session is already in progress",
	}

	ErrNotRecording = &apperr.Error{
		Message: "no recording is in progress",
	}

	ErrNoResult = &apperr.Error{
		Message: "there is no result to dismiss",
	}

	ErrPermissionDenied = &apperr.Error{
		Message: "permission to record %s was denied",
	}

	ErrCaptureStart = &apperr.Error{
		Message: "unable to start %s capture",
	}

	ErrCaptureStop = &apperr.Error{
		Message: "unable to stop %s capture",
	}

	ErrAnalysis = &apperr.Error{
		Message: "unable to analyze the recording",
	}

	ErrPersistence = &apperr.Error{
		Message: "the result could not be saved to history",
	}

	errInvalidTransition = &apperr.Error{
		Message: "cannot apply %s while %s",
	}

	errMissingResult = &apperr.Error{
		Message: "analysis returned no result",
	}

	errNoAudioAdapter = &apperr.Error{
		Message: "an audio capture adapter is required",
	}

	errModalityMismatch = &apperr.Error{
		Message: "result reports %s metrics for a modality that was not captured",
	}
)
