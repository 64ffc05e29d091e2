package capture

import "github.com/somnia-sleep/somnia/internal/apperr"

var (
	errUnknownHandle = &apperr.Error{
		Message: "capture handle %s is not active",
	}

	errWriteRecording = &apperr.Error{
		Message: "unable to write audio recording",
	}

	errNoDevice = &apperr.Error{
		Message: "no wearable device is connected",
	}

	errDeviceNotFound = &apperr.Error{
		Message: "wearable device %q was not found",
	}

	errTelemetry = &apperr.Error{
		Message: "unable to read wearable telemetry",
	}
)
