package config

import "github.com/somnia-sleep/somnia/internal/apperr"

var (
	errConfigOption = &apperr.Error{
		Message: "config option error",
	}

	errConfigValidation = &apperr.Error{
		Message: "config validation error",
	}

	errReadConfig = &apperr.Error{
		Message: "reading config file failed",
	}

	errWriteConfig = &apperr.Error{
		Message: "writing default config failed",
	}

	errReadDotEnv = &apperr.Error{
		Message: "reading %s failed",
	}

	errInvalidMode = &apperr.Error{
		Message: "analysis mode must be local, remote or auto, got %q",
	}

	errInvalidBaseURL = &apperr.Error{
		Message: "analysis base_url must be an absolute URL, got %q",
	}

	errInvalidDriver = &apperr.Error{
		Message: "storage driver must be bolt, redis or memory, got %q",
	}

	errMissingRedisAddr = &apperr.Error{
		Message: "storage redis_addr is required for the redis driver",
	}

	errIntervalTooShort = &apperr.Error{
		Message: "%s must be at least %v",
	}

	errInvalidProgressStep = &apperr.Error{
		Message: "session progress_step must be between 1 and 100, got %d",
	}

	errInvalidSampleRate = &apperr.Error{
		Message: "capture audio_sample_rate must be between %d and %d Hz, got %d",
	}

	errInvalidLogLevel = &apperr.Error{
		Message: "unknown log level %q",
	}

	errNonPositive = &apperr.Error{
		Message: "%s must be greater than zero",
	}

	errNegative = &apperr.Error{
		Message: "%s must not be negative",
	}
)

var errPrompt = &apperr.Error{
	Message: "user prompt failed",
}
