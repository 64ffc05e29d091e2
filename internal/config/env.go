package config

import (
	"errors"
	"os"

	"github.com/joho/godotenv"
)

// WithDotEnv returns an Option that loads variables from the given .env
// files into the process environment. Missing files are skipped and
// variables that are already set win. It must run before WithViperConfig for
// the values to apply.
func WithDotEnv(files ...string) Option {
	return func(_ *Config) error {
		for _, f := range files {
			err := godotenv.Load(f)
			if err == nil || errors.Is(err, os.ErrNotExist) {
				continue
			}

			return errReadDotEnv.Fmt(f).Wrap(err)
		}

		return nil
	}
}
