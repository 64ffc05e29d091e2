package config

import (
	"github.com/urfave/cli/v2"
)

// CLIOptions represents command-line configuration options.
type CLIOptions struct {
	Mode          string
	Server        string
	Storage       string
	ResultCmd     string
	DisableNotify bool
}

// WithCLIConfig returns an Option that applies global command-line flags.
// Only flags that were set override the loaded values.
func WithCLIConfig(ctx *cli.Context) Option {
	return func(c *Config) error {
		opts := CLIOptions{
			Mode:          ctx.String("mode"),
			Server:        ctx.String("server"),
			Storage:       ctx.String("storage"),
			ResultCmd:     ctx.String("result-cmd"),
			DisableNotify: ctx.Bool("disable-notification"),
		}

		applyCLIOptions(c, opts)

		return nil
	}
}

// applyCLIOptions applies CLI options to the config.
func applyCLIOptions(c *Config, opts CLIOptions) {
	if opts.Mode != "" {
		c.Analysis.Mode = opts.Mode
	}

	if opts.Server != "" {
		c.Analysis.BaseURL = opts.Server
	}

	if opts.Storage != "" {
		c.Storage.Driver = opts.Storage
	}

	if opts.ResultCmd != "" {
		c.Hooks.ResultCmd = opts.ResultCmd
	}

	if opts.DisableNotify {
		c.Notifications.Enabled = false
	}
}
