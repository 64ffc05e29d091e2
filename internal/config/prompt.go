package config

import (
	"errors"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/pterm/pterm"
	"github.com/pterm/pterm/putils"
)

const asciiLogo = `
███████╗ ██████╗ ███╗   ███╗███╗   ██╗██╗ █████╗
██╔════╝██╔═══██╗████╗ ████║████╗  ██║██║██╔══██╗
███████╗██║   ██║██╔████╔██║██╔██╗ ██║██║███████║
╚════██║██║   ██║██║╚██╔╝██║██║╚██╗██║██║██╔══██║
███████║╚██████╔╝██║ ╚═╝ ██║██║ ╚████║██║██║  ██║
╚══════╝ ╚═════╝ ╚═╝     ╚═╝╚═╝  ╚═══╝╚═╝╚═╝  ╚═╝`

// PromptOptions holds the user's responses to the first-run prompts.
type PromptOptions struct {
	Mode    string
	BaseURL string
	Driver  string
}

// WithPromptConfig returns an Option that asks for the essential settings
// when no config file exists yet. It must run before WithViperConfig, which
// writes the answers to the new file.
func WithPromptConfig(configPath string) Option {
	return func(c *Config) error {
		_, err := os.Stat(configPath)
		if err == nil || !errors.Is(err, os.ErrNotExist) {
			return err
		}

		opts, err := promptUser()
		if err != nil {
			return errPrompt.Wrap(err)
		}

		applyPromptOptions(c, opts)

		return nil
	}
}

// promptUser handles the interactive configuration process.
func promptUser() (PromptOptions, error) {
	opts := PromptOptions{
		BaseURL: "http://localhost:8000",
	}

	pterm.Println(asciiLogo)

	_ = putils.BulletListFromString(`Follow the prompts below to configure Somnia for the first time.
Select your preferred value, or press ENTER to accept the defaults.
Edit the config file with 'somnia edit-config' to change any settings.`, " ").
		Render()

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("How should recordings be analyzed?").
				Options(
					huh.NewOption("On this device (simulated)", "local").Selected(true),
					huh.NewOption("Inference server", "remote"),
					huh.NewOption("Server, falling back to this device", "auto"),
				).
				Value(&opts.Mode),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Inference server URL").
				Value(&opts.BaseURL),
		).WithHideFunc(func() bool {
			return opts.Mode == "local"
		}),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Where should sleep history be stored?").
				Options(
					huh.NewOption("Local database file", "bolt").Selected(true),
					huh.NewOption("Redis", "redis"),
				).
				Value(&opts.Driver),
		),
	)

	if err := form.Run(); err != nil {
		return opts, err
	}

	return opts, nil
}

// applyPromptOptions records the answers so the viper option persists them.
func applyPromptOptions(c *Config, opts PromptOptions) {
	c.Analysis.Mode = opts.Mode
	c.Analysis.BaseURL = opts.BaseURL
	c.Storage.Driver = opts.Driver
}
