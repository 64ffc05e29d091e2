// Package app defines the somnia command-line interface
package app

import (
	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"

	"github.com/somnia-sleep/somnia/internal/config"
)

// disableStyling disables all styling provided by pterm.
func disableStyling() {
	pterm.DisableColor()
	pterm.DisableStyling()
	pterm.Debug.Prefix.Text = ""
	pterm.Info.Prefix.Text = ""
	pterm.Success.Prefix.Text = ""
	pterm.Warning.Prefix.Text = ""
	pterm.Error.Prefix.Text = ""
	pterm.Fatal.Prefix.Text = ""
}

// Get retrieves the somnia app instance.
func Get() *cli.App {
	somniaApp := &cli.App{
		Name: "somnia",
		Usage: `
		Somnia records a night's sleep from your microphone, an optional camera
		and an optional wearable, then estimates snoring, apnea events and
		overall sleep quality from the recording.`,
		UsageText:            "[COMMAND] [OPTIONS]",
		Version:              config.Version,
		EnableBashCompletion: true,
		Commands: []*cli.Command{
			{
				Name:    "record",
				Aliases: []string{"r"},
				Usage:   "Record a sleep session and analyze it when recording stops",
				Flags:   []cli.Flag{durationFlag},
				Action:  withEnv(recordAction),
			},
			{
				Name:   "history",
				Usage:  "List stored sleep results, newest first",
				Flags:  []cli.Flag{sinceFlag, jsonFlag, clearFlag, yesFlag},
				Action: withEnv(historyAction),
			},
			{
				Name:   "stats",
				Usage:  "Summarize sleep trends. Defaults to every stored result",
				Flags:  []cli.Flag{sinceFlag},
				Action: withEnv(statsAction),
			},
			{
				Name:      "show",
				Usage:     "Print one stored sleep result",
				ArgsUsage: "<id>",
				Flags:     []cli.Flag{jsonFlag},
				Action:    withEnv(showAction),
			},
			{
				Name:   "settings",
				Usage:  "Show or change which modalities are recorded",
				Flags:  []cli.Flag{videoFlag, wearableFlag, jsonFlag},
				Action: withEnv(settingsAction),
			},
			{
				Name:      "connect",
				Usage:     "Pair a wearable device",
				ArgsUsage: "[device name or id]",
				Action:    withEnv(connectAction),
			},
			{
				Name:   "disconnect",
				Usage:  "Unpair the connected wearable",
				Action: withEnv(disconnectAction),
			},
			{
				Name:   "demo",
				Usage:  "Fetch the demo analysis from the inference server",
				Flags:  []cli.Flag{jsonFlag},
				Action: withEnv(demoAction),
			},
			{
				Name:   "edit-config",
				Usage:  "Edit the configuration file",
				Action: editConfigAction,
			},
		},
		Flags: []cli.Flag{
			modeFlag,
			serverFlag,
			storageFlag,
			resultCmdFlag,
			disableNotificationFlag,
			noColorFlag,
		},
		Before: beforeAction,
		After:  afterAction,
	}

	return somniaApp
}
