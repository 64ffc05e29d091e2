package app

import "github.com/urfave/cli/v2"

var (
	modeFlag = &cli.StringFlag{
		Name:    "mode",
		Aliases: []string{"m"},
		Usage:   "Analysis mode: local, remote or auto (overrides analysis.mode)",
	}

	serverFlag = &cli.StringFlag{
		Name:  "server",
		Usage: "Base URL of the inference server (overrides analysis.base_url)",
	}

	storageFlag = &cli.StringFlag{
		Name:  "storage",
		Usage: "Storage driver: bolt, redis or memory (overrides storage.driver)",
	}

	resultCmdFlag = &cli.StringFlag{
		Name:    "result-cmd",
		Aliases: []string{"cmd"},
		Usage:   "Execute an arbitrary command after each analysis result",
	}

	disableNotificationFlag = &cli.BoolFlag{
		Name:    "disable-notification",
		Aliases: []string{"d"},
		Usage:   "Disable the system notification that appears when a result is ready",
	}

	noColorFlag = &cli.BoolFlag{
		Name:  "no-color",
		Usage: "Disable coloured output",
	}

	durationFlag = &cli.DurationFlag{
		Name:    "duration",
		Aliases: []string{"t"},
		Usage:   "Stop recording automatically after this long (e.g. 7h30m). By default recording runs until interrupted",
	}

	sinceFlag = &cli.StringFlag{
		Name:  "since",
		Usage: "Only show results recorded since a date or period (e.g. '3 days ago', 7days, today)",
	}

	jsonFlag = &cli.BoolFlag{
		Name:  "json",
		Usage: "Print JSON instead of a table",
	}

	clearFlag = &cli.BoolFlag{
		Name:  "clear",
		Usage: "Delete every stored result",
	}

	yesFlag = &cli.BoolFlag{
		Name:    "yes",
		Aliases: []string{"y"},
		Usage:   "Skip the confirmation prompt",
	}

	videoFlag = &cli.BoolFlag{
		Name:  "video",
		Usage: "Enable or disable video monitoring (--video=false)",
	}

	wearableFlag = &cli.BoolFlag{
		Name:  "wearable",
		Usage: "Enable or disable wearable monitoring (--wearable=false)",
	}
)
