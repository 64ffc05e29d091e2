package app

import (
	"fmt"

	"github.com/pterm/pterm"
)

func helpText() string {
	description := fmt.Sprintf(
		"%s\n\t\t{{.Usage}}\n\n",
		pterm.Yellow("DESCRIPTION"),
	)

	usage := fmt.Sprintf(
		"%s\n\t\t{{.HelpName}} {{if .UsageText}}{{ .UsageText }}{{end}}\n\n",
		pterm.Yellow("USAGE"),
	)

	version := fmt.Sprintf(
		"{{if .Version}}%s\n\t\t{{.Version}}{{end}}\n\n",
		pterm.Yellow("VERSION"),
	)

	commands := fmt.Sprintf(
		"%s\n{{range .Commands}}{{if not .HideHelp}}   %s{{ `\t`}}{{.Usage}}{{ `\n` }}{{end}}{{end}}\n\n",
		pterm.Yellow("COMMANDS"),
		pterm.Green("{{join .Names `, `}}"),
	)

	options := fmt.Sprintf(
		"%s\n{{range .VisibleFlags}}\t\t{{if .Aliases}}{{range $element := .Aliases}}%s,{{end}}{{end}} %s\n\t\t\t\t{{.Usage}}\n\n{{end}}",
		pterm.Yellow("OPTIONS"),
		pterm.Green("-{{$element}}"),
		pterm.Green("--{{.Name}} {{.DefaultText}}"),
	)

	env := fmt.Sprintf(
		"%s\n\t\t%s\n\n",
		pterm.Yellow("ENVIRONMENTAL VARIABLES"),
		envHelp(),
	)

	examples := fmt.Sprintf(
		"%s\n%s\n",
		pterm.Yellow("EXAMPLES"),
		examplesHelp(),
	)

	return description + usage + version + commands + options + env + examples
}

func examplesHelp() string {
	return `		somnia record --duration 7h30m
		somnia --mode remote --server http://192.168.1.20:8000 record
		somnia settings --video --wearable
		somnia connect "Mi Band 7"
		somnia history --since "3 days ago"
		somnia stats --since 30days
		somnia show 0192a1b2`
}

func envHelp() string {
	return `
SOMNIA_NO_COLOR, NO_COLOR: set to any value to avoid printing ANSI escape sequences for color output.

SOMNIA_ENV: keep a separate config file, database and log for the named environment (e.g. dev).

SOMNIA_<SECTION>_<KEY>: override any config file value, e.g. SOMNIA_ANALYSIS_MODE=remote or SOMNIA_STORAGE_DRIVER=redis. Values may also be placed in a .env file in the working directory or next to the config file.`
}
