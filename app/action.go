package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/goccy/go-json"
	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"

	"github.com/somnia-sleep/somnia/capture"
	"github.com/somnia-sleep/somnia/internal/config"
	"github.com/somnia-sleep/somnia/internal/models"
	"github.com/somnia-sleep/somnia/internal/osutil"
	"github.com/somnia-sleep/somnia/internal/pathutil"
	"github.com/somnia-sleep/somnia/internal/timeutil"
	"github.com/somnia-sleep/somnia/report"
	"github.com/somnia-sleep/somnia/settings"
	"github.com/somnia-sleep/somnia/stats"
)

const (
	envNoColor       = "NO_COLOR"
	envSomniaNoColor = "SOMNIA_NO_COLOR"
)

// firstNonEmptyString returns its first non-empty argument, or "" if all
// arguments are empty.
func firstNonEmptyString(ss ...string) string {
	for _, s := range ss {
		if s != "" {
			return s
		}
	}

	return ""
}

// withEnv runs fn with the loaded configuration and stores.
func withEnv(fn func(ctx *cli.Context, e *env) error) cli.ActionFunc {
	return func(ctx *cli.Context) error {
		e, err := setup(ctx)
		if err != nil {
			return err
		}

		err = fn(ctx, e)

		return errors.Join(err, e.Close())
	}
}

// recordAction handles the record command. It records until interrupted or
// until --duration elapses, then analyzes the session and prints the
// result.
func recordAction(ctx *cli.Context, e *env) error {
	s := e.settings.Get(ctx.Context)
	if s.NeedsWearableConnection() {
		report.Notice("Wearable monitoring is on but no device is connected. Run 'somnia connect' to pair one")
	}

	spinner, _ := pterm.DefaultSpinner.
		WithWriter(config.Stdout).
		Start("Starting capture...")

	sink := newTerminalSink(spinner, func(err error) {
		e.log.WarnContext(ctx.Context, "session failure", slog.Any("error", err))
	})

	o, err := e.orchestrator(sink)
	if err != nil {
		_ = spinner.Stop()
		return err
	}

	recCtx, stop := signal.NotifyContext(ctx.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if d := ctx.Duration(durationFlag.Name); d > 0 {
		var cancel context.CancelFunc

		recCtx, cancel = context.WithTimeout(recCtx, d)
		defer cancel()
	}

	if err := o.Start(recCtx); err != nil {
		spinner.Fail("Recording could not start")
		return err
	}

	<-recCtx.Done()

	// The recording context is already done, so the analysis runs on a
	// context that keeps the parent's values only.
	result, err := o.Stop(context.WithoutCancel(ctx.Context))
	if err != nil && result == nil {
		spinner.Fail("Analysis failed")
		return err
	}

	spinner.Success("Analysis complete")

	if err != nil {
		report.Warn(err)
	}

	return presentResult(e, result)
}

// presentResult prints r and runs the configured notifications and hooks.
func presentResult(e *env, r *models.AnalysisResult) error {
	if err := report.Result(config.Stdout, *r); err != nil {
		return err
	}

	if e.cfg.Notifications.Enabled {
		if err := notify(r); err != nil {
			report.Warn(err)
		}
	}

	cmd, err := resultCmd(e.cfg.Hooks.ResultCmd, r, config.Stdout, config.Stderr)
	if err != nil {
		return err
	}

	if cmd == nil {
		return nil
	}

	if err := cmd.Run(); err != nil {
		return errRunResultCmd.Wrap(err)
	}

	return nil
}

// historyAction handles the history command which lists, exports or clears
// stored results.
func historyAction(ctx *cli.Context, e *env) error {
	if ctx.Bool(clearFlag.Name) {
		return clearHistory(ctx, e)
	}

	since, err := timeutil.ParseSince(ctx.String(sinceFlag.Name), time.Now())
	if err != nil {
		return err
	}

	results, err := e.history.All(ctx.Context)
	if err != nil {
		return err
	}

	results = filterSince(results, since)

	if ctx.Bool(jsonFlag.Name) {
		if results == nil {
			results = []models.AnalysisResult{}
		}

		return printJSON(results)
	}

	if len(results) == 0 {
		report.Notice(noResultsMsg)
		return nil
	}

	return printHistoryTable(config.Stdout, results)
}

// statsAction handles the stats command which summarizes stored results.
func statsAction(ctx *cli.Context, e *env) error {
	since, err := timeutil.ParseSince(ctx.String(sinceFlag.Name), time.Now())
	if err != nil {
		return err
	}

	results, err := e.history.All(ctx.Context)
	if err != nil {
		return err
	}

	return stats.Show(config.Stdout, filterSince(results, since))
}

func clearHistory(ctx *cli.Context, e *env) error {
	confirmed := ctx.Bool(yesFlag.Name)

	if !confirmed {
		err := huh.NewConfirm().
			Title("Delete every stored sleep result permanently?").
			Affirmative("Delete").
			Negative("Cancel").
			Value(&confirmed).
			Run()
		if err != nil {
			return err
		}
	}

	if !confirmed {
		return nil
	}

	if err := e.history.Clear(ctx.Context); err != nil {
		return err
	}

	report.Notice("Sleep history cleared")

	return nil
}

// showAction handles the show command which prints one stored result. The
// ID may be shortened to any unique prefix.
func showAction(ctx *cli.Context, e *env) error {
	ref := strings.TrimSpace(ctx.Args().First())
	if ref == "" {
		return errMissingID
	}

	results, err := e.history.All(ctx.Context)
	if err != nil {
		return err
	}

	r, err := findResult(results, ref)
	if err != nil {
		return err
	}

	if ctx.Bool(jsonFlag.Name) {
		return printJSON(r)
	}

	return report.Result(config.Stdout, r)
}

// findResult returns the result whose ID is ref or starts with ref.
func findResult(results []models.AnalysisResult, ref string) (models.AnalysisResult, error) {
	var match *models.AnalysisResult

	for i := range results {
		id := results[i].ID

		if id == ref {
			return results[i], nil
		}

		if !strings.HasPrefix(id, ref) {
			continue
		}

		if match != nil {
			return models.AnalysisResult{}, errAmbiguousID.Fmt(ref)
		}

		match = &results[i]
	}

	if match == nil {
		return models.AnalysisResult{}, errResultNotFound.Fmt(ref)
	}

	return *match, nil
}

// settingsAction handles the settings command. Flags that were passed
// update the stored settings; the current settings are printed either way.
func settingsAction(ctx *cli.Context, e *env) error {
	var p settings.Patch

	if ctx.IsSet(videoFlag.Name) {
		p.VideoEnabled = settings.Bool(ctx.Bool(videoFlag.Name))
	}

	if ctx.IsSet(wearableFlag.Name) {
		p.WearableEnabled = settings.Bool(ctx.Bool(wearableFlag.Name))
	}

	s := e.settings.Get(ctx.Context)

	if p != (settings.Patch{}) {
		var err error

		s, err = e.settings.Update(ctx.Context, p)
		if err != nil {
			return err
		}
	}

	if ctx.Bool(jsonFlag.Name) {
		return printJSON(s)
	}

	printSettings(s)

	if s.NeedsWearableConnection() {
		report.Notice("Run 'somnia connect' to pair a wearable")
	}

	return nil
}

func printSettings(s models.MonitoringSettings) {
	state := func(on bool) string {
		if on {
			return pterm.Green("on")
		}

		return pterm.Gray("off")
	}

	device := "not connected"
	if s.WearableConnected {
		device = s.WearableDeviceName
	}

	fmt.Fprintf(config.Stdout, "Audio:    %s\n", state(s.AudioEnabled))
	fmt.Fprintf(config.Stdout, "Video:    %s\n", state(s.VideoEnabled))
	fmt.Fprintf(config.Stdout, "Wearable: %s (%s)\n", state(s.WearableEnabled), device)
}

// connectAction handles the connect command which pairs a wearable. The
// device may be named as an argument; otherwise a picker is shown.
func connectAction(ctx *cli.Context, e *env) error {
	devices, err := e.devices.Scan(ctx.Context)
	if err != nil {
		return err
	}

	if len(devices) == 0 {
		return errNoDevices
	}

	ref := strings.TrimSpace(strings.Join(ctx.Args().Slice(), " "))

	if ref == "" {
		ref, err = pickDevice(devices)
		if err != nil {
			return err
		}
	}

	dev, err := e.devices.Connect(ctx.Context, ref)
	if err != nil {
		return err
	}

	_, err = e.settings.Update(ctx.Context, settings.Patch{
		WearableEnabled:    settings.Bool(true),
		WearableConnected:  settings.Bool(true),
		WearableDeviceName: settings.String(dev.Name),
	})
	if err != nil {
		return err
	}

	report.Notice("Connected to %s", dev.Name)

	return nil
}

func pickDevice(devices []capture.Device) (string, error) {
	opts := make([]huh.Option[string], len(devices))

	for i, d := range devices {
		opts[i] = huh.NewOption(d.Name, d.ID)
	}

	var id string

	err := huh.NewSelect[string]().
		Title("Select a wearable to connect").
		Options(opts...).
		Value(&id).
		Run()

	return id, err
}

// disconnectAction handles the disconnect command which unpairs the
// wearable. Wearable monitoring stays enabled so the next connect resumes
// it.
func disconnectAction(ctx *cli.Context, e *env) error {
	if err := e.devices.Disconnect(ctx.Context); err != nil {
		return err
	}

	_, err := e.settings.Update(ctx.Context, settings.Patch{
		WearableConnected:  settings.Bool(false),
		WearableDeviceName: settings.String(""),
	})
	if err != nil {
		return err
	}

	report.Notice("Wearable disconnected")

	return nil
}

// demoAction handles the demo command which fetches the inference server's
// canned analysis.
func demoAction(ctx *cli.Context, e *env) error {
	c := e.client()

	if err := c.Health(ctx.Context); err != nil {
		return err
	}

	r, err := c.Demo(ctx.Context)
	if err != nil {
		return err
	}

	if ctx.Bool(jsonFlag.Name) {
		return printJSON(r)
	}

	return report.Result(config.Stdout, *r)
}

// editConfigAction handles the edit-config command which opens the somnia
// config file in the user's default text editor.
func editConfigAction(_ *cli.Context) error {
	paths, err := pathutil.Resolve()
	if err != nil {
		return err
	}

	defaultEditor := "nano"

	if runtime.GOOS == osutil.Windows {
		defaultEditor = "C:\\Windows\\system32\\notepad.exe"
	}

	editor := firstNonEmptyString(
		os.Getenv("VISUAL"),
		os.Getenv("EDITOR"),
		defaultEditor,
	)

	cmd := exec.Command(editor, paths.ConfigFile)

	cmd.Stderr = config.Stderr
	cmd.Stdin = config.Stdin
	cmd.Stdout = config.Stdout

	return cmd.Run()
}

func printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(config.Stdout, string(b))

	return err
}

func beforeAction(ctx *cli.Context) error {
	// Override the default help template
	cli.AppHelpTemplate = helpText()

	pterm.Error.MessageStyle = pterm.NewStyle(pterm.FgRed)
	pterm.Error.Prefix = pterm.Prefix{
		Text:  "ERROR",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}

	if _, exists := os.LookupEnv(envNoColor); exists {
		disableStyling()
	}

	if _, exists := os.LookupEnv(envSomniaNoColor); exists {
		disableStyling()
	}

	if ctx.Bool(noColorFlag.Name) {
		disableStyling()
	}

	return nil
}

func afterAction(ctx *cli.Context) error {
	slog.InfoContext(ctx.Context, "exiting somnia")

	return nil
}
