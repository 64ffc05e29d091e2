package app

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"

	"github.com/gen2brain/beeep"
	"github.com/kballard/go-shellquote"

	"github.com/somnia-sleep/somnia/internal/models"
)

// resultCmd builds the command configured to run after each result. The
// result is described to the command through SOMNIA_* environment
// variables. A nil command is returned when cmdline is empty.
func resultCmd(
	cmdline string,
	r *models.AnalysisResult,
	stdout, stderr io.Writer,
) (*exec.Cmd, error) {
	args, err := shellquote.Split(cmdline)
	if err != nil {
		return nil, errParseResultCmd.Wrap(err)
	}

	if len(args) == 0 {
		return nil, nil
	}

	cmd := exec.Command(args[0], args[1:]...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.Env = append(os.Environ(),
		"SOMNIA_RESULT_ID="+r.ID,
		"SOMNIA_SEVERITY="+string(r.Severity),
		"SOMNIA_AHI="+strconv.FormatFloat(r.AHI, 'f', 1, 64),
		"SOMNIA_DURATION_HOURS="+strconv.FormatFloat(r.DurationHours, 'f', 2, 64),
		"SOMNIA_SOURCE="+string(r.Source),
	)

	return cmd, nil
}

// notify sends a desktop notification summarizing r.
func notify(r *models.AnalysisResult) error {
	msg := fmt.Sprintf("%s · AHI %.1f", r.Severity, r.AHI)

	if err := beeep.Notify("Your sleep analysis is ready", msg, ""); err != nil {
		return errNotify.Wrap(err)
	}

	return nil
}
