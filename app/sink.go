package app

import (
	"fmt"
	"sync"

	"github.com/somnia-sleep/somnia/internal/timeutil"
	"github.com/somnia-sleep/somnia/session"
)

// statusLine is the single updatable line the record command draws on.
type statusLine interface {
	UpdateText(text string)
}

// terminalSink renders session updates on a status line. Failures are
// passed to warn.
type terminalSink struct {
	line       statusLine
	warn       func(error)
	modalities string
	elapsed    int
	mu         sync.Mutex
}

func newTerminalSink(line statusLine, warn func(error)) *terminalSink {
	return &terminalSink{
		line: line,
		warn: warn,
	}
}

func (s *terminalSink) StateChanged(sess session.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch sess.State {
	case session.Recording:
		s.modalities = sess.Active.String()
		s.elapsed = sess.ElapsedSeconds
		s.line.UpdateText(s.recordingText())
	case session.Analyzing:
		s.line.UpdateText(analyzingText(sess.Progress))
	case session.ResultAvailable:
		s.line.UpdateText("Analysis complete")
	case session.Idle:
		s.line.UpdateText("Idle")
	}
}

func (s *terminalSink) Elapsed(seconds int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.elapsed = seconds
	s.line.UpdateText(s.recordingText())
}

func (s *terminalSink) AnalysisProgress(percent int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.line.UpdateText(analyzingText(percent))
}

func (s *terminalSink) Failure(err error) {
	s.warn(err)
}

func (s *terminalSink) recordingText() string {
	return fmt.Sprintf(
		"Recording %s [%s]  press Ctrl-C to stop",
		timeutil.FormatClock(s.elapsed),
		s.modalities,
	)
}

func analyzingText(percent int) string {
	return fmt.Sprintf("Analyzing your sleep... %d%%", percent)
}
