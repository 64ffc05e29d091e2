package session

// EventSink receives session updates. Methods may be called from several
// goroutines and must not call back into the Orchestrator.
type EventSink interface {
	StateChanged(s Session)
	Elapsed(seconds int)
	AnalysisProgress(percent int)
	// Failure reports errors, including ones that do not abort the session.
	Failure(err error)
}

// NopSink discards every event.
type NopSink struct{}

func (NopSink) StateChanged(Session) {}

func (NopSink) Elapsed(int) {}

func (NopSink) AnalysisProgress(int) {}

func (NopSink) Failure(error) {}
