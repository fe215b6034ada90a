package transcription

// Wire events of the realtime speech session, in the order a session
// produces them: Begin, any number of Turns, then Termination. Errors can
// arrive at any point.

type BeginEvent struct {
	ID        string `json:"id"`
	ExpiresAt int64  `json:"expires_at"`
}

// TurnEvent carries the cumulative transcript of the current utterance.
// The service re-sends the full text on every event, so consumers must
// treat Transcript as latest-wins, not append.
type TurnEvent struct {
	Transcript      string `json:"transcript"`
	EndOfTurn       bool   `json:"end_of_turn"`
	TurnIsFormatted bool   `json:"turn_is_formatted"`
}

type TerminationEvent struct {
	AudioDurationSeconds float64 `json:"audio_duration_seconds"`
}

type ErrorEvent struct {
	Message string `json:"error"`
}

type eventEnvelope struct {
	Type string `json:"type"`
}

const (
	eventBegin       = "Begin"
	eventTurn        = "Turn"
	eventTermination = "Termination"
)
