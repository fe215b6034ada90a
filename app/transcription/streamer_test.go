package transcription

import (
	"context"
	"testing"
	"time"
)

func newTestStreamer(t *testing.T) *Streamer {
	t.Helper()
	t.Setenv("ASSEMBLY_AI_API_KEY", "test-key")

	st, err := NewStreamer("", NewSegmenter(time.Hour, nil))
	if err != nil {
		t.Fatalf("NewStreamer failed: %v", err)
	}
	return st
}

func TestNewStreamerRequiresAPIKey(t *testing.T) {
	t.Setenv("ASSEMBLY_AI_API_KEY", "")
	if _, err := NewStreamer("", nil); err == nil {
		t.Fatal("expected an error without an API key")
	}
}

func TestDispatchBeginEvent(t *testing.T) {
	st := newTestStreamer(t)

	st.dispatch(context.Background(), []byte(`{"type":"Begin","id":"sess-42","expires_at":1766000000}`))
	if st.SessionID() != "sess-42" {
		t.Errorf("session id not captured: %q", st.SessionID())
	}
}

func TestDispatchTurnFeedsSegmenter(t *testing.T) {
	st := newTestStreamer(t)

	st.dispatch(context.Background(), []byte(`{"type":"Turn","transcript":"hello there","end_of_turn":false,"turn_is_formatted":false}`))
	st.Segmenter.Flush()

	got, ok := st.Segmenter.Transcript(time.Second)
	if !ok || got != "hello there" {
		t.Fatalf("turn not fed to segmenter: %q (ok=%v)", got, ok)
	}
}

func TestDispatchTerminationFlushes(t *testing.T) {
	st := newTestStreamer(t)
	st.mu.Lock()
	st.running = true
	st.mu.Unlock()

	st.dispatch(context.Background(), []byte(`{"type":"Turn","transcript":"last words","end_of_turn":false,"turn_is_formatted":true}`))
	st.dispatch(context.Background(), []byte(`{"type":"Termination","audio_duration_seconds":12.5}`))

	if st.IsRunning() {
		t.Error("streamer still running after termination")
	}
	got, ok := st.Segmenter.Transcript(time.Second)
	if !ok || got != "last words" {
		t.Fatalf("pending text not flushed on termination: %q (ok=%v)", got, ok)
	}
}

func TestDispatchMalformedEvent(t *testing.T) {
	st := newTestStreamer(t)

	// Must not panic or change state.
	st.dispatch(context.Background(), []byte(`{not json`))
	st.dispatch(context.Background(), []byte(`{"type":"Mystery"}`))
	if st.SessionID() != "" {
		t.Errorf("unexpected session id: %q", st.SessionID())
	}
}

func TestSetParamsWithoutConnection(t *testing.T) {
	st := newTestStreamer(t)
	if err := st.SetParams(context.Background(), true); err == nil {
		t.Fatal("expected an error without a connection")
	}
}
