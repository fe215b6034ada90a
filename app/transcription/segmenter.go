package transcription

import (
	"log"
	"strings"
	"sync"
	"time"
)

const DefaultPauseDuration = 3 * time.Second

// Segmenter turns a stream of partial transcript events into finalized
// utterances. A debounce timer restarts on every partial; when it fires
// without interruption, the accumulated text is emitted exactly once.
//
// The accumulator is single-slot: one in-progress utterance per session.
// All state shared between the event context and the timer context is
// guarded by one mutex.
type Segmenter struct {
	mu           sync.Mutex
	pause        time.Duration
	accumulated  string
	lastActivity time.Time
	timer        *time.Timer
	generation   uint64
	queue        chan string
	onTranscript func(string)
}

// NewSegmenter builds a segmenter with the given pause duration (zero
// means DefaultPauseDuration). onTranscript may be nil; finalized
// utterances are always available through Transcript as well.
func NewSegmenter(pause time.Duration, onTranscript func(string)) *Segmenter {
	if pause <= 0 {
		pause = DefaultPauseDuration
	}
	return &Segmenter{
		pause:        pause,
		queue:        make(chan string, 64),
		onTranscript: onTranscript,
	}
}

// OnTurn records the latest partial transcript and restarts the debounce
// timer. Events with empty text leave the state machine untouched.
func (s *Segmenter) OnTurn(ev TurnEvent) {
	if ev.Transcript == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.accumulated = ev.Transcript
	s.lastActivity = time.Now()
	s.resetTimerLocked()
}

// resetTimerLocked cancels any pending timer and arms a new one. The
// generation counter invalidates a timer that already fired but has not
// taken the lock yet, so a stale callback can never flush newer text.
func (s *Segmenter) resetTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
	}
	s.generation++
	gen := s.generation
	s.timer = time.AfterFunc(s.pause, func() {
		s.onPauseDetected(gen)
	})
}

func (s *Segmenter) onPauseDetected(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		return
	}
	s.timer = nil
	s.flushLocked("Pause detected")
}

// Flush cancels any pending timer and emits the accumulated text, if any.
// Called on session termination and explicit stop so no utterance is
// silently dropped.
func (s *Segmenter) Flush() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.generation++
	s.flushLocked("Session ended")
}

func (s *Segmenter) flushLocked(reason string) {
	transcript := strings.TrimSpace(s.accumulated)
	if transcript == "" {
		return
	}
	log.Printf("🎤 %s - processing transcript: %s", reason, transcript)

	select {
	case s.queue <- transcript:
	default:
		log.Print("⚠️ Transcript queue is full, dropping utterance")
	}
	if s.onTranscript != nil {
		s.onTranscript(transcript)
	}

	s.accumulated = ""
}

// Transcript blocks until the next finalized utterance or the timeout
// elapses. A timeout of zero waits forever.
func (s *Segmenter) Transcript(timeout time.Duration) (string, bool) {
	if timeout <= 0 {
		return <-s.queue, true
	}
	select {
	case t := <-s.queue:
		return t, true
	case <-time.After(timeout):
		return "", false
	}
}

// LastActivity reports when the most recent partial event arrived.
func (s *Segmenter) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}
