package transcription

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/coder/websocket"
)

const defaultStreamingHost = "streaming.assemblyai.com"

// Streamer drives one realtime transcription session over a websocket and
// feeds every Turn event into its Segmenter. One Streamer per session.
type Streamer struct {
	apiKey string
	host   string

	Segmenter *Segmenter

	mu        sync.Mutex
	conn      *websocket.Conn
	running   bool
	sessionID string
}

type updateConfiguration struct {
	Type        string `json:"type"`
	FormatTurns bool   `json:"format_turns"`
}

type terminateMessage struct {
	Type string `json:"type"`
}

// NewStreamer fails when the API key is missing: that is an unrecoverable
// configuration error, unlike runtime stream failures which are logged.
func NewStreamer(apiKey string, segmenter *Segmenter) (*Streamer, error) {
	if apiKey == "" {
		apiKey = os.Getenv("ASSEMBLY_AI_API_KEY")
	}
	if apiKey == "" {
		return nil, errors.New("ASSEMBLY_AI_API_KEY not found in environment")
	}
	host := os.Getenv("STREAMING_HOST")
	if host == "" {
		host = defaultStreamingHost
	}
	if segmenter == nil {
		segmenter = NewSegmenter(0, nil)
	}
	return &Streamer{
		apiKey:    apiKey,
		host:      host,
		Segmenter: segmenter,
	}, nil
}

// Connect opens the streaming session and starts the event read loop.
func (st *Streamer) Connect(ctx context.Context, sampleRate int, formatTurns bool) error {
	url := fmt.Sprintf("wss://%s/v3/ws?sample_rate=%d&format_turns=%t", st.host, sampleRate, formatTurns)

	header := http.Header{}
	header.Set("Authorization", st.apiKey)

	conn, _, err := websocket.Dial(ctx, url, &websocket.DialOptions{HTTPHeader: header})
	if err != nil {
		return fmt.Errorf("connect streaming session: %w", err)
	}
	// Audio frames for a whole utterance can outgrow the default limit.
	conn.SetReadLimit(1 << 22)

	st.mu.Lock()
	st.conn = conn
	st.running = true
	st.mu.Unlock()

	go st.readLoop(ctx)
	return nil
}

func (st *Streamer) readLoop(ctx context.Context) {
	for {
		conn := st.connection()
		if conn == nil {
			return
		}

		_, data, err := conn.Read(ctx)
		if err != nil {
			if st.IsRunning() {
				log.Printf("🚨 Streaming error: %v", err)
				st.markInactive()
			}
			return
		}
		st.dispatch(ctx, data)
	}
}

func (st *Streamer) dispatch(ctx context.Context, data []byte) {
	var envelope eventEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		log.Printf("⚠️ Malformed streaming event: %v", err)
		return
	}

	switch envelope.Type {
	case eventBegin:
		var ev BeginEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			log.Printf("⚠️ Malformed begin event: %v", err)
			return
		}
		st.mu.Lock()
		st.sessionID = ev.ID
		st.mu.Unlock()
		log.Printf("🎙️ Session started: %s", ev.ID)

	case eventTurn:
		var ev TurnEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			log.Printf("⚠️ Malformed turn event: %v", err)
			return
		}
		st.Segmenter.OnTurn(ev)
		// Nudge the service into formatted turns if it completed one raw.
		if ev.EndOfTurn && !ev.TurnIsFormatted {
			if err := st.SetParams(ctx, true); err != nil {
				log.Printf("⚠️ Could not request formatted turns: %v", err)
			}
		}

	case eventTermination:
		var ev TerminationEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			log.Printf("⚠️ Malformed termination event: %v", err)
			return
		}
		log.Printf("🎙️ Session terminated: %.1f seconds of audio processed", ev.AudioDurationSeconds)
		st.markInactive()
		st.Segmenter.Flush()

	default:
		var ev ErrorEvent
		if err := json.Unmarshal(data, &ev); err == nil && ev.Message != "" {
			log.Printf("🚨 Streaming error: %s", ev.Message)
			st.markInactive()
			return
		}
		log.Printf("⚠️ Unknown streaming event type: %s", envelope.Type)
	}
}

// SetParams updates the live session configuration.
func (st *Streamer) SetParams(ctx context.Context, formatTurns bool) error {
	conn := st.connection()
	if conn == nil {
		return errors.New("session not connected")
	}
	msg, err := json.Marshal(updateConfiguration{Type: "UpdateConfiguration", FormatTurns: formatTurns})
	if err != nil {
		return err
	}
	return conn.Write(ctx, websocket.MessageText, msg)
}

// Stream pumps raw PCM audio from r to the session in 50ms frames until
// EOF, the context is done, or the session stops.
func (st *Streamer) Stream(ctx context.Context, r io.Reader, sampleRate int) error {
	// 16-bit mono PCM: bytes per 50ms frame.
	frameSize := sampleRate / 20 * 2
	buf := make([]byte, frameSize)

	for st.IsRunning() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		n, err := io.ReadFull(r, buf)
		if n > 0 {
			conn := st.connection()
			if conn == nil {
				return nil
			}
			if werr := conn.Write(ctx, websocket.MessageBinary, buf[:n]); werr != nil {
				log.Printf("🚨 Streaming error: %v", werr)
				st.markInactive()
				return werr
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil
			}
			return err
		}
		time.Sleep(50 * time.Millisecond)
	}
	return nil
}

// Disconnect ends the session. With terminate set, the service is asked to
// finish processing buffered audio first. Pending text is always flushed.
func (st *Streamer) Disconnect(terminate bool) {
	st.mu.Lock()
	conn := st.conn
	st.conn = nil
	st.running = false
	st.mu.Unlock()

	if conn != nil {
		if terminate {
			msg, _ := json.Marshal(terminateMessage{Type: "Terminate"})
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			if err := conn.Write(ctx, websocket.MessageText, msg); err != nil {
				log.Printf("⚠️ Could not send terminate message: %v", err)
			}
			cancel()
		}
		_ = conn.Close(websocket.StatusNormalClosure, "client disconnect")
	}

	st.Segmenter.Flush()
}

func (st *Streamer) IsRunning() bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.running
}

// SessionID is set once the Begin event arrives.
func (st *Streamer) SessionID() string {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.sessionID
}

func (st *Streamer) connection() *websocket.Conn {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.conn
}

func (st *Streamer) markInactive() {
	st.mu.Lock()
	st.running = false
	st.mu.Unlock()
}
