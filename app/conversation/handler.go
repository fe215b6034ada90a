package conversation

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"ConverseAI/app/storage"
	"ConverseAI/app/teams"
	"ConverseAI/app/transcription"
)

// Handler runs a realtime voice conversation: audio goes up the streaming
// session, finalized utterances come back from the segmenter, and each one
// triggers a team analysis whose result is printed and remembered.
type Handler struct {
	team     *teams.Team
	streamer *transcription.Streamer
	db       storage.Interface
	user     string

	wg sync.WaitGroup
}

func NewHandler(team *teams.Team, db storage.Interface, user string, pause time.Duration) (*Handler, error) {
	h := &Handler{
		team: team,
		db:   db,
		user: user,
	}

	segmenter := transcription.NewSegmenter(pause, h.processTranscript)
	streamer, err := transcription.NewStreamer("", segmenter)
	if err != nil {
		return nil, err
	}
	h.streamer = streamer
	return h, nil
}

// processTranscript is invoked from the segmenter's timer context; the
// analysis runs in its own goroutine so a slow team never blocks the
// utterance pipeline.
func (h *Handler) processTranscript(transcript string) {
	fmt.Printf("\n🎤 You said: %s\n", transcript)

	if h.db != nil {
		if err := h.db.SaveMemory(context.Background(), storage.Record{
			User:      h.user,
			Role:      "user",
			Content:   transcript,
			CreatedAt: time.Now(),
		}); err != nil {
			log.Printf("⚠️ Error saving utterance for user %s: %v", h.user, err)
		}
	}

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		h.runAnalysis(transcript)
	}()
}

func (h *Handler) runAnalysis(message string) {
	log.Printf("🤖 Processing with %s team...", h.team.Name)

	answer, err := h.team.Run(context.Background(), message)
	if err != nil {
		log.Printf("❌ Error during analysis: %v", err)
		return
	}

	fmt.Printf("\n%s\n\n✅ Analysis complete. Ready for next input.\n", answer)
}

// Start connects the streaming session and pumps audio from r until the
// context is canceled or the source is exhausted. Blocks for the duration
// of the conversation.
func (h *Handler) Start(ctx context.Context, audio io.Reader, sampleRate int) error {
	log.Printf("🗣️ Starting conversation with %s team for user %s. Speak now; Ctrl+C to stop.", h.team.Name, h.user)
	printDisclaimer(h.team.Name)

	if err := h.streamer.Connect(ctx, sampleRate, true); err != nil {
		return err
	}

	err := h.streamer.Stream(ctx, audio, sampleRate)
	h.Stop()
	if err != nil && ctx.Err() != nil {
		return nil // canceled by the user, not a failure
	}
	return err
}

// Stop tears the session down, flushing any pending utterance, and waits
// for in-flight analyses to finish.
func (h *Handler) Stop() {
	h.streamer.Disconnect(true)
	h.wg.Wait()
}

func printDisclaimer(teamName string) {
	switch teamName {
	case teams.TeamMedical:
		log.Print("⚠️ Medical information is for educational purposes only. Always consult healthcare professionals.")
	case teams.TeamLegal:
		log.Print("⚖️ Legal information is for educational purposes only - not legal advice. Consult qualified counsel.")
	}
}
