package clients

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/bwmarrin/discordgo"

	"ConverseAI/app/teams"
)

var _ Interface = &DiscordClient{}

// DiscordClient forwards channel messages prefixed with !ask to an
// analysis team and posts the consolidated answer back.
type DiscordClient struct {
	session   *discordgo.Session
	team      *teams.Team
	channelID string
}

func NewDiscordClient() *DiscordClient {
	token := os.Getenv("DISCORD_TOKEN")

	if token == "" {
		return nil
	}

	session, _ := discordgo.New("Bot " + token)
	dc := &DiscordClient{
		session:   session,
		channelID: os.Getenv("DISCORD_CHANNEL_ID"),
	}

	session.AddHandler(dc.onMessageCreate)
	session.Identify.Intents = discordgo.IntentsGuildMessages

	return dc
}

func (c *DiscordClient) Subscribe(team *teams.Team) {
	c.team = team
	if err := c.Open(); err != nil {
		log.Printf("⚠️ Could not open Discord session: %v", err)
	}
}

func (c *DiscordClient) Open() error {
	if err := c.session.Open(); err != nil {
		return err
	}
	log.Println("🔌 Discord client started. Listening for messages...")
	return nil
}

func (c *DiscordClient) Close() error {
	return c.session.Close()
}

func (c *DiscordClient) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author.ID == s.State.User.ID {
		return
	}
	if c.channelID != "" && m.ChannelID != c.channelID {
		return
	}
	if !strings.HasPrefix(m.Content, "!ask") {
		return
	}

	query := strings.TrimSpace(strings.TrimPrefix(m.Content, "!ask"))
	if query == "" {
		_, _ = s.ChannelMessageSend(m.ChannelID, "Usage: !ask <question>")
		return
	}

	go func() {
		answer, err := c.team.Run(context.Background(), query)
		if err != nil {
			log.Printf("❌ Error running %s team for Discord query: %v", c.team.Name, err)
			_, _ = s.ChannelMessageSend(m.ChannelID, "Analysis failed, check the logs.")
			return
		}
		if err := c.SendMessage(m.ChannelID, answer); err != nil {
			log.Printf("⚠️ %v", err)
		}
	}()
}

func (c *DiscordClient) SendMessage(channelID, content string) error {
	if channelID == "" {
		return fmt.Errorf("channelID is empty")
	}
	// Discord caps messages at 2000 characters.
	for len(content) > 0 {
		chunk := content
		if len(chunk) > 2000 {
			chunk = chunk[:2000]
		}
		content = content[len(chunk):]
		if _, err := c.session.ChannelMessageSend(channelID, chunk); err != nil {
			return fmt.Errorf("failed to send message: %w", err)
		}
	}
	return nil
}
