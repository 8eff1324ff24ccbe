// Package discord adapts the Discord gateway to the ingestion pipeline. It
// translates inbound message events, resolves directory lookups (channel and
// role names), and delivers monitor notifications as embeds.
package discord

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"chatkeeper/internal/pipeline"
)

// Adapter wraps a discordgo session and bridges gateway events into the
// pipeline.
type Adapter struct {
	session  *discordgo.Session
	pipeline *pipeline.Pipeline
	logger   *slog.Logger
}

// New creates the Discord adapter. The pipeline is attached separately via
// BindPipeline because the pipeline itself needs the adapter as its
// directory.
func New(token string, logger *slog.Logger) (*Adapter, error) {
	if token == "" {
		return nil, fmt.Errorf("discord token cannot be empty")
	}
	if logger == nil {
		logger = slog.Default()
	}

	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentGuildMessages | discordgo.IntentMessageContent

	a := &Adapter{
		session: session,
		logger:  logger.With("component", "discord"),
	}
	session.AddHandler(a.onReady)

	return a, nil
}

// BindPipeline registers the message-create handler that feeds the pipeline.
// Must be called before Run.
func (a *Adapter) BindPipeline(p *pipeline.Pipeline) {
	a.pipeline = p
	a.session.AddHandler(a.onMessageCreate)
}

// Run opens the gateway connection and blocks until ctx is cancelled.
func (a *Adapter) Run(ctx context.Context) error {
	if a.pipeline == nil {
		return fmt.Errorf("no pipeline bound, call BindPipeline first")
	}

	if err := a.session.Open(); err != nil {
		return fmt.Errorf("failed to open discord gateway connection: %w", err)
	}
	a.logger.Info("Discord gateway connection opened")

	<-ctx.Done()

	a.logger.Info("Closing Discord gateway connection...")
	if err := a.session.Close(); err != nil {
		a.logger.Error("Error closing Discord session", "error", err)
	}
	return ctx.Err()
}

func (a *Adapter) onReady(_ *discordgo.Session, r *discordgo.Ready) {
	a.logger.Info("Connected to Discord", "username", r.User.Username, "user_id", r.User.ID)
}

// onMessageCreate converts a gateway message into a pipeline event and hands
// it off. discordgo dispatches handlers on their own goroutines, so
// invocations may overlap; the pipeline tolerates that.
func (a *Adapter) onMessageCreate(_ *discordgo.Session, m *discordgo.MessageCreate) {
	a.pipeline.Handle(context.Background(), eventFromMessage(m))
}

// eventFromMessage maps the gateway payload onto the transport-neutral event.
func eventFromMessage(m *discordgo.MessageCreate) pipeline.Event {
	mentions := make([]pipeline.Mention, 0, len(m.Mentions))
	for _, u := range m.Mentions {
		if u == nil {
			continue
		}
		mentions = append(mentions, pipeline.Mention{ID: u.ID, Name: u.Username})
	}

	ev := pipeline.Event{
		ChannelID: m.ChannelID,
		GuildID:   m.GuildID,
		Content:   m.Content,
		Mentions:  mentions,
		RoleIDs:   m.MentionRoles,
	}
	if m.Author != nil {
		ev.AuthorID = m.Author.ID
		ev.AuthorName = m.Author.Username
		ev.Bot = m.Author.Bot
	}
	return ev
}
