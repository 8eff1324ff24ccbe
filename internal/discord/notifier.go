package discord

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"chatkeeper/internal/notify"
)

// Embed colors for reports.
const (
	colorInfo  = 0x3498db
	colorAlert = 0xe74c3c
)

// Broadcast sends a report as an embed to the given channel. Implements
// notify.Notifier.
func (a *Adapter) Broadcast(ctx context.Context, channelID string, r notify.Report) error {
	_, err := a.session.ChannelMessageSendEmbed(channelID, embedFromReport(r), withContext(ctx)...)
	if err != nil {
		return fmt.Errorf("failed to send embed to channel %s: %w", channelID, err)
	}
	return nil
}

// DirectMessage sends a report as an embed to the user's DM channel.
func (a *Adapter) DirectMessage(ctx context.Context, userID string, r notify.Report) error {
	ch, err := a.session.UserChannelCreate(userID, withContext(ctx)...)
	if err != nil {
		return fmt.Errorf("failed to open DM channel with user %s: %w", userID, err)
	}

	_, err = a.session.ChannelMessageSendEmbed(ch.ID, embedFromReport(r), withContext(ctx)...)
	if err != nil {
		return fmt.Errorf("failed to send embed DM to user %s: %w", userID, err)
	}
	return nil
}

func embedFromReport(r notify.Report) *discordgo.MessageEmbed {
	color := colorInfo
	if r.Alert {
		color = colorAlert
	}

	fields := make([]*discordgo.MessageEmbedField, 0, len(r.Fields))
	for _, f := range r.Fields {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:   f.Name,
			Value:  f.Value,
			Inline: true,
		})
	}

	return &discordgo.MessageEmbed{
		Title:     r.Title,
		Color:     color,
		Fields:    fields,
		Timestamp: r.At.Format(time.RFC3339),
	}
}

func withContext(ctx context.Context) []discordgo.RequestOption {
	if ctx == nil {
		return nil
	}
	return []discordgo.RequestOption{discordgo.WithContext(ctx)}
}
