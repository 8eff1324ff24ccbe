// Package pipeline implements the ingestion pipeline: filtering, mention
// resolution, enrichment, and persistence of inbound chat events.
package pipeline

import (
	"context"
	"strings"
)

// Mention is a user-mention entity attached to an inbound event.
type Mention struct {
	ID   string
	Name string
}

// Event is one inbound chat message as delivered by the transport adapter.
// All IDs are Discord snowflakes carried as strings.
type Event struct {
	AuthorID   string
	AuthorName string
	Bot        bool

	ChannelID string

	// GuildID may be empty for direct messages.
	GuildID string

	Content string

	Mentions []Mention
	RoleIDs  []string
}

// Directory resolves opaque IDs to display names via the transport. A false
// return means the ID could not be resolved; callers degrade per pass.
type Directory interface {
	ChannelName(ctx context.Context, channelID string) (string, bool)
	RoleName(ctx context.Context, guildID, roleID string) (string, bool)
}

// wordCount counts whitespace-separated tokens, excluding empty ones.
func wordCount(text string) int {
	return len(strings.Fields(text))
}
