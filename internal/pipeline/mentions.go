package pipeline

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
)

// channelTokenPattern matches inline channel reference tokens like <#123>.
var channelTokenPattern = regexp.MustCompile(`<#(\d+)>`)

// MentionResolver replaces mention reference tokens in message text with
// display names. The three passes (users, channels, roles) run sequentially;
// each scans the output of the previous one.
type MentionResolver struct {
	dir    Directory
	logger *slog.Logger
}

// NewMentionResolver creates a resolver using the given directory for channel
// and role lookups.
func NewMentionResolver(dir Directory, logger *slog.Logger) *MentionResolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &MentionResolver{
		dir:    dir,
		logger: logger.With("component", "mention_resolver"),
	}
}

// Resolve returns the event's content with mention tokens substituted. Text
// containing no reference tokens is returned unchanged.
func (r *MentionResolver) Resolve(ctx context.Context, ev Event) string {
	text := r.resolveUsers(ev)
	text = r.resolveChannels(ctx, text)
	text = r.resolveRoles(ctx, ev, text)
	return text
}

// resolveUsers replaces the plain and nickname mention forms of every
// attached user-mention entity with the user's display name. No external
// lookup is needed; the entity list carries the names.
func (r *MentionResolver) resolveUsers(ev Event) string {
	text := ev.Content
	for _, m := range ev.Mentions {
		text = strings.ReplaceAll(text, "<@"+m.ID+">", m.Name)
		text = strings.ReplaceAll(text, "<@!"+m.ID+">", m.Name)
	}
	return text
}

// resolveChannels splices channel display names over <#id> tokens, processing
// matches left-to-right and preserving all non-matching text verbatim. A
// failed lookup substitutes the empty string for that token only.
func (r *MentionResolver) resolveChannels(ctx context.Context, text string) string {
	matches := channelTokenPattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text
	}

	var b strings.Builder
	last := 0
	for _, m := range matches {
		b.WriteString(text[last:m[0]])

		channelID := text[m[2]:m[3]]
		if name, ok := r.dir.ChannelName(ctx, channelID); ok {
			b.WriteString(name)
		} else {
			r.logger.DebugContext(ctx, "Channel mention lookup failed, dropping token", "channel_id", channelID)
		}

		last = m[1]
	}
	b.WriteString(text[last:])

	return b.String()
}

// resolveRoles replaces <@&id> tokens for the event's role mentions. A role
// resolves only when the event belongs to a guild whose role directory knows
// the ID; unresolvable tokens are left untouched.
func (r *MentionResolver) resolveRoles(ctx context.Context, ev Event, text string) string {
	if ev.GuildID == "" {
		return text
	}

	for _, roleID := range ev.RoleIDs {
		name, ok := r.dir.RoleName(ctx, ev.GuildID, roleID)
		if !ok {
			continue
		}
		text = strings.ReplaceAll(text, "<@&"+roleID+">", name)
	}
	return text
}
