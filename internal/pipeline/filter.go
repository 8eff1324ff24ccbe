package pipeline

import (
	"chatkeeper/internal/config"
)

// RejectReason identifies which filter check rejected an event.
type RejectReason string

// Reject reasons, in evaluation order.
const (
	RejectBotAuthor       RejectReason = "bot_author"
	RejectIgnoredUser     RejectReason = "ignored_user"
	RejectIgnoredChannel  RejectReason = "ignored_channel"
	RejectTooShort        RejectReason = "too_short"
	RejectGuildNotAllowed RejectReason = "guild_not_allowed"
)

// Filter is the ingestion filter chain: a pure predicate over an event and
// static configuration, with no side effects.
type Filter struct {
	botIDs          map[string]struct{}
	ignoredUsers    map[string]struct{}
	ignoredChannels map[string]struct{}
	allowedGuilds   map[string]struct{}
	minWords        int
}

// NewFilter builds a filter from configuration.
func NewFilter(cfg config.FilterConfig) *Filter {
	return &Filter{
		botIDs:          toSet(cfg.BotIDs),
		ignoredUsers:    toSet(cfg.IgnoredUserIDs),
		ignoredChannels: toSet(cfg.IgnoredChannelIDs),
		allowedGuilds:   toSet(cfg.AllowedGuildIDs),
		minWords:        cfg.MinWords,
	}
}

// Check evaluates the filter chain and returns whether the event is accepted.
// Checks short-circuit: the first matching rejection wins and no further
// checks run.
func (f *Filter) Check(ev Event) (bool, RejectReason) {
	if _, isBot := f.botIDs[ev.AuthorID]; isBot || ev.Bot {
		return false, RejectBotAuthor
	}

	if _, ignored := f.ignoredUsers[ev.AuthorID]; ignored {
		return false, RejectIgnoredUser
	}

	if _, ignored := f.ignoredChannels[ev.ChannelID]; ignored {
		return false, RejectIgnoredChannel
	}

	if wordCount(ev.Content) < f.minWords {
		return false, RejectTooShort
	}

	// Unlike the ignore checks, a missing guild ID passes: the allow-list
	// only constrains events that actually carry a guild. An empty
	// allow-list disables the restriction entirely.
	if len(f.allowedGuilds) > 0 && ev.GuildID != "" {
		if _, allowed := f.allowedGuilds[ev.GuildID]; !allowed {
			return false, RejectGuildNotAllowed
		}
	}

	return true, ""
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
