package discord

import (
	"context"
)

// ChannelName resolves a channel ID to its display name, consulting the
// session state cache before hitting the API. Implements pipeline.Directory.
func (a *Adapter) ChannelName(ctx context.Context, channelID string) (string, bool) {
	if ch, err := a.session.State.Channel(channelID); err == nil && ch.Name != "" {
		return ch.Name, true
	}

	ch, err := a.session.Channel(channelID, withContext(ctx)...)
	if err != nil {
		a.logger.DebugContext(ctx, "Channel lookup failed", "channel_id", channelID, "error", err)
		return "", false
	}
	return ch.Name, true
}

// RoleName resolves a role ID within a guild to its name. A miss (unknown
// guild or role) returns false without an error; callers leave the token
// untouched.
func (a *Adapter) RoleName(ctx context.Context, guildID, roleID string) (string, bool) {
	if role, err := a.session.State.Role(guildID, roleID); err == nil {
		return role.Name, true
	}

	roles, err := a.session.GuildRoles(guildID, withContext(ctx)...)
	if err != nil {
		a.logger.DebugContext(ctx, "Guild role lookup failed", "guild_id", guildID, "role_id", roleID, "error", err)
		return "", false
	}
	for _, role := range roles {
		if role.ID == roleID {
			return role.Name, true
		}
	}
	return "", false
}
