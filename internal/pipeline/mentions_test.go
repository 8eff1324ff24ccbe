package pipeline_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"chatkeeper/internal/pipeline"
)

// fakeDirectory is a map-backed Directory for tests.
type fakeDirectory struct {
	channels map[string]string
	roles    map[string]map[string]string
}

func (d *fakeDirectory) ChannelName(_ context.Context, channelID string) (string, bool) {
	name, ok := d.channels[channelID]
	return name, ok
}

func (d *fakeDirectory) RoleName(_ context.Context, guildID, roleID string) (string, bool) {
	guild, ok := d.roles[guildID]
	if !ok {
		return "", false
	}
	name, ok := guild[roleID]
	return name, ok
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMentionResolverResolve(t *testing.T) {
	t.Parallel()

	dir := &fakeDirectory{
		channels: map[string]string{
			"100": "general",
			"200": "random",
		},
		roles: map[string]map[string]string{
			"guild-1": {"900": "admins"},
		},
	}
	resolver := pipeline.NewMentionResolver(dir, discardLogger())

	testCases := []struct {
		name  string
		event pipeline.Event
		want  string
	}{
		{
			name:  "text without tokens is returned unchanged",
			event: pipeline.Event{Content: "no tokens in here at all"},
			want:  "no tokens in here at all",
		},
		{
			name: "plain user mention replaced with display name",
			event: pipeline.Event{
				Content:  "hey <@42> look at this",
				Mentions: []pipeline.Mention{{ID: "42", Name: "alice"}},
			},
			want: "hey alice look at this",
		},
		{
			name: "nickname mention form replaced with display name",
			event: pipeline.Event{
				Content:  "hey <@!42> look at this",
				Mentions: []pipeline.Mention{{ID: "42", Name: "alice"}},
			},
			want: "hey alice look at this",
		},
		{
			name: "multiple user mentions all replaced",
			event: pipeline.Event{
				Content: "<@42> and <@43> are here",
				Mentions: []pipeline.Mention{
					{ID: "42", Name: "alice"},
					{ID: "43", Name: "bob"},
				},
			},
			want: "alice and bob are here",
		},
		{
			name:  "channel token replaced, surrounding text preserved verbatim",
			event: pipeline.Event{Content: "see <#100> for details"},
			want:  "see general for details",
		},
		{
			name:  "unresolvable channel token collapses to empty string",
			event: pipeline.Event{Content: "see <#999> for details"},
			want:  "see  for details",
		},
		{
			name:  "mixed resolvable and unresolvable channel tokens",
			event: pipeline.Event{Content: "x <#100> y <#999> z <#200>"},
			want:  "x general y  z random",
		},
		{
			name: "role token replaced when event carries the guild",
			event: pipeline.Event{
				GuildID: "guild-1",
				Content: "ping <@&900> please",
				RoleIDs: []string{"900"},
			},
			want: "ping admins please",
		},
		{
			name: "role token untouched without a guild",
			event: pipeline.Event{
				Content: "ping <@&900> please",
				RoleIDs: []string{"900"},
			},
			want: "ping <@&900> please",
		},
		{
			name: "unknown role token untouched",
			event: pipeline.Event{
				GuildID: "guild-1",
				Content: "ping <@&901> please",
				RoleIDs: []string{"901"},
			},
			want: "ping <@&901> please",
		},
		{
			name: "all three token kinds in one message",
			event: pipeline.Event{
				GuildID:  "guild-1",
				Content:  "<@42> meet me in <#100>, cc <@&900>",
				Mentions: []pipeline.Mention{{ID: "42", Name: "alice"}},
				RoleIDs:  []string{"900"},
			},
			want: "alice meet me in general, cc admins",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := resolver.Resolve(context.Background(), tc.event)
			if got != tc.want {
				t.Errorf("Resolve() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestMentionResolverIdempotentOnResolvedText(t *testing.T) {
	t.Parallel()

	dir := &fakeDirectory{channels: map[string]string{"100": "general"}}
	resolver := pipeline.NewMentionResolver(dir, discardLogger())

	ev := pipeline.Event{
		Content:  "hey <@42>, see <#100>",
		Mentions: []pipeline.Mention{{ID: "42", Name: "alice"}},
	}

	once := resolver.Resolve(context.Background(), ev)
	ev.Content = once
	twice := resolver.Resolve(context.Background(), ev)

	if once != twice {
		t.Errorf("second Resolve() changed text: %q -> %q", once, twice)
	}
}
