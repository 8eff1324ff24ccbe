package discord

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"

	"chatkeeper/internal/notify"
	"chatkeeper/internal/pipeline"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("empty token rejected", func(t *testing.T) {
		t.Parallel()

		if _, err := New("", discardLogger()); err == nil {
			t.Error("New() error = nil, want error for empty token")
		}
	})

	t.Run("valid token creates adapter", func(t *testing.T) {
		t.Parallel()

		a, err := New("test-token", discardLogger())
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		if a.session == nil {
			t.Error("adapter has nil session")
		}
	})
}

func TestEventFromMessage(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		message *discordgo.MessageCreate
		want    pipeline.Event
	}{
		{
			name: "full message",
			message: &discordgo.MessageCreate{
				Message: &discordgo.Message{
					ChannelID: "chan-1",
					GuildID:   "guild-1",
					Content:   "hey <@42>",
					Author:    &discordgo.User{ID: "user-1", Username: "alice", Bot: false},
					Mentions: []*discordgo.User{
						{ID: "42", Username: "bob"},
					},
					MentionRoles: []string{"900"},
				},
			},
			want: pipeline.Event{
				AuthorID:   "user-1",
				AuthorName: "alice",
				ChannelID:  "chan-1",
				GuildID:    "guild-1",
				Content:    "hey <@42>",
				Mentions:   []pipeline.Mention{{ID: "42", Name: "bob"}},
				RoleIDs:    []string{"900"},
			},
		},
		{
			name: "bot author flag carried through",
			message: &discordgo.MessageCreate{
				Message: &discordgo.Message{
					ChannelID: "chan-1",
					Content:   "automated",
					Author:    &discordgo.User{ID: "bot-1", Username: "hook", Bot: true},
				},
			},
			want: pipeline.Event{
				AuthorID:   "bot-1",
				AuthorName: "hook",
				Bot:        true,
				ChannelID:  "chan-1",
				Content:    "automated",
				Mentions:   []pipeline.Mention{},
			},
		},
		{
			name: "missing author tolerated",
			message: &discordgo.MessageCreate{
				Message: &discordgo.Message{
					ChannelID: "chan-1",
					Content:   "system notice",
				},
			},
			want: pipeline.Event{
				ChannelID: "chan-1",
				Content:   "system notice",
				Mentions:  []pipeline.Mention{},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := eventFromMessage(tc.message)

			if got.AuthorID != tc.want.AuthorID || got.AuthorName != tc.want.AuthorName || got.Bot != tc.want.Bot {
				t.Errorf("author fields = (%q, %q, %v), want (%q, %q, %v)",
					got.AuthorID, got.AuthorName, got.Bot,
					tc.want.AuthorID, tc.want.AuthorName, tc.want.Bot)
			}
			if got.ChannelID != tc.want.ChannelID || got.GuildID != tc.want.GuildID {
				t.Errorf("channel/guild = (%q, %q), want (%q, %q)",
					got.ChannelID, got.GuildID, tc.want.ChannelID, tc.want.GuildID)
			}
			if got.Content != tc.want.Content {
				t.Errorf("Content = %q, want %q", got.Content, tc.want.Content)
			}
			if len(got.Mentions) != len(tc.want.Mentions) {
				t.Fatalf("len(Mentions) = %d, want %d", len(got.Mentions), len(tc.want.Mentions))
			}
			for i := range got.Mentions {
				if got.Mentions[i] != tc.want.Mentions[i] {
					t.Errorf("Mentions[%d] = %+v, want %+v", i, got.Mentions[i], tc.want.Mentions[i])
				}
			}
			if len(got.RoleIDs) != len(tc.want.RoleIDs) {
				t.Fatalf("len(RoleIDs) = %d, want %d", len(got.RoleIDs), len(tc.want.RoleIDs))
			}
		})
	}
}

func TestEmbedFromReport(t *testing.T) {
	t.Parallel()

	report := notify.Report{
		Title: "Memory usage alert",
		Alert: true,
		Fields: []notify.Field{
			{Name: "Total memory", Value: "32.00 GB"},
			{Name: "Used percentage", Value: "96.10%"},
		},
		At: time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC),
	}

	embed := embedFromReport(report)
	if embed.Title != report.Title {
		t.Errorf("Title = %q, want %q", embed.Title, report.Title)
	}
	if embed.Color != colorAlert {
		t.Errorf("Color = %#x, want alert color %#x", embed.Color, colorAlert)
	}
	if len(embed.Fields) != 2 {
		t.Fatalf("len(Fields) = %d, want 2", len(embed.Fields))
	}
	if embed.Fields[1].Value != "96.10%" || !embed.Fields[1].Inline {
		t.Errorf("Fields[1] = %+v, want inline percentage field", embed.Fields[1])
	}
	if embed.Timestamp != "2024-01-02T10:00:00Z" {
		t.Errorf("Timestamp = %q, want RFC3339", embed.Timestamp)
	}

	info := embedFromReport(notify.Report{Title: "Daily memory report"})
	if info.Color != colorInfo {
		t.Errorf("Color = %#x, want info color %#x", info.Color, colorInfo)
	}
}

func TestRunRequiresBoundPipeline(t *testing.T) {
	t.Parallel()

	a, err := New("test-token", discardLogger())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if err := a.Run(t.Context()); err == nil {
		t.Error("Run() error = nil, want error without a bound pipeline")
	}
}
