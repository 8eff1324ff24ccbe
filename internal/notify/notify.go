// Package notify defines the outbound notification contract used by the
// resource monitor. Delivery is best-effort: failures are logged by callers
// and never retried.
package notify

import (
	"context"
	"time"
)

// Field is one labeled value within a report.
type Field struct {
	Name  string
	Value string
}

// Report is the payload delivered to notification targets. Rendering (embed
// layout, colors) is left to the transport implementation.
type Report struct {
	Title  string
	Alert  bool
	Fields []Field
	At     time.Time
}

// Notifier delivers reports to a broadcast channel or directly to a user.
type Notifier interface {
	Broadcast(ctx context.Context, channelID string, r Report) error
	DirectMessage(ctx context.Context, userID string, r Report) error
}
