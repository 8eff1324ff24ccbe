package database

import (
	"database/sql"
	"time"
)

// Message is a chat message persisted by the ingestion pipeline. Records are
// immutable after insert; the only delete path is the retention sweep.
type Message struct {
	// ID is assigned by the store on insert and must never be set by the
	// caller.
	ID int64 `db:"id"`

	Author  string `db:"author"`
	Channel string `db:"channel"`
	Text    string `db:"text"`

	// Classification is the optional sentiment label; NULL when enrichment
	// failed, was disabled, or returned no signal.
	Classification sql.NullString `db:"classification"`

	// Translation holds the Korean translation for long messages; NULL
	// otherwise.
	Translation sql.NullString `db:"translation"`

	// CreatedAt is stamped by the pipeline at persistence time in the
	// reference time zone.
	CreatedAt time.Time `db:"created_at"`
}
