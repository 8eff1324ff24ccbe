package pipeline

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"chatkeeper/internal/database"
	"chatkeeper/internal/enrich"
	"chatkeeper/internal/metrics"
)

// Pipeline turns a raw inbound event into a filtered, enriched, persisted
// record. It is invoked once per event; invocations may overlap, so every
// collaborator must tolerate concurrent use.
type Pipeline struct {
	filter     *Filter
	resolver   *MentionResolver
	dir        Directory
	classifier enrich.Classifier // nil when enrichment is disabled
	translator enrich.Translator // nil when enrichment is disabled
	store      database.Store
	loc        *time.Location

	// translateMinWords gates translation: only texts with strictly more
	// words are translated.
	translateMinWords int

	logger *slog.Logger
}

// Options carries the pipeline's collaborators and settings.
type Options struct {
	Filter            *Filter
	Directory         Directory
	Classifier        enrich.Classifier
	Translator        enrich.Translator
	Store             database.Store
	Location          *time.Location
	TranslateMinWords int
	Logger            *slog.Logger
}

// New creates an ingestion pipeline.
func New(opts Options) *Pipeline {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}

	return &Pipeline{
		filter:            opts.Filter,
		resolver:          NewMentionResolver(opts.Directory, logger),
		dir:               opts.Directory,
		classifier:        opts.Classifier,
		translator:        opts.Translator,
		store:             opts.Store,
		loc:               loc,
		translateMinWords: opts.TranslateMinWords,
		logger:            logger.With("component", "pipeline"),
	}
}

// Handle processes one inbound event end to end: filter, resolve mentions,
// enrich, stamp, persist. Enrichment failures degrade the record but never
// drop it; a persistence failure drops the event with a log line and no
// retry.
func (p *Pipeline) Handle(ctx context.Context, ev Event) {
	accepted, reason := p.filter.Check(ev)
	if !accepted {
		p.logger.DebugContext(ctx, "Event rejected by filter",
			"reason", reason, "author", ev.AuthorName, "channel_id", ev.ChannelID)
		metrics.MessagesFiltered.WithLabelValues(string(reason)).Inc()
		return
	}

	text := p.resolver.Resolve(ctx, ev)

	// Channel-name resolution failure degrades to an empty channel field,
	// never blocks persistence.
	channel := ""
	if name, ok := p.dir.ChannelName(ctx, ev.ChannelID); ok {
		channel = name
	} else {
		p.logger.DebugContext(ctx, "Channel name resolution failed", "channel_id", ev.ChannelID)
	}

	msg := &database.Message{
		Author:  ev.AuthorName,
		Channel: channel,
		Text:    text,
	}

	if p.classifier != nil {
		label, err := p.classifier.Classify(ctx, text)
		switch {
		case err != nil:
			p.logger.WarnContext(ctx, "Sentiment classification failed, persisting without label",
				"author", ev.AuthorName, "error", err)
		case label != "":
			msg.Classification = sql.NullString{String: label, Valid: true}
		}
	}

	if p.translator != nil && wordCount(text) > p.translateMinWords {
		translated, err := p.translator.Translate(ctx, text)
		switch {
		case err != nil:
			p.logger.WarnContext(ctx, "Translation failed, persisting without translation",
				"author", ev.AuthorName, "error", err)
		case translated != "":
			msg.Translation = sql.NullString{String: translated, Valid: true}
		}
	}

	msg.CreatedAt = time.Now().In(p.loc)

	if err := p.store.SaveMessage(ctx, msg); err != nil {
		// Transient ingestion loss is acceptable; the event is dropped.
		p.logger.ErrorContext(ctx, "Failed to persist message, dropping event",
			"author", ev.AuthorName, "channel", channel, "error", err)
		metrics.MessagesDropped.Inc()
		return
	}

	metrics.MessagesIngested.Inc()
	p.logger.DebugContext(ctx, "Message ingested",
		"message_id", msg.ID, "author", msg.Author, "channel", msg.Channel,
		"classified", msg.Classification.Valid)
}
