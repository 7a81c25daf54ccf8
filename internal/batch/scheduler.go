package batch

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/nextlevelbuilder/tgvault/internal/bus"
)

// archiveTimeout bounds the fire-and-forget archive write so a stuck
// database cannot leak goroutines indefinitely.
const archiveTimeout = 10 * time.Second

// FetchResult is what a successful media fetch produces.
type FetchResult struct {
	StatusLine string   // human-readable summary, one entry in the batch reply
	SavedFiles []string // local filenames, recorded in the archive
}

// Fetcher downloads the media referenced by a message.
type Fetcher interface {
	Fetch(ctx context.Context, msg bus.InboundMessage) (FetchResult, error)
}

// Archiver persists message metadata after a successful fetch.
// Failures are logged and never surface in the batch reply.
type Archiver interface {
	Archive(ctx context.Context, msg bus.InboundMessage, savedFiles []string) error
}

// GroupRecorder receives media-group observations from the dispatch path.
type GroupRecorder interface {
	Record(groupID string, kind, fileID string)
}

// Scheduler is the debounced batch consumer. A single control loop
// races message arrival against a fixed quiet-period timer: dequeued
// messages are handed to concurrent fetch tasks that append their
// results to the shared State, and each timer tick flushes whatever
// accumulated into exactly one aggregated reply.
//
// The timer runs on a fixed period from the previous tick rather than
// resetting on activity, so a burst spanning a tick boundary may be
// split across two replies. That matches the polling behavior this
// component was built around and keeps every flush decision in one
// place.
type Scheduler struct {
	bus      *bus.MessageBus
	fetcher  Fetcher
	archiver Archiver      // optional
	groups   GroupRecorder // optional
	state    *State
	quiet    time.Duration
	tracer   trace.Tracer
	tasks    sync.WaitGroup
}

// NewScheduler wires a Scheduler. archiver and groups may be nil.
func NewScheduler(msgBus *bus.MessageBus, fetcher Fetcher, archiver Archiver, groups GroupRecorder, quiet time.Duration) *Scheduler {
	if quiet <= 0 {
		quiet = 2 * time.Second
	}
	return &Scheduler{
		bus:      msgBus,
		fetcher:  fetcher,
		archiver: archiver,
		groups:   groups,
		state:    NewState(),
		quiet:    quiet,
		tracer:   otel.Tracer("tgvault/batch"),
	}
}

// State exposes the shared batch state, mainly for tests and doctor
// style introspection. Producers must go through the Scheduler.
func (s *Scheduler) State() *State {
	return s.state
}

// Run drives the consumer loop until ctx is cancelled or the bus
// closes. It is the only place a flush is ever triggered.
func (s *Scheduler) Run(ctx context.Context) error {
	slog.Info("batch consumer started", "quiet_period", s.quiet)

	timer := time.NewTimer(s.quiet)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("batch consumer stopped")
			return ctx.Err()
		case msg, ok := <-s.bus.Inbound():
			if !ok {
				return nil
			}
			s.dispatch(ctx, msg)
		case <-timer.C:
			s.flush(ctx)
			timer.Reset(s.quiet)
		}
	}
}

// dispatch starts one concurrent unit of work for a dequeued message.
func (s *Scheduler) dispatch(ctx context.Context, msg bus.InboundMessage) {
	jobID := uuid.NewString()[:8]
	slog.Debug("dispatching message",
		"job", jobID,
		"chat_id", msg.ChatID,
		"message_id", msg.MessageID,
		"media", len(msg.Media),
	)

	s.tasks.Add(1)
	go func() {
		defer s.tasks.Done()
		s.handle(ctx, jobID, msg)
	}()
}

func (s *Scheduler) handle(ctx context.Context, jobID string, msg bus.InboundMessage) {
	ctx, span := s.tracer.Start(ctx, "batch.fetch", trace.WithAttributes(
		attribute.String("chat_id", msg.ChatID),
		attribute.String("message_id", msg.MessageID),
		attribute.Int("media_count", len(msg.Media)),
	))
	defer span.End()

	// Album correlation happens on every dispatch, before the download:
	// a message carrying several matching media items records each one.
	if s.groups != nil && msg.GroupID != "" {
		for _, ref := range msg.Media {
			s.groups.Record(msg.GroupID, string(ref.Kind), ref.FileID)
		}
	}

	res, err := s.fetcher.Fetch(ctx, msg)
	if err != nil {
		// Per-item failures are absorbed: no line, no retry, only a log.
		span.RecordError(err)
		slog.Warn("media fetch failed",
			"job", jobID,
			"chat_id", msg.ChatID,
			"message_id", msg.MessageID,
			"error", err,
		)
		return
	}

	s.state.Append(ReplyTarget{
		Channel:   msg.Channel,
		ChatID:    msg.ChatID,
		MessageID: msg.MessageID,
	}, res.StatusLine)

	if s.archiver != nil {
		s.tasks.Add(1)
		go func() {
			defer s.tasks.Done()
			actx, cancel := context.WithTimeout(context.Background(), archiveTimeout)
			defer cancel()
			if err := s.archiver.Archive(actx, msg, res.SavedFiles); err != nil {
				slog.Warn("archive write failed",
					"job", jobID,
					"message_id", msg.MessageID,
					"error", err,
				)
			}
		}()
	}
}

// flush drains the accumulated batch and publishes one aggregated
// reply. The drain happens under the state lock; the send deliberately
// does not, so a slow outbound call never blocks appenders.
func (s *Scheduler) flush(ctx context.Context) {
	target, lines, ok := s.state.Drain()
	if !ok {
		return
	}

	ctx, span := s.tracer.Start(ctx, "batch.flush", trace.WithAttributes(
		attribute.String("chat_id", target.ChatID),
		attribute.Int("lines", len(lines)),
	))
	defer span.End()

	out := bus.OutboundMessage{
		Channel:   target.Channel,
		ChatID:    target.ChatID,
		ReplyToID: target.MessageID,
		Content:   strings.Join(lines, "\n"),
	}
	if err := s.bus.PublishOutbound(ctx, out); err != nil {
		// A failed reply never takes the consumer down; the batch is dropped.
		span.RecordError(err)
		slog.Error("flush publish failed",
			"chat_id", target.ChatID,
			"lines", len(lines),
			"error", err,
		)
		return
	}

	slog.Info("flushed batch",
		"chat_id", target.ChatID,
		"reply_to", target.MessageID,
		"lines", len(lines),
	)
}

// WaitIdle blocks until every spawned fetch and archive task has
// finished. Used by tests and the shutdown path.
func (s *Scheduler) WaitIdle() {
	s.tasks.Wait()
}
