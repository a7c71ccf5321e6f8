package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pagekeep/doclink/domain/access"
	"github.com/pagekeep/doclink/domain/event"
	"github.com/pagekeep/doclink/domain/storage"
	"github.com/pagekeep/doclink/internal/metrics"
)

// EventHandler reacts to a committed event. Handlers run synchronously
// after the record is persisted and must do their own error handling.
type EventHandler func(ctx context.Context, stored event.StoredType, record event.Record)

// Event commits audit events and fans them out to subscribers. Types are
// registered in code; the stored row for a type is created the first time
// an event of that type is committed.
// Embeds Collection for Find/Get over committed records.
type Event struct {
	storage.Collection[event.Record]
	types    event.TypeStore
	records  event.RecordStore
	handlers []EventHandler
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// NewEvent creates a new Event service.
func NewEvent(
	types event.TypeStore,
	records event.RecordStore,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Event {
	if m == nil {
		m = metrics.New()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Event{
		Collection: storage.NewCollection[event.Record](records),
		types:      types,
		records:    records,
		metrics:    m,
		logger:     logger,
	}
}

// Subscribe registers a handler for committed events. Register handlers
// during startup; Subscribe is not safe to call concurrently with Commit.
func (s *Event) Subscribe(handler EventHandler) {
	s.handlers = append(s.handlers, handler)
}

// Commit records an event and notifies subscribers. The actor's ID is
// stored with the record; the system principal records as actor zero.
func (s *Event) Commit(
	ctx context.Context,
	t event.Type,
	actor access.User,
	target access.Resource,
) (event.Record, error) {
	return s.commit(ctx, t, actor, target, true)
}

// ResolveType returns the stored row for an event type, creating it on
// first use. Workflow triggers reference event types through these rows.
func (s *Event) ResolveType(ctx context.Context, t event.Type) (event.StoredType, error) {
	stored, err := s.types.GetOrCreate(ctx, t)
	if err != nil {
		return event.StoredType{}, fmt.Errorf("resolve event type: %w", err)
	}
	return stored, nil
}

// StoredTypes returns every event type row persisted so far.
func (s *Event) StoredTypes(ctx context.Context, options ...storage.Option) ([]event.StoredType, error) {
	stored, err := s.types.Find(ctx, options...)
	if err != nil {
		return nil, fmt.Errorf("find stored event types: %w", err)
	}
	return stored, nil
}

// --- internal write operations ---

// commit persists the record and, when notify is set, fans it out. Events
// committed by trigger-fired transitions skip notification so a transition
// cycle cannot feed its own trigger forever.
func (s *Event) commit(
	ctx context.Context,
	t event.Type,
	actor access.User,
	target access.Resource,
	notify bool,
) (event.Record, error) {
	stored, err := s.types.GetOrCreate(ctx, t)
	if err != nil {
		return event.Record{}, fmt.Errorf("resolve event type: %w", err)
	}

	record, err := event.NewRecord(stored.ID(), actor.ID(), target.Kind(), target.ID())
	if err != nil {
		return event.Record{}, fmt.Errorf("create event record: %w", err)
	}

	saved, err := s.records.Save(ctx, record)
	if err != nil {
		return event.Record{}, fmt.Errorf("save event record: %w", err)
	}

	s.metrics.RecordEvent(t.String())
	s.logger.Debug("event committed",
		slog.String("type", t.String()),
		slog.Int64("actor_id", actor.ID()),
		slog.String("target_kind", target.Kind().String()),
		slog.Int64("target_id", target.ID()),
	)

	if notify {
		for _, handler := range s.handlers {
			handler(ctx, stored, saved)
		}
	}

	return saved, nil
}
