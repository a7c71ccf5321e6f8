package persistence

import (
	"context"
	"fmt"

	"github.com/pagekeep/doclink/domain/event"
	"github.com/pagekeep/doclink/internal/database"
)

// EventTypeStore implements event.TypeStore using GORM.
type EventTypeStore struct {
	database.Repository[event.StoredType, StoredEventTypeModel]
}

// NewEventTypeStore creates a new EventTypeStore.
func NewEventTypeStore(db database.Database) EventTypeStore {
	return EventTypeStore{
		Repository: database.NewRepository[event.StoredType, StoredEventTypeModel](db, StoredEventTypeMapper{}, "event type"),
	}
}

// GetOrCreate returns the stored row for an event type, creating it on
// first use.
func (s EventTypeStore) GetOrCreate(ctx context.Context, t event.Type) (event.StoredType, error) {
	stored, err := event.NewStoredType(t)
	if err != nil {
		return event.StoredType{}, err
	}

	model := s.Mapper().ToModel(stored)
	result := s.DB(ctx).Where("name = ?", string(t)).FirstOrCreate(&model)
	if result.Error != nil {
		return event.StoredType{}, fmt.Errorf("get or create event type: %w", result.Error)
	}
	return s.Mapper().ToDomain(model), nil
}

// EventRecordStore implements event.RecordStore using GORM.
type EventRecordStore struct {
	database.Repository[event.Record, EventRecordModel]
}

// NewEventRecordStore creates a new EventRecordStore.
func NewEventRecordStore(db database.Database) EventRecordStore {
	return EventRecordStore{
		Repository: database.NewRepository[event.Record, EventRecordModel](db, EventRecordMapper{}, "event"),
	}
}
