package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"ms-records/internal/apperr"
	"ms-records/internal/kafka"
	"ms-records/internal/logger"
	"ms-records/internal/models"
	"ms-records/internal/validation"
)

type DBLayer interface {
	ListAll(ctx context.Context) ([]models.Event, error)
	GetByID(ctx context.Context, id int64) (*models.Event, error)
	Create(ctx context.Context, input models.NewEvent) (*models.Event, error)
	UpdateByID(ctx context.Context, id int64, patch models.EventPatch) (*models.Event, error)
	DeleteByID(ctx context.Context, id int64) error
}

type KafkaPublisher interface {
	PublishCreated(ctx context.Context, entity, key string, record any) error
	PublishUpdated(ctx context.Context, entity, key string, record any) error
	PublishDeleted(ctx context.Context, entity, key string) error
}

type EventService struct {
	DB     DBLayer
	Kafka  KafkaPublisher
	Logger *logger.Logger
}

func NewEventService(db DBLayer, kafka KafkaPublisher, log *logger.Logger) *EventService {
	return &EventService{DB: db, Kafka: kafka, Logger: log}
}

func (s *EventService) ListEvents(ctx context.Context) ([]models.Event, error) {
	return s.DB.ListAll(ctx)
}

func (s *EventService) GetEvent(ctx context.Context, id int64) (*models.Event, error) {
	return s.DB.GetByID(ctx, id)
}

func (s *EventService) CreateEvent(ctx context.Context, input models.NewEvent) (*models.Event, error) {
	if err := validation.Struct("events.create", input); err != nil {
		return nil, err
	}

	event, err := s.DB.Create(ctx, input)
	if err != nil {
		return nil, err
	}

	if err := s.Kafka.PublishCreated(ctx, kafka.EntityEvent, key(event.ID), event); err != nil {
		s.Logger.Warn("KAFKA", fmt.Sprintf("Publish error (event created): %v", err))
	}
	return event, nil
}

// UpdateEvent rejects patches that clear a required field or break a length
// limit, then hands the rest to the repository merge.
func (s *EventService) UpdateEvent(ctx context.Context, id int64, patch models.EventPatch) (*models.Event, error) {
	if err := validatePatch(patch); err != nil {
		return nil, err
	}

	event, err := s.DB.UpdateByID(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	if err := s.Kafka.PublishUpdated(ctx, kafka.EntityEvent, key(event.ID), event); err != nil {
		s.Logger.Warn("KAFKA", fmt.Sprintf("Publish error (event updated): %v", err))
	}
	return event, nil
}

func (s *EventService) DeleteEvent(ctx context.Context, id int64) error {
	if err := s.DB.DeleteByID(ctx, id); err != nil {
		return err
	}

	if err := s.Kafka.PublishDeleted(ctx, kafka.EntityEvent, key(id)); err != nil {
		s.Logger.Warn("KAFKA", fmt.Sprintf("Publish error (event deleted): %v", err))
	}
	return nil
}

func validatePatch(patch models.EventPatch) error {
	const op = "events.update"

	if nulls := patch.NullRequired(); len(nulls) > 0 {
		return apperr.Validation(op, strings.Join(nulls, ", ")+" cannot be null")
	}
	if patch.Title.Present {
		if err := validation.Var(op, "title", patch.Title.Value, "required,max=100"); err != nil {
			return err
		}
	}
	if patch.Description.Present && !patch.Description.Null {
		if err := validation.Var(op, "description", patch.Description.Value, "max=1000"); err != nil {
			return err
		}
	}
	if patch.Color.Present && !patch.Color.Null {
		if err := validation.Var(op, "color", patch.Color.Value, "max=20"); err != nil {
			return err
		}
	}
	return nil
}

func key(id int64) string {
	return strconv.FormatInt(id, 10)
}
