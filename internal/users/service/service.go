package service

import (
	"context"
	"fmt"

	"ms-records/internal/kafka"
	"ms-records/internal/logger"
	"ms-records/internal/models"
	"ms-records/internal/validation"
)

type DBLayer interface {
	ListAll(ctx context.Context) ([]models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, username string) error
}

type KafkaPublisher interface {
	PublishCreated(ctx context.Context, entity, key string, record any) error
}

type UserService struct {
	DB     DBLayer
	Kafka  KafkaPublisher
	Logger *logger.Logger
}

func NewUserService(db DBLayer, kafka KafkaPublisher, log *logger.Logger) *UserService {
	return &UserService{DB: db, Kafka: kafka, Logger: log}
}

func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.DB.ListAll(ctx)
}

func (s *UserService) GetUser(ctx context.Context, username string) (*models.User, error) {
	return s.DB.GetByUsername(ctx, username)
}

func (s *UserService) CreateUser(ctx context.Context, input models.NewUser) error {
	if err := validation.Struct("users.create", input); err != nil {
		return err
	}

	if err := s.DB.Create(ctx, input.Username); err != nil {
		return err
	}

	if err := s.Kafka.PublishCreated(ctx, kafka.EntityUser, input.Username, input); err != nil {
		s.Logger.Warn("KAFKA", fmt.Sprintf("Publish error (user created): %v", err))
	}
	return nil
}
