package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ms-records/internal/apperr"
	"ms-records/internal/kafka"
	"ms-records/internal/logger"
	"ms-records/internal/models"
	"ms-records/internal/users/service"
)

type MockDBLayer struct {
	mock.Mock
}

func (m *MockDBLayer) ListAll(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockDBLayer) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockDBLayer) Create(ctx context.Context, username string) error {
	args := m.Called(ctx, username)
	return args.Error(0)
}

type MockKafkaPublisher struct {
	mock.Mock
}

func (m *MockKafkaPublisher) PublishCreated(ctx context.Context, entity, key string, record any) error {
	args := m.Called(ctx, entity, key, record)
	return args.Error(0)
}

func TestCreateUser(t *testing.T) {
	db := new(MockDBLayer)
	pub := new(MockKafkaPublisher)
	svc := service.NewUserService(db, pub, logger.Nop())
	ctx := context.Background()
	input := models.NewUser{Username: "alice"}

	db.On("Create", ctx, "alice").Return(nil)
	pub.On("PublishCreated", ctx, kafka.EntityUser, "alice", input).Return(nil)

	require.NoError(t, svc.CreateUser(ctx, input))
	db.AssertExpectations(t)
	pub.AssertExpectations(t)
}

func TestCreateUserTwice(t *testing.T) {
	db := new(MockDBLayer)
	pub := new(MockKafkaPublisher)
	svc := service.NewUserService(db, pub, logger.Nop())
	ctx := context.Background()

	db.On("Create", ctx, "alice").Return(nil).Once()
	db.On("Create", ctx, "alice").Return(apperr.UserExists("users.create", "alice")).Once()
	pub.On("PublishCreated", ctx, kafka.EntityUser, "alice", mock.Anything).Return(nil).Once()

	require.NoError(t, svc.CreateUser(ctx, models.NewUser{Username: "alice"}))
	err := svc.CreateUser(ctx, models.NewUser{Username: "alice"})

	assert.ErrorIs(t, err, apperr.ErrUserExists)
	db.AssertExpectations(t)
	pub.AssertNumberOfCalls(t, "PublishCreated", 1)
}

func TestCreateUserValidation(t *testing.T) {
	db := new(MockDBLayer)
	svc := service.NewUserService(db, new(MockKafkaPublisher), logger.Nop())

	err := svc.CreateUser(context.Background(), models.NewUser{Username: ""})

	assert.ErrorIs(t, err, apperr.ErrValidation)
	db.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestGetUserNotFound(t *testing.T) {
	db := new(MockDBLayer)
	svc := service.NewUserService(db, new(MockKafkaPublisher), logger.Nop())
	ctx := context.Background()

	db.On("GetByUsername", ctx, "nobody").Return(nil, apperr.NotFound("users.get", "user \"nobody\" not found"))

	_, err := svc.GetUser(ctx, "nobody")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
