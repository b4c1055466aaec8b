package testing

import (
	"context"
	"strconv"

	"github.com/facuhernandez99/shario-admin/pkg/errors"
	"github.com/facuhernandez99/shario-admin/pkg/models"
	"github.com/stretchr/testify/mock"
)

// MockStorage is a mock implementation of session.Storage
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Get(ctx context.Context, key string) (string, bool, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockStorage) Set(ctx context.Context, key, value string) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockStorage) Remove(ctx context.Context, keys ...string) error {
	args := m.Called(ctx, keys)
	return args.Error(0)
}

func (m *MockStorage) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockNavigator is a mock implementation of http.Navigator
type MockNavigator struct {
	mock.Mock
}

func (m *MockNavigator) Navigate(ctx context.Context, path string) {
	m.Called(ctx, path)
}

// Test Data Builders

// UserBuilder helps build test users with fluent interface
type UserBuilder struct {
	user models.User
}

// NewUserBuilder creates a new user builder
func NewUserBuilder() *UserBuilder {
	return &UserBuilder{
		user: models.User{
			UserID:     "1",
			Username:   "testuser",
			Email:      "testuser@shario.io",
			TrustScore: 50,
		},
	}
}

func (b *UserBuilder) WithID(id string) *UserBuilder {
	b.user.UserID = models.ID(id)
	return b
}

func (b *UserBuilder) WithUsername(username string) *UserBuilder {
	b.user.Username = username
	b.user.Email = username + "@shario.io"
	return b
}

func (b *UserBuilder) WithFirstName(name string) *UserBuilder {
	b.user.FirstName = name
	return b
}

func (b *UserBuilder) WithTrustScore(score int) *UserBuilder {
	b.user.TrustScore = score
	return b
}

func (b *UserBuilder) Build() models.User {
	return b.user
}

// Users builds n users with ids "1".."n" and usernames user1..userN
func Users(n int) []models.User {
	users := make([]models.User, n)
	for i := range users {
		id := strconv.Itoa(i + 1)
		users[i] = NewUserBuilder().WithID(id).WithUsername("user" + id).Build()
	}
	return users
}

// Error Builders for testing error scenarios

// ErrorBuilder helps create consistent backend errors for testing
type ErrorBuilder struct {
	shouldFail bool
	err        error
}

// NewErrorBuilder creates a new error builder
func NewErrorBuilder() *ErrorBuilder {
	return &ErrorBuilder{}
}

func (b *ErrorBuilder) WithError(err error) *ErrorBuilder {
	b.shouldFail = true
	b.err = err
	return b
}

func (b *ErrorBuilder) WithStorageError() *ErrorBuilder {
	return b.WithError(errors.New(errors.ErrCodeStorage, "storage unavailable"))
}

func (b *ErrorBuilder) WithUnauthorizedError() *ErrorBuilder {
	return b.WithError(errors.FromStatus(401, "Token expired"))
}

func (b *ErrorBuilder) WithNotFoundError() *ErrorBuilder {
	return b.WithError(errors.FromStatus(404, "resource not found"))
}

func (b *ErrorBuilder) ShouldFail() bool {
	return b.shouldFail
}

func (b *ErrorBuilder) Error() error {
	return b.err
}

// Mock Factories

// CreateMockStorage creates a mock storage that holds no keys and accepts writes
func CreateMockStorage() *MockStorage {
	mockStorage := &MockStorage{}

	mockStorage.On("Get", mock.Anything, mock.Anything).Return("", false, nil).Maybe()
	mockStorage.On("Set", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	mockStorage.On("Remove", mock.Anything, mock.Anything).Return(nil).Maybe()
	mockStorage.On("Close").Return(nil).Maybe()

	return mockStorage
}

// CreateMockNavigator creates a navigator mock that accepts any navigation
func CreateMockNavigator() *MockNavigator {
	nav := &MockNavigator{}
	nav.On("Navigate", mock.Anything, mock.Anything).Return().Maybe()
	return nav
}
