package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"poker-tracker/internal/model"
)

// MockPlayerStore is a mock implementation of PlayerStore
type MockPlayerStore struct {
	mock.Mock
}

func (m *MockPlayerStore) List(ctx context.Context) ([]model.Player, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Player), args.Error(1)
}

func (m *MockPlayerStore) GetByID(ctx context.Context, id int64) (*model.Player, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Player), args.Error(1)
}

func (m *MockPlayerStore) Create(ctx context.Context, name string) (*model.Player, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Player), args.Error(1)
}

func (m *MockPlayerStore) UpdateName(ctx context.Context, id int64, name string) (*model.Player, error) {
	args := m.Called(ctx, id, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Player), args.Error(1)
}

func (m *MockPlayerStore) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPlayerStore) HasLedgerEntries(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// MockGameStore is a mock implementation of GameStore
type MockGameStore struct {
	mock.Mock
}

func (m *MockGameStore) List(ctx context.Context) ([]model.Game, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Game), args.Error(1)
}

func (m *MockGameStore) GetByID(ctx context.Context, id int64) (*model.Game, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Game), args.Error(1)
}

func (m *MockGameStore) Create(ctx context.Context, date time.Time, notes *string, entries []model.GamePlayer) (int64, error) {
	args := m.Called(ctx, date, notes, entries)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockGameStore) Replace(ctx context.Context, id int64, date time.Time, notes *string, entries []model.GamePlayer) error {
	args := m.Called(ctx, id, date, notes, entries)
	return args.Error(0)
}

func (m *MockGameStore) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockGameStore) EntriesForGame(ctx context.Context, gameID int64) ([]model.LedgerEntry, error) {
	args := m.Called(ctx, gameID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.LedgerEntry), args.Error(1)
}

func (m *MockGameStore) ListEntries(ctx context.Context, rng model.DateRange) ([]model.LedgerEntry, error) {
	args := m.Called(ctx, rng)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.LedgerEntry), args.Error(1)
}

func (m *MockGameStore) ListGamePlayers(ctx context.Context) ([]model.GamePlayer, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.GamePlayer), args.Error(1)
}

// MockCredentialStore is a mock implementation of CredentialStore
type MockCredentialStore struct {
	mock.Mock
}

func (m *MockCredentialStore) Create(ctx context.Context, username, passwordHash string) (*model.User, error) {
	args := m.Called(ctx, username, passwordHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockCredentialStore) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockCredentialStore) Any(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

// MockLoginThrottle is a mock implementation of LoginThrottle
type MockLoginThrottle struct {
	mock.Mock
}

func (m *MockLoginThrottle) Allow(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockLoginThrottle) Fail(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockLoginThrottle) Reset(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}
