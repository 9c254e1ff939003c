package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/i474232898/canilaba/internal/users"
	"github.com/i474232898/canilaba/internal/weather"
)

// MemoryStore is a concurrency-safe in-memory implementation of users.Store.
type MemoryStore struct {
	mu sync.RWMutex

	// key: user id
	data map[int64]*users.User

	now func() time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[int64]*users.User),
		now:  time.Now,
	}
}

var _ users.Store = (*MemoryStore)(nil)

func (s *MemoryStore) CreateUser(_ context.Context, id, chatID int64) (users.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.ensure(id)
	if chatID != 0 {
		u.ChatID = chatID
	}
	return copyUser(u), nil
}

func (s *MemoryStore) GetUser(_ context.Context, id int64) (users.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.data[id]
	if !ok {
		return users.User{}, users.ErrUserNotFound
	}
	return copyUser(u), nil
}

func (s *MemoryStore) DeleteUser(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, id)
	return nil
}

// ListUsers returns all users ordered by id.
func (s *MemoryStore) ListUsers(_ context.Context) ([]users.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]users.User, 0, len(s.data))
	for _, u := range s.data {
		out = append(out, copyUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) GetLaundryDays(_ context.Context, id int64) (users.WeekdaySet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.data[id]
	if !ok {
		return 0, users.ErrUserNotFound
	}
	return u.LaundryDays, nil
}

func (s *MemoryStore) SetLaundryDays(_ context.Context, id int64, days users.WeekdaySet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.ensure(id)
	u.LaundryDays = days
	u.UpdatedAt = s.now().UTC()
	return nil
}

func (s *MemoryStore) GetCoordinates(_ context.Context, id int64) (*weather.Coordinates, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.data[id]
	if !ok {
		return nil, users.ErrUserNotFound
	}
	if u.Coordinates == nil {
		return nil, nil
	}
	c := *u.Coordinates
	return &c, nil
}

func (s *MemoryStore) SetCoordinates(_ context.Context, id int64, coords weather.Coordinates) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.ensure(id)
	u.Coordinates = &coords
	u.UpdatedAt = s.now().UTC()
	return nil
}

// ensure returns the user record, creating it if needed. Caller holds mu.
func (s *MemoryStore) ensure(id int64) *users.User {
	u, ok := s.data[id]
	if !ok {
		now := s.now().UTC()
		u = &users.User{ID: id, ChatID: id, CreatedAt: now, UpdatedAt: now}
		s.data[id] = u
	}
	return u
}

func copyUser(u *users.User) users.User {
	out := *u
	if u.Coordinates != nil {
		c := *u.Coordinates
		out.Coordinates = &c
	}
	return out
}
