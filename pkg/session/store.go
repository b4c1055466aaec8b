package session

import (
	"context"
	"sync"

	"github.com/facuhernandez99/shario-admin/pkg/models"
)

// Listener receives a session snapshot after every mutation
type Listener func(models.Session)

// Store is the single source of truth for the admin session. Tokens are
// persisted through Storage; the current user lives in memory only.
type Store struct {
	mu           sync.Mutex
	storage      Storage
	accessToken  string
	refreshToken string
	user         *models.CurrentUser

	listeners map[int]Listener
	nextID    int
}

// NewStore creates a session store backed by storage
func NewStore(storage Storage) *Store {
	return &Store{
		storage:   storage,
		listeners: make(map[int]Listener),
	}
}

// Storage exposes the backing storage, shared with the HTTP client
func (s *Store) Storage() Storage {
	return s.storage
}

// Hydrate loads persisted tokens into memory
func (s *Store) Hydrate(ctx context.Context) error {
	access, _, err := s.storage.Get(ctx, AccessTokenKey)
	if err != nil {
		return err
	}
	refresh, _, err := s.storage.Get(ctx, RefreshTokenKey)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.accessToken = access
	s.refreshToken = refresh
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snapshot)
	return nil
}

// SetToken persists a non-empty token, or clears it when token is empty.
// The token is stored as given.
func (s *Store) SetToken(ctx context.Context, token string) error {
	return s.setKey(ctx, AccessTokenKey, token, func(v string) { s.accessToken = v })
}

// SetRefreshToken has the same contract as SetToken for the refresh token
func (s *Store) SetRefreshToken(ctx context.Context, token string) error {
	return s.setKey(ctx, RefreshTokenKey, token, func(v string) { s.refreshToken = v })
}

func (s *Store) setKey(ctx context.Context, key, value string, assign func(string)) error {
	s.mu.Lock()

	var err error
	if value != "" {
		err = s.storage.Set(ctx, key, value)
	} else {
		err = s.storage.Remove(ctx, key)
	}
	if err != nil {
		s.mu.Unlock()
		return err
	}

	assign(value)
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snapshot)
	return nil
}

// SetUser replaces the in-memory user. It is not persisted.
func (s *Store) SetUser(user *models.CurrentUser) {
	s.mu.Lock()
	if user != nil {
		u := *user
		user = &u
	}
	s.user = user
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snapshot)
}

// Token returns the in-memory access token
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken
}

// User returns a copy of the in-memory user, or nil
func (s *Store) User() *models.CurrentUser {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Snapshot returns the current session state
func (s *Store) Snapshot() models.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Logout removes both tokens and the dashboard session id from storage and
// clears memory. No network call is made.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	if err := s.storage.Remove(ctx, AccessTokenKey, RefreshTokenKey, DashboardSessionKey); err != nil {
		s.mu.Unlock()
		return err
	}
	s.accessToken = ""
	s.refreshToken = ""
	s.user = nil
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snapshot)
	return nil
}

// IsAuthenticated reports whether storage holds a non-empty access token right
// now. It reads storage, not memory, so it holds across restarts and after the
// HTTP client clears keys on a 401.
func (s *Store) IsAuthenticated(ctx context.Context) bool {
	token, ok, err := s.storage.Get(ctx, AccessTokenKey)
	return err == nil && ok && token != ""
}

// Subscribe registers fn for session changes and returns a func that removes it
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

func (s *Store) snapshotLocked() models.Session {
	snapshot := models.Session{
		AccessToken:  s.accessToken,
		RefreshToken: s.refreshToken,
	}
	if s.user != nil {
		u := *s.user
		snapshot.CurrentUser = &u
	}
	return snapshot
}

// notify runs outside the lock so listeners may read the store
func (s *Store) notify(snapshot models.Session) {
	s.mu.Lock()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(snapshot)
	}
}
