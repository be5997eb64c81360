// Package session holds the authenticated shopper's identity and access
// token, persisted on the storage surface so a restart keeps the login.
package session

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/KyoTung/camera-store-client/internal/api"
	"github.com/KyoTung/camera-store-client/internal/storage"
)

// persisted is the JSON layout under the "session" storage key.
type persisted struct {
	AccessToken string    `json:"access_token"`
	User        *api.User `json:"user,omitempty"`
}

// Store owns the current session. It doubles as the api.TokenSource feeding
// the bearer token into outgoing requests.
type Store struct {
	mu      sync.RWMutex
	token   string
	user    *api.User
	storage storage.Store
	logger  *slog.Logger
}

// New creates a session store hydrated from storage. A missing or
// unparsable entry yields a logged-out session.
func New(ctx context.Context, st storage.Store, logger *slog.Logger) *Store {
	s := &Store{storage: st, logger: logger}

	raw, err := st.Get(ctx, storage.KeySession)
	if err != nil {
		return s
	}

	var p persisted
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		logger.WarnContext(ctx, "discarding unparsable persisted session",
			slog.String("error", err.Error()),
		)
		return s
	}
	s.token = p.AccessToken
	s.user = p.User
	return s
}

// Token returns the current access token, empty when logged out.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns a copy of the current user profile, nil when logged out.
func (s *Store) User() *api.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// LoggedIn reports whether a token is present. Checkout navigation is gated
// on this.
func (s *Store) LoggedIn() bool {
	return s.Token() != ""
}

// Establish stores the session returned by login or register.
func (s *Store) Establish(ctx context.Context, auth *api.AuthResponse) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = auth.AccessToken
	user := auth.User
	s.user = &user
	return s.persist(ctx)
}

// UpdateUser replaces the cached profile after a profile edit.
func (s *Store) UpdateUser(ctx context.Context, user api.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.user = &user
	return s.persist(ctx)
}

// Clear logs out locally: state reset and the storage entry removed.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = ""
	s.user = nil
	return s.storage.Delete(ctx, storage.KeySession)
}

// persist writes the session under its key. Callers hold the mutex.
func (s *Store) persist(ctx context.Context) error {
	data, err := json.Marshal(persisted{AccessToken: s.token, User: s.user})
	if err != nil {
		return err
	}
	return s.storage.Set(ctx, storage.KeySession, string(data))
}
