// Package account implements the user store the catalog core collaborates
// with: lookups, the bounded per-user activity ledger, and the active-user
// count surfaced on the dashboard.
package account

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/fairyhunter13/realtime-catalog/internal/model"
)

// ErrConflict is returned when registering an email that already exists.
var ErrConflict = errors.New("user with this email already exists")

// ErrNotFound is returned for lookups of unknown user ids.
var ErrNotFound = errors.New("user not found")

// maxActivities caps the per-user ledger; older entries fall off the end.
const maxActivities = 10

type Store struct {
	mu      sync.RWMutex
	byID    map[string]model.User
	byEmail map[string]string
}

func New() *Store {
	return &Store{byID: make(map[string]model.User), byEmail: make(map[string]string)}
}

// Create registers a user with a bcrypt-hashed password.
func (s *Store) Create(email, username, password string) (model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return model.User{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byEmail[email]; exists {
		return model.User{}, ErrConflict
	}
	u := model.User{
		ID:           uuid.NewString(),
		Email:        email,
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	s.byID[u.ID] = u
	s.byEmail[email] = u.ID
	return u, nil
}

func (s *Store) FindByID(id string) (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byID[id]
	if !ok {
		return model.User{}, ErrNotFound
	}
	return u, nil
}

func (s *Store) FindByEmail(email string) (model.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[email]
	if !ok {
		return model.User{}, false
	}
	return s.byID[id], true
}

// CheckPassword compares password against the stored bcrypt hash.
func (s *Store) CheckPassword(u model.User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

func (s *Store) UpdateLastLogin(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return
	}
	u.LastLogin = time.Now().UTC()
	s.byID[id] = u
}

// AppendActivity prepends text to the user's ledger, keeping the newest
// maxActivities entries.
func (s *Store) AppendActivity(id, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return ErrNotFound
	}
	u.Activities = append([]string{text}, u.Activities...)
	if len(u.Activities) > maxActivities {
		u.Activities = u.Activities[:maxActivities]
	}
	s.byID[id] = u
	return nil
}

// Activities returns the user's ledger, newest first.
func (s *Store) Activities(id string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]string, len(u.Activities))
	copy(out, u.Activities)
	return out, nil
}

// CountActiveSince counts users whose last login is at or after t.
func (s *Store) CountActiveSince(t time.Time) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, u := range s.byID {
		if !u.LastLogin.IsZero() && !u.LastLogin.Before(t) {
			n++
		}
	}
	return n
}
