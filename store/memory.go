package store

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/avelar-dev/go-tours/models"
)

// MemoryStore is an in-memory UserStore with the same semantics as the Mongo
// implementation. It backs the tests and mongo-free local runs.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[string]*models.User // keyed by hex ID
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[string]*models.User)}
}

func (s *MemoryStore) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == user.Email {
			return ErrDuplicateEmail
		}
	}

	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	user.Active = true
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	cp := *user
	s.users[user.ID.Hex()] = &cp
	return nil
}

func (s *MemoryStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email == email && u.Active {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) FindByID(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.get(id)
}

func (s *MemoryStore) FindByResetToken(_ context.Context, tokenHash string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Active && u.PasswordResetToken == tokenHash && u.PasswordResetExpires.After(time.Now()) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) SetResetToken(_ context.Context, id, tokenHash string, expires time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok || !u.Active {
		return ErrNotFound
	}
	u.PasswordResetToken = tokenHash
	u.PasswordResetExpires = expires
	return nil
}

func (s *MemoryStore) ClearResetToken(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok || !u.Active {
		return ErrNotFound
	}
	u.PasswordResetToken = ""
	u.PasswordResetExpires = time.Time{}
	return nil
}

func (s *MemoryStore) UpdatePassword(_ context.Context, id, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok || !u.Active {
		return ErrNotFound
	}
	u.Password = passwordHash
	u.PasswordChangedAt = time.Now().Add(-time.Second)
	u.PasswordResetToken = ""
	u.PasswordResetExpires = time.Time{}
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *MemoryStore) UpdateProfile(_ context.Context, id, name, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok || !u.Active {
		return nil, ErrNotFound
	}
	if name != "" {
		u.Name = name
	}
	if email != "" {
		u.Email = email
	}
	u.UpdatedAt = time.Now().UTC()
	cp := *u
	return &cp, nil
}

func (s *MemoryStore) Deactivate(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok || !u.Active {
		return ErrNotFound
	}
	u.Active = false
	return nil
}

func (s *MemoryStore) List(_ context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var users []models.User
	for _, u := range s.users {
		if u.Active {
			users = append(users, *u)
		}
	}
	return users, nil
}

// get assumes the read lock is held.
func (s *MemoryStore) get(id string) (*models.User, error) {
	u, ok := s.users[id]
	if !ok || !u.Active {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}
