package session

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/Astemirdum/library-frontend/internal/errs"
	"github.com/Astemirdum/library-frontend/internal/model"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

//go:generate go run github.com/golang/mock/mockgen -source=store.go -destination=mocks/mock.go

type AuthService interface {
	Login(ctx context.Context, c model.Credentials) (json.RawMessage, error)
	Signup(ctx context.Context, req model.SignupRequest) error
}

// Store owns the identity of one client session. Only Login, Restore and
// Logout write it.
type Store struct {
	auth    AuthService
	storage Storage
	log     *zap.Logger

	mu       sync.RWMutex
	identity *model.Identity
	restored bool
}

func NewStore(auth AuthService, storage Storage, log *zap.Logger) *Store {
	return &Store{
		auth:    auth,
		storage: storage,
		log:     log.Named("session"),
	}
}

const (
	loginFailed  = "Login failed"
	signupFailed = "Signup failed"
)

// Login authenticates against the API and persists the identity.
// The returned error text is ready to be shown as a banner.
func (s *Store) Login(ctx context.Context, email, password string) (model.Identity, error) {
	raw, err := s.auth.Login(ctx, model.Credentials{Email: email, Password: password})
	if err != nil {
		s.log.Info("login rejected", zap.String("email", email), zap.Error(err))
		return model.Identity{}, errors.New(errs.UserMessage(err, loginFailed))
	}
	identity, err := ParseIdentity(raw)
	if err != nil {
		s.log.Error("login response", zap.Error(err))
		return model.Identity{}, errors.New(loginFailed)
	}
	if identity.Email == "" {
		identity.Email = email
	}
	if !identity.Resolved() {
		s.log.Warn("login response without user id", zap.String("email", email))
	}

	data, err := json.Marshal(identity)
	if err != nil {
		return model.Identity{}, err
	}
	if err := s.storage.Save(ctx, Key, data); err != nil {
		s.log.Error("persist identity", zap.Error(err))
		return model.Identity{}, errors.New(loginFailed)
	}

	s.mu.Lock()
	s.identity = &identity
	s.restored = true
	s.mu.Unlock()
	return identity, nil
}

// Signup registers an account. It never authenticates the caller.
func (s *Store) Signup(ctx context.Context, email, password string, role model.Role) error {
	if role == "" {
		role = model.RoleUser
	}
	if err := s.auth.Signup(ctx, model.SignupRequest{Email: email, Password: password, Role: role}); err != nil {
		s.log.Info("signup rejected", zap.String("email", email), zap.Error(err))
		return errors.New(errs.UserMessage(err, signupFailed))
	}
	return nil
}

// Logout forgets the identity in memory and in storage. Memory is cleared
// even if storage fails.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.identity = nil
	s.restored = true
	s.mu.Unlock()

	if err := s.storage.Delete(ctx, Key); err != nil {
		return errors.Wrap(err, "delete identity")
	}
	return nil
}

// Restore hydrates the identity from storage. It runs once; later calls
// return the in-memory state. Unreadable state counts as logged out.
func (s *Store) Restore(ctx context.Context) (*model.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.restored {
		return s.copyIdentity(), nil
	}
	s.restored = true

	data, err := s.storage.Load(ctx, Key)
	if err != nil {
		if errors.Is(err, ErrNoValue) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "load identity")
	}
	var identity model.Identity
	if err := json.Unmarshal(data, &identity); err != nil || !identity.Role.Valid() {
		s.log.Warn("discarding stored identity", zap.Error(err))
		_ = s.storage.Delete(ctx, Key) //nolint:errcheck
		return nil, nil
	}
	s.identity = &identity
	return s.copyIdentity(), nil
}

func (s *Store) copyIdentity() *model.Identity {
	if s.identity == nil {
		return nil
	}
	cp := *s.identity
	return &cp
}

// Identity returns a copy of the current identity or nil.
func (s *Store) Identity() *model.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copyIdentity()
}

func (s *Store) IsAuthenticated() bool {
	return s.Identity() != nil
}

func (s *Store) IsLibrarian() bool {
	return s.Identity().IsLibrarian()
}
