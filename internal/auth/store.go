package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	pkgerrors "github.com/trendbasket/storefront/pkg/errors"
	"github.com/trendbasket/storefront/pkg/logger"
	"github.com/trendbasket/storefront/pkg/storage"
	"github.com/trendbasket/storefront/pkg/validators"
)

// State is the auth store snapshot. IsAuthenticated implies User and Token
// are set.
type State struct {
	IsAuthenticated bool
	User            *User
	Token           string
	Loading         bool
	Error           string
}

type authClient interface {
	Signup(ctx context.Context, input SignupInput) error
	Login(ctx context.Context, input LoginInput) (*LoginResponse, error)
	Logout(ctx context.Context, email string) error
}

// Store orchestrates the three remote auth operations and owns the auth
// state. Login persists the profile and token to local storage; startup
// rehydrates from those keys without contacting the backend.
type Store struct {
	mu      sync.Mutex
	state   State
	client  authClient
	storage storage.Store
	logg    *logger.Logger
}

// StoreParams bundles the dependencies required to build an auth store.
type StoreParams struct {
	Client  authClient
	Storage storage.Store
	Logger  *logger.Logger
}

func NewStore(params StoreParams) (*Store, error) {
	if params.Client == nil {
		return nil, fmt.Errorf("auth client is required")
	}
	if params.Storage == nil {
		return nil, fmt.Errorf("storage is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &Store{
		client:  params.Client,
		storage: params.Storage,
		logg:    params.Logger,
	}, nil
}

// State returns a snapshot of the current auth state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Signup registers a new account. A successful signup does NOT authenticate
// the user; the UI redirects to a separate sign-in step.
func (s *Store) Signup(ctx context.Context, input SignupInput) error {
	if err := validators.Struct(input); err != nil {
		return err
	}

	s.setLoading(true)
	err := s.client.Signup(ctx, input)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Loading = false
	if err != nil {
		s.state.Error = errorMessage(err)
		return err
	}
	s.state.Error = ""
	return nil
}

// Login authenticates against the remote service, then persists the token
// and profile so the session survives restarts.
func (s *Store) Login(ctx context.Context, input LoginInput) error {
	if err := validators.Struct(input); err != nil {
		return err
	}

	s.setLoading(true)
	resp, err := s.client.Login(ctx, input)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Loading = false
	if err != nil {
		s.state.Error = errorMessage(err)
		return err
	}

	user := resp.User
	s.state = State{
		IsAuthenticated: true,
		User:            &user,
		Token:           user.AccessToken,
	}
	s.persistLocked(ctx)
	return nil
}

// Logout clears local auth state and persisted keys unconditionally once
// the remote call settles. A failed backend call still signs the user out
// locally; only the error message is kept.
func (s *Store) Logout(ctx context.Context, email string) error {
	s.setLoading(true)
	err := s.client.Logout(ctx, email)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = State{}
	if err != nil {
		s.state.Error = errorMessage(err)
		s.logg.Warn(ctx, "remote logout failed, local session cleared anyway")
	}
	if removeErr := s.storage.Remove(storage.KeyToken); removeErr != nil {
		s.logg.Error(ctx, "clearing persisted token", removeErr)
	}
	if removeErr := s.storage.Remove(storage.KeyUser); removeErr != nil {
		s.logg.Error(ctx, "clearing persisted user", removeErr)
	}
	return err
}

// ClearError drops the error field and nothing else.
func (s *Store) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Error = ""
}

// InitializeFromStorage restores an authenticated session from the
// persisted token and profile. No backend round-trip and no expiry check:
// whatever was persisted is trusted until the backend rejects it.
func (s *Store) InitializeFromStorage(ctx context.Context) {
	rawToken, okToken, err := s.storage.Get(storage.KeyToken)
	if err != nil {
		s.logg.Error(ctx, "reading persisted token", err)
		return
	}
	rawUser, okUser, err := s.storage.Get(storage.KeyUser)
	if err != nil {
		s.logg.Error(ctx, "reading persisted user", err)
		return
	}
	if !okToken || !okUser {
		return
	}

	var token string
	if err := json.Unmarshal([]byte(rawToken), &token); err != nil || token == "" {
		s.logg.Warn(ctx, "persisted token is malformed, staying anonymous")
		return
	}
	var user User
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
		s.logg.Warn(ctx, "persisted user is malformed, staying anonymous")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = State{
		IsAuthenticated: true,
		User:            &user,
		Token:           token,
	}
}

func (s *Store) setLoading(loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Loading = loading
	s.state.Error = ""
}

func (s *Store) persistLocked(ctx context.Context) {
	token, err := json.Marshal(s.state.Token)
	if err == nil {
		err = s.storage.Set(storage.KeyToken, string(token))
	}
	if err != nil {
		s.logg.Error(ctx, "persisting token", err)
	}

	user, err := json.Marshal(s.state.User)
	if err == nil {
		err = s.storage.Set(storage.KeyUser, string(user))
	}
	if err != nil {
		s.logg.Error(ctx, "persisting user", err)
	}
}

func errorMessage(err error) string {
	if typed := pkgerrors.As(err); typed != nil {
		return typed.Message()
	}
	return err.Error()
}
