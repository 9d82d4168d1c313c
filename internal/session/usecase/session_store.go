package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"lms-portal/internal/guard"
	"lms-portal/internal/session/domain/model"
	"lms-portal/internal/session/domain/repository"
	apperrors "lms-portal/internal/shared/errors"
	"lms-portal/internal/shared/logger"
)

var (
	ErrEmptyToken = errors.New("session token cannot be empty")
	ErrNilStorage = errors.New("session storage cannot be nil")
	ErrEmptyScope = errors.New("session scope cannot be empty")
)

// ResetFunc is invoked after a session has been cleared. The portal uses it to
// forget the client identity and send the client back to the login entry point.
type ResetFunc func(ctx context.Context)

// Option configures a Store.
type Option func(*Store)

// WithResetHook registers fn to run after ClearSession.
func WithResetHook(fn ResetFunc) Option {
	return func(s *Store) {
		s.onReset = fn
	}
}

// WithLogger sets the logger used to report unreadable sessions.
func WithLogger(log logger.Logger) Option {
	return func(s *Store) {
		if log != nil {
			s.log = log
		}
	}
}

// Store is the session of one client: a token and the user it belongs to,
// persisted together in the client's storage scope.
type Store struct {
	storage repository.Storage
	scope   string
	log     logger.Logger
	onReset ResetFunc
}

// NewStore binds a session store to scope inside storage.
func NewStore(storage repository.Storage, scope string, opts ...Option) (*Store, error) {
	if storage == nil {
		return nil, ErrNilStorage
	}
	if scope == "" {
		return nil, ErrEmptyScope
	}
	s := &Store{
		storage: storage,
		scope:   scope,
		log:     logger.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Scope returns the storage scope this store is bound to.
func (s *Store) Scope() string {
	return s.scope
}

// SetSession persists token and user as one unit, replacing any prior session.
func (s *Store) SetSession(ctx context.Context, token string, user model.User) error {
	if token == "" {
		return apperrors.NewValidationError("session token is required").WithCause(ErrEmptyToken)
	}
	if err := user.Validate(); err != nil {
		return apperrors.NewValidationError("session user is invalid").WithCause(err)
	}

	payload, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode session user: %w", err)
	}

	err = s.storage.Put(ctx, s.scope, map[string]string{
		model.TokenEntry: token,
		model.UserEntry:  string(payload),
	})
	if err != nil {
		return apperrors.NewInfrastructureError("failed to persist session").
			WithCause(fmt.Errorf("%w: %v", apperrors.ErrStorageUnavailable, err)).
			WithComponent("session")
	}

	s.log.WithContext(ctx).WithFields(map[string]interface{}{
		"user_id": strconv.FormatUint(user.ID, 10),
		"role":    user.Role.String(),
	}).Debug("session stored")
	return nil
}

// GetUser returns the persisted user. A missing, unreadable or corrupt record is
// reported as no user; this method never fails.
func (s *Store) GetUser(ctx context.Context) (model.User, bool) {
	raw, found, err := s.storage.Get(ctx, s.scope, model.UserEntry)
	if err != nil {
		s.log.WithContext(ctx).WithError(err).Warn("session user unreadable, treating as signed out")
		return model.User{}, false
	}
	if !found || raw == "" {
		return model.User{}, false
	}

	var user model.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		s.log.WithContext(ctx).WithError(fmt.Errorf("%w: %v", apperrors.ErrCorruptSession, err)).
			Warn("session user corrupt, treating as signed out")
		return model.User{}, false
	}
	if err := user.Validate(); err != nil {
		s.log.WithContext(ctx).WithError(fmt.Errorf("%w: %v", apperrors.ErrCorruptSession, err)).
			Warn("session user incomplete, treating as signed out")
		return model.User{}, false
	}
	return user, true
}

// GetToken returns the persisted token, if any.
func (s *Store) GetToken(ctx context.Context) (string, bool) {
	token, found, err := s.storage.Get(ctx, s.scope, model.TokenEntry)
	if err != nil {
		s.log.WithContext(ctx).WithError(err).Warn("session token unreadable, treating as signed out")
		return "", false
	}
	if !found || token == "" {
		return "", false
	}
	return token, true
}

// ClearSession removes token and user, then triggers the client reset hook. The hook
// runs even when removal fails so the client still starts over from the login page.
func (s *Store) ClearSession(ctx context.Context) error {
	err := s.storage.Remove(ctx, s.scope, model.TokenEntry, model.UserEntry)

	if s.onReset != nil {
		s.onReset(ctx)
	}

	if err != nil {
		return apperrors.NewInfrastructureError("failed to clear session").
			WithCause(fmt.Errorf("%w: %v", apperrors.ErrStorageUnavailable, err)).
			WithComponent("session")
	}
	s.log.WithContext(ctx).Debug("session cleared")
	return nil
}

// IsAuthenticated is true iff a token is present.
func (s *Store) IsAuthenticated(ctx context.Context) bool {
	_, ok := s.GetToken(ctx)
	return ok
}

// IsAdmin is true iff a user is present and holds the admin role.
func (s *Store) IsAdmin(ctx context.Context) bool {
	user, ok := s.GetUser(ctx)
	return ok && user.IsAdmin()
}

// State snapshots the session for the guard.
func (s *Store) State(ctx context.Context) guard.State {
	state := guard.State{Authenticated: s.IsAuthenticated(ctx)}
	if user, ok := s.GetUser(ctx); ok {
		state.User = &user
	}
	return state
}
