// Package auth resolves and caches the authenticated user's identity.
// The identity is fetched once per process and reused for ownership
// checks; a failed fetch is not cached so a transient error can recover.
package auth

import (
	"context"
	"sync"

	"github.com/rostra-dev/rostra/internal/api"
	"github.com/rostra-dev/rostra/internal/debate"
	"github.com/rostra-dev/rostra/internal/errors"
	"github.com/rostra-dev/rostra/internal/logging"
)

// UserSource fetches the authenticated account.
type UserSource interface {
	CurrentUser(ctx context.Context) (*api.User, error)
}

// Service caches the current user's identity.
type Service struct {
	source UserSource
	log    *logging.Logger

	mu   sync.Mutex
	user *api.User
}

// NewService creates an identity service backed by source.
func NewService(source UserSource, log *logging.Logger) *Service {
	if log == nil {
		log = logging.NopLogger()
	}
	return &Service{source: source, log: log.WithComponent("auth")}
}

// CurrentUser returns the authenticated user, fetching it on first use.
func (s *Service) CurrentUser(ctx context.Context) (*api.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user != nil {
		return s.user, nil
	}

	user, err := s.source.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	s.user = user
	s.log.Debug("identity resolved", "user_id", user.ID, "admin", user.IsAdmin)
	return user, nil
}

// UserID returns the cached user's ID, or empty if not yet resolved.
func (s *Service) UserID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return ""
	}
	return s.user.ID
}

// IsAdmin reports whether the cached user is an administrator.
func (s *Service) IsAdmin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user != nil && s.user.IsAdmin
}

// Invalidate drops the cached identity, forcing a refetch on next use.
func (s *Service) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
}

// CheckOwnership verifies that user may operate on session. Admins may
// operate on any debate; a session without an owner is open to everyone.
func CheckOwnership(user *api.User, session *debate.Session) error {
	if user == nil {
		return errors.Wrap(errors.ErrUnauthenticated, "ownership check")
	}
	if user.IsAdmin || session.UserID == "" || session.UserID == user.ID {
		return nil
	}
	return errors.NewDebateError("ownership check", errors.ErrNotOwner).
		WithDebateID(session.ID)
}
