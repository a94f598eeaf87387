package events

import (
	"context"
	"fmt"
	"strings"

	"github.com/fauves/fauves-server/internal/platform/httpx"
	"github.com/fauves/fauves-server/internal/rbac"
)

// Service manages event-scoped permission grants.
type Service struct {
	repo Repository
}

// NewService builds Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Find returns the event by id.
func (s *Service) Find(ctx context.Context, eventID int64) (Event, error) {
	return s.repo.FindEvent(ctx, eventID)
}

// GrantRole assigns a role to the user identified by email on the event.
// Granting the role the user already holds is rejected.
func (s *Service) GrantRole(ctx context.Context, eventID int64, email string, roleName string) error {
	role, err := rbac.ParseRole(roleName)
	if err != nil {
		return err
	}
	if exists, err := s.repo.EventExists(ctx, eventID); err != nil {
		return err
	} else if !exists {
		return fmt.Errorf("%w: evento não encontrado", httpx.ErrNotFound)
	}
	userID, err := s.repo.FindUserIDByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return err
	}
	return s.repo.UpsertGrant(ctx, eventID, userID, role)
}

// Team lists the event roster with roles.
func (s *Service) Team(ctx context.Context, eventID int64) ([]TeamMember, error) {
	if exists, err := s.repo.EventExists(ctx, eventID); err != nil {
		return nil, err
	} else if !exists {
		return nil, fmt.Errorf("%w: evento não encontrado", httpx.ErrNotFound)
	}
	return s.repo.ListTeam(ctx, eventID)
}

// GrantSource adapts the repository for the authorization guard.
var _ rbac.GrantSource = (*PGRepository)(nil)
