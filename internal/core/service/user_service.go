package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/harvestchurch/content-platform/internal/core/authority"
	"github.com/harvestchurch/content-platform/internal/core/domain"
	"github.com/harvestchurch/content-platform/internal/core/ports"
)

// UserAdminService changes roles and activation. Sessions of an affected
// user are not revoked; the change is observed on their next request.
type UserAdminService struct {
	repo ports.UserRepository
	log  zerolog.Logger
}

func NewUserAdminService(repo ports.UserRepository, log zerolog.Logger) *UserAdminService {
	return &UserAdminService{repo: repo, log: log}
}

func (s *UserAdminService) ChangeRole(ctx context.Context, caller *domain.Actor, userID string, role domain.Role) (*domain.Actor, error) {
	if !authority.CanPerform(caller, authority.ActionManageUsers, "") {
		return nil, domain.ErrForbidden
	}
	if !role.Valid() {
		return nil, fmt.Errorf("unknown role %q: %w", role, domain.ErrValidation)
	}

	user, err := s.repo.UpdateRole(ctx, userID, role)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("user_id", userID).
		Str("role", string(role)).
		Str("changed_by", caller.ID).
		Msg("role changed")
	return user.Actor(), nil
}

func (s *UserAdminService) SetActive(ctx context.Context, caller *domain.Actor, userID string, active bool) (*domain.Actor, error) {
	if !authority.CanPerform(caller, authority.ActionManageUsers, "") {
		return nil, domain.ErrForbidden
	}
	if caller.ID == userID && !active {
		return nil, fmt.Errorf("admins cannot deactivate themselves: %w", domain.ErrValidation)
	}

	user, err := s.repo.SetActive(ctx, userID, active)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("user_id", userID).
		Bool("active", active).
		Str("changed_by", caller.ID).
		Msg("activation changed")
	return user.Actor(), nil
}
