package service

import (
	"context"
	"errors"

	"github.com/aura-clinic/aura/internal/auth/domain"
	"github.com/aura-clinic/aura/internal/auth/store"
)

// RolesService reads the closed role catalogue and manages assignments.
// Roles are seeded by migration; nothing creates them at runtime.
type RolesService struct {
	Store store.Store
}

func (s *RolesService) ListAll(ctx context.Context) ([]domain.Role, error) {
	return s.Store.Roles().ListAll(ctx)
}

func (s *RolesService) ListForUser(ctx context.Context, userID string) ([]domain.Role, error) {
	return s.Store.Roles().ListRolesByUserID(ctx, userID)
}

// Assign appends a role to a user's ordered set. Position is the next free
// slot; assigning an already-held role is a no-op.
func (s *RolesService) Assign(ctx context.Context, userID, roleName string) error {
	if _, err := s.Store.Users().GetUserByID(ctx, userID); err != nil {
		return err
	}

	role, err := s.Store.Roles().GetRoleByName(ctx, roleName)
	if err != nil {
		return err
	}

	existing, err := s.Store.Roles().ListRolesByUserID(ctx, userID)
	if err != nil {
		return err
	}
	for _, r := range existing {
		if r.ID == role.ID {
			return nil
		}
	}

	err = s.Store.Roles().AssignRoleToUser(ctx, userID, role.ID, len(existing))
	if errors.Is(err, store.ErrAlreadyExists) {
		return nil
	}
	return err
}
