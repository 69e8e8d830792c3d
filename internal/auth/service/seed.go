package service

import (
	"context"

	"github.com/aura-clinic/aura/internal/auth/domain"
	"github.com/aura-clinic/aura/internal/auth/store"
	"github.com/aura-clinic/aura/pkg/cryptox"
	"github.com/aura-clinic/aura/pkg/idx"
	"github.com/aura-clinic/aura/pkg/slogx"
)

// SeedService populates demo accounts on an empty database so a fresh
// install of the portal is immediately explorable. It never touches a
// database that already has users.
type SeedService struct {
	Store store.Store
}

type seedUser struct {
	email    string
	password string
	fullName string
	role     string
}

var demoUsers = []seedUser{
	{"patient@example.com", "123456", "Demo Patient", domain.RolePatient},
	{"doctor@example.com", "123456", "Dr. Demo", domain.RoleDoctor},
	{"admin@example.com", "123456", "Demo Admin", domain.RoleAdmin},
}

// SeedDemoUsers inserts the demo accounts if and only if the users table is
// empty.
func (s *SeedService) SeedDemoUsers(ctx context.Context) error {
	l := slogx.FromContext(ctx)

	empty, err := s.Store.Users().IsEmpty(ctx)
	if err != nil {
		return err
	}
	if !empty {
		return nil
	}

	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		for _, d := range demoUsers {
			hash, err := cryptox.HashPassword(d.password)
			if err != nil {
				return err
			}

			role, err := tx.Roles().GetRoleByName(ctx, d.role)
			if err != nil {
				return err
			}

			u := domain.UserAccount{
				ID:           idx.New().String(),
				Email:        d.email,
				PasswordHash: hash,
				FullName:     d.fullName,
				AvatarRef:    AvatarURL(d.fullName),
				Provider:     domain.ProviderLocal,
			}
			if err := tx.Users().CreateUser(ctx, u); err != nil {
				return err
			}
			if err := tx.Roles().AssignRoleToUser(ctx, u.ID, role.ID, 0); err != nil {
				return err
			}

			l.Info("seeded demo account", "email", d.email, "role", d.role)
		}
		return nil
	})
}
