package sqlite

import (
	"context"
	"time"

	"github.com/aura-clinic/aura/internal/auth/domain"
)

type passwordResetsRepo struct {
	db dbtx
}

func (r *passwordResetsRepo) CreatePasswordReset(ctx context.Context, pr domain.PasswordReset) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO password_resets (id, user_id, token_hash, expires_at, used, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		pr.ID, pr.UserID, pr.TokenHash, pr.ExpiresAt.UTC(), pr.Used, time.Now().UTC())
	return err
}

func (r *passwordResetsRepo) GetActivePasswordResetByHash(ctx context.Context, hash string) (domain.PasswordReset, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, token_hash, expires_at, used, created_at
		 FROM password_resets
		 WHERE token_hash = ? AND used = 0 AND expires_at > ?`,
		hash, time.Now().UTC())

	var pr domain.PasswordReset
	err := row.Scan(&pr.ID, &pr.UserID, &pr.TokenHash, &pr.ExpiresAt, &pr.Used, &pr.CreatedAt)
	if err != nil {
		return domain.PasswordReset{}, mapNotFound(err)
	}
	return pr, nil
}

func (r *passwordResetsRepo) MarkPasswordResetUsed(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE password_resets SET used = 1 WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRowChanged(res)
}

func (r *passwordResetsRepo) DeleteExpiredPasswordResets(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM password_resets WHERE expires_at < ? OR used = 1`, time.Now().UTC())
	return err
}
