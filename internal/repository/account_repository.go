// internal/repository/account_repository.go
package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
)

// ============================================
// PostgreSQL Account Repository
// ============================================

type pgAccountRepository struct {
	pool Pool
}

const accountColumns = `id, username, password_hash, full_name, email, email_verified,
		verification_token, verification_token_expires, reset_token, reset_token_expires,
		role, created_at, updated_at`

func scanAccount(row pgx.Row) (*Account, error) {
	var a Account
	err := row.Scan(
		&a.ID, &a.Username, &a.PasswordHash, &a.FullName, &a.Email, &a.EmailVerified,
		&a.VerificationToken, &a.VerificationTokenExpires, &a.ResetToken, &a.ResetTokenExpires,
		&a.Role, &a.CreatedAt, &a.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *pgAccountRepository) Create(ctx context.Context, account *Account) error {
	query := `
		INSERT INTO accounts (username, password_hash, full_name, email, role,
			verification_token, verification_token_expires)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, email_verified, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		account.Username, account.PasswordHash, account.FullName, account.Email,
		account.Role, account.VerificationToken, account.VerificationTokenExpires,
	).Scan(&account.ID, &account.EmailVerified, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		return mapPgError(err)
	}
	return nil
}

func (r *pgAccountRepository) FindByID(ctx context.Context, id string) (*Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return scanAccount(r.pool.QueryRow(ctx, query, id))
}

func (r *pgAccountRepository) FindByUsername(ctx context.Context, username string) (*Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE LOWER(username) = LOWER($1)`
	return scanAccount(r.pool.QueryRow(ctx, query, username))
}

func (r *pgAccountRepository) FindByEmail(ctx context.Context, email string) (*Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE LOWER(email) = LOWER($1)`
	return scanAccount(r.pool.QueryRow(ctx, query, email))
}

func (r *pgAccountRepository) FindByVerificationToken(ctx context.Context, token string) (*Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE verification_token = $1`
	return scanAccount(r.pool.QueryRow(ctx, query, token))
}

func (r *pgAccountRepository) FindByResetToken(ctx context.Context, token string) (*Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE reset_token = $1`
	return scanAccount(r.pool.QueryRow(ctx, query, token))
}

func (r *pgAccountRepository) SetVerificationToken(ctx context.Context, id, token string, expires time.Time) error {
	query := `
		UPDATE accounts
		SET verification_token = $2, verification_token_expires = $3, updated_at = NOW()
		WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id, token, expires)
	return err
}

func (r *pgAccountRepository) SetResetToken(ctx context.Context, id, token string, expires time.Time) error {
	query := `
		UPDATE accounts
		SET reset_token = $2, reset_token_expires = $3, updated_at = NOW()
		WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id, token, expires)
	return err
}

// The token match in the WHERE clause makes each of these single-winner:
// the first caller consumes the token, the second sees zero rows.

func (r *pgAccountRepository) MarkEmailVerified(ctx context.Context, id, token string) (bool, error) {
	query := `
		UPDATE accounts
		SET email_verified = TRUE, verification_token = NULL,
			verification_token_expires = NULL, updated_at = NOW()
		WHERE id = $1 AND verification_token = $2`
	tag, err := r.pool.Exec(ctx, query, id, token)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *pgAccountRepository) UpdatePasswordByResetToken(ctx context.Context, id, passwordHash, token string) (bool, error) {
	query := `
		UPDATE accounts
		SET password_hash = $2, reset_token = NULL, reset_token_expires = NULL,
			updated_at = NOW()
		WHERE id = $1 AND reset_token = $3`
	tag, err := r.pool.Exec(ctx, query, id, passwordHash, token)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *pgAccountRepository) ClearVerificationToken(ctx context.Context, id, token string) (bool, error) {
	query := `
		UPDATE accounts
		SET verification_token = NULL, verification_token_expires = NULL, updated_at = NOW()
		WHERE id = $1 AND verification_token = $2`
	tag, err := r.pool.Exec(ctx, query, id, token)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *pgAccountRepository) ClearResetToken(ctx context.Context, id, token string) (bool, error) {
	query := `
		UPDATE accounts
		SET reset_token = NULL, reset_token_expires = NULL, updated_at = NOW()
		WHERE id = $1 AND reset_token = $2`
	tag, err := r.pool.Exec(ctx, query, id, token)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ============================================
// Refresh Tokens
// ============================================

func (r *pgAccountRepository) SaveRefreshToken(ctx context.Context, token *RefreshToken) error {
	query := `
		INSERT INTO refresh_tokens (token, account_id, expires_at)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query, token.Token, token.AccountID, token.ExpiresAt).
		Scan(&token.ID, &token.CreatedAt)
}

func (r *pgAccountRepository) FindRefreshToken(ctx context.Context, token string) (*RefreshToken, error) {
	query := `
		SELECT id, token, account_id, expires_at, created_at
		FROM refresh_tokens WHERE token = $1`
	var t RefreshToken
	err := r.pool.QueryRow(ctx, query, token).
		Scan(&t.ID, &t.Token, &t.AccountID, &t.ExpiresAt, &t.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *pgAccountRepository) DeleteRefreshToken(ctx context.Context, token string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM refresh_tokens WHERE token = $1`, token)
	return err
}

func (r *pgAccountRepository) DeleteAccountRefreshTokens(ctx context.Context, accountID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM refresh_tokens WHERE account_id = $1`, accountID)
	return err
}

func (r *pgAccountRepository) DeleteExpiredRefreshTokens(ctx context.Context) (int, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM refresh_tokens WHERE expires_at < NOW()`)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
