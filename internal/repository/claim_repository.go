// internal/repository/claim_repository.go
package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// ============================================
// PostgreSQL Member Claim Repository
// ============================================

type pgClaimRepository struct {
	pool Pool
}

const claimColumns = `id, team_id, roster_entry_id, account_id, status,
		requested_at, reviewed_at, reviewer_id, rejection_reason`

func scanClaim(row pgx.Row) (*MemberClaim, error) {
	var c MemberClaim
	err := row.Scan(
		&c.ID, &c.TeamID, &c.RosterEntryID, &c.AccountID, &c.Status,
		&c.RequestedAt, &c.ReviewedAt, &c.ReviewerID, &c.RejectionReason,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *pgClaimRepository) Create(ctx context.Context, claim *MemberClaim) error {
	// The partial unique index on pending claims rejects a second open
	// claim for the same entry/account pair.
	query := `
		INSERT INTO member_claims (team_id, roster_entry_id, account_id, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, requested_at`
	err := r.pool.QueryRow(ctx, query,
		claim.TeamID, claim.RosterEntryID, claim.AccountID, ClaimStatusPending,
	).Scan(&claim.ID, &claim.RequestedAt)
	if err != nil {
		return mapPgError(err)
	}
	claim.Status = ClaimStatusPending
	return nil
}

func (r *pgClaimRepository) FindByID(ctx context.Context, id string) (*MemberClaim, error) {
	query := `SELECT ` + claimColumns + ` FROM member_claims WHERE id = $1`
	return scanClaim(r.pool.QueryRow(ctx, query, id))
}

func (r *pgClaimRepository) FindPendingByTeam(ctx context.Context, teamID string) ([]*MemberClaim, error) {
	query := `
		SELECT ` + claimColumns + `
		FROM member_claims
		WHERE team_id = $1 AND status = $2
		ORDER BY requested_at`

	rows, err := r.pool.Query(ctx, query, teamID, ClaimStatusPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var claims []*MemberClaim
	for rows.Next() {
		var c MemberClaim
		err := rows.Scan(
			&c.ID, &c.TeamID, &c.RosterEntryID, &c.AccountID, &c.Status,
			&c.RequestedAt, &c.ReviewedAt, &c.ReviewerID, &c.RejectionReason,
		)
		if err != nil {
			return nil, err
		}
		claims = append(claims, &c)
	}
	return claims, rows.Err()
}

func (r *pgClaimRepository) Approve(ctx context.Context, claimID, reviewerID string) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	// status = 'pending' in the WHERE clause means only one reviewer can
	// decide the claim.
	query := `
		UPDATE member_claims
		SET status = $2, reviewed_at = NOW(), reviewer_id = $3
		WHERE id = $1 AND status = $4
		RETURNING roster_entry_id, account_id`

	var entryID, accountID string
	err = tx.QueryRow(ctx, query, claimID, ClaimStatusApproved, reviewerID, ClaimStatusPending).
		Scan(&entryID, &accountID)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	bind := `
		UPDATE roster_entries
		SET account_id = $2, verified = TRUE, updated_at = NOW()
		WHERE id = $1`
	if _, err := tx.Exec(ctx, bind, entryID, accountID); err != nil {
		return false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func (r *pgClaimRepository) Reject(ctx context.Context, claimID, reviewerID, reason string) (bool, error) {
	query := `
		UPDATE member_claims
		SET status = $2, reviewed_at = NOW(), reviewer_id = $3, rejection_reason = $4
		WHERE id = $1 AND status = $5`
	tag, err := r.pool.Exec(ctx, query, claimID, ClaimStatusRejected, reviewerID, reason, ClaimStatusPending)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
