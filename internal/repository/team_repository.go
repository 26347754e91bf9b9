// internal/repository/team_repository.go
package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// ============================================
// PostgreSQL Team Repository
// ============================================

type pgTeamRepository struct {
	pool Pool
}

func (r *pgTeamRepository) Create(ctx context.Context, team *Team) error {
	query := `
		INSERT INTO teams (name, join_code)
		VALUES ($1, $2)
		RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, query, team.Name, team.JoinCode).
		Scan(&team.ID, &team.CreatedAt, &team.UpdatedAt)
	if err != nil {
		return mapPgError(err)
	}
	return nil
}

func (r *pgTeamRepository) FindByID(ctx context.Context, id string) (*Team, error) {
	query := `SELECT id, name, join_code, created_at, updated_at FROM teams WHERE id = $1`
	var t Team
	err := r.pool.QueryRow(ctx, query, id).
		Scan(&t.ID, &t.Name, &t.JoinCode, &t.CreatedAt, &t.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *pgTeamRepository) FindByJoinCode(ctx context.Context, code string) (*Team, error) {
	query := `SELECT id, name, join_code, created_at, updated_at FROM teams WHERE join_code = $1`
	var t Team
	err := r.pool.QueryRow(ctx, query, code).
		Scan(&t.ID, &t.Name, &t.JoinCode, &t.CreatedAt, &t.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *pgTeamRepository) UpdateJoinCode(ctx context.Context, teamID, code string) error {
	query := `UPDATE teams SET join_code = $2, updated_at = NOW() WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, teamID, code)
	return mapPgError(err)
}

// ============================================
// Memberships
// ============================================

func (r *pgTeamRepository) AddMember(ctx context.Context, member *TeamMembership) error {
	query := `
		INSERT INTO team_memberships (team_id, account_id, role)
		VALUES ($1, $2, $3)
		RETURNING id, joined_at`
	err := r.pool.QueryRow(ctx, query, member.TeamID, member.AccountID, member.Role).
		Scan(&member.ID, &member.JoinedAt)
	if err != nil {
		return mapPgError(err)
	}
	return nil
}

func (r *pgTeamRepository) FindMember(ctx context.Context, teamID, accountID string) (*TeamMembership, error) {
	query := `
		SELECT id, team_id, account_id, role, joined_at
		FROM team_memberships
		WHERE team_id = $1 AND account_id = $2`
	var m TeamMembership
	err := r.pool.QueryRow(ctx, query, teamID, accountID).
		Scan(&m.ID, &m.TeamID, &m.AccountID, &m.Role, &m.JoinedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *pgTeamRepository) FindMembers(ctx context.Context, teamID string) ([]*TeamMembership, error) {
	query := `
		SELECT m.id, m.team_id, m.account_id, m.role, m.joined_at,
			a.id, a.username, a.full_name, a.email, a.email_verified, a.role
		FROM team_memberships m
		JOIN accounts a ON a.id = m.account_id
		WHERE m.team_id = $1
		ORDER BY m.joined_at`

	rows, err := r.pool.Query(ctx, query, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []*TeamMembership
	for rows.Next() {
		var m TeamMembership
		var a Account
		err := rows.Scan(
			&m.ID, &m.TeamID, &m.AccountID, &m.Role, &m.JoinedAt,
			&a.ID, &a.Username, &a.FullName, &a.Email, &a.EmailVerified, &a.Role,
		)
		if err != nil {
			return nil, err
		}
		m.Account = &a
		members = append(members, &m)
	}
	return members, rows.Err()
}

func (r *pgTeamRepository) FindManagerIDs(ctx context.Context, teamID string) ([]string, error) {
	query := `
		SELECT account_id FROM team_memberships
		WHERE team_id = $1 AND role = $2`

	rows, err := r.pool.Query(ctx, query, teamID, TeamRoleManager)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ============================================
// PostgreSQL Roster Repository
// ============================================

type pgRosterRepository struct {
	pool Pool
}

func (r *pgRosterRepository) Create(ctx context.Context, entry *RosterEntry) error {
	query := `
		INSERT INTO roster_entries (team_id, display_name, shirt_number)
		VALUES ($1, $2, $3)
		RETURNING id, verified, created_at, updated_at`
	return r.pool.QueryRow(ctx, query, entry.TeamID, entry.DisplayName, entry.ShirtNumber).
		Scan(&entry.ID, &entry.Verified, &entry.CreatedAt, &entry.UpdatedAt)
}

func (r *pgRosterRepository) FindByID(ctx context.Context, id string) (*RosterEntry, error) {
	query := `
		SELECT id, team_id, display_name, shirt_number, account_id, verified, created_at, updated_at
		FROM roster_entries WHERE id = $1`
	var e RosterEntry
	err := r.pool.QueryRow(ctx, query, id).
		Scan(&e.ID, &e.TeamID, &e.DisplayName, &e.ShirtNumber, &e.AccountID, &e.Verified, &e.CreatedAt, &e.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *pgRosterRepository) FindByTeam(ctx context.Context, teamID string) ([]*RosterEntry, error) {
	query := `
		SELECT id, team_id, display_name, shirt_number, account_id, verified, created_at, updated_at
		FROM roster_entries WHERE team_id = $1
		ORDER BY display_name`

	rows, err := r.pool.Query(ctx, query, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*RosterEntry
	for rows.Next() {
		var e RosterEntry
		err := rows.Scan(&e.ID, &e.TeamID, &e.DisplayName, &e.ShirtNumber, &e.AccountID, &e.Verified, &e.CreatedAt, &e.UpdatedAt)
		if err != nil {
			return nil, err
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}
