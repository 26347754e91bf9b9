// internal/repository/repository.go
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ============================================
// Models / Entities
// ============================================

const (
	RoleAdmin  = "admin"
	RoleCoach  = "coach"
	RolePlayer = "player"

	TeamRoleManager = "manager"
	TeamRoleMember  = "member"

	ClaimStatusPending  = "pending"
	ClaimStatusApproved = "approved"
	ClaimStatusRejected = "rejected"
)

type Account struct {
	ID                       string
	Username                 string
	PasswordHash             string
	FullName                 string
	Email                    *string
	EmailVerified            bool
	VerificationToken        *string
	VerificationTokenExpires *time.Time
	ResetToken               *string
	ResetTokenExpires        *time.Time
	Role                     string
	CreatedAt                time.Time
	UpdatedAt                time.Time
}

// Sanitized returns a copy safe to hand outside the credential core: the
// password hash is stripped unconditionally.
func (a *Account) Sanitized() *Account {
	if a == nil {
		return nil
	}
	clean := *a
	clean.PasswordHash = ""
	return &clean
}

type RefreshToken struct {
	ID        string
	Token     string
	AccountID string
	ExpiresAt time.Time
	CreatedAt time.Time
}

type Team struct {
	ID        string
	Name      string
	JoinCode  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type TeamMembership struct {
	ID        string
	TeamID    string
	AccountID string
	Role      string
	JoinedAt  time.Time
	Account   *Account
}

type RosterEntry struct {
	ID          string
	TeamID      string
	DisplayName string
	ShirtNumber *int
	AccountID   *string
	Verified    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type MemberClaim struct {
	ID              string
	TeamID          string
	RosterEntryID   string
	AccountID       string
	Status          string
	RequestedAt     time.Time
	ReviewedAt      *time.Time
	ReviewerID      *string
	RejectionReason *string
}

type Notification struct {
	ID        string
	AccountID string
	Type      string
	Title     string
	Message   string
	Read      bool
	CreatedAt time.Time
}

// ============================================
// Conflict reporting
// ============================================

// Uniqueness is enforced by storage, not by check-then-act in the
// services. Both backends surface a violated constraint as ConflictError
// so callers can map it to a specific outcome.
type ConflictError struct {
	Constraint string
}

func (e *ConflictError) Error() string {
	return "unique constraint violation: " + e.Constraint
}

// Constraint names shared by the Postgres schema and the in-memory
// repositories.
const (
	ConstraintAccountsUsername = "accounts_username_key"
	ConstraintAccountsEmail    = "accounts_email_key"
	ConstraintTeamsJoinCode    = "teams_join_code_key"
	ConstraintMembershipPair   = "team_memberships_unique"
	ConstraintClaimPending     = "member_claims_pending_key"
)

// IsConflict reports whether err is a uniqueness violation of the named
// constraint (any constraint if name is empty).
func IsConflict(err error, constraint string) bool {
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		return false
	}
	return constraint == "" || conflict.Constraint == constraint
}

func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return &ConflictError{Constraint: pgErr.ConstraintName}
	}
	return err
}

// ============================================
// Repository Interfaces
// ============================================

type AccountRepository interface {
	Create(ctx context.Context, account *Account) error
	FindByID(ctx context.Context, id string) (*Account, error)
	FindByUsername(ctx context.Context, username string) (*Account, error)
	FindByEmail(ctx context.Context, email string) (*Account, error)
	FindByVerificationToken(ctx context.Context, token string) (*Account, error)
	FindByResetToken(ctx context.Context, token string) (*Account, error)

	SetVerificationToken(ctx context.Context, id, token string, expires time.Time) error
	SetResetToken(ctx context.Context, id, token string, expires time.Time) error

	// The four mutations below are compare-and-clear: the write only
	// happens if the token still matches, and they report whether a row
	// was touched. Two racing consumers cannot both win.
	MarkEmailVerified(ctx context.Context, id, token string) (bool, error)
	UpdatePasswordByResetToken(ctx context.Context, id, passwordHash, token string) (bool, error)
	ClearVerificationToken(ctx context.Context, id, token string) (bool, error)
	ClearResetToken(ctx context.Context, id, token string) (bool, error)

	SaveRefreshToken(ctx context.Context, token *RefreshToken) error
	FindRefreshToken(ctx context.Context, token string) (*RefreshToken, error)
	DeleteRefreshToken(ctx context.Context, token string) error
	DeleteAccountRefreshTokens(ctx context.Context, accountID string) error
	DeleteExpiredRefreshTokens(ctx context.Context) (int, error)
}

type TeamRepository interface {
	Create(ctx context.Context, team *Team) error
	FindByID(ctx context.Context, id string) (*Team, error)
	FindByJoinCode(ctx context.Context, code string) (*Team, error)
	UpdateJoinCode(ctx context.Context, teamID, code string) error

	AddMember(ctx context.Context, member *TeamMembership) error
	FindMember(ctx context.Context, teamID, accountID string) (*TeamMembership, error)
	FindMembers(ctx context.Context, teamID string) ([]*TeamMembership, error)
	FindManagerIDs(ctx context.Context, teamID string) ([]string, error)
}

type RosterRepository interface {
	Create(ctx context.Context, entry *RosterEntry) error
	FindByID(ctx context.Context, id string) (*RosterEntry, error)
	FindByTeam(ctx context.Context, teamID string) ([]*RosterEntry, error)
}

type ClaimRepository interface {
	Create(ctx context.Context, claim *MemberClaim) error
	FindByID(ctx context.Context, id string) (*MemberClaim, error)
	FindPendingByTeam(ctx context.Context, teamID string) ([]*MemberClaim, error)

	// Approve flips the claim out of pending and binds the roster entry
	// to the claiming account in one transaction; it reports false when
	// the claim was not pending anymore.
	Approve(ctx context.Context, claimID, reviewerID string) (bool, error)
	Reject(ctx context.Context, claimID, reviewerID, reason string) (bool, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, notification *Notification) error
	FindByAccount(ctx context.Context, accountID string, unreadOnly bool) ([]*Notification, error)
	// MarkAsRead reports false when the notification does not exist or
	// belongs to another account.
	MarkAsRead(ctx context.Context, id, accountID string) (bool, error)
	CountByAccount(ctx context.Context, accountID string) (total, unread int, err error)
	DeleteOlderThan(ctx context.Context, olderThan time.Time, readOnly bool) (int, error)
}

// ============================================
// Repositories Container
// ============================================

type Repositories struct {
	AccountRepo      AccountRepository
	TeamRepo         TeamRepository
	RosterRepo       RosterRepository
	ClaimRepo        ClaimRepository
	NotificationRepo NotificationRepository
}

// Pool is the slice of pgxpool.Pool the repositories use. Tests swap in a
// pgxmock pool.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

var _ Pool = (*pgxpool.Pool)(nil)

// NewRepositories creates in-memory repositories (for testing/fallback)
func NewRepositories() *Repositories {
	roster := newInMemoryRosterRepository()
	return &Repositories{
		AccountRepo:      newInMemoryAccountRepository(),
		TeamRepo:         newInMemoryTeamRepository(),
		RosterRepo:       roster,
		ClaimRepo:        newInMemoryClaimRepository(roster),
		NotificationRepo: newInMemoryNotificationRepository(),
	}
}

// NewPgRepositories creates PostgreSQL-backed repositories
func NewPgRepositories(pool Pool) *Repositories {
	return &Repositories{
		AccountRepo:      &pgAccountRepository{pool: pool},
		TeamRepo:         &pgTeamRepository{pool: pool},
		RosterRepo:       &pgRosterRepository{pool: pool},
		ClaimRepo:        &pgClaimRepository{pool: pool},
		NotificationRepo: &pgNotificationRepository{pool: pool},
	}
}
