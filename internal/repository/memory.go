// internal/repository/memory.go
package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// In-memory repositories. Used by the service tests and as a fallback when
// no database is configured. They enforce the same uniqueness rules as the
// Postgres schema so callers see identical conflicts.

// ============================================
// Accounts
// ============================================

type inMemoryAccountRepository struct {
	mu            sync.RWMutex
	accounts      map[string]*Account
	refreshTokens map[string]*RefreshToken
}

func newInMemoryAccountRepository() *inMemoryAccountRepository {
	return &inMemoryAccountRepository{
		accounts:      make(map[string]*Account),
		refreshTokens: make(map[string]*RefreshToken),
	}
}

func copyAccount(a *Account) *Account {
	if a == nil {
		return nil
	}
	clean := *a
	return &clean
}

func (r *inMemoryAccountRepository) Create(ctx context.Context, account *Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.accounts {
		if strings.EqualFold(existing.Username, account.Username) {
			return &ConflictError{Constraint: ConstraintAccountsUsername}
		}
		if account.Email != nil && existing.Email != nil && strings.EqualFold(*existing.Email, *account.Email) {
			return &ConflictError{Constraint: ConstraintAccountsEmail}
		}
	}

	account.ID = uuid.New().String()
	account.CreatedAt = time.Now()
	account.UpdatedAt = account.CreatedAt
	r.accounts[account.ID] = copyAccount(account)
	return nil
}

func (r *inMemoryAccountRepository) FindByID(ctx context.Context, id string) (*Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return copyAccount(r.accounts[id]), nil
}

func (r *inMemoryAccountRepository) FindByUsername(ctx context.Context, username string) (*Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.accounts {
		if strings.EqualFold(a.Username, username) {
			return copyAccount(a), nil
		}
	}
	return nil, nil
}

func (r *inMemoryAccountRepository) FindByEmail(ctx context.Context, email string) (*Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.accounts {
		if a.Email != nil && strings.EqualFold(*a.Email, email) {
			return copyAccount(a), nil
		}
	}
	return nil, nil
}

func (r *inMemoryAccountRepository) FindByVerificationToken(ctx context.Context, token string) (*Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.accounts {
		if a.VerificationToken != nil && *a.VerificationToken == token {
			return copyAccount(a), nil
		}
	}
	return nil, nil
}

func (r *inMemoryAccountRepository) FindByResetToken(ctx context.Context, token string) (*Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.accounts {
		if a.ResetToken != nil && *a.ResetToken == token {
			return copyAccount(a), nil
		}
	}
	return nil, nil
}

func (r *inMemoryAccountRepository) SetVerificationToken(ctx context.Context, id, token string, expires time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.accounts[id]; ok {
		a.VerificationToken = &token
		a.VerificationTokenExpires = &expires
		a.UpdatedAt = time.Now()
	}
	return nil
}

func (r *inMemoryAccountRepository) SetResetToken(ctx context.Context, id, token string, expires time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.accounts[id]; ok {
		a.ResetToken = &token
		a.ResetTokenExpires = &expires
		a.UpdatedAt = time.Now()
	}
	return nil
}

func (r *inMemoryAccountRepository) MarkEmailVerified(ctx context.Context, id, token string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok || a.VerificationToken == nil || *a.VerificationToken != token {
		return false, nil
	}
	a.EmailVerified = true
	a.VerificationToken = nil
	a.VerificationTokenExpires = nil
	a.UpdatedAt = time.Now()
	return true, nil
}

func (r *inMemoryAccountRepository) UpdatePasswordByResetToken(ctx context.Context, id, passwordHash, token string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok || a.ResetToken == nil || *a.ResetToken != token {
		return false, nil
	}
	a.PasswordHash = passwordHash
	a.ResetToken = nil
	a.ResetTokenExpires = nil
	a.UpdatedAt = time.Now()
	return true, nil
}

func (r *inMemoryAccountRepository) ClearVerificationToken(ctx context.Context, id, token string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok || a.VerificationToken == nil || *a.VerificationToken != token {
		return false, nil
	}
	a.VerificationToken = nil
	a.VerificationTokenExpires = nil
	a.UpdatedAt = time.Now()
	return true, nil
}

func (r *inMemoryAccountRepository) ClearResetToken(ctx context.Context, id, token string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok || a.ResetToken == nil || *a.ResetToken != token {
		return false, nil
	}
	a.ResetToken = nil
	a.ResetTokenExpires = nil
	a.UpdatedAt = time.Now()
	return true, nil
}

func (r *inMemoryAccountRepository) SaveRefreshToken(ctx context.Context, token *RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	token.ID = uuid.New().String()
	token.CreatedAt = time.Now()
	clone := *token
	r.refreshTokens[token.Token] = &clone
	return nil
}

func (r *inMemoryAccountRepository) FindRefreshToken(ctx context.Context, token string) (*RefreshToken, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.refreshTokens[token]
	if !ok {
		return nil, nil
	}
	clone := *t
	return &clone, nil
}

func (r *inMemoryAccountRepository) DeleteRefreshToken(ctx context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.refreshTokens, token)
	return nil
}

func (r *inMemoryAccountRepository) DeleteAccountRefreshTokens(ctx context.Context, accountID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, t := range r.refreshTokens {
		if t.AccountID == accountID {
			delete(r.refreshTokens, key)
		}
	}
	return nil
}

func (r *inMemoryAccountRepository) DeleteExpiredRefreshTokens(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	now := time.Now()
	for key, t := range r.refreshTokens {
		if t.ExpiresAt.Before(now) {
			delete(r.refreshTokens, key)
			count++
		}
	}
	return count, nil
}

// ============================================
// Teams
// ============================================

type inMemoryTeamRepository struct {
	mu          sync.RWMutex
	teams       map[string]*Team
	memberships map[string]*TeamMembership
}

func newInMemoryTeamRepository() *inMemoryTeamRepository {
	return &inMemoryTeamRepository{
		teams:       make(map[string]*Team),
		memberships: make(map[string]*TeamMembership),
	}
}

func (r *inMemoryTeamRepository) Create(ctx context.Context, team *Team) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.teams {
		if existing.JoinCode == team.JoinCode {
			return &ConflictError{Constraint: ConstraintTeamsJoinCode}
		}
	}
	team.ID = uuid.New().String()
	team.CreatedAt = time.Now()
	team.UpdatedAt = team.CreatedAt
	clone := *team
	r.teams[team.ID] = &clone
	return nil
}

func (r *inMemoryTeamRepository) FindByID(ctx context.Context, id string) (*Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.teams[id]
	if !ok {
		return nil, nil
	}
	clone := *t
	return &clone, nil
}

func (r *inMemoryTeamRepository) FindByJoinCode(ctx context.Context, code string) (*Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.teams {
		if t.JoinCode == code {
			clone := *t
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *inMemoryTeamRepository) UpdateJoinCode(ctx context.Context, teamID, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, t := range r.teams {
		if id != teamID && t.JoinCode == code {
			return &ConflictError{Constraint: ConstraintTeamsJoinCode}
		}
	}
	if t, ok := r.teams[teamID]; ok {
		t.JoinCode = code
		t.UpdatedAt = time.Now()
	}
	return nil
}

func (r *inMemoryTeamRepository) AddMember(ctx context.Context, member *TeamMembership) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.memberships {
		if m.TeamID == member.TeamID && m.AccountID == member.AccountID {
			return &ConflictError{Constraint: ConstraintMembershipPair}
		}
	}
	member.ID = uuid.New().String()
	member.JoinedAt = time.Now()
	clone := *member
	clone.Account = nil
	r.memberships[member.ID] = &clone
	return nil
}

func (r *inMemoryTeamRepository) FindMember(ctx context.Context, teamID, accountID string) (*TeamMembership, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.memberships {
		if m.TeamID == teamID && m.AccountID == accountID {
			clone := *m
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *inMemoryTeamRepository) FindMembers(ctx context.Context, teamID string) ([]*TeamMembership, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var members []*TeamMembership
	for _, m := range r.memberships {
		if m.TeamID == teamID {
			clone := *m
			members = append(members, &clone)
		}
	}
	return members, nil
}

func (r *inMemoryTeamRepository) FindManagerIDs(ctx context.Context, teamID string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var ids []string
	for _, m := range r.memberships {
		if m.TeamID == teamID && m.Role == TeamRoleManager {
			ids = append(ids, m.AccountID)
		}
	}
	return ids, nil
}

// ============================================
// Roster
// ============================================

type inMemoryRosterRepository struct {
	mu      sync.RWMutex
	entries map[string]*RosterEntry
}

func newInMemoryRosterRepository() *inMemoryRosterRepository {
	return &inMemoryRosterRepository{entries: make(map[string]*RosterEntry)}
}

func (r *inMemoryRosterRepository) Create(ctx context.Context, entry *RosterEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry.ID = uuid.New().String()
	entry.CreatedAt = time.Now()
	entry.UpdatedAt = entry.CreatedAt
	clone := *entry
	r.entries[entry.ID] = &clone
	return nil
}

func (r *inMemoryRosterRepository) FindByID(ctx context.Context, id string) (*RosterEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[id]
	if !ok {
		return nil, nil
	}
	clone := *e
	return &clone, nil
}

func (r *inMemoryRosterRepository) FindByTeam(ctx context.Context, teamID string) ([]*RosterEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var entries []*RosterEntry
	for _, e := range r.entries {
		if e.TeamID == teamID {
			clone := *e
			entries = append(entries, &clone)
		}
	}
	return entries, nil
}

func (r *inMemoryRosterRepository) bind(entryID, accountID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[entryID]; ok {
		e.AccountID = &accountID
		e.Verified = true
		e.UpdatedAt = time.Now()
	}
}

// ============================================
// Member Claims
// ============================================

type inMemoryClaimRepository struct {
	mu     sync.RWMutex
	claims map[string]*MemberClaim
	roster *inMemoryRosterRepository
}

func newInMemoryClaimRepository(roster *inMemoryRosterRepository) *inMemoryClaimRepository {
	return &inMemoryClaimRepository{
		claims: make(map[string]*MemberClaim),
		roster: roster,
	}
}

func (r *inMemoryClaimRepository) Create(ctx context.Context, claim *MemberClaim) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.claims {
		if c.Status == ClaimStatusPending &&
			c.RosterEntryID == claim.RosterEntryID && c.AccountID == claim.AccountID {
			return &ConflictError{Constraint: ConstraintClaimPending}
		}
	}
	claim.ID = uuid.New().String()
	claim.Status = ClaimStatusPending
	claim.RequestedAt = time.Now()
	clone := *claim
	r.claims[claim.ID] = &clone
	return nil
}

func (r *inMemoryClaimRepository) FindByID(ctx context.Context, id string) (*MemberClaim, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.claims[id]
	if !ok {
		return nil, nil
	}
	clone := *c
	return &clone, nil
}

func (r *inMemoryClaimRepository) FindPendingByTeam(ctx context.Context, teamID string) ([]*MemberClaim, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var claims []*MemberClaim
	for _, c := range r.claims {
		if c.TeamID == teamID && c.Status == ClaimStatusPending {
			clone := *c
			claims = append(claims, &clone)
		}
	}
	return claims, nil
}

func (r *inMemoryClaimRepository) Approve(ctx context.Context, claimID, reviewerID string) (bool, error) {
	r.mu.Lock()
	c, ok := r.claims[claimID]
	if !ok || c.Status != ClaimStatusPending {
		r.mu.Unlock()
		return false, nil
	}
	now := time.Now()
	c.Status = ClaimStatusApproved
	c.ReviewedAt = &now
	c.ReviewerID = &reviewerID
	entryID, accountID := c.RosterEntryID, c.AccountID
	r.mu.Unlock()

	r.roster.bind(entryID, accountID)
	return true, nil
}

func (r *inMemoryClaimRepository) Reject(ctx context.Context, claimID, reviewerID, reason string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.claims[claimID]
	if !ok || c.Status != ClaimStatusPending {
		return false, nil
	}
	now := time.Now()
	c.Status = ClaimStatusRejected
	c.ReviewedAt = &now
	c.ReviewerID = &reviewerID
	c.RejectionReason = &reason
	return true, nil
}

// ============================================
// Notifications
// ============================================

type inMemoryNotificationRepository struct {
	mu            sync.RWMutex
	notifications map[string]*Notification
}

func newInMemoryNotificationRepository() *inMemoryNotificationRepository {
	return &inMemoryNotificationRepository{notifications: make(map[string]*Notification)}
}

func (r *inMemoryNotificationRepository) Create(ctx context.Context, notification *Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	notification.ID = uuid.New().String()
	notification.CreatedAt = time.Now()
	clone := *notification
	r.notifications[notification.ID] = &clone
	return nil
}

func (r *inMemoryNotificationRepository) FindByAccount(ctx context.Context, accountID string, unreadOnly bool) ([]*Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var notifications []*Notification
	for _, n := range r.notifications {
		if n.AccountID != accountID {
			continue
		}
		if unreadOnly && n.Read {
			continue
		}
		clone := *n
		notifications = append(notifications, &clone)
	}
	return notifications, nil
}

func (r *inMemoryNotificationRepository) MarkAsRead(ctx context.Context, id, accountID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.notifications[id]
	if !ok || n.AccountID != accountID {
		return false, nil
	}
	n.Read = true
	return true, nil
}

func (r *inMemoryNotificationRepository) CountByAccount(ctx context.Context, accountID string) (int, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	total, unread := 0, 0
	for _, n := range r.notifications {
		if n.AccountID != accountID {
			continue
		}
		total++
		if !n.Read {
			unread++
		}
	}
	return total, unread, nil
}

func (r *inMemoryNotificationRepository) DeleteOlderThan(ctx context.Context, olderThan time.Time, readOnly bool) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for id, n := range r.notifications {
		if n.CreatedAt.Before(olderThan) && (!readOnly || n.Read) {
			delete(r.notifications, id)
			count++
		}
	}
	return count, nil
}
