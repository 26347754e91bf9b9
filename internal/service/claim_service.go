package service

import (
	"context"
	"log"

	"github.com/cancha-app/cancha-backend/internal/config"
	"github.com/cancha-app/cancha-backend/internal/email"
	"github.com/cancha-app/cancha-backend/internal/notification"
	"github.com/cancha-app/cancha-backend/internal/repository"
	"github.com/cancha-app/cancha-backend/internal/socket"
)

// ============================================
// Member Claim Service
// ============================================

// ClaimService runs the "that roster spot is me" workflow. A player points
// at an unclaimed roster entry, a team manager approves or rejects, and an
// approval binds the entry to the player's account.
type ClaimService interface {
	Create(ctx context.Context, accountID, rosterEntryID string) (*repository.MemberClaim, error)
	GetByID(ctx context.Context, id string) (*repository.MemberClaim, error)
	ListPendingByTeam(ctx context.Context, teamID, requesterID string) ([]*repository.MemberClaim, error)
	Approve(ctx context.Context, claimID, reviewerID string, lang email.Lang) (*repository.MemberClaim, error)
	Reject(ctx context.Context, claimID, reviewerID, reason string, lang email.Lang) (*repository.MemberClaim, error)
}

type claimService struct {
	cfg         *config.Config
	claimRepo   repository.ClaimRepository
	rosterRepo  repository.RosterRepository
	teamRepo    repository.TeamRepository
	accountRepo repository.AccountRepository
	notifSvc    *notification.Service
	emailSvc    *email.Service
	broadcaster *socket.Broadcaster
}

func NewClaimService(
	cfg *config.Config,
	claimRepo repository.ClaimRepository,
	rosterRepo repository.RosterRepository,
	teamRepo repository.TeamRepository,
	accountRepo repository.AccountRepository,
	notifSvc *notification.Service,
	emailSvc *email.Service,
	broadcaster *socket.Broadcaster,
) ClaimService {
	return &claimService{
		cfg:         cfg,
		claimRepo:   claimRepo,
		rosterRepo:  rosterRepo,
		teamRepo:    teamRepo,
		accountRepo: accountRepo,
		notifSvc:    notifSvc,
		emailSvc:    emailSvc,
		broadcaster: broadcaster,
	}
}

func (s *claimService) Create(ctx context.Context, accountID, rosterEntryID string) (*repository.MemberClaim, error) {
	entry, err := s.rosterRepo.FindByID(ctx, rosterEntryID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, ErrNotFound
	}
	if entry.Verified || entry.AccountID != nil {
		return nil, ErrAlreadyClaimed
	}

	claim := &repository.MemberClaim{
		TeamID:        entry.TeamID,
		RosterEntryID: entry.ID,
		AccountID:     accountID,
	}
	if err := s.claimRepo.Create(ctx, claim); err != nil {
		if repository.IsConflict(err, repository.ConstraintClaimPending) {
			return nil, ErrAlreadyClaimed
		}
		return nil, err
	}

	s.notifyManagers(entry, claim)

	return claim, nil
}

func (s *claimService) GetByID(ctx context.Context, id string) (*repository.MemberClaim, error) {
	claim, err := s.claimRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if claim == nil {
		return nil, ErrNotFound
	}
	return claim, nil
}

func (s *claimService) ListPendingByTeam(ctx context.Context, teamID, requesterID string) ([]*repository.MemberClaim, error) {
	if err := s.requireManager(ctx, teamID, requesterID); err != nil {
		return nil, err
	}
	return s.claimRepo.FindPendingByTeam(ctx, teamID)
}

func (s *claimService) Approve(ctx context.Context, claimID, reviewerID string, lang email.Lang) (*repository.MemberClaim, error) {
	claim, err := s.claimRepo.FindByID(ctx, claimID)
	if err != nil {
		return nil, err
	}
	if claim == nil {
		return nil, ErrNotFound
	}
	if err := s.requireManager(ctx, claim.TeamID, reviewerID); err != nil {
		return nil, err
	}

	ok, err := s.claimRepo.Approve(ctx, claimID, reviewerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrAlreadyReviewed
	}

	claim, err = s.claimRepo.FindByID(ctx, claimID)
	if err != nil {
		return nil, err
	}

	s.notifyDecision(ctx, claim, true, "", lang)

	return claim, nil
}

func (s *claimService) Reject(ctx context.Context, claimID, reviewerID, reason string, lang email.Lang) (*repository.MemberClaim, error) {
	claim, err := s.claimRepo.FindByID(ctx, claimID)
	if err != nil {
		return nil, err
	}
	if claim == nil {
		return nil, ErrNotFound
	}
	if err := s.requireManager(ctx, claim.TeamID, reviewerID); err != nil {
		return nil, err
	}

	ok, err := s.claimRepo.Reject(ctx, claimID, reviewerID, reason)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrAlreadyReviewed
	}

	claim, err = s.claimRepo.FindByID(ctx, claimID)
	if err != nil {
		return nil, err
	}

	s.notifyDecision(ctx, claim, false, reason, lang)

	return claim, nil
}

func (s *claimService) requireManager(ctx context.Context, teamID, accountID string) error {
	member, err := s.teamRepo.FindMember(ctx, teamID, accountID)
	if err != nil {
		return err
	}
	if member == nil || member.Role != repository.TeamRoleManager {
		return ErrForbidden
	}
	return nil
}

func (s *claimService) notifyManagers(entry *repository.RosterEntry, claim *repository.MemberClaim) {
	// Notification failures never surface to the claimant.
	go func() {
		ctx := context.Background()

		managerIDs, err := s.teamRepo.FindManagerIDs(ctx, entry.TeamID)
		if err != nil {
			log.Printf("[Claim] ⚠️ Failed to load managers for team %s: %v", entry.TeamID, err)
			return
		}

		claimantName := claim.AccountID
		if claimant, err := s.accountRepo.FindByID(ctx, claim.AccountID); err == nil && claimant != nil {
			claimantName = claimant.FullName
			if claimantName == "" {
				claimantName = claimant.Username
			}
		}

		if err := s.notifSvc.SendClaimCreated(ctx, managerIDs, claimantName, entry.DisplayName); err != nil {
			log.Printf("[Claim] ⚠️ Failed to notify managers: %v", err)
		}

		if s.broadcaster != nil {
			s.broadcaster.BroadcastClaimCreated(entry.TeamID, map[string]interface{}{
				"claimId":       claim.ID,
				"rosterEntryId": entry.ID,
				"entryName":     entry.DisplayName,
				"claimantName":  claimantName,
			})
		}
	}()
}

func (s *claimService) notifyDecision(ctx context.Context, claim *repository.MemberClaim, approved bool, reason string, lang email.Lang) {
	if claim == nil {
		return
	}

	team, err := s.teamRepo.FindByID(ctx, claim.TeamID)
	if err != nil || team == nil {
		log.Printf("[Claim] ⚠️ Failed to load team %s for decision notice: %v", claim.TeamID, err)
		return
	}

	account, err := s.accountRepo.FindByID(ctx, claim.AccountID)
	if err != nil || account == nil {
		log.Printf("[Claim] ⚠️ Failed to load account %s for decision notice: %v", claim.AccountID, err)
		return
	}

	if approved {
		if err := s.notifSvc.SendClaimApproved(ctx, claim.AccountID, team.Name); err != nil {
			log.Printf("[Claim] ⚠️ Failed to notify claimant: %v", err)
		}
	} else {
		if err := s.notifSvc.SendClaimRejected(ctx, claim.AccountID, team.Name, reason); err != nil {
			log.Printf("[Claim] ⚠️ Failed to notify claimant: %v", err)
		}
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastClaimDecision(claim.AccountID, approved, map[string]interface{}{
			"claimId":  claim.ID,
			"teamId":   claim.TeamID,
			"teamName": team.Name,
			"status":   claim.Status,
		})
	}

	if account.Email != nil && account.EmailVerified {
		to := *account.Email
		name := account.FullName
		if name == "" {
			name = account.Username
		}
		teamURL := s.cfg.FrontendURL + "/teams/" + team.ID

		go func() {
			err := s.emailSvc.SendClaimDecision(to, lang, email.ClaimDecisionEmailData{
				Name:     name,
				TeamName: team.Name,
				Approved: approved,
				Reason:   reason,
				TeamURL:  teamURL,
			})
			if err != nil {
				log.Printf("[Email] ❌ Failed to send claim decision email to %s: %v", to, err)
			}
		}()
	}
}
