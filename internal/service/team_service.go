package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/cancha-app/cancha-backend/internal/repository"
	"github.com/cancha-app/cancha-backend/internal/socket"
	"github.com/cancha-app/cancha-backend/internal/token"
)

// ============================================
// Team Service
// ============================================

// Join codes are random, so two teams can collide; creation retries with a
// fresh code until the unique index accepts it.
const joinCodeAttempts = 5

type TeamService interface {
	Create(ctx context.Context, name, creatorID string) (*repository.Team, error)
	GetByID(ctx context.Context, id string) (*repository.Team, error)
	GetByJoinCode(ctx context.Context, code string) (*repository.Team, error)
	RegenerateJoinCode(ctx context.Context, teamID, requesterID string) (*repository.Team, error)
	Members(ctx context.Context, teamID string) ([]*repository.TeamMembership, error)
	AddRosterEntry(ctx context.Context, teamID, requesterID, displayName string, shirtNumber *int) (*repository.RosterEntry, error)
	Roster(ctx context.Context, teamID string) ([]*repository.RosterEntry, error)
}

type teamService struct {
	teamRepo    repository.TeamRepository
	rosterRepo  repository.RosterRepository
	broadcaster *socket.Broadcaster
}

func NewTeamService(teamRepo repository.TeamRepository, rosterRepo repository.RosterRepository, broadcaster *socket.Broadcaster) TeamService {
	return &teamService{teamRepo: teamRepo, rosterRepo: rosterRepo, broadcaster: broadcaster}
}

func (s *teamService) Create(ctx context.Context, name, creatorID string) (*repository.Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidInput
	}

	var team *repository.Team
	for attempt := 0; attempt < joinCodeAttempts; attempt++ {
		code, err := token.NewJoinCode()
		if err != nil {
			return nil, fmt.Errorf("failed to generate join code: %w", err)
		}

		candidate := &repository.Team{Name: name, JoinCode: code}
		err = s.teamRepo.Create(ctx, candidate)
		if err == nil {
			team = candidate
			break
		}
		if repository.IsConflict(err, repository.ConstraintTeamsJoinCode) {
			continue
		}
		return nil, err
	}
	if team == nil {
		return nil, fmt.Errorf("failed to allocate a unique join code")
	}

	member := &repository.TeamMembership{
		TeamID:    team.ID,
		AccountID: creatorID,
		Role:      repository.TeamRoleManager,
	}
	if err := s.teamRepo.AddMember(ctx, member); err != nil {
		return nil, err
	}

	return team, nil
}

func (s *teamService) GetByID(ctx context.Context, id string) (*repository.Team, error) {
	team, err := s.teamRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if team == nil {
		return nil, ErrNotFound
	}
	return team, nil
}

func (s *teamService) GetByJoinCode(ctx context.Context, code string) (*repository.Team, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	team, err := s.teamRepo.FindByJoinCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if team == nil {
		return nil, ErrJoinCodeInvalid
	}
	return team, nil
}

// RegenerateJoinCode invalidates the current code. Only team managers may
// rotate it.
func (s *teamService) RegenerateJoinCode(ctx context.Context, teamID, requesterID string) (*repository.Team, error) {
	if err := s.requireManager(ctx, teamID, requesterID); err != nil {
		return nil, err
	}

	team, err := s.teamRepo.FindByID(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if team == nil {
		return nil, ErrNotFound
	}

	for attempt := 0; attempt < joinCodeAttempts; attempt++ {
		code, err := token.NewJoinCode()
		if err != nil {
			return nil, fmt.Errorf("failed to generate join code: %w", err)
		}

		err = s.teamRepo.UpdateJoinCode(ctx, teamID, code)
		if err == nil {
			team.JoinCode = code
			// The old code is dead the moment the update lands;
			// tell connected managers so stale invites stop going out.
			if s.broadcaster != nil {
				s.broadcaster.BroadcastJoinCodeRotated(teamID)
			}
			return team, nil
		}
		if repository.IsConflict(err, repository.ConstraintTeamsJoinCode) {
			continue
		}
		return nil, err
	}
	return nil, fmt.Errorf("failed to allocate a unique join code")
}

func (s *teamService) Members(ctx context.Context, teamID string) ([]*repository.TeamMembership, error) {
	return s.teamRepo.FindMembers(ctx, teamID)
}

func (s *teamService) AddRosterEntry(ctx context.Context, teamID, requesterID, displayName string, shirtNumber *int) (*repository.RosterEntry, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return nil, ErrInvalidInput
	}
	if err := s.requireManager(ctx, teamID, requesterID); err != nil {
		return nil, err
	}

	entry := &repository.RosterEntry{
		TeamID:      teamID,
		DisplayName: displayName,
		ShirtNumber: shirtNumber,
	}
	if err := s.rosterRepo.Create(ctx, entry); err != nil {
		return nil, err
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastRosterUpdated(teamID, map[string]interface{}{
			"entryId":     entry.ID,
			"displayName": entry.DisplayName,
		}, requesterID)
	}

	return entry, nil
}

func (s *teamService) Roster(ctx context.Context, teamID string) ([]*repository.RosterEntry, error) {
	return s.rosterRepo.FindByTeam(ctx, teamID)
}

func (s *teamService) requireManager(ctx context.Context, teamID, accountID string) error {
	member, err := s.teamRepo.FindMember(ctx, teamID, accountID)
	if err != nil {
		return err
	}
	if member == nil || member.Role != repository.TeamRoleManager {
		return ErrForbidden
	}
	return nil
}
