package service

import (
	"context"

	"github.com/pkg/errors"
	"github.com/yakoovad/team-expenses/internal/db"
	"github.com/yakoovad/team-expenses/internal/model"
	"github.com/yakoovad/team-expenses/internal/repository"
	"github.com/yakoovad/team-expenses/pkg/logger"
	"go.uber.org/zap"
)

type TeamService struct {
	tx db.Transactor

	teams   repository.TeamRepository
	members repository.MemberRepository
}

func NewTeamService(tx db.Transactor) *TeamService {
	return &TeamService{
		tx: tx,
	}
}

// CreateTeam creates the team and its founding membership in one transaction:
// either both rows persist or neither does.
func (t *TeamService) CreateTeam(ctx context.Context, name, passcode string, creatorID int64) (*model.Team, *Error) {
	l := logger.FromContext(ctx)
	l.Info("creating team", zap.String("team_name", name), zap.Int64("creator_id", creatorID))

	team := &repository.Team{
		Name:      name,
		Passcode:  passcode,
		CreatedBy: creatorID,
	}

	err := t.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := t.teams.Create(txCtx, team); err != nil {
			l.Error("failed to create team", zap.String("team_name", name), zap.Error(err))
			return NewServiceError(ErrorCodeUnspecified, "failed to create team")
		}

		if err := t.members.Add(txCtx, team.ID, creatorID); err != nil {
			l.Error("failed to add creator membership",
				zap.Int64("team_id", team.ID),
				zap.Int64("user_id", creatorID),
				zap.Error(err))
			return NewServiceError(ErrorCodeUnspecified, "failed to create team")
		}

		return nil
	})

	if err != nil {
		var res *Error
		if errors.As(err, &res) {
			return nil, res
		}
		// Begin or commit failed outside the transaction body.
		l.Error("transaction failed", zap.Error(err))
		return nil, NewServiceError(ErrorCodeUnspecified, "failed to create team")
	}

	return &model.Team{
		ID:       team.ID,
		Name:     team.Name,
		Passcode: team.Passcode,
	}, nil
}

// JoinTeam checks the id and passcode as one lookup, so callers cannot probe
// which team ids exist without knowing the passcode.
func (t *TeamService) JoinTeam(ctx context.Context, teamID int64, passcode string, userID int64) *Error {
	l := logger.FromContext(ctx)
	l.Info("joining team", zap.Int64("team_id", teamID), zap.Int64("user_id", userID))

	_, err := t.teams.GetByIDAndPasscode(ctx, teamID, passcode)
	if errors.Is(err, repository.ErrNotFound) {
		l.Warn("team not found or invalid passcode", zap.Int64("team_id", teamID))
		return NewServiceError(ErrorCodeNotFound, "team not found or invalid passcode")
	}
	if err != nil {
		l.Error("failed to get team", zap.Int64("team_id", teamID), zap.Error(err))
		return NewServiceError(ErrorCodeUnspecified, "failed to join team")
	}

	err = t.members.Add(ctx, teamID, userID)
	if errors.Is(err, repository.ErrAlreadyExists) {
		l.Warn("already a member", zap.Int64("team_id", teamID), zap.Int64("user_id", userID))
		return NewServiceError(ErrorCodeAlreadyMember, "already a member of this team")
	}
	if err != nil {
		l.Error("failed to add membership",
			zap.Int64("team_id", teamID),
			zap.Int64("user_id", userID),
			zap.Error(err))
		return NewServiceError(ErrorCodeUnspecified, "failed to join team")
	}

	return nil
}

func (t *TeamService) SearchTeams(ctx context.Context, query string) ([]*model.TeamSummary, *Error) {
	l := logger.FromContext(ctx)
	l.Debug("searching teams", zap.String("query", query))

	teamsRepo, err := t.teams.Search(ctx, query)
	if err != nil {
		l.Error("failed to search teams", zap.String("query", query), zap.Error(err))
		return nil, NewServiceError(ErrorCodeUnspecified, "failed to search teams")
	}

	teams := make([]*model.TeamSummary, 0, len(teamsRepo))
	for _, team := range teamsRepo {
		teams = append(teams, &model.TeamSummary{
			ID:   team.ID,
			Name: team.Name,
		})
	}

	return teams, nil
}

func (t *TeamService) WithTeamRepo(r repository.TeamRepository) *TeamService {
	t.teams = r
	return t
}

func (t *TeamService) WithMemberRepo(r repository.MemberRepository) *TeamService {
	t.members = r
	return t
}
