package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/christpg03/mine-bot/internal/domain"
	rm "github.com/christpg03/mine-bot/internal/redmine"
	"github.com/christpg03/mine-bot/internal/repository"
)

var (
	ErrTeamNotFound    = errors.New("team not found")
	ErrTeamExists      = errors.New("group already linked to a project")
	ErrNotCreator      = errors.New("only the team creator can do this")
	ErrProjectNotFound = errors.New("redmine project not found")
	ErrTokenRequired   = errors.New("redmine token required")
	ErrInvalidTeamName = errors.New("invalid team name")
)

// TeamService coordina el vínculo entre grupos de Telegram y proyectos.
type TeamService struct {
	logger *zap.Logger
	teams  repository.TeamRepository
	tokens TokenSource
	rm     rm.Factory
	cache  ProjectCache
}

func NewTeamService(logger *zap.Logger, teams repository.TeamRepository, tokens TokenSource, factory rm.Factory, cache ProjectCache) *TeamService {
	if cache == nil {
		cache = NewNoopProjectCache()
	}
	return &TeamService{
		logger: logger,
		teams:  teams,
		tokens: tokens,
		rm:     factory,
		cache:  cache,
	}
}

type LinkInput struct {
	GroupID   int64
	ProjectID int
	TeamName  string
	CreatedBy int64
}

// Link vincula el grupo con un proyecto de Redmine. Valida el proyecto con
// el token del creador y rechaza grupos ya vinculados.
func (s *TeamService) Link(ctx context.Context, input LinkInput) (domain.Team, error) {
	name := strings.TrimSpace(input.TeamName)
	if name == "" {
		return domain.Team{}, ErrInvalidTeamName
	}

	token, err := s.tokens.TokenByTelegramID(ctx, input.CreatedBy)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) || errors.Is(err, ErrTokenNotSet) {
			return domain.Team{}, ErrTokenRequired
		}
		return domain.Team{}, err
	}

	if _, err := s.teams.ByGroupID(ctx, input.GroupID); err == nil {
		return domain.Team{}, ErrTeamExists
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return domain.Team{}, err
	}

	client := s.rm(token)
	if _, err := client.CurrentUser(ctx); err != nil {
		if errors.Is(err, rm.ErrUnauthorized) {
			return domain.Team{}, ErrTokenRequired
		}
		return domain.Team{}, err
	}
	project, err := client.Project(ctx, input.ProjectID)
	if err != nil {
		if errors.Is(err, rm.ErrNotFound) || errors.Is(err, rm.ErrUnauthorized) {
			return domain.Team{}, ErrProjectNotFound
		}
		return domain.Team{}, err
	}

	team := domain.Team{
		ID:                 uuid.NewString(),
		TelegramGroupID:    input.GroupID,
		RedmineProjectID:   project.ID,
		RedmineProjectCode: project.Identifier,
		Name:               name,
		CreatedBy:          input.CreatedBy,
		CreatedAt:          time.Now().UTC(),
	}
	if err := s.teams.Replace(ctx, team); err != nil {
		return domain.Team{}, err
	}

	s.logger.Info("team linked",
		zap.Int64("group_id", input.GroupID),
		zap.Int("project_id", project.ID),
		zap.String("project_code", project.Identifier),
		zap.Int64("created_by", input.CreatedBy),
	)
	return team, nil
}

// Unlink elimina el vínculo del grupo. Solo lo puede hacer quien lo creó.
func (s *TeamService) Unlink(ctx context.Context, groupID, requestedBy int64) (domain.Team, error) {
	team, err := s.ByGroup(ctx, groupID)
	if err != nil {
		return domain.Team{}, err
	}
	if team.CreatedBy != requestedBy {
		return domain.Team{}, ErrNotCreator
	}

	deleted, err := s.teams.DeleteByGroupAndCreator(ctx, groupID, requestedBy)
	if err != nil {
		return domain.Team{}, err
	}
	if !deleted {
		return domain.Team{}, ErrTeamNotFound
	}

	s.logger.Info("team unlinked",
		zap.Int64("group_id", groupID),
		zap.Int64("requested_by", requestedBy),
	)
	return team, nil
}

// ByGroup devuelve el equipo vinculado al grupo.
func (s *TeamService) ByGroup(ctx context.Context, groupID int64) (domain.Team, error) {
	team, err := s.teams.ByGroupID(ctx, groupID)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Team{}, ErrTeamNotFound
	}
	return team, err
}

// ByCreator lista los equipos creados por el usuario.
func (s *TeamService) ByCreator(ctx context.Context, createdBy int64) ([]domain.Team, error) {
	return s.teams.ByCreator(ctx, createdBy)
}

// Projects lista los proyectos visibles para el usuario, con cache por
// usuario para abaratar /projects repetidos.
func (s *TeamService) Projects(ctx context.Context, telegramID int64) ([]rm.Project, error) {
	token, err := s.tokens.TokenByTelegramID(ctx, telegramID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) || errors.Is(err, ErrTokenNotSet) {
			return nil, ErrTokenRequired
		}
		return nil, err
	}

	if projects, ok := s.cache.Get(ctx, telegramID); ok {
		return projects, nil
	}

	projects, err := s.rm(token).Projects(ctx)
	if err != nil {
		if errors.Is(err, rm.ErrUnauthorized) {
			return nil, ErrTokenRequired
		}
		return nil, err
	}
	s.cache.Set(ctx, telegramID, projects)
	return projects, nil
}
