package service

import (
	"context"
	"errors"
	"fmt"
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
	ErrCallActive     = errors.New("a call is already in progress")
	ErrNoActiveCall   = errors.New("no call in progress")
	ErrCallStillOpen  = errors.New("current call has not ended")
	ErrNoPendingDaily = errors.New("no pending daily to register")
	ErrWindowExpired  = errors.New("registration window expired")
)

// DefaultRegisterWindow es el plazo máximo entre el fin de la llamada y el
// comando /daily.
const DefaultRegisterWindow = 30 * time.Minute

// DailyService rastrea videollamadas por equipo y las vuelca en Redmine.
type DailyService struct {
	logger *zap.Logger
	dailys repository.DailyRepository
	teams  repository.TeamRepository
	tokens TokenSource
	rm     rm.Factory
	window time.Duration
	now    func() time.Time
}

func NewDailyService(logger *zap.Logger, dailys repository.DailyRepository, teams repository.TeamRepository, tokens TokenSource, factory rm.Factory, window time.Duration) *DailyService {
	if window <= 0 {
		window = DefaultRegisterWindow
	}
	return &DailyService{
		logger: logger,
		dailys: dailys,
		teams:  teams,
		tokens: tokens,
		rm:     factory,
		window: window,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Window devuelve el plazo vigente para registrar una daily terminada.
func (s *DailyService) Window() time.Duration {
	return s.window
}

// StartCall abre la daily del grupo al iniciar una videollamada. Grupos sin
// equipo se ignoran; con una llamada ya abierta no se crea otra.
func (s *DailyService) StartCall(ctx context.Context, groupID int64) (domain.Daily, error) {
	team, err := s.teams.ByGroupID(ctx, groupID)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Daily{}, ErrTeamNotFound
	}
	if err != nil {
		return domain.Daily{}, err
	}

	if _, err := s.dailys.ActiveByGroup(ctx, groupID); err == nil {
		return domain.Daily{}, ErrCallActive
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return domain.Daily{}, err
	}

	now := s.now()
	daily := domain.Daily{
		ID:              uuid.NewString(),
		TeamID:          team.ID,
		TelegramGroupID: groupID,
		StartTime:       now,
		ParticipantIDs:  []int64{},
		CreatedAt:       now,
	}
	if err := s.dailys.Create(ctx, daily); err != nil {
		return domain.Daily{}, err
	}

	s.logger.Info("call started",
		zap.Int64("group_id", groupID),
		zap.String("team", team.Name),
		zap.String("daily_id", daily.ID),
	)
	return daily, nil
}

// EndCall cierra la daily abierta del grupo y devuelve el registro con la
// hora de fin ya aplicada.
func (s *DailyService) EndCall(ctx context.Context, groupID int64) (domain.Daily, error) {
	daily, err := s.dailys.ActiveByGroup(ctx, groupID)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Daily{}, ErrNoActiveCall
	}
	if err != nil {
		return domain.Daily{}, err
	}

	end := s.now()
	if err := s.dailys.Finish(ctx, daily.ID, end); err != nil {
		return domain.Daily{}, err
	}
	daily.EndTime = &end

	s.logger.Info("call ended",
		zap.Int64("group_id", groupID),
		zap.String("daily_id", daily.ID),
		zap.Duration("duration", daily.Duration()),
	)
	return daily, nil
}

// AddParticipants suma ids de participantes a la llamada abierta del grupo.
// Sin llamada abierta es un no-op; el evento de Telegram puede llegar tarde.
func (s *DailyService) AddParticipants(ctx context.Context, groupID int64, participantIDs []int64) error {
	if len(participantIDs) == 0 {
		return nil
	}
	daily, err := s.dailys.ActiveByGroup(ctx, groupID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil
	}
	if err != nil {
		return err
	}

	seen := make(map[int64]bool, len(daily.ParticipantIDs))
	merged := daily.ParticipantIDs
	for _, id := range daily.ParticipantIDs {
		seen[id] = true
	}
	for _, id := range participantIDs {
		if !seen[id] {
			seen[id] = true
			merged = append(merged, id)
		}
	}
	if len(merged) == len(daily.ParticipantIDs) {
		return nil
	}
	return s.dailys.UpdateParticipants(ctx, daily.ID, merged)
}

type RegisterInput struct {
	GroupID     int64
	RequestedBy int64
	Usernames   []string
}

// RegisterResult resume el registro en Redmine: la tarea creada y el
// resultado por participante mencionado.
type RegisterResult struct {
	IssueID  int
	IssueURL string
	Duration time.Duration

	Logged       []string
	WithoutToken []string
	Failed       []string
	Unknown      []string
}

// Register vuelca la última daily terminada del grupo en Redmine: crea la
// tarea y registra el tiempo de cada participante con su propio token.
func (s *DailyService) Register(ctx context.Context, input RegisterInput) (RegisterResult, error) {
	team, err := s.teams.ByGroupID(ctx, input.GroupID)
	if errors.Is(err, pgx.ErrNoRows) {
		return RegisterResult{}, ErrTeamNotFound
	}
	if err != nil {
		return RegisterResult{}, err
	}

	callerToken, err := s.tokens.TokenByTelegramID(ctx, input.RequestedBy)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) || errors.Is(err, ErrTokenNotSet) {
			return RegisterResult{}, ErrTokenRequired
		}
		return RegisterResult{}, err
	}

	daily, err := s.dailys.LatestUnregisteredByGroup(ctx, input.GroupID)
	if errors.Is(err, pgx.ErrNoRows) {
		if _, activeErr := s.dailys.ActiveByGroup(ctx, input.GroupID); activeErr == nil {
			return RegisterResult{}, ErrCallStillOpen
		}
		return RegisterResult{}, ErrNoPendingDaily
	}
	if err != nil {
		return RegisterResult{}, err
	}

	now := s.now()
	if now.Sub(*daily.EndTime) > s.window {
		return RegisterResult{}, ErrWindowExpired
	}

	caller := s.rm(callerToken)
	account, err := caller.CurrentUser(ctx)
	if err != nil {
		if errors.Is(err, rm.ErrUnauthorized) {
			return RegisterResult{}, ErrTokenRequired
		}
		return RegisterResult{}, err
	}

	subject := fmt.Sprintf("[Daily][%s] %s", team.Name, now.Format("02-01-2006"))
	issue, err := caller.CreateIssue(ctx, rm.IssueInput{
		ProjectID:    team.RedmineProjectID,
		Subject:      subject,
		AssignedToID: account.ID,
		StartDate:    now,
		DueDate:      now,
	})
	if err != nil {
		return RegisterResult{}, fmt.Errorf("create daily issue: %w", err)
	}

	result := RegisterResult{
		IssueID:  issue.ID,
		IssueURL: caller.IssueURL(issue.ID),
		Duration: daily.Duration(),
	}
	hours := daily.Duration().Hours()

	for _, username := range dedupeUsernames(input.Usernames) {
		token, err := s.tokens.TokenByUsername(ctx, username)
		switch {
		case errors.Is(err, ErrUserNotFound):
			result.Unknown = append(result.Unknown, username)
			continue
		case errors.Is(err, ErrTokenNotSet):
			result.WithoutToken = append(result.WithoutToken, username)
			continue
		case err != nil:
			s.logger.Error("resolve participant token", zap.String("username", username), zap.Error(err))
			result.Failed = append(result.Failed, username)
			continue
		}

		participant := s.rm(token)
		_, err = participant.CreateTimeEntry(ctx, rm.TimeEntryInput{
			IssueID:    issue.ID,
			Hours:      hours,
			SpentOn:    now,
			Comments:   "Daily",
			ActivityID: s.pickActivity(ctx, participant),
		})
		if err != nil {
			s.logger.Error("log time failed",
				zap.String("username", username),
				zap.Int("issue_id", issue.ID),
				zap.Error(err),
			)
			result.Failed = append(result.Failed, username)
			continue
		}
		result.Logged = append(result.Logged, username)
	}

	if err := s.dailys.MarkRegistered(ctx, daily.ID); err != nil {
		return result, fmt.Errorf("mark daily registered: %w", err)
	}

	s.logger.Info("daily registered",
		zap.Int64("group_id", input.GroupID),
		zap.Int("issue_id", issue.ID),
		zap.Int("logged", len(result.Logged)),
		zap.Int("without_token", len(result.WithoutToken)),
		zap.Int("failed", len(result.Failed)),
		zap.Int("unknown", len(result.Unknown)),
	)
	return result, nil
}

// pickActivity elige la actividad "meeting" si existe, si no la primera
// disponible. Cero deja que Redmine use su actividad por defecto.
func (s *DailyService) pickActivity(ctx context.Context, client rm.Client) int {
	activities, err := client.Activities(ctx)
	if err != nil || len(activities) == 0 {
		return 0
	}
	for _, a := range activities {
		if strings.Contains(strings.ToLower(a.Name), "meeting") {
			return a.ID
		}
	}
	return activities[0].ID
}

func dedupeUsernames(usernames []string) []string {
	seen := make(map[string]bool, len(usernames))
	var out []string
	for _, u := range usernames {
		u = strings.TrimPrefix(strings.TrimSpace(u), "@")
		if u == "" || seen[strings.ToLower(u)] {
			continue
		}
		seen[strings.ToLower(u)] = true
		out = append(out, u)
	}
	return out
}
