package service

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/christpg03/mine-bot/internal/domain"
	rm "github.com/christpg03/mine-bot/internal/redmine"
)

type mockUserRepo struct {
	byTelegramID map[int64]domain.User
	byUsername   map[string]int64
	createErr    error
	updateErr    error
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		byTelegramID: make(map[int64]domain.User),
		byUsername:   make(map[string]int64),
	}
}

func (m *mockUserRepo) Create(_ context.Context, user domain.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.byTelegramID[user.TelegramID] = user
	if user.Username != "" {
		m.byUsername[user.Username] = user.TelegramID
	}
	return nil
}

func (m *mockUserRepo) ByTelegramID(_ context.Context, telegramID int64) (domain.User, error) {
	user, ok := m.byTelegramID[telegramID]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return user, nil
}

func (m *mockUserRepo) ByUsername(_ context.Context, username string) (domain.User, error) {
	id, ok := m.byUsername[username]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return m.byTelegramID[id], nil
}

func (m *mockUserRepo) UpdateToken(_ context.Context, telegramID int64, encryptedToken, username string) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	user, ok := m.byTelegramID[telegramID]
	if !ok {
		return pgx.ErrNoRows
	}
	user.EncryptedToken = encryptedToken
	if username != "" {
		user.Username = username
		m.byUsername[username] = telegramID
	}
	m.byTelegramID[telegramID] = user
	return nil
}

func (m *mockUserRepo) Count(_ context.Context) (int, error) {
	return len(m.byTelegramID), nil
}

type mockTeamRepo struct {
	byGroup    map[int64]domain.Team
	replaceErr error
}

func newMockTeamRepo() *mockTeamRepo {
	return &mockTeamRepo{byGroup: make(map[int64]domain.Team)}
}

func (m *mockTeamRepo) Replace(_ context.Context, team domain.Team) error {
	if m.replaceErr != nil {
		return m.replaceErr
	}
	m.byGroup[team.TelegramGroupID] = team
	return nil
}

func (m *mockTeamRepo) ByID(_ context.Context, id string) (domain.Team, error) {
	for _, t := range m.byGroup {
		if t.ID == id {
			return t, nil
		}
	}
	return domain.Team{}, pgx.ErrNoRows
}

func (m *mockTeamRepo) ByGroupID(_ context.Context, groupID int64) (domain.Team, error) {
	team, ok := m.byGroup[groupID]
	if !ok {
		return domain.Team{}, pgx.ErrNoRows
	}
	return team, nil
}

func (m *mockTeamRepo) ByCreator(_ context.Context, createdBy int64) ([]domain.Team, error) {
	var teams []domain.Team
	for _, t := range m.byGroup {
		if t.CreatedBy == createdBy {
			teams = append(teams, t)
		}
	}
	return teams, nil
}

func (m *mockTeamRepo) DeleteByGroupAndCreator(_ context.Context, groupID, createdBy int64) (bool, error) {
	team, ok := m.byGroup[groupID]
	if !ok || team.CreatedBy != createdBy {
		return false, nil
	}
	delete(m.byGroup, groupID)
	return true, nil
}

func (m *mockTeamRepo) Count(_ context.Context) (int, error) {
	return len(m.byGroup), nil
}

type mockDailyRepo struct {
	byID      map[string]domain.Daily
	createErr error
	markedErr error
	markedIDs []string
	finished  map[string]time.Time
}

func newMockDailyRepo() *mockDailyRepo {
	return &mockDailyRepo{
		byID:     make(map[string]domain.Daily),
		finished: make(map[string]time.Time),
	}
}

func (m *mockDailyRepo) Create(_ context.Context, daily domain.Daily) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.byID[daily.ID] = daily
	return nil
}

func (m *mockDailyRepo) ByID(_ context.Context, id string) (domain.Daily, error) {
	d, ok := m.byID[id]
	if !ok {
		return domain.Daily{}, pgx.ErrNoRows
	}
	return d, nil
}

func (m *mockDailyRepo) ActiveByGroup(_ context.Context, groupID int64) (domain.Daily, error) {
	for _, d := range m.byID {
		if d.TelegramGroupID == groupID && d.EndTime == nil {
			return d, nil
		}
	}
	return domain.Daily{}, pgx.ErrNoRows
}

func (m *mockDailyRepo) LatestUnregisteredByGroup(_ context.Context, groupID int64) (domain.Daily, error) {
	var latest domain.Daily
	found := false
	for _, d := range m.byID {
		if d.TelegramGroupID != groupID || d.Registered || d.EndTime == nil {
			continue
		}
		if !found || d.EndTime.After(*latest.EndTime) {
			latest = d
			found = true
		}
	}
	if !found {
		return domain.Daily{}, pgx.ErrNoRows
	}
	return latest, nil
}

func (m *mockDailyRepo) Finish(_ context.Context, id string, endTime time.Time) error {
	d, ok := m.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	d.EndTime = &endTime
	m.byID[id] = d
	m.finished[id] = endTime
	return nil
}

func (m *mockDailyRepo) UpdateParticipants(_ context.Context, id string, participantIDs []int64) error {
	d, ok := m.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	d.ParticipantIDs = participantIDs
	m.byID[id] = d
	return nil
}

func (m *mockDailyRepo) MarkRegistered(_ context.Context, id string) error {
	if m.markedErr != nil {
		return m.markedErr
	}
	d, ok := m.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	d.Registered = true
	m.byID[id] = d
	m.markedIDs = append(m.markedIDs, id)
	return nil
}

func (m *mockDailyRepo) CountPending(_ context.Context) (int, error) {
	n := 0
	for _, d := range m.byID {
		if !d.Registered && d.EndTime != nil {
			n++
		}
	}
	return n, nil
}

// mockTokenSource resuelve tokens en claro sin pasar por el cifrador.
type mockTokenSource struct {
	byTelegramID map[int64]string
	byUsername   map[string]string
	errByUser    map[string]error
}

func newMockTokenSource() *mockTokenSource {
	return &mockTokenSource{
		byTelegramID: make(map[int64]string),
		byUsername:   make(map[string]string),
		errByUser:    make(map[string]error),
	}
}

func (m *mockTokenSource) TokenByTelegramID(_ context.Context, telegramID int64) (string, error) {
	token, ok := m.byTelegramID[telegramID]
	if !ok {
		return "", ErrUserNotFound
	}
	if token == "" {
		return "", ErrTokenNotSet
	}
	return token, nil
}

func (m *mockTokenSource) TokenByUsername(_ context.Context, username string) (string, error) {
	if err, ok := m.errByUser[username]; ok {
		return "", err
	}
	token, ok := m.byUsername[username]
	if !ok {
		return "", ErrUserNotFound
	}
	if token == "" {
		return "", ErrTokenNotSet
	}
	return token, nil
}

// mockFactory entrega un cliente por token y registra qué tokens se usaron.
type mockFactory struct {
	byToken map[string]*rm.MockClient
	used    []string
}

func newMockFactory() *mockFactory {
	return &mockFactory{byToken: make(map[string]*rm.MockClient)}
}

func (f *mockFactory) client(token string) *rm.MockClient {
	c, ok := f.byToken[token]
	if !ok {
		c = &rm.MockClient{}
		f.byToken[token] = c
	}
	return c
}

func (f *mockFactory) factory() rm.Factory {
	return func(apiKey string) rm.Client {
		f.used = append(f.used, apiKey)
		return f.client(apiKey)
	}
}
