package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/christpg03/mine-bot/internal/domain"
)

// DailyRepository define el contrato de persistencia para dailys.
type DailyRepository interface {
	Create(ctx context.Context, daily domain.Daily) error
	ByID(ctx context.Context, id string) (domain.Daily, error)
	ActiveByGroup(ctx context.Context, groupID int64) (domain.Daily, error)
	LatestUnregisteredByGroup(ctx context.Context, groupID int64) (domain.Daily, error)
	Finish(ctx context.Context, id string, endTime time.Time) error
	UpdateParticipants(ctx context.Context, id string, participantIDs []int64) error
	MarkRegistered(ctx context.Context, id string) error
	CountPending(ctx context.Context) (int, error)
}

// PgDailyRepository implementa DailyRepository usando pgxpool.
type PgDailyRepository struct {
	pool *pgxpool.Pool
}

func NewPgDailyRepository(pool *pgxpool.Pool) *PgDailyRepository {
	return &PgDailyRepository{pool: pool}
}

const dailyColumns = `id, team_id, telegram_group_id, start_time, end_time, participant_ids, registered, created_at, updated_at`

func (r *PgDailyRepository) Create(ctx context.Context, daily domain.Daily) error {
	const query = `
		INSERT INTO dailys (id, team_id, telegram_group_id, start_time, participant_ids, registered, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, FALSE, $6, $6)
	`
	participants := daily.ParticipantIDs
	if participants == nil {
		participants = []int64{}
	}
	_, err := r.pool.Exec(ctx, query,
		daily.ID,
		daily.TeamID,
		daily.TelegramGroupID,
		daily.StartTime,
		participants,
		daily.CreatedAt,
	)
	return err
}

func (r *PgDailyRepository) ByID(ctx context.Context, id string) (domain.Daily, error) {
	return r.queryOne(ctx, `SELECT `+dailyColumns+` FROM dailys WHERE id = $1`, id)
}

// ActiveByGroup devuelve la daily abierta (sin end_time) del grupo.
func (r *PgDailyRepository) ActiveByGroup(ctx context.Context, groupID int64) (domain.Daily, error) {
	return r.queryOne(ctx, `SELECT `+dailyColumns+` FROM dailys WHERE telegram_group_id = $1 AND end_time IS NULL`, groupID)
}

// LatestUnregisteredByGroup devuelve la daily terminada más reciente que
// todavía no fue registrada en Redmine.
func (r *PgDailyRepository) LatestUnregisteredByGroup(ctx context.Context, groupID int64) (domain.Daily, error) {
	const query = `
		SELECT ` + dailyColumns + `
		FROM dailys
		WHERE telegram_group_id = $1 AND registered = FALSE AND end_time IS NOT NULL
		ORDER BY end_time DESC
		LIMIT 1
	`
	return r.queryOne(ctx, query, groupID)
}

func (r *PgDailyRepository) Finish(ctx context.Context, id string, endTime time.Time) error {
	_, err := r.pool.Exec(ctx, `UPDATE dailys SET end_time = $2, updated_at = now() WHERE id = $1`, id, endTime)
	return err
}

func (r *PgDailyRepository) UpdateParticipants(ctx context.Context, id string, participantIDs []int64) error {
	if participantIDs == nil {
		participantIDs = []int64{}
	}
	_, err := r.pool.Exec(ctx, `UPDATE dailys SET participant_ids = $2, updated_at = now() WHERE id = $1`, id, participantIDs)
	return err
}

func (r *PgDailyRepository) MarkRegistered(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `UPDATE dailys SET registered = TRUE, updated_at = now() WHERE id = $1`, id)
	return err
}

// CountPending cuenta dailys terminadas aún sin registrar.
func (r *PgDailyRepository) CountPending(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM dailys WHERE registered = FALSE AND end_time IS NOT NULL`).Scan(&n)
	return n, err
}

func (r *PgDailyRepository) queryOne(ctx context.Context, query string, args ...any) (domain.Daily, error) {
	var d domain.Daily
	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&d.ID,
		&d.TeamID,
		&d.TelegramGroupID,
		&d.StartTime,
		&d.EndTime,
		&d.ParticipantIDs,
		&d.Registered,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	return d, err
}
