package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/christpg03/mine-bot/internal/domain"
)

// TeamRepository define el contrato de persistencia para equipos.
type TeamRepository interface {
	Replace(ctx context.Context, team domain.Team) error
	ByID(ctx context.Context, id string) (domain.Team, error)
	ByGroupID(ctx context.Context, groupID int64) (domain.Team, error)
	ByCreator(ctx context.Context, createdBy int64) ([]domain.Team, error)
	DeleteByGroupAndCreator(ctx context.Context, groupID, createdBy int64) (bool, error)
	Count(ctx context.Context) (int, error)
}

// PgTeamRepository implementa TeamRepository usando pgxpool.
type PgTeamRepository struct {
	pool *pgxpool.Pool
}

func NewPgTeamRepository(pool *pgxpool.Pool) *PgTeamRepository {
	return &PgTeamRepository{pool: pool}
}

// Replace borra cualquier vínculo previo del grupo e inserta el nuevo en la
// misma transacción, para no chocar con el índice único por grupo.
func (r *PgTeamRepository) Replace(ctx context.Context, team domain.Team) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM teams WHERE telegram_group_id = $1`, team.TelegramGroupID); err != nil {
		return err
	}

	const insert = `
		INSERT INTO teams (id, telegram_group_id, redmine_project_id, redmine_project_code, name, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
	`
	if _, err := tx.Exec(ctx, insert,
		team.ID,
		team.TelegramGroupID,
		team.RedmineProjectID,
		team.RedmineProjectCode,
		team.Name,
		team.CreatedBy,
		team.CreatedAt,
	); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

const teamColumns = `id, telegram_group_id, redmine_project_id, redmine_project_code, name, created_by, created_at, updated_at`

func (r *PgTeamRepository) ByID(ctx context.Context, id string) (domain.Team, error) {
	var t domain.Team
	err := r.pool.QueryRow(ctx, `SELECT `+teamColumns+` FROM teams WHERE id = $1`, id).Scan(
		&t.ID,
		&t.TelegramGroupID,
		&t.RedmineProjectID,
		&t.RedmineProjectCode,
		&t.Name,
		&t.CreatedBy,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	return t, err
}

func (r *PgTeamRepository) ByGroupID(ctx context.Context, groupID int64) (domain.Team, error) {
	var t domain.Team
	err := r.pool.QueryRow(ctx, `SELECT `+teamColumns+` FROM teams WHERE telegram_group_id = $1`, groupID).Scan(
		&t.ID,
		&t.TelegramGroupID,
		&t.RedmineProjectID,
		&t.RedmineProjectCode,
		&t.Name,
		&t.CreatedBy,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	return t, err
}

func (r *PgTeamRepository) ByCreator(ctx context.Context, createdBy int64) ([]domain.Team, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+teamColumns+` FROM teams WHERE created_by = $1 ORDER BY created_at`, createdBy)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var teams []domain.Team
	for rows.Next() {
		var t domain.Team
		if err := rows.Scan(
			&t.ID,
			&t.TelegramGroupID,
			&t.RedmineProjectID,
			&t.RedmineProjectCode,
			&t.Name,
			&t.CreatedBy,
			&t.CreatedAt,
			&t.UpdatedAt,
		); err != nil {
			return nil, err
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

// DeleteByGroupAndCreator borra el vínculo solo si el usuario lo creó.
// Devuelve false si no había nada que borrar.
func (r *PgTeamRepository) DeleteByGroupAndCreator(ctx context.Context, groupID, createdBy int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM teams WHERE telegram_group_id = $1 AND created_by = $2`, groupID, createdBy)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PgTeamRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM teams`).Scan(&n)
	return n, err
}
