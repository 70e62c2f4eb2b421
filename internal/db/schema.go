package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Esquema mínimo del bot. Se aplica en el arranque; idempotente.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id              UUID PRIMARY KEY,
		telegram_id     BIGINT NOT NULL UNIQUE,
		username        TEXT,
		encrypted_token TEXT,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_users_username ON users (username)`,
	`CREATE TABLE IF NOT EXISTS teams (
		id                   UUID PRIMARY KEY,
		telegram_group_id    BIGINT NOT NULL UNIQUE,
		redmine_project_id   INTEGER NOT NULL,
		redmine_project_code TEXT NOT NULL,
		name                 TEXT NOT NULL,
		created_by           BIGINT NOT NULL,
		created_at           TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at           TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_teams_created_by ON teams (created_by)`,
	`CREATE TABLE IF NOT EXISTS dailys (
		id                UUID PRIMARY KEY,
		team_id           UUID NOT NULL REFERENCES teams (id) ON DELETE CASCADE,
		telegram_group_id BIGINT NOT NULL,
		start_time        TIMESTAMPTZ NOT NULL,
		end_time          TIMESTAMPTZ,
		participant_ids   BIGINT[] NOT NULL DEFAULT '{}',
		registered        BOOLEAN NOT NULL DEFAULT FALSE,
		created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at        TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_dailys_group ON dailys (telegram_group_id)`,
}

// Init crea las tablas del bot si no existen.
func Init(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schemaStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
