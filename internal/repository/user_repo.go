package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/christpg03/mine-bot/internal/domain"
)

// UserRepository define el contrato de persistencia para usuarios.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) error
	ByTelegramID(ctx context.Context, telegramID int64) (domain.User, error)
	ByUsername(ctx context.Context, username string) (domain.User, error)
	UpdateToken(ctx context.Context, telegramID int64, encryptedToken, username string) error
	Count(ctx context.Context) (int, error)
}

// PgUserRepository implementa UserRepository usando pgxpool.
type PgUserRepository struct {
	pool *pgxpool.Pool
}

func NewPgUserRepository(pool *pgxpool.Pool) *PgUserRepository {
	return &PgUserRepository{pool: pool}
}

func (r *PgUserRepository) Create(ctx context.Context, user domain.User) error {
	const query = `
		INSERT INTO users (id, telegram_id, username, encrypted_token, created_at, updated_at)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5, $5)
	`
	_, err := r.pool.Exec(ctx, query,
		user.ID,
		user.TelegramID,
		user.Username,
		user.EncryptedToken,
		user.CreatedAt,
	)
	return err
}

func (r *PgUserRepository) ByTelegramID(ctx context.Context, telegramID int64) (domain.User, error) {
	const query = `
		SELECT id, telegram_id, COALESCE(username, ''), COALESCE(encrypted_token, ''), created_at, updated_at
		FROM users
		WHERE telegram_id = $1
	`
	var u domain.User
	err := r.pool.QueryRow(ctx, query, telegramID).Scan(
		&u.ID,
		&u.TelegramID,
		&u.Username,
		&u.EncryptedToken,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	return u, err
}

func (r *PgUserRepository) ByUsername(ctx context.Context, username string) (domain.User, error) {
	const query = `
		SELECT id, telegram_id, COALESCE(username, ''), COALESCE(encrypted_token, ''), created_at, updated_at
		FROM users
		WHERE username = $1
	`
	var u domain.User
	err := r.pool.QueryRow(ctx, query, username).Scan(
		&u.ID,
		&u.TelegramID,
		&u.Username,
		&u.EncryptedToken,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	return u, err
}

// UpdateToken rota el token cifrado y refresca el username del usuario.
func (r *PgUserRepository) UpdateToken(ctx context.Context, telegramID int64, encryptedToken, username string) error {
	const query = `
		UPDATE users
		SET encrypted_token = $2,
		    username = COALESCE(NULLIF($3, ''), username),
		    updated_at = now()
		WHERE telegram_id = $1
	`
	_, err := r.pool.Exec(ctx, query, telegramID, encryptedToken, username)
	return err
}

func (r *PgUserRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM users`).Scan(&n)
	return n, err
}
