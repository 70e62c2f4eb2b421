package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/christpg03/mine-bot/internal/crypto"
	"github.com/christpg03/mine-bot/internal/domain"
	"github.com/christpg03/mine-bot/internal/repository"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrTokenNotSet  = errors.New("redmine token not set")
	ErrInvalidToken = errors.New("invalid redmine token")
)

// TokenSource resuelve el token de Redmine (en claro) de un usuario.
// UserService lo implementa; los demás servicios lo reciben como interfaz.
type TokenSource interface {
	TokenByTelegramID(ctx context.Context, telegramID int64) (string, error)
	TokenByUsername(ctx context.Context, username string) (string, error)
}

// UserService coordina reglas de negocio para usuarios del bot.
type UserService struct {
	logger *zap.Logger
	users  repository.UserRepository
	cipher *crypto.TokenCipher
}

func NewUserService(logger *zap.Logger, users repository.UserRepository, cipher *crypto.TokenCipher) *UserService {
	return &UserService{
		logger: logger,
		users:  users,
		cipher: cipher,
	}
}

// SetToken guarda (o rota) el token de Redmine del usuario, cifrado.
// Devuelve true si el usuario fue creado en esta llamada.
func (s *UserService) SetToken(ctx context.Context, telegramID int64, username, token string) (bool, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return false, ErrInvalidToken
	}
	username = strings.TrimPrefix(strings.TrimSpace(username), "@")

	sealed, err := s.cipher.Encrypt(token)
	if err != nil {
		return false, err
	}

	_, err = s.users.ByTelegramID(ctx, telegramID)
	switch {
	case err == nil:
		if err := s.users.UpdateToken(ctx, telegramID, sealed, username); err != nil {
			return false, err
		}
		s.logger.Info("redmine token rotated", zap.Int64("telegram_id", telegramID))
		return false, nil
	case errors.Is(err, pgx.ErrNoRows):
		user := domain.User{
			ID:             uuid.NewString(),
			TelegramID:     telegramID,
			Username:       username,
			EncryptedToken: sealed,
			CreatedAt:      time.Now().UTC(),
		}
		if err := s.users.Create(ctx, user); err != nil {
			return false, err
		}
		s.logger.Info("user created with redmine token", zap.Int64("telegram_id", telegramID))
		return true, nil
	default:
		return false, err
	}
}

// ByTelegramID devuelve el usuario registrado para ese id de Telegram.
func (s *UserService) ByTelegramID(ctx context.Context, telegramID int64) (domain.User, error) {
	user, err := s.users.ByTelegramID(ctx, telegramID)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, ErrUserNotFound
	}
	return user, err
}

// TokenByTelegramID descifra y devuelve el token del usuario.
func (s *UserService) TokenByTelegramID(ctx context.Context, telegramID int64) (string, error) {
	user, err := s.ByTelegramID(ctx, telegramID)
	if err != nil {
		return "", err
	}
	return s.decryptToken(user)
}

// TokenByUsername descifra y devuelve el token del usuario con ese username.
func (s *UserService) TokenByUsername(ctx context.Context, username string) (string, error) {
	username = strings.TrimPrefix(strings.TrimSpace(username), "@")
	user, err := s.users.ByUsername(ctx, username)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrUserNotFound
	}
	if err != nil {
		return "", err
	}
	return s.decryptToken(user)
}

func (s *UserService) decryptToken(user domain.User) (string, error) {
	if !user.HasToken() {
		return "", ErrTokenNotSet
	}
	token, err := s.cipher.Decrypt(user.EncryptedToken)
	if err != nil {
		// Token ilegible (clave rotada o fila corrupta): para el flujo del
		// bot equivale a no tener token configurado.
		s.logger.Error("stored token unreadable", zap.Int64("telegram_id", user.TelegramID), zap.Error(err))
		return "", ErrTokenNotSet
	}
	return token, nil
}
