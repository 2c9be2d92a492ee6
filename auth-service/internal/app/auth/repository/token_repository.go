package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"staynest/auth-service/internal/app/auth/entity"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// tokenRepository - хранилище токенов в PostgreSQL.
// Используется когда TOKEN_STORE=postgres; истекшие записи
// убирает CleanupExpiredTokens.
type tokenRepository struct {
	db *pgxpool.Pool
}

// NewTokenRepository создает репозиторий токенов поверх PostgreSQL
func NewTokenRepository(db *pgxpool.Pool) TokenRepository {
	return &tokenRepository{db: db}
}

func (r *tokenRepository) SaveRefreshToken(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error {
	query := `
		INSERT INTO refresh_tokens (user_id, token, expires_at, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.db.Exec(ctx, query, userID, token, expiresAt, time.Now())
	if err != nil {
		return fmt.Errorf("failed to save refresh token: %w", err)
	}

	return nil
}

func (r *tokenRepository) GetRefreshToken(ctx context.Context, token string) (*entity.RefreshToken, error) {
	query := `
		SELECT id, user_id, token, expires_at, created_at
		FROM refresh_tokens
		WHERE token = $1 AND expires_at > $2
	`

	var refreshToken entity.RefreshToken
	err := r.db.QueryRow(ctx, query, token, time.Now()).Scan(
		&refreshToken.ID,
		&refreshToken.UserID,
		&refreshToken.Token,
		&refreshToken.ExpiresAt,
		&refreshToken.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get refresh token: %w", err)
	}

	return &refreshToken, nil
}

func (r *tokenRepository) DeleteRefreshToken(ctx context.Context, token string) error {
	query := `DELETE FROM refresh_tokens WHERE token = $1`

	if _, err := r.db.Exec(ctx, query, token); err != nil {
		return fmt.Errorf("failed to delete refresh token: %w", err)
	}

	return nil
}

func (r *tokenRepository) DeleteUserRefreshTokens(ctx context.Context, userID uuid.UUID) error {
	query := `DELETE FROM refresh_tokens WHERE user_id = $1`

	if _, err := r.db.Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to delete user refresh tokens: %w", err)
	}

	return nil
}

func (r *tokenRepository) AddToBlacklist(ctx context.Context, token string, expiresAt time.Time) error {
	if !expiresAt.After(time.Now()) {
		// Токен уже истек, черный список не нужен
		return nil
	}

	query := `
		INSERT INTO blacklisted_tokens (token, expires_at, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (token) DO NOTHING
	`

	if _, err := r.db.Exec(ctx, query, token, expiresAt, time.Now()); err != nil {
		return fmt.Errorf("failed to blacklist token: %w", err)
	}

	return nil
}

func (r *tokenRepository) IsBlacklisted(ctx context.Context, token string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM blacklisted_tokens WHERE token = $1 AND expires_at > $2)`

	var blacklisted bool
	if err := r.db.QueryRow(ctx, query, token, time.Now()).Scan(&blacklisted); err != nil {
		return false, fmt.Errorf("failed to check blacklist: %w", err)
	}

	return blacklisted, nil
}

// CleanupExpiredTokens удаляет истекшие refresh токены и записи черного списка
func (r *tokenRepository) CleanupExpiredTokens(ctx context.Context) error {
	now := time.Now()

	if _, err := r.db.Exec(ctx, `DELETE FROM refresh_tokens WHERE expires_at <= $1`, now); err != nil {
		return fmt.Errorf("failed to cleanup refresh tokens: %w", err)
	}

	if _, err := r.db.Exec(ctx, `DELETE FROM blacklisted_tokens WHERE expires_at <= $1`, now); err != nil {
		return fmt.Errorf("failed to cleanup blacklisted tokens: %w", err)
	}

	return nil
}
