package service

import (
	"context"

	"staynest/auth-service/internal/app/auth/entity"
	"staynest/auth-service/internal/app/auth/util"

	"github.com/google/uuid"
)

type AuthServiceInterface interface {
	Register(ctx context.Context, req *entity.RegisterRequest) (*entity.AuthResponse, error)
	Login(ctx context.Context, req *entity.LoginRequest) (*entity.AuthResponse, error)
	RefreshTokens(ctx context.Context, refreshToken string) (*entity.TokenPair, error)
	Logout(ctx context.Context, accessToken string) error
	ValidateToken(ctx context.Context, accessToken string) (*util.JWTClaims, error)
	GetCurrentUser(ctx context.Context, userID uuid.UUID) (*entity.User, error)
}

type UserServiceInterface interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	List(ctx context.Context, limit, offset int) (*entity.UserListResponse, error)
	Update(ctx context.Context, id uuid.UUID, req *entity.UpdateUserRequest) (*entity.User, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, req *entity.UpdatePasswordRequest) error
	UpdateRole(ctx context.Context, id uuid.UUID, role entity.Role) (*entity.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
