package ports

import (
	"context"
	"time"

	"github.com/centralauth/centralauth/internal/core/token"
)

// RegisterInput carries all data needed to create a new user.
type RegisterInput struct {
	Email       string
	Password    string
	FullName    string
	DateOfBirth time.Time
}

// DeviceInput holds client metadata recorded on the session.
type DeviceInput struct {
	UserAgent string
	IPAddress string
}

// TokenPairResult is returned by Login and Refresh.
type TokenPairResult struct {
	AccessToken  string
	RefreshToken string
	UserID       string
	ExpiresAt    time.Time
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (string, error)
	Login(ctx context.Context, email, password string, device DeviceInput) (*TokenPairResult, error)
	Refresh(ctx context.Context, refreshToken string, device DeviceInput) (*TokenPairResult, error)
	Logout(ctx context.Context, refreshToken string) error
	LogoutAll(ctx context.Context, userID string) (int64, error)
	ValidateAccessToken(token string) (*token.Claims, error)
}
