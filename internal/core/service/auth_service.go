package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/centralauth/centralauth/internal/api/metrics"
	"github.com/centralauth/centralauth/internal/core/domain"
	"github.com/centralauth/centralauth/internal/core/ports"
	"github.com/centralauth/centralauth/internal/core/token"
)

// dummyHash is a bcrypt digest of a throwaway value. Login runs a compare
// against it when the email is unknown so both failure paths cost one bcrypt
// verification and stay indistinguishable to an outside observer.
// reuseGrace separates rotation-race losers from genuine replay. A token
// revoked within this window lost a concurrent refresh race and fails
// InvalidToken; one revoked earlier is evidence of theft.
const reuseGrace = 10 * time.Second

var dummyHash = func() []byte {
	h, err := bcrypt.GenerateFromPassword([]byte("centralauth-dummy"), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return h
}()

// AuthService is the token and session authority: it issues, rotates, and
// revokes access/refresh pairs. It holds no mutable state of its own; all
// cross-request coordination goes through the session ledger, so any number
// of replicas can run against one store.
type AuthService struct {
	users      ports.UserRepository
	sessions   ports.SessionLedger
	codec      *token.Codec
	refreshTTL time.Duration
	log        zerolog.Logger
}

func NewAuthService(users ports.UserRepository, sessions ports.SessionLedger, codec *token.Codec, refreshTTL time.Duration, log zerolog.Logger) *AuthService {
	if refreshTTL <= 0 {
		refreshTTL = 30 * 24 * time.Hour
	}
	return &AuthService{
		users:      users,
		sessions:   sessions,
		codec:      codec,
		refreshTTL: refreshTTL,
		log:        log,
	}
}

// Register creates a new user. Duplicate emails surface as
// domain.ErrDuplicateEmail via the repository's unique index, never through a
// read-then-write check.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		Email:        in.Email,
		PasswordHash: string(hash),
		FullName:     in.FullName,
		DateOfBirth:  in.DateOfBirth,
		Roles:        []string{domain.RoleUser},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		return "", err
	}

	s.log.Info().Str("user_id", created.ID).Msg("user registered")
	return created.ID, nil
}

// Login verifies credentials and opens a new session. Unknown email and wrong
// password both return domain.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string, device ports.DeviceInput) (*ports.TokenPairResult, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	pair, err := s.issuePair(ctx, user, device, "")
	if err != nil {
		return nil, err
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	s.log.Info().Str("user_id", user.ID).Msg("login")
	return pair, nil
}

// Refresh exchanges a live refresh token for a new access/refresh pair,
// rotating the session. Exactly one of N concurrent calls bearing the same
// token wins: the ledger's CompareAndRevoke is the arbiter. A token that was
// already rotated is treated as evidence of theft and every session of the
// owning user is revoked.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string, device ports.DeviceInput) (*ports.TokenPairResult, error) {
	sess, err := s.sessions.GetByTokenHash(ctx, token.HashOpaque(refreshToken))
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			metrics.TokenRefreshTotal.WithLabelValues("invalid").Inc()
			return nil, domain.ErrInvalidToken
		}
		return nil, err
	}

	now := time.Now().UTC()

	if sess.Revoked {
		if now.Sub(sess.RevokedAt) <= reuseGrace {
			metrics.TokenRefreshTotal.WithLabelValues("lost_race").Inc()
			return nil, domain.ErrInvalidToken
		}
		metrics.TokenReuseDetectedTotal.Inc()
		count, revErr := s.sessions.RevokeAllForUser(ctx, sess.UserID)
		if revErr != nil {
			s.log.Error().Err(revErr).Str("user_id", sess.UserID).Msg("failed to revoke sessions after reuse")
		} else {
			metrics.SessionsRevokedTotal.Add(float64(count))
		}
		s.log.Warn().Str("user_id", sess.UserID).Str("session_id", sess.ID).Msg("refresh token reuse detected")
		return nil, domain.ErrTokenReuseDetected
	}

	if !now.Before(sess.ExpiresAt) {
		metrics.TokenRefreshTotal.WithLabelValues("expired").Inc()
		return nil, domain.ErrInvalidToken
	}

	// Atomic conditional revoke decides the rotation race. Losers see the
	// flag already flipped and report InvalidToken; they must not retry.
	won, err := s.sessions.CompareAndRevoke(ctx, sess.ID)
	if err != nil {
		return nil, err
	}
	if !won {
		metrics.TokenRefreshTotal.WithLabelValues("lost_race").Inc()
		return nil, domain.ErrInvalidToken
	}
	metrics.SessionsRevokedTotal.Inc()

	user, err := s.users.FindByID(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}

	pair, err := s.issuePair(ctx, user, device, sess.ID)
	if err != nil {
		return nil, err
	}

	metrics.TokenRefreshTotal.WithLabelValues("success").Inc()
	s.log.Info().Str("user_id", user.ID).Str("rotated_from", sess.ID).Msg("token refreshed")
	return pair, nil
}

// Logout revokes the session matching the presented refresh token. It is
// idempotent: an unknown or already-revoked token is not an error.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	sess, err := s.sessions.GetByTokenHash(ctx, token.HashOpaque(refreshToken))
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil
		}
		return err
	}

	revoked, err := s.sessions.CompareAndRevoke(ctx, sess.ID)
	if err != nil {
		return err
	}
	if revoked {
		metrics.SessionsRevokedTotal.Inc()
		s.log.Info().Str("user_id", sess.UserID).Str("session_id", sess.ID).Msg("logout")
	}
	return nil
}

// LogoutAll revokes every live session for the user and returns the count.
func (s *AuthService) LogoutAll(ctx context.Context, userID string) (int64, error) {
	count, err := s.sessions.RevokeAllForUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	metrics.SessionsRevokedTotal.Add(float64(count))
	s.log.Info().Str("user_id", userID).Int64("sessions_ended", count).Msg("logout all")
	return count, nil
}

// ValidateAccessToken verifies signature and expiry only; no ledger lookup.
func (s *AuthService) ValidateAccessToken(tokenString string) (*token.Claims, error) {
	return s.codec.Verify(tokenString)
}

// issuePair mints an access token plus a fresh refresh session. rotatedFrom
// links the superseded session for audit when the pair comes from Refresh.
func (s *AuthService) issuePair(ctx context.Context, user *domain.User, device ports.DeviceInput, rotatedFrom string) (*ports.TokenPairResult, error) {
	now := time.Now().UTC()

	access, expiresAt, err := s.codec.Issue(user, now)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}

	refresh, refreshHash, err := token.NewOpaque()
	if err != nil {
		return nil, err
	}

	_, err = s.sessions.Create(ctx, &domain.Session{
		UserID:           user.ID,
		RefreshTokenHash: refreshHash,
		IssuedAt:         now,
		ExpiresAt:        now.Add(s.refreshTTL),
		UserAgent:        device.UserAgent,
		IPAddress:        device.IPAddress,
		RotatedFrom:      rotatedFrom,
	})
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	return &ports.TokenPairResult{
		AccessToken:  access,
		RefreshToken: refresh,
		UserID:       user.ID,
		ExpiresAt:    expiresAt,
	}, nil
}
