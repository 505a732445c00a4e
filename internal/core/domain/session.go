package domain

import (
	"errors"
	"time"
)

var ErrInvalidToken = errors.New("invalid or expired token")
var ErrTokenExpired = errors.New("token expired")
var ErrTokenReuseDetected = errors.New("refresh token reuse detected")
var ErrSessionNotFound = errors.New("session not found")

// Session is one active refresh-token grant. The raw refresh token is never
// stored; only its SHA-256 digest. Rotation supersedes a session instead of
// deleting it, so the RotatedFrom chain remains auditable until the retention
// sweep removes terminal rows.
type Session struct {
	ID               string    `json:"id" bson:"_id,omitempty"`
	UserID           string    `json:"user_id" bson:"user_id"`
	RefreshTokenHash string    `json:"-" bson:"refresh_token_hash"`
	IssuedAt         time.Time `json:"issued_at" bson:"issued_at"`
	ExpiresAt        time.Time `json:"expires_at" bson:"expires_at"`
	UserAgent        string    `json:"user_agent,omitempty" bson:"user_agent,omitempty"`
	IPAddress        string    `json:"ip_address,omitempty" bson:"ip_address,omitempty"`
	Revoked          bool      `json:"revoked" bson:"revoked"`
	RevokedAt        time.Time `json:"revoked_at,omitempty" bson:"revoked_at,omitempty"`
	RotatedFrom      string    `json:"rotated_from,omitempty" bson:"rotated_from,omitempty"`
}

// Live reports whether the session can still be exchanged for a new pair.
func (s *Session) Live(now time.Time) bool {
	return !s.Revoked && now.Before(s.ExpiresAt)
}
