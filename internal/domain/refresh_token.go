package domain

import (
	"context"
	"time"
)

// RefreshToken is a stored session credential. Only the SHA256 hash of the
// raw token is persisted; the raw value lives in an httpOnly cookie on the
// client.
type RefreshToken struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	UserID    string    `bson:"user_id" json:"user_id"`
	TokenHash string    `bson:"token_hash" json:"-"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UserAgent string    `bson:"user_agent" json:"user_agent"`
	IPAddress string    `bson:"ip_address" json:"ip_address"`
	Revoked   bool      `bson:"revoked" json:"revoked"`
}

// IsExpired checks if the refresh token has expired
func (r *RefreshToken) IsExpired() bool {
	return time.Now().After(r.ExpiresAt)
}

// IsValid checks if the token is usable (not expired and not revoked)
func (r *RefreshToken) IsValid() bool {
	return !r.IsExpired() && !r.Revoked
}

// RefreshTokenRepository defines the interface for refresh token storage
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *RefreshToken) error
	FindByHash(ctx context.Context, hash string) (*RefreshToken, error)
	RevokeByHash(ctx context.Context, hash string) error
	// RevokeAllByUserID force-logs-out every session for a user
	RevokeAllByUserID(ctx context.Context, userID string) error
	DeleteExpired(ctx context.Context) error
}
