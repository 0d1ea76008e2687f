package auth

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/qmedica/catalog-backend/pkg/enums"
)

// SessionPayload captures the data available when minting a session cookie.
type SessionPayload struct {
	SessionID string
	UserID    uint
	Email     string
	Role      enums.Role
}

// SessionClaims represents the typed JWT carried inside the session cookie.
// The jti field doubles as the Redis session key, so revoking the server-side
// record invalidates the cookie even before its expiry.
type SessionClaims struct {
	UserID uint       `json:"user_id"`
	Email  string     `json:"email"`
	Role   enums.Role `json:"role"`
	jwt.RegisteredClaims
}
