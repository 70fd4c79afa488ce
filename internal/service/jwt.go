package service

import (
	"github.com/golang-jwt/jwt/v5"
)

// UserJWTClaims are the claims carried by user access tokens. Tokens are
// issued by the account service; this service only validates them.
type UserJWTClaims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}
