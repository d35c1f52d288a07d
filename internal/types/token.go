package types

import (
	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims represents the claims in an admin service token
type TokenClaims struct {
	jwt.RegisteredClaims
	Service string `json:"service"`
	Role    string `json:"role"`
}
