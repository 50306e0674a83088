// Package utils holds small helpers shared across the service.
package utils

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SignToken creates an HS256 token with subject and role claims.
// Production admin tokens are issued by the external identity service;
// this helper exists for local tooling and tests that need a token
// accepted by the JWTAuth middleware.
func SignToken(secret, subject, role string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub":  subject,
		"role": role,
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString([]byte(secret))
}
