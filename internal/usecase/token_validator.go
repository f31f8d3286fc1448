package usecase

import (
	"flashsale/internal/pkg/jwt"
)

// TokenValidator is the narrow surface the auth middleware needs.
type TokenValidator interface {
	ValidateToken(token string) (int64, error)
}

type jwtTokenValidator struct {
	jwt *jwt.Service
}

func NewTokenValidator(jwtService *jwt.Service) TokenValidator {
	return &jwtTokenValidator{jwt: jwtService}
}

func (v *jwtTokenValidator) ValidateToken(token string) (int64, error) {
	claims, err := v.jwt.ValidateToken(token)
	if err != nil {
		return 0, err
	}
	return claims.UserID, nil
}
