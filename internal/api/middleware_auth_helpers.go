package api

import (
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

const bearerPrefix = "bearer "

var (
	errMissingBearer   = errors.New("authorization header must use the Bearer scheme")
	errAuthUnavailable = errors.New("token authentication is not configured")
	errInvalidToken    = errors.New("invalid token")
)

type ownerClaims struct {
	OwnerID uint `json:"uid"`
	jwt.RegisteredClaims
}

// ownerFromAuthorization returns the uid claim of an HS256 bearer token.
func (handler *Handler) ownerFromAuthorization(header string) (uint, error) {
	if len(header) <= len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return 0, errMissingBearer
	}
	if len(handler.secretKey) == 0 {
		return 0, errAuthUnavailable
	}

	claims := &ownerClaims{}
	token, err := jwt.ParseWithClaims(
		strings.TrimSpace(header[len(bearerPrefix):]),
		claims,
		func(token *jwt.Token) (interface{}, error) {
			return handler.secretKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return 0, errInvalidToken
	}
	if claims.OwnerID == 0 {
		return 0, errInvalidToken
	}
	return claims.OwnerID, nil
}
