package jwt

import "errors"

var (
	ErrInvalidToken = errors.New("jwt: invalid token")
	ErrExpiredToken = errors.New("jwt: token is expired")
	ErrInvalidClaim = errors.New("jwt: invalid claim")
)
