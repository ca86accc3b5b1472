package service

import "errors"

var (
	ErrValidation          = errors.New("validation failed")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrUserNotFound        = errors.New("user not found")
	ErrInvalidPassword     = errors.New("invalid password")
	ErrDuplicateEmail      = errors.New("email already registered")
	ErrTokenNotPresented   = errors.New("token not presented")
	ErrWrongTokenKind      = errors.New("wrong token kind")
	ErrTokenRevoked        = errors.New("token revoked")
	ErrTokenPairMismatch   = errors.New("access and refresh token belong to different subjects")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrForbidden           = errors.New("forbidden")
)
