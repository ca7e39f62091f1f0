package service

import "errors"

var (
	ErrAPIKeyExists       = errors.New("api key already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user with this email already exists")
	ErrProductNotFound    = errors.New("product not found")
)
