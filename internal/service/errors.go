package service

import (
	"errors"

	"github.com/Skotchmaster/buyme/internal/repo"
)

var (
	ErrValidation         = errors.New("validation error")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNoAccess           = errors.New("unknown user role")

	ErrNotFound = repo.ErrNotFound
	ErrConflict = repo.ErrConflict
)
