package services

import (
	"errors"

	"sciencejournal/repository"
)

// Fehlerarten, die die Controller einheitlich auf HTTP-Status abbilden.
var (
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrAdminRequired      = errors.New("admin role required")
	ErrConflict           = errors.New("paper was modified concurrently")
	ErrNotEditable        = errors.New("only pending papers can be changed")
	ErrInvalidTransition  = errors.New("status transition not allowed")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidUpload      = errors.New("invalid upload")
)

// fromRepo übersetzt Repository-Fehler in Service-Fehler.
func fromRepo(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrConflict), errors.Is(err, repository.ErrDuplicate):
		return ErrConflict
	case errors.Is(err, repository.ErrInvalidArgument):
		return ErrInvalidArgument
	}
	return err
}
