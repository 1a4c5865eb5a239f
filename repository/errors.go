package repository

import (
	"errors"

	"gorm.io/gorm"
)

var (
	// ErrInvalidArgument: eine nil-Entität wurde übergeben.
	ErrInvalidArgument = errors.New("entity must not be nil")
	ErrNotFound        = errors.New("record not found")
	// ErrConflict: die Zeile wurde zwischenzeitlich geändert (Version).
	ErrConflict = errors.New("record was modified concurrently")
	// ErrDuplicate: ein Insert verletzt einen Unique-Index.
	ErrDuplicate = errors.New("record already exists")
)

func translate(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	}
	return err
}
