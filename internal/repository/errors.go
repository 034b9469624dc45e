// Package repository implements gorm-backed data access for the cooperative.
package repository

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

var (
	ErrNotFound            = errors.New("record not found")
	ErrDuplicate           = errors.New("record already exists")
	ErrCreditLimitExceeded = errors.New("credit limit exceeded")
	ErrNegativeBalance     = errors.New("credit balance cannot go negative")
	ErrInsufficientStock   = errors.New("insufficient stock")
	ErrInvalidCreditType   = errors.New("invalid credit type")
)

// translate maps gorm errors onto the package sentinels and wraps the rest.
func translate(err error, msg string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return errors.Wrap(ErrNotFound, msg)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return errors.Wrap(ErrDuplicate, msg)
	default:
		return errors.Wrap(err, msg)
	}
}
