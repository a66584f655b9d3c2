package gormrepo

import (
	"errors"

	"gorm.io/gorm"

	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/domain/errs"
)

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return errs.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return errs.ErrConflict
	}
	return err
}
