package service

import (
	"errors"

	"gorm.io/gorm"

	"github.com/m-deepankar-singh/cultus-platform-sub006/internal/apperr"
)

// orNotFound maps gorm's record-not-found onto the taxonomy; anything
// else is internal.
func orNotFound(err error, message string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.New(apperr.KindNotFound, message)
	}
	return apperr.Wrap(apperr.KindInternal, message, err)
}
