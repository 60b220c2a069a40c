// Package usecase holds helpers shared by the ledger usecases.
package usecase

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"chama-ledger/internal/domain/apperr"
)

// NotFound translates a storage miss into apperr.ErrNotFound.
func NotFound(err error, entity, id string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(entity, id)
	}
	return err
}

// IsMissing reports a storage miss.
func IsMissing(err error) bool { return errors.Is(err, gorm.ErrRecordNotFound) }

// Clock returns now in UTC.
func Clock() time.Time { return time.Now().UTC() }
