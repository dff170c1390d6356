package usecase

import (
	"fmt"
	"time"

	domainErrors "github.com/acdc-digital/solopro-sub000/internal/domain/errors"
	"github.com/go-playground/validator/v10"
)

// Clock returns the current time.
type Clock func() time.Time

// SystemClock is the wall clock in UTC at microsecond precision, the
// precision PostgreSQL keeps for timestamps.
func SystemClock() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

var validate = validator.New()

func validateCommand(cmd interface{}) error {
	if err := validate.Struct(cmd); err != nil {
		return fmt.Errorf("%w: %v", domainErrors.ErrInvalidCommand, err)
	}
	return nil
}
