package validation

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/finledger/portfolio-tracker/internal/apperrors"
	"github.com/finledger/portfolio-tracker/internal/model"
)

// ErrInvalidUUID indicates a malformed UUID in a URL parameter.
var ErrInvalidUUID = fmt.Errorf("invalid UUID format")

// ValidateUUID checks if a string is a valid UUID
func ValidateUUID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidUUID, id)
	}
	return nil
}

// ValidateSource checks that a source name is one the system can sync.
func ValidateSource(source string) error {
	switch source {
	case model.SourceTrading212, model.SourceBinance:
		return nil
	}
	return fmt.Errorf("%w: %s", apperrors.ErrUnknownSource, source)
}
