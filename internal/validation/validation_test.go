package validation

import (
	"errors"
	"testing"

	"github.com/finledger/portfolio-tracker/internal/apperrors"
	"github.com/finledger/portfolio-tracker/internal/model"
)

func TestValidateUUID(t *testing.T) {
	t.Run("accepts a valid UUID", func(t *testing.T) {
		if err := ValidateUUID("123e4567-e89b-12d3-a456-426614174000"); err != nil {
			t.Errorf("Unexpected error: %v", err)
		}
	})

	t.Run("rejects a malformed UUID", func(t *testing.T) {
		err := ValidateUUID("not-a-uuid")
		if !errors.Is(err, ErrInvalidUUID) {
			t.Errorf("Expected ErrInvalidUUID, got %v", err)
		}
	})
}

func TestValidateSource(t *testing.T) {
	t.Run("accepts known sources", func(t *testing.T) {
		for _, source := range []string{model.SourceTrading212, model.SourceBinance} {
			if err := ValidateSource(source); err != nil {
				t.Errorf("Unexpected error for %q: %v", source, err)
			}
		}
	})

	t.Run("rejects an unknown source", func(t *testing.T) {
		err := ValidateSource("degiro")
		if !errors.Is(err, apperrors.ErrUnknownSource) {
			t.Errorf("Expected ErrUnknownSource, got %v", err)
		}
	})
}
