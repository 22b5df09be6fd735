package ports

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ahrav/go-persona/internal/domain"
)

// TestStoreError verifies message formatting with and without a record id,
// and that wrapped sentinels stay reachable.
func TestStoreError(t *testing.T) {
	tests := []struct {
		name      string
		entity    string
		id        string
		operation string
		err       error
		wantMsg   string
	}{
		{
			name:      "with id",
			entity:    "result",
			id:        "r1",
			operation: "update",
			err:       domain.ErrResultNotFound,
			wantMsg:   "store error: operation=update, entity=result, id=r1, err=result not found",
		},
		{
			name:      "without id",
			entity:    "transaction",
			operation: "commit",
			err:       ErrStoreUnavailable,
			wantMsg:   "store error: operation=commit, entity=transaction, err=store unavailable",
		},
		{
			name:      "corrupt record",
			entity:    "theme",
			id:        "work",
			operation: "decode",
			err:       fmt.Errorf("%w: pair titles", ErrCorruptRecord),
			wantMsg:   "store error: operation=decode, entity=theme, id=work, err=corrupt record: pair titles",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewStoreError(tt.entity, tt.id, tt.operation, tt.err)

			assert.Equal(t, tt.wantMsg, err.Error())
			assert.Equal(t, tt.entity, err.Entity)
			assert.Equal(t, tt.id, err.ID)
			assert.Equal(t, tt.operation, err.Operation)
			assert.True(t, errors.Is(err, tt.err))
		})
	}
}

// TestConfigError verifies that the error message carries the configuration
// key.
func TestConfigError(t *testing.T) {
	err := NewConfigError("/etc/persona.yaml", ErrConfigNotFound)

	assert.Equal(t, "config error: key=/etc/persona.yaml, err=configuration not found", err.Error())
	assert.Equal(t, "/etc/persona.yaml", err.ConfigKey)
	assert.True(t, errors.Is(err, ErrConfigNotFound))
}

func TestCommonInfrastructureErrors(t *testing.T) {
	tests := []struct {
		err     error
		message string
	}{
		{ErrStoreUnavailable, "store unavailable"},
		{ErrCorruptRecord, "corrupt record"},
		{ErrConfigNotFound, "configuration not found"},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			assert.Equal(t, tt.message, tt.err.Error())
		})
	}
}

// TestErrorUnwrapping checks that every custom error type unwraps to its
// cause.
func TestErrorUnwrapping(t *testing.T) {
	baseErr := errors.New("underlying error")

	errorList := []interface {
		error
		Unwrap() error
	}{
		NewStoreError("result", "id", "op", baseErr),
		NewConfigError("key", baseErr),
	}

	for _, err := range errorList {
		unwrapped := err.Unwrap()
		assert.Equal(t, baseErr, unwrapped, "%T should unwrap to base error", err)
		assert.True(t, errors.Is(err, baseErr), "%T should match base error with Is", err)
	}
}
