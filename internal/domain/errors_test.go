package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuestionError(t *testing.T) {
	tests := []struct {
		name    string
		themeID string
		code    string
		err     error
		wantMsg string
	}{
		{
			name:    "invalid dimension",
			themeID: "work",
			code:    "q1",
			err:     ErrInvalidDimension,
			wantMsg: "question error: theme=work, code=q1, err=invalid dimension",
		},
		{
			name:    "empty code",
			themeID: "life",
			code:    "",
			err:     ErrEmptyValue,
			wantMsg: "question error: theme=life, code=, err=empty value",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewQuestionError(tt.themeID, tt.code, tt.err)

			assert.Equal(t, tt.wantMsg, err.Error(), "Error message mismatch")
			assert.Equal(t, tt.themeID, err.ThemeID, "ThemeID mismatch")
			assert.Equal(t, tt.code, err.Code, "Code mismatch")
			assert.True(t, errors.Is(err, tt.err), "Should unwrap to underlying error")
		})
	}
}

func TestValidationError(t *testing.T) {
	t.Run("single error", func(t *testing.T) {
		err := NewValidationError("Submission")
		err.AddError("Submission.Name is required")

		assert.Equal(t, "validation error for Submission: Submission.Name is required", err.Error())
		assert.True(t, err.HasErrors(), "Should have errors")
		assert.Len(t, err.Errors, 1, "Should have one error")
	})

	t.Run("multiple errors", func(t *testing.T) {
		err := NewValidationError("Catalog")
		err.AddError("duplicate theme id")
		err.AddError("duplicate profile type")

		assert.Contains(t, err.Error(), "validation errors for Catalog")
		assert.Len(t, err.Errors, 2, "Should have two errors")
	})

	t.Run("no errors", func(t *testing.T) {
		err := NewValidationError("Catalog")

		assert.False(t, err.HasErrors(), "Should not have errors")
		assert.Empty(t, err.Errors, "Errors slice should be empty")
	})
}

func TestCommonDomainErrors(t *testing.T) {
	tests := []struct {
		err     error
		wantMsg string
	}{
		{ErrThemeNotFound, "theme not found"},
		{ErrResultNotFound, "result not found"},
		{ErrInvalidDimension, "invalid dimension"},
		{ErrEmptyValue, "empty value"},
		{ErrInvalidConfiguration, "invalid configuration"},
	}

	for _, tt := range tests {
		t.Run(tt.wantMsg, func(t *testing.T) {
			assert.Equal(t, tt.wantMsg, tt.err.Error())
		})
	}
}
