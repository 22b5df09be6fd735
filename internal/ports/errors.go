package ports

import (
	"errors"
	"fmt"
)

// Common infrastructure errors that can occur during external service
// interactions.
var (
	// ErrStoreUnavailable indicates that the backing store cannot be reached.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrCorruptRecord indicates that a stored record could not be decoded.
	ErrCorruptRecord = errors.New("corrupt record")

	// ErrConfigNotFound indicates that required configuration is missing.
	ErrConfigNotFound = errors.New("configuration not found")
)

// StoreError represents an error from a persistence operation.
// It includes the entity, identifier and operation that failed.
type StoreError struct {
	// Entity names the kind of record involved (theme, question, result...).
	Entity string

	// ID identifies the record, when known.
	ID string

	// Operation is the name of the store operation that failed.
	Operation string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface for StoreError.
func (e *StoreError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("store error: operation=%s, entity=%s, err=%v", e.Operation, e.Entity, e.Err)
	}
	return fmt.Sprintf("store error: operation=%s, entity=%s, id=%s, err=%v", e.Operation, e.Entity, e.ID, e.Err)
}

// Unwrap returns the underlying error.
func (e *StoreError) Unwrap() error { return e.Err }

// NewStoreError creates a new StoreError with the given details.
func NewStoreError(entity, id, operation string, err error) *StoreError {
	return &StoreError{
		Entity:    entity,
		ID:        id,
		Operation: operation,
		Err:       err,
	}
}

// ConfigError represents an error from configuration operations.
type ConfigError struct {
	// ConfigKey is the configuration key that was involved in the failed
	// operation.
	ConfigKey string

	// Err is the underlying error that caused the configuration operation
	// to fail.
	Err error
}

// Error implements the error interface for ConfigError.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: key=%s, err=%v", e.ConfigKey, e.Err)
}

// Unwrap returns the underlying error.
func (e *ConfigError) Unwrap() error { return e.Err }

// NewConfigError creates a new ConfigError with the given details.
func NewConfigError(key string, err error) *ConfigError {
	return &ConfigError{
		ConfigKey: key,
		Err:       err,
	}
}
