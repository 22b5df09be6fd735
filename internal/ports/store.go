// Package ports defines the core interfaces that form the contract between
// the domain/application layers and the infrastructure layer.
// These interfaces enable dependency inversion and make the system testable.
package ports

import (
	"context"

	"github.com/ahrav/go-persona/internal/domain"
)

// QuestionSource provides read access to themes and their question banks.
// The scoring engine never writes through this interface.
type QuestionSource interface {
	// Theme returns the theme with the given id.
	// It returns an error wrapping domain.ErrThemeNotFound when the theme
	// does not exist.
	Theme(ctx context.Context, id string) (domain.Theme, error)

	// Questions returns every question of the theme, in no particular order.
	// A theme without questions yields an empty slice and no error.
	Questions(ctx context.Context, themeID string) ([]domain.Question, error)
}

// ProfileSource looks up personality profiles by type code.
type ProfileSource interface {
	// Profile returns the profile registered for the four-letter type.
	// A missing profile is reported through the boolean, never as an error;
	// errors are reserved for failures of the underlying source.
	Profile(ctx context.Context, personalityType string) (domain.Profile, bool, error)
}

// ResultFilter narrows a result scan. The zero value scans every result.
type ResultFilter struct {
	// ThemeID, when set, restricts the scan to one theme.
	ThemeID string
}

// ResultCursor iterates stored results forward-only. The usage pattern
// mirrors database/sql.Rows:
//
//	cur, err := store.Scan(ctx, filter)
//	if err != nil { ... }
//	defer cur.Close()
//	for cur.Next(ctx) {
//	    r := cur.Result()
//	}
//	if err := cur.Err(); err != nil { ... }
type ResultCursor interface {
	// Next advances to the next result and reports whether one is available.
	Next(ctx context.Context) bool

	// Result returns the current result. Only valid after Next returned true.
	Result() domain.Result

	// Err returns the error that stopped iteration, if any.
	Err() error

	// Close releases cursor resources. It is safe to call more than once.
	Close() error
}

// ResultStore persists scored results.
type ResultStore interface {
	// Create stores a new result and returns it with ID and timestamps set.
	Create(ctx context.Context, r domain.Result) (domain.Result, error)

	// Get returns the stored result with the given id.
	// It returns an error wrapping domain.ErrResultNotFound when absent.
	Get(ctx context.Context, id string) (domain.Result, error)

	// Scan opens a forward-only cursor over stored results. Writes made
	// through UpdateOutcome while a scan is open must not disturb it.
	Scan(ctx context.Context, filter ResultFilter) (ResultCursor, error)

	// UpdateOutcome overwrites the computed fields of a stored result
	// (type, summary, scores and traits) in a single write.
	UpdateOutcome(ctx context.Context, id string, outcome domain.Outcome) error
}
