package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ahrav/go-persona/internal/domain"
	"github.com/ahrav/go-persona/internal/ports"
)

const resultColumns = `id, theme_id, name, user_id, session_id, personality_type, summary,
	scores_json, traits_json, answers_json, public, meta_json, created_at, updated_at`

// Create implements ports.ResultStore.
func (s *Store) Create(ctx context.Context, r domain.Result) (domain.Result, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	now := s.now().UTC()
	r.CreatedAt, r.UpdatedAt = now, now
	if r.Scores == nil {
		r.Scores = domain.LetterTotals{}
	}
	if r.Answers == nil {
		r.Answers = []domain.Answer{}
	}

	scores, traits, answers, meta, err := encodeResult(r)
	if err != nil {
		return domain.Result{}, ports.NewStoreError("result", r.ID, "encode", err)
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO results (`+resultColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.ThemeID, r.Name, r.UserID, r.SessionID, r.PersonalityType, r.Summary,
		scores, traits, answers, boolToInt(r.Public), meta,
		now.Format(time.RFC3339Nano), now.Format(time.RFC3339Nano))
	if err != nil {
		return domain.Result{}, writeError("result", r.ID, "create", err)
	}
	r.Profile = nil
	return r, nil
}

// Get implements ports.ResultStore.
func (s *Store) Get(ctx context.Context, id string) (domain.Result, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+resultColumns+` FROM results WHERE id = ?`, id)
	r, err := scanResult(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Result{}, fmt.Errorf("result %q: %w", id, domain.ErrResultNotFound)
	}
	if err != nil {
		return domain.Result{}, ports.NewStoreError("result", id, "get", err)
	}
	return r, nil
}

// UpdateOutcome implements ports.ResultStore.
func (s *Store) UpdateOutcome(ctx context.Context, id string, o domain.Outcome) error {
	scores, err := json.Marshal(nonNilTotals(o.Scores))
	if err != nil {
		return ports.NewStoreError("result", id, "encode", err)
	}
	traits, err := encodeOptional(o.Traits)
	if err != nil {
		return ports.NewStoreError("result", id, "encode", err)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE results SET personality_type = ?, summary = ?, scores_json = ?, traits_json = ?, updated_at = ?
		WHERE id = ?`,
		o.PersonalityType, o.PersonalityType, string(scores), traits, s.timestamp(), id)
	if err != nil {
		return writeError("result", id, "update", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("result %q: %w", id, domain.ErrResultNotFound)
	}
	return nil
}

// Scan implements ports.ResultStore. The cursor pages through results in id
// order using keyset pagination, so no query stays open between pages and
// concurrent UpdateOutcome calls never conflict with it.
func (s *Store) Scan(_ context.Context, filter ports.ResultFilter) (ports.ResultCursor, error) {
	return &resultCursor{store: s, filter: filter}, nil
}

type resultCursor struct {
	store  *Store
	filter ports.ResultFilter

	page    []domain.Result
	pos     int
	lastID  string
	done    bool
	current domain.Result
	err     error
}

func (c *resultCursor) Next(ctx context.Context) bool {
	if c.err != nil {
		return false
	}
	if c.pos >= len(c.page) {
		if c.done {
			return false
		}
		if err := c.fetch(ctx); err != nil {
			c.err = err
			return false
		}
		if len(c.page) == 0 {
			return false
		}
	}
	c.current = c.page[c.pos]
	c.pos++
	return true
}

func (c *resultCursor) fetch(ctx context.Context) error {
	query := `SELECT ` + resultColumns + ` FROM results WHERE id > ?`
	args := []any{c.lastID}
	if c.filter.ThemeID != "" {
		query += ` AND theme_id = ?`
		args = append(args, c.filter.ThemeID)
	}
	query += ` ORDER BY id LIMIT ?`
	args = append(args, scanPageSize)

	rows, err := c.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return ports.NewStoreError("result", "", "scan", err)
	}
	defer rows.Close()

	c.page = c.page[:0]
	c.pos = 0
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return ports.NewStoreError("result", "", "scan", err)
		}
		c.page = append(c.page, r)
	}
	if err := rows.Err(); err != nil {
		return ports.NewStoreError("result", "", "scan", err)
	}
	if len(c.page) < scanPageSize {
		c.done = true
	}
	if len(c.page) > 0 {
		c.lastID = c.page[len(c.page)-1].ID
	}
	return nil
}

func (c *resultCursor) Result() domain.Result { return c.current }

func (c *resultCursor) Err() error { return c.err }

func (c *resultCursor) Close() error {
	c.done = true
	c.page = nil
	c.pos = 0
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResult(row rowScanner) (domain.Result, error) {
	var (
		r                    domain.Result
		scores, answers      string
		traits, meta         sql.NullString
		public               int
		createdAt, updatedAt string
	)
	if err := row.Scan(&r.ID, &r.ThemeID, &r.Name, &r.UserID, &r.SessionID, &r.PersonalityType, &r.Summary,
		&scores, &traits, &answers, &public, &meta, &createdAt, &updatedAt); err != nil {
		return domain.Result{}, err
	}
	r.Public = public != 0

	if err := json.Unmarshal([]byte(scores), &r.Scores); err != nil {
		return domain.Result{}, fmt.Errorf("%w: scores: %v", ports.ErrCorruptRecord, err)
	}
	if err := json.Unmarshal([]byte(answers), &r.Answers); err != nil {
		return domain.Result{}, fmt.Errorf("%w: answers: %v", ports.ErrCorruptRecord, err)
	}
	if traits.Valid && traits.String != "" {
		if err := json.Unmarshal([]byte(traits.String), &r.Traits); err != nil {
			return domain.Result{}, fmt.Errorf("%w: traits: %v", ports.ErrCorruptRecord, err)
		}
	}
	if meta.Valid && meta.String != "" {
		if err := json.Unmarshal([]byte(meta.String), &r.Meta); err != nil {
			return domain.Result{}, fmt.Errorf("%w: meta: %v", ports.ErrCorruptRecord, err)
		}
	}

	var err error
	if r.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return domain.Result{}, fmt.Errorf("%w: created_at: %v", ports.ErrCorruptRecord, err)
	}
	if r.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return domain.Result{}, fmt.Errorf("%w: updated_at: %v", ports.ErrCorruptRecord, err)
	}
	return r, nil
}

func encodeResult(r domain.Result) (scores string, traits, answers string, meta any, err error) {
	b, err := json.Marshal(nonNilTotals(r.Scores))
	if err != nil {
		return "", "", "", nil, err
	}
	scores = string(b)

	t, err := encodeOptional(r.Traits)
	if err != nil {
		return "", "", "", nil, err
	}
	if t != nil {
		traits = t.(string)
	}

	b, err = json.Marshal(r.Answers)
	if err != nil {
		return "", "", "", nil, err
	}
	answers = string(b)

	if len(r.Meta) > 0 {
		mb, err := json.Marshal(r.Meta)
		if err != nil {
			return "", "", "", nil, err
		}
		meta = string(mb)
	}
	return scores, traits, answers, meta, nil
}

// encodeOptional encodes a slice as JSON, or SQL NULL when it is nil.
func encodeOptional(v []string) (any, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func nonNilTotals(t domain.LetterTotals) domain.LetterTotals {
	if t == nil {
		return domain.LetterTotals{}
	}
	return t
}
