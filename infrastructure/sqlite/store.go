// Package sqlite provides a SQLite-backed implementation of the question,
// profile and result ports.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"modernc.org/sqlite"

	"github.com/ahrav/go-persona/internal/domain"
	"github.com/ahrav/go-persona/internal/ports"
)

var (
	_ ports.QuestionSource = (*Store)(nil)
	_ ports.ProfileSource  = (*Store)(nil)
	_ ports.ResultStore    = (*Store)(nil)
)

// scanPageSize is how many results a cursor fetches per round trip.
const scanPageSize = 100

// Store persists themes, questions, profiles and results in one SQLite
// database file.
type Store struct {
	db     *sql.DB
	dbPath string
	now    func() time.Time
}

// Open creates or opens the database at path and applies the schema.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite allows a single writer; serializing through one connection
	// avoids SQLITE_BUSY between the scan and the conditional updates.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, dbPath: path, now: time.Now}
	if err := s.initSchema(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error { return s.db.Close() }

// Path returns the database file path.
func (s *Store) Path() string { return s.dbPath }

func (s *Store) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS themes (
		id TEXT PRIMARY KEY,
		slug TEXT NOT NULL UNIQUE,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		pair_titles_json TEXT,
		active INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS questions (
		theme_id TEXT NOT NULL REFERENCES themes(id) ON DELETE CASCADE,
		code TEXT NOT NULL,
		dimension TEXT NOT NULL,
		title TEXT NOT NULL DEFAULT '',
		scenario TEXT NOT NULL DEFAULT '',
		options_json TEXT NOT NULL,
		scores_json TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (theme_id, code)
	);

	CREATE TABLE IF NOT EXISTS profiles (
		type TEXT PRIMARY KEY,
		doc_json TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS results (
		id TEXT PRIMARY KEY,
		theme_id TEXT NOT NULL,
		name TEXT NOT NULL,
		user_id TEXT NOT NULL DEFAULT '',
		session_id TEXT NOT NULL DEFAULT '',
		personality_type TEXT NOT NULL DEFAULT '',
		summary TEXT NOT NULL DEFAULT '',
		scores_json TEXT NOT NULL DEFAULT '{}',
		traits_json TEXT,
		answers_json TEXT NOT NULL DEFAULT '[]',
		public INTEGER NOT NULL DEFAULT 0,
		meta_json TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_results_theme_created ON results(theme_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_results_type ON results(personality_type);
	`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

func (s *Store) timestamp() string { return s.now().UTC().Format(time.RFC3339Nano) }

// Theme implements ports.QuestionSource.
func (s *Store) Theme(ctx context.Context, id string) (domain.Theme, error) {
	var (
		t          domain.Theme
		pairTitles sql.NullString
		active     int
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, slug, title, description, pair_titles_json, active FROM themes WHERE id = ?`, id,
	).Scan(&t.ID, &t.Slug, &t.Title, &t.Description, &pairTitles, &active)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Theme{}, fmt.Errorf("theme %q: %w", id, domain.ErrThemeNotFound)
	}
	if err != nil {
		return domain.Theme{}, ports.NewStoreError("theme", id, "get", err)
	}
	t.Active = active != 0
	if pairTitles.Valid && pairTitles.String != "" {
		if err := json.Unmarshal([]byte(pairTitles.String), &t.PairTitles); err != nil {
			return domain.Theme{}, ports.NewStoreError("theme", id, "decode", fmt.Errorf("%w: %v", ports.ErrCorruptRecord, err))
		}
	}
	return t, nil
}

// Questions implements ports.QuestionSource.
func (s *Store) Questions(ctx context.Context, themeID string) ([]domain.Question, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT code, dimension, title, scenario, options_json, scores_json
		 FROM questions WHERE theme_id = ? ORDER BY code`, themeID)
	if err != nil {
		return nil, ports.NewStoreError("question", themeID, "list", err)
	}
	defer rows.Close()

	questions := []domain.Question{}
	for rows.Next() {
		var (
			q       = domain.Question{ThemeID: themeID}
			dim     string
			options string
			scores  sql.NullString
		)
		if err := rows.Scan(&q.Code, &dim, &q.Title, &q.Scenario, &options, &scores); err != nil {
			return nil, ports.NewStoreError("question", themeID, "scan", err)
		}
		q.Dimension = domain.Dimension(dim)
		if err := json.Unmarshal([]byte(options), &q.Options); err != nil {
			return nil, ports.NewStoreError("question", themeID+"/"+q.Code, "decode",
				fmt.Errorf("%w: %v", ports.ErrCorruptRecord, err))
		}
		if scores.Valid && scores.String != "" {
			q.Scores = json.RawMessage(scores.String)
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, ports.NewStoreError("question", themeID, "list", err)
	}
	return questions, nil
}

// Profile implements ports.ProfileSource.
func (s *Store) Profile(ctx context.Context, personalityType string) (domain.Profile, bool, error) {
	code := strings.ToUpper(strings.TrimSpace(personalityType))
	var doc string
	err := s.db.QueryRowContext(ctx, `SELECT doc_json FROM profiles WHERE type = ?`, code).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Profile{}, false, nil
	}
	if err != nil {
		return domain.Profile{}, false, ports.NewStoreError("profile", code, "get", err)
	}
	var p domain.Profile
	if err := json.Unmarshal([]byte(doc), &p); err != nil {
		return domain.Profile{}, false, ports.NewStoreError("profile", code, "decode",
			fmt.Errorf("%w: %v", ports.ErrCorruptRecord, err))
	}
	return p, true, nil
}

// UpsertTheme inserts or updates a theme by id.
func (s *Store) UpsertTheme(ctx context.Context, t domain.Theme) error {
	return s.inTx(ctx, func(tx *sql.Tx) error { return s.upsertTheme(ctx, tx, t) })
}

func (s *Store) upsertTheme(ctx context.Context, tx *sql.Tx, t domain.Theme) error {
	var pairTitles any
	if len(t.PairTitles) > 0 {
		b, err := json.Marshal(t.PairTitles)
		if err != nil {
			return ports.NewStoreError("theme", t.ID, "encode", err)
		}
		pairTitles = string(b)
	}
	now := s.timestamp()
	_, err := tx.ExecContext(ctx, `
		INSERT INTO themes (id, slug, title, description, pair_titles_json, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			slug = excluded.slug,
			title = excluded.title,
			description = excluded.description,
			pair_titles_json = excluded.pair_titles_json,
			active = excluded.active,
			updated_at = excluded.updated_at`,
		t.ID, t.Slug, t.Title, t.Description, pairTitles, boolToInt(t.Active), now, now)
	if err != nil {
		return ports.NewStoreError("theme", t.ID, "upsert", err)
	}
	return nil
}

// UpsertQuestions bulk-upserts questions of one theme keyed by
// (theme id, code). Questions not in the batch are left alone.
func (s *Store) UpsertQuestions(ctx context.Context, themeID string, questions []domain.Question) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		return s.upsertQuestions(ctx, tx, themeID, questions)
	})
}

func (s *Store) upsertQuestions(ctx context.Context, tx *sql.Tx, themeID string, questions []domain.Question) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO questions (theme_id, code, dimension, title, scenario, options_json, scores_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(theme_id, code) DO UPDATE SET
			dimension = excluded.dimension,
			title = excluded.title,
			scenario = excluded.scenario,
			options_json = excluded.options_json,
			scores_json = excluded.scores_json,
			updated_at = excluded.updated_at`)
	if err != nil {
		return ports.NewStoreError("question", themeID, "prepare", err)
	}
	defer stmt.Close()

	now := s.timestamp()
	for _, q := range questions {
		switch {
		case q.Code == "":
			return domain.NewQuestionError(themeID, q.Code, fmt.Errorf("code: %w", domain.ErrEmptyValue))
		case !q.Dimension.Valid():
			return domain.NewQuestionError(themeID, q.Code, fmt.Errorf("%w: %q", domain.ErrInvalidDimension, q.Dimension))
		}
		options, err := json.Marshal(q.Options)
		if err != nil {
			return ports.NewStoreError("question", themeID+"/"+q.Code, "encode", err)
		}
		var scores any
		if len(q.Scores) > 0 {
			scores = string(q.Scores)
		}
		if _, err := stmt.ExecContext(ctx,
			themeID, q.Code, string(q.Dimension), q.Title, q.Scenario, string(options), scores, now, now,
		); err != nil {
			return ports.NewStoreError("question", themeID+"/"+q.Code, "upsert", err)
		}
	}
	return nil
}

// UpsertProfile inserts or replaces a profile by type.
func (s *Store) UpsertProfile(ctx context.Context, p domain.Profile) error {
	return s.inTx(ctx, func(tx *sql.Tx) error { return s.upsertProfile(ctx, tx, p) })
}

func (s *Store) upsertProfile(ctx context.Context, tx *sql.Tx, p domain.Profile) error {
	p.Type = strings.ToUpper(p.Type)
	doc, err := json.Marshal(p)
	if err != nil {
		return ports.NewStoreError("profile", p.Type, "encode", err)
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO profiles (type, doc_json, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(type) DO UPDATE SET doc_json = excluded.doc_json, updated_at = excluded.updated_at`,
		p.Type, string(doc), s.timestamp())
	if err != nil {
		return ports.NewStoreError("profile", p.Type, "upsert", err)
	}
	return nil
}

// SeedSource is what Seed copies into the store.
type SeedSource interface {
	Themes() []domain.Theme
	Questions(ctx context.Context, themeID string) ([]domain.Question, error)
	Profiles() []domain.Profile
}

// SeedReport counts what a Seed call wrote.
type SeedReport struct {
	Themes    int
	Questions int
	Profiles  int
}

// Seed upserts every theme, question and profile of src in one transaction.
// Seeding the same source twice leaves the store unchanged apart from
// updated_at timestamps.
func (s *Store) Seed(ctx context.Context, src SeedSource) (SeedReport, error) {
	var report SeedReport
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		for _, t := range src.Themes() {
			if err := s.upsertTheme(ctx, tx, t); err != nil {
				return err
			}
			report.Themes++

			questions, err := src.Questions(ctx, t.ID)
			if err != nil {
				return err
			}
			if err := s.upsertQuestions(ctx, tx, t.ID, questions); err != nil {
				return err
			}
			report.Questions += len(questions)
		}
		for _, p := range src.Profiles() {
			if err := s.upsertProfile(ctx, tx, p); err != nil {
				return err
			}
			report.Profiles++
		}
		return nil
	})
	if err != nil {
		return SeedReport{}, err
	}
	return report, nil
}

func (s *Store) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ports.NewStoreError("transaction", "", "begin", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return writeError("transaction", "", "commit", err)
	}
	return nil
}

// SQLite primary result codes that mean another connection holds a lock.
const (
	sqliteBusy   = 5
	sqliteLocked = 6
)

// writeError wraps a failed write in a StoreError. Lock contention is marked
// with ports.ErrStoreUnavailable so that callers may retry it.
func writeError(entity, id, op string, err error) error {
	var se *sqlite.Error
	if errors.As(err, &se) {
		if code := se.Code() & 0xff; code == sqliteBusy || code == sqliteLocked {
			err = fmt.Errorf("%w: %w", ports.ErrStoreUnavailable, err)
		}
	}
	return ports.NewStoreError(entity, id, op, err)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
