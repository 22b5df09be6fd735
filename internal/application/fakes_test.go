package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/ahrav/go-persona/internal/domain"
	"github.com/ahrav/go-persona/internal/ports"
)

// fakeQuestions is an in-memory QuestionSource that counts loads.
type fakeQuestions struct {
	mu        sync.Mutex
	themes    map[string]domain.Theme
	questions map[string][]domain.Question
	loads     atomic.Int32
	err       error
}

func newFakeQuestions() *fakeQuestions {
	return &fakeQuestions{
		themes:    make(map[string]domain.Theme),
		questions: make(map[string][]domain.Question),
	}
}

func (f *fakeQuestions) put(themeID string, qs ...domain.Question) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.themes[themeID] = domain.Theme{ID: themeID, Title: themeID, Active: true}
	for i := range qs {
		qs[i].ThemeID = themeID
	}
	f.questions[themeID] = qs
}

func (f *fakeQuestions) Theme(_ context.Context, id string) (domain.Theme, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return domain.Theme{}, f.err
	}
	t, ok := f.themes[id]
	if !ok {
		return domain.Theme{}, fmt.Errorf("theme %q: %w", id, domain.ErrThemeNotFound)
	}
	return t, nil
}

func (f *fakeQuestions) Questions(_ context.Context, themeID string) ([]domain.Question, error) {
	f.loads.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Question(nil), f.questions[themeID]...), nil
}

// fakeProfiles is an in-memory ProfileSource.
type fakeProfiles struct {
	profiles map[string]domain.Profile
	err      error
}

func (f *fakeProfiles) Profile(_ context.Context, code string) (domain.Profile, bool, error) {
	if f.err != nil {
		return domain.Profile{}, false, f.err
	}
	p, ok := f.profiles[code]
	return p, ok, nil
}

// fakeResults is an in-memory ResultStore.
type fakeResults struct {
	mu        sync.Mutex
	results   map[string]domain.Result
	nextID    int
	updates   int
	createErr error
	updateErr error
}

func newFakeResults() *fakeResults {
	return &fakeResults{results: make(map[string]domain.Result)}
}

func (f *fakeResults) Create(_ context.Context, r domain.Result) (domain.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return domain.Result{}, f.createErr
	}
	f.nextID++
	r.ID = fmt.Sprintf("r%03d", f.nextID)
	r.Profile = nil
	f.results[r.ID] = cloneResult(r)
	return r, nil
}

func (f *fakeResults) Get(_ context.Context, id string) (domain.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.results[id]
	if !ok {
		return domain.Result{}, fmt.Errorf("result %q: %w", id, domain.ErrResultNotFound)
	}
	return cloneResult(r), nil
}

func (f *fakeResults) Scan(_ context.Context, filter ports.ResultFilter) (ports.ResultCursor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]string, 0, len(f.results))
	for id, r := range f.results {
		if filter.ThemeID == "" || r.ThemeID == filter.ThemeID {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return &fakeCursor{store: f, ids: ids, pos: -1}, nil
}

func (f *fakeResults) UpdateOutcome(_ context.Context, id string, o domain.Outcome) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	r, ok := f.results[id]
	if !ok {
		return fmt.Errorf("result %q: %w", id, domain.ErrResultNotFound)
	}
	r.ApplyOutcome(o)
	f.results[id] = r
	f.updates++
	return nil
}

// put stores r as is, bypassing Create.
func (f *fakeResults) put(r domain.Result) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results[r.ID] = cloneResult(r)
}

// cloneResult round-trips through JSON, as a real store would.
func cloneResult(r domain.Result) domain.Result {
	b, err := json.Marshal(r)
	if err != nil {
		panic(err)
	}
	var out domain.Result
	if err := json.Unmarshal(b, &out); err != nil {
		panic(err)
	}
	return out
}

type fakeCursor struct {
	store *fakeResults
	ids   []string
	pos   int
	cur   domain.Result
	err   error
}

func (c *fakeCursor) Next(ctx context.Context) bool {
	for {
		c.pos++
		if c.pos >= len(c.ids) {
			return false
		}
		r, err := c.store.Get(ctx, c.ids[c.pos])
		if errors.Is(err, domain.ErrResultNotFound) {
			continue
		}
		if err != nil {
			c.err = err
			return false
		}
		c.cur = r
		return true
	}
}

func (c *fakeCursor) Result() domain.Result { return c.cur }
func (c *fakeCursor) Err() error            { return c.err }
func (c *fakeCursor) Close() error          { return nil }

// recordingMetrics captures counters for assertions.
type recordingMetrics struct {
	ports.NopMetrics
	mu       sync.Mutex
	counters map[string]float64
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{counters: make(map[string]float64)}
}

func (m *recordingMetrics) RecordCounter(metric string, value float64, _ map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[metric] += value
}

func (m *recordingMetrics) counter(metric string) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counters[metric]
}

func twoOptions(a, b string) domain.Options { return domain.OptionsFromList([]string{a, b}) }

// sampleQuestions is one two-option question per dimension, scored in a
// different shape each.
func sampleQuestions() []domain.Question {
	return []domain.Question{
		{Code: "ei", Dimension: domain.DimensionEI, Options: twoOptions("out", "in"), Scores: json.RawMessage(`{"A":"E","B":"I"}`)},
		{Code: "sn", Dimension: domain.DimensionSN, Options: twoOptions("facts", "ideas")},
		{Code: "tf", Dimension: domain.DimensionTF, Options: twoOptions("logic", "values"), Scores: json.RawMessage(`[{"T":1},{"F":1}]`)},
		{Code: "jp", Dimension: domain.DimensionJP, Options: twoOptions("plan", "flow"), Scores: json.RawMessage(`{"J":[1,0],"P":[0,1]}`)},
	}
}

func answers(pairs ...any) []domain.Answer {
	out := make([]domain.Answer, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, domain.Answer{Code: pairs[i].(string), Option: pairs[i+1]})
	}
	return out
}
