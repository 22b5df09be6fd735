package application

import (
	"slices"

	"github.com/agnivade/levenshtein"

	"github.com/ahrav/go-persona/internal/domain"
	"github.com/ahrav/go-persona/internal/scoring"
)

// scoredQuestion pairs a question with its scheme, resolved once at load.
type scoredQuestion struct {
	question domain.Question
	scheme   scoring.Scheme
}

// QuestionSet is a theme's question bank indexed by code, with every
// question's scoring scheme already resolved. A QuestionSet is immutable
// after construction and safe for concurrent use.
type QuestionSet struct {
	themeID   string
	questions map[string]scoredQuestion
}

// NewQuestionSet indexes questions by code. When two questions share a code
// the later one wins, matching upsert-by-code semantics.
func NewQuestionSet(themeID string, questions []domain.Question) *QuestionSet {
	qs := &QuestionSet{
		themeID:   themeID,
		questions: make(map[string]scoredQuestion, len(questions)),
	}
	for _, q := range questions {
		qs.questions[q.Code] = scoredQuestion{question: q, scheme: scoring.ResolveScheme(q)}
	}
	return qs
}

// ThemeID returns the theme the set was loaded for.
func (qs *QuestionSet) ThemeID() string {
	if qs == nil {
		return ""
	}
	return qs.themeID
}

// Len returns the number of questions in the set.
func (qs *QuestionSet) Len() int {
	if qs == nil {
		return 0
	}
	return len(qs.questions)
}

// Lookup returns the question with the given code.
func (qs *QuestionSet) Lookup(code string) (domain.Question, scoring.Scheme, bool) {
	if qs == nil {
		return domain.Question{}, nil, false
	}
	sq, ok := qs.questions[code]
	return sq.question, sq.scheme, ok
}

// maxSuggestDistance bounds how far a mistyped code may be from a known one.
const maxSuggestDistance = 2

// Suggest returns the known code closest to code by edit distance, or "" when
// none is within maxSuggestDistance. Ties resolve to the lexically smaller
// code.
func (qs *QuestionSet) Suggest(code string) string {
	if qs == nil || code == "" {
		return ""
	}
	best, bestDist := "", maxSuggestDistance+1
	for known := range qs.questions {
		d := levenshtein.ComputeDistance(code, known)
		if d < bestDist || (d == bestDist && known < best) {
			best, bestDist = known, d
		}
	}
	return best
}

// Computation is the result of folding an answer set through a QuestionSet.
type Computation struct {
	Outcome domain.Outcome
	// Unmatched counts answers whose code was not in the set. They are
	// skipped, never fatal.
	Unmatched int
	// UnmatchedCodes lists the distinct unknown codes in answer order.
	UnmatchedCodes []string
}

// Compute scores answers against qs: each answer's option is normalized
// against its question's option count and credited through the question's
// scheme, then the totals are reduced to a type code. Answers referencing
// unknown codes are skipped. The computation is pure and deterministic; the
// returned outcome carries no profile.
func Compute(answers []domain.Answer, qs *QuestionSet) Computation {
	totals := domain.LetterTotals{}
	unmatched := 0
	var unknown []string
	for _, a := range answers {
		q, scheme, ok := qs.Lookup(a.Code)
		if !ok {
			unmatched++
			if !slices.Contains(unknown, a.Code) {
				unknown = append(unknown, a.Code)
			}
			continue
		}
		position := scoring.NormalizeOption(a.Option, q.OptionCount())
		totals = scoring.Apply(totals, scheme, position)
	}

	return Computation{
		Outcome: domain.Outcome{
			PersonalityType: domain.DecideType(totals),
			Scores:          totals,
		},
		Unmatched:      unmatched,
		UnmatchedCodes: unknown,
	}
}
