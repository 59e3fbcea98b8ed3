package risk

import (
	"fmt"

	"github.com/scaryPonens/fundadvisor/internal/domain"
)

// Score bounds: 13 questions, minimum weight 1 each, maximum 4 (3 for the
// two three-option questions), summing to [13,45].
const (
	ScoreMin = 13
	ScoreMax = 45
)

type band struct {
	lo, hi   int
	category domain.RiskCategory
}

// Contiguous, gap-free bands over [13,45]. A boundary value belongs to the
// lower band's inclusive upper end: 18 is Low, 22 is Moderate, 28 is Medium.
var bands = []band{
	{13, 18, domain.CategoryLow},
	{19, 22, domain.CategoryModerate},
	{23, 28, domain.CategoryMedium},
	{29, 45, domain.CategoryHigh},
}

// Score sums the selected option weights. Answers are 0-based option
// indexes in question order; the sequence must cover all 13 questions.
// Deterministic and side-effect free.
func Score(answers []int) (int, error) {
	if len(answers) != QuestionCount {
		return 0, fmt.Errorf("%w: expected %d answers, got %d", domain.ErrInvalidAnswers, QuestionCount, len(answers))
	}

	total := 0
	for i, sel := range answers {
		q := questionnaire[i]
		if sel < 0 || sel >= len(q.Options) {
			return 0, fmt.Errorf("%w: question %d has no option %d", domain.ErrInvalidAnswers, q.Number, sel)
		}
		total += q.Options[sel].Weight
	}
	return total, nil
}

// Categorize maps a score onto its band. Out-of-range scores clamp to the
// nearest band; Score never produces them.
func Categorize(score int) domain.RiskCategory {
	if score < ScoreMin {
		return domain.CategoryLow
	}
	for _, b := range bands {
		if score >= b.lo && score <= b.hi {
			return b.category
		}
	}
	return domain.CategoryHigh
}

// Chain returns the ordered eligibility fallback for a category: itself
// first, then every safer band. Static lookup, never recursive.
func Chain(cat domain.RiskCategory) []domain.RiskCategory {
	chain, ok := domain.RiskHierarchy[cat]
	if !ok {
		return []domain.RiskCategory{cat}
	}
	out := make([]domain.RiskCategory, len(chain))
	copy(out, chain)
	return out
}

// BandFor describes the inclusive score range of a category, for display.
func BandFor(cat domain.RiskCategory) (lo, hi int, ok bool) {
	for _, b := range bands {
		if b.category == cat {
			return b.lo, b.hi, true
		}
	}
	return 0, 0, false
}

// ValidQuickProfile reports whether cat is one of the fast-track profiles.
func ValidQuickProfile(cat domain.RiskCategory) bool {
	for _, opt := range quickOptions {
		if opt.Category == string(cat) {
			return true
		}
	}
	return false
}
