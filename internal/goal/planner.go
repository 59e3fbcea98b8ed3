package goal

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/scaryPonens/fundadvisor/internal/domain"
	"github.com/scaryPonens/fundadvisor/internal/recommend"
)

const (
	MinHorizonYears = 1
	MaxHorizonYears = 50
)

type Planner struct {
	now func() time.Time
}

func NewPlanner(now func() time.Time) *Planner {
	if now == nil {
		now = time.Now
	}
	return &Planner{now: now}
}

// PlanRequest captures the goal inputs. InitialCorpus and MonthlySIP may
// each be zero but not both.
type PlanRequest struct {
	RegistrationID int64
	RiskCategory   domain.RiskCategory
	InitialCorpus  float64
	MonthlySIP     float64
	HorizonYears   int
}

// Projection holds the three growth scenarios plus the assumptions behind
// them.
type Projection struct {
	Conservative         float64 `json:"conservative"`
	Expected             float64 `json:"expected"`
	BestCase             float64 `json:"best_case"`
	BaseReturn           float64 `json:"base_return"`
	AdjustedReturn       float64 `json:"adjusted_return"`
	Confidence           string  `json:"confidence"`
	ConfidencePct        int     `json:"confidence_percentage"`
	Volatility           float64 `json:"volatility"`
	MeanReversionApplied bool    `json:"mean_reversion_applied"`
}

// CorpusGrowth is the projected value of a starting corpus plus a monthly
// SIP after the given years, compounding monthly:
//
//	FV = PV*(1+r)^n + PMT*((1+r)^n - 1)/r
//
// with r the monthly rate and n the month count. A zero rate degenerates to
// the linear sum.
func CorpusGrowth(principal, monthlySIP, annualReturnPct float64, years int) float64 {
	if years <= 0 {
		return principal
	}
	if annualReturnPct == 0 {
		return principal + monthlySIP*12*float64(years)
	}
	r := annualReturnPct / 12 / 100
	n := float64(years * 12)
	growth := math.Pow(1+r, n)
	return principal*growth + monthlySIP*(growth-1)/r
}

// Project computes the three scenarios for a category. The expected
// scenario uses the mean-reverted return; conservative and best case use
// the raw band edges.
func Project(c domain.RiskCategory, principal, sip float64, years int) Projection {
	a := domain.ReturnsFor(c)
	adjusted := recommend.AdjustedExpectedReturn(c)
	vol := domain.VolatilityFor(c)
	level := confidenceFor(vol)

	return Projection{
		Conservative:         CorpusGrowth(principal, sip, a.Conservative, years),
		Expected:             CorpusGrowth(principal, sip, adjusted, years),
		BestCase:             CorpusGrowth(principal, sip, a.BestCase, years),
		BaseReturn:           a.Expected,
		AdjustedReturn:       adjusted,
		Confidence:           level,
		ConfidencePct:        recommend.ConfidencePercent(level),
		Volatility:           vol,
		MeanReversionApplied: adjusted != a.Expected,
	}
}

// confidenceFor scores category volatility (70%) against a mature-fund age
// score (30%). Only the low-volatility band reaches High.
func confidenceFor(volatility float64) string {
	volScore := 1
	switch {
	case volatility <= 5.0:
		volScore = 3
	case volatility <= 10.0:
		volScore = 2
	}
	const ageScore = 3 // category baselines assume a 10y track record
	combined := float64(volScore)*0.7 + float64(ageScore)*0.3
	switch {
	case combined >= 2.5:
		return "High"
	case combined >= 1.5:
		return "Medium"
	default:
		return "Low"
	}
}

// Plan validates the request, projects it, and returns a Goal ready to
// persist.
func (p *Planner) Plan(req PlanRequest) (domain.Goal, error) {
	if err := validate(req); err != nil {
		return domain.Goal{}, err
	}

	proj := Project(req.RiskCategory, req.InitialCorpus, req.MonthlySIP, req.HorizonYears)
	now := p.now()

	return domain.Goal{
		GoalID:         GoalID(now, req.RegistrationID),
		RegistrationID: req.RegistrationID,
		InitialCorpus:  req.InitialCorpus,
		MonthlySIP:     req.MonthlySIP,
		HorizonYears:   req.HorizonYears,
		RiskCategory:   req.RiskCategory,
		Conservative:   proj.Conservative,
		Expected:       proj.Expected,
		BestCase:       proj.BestCase,
		Confidence:     proj.Confidence,
		AdjustedReturn: proj.AdjustedReturn,
		Status:         domain.GoalStatusSaved,
		CreatedAt:      now.UTC(),
		UpdatedAt:      now.UTC(),
	}, nil
}

func validate(req PlanRequest) error {
	if !req.RiskCategory.IsValid() {
		return fmt.Errorf("%w: unknown risk category %q", domain.ErrInvalidRequest, req.RiskCategory)
	}
	if req.InitialCorpus < 0 || req.MonthlySIP < 0 {
		return fmt.Errorf("%w: corpus and sip must be non-negative", domain.ErrInvalidRequest)
	}
	if req.InitialCorpus == 0 && req.MonthlySIP == 0 {
		return fmt.Errorf("%w: either corpus or sip must be positive", domain.ErrInvalidRequest)
	}
	if req.HorizonYears < MinHorizonYears || req.HorizonYears > MaxHorizonYears {
		return fmt.Errorf("%w: horizon must be between %d and %d years", domain.ErrInvalidRequest, MinHorizonYears, MaxHorizonYears)
	}
	return nil
}

// YearsToTarget is the smallest horizon whose expected-scenario corpus
// reaches the target, or ok=false when even the max horizon falls short.
func YearsToTarget(c domain.RiskCategory, target, principal, sip float64) (int, bool) {
	if target <= principal {
		return 0, true
	}
	rate := recommend.AdjustedExpectedReturn(c)
	for years := MinHorizonYears; years <= MaxHorizonYears; years++ {
		if CorpusGrowth(principal, sip, rate, years) >= target {
			return years, true
		}
	}
	return 0, false
}

// GoalID builds a shareable id of the form GOAL_YYYYMMDD_XXXXX. The suffix
// is the first five hex chars, uppercased, of an MD5 over the timestamp and
// registration id.
func GoalID(now time.Time, registrationID int64) string {
	seed := now.Format(time.RFC3339Nano)
	if registrationID > 0 {
		seed += strconv.FormatInt(registrationID, 10)
	} else {
		seed += "anon"
	}
	sum := md5.Sum([]byte(seed))
	suffix := strings.ToUpper(hex.EncodeToString(sum[:]))[:5]
	return fmt.Sprintf("GOAL_%s_%s", now.Format("20060102"), suffix)
}
