package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/scaryPonens/fundadvisor/internal/cache"
	"github.com/scaryPonens/fundadvisor/internal/catalog"
	"github.com/scaryPonens/fundadvisor/internal/chart"
	"github.com/scaryPonens/fundadvisor/internal/domain"
	"github.com/scaryPonens/fundadvisor/internal/goal"
	"github.com/scaryPonens/fundadvisor/internal/recommend"
	"github.com/scaryPonens/fundadvisor/internal/risk"

	"go.opentelemetry.io/otel/trace"
)

type CatalogHandle interface {
	Snapshot() *catalog.Catalog
}

type Recommender interface {
	Recommend(funds []domain.Fund, req domain.RecommendationRequest) ([]domain.Recommendation, error)
}

type GoalPlanner interface {
	Plan(req goal.PlanRequest) (domain.Goal, error)
}

type RegistrationStore interface {
	SaveRegistration(ctx context.Context, reg domain.Registration) (int64, error)
	MarkRecommendationsViewed(ctx context.Context, id int64) error
}

type GoalStore interface {
	SaveGoal(ctx context.Context, g domain.Goal) error
	Goal(ctx context.Context, goalID string) (domain.Goal, error)
	UserGoals(ctx context.Context, registrationID int64) ([]domain.Goal, error)
	MarkGoalEmailSent(ctx context.Context, goalID string) error
	MarkGoalRevisited(ctx context.Context, goalID string) error
}

type SessionStore interface {
	Put(ctx context.Context, sess cache.Session) (string, error)
	Get(ctx context.Context, token string) (cache.Session, error)
}

// RiskAssessment is the outcome of scoring a questionnaire or picking a
// quick profile.
type RiskAssessment struct {
	Score    int                 `json:"score,omitempty"`
	Category domain.RiskCategory `json:"category"`
	BandLow  int                 `json:"band_low"`
	BandHigh int                 `json:"band_high"`
}

// RecommendationPage is one display window over the full ranked result.
type RecommendationPage struct {
	Recommendations []domain.Recommendation `json:"recommendations"`
	Total           int                     `json:"total"`
	Offset          int                     `json:"offset"`
	HasMore         bool                    `json:"has_more"`
}

type AdvisorService struct {
	tracer   trace.Tracer
	catalog  CatalogHandle
	engine   Recommender
	planner  GoalPlanner
	regs     RegistrationStore
	goals    GoalStore
	sessions SessionStore
	charts   *chart.Renderer
}

// NewAdvisorService wires the user-facing flows. sessions may be nil, in
// which case registrations succeed without a session token.
func NewAdvisorService(
	tracer trace.Tracer,
	catalogHandle CatalogHandle,
	engine Recommender,
	planner GoalPlanner,
	regs RegistrationStore,
	goals GoalStore,
	sessions SessionStore,
) *AdvisorService {
	return &AdvisorService{
		tracer:   tracer,
		catalog:  catalogHandle,
		engine:   engine,
		planner:  planner,
		regs:     regs,
		goals:    goals,
		sessions: sessions,
		charts:   chart.NewRenderer(),
	}
}

func (s *AdvisorService) Questionnaire(ctx context.Context) []risk.Question {
	_, span := s.tracer.Start(ctx, "advisor-service.questionnaire")
	defer span.End()

	return risk.Questionnaire()
}

func (s *AdvisorService) QuickOptions(ctx context.Context) []risk.QuickOption {
	_, span := s.tracer.Start(ctx, "advisor-service.quick-options")
	defer span.End()

	return risk.QuickOptions()
}

func (s *AdvisorService) ScoreAnswers(ctx context.Context, answers []int) (RiskAssessment, error) {
	_, span := s.tracer.Start(ctx, "advisor-service.score-answers")
	defer span.End()

	score, err := risk.Score(answers)
	if err != nil {
		return RiskAssessment{}, err
	}
	category := risk.Categorize(score)
	lo, hi, _ := risk.BandFor(category)
	return RiskAssessment{Score: score, Category: category, BandLow: lo, BandHigh: hi}, nil
}

func (s *AdvisorService) QuickAssess(ctx context.Context, profile string) (RiskAssessment, error) {
	_, span := s.tracer.Start(ctx, "advisor-service.quick-assess")
	defer span.End()

	category, ok := domain.ParseRiskCategory(profile)
	if !ok || !risk.ValidQuickProfile(category) {
		return RiskAssessment{}, fmt.Errorf("%w: unknown quick profile %q", domain.ErrInvalidRequest, profile)
	}
	lo, hi, _ := risk.BandFor(category)
	return RiskAssessment{Category: category, BandLow: lo, BandHigh: hi}, nil
}

// Register validates and persists a registration. When answers are given
// the questionnaire is scored here so the stored row and the session agree.
func (s *AdvisorService) Register(ctx context.Context, reg domain.Registration, answers []int) (int64, string, error) {
	_, span := s.tracer.Start(ctx, "advisor-service.register")
	defer span.End()

	if s.regs == nil {
		return 0, "", fmt.Errorf("advisor service is not fully initialized")
	}

	reg.Name = strings.TrimSpace(reg.Name)
	reg.Email = strings.TrimSpace(reg.Email)
	reg.City = strings.TrimSpace(reg.City)
	reg.Country = strings.TrimSpace(reg.Country)

	if !domain.ValidEmail(reg.Email) {
		return 0, "", fmt.Errorf("%w: invalid email", domain.ErrInvalidRegistration)
	}
	if !reg.Consent {
		return 0, "", fmt.Errorf("%w: consent is required", domain.ErrInvalidRegistration)
	}
	if reg.Country == "" {
		return 0, "", fmt.Errorf("%w: country is required", domain.ErrInvalidRegistration)
	}

	if len(answers) > 0 {
		score, err := risk.Score(answers)
		if err != nil {
			return 0, "", err
		}
		reg.RiskScore = score
		reg.RiskCategory = risk.Categorize(score)
		reg.QuestionnaireCompleted = true
	} else if reg.RiskCategory != "" && !reg.RiskCategory.IsValid() {
		return 0, "", fmt.Errorf("%w: invalid risk category %q", domain.ErrInvalidRegistration, reg.RiskCategory)
	}

	now := time.Now().UTC()
	if reg.ConsentTS.IsZero() {
		reg.ConsentTS = now
	}
	if reg.CreatedTS.IsZero() {
		reg.CreatedTS = now
	}

	id, err := s.regs.SaveRegistration(ctx, reg)
	if err != nil {
		return 0, "", fmt.Errorf("save registration: %w", err)
	}

	token := ""
	if s.sessions != nil {
		token, err = s.sessions.Put(ctx, cache.Session{
			RegistrationID: id,
			Answers:        answers,
			RiskScore:      reg.RiskScore,
			RiskCategory:   string(reg.RiskCategory),
			CreatedAt:      now,
		})
		if err != nil {
			return 0, "", fmt.Errorf("create session: %w", err)
		}
	}
	return id, token, nil
}

// Recommendations ranks the current catalog for req and returns the page
// at offset. A session token fills any profile fields the request leaves
// blank, so follow-up pages replay the same inputs.
func (s *AdvisorService) Recommendations(
	ctx context.Context,
	token string,
	req domain.RecommendationRequest,
	limit, offset int,
) (RecommendationPage, error) {
	_, span := s.tracer.Start(ctx, "advisor-service.recommendations")
	defer span.End()

	if s.catalog == nil || s.engine == nil {
		return RecommendationPage{}, fmt.Errorf("advisor service is not fully initialized")
	}

	if token != "" && s.sessions != nil {
		sess, err := s.sessions.Get(ctx, token)
		if err != nil {
			return RecommendationPage{}, err
		}
		if req.RiskCategory == "" {
			req.RiskCategory = domain.RiskCategory(sess.RiskCategory)
		}
		if req.Amount == 0 && sess.Amount > 0 {
			req.Amount = int64(sess.Amount)
		}
		if req.Duration == "" {
			req.Duration = sess.Duration
		}
	}

	if limit <= 0 {
		limit = domain.DefaultDisplayCount
	}
	if limit > domain.MaxDisplayCount {
		limit = domain.MaxDisplayCount
	}
	if offset < 0 {
		offset = 0
	}

	ranked, err := s.engine.Recommend(s.catalog.Snapshot().Funds(), req)
	if err != nil {
		return RecommendationPage{}, err
	}

	page := recommend.Page(ranked, limit, offset)
	return RecommendationPage{
		Recommendations: page,
		Total:           len(ranked),
		Offset:          offset,
		HasMore:         offset+len(page) < len(ranked),
	}, nil
}

func (s *AdvisorService) MarkViewed(ctx context.Context, registrationID int64) error {
	_, span := s.tracer.Start(ctx, "advisor-service.mark-viewed")
	defer span.End()

	if s.regs == nil {
		return fmt.Errorf("advisor service is not fully initialized")
	}
	if registrationID <= 0 {
		return fmt.Errorf("%w: invalid registration id", domain.ErrInvalidRequest)
	}
	return s.regs.MarkRecommendationsViewed(ctx, registrationID)
}

func (s *AdvisorService) SearchFunds(ctx context.Context, query string, limit int) ([]domain.Fund, error) {
	_, span := s.tracer.Start(ctx, "advisor-service.search-funds")
	defer span.End()

	if s.catalog == nil {
		return nil, fmt.Errorf("advisor service is not fully initialized")
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty search query", domain.ErrInvalidRequest)
	}
	if limit <= 0 {
		limit = domain.MaxDisplayCount
	}
	return s.catalog.Snapshot().Search(query, limit), nil
}

// PlanGoal computes projections for req and persists the resulting goal.
func (s *AdvisorService) PlanGoal(ctx context.Context, req goal.PlanRequest) (domain.Goal, error) {
	_, span := s.tracer.Start(ctx, "advisor-service.plan-goal")
	defer span.End()

	if s.planner == nil || s.goals == nil {
		return domain.Goal{}, fmt.Errorf("advisor service is not fully initialized")
	}

	g, err := s.planner.Plan(req)
	if err != nil {
		return domain.Goal{}, err
	}
	if err := s.goals.SaveGoal(ctx, g); err != nil {
		return domain.Goal{}, fmt.Errorf("save goal: %w", err)
	}
	return g, nil
}

// GoalByID returns a saved goal. Loading a goal is the revisit flow, so
// the row is stamped before it is read back.
func (s *AdvisorService) GoalByID(ctx context.Context, goalID string) (domain.Goal, error) {
	_, span := s.tracer.Start(ctx, "advisor-service.goal-by-id")
	defer span.End()

	if s.goals == nil {
		return domain.Goal{}, fmt.Errorf("advisor service is not fully initialized")
	}
	goalID = strings.TrimSpace(goalID)
	if goalID == "" {
		return domain.Goal{}, fmt.Errorf("%w: empty goal id", domain.ErrInvalidRequest)
	}
	if err := s.goals.MarkGoalRevisited(ctx, goalID); err != nil {
		return domain.Goal{}, err
	}
	return s.goals.Goal(ctx, goalID)
}

// MarkGoalEmailed records that the user asked for their plan by email and
// returns the updated goal.
func (s *AdvisorService) MarkGoalEmailed(ctx context.Context, goalID string) (domain.Goal, error) {
	_, span := s.tracer.Start(ctx, "advisor-service.mark-goal-emailed")
	defer span.End()

	if s.goals == nil {
		return domain.Goal{}, fmt.Errorf("advisor service is not fully initialized")
	}
	goalID = strings.TrimSpace(goalID)
	if goalID == "" {
		return domain.Goal{}, fmt.Errorf("%w: empty goal id", domain.ErrInvalidRequest)
	}
	if err := s.goals.MarkGoalEmailSent(ctx, goalID); err != nil {
		return domain.Goal{}, err
	}
	return s.goals.Goal(ctx, goalID)
}

// GoalChart renders the projection chart for a saved goal. Fetching the
// chart does not count as a revisit.
func (s *AdvisorService) GoalChart(ctx context.Context, goalID string) (*chart.Image, error) {
	_, span := s.tracer.Start(ctx, "advisor-service.goal-chart")
	defer span.End()

	if s.goals == nil {
		return nil, fmt.Errorf("advisor service is not fully initialized")
	}
	goalID = strings.TrimSpace(goalID)
	if goalID == "" {
		return nil, fmt.Errorf("%w: empty goal id", domain.ErrInvalidRequest)
	}
	g, err := s.goals.Goal(ctx, goalID)
	if err != nil {
		return nil, err
	}
	return s.charts.RenderGoalChart(g)
}

func (s *AdvisorService) GoalsForRegistration(ctx context.Context, registrationID int64) ([]domain.Goal, error) {
	_, span := s.tracer.Start(ctx, "advisor-service.goals-for-registration")
	defer span.End()

	if s.goals == nil {
		return nil, fmt.Errorf("advisor service is not fully initialized")
	}
	if registrationID <= 0 {
		return nil, fmt.Errorf("%w: invalid registration id", domain.ErrInvalidRequest)
	}
	return s.goals.UserGoals(ctx, registrationID)
}
