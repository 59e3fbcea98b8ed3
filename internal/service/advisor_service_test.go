package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/scaryPonens/fundadvisor/internal/cache"
	"github.com/scaryPonens/fundadvisor/internal/catalog"
	"github.com/scaryPonens/fundadvisor/internal/domain"
	"github.com/scaryPonens/fundadvisor/internal/goal"
	"github.com/scaryPonens/fundadvisor/internal/risk"

	"go.opentelemetry.io/otel/trace"
)

const advisorTestHeader = "risk_profile,duration,rank,fund_name,fund_category,fund_type," +
	"aum_cr,exp_ratio,return_1y,return_3y,return_5y,min_investment,rating,remarks," +
	"last_updated,category_10y_return,category_volatility,fund_volatility"

func testCatalogHandle(t *testing.T) *catalog.Handle {
	t.Helper()
	rows := []string{
		advisorTestHeader,
		"High Risk,> 1 year,1,Quantum Momentum Fund,Mid Cap,Equity,1200,0.8,22,18,16,500,5,,2025-08-20,14.5,16.2,15.0",
		"Low Risk,< 6 months,2,Anchor Liquid Fund,Liquid,Debt,800,0.2,6,6,6,500,4,,2025-08-21,6.5,2.1,1.8",
	}
	c, err := catalog.Read(strings.NewReader(strings.Join(rows, "\n")))
	if err != nil {
		t.Fatalf("build test catalog: %v", err)
	}
	return catalog.NewHandle(c)
}

func validRegistration() domain.Registration {
	return domain.Registration{
		Name:    "Asha Rao",
		Email:   "asha@example.com",
		City:    "Pune",
		Country: "India",
		Consent: true,
	}
}

func TestAdvisorScoreAnswers(t *testing.T) {
	svc := NewAdvisorService(
		trace.NewNoopTracerProvider().Tracer("test"),
		testCatalogHandle(t), &stubRecommender{}, &stubPlanner{}, &stubRegStore{}, &stubGoalStore{}, nil,
	)

	answers := make([]int, risk.QuestionCount)
	got, err := svc.ScoreAnswers(context.Background(), answers)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantScore, err := risk.Score(answers)
	if err != nil {
		t.Fatalf("score fixture: %v", err)
	}
	if got.Score != wantScore || got.Category != risk.Categorize(wantScore) {
		t.Fatalf("unexpected assessment: %+v", got)
	}
	lo, hi, ok := risk.BandFor(got.Category)
	if !ok || got.BandLow != lo || got.BandHigh != hi {
		t.Fatalf("unexpected band: %+v", got)
	}
}

func TestAdvisorScoreAnswersInvalid(t *testing.T) {
	svc := NewAdvisorService(
		trace.NewNoopTracerProvider().Tracer("test"),
		testCatalogHandle(t), &stubRecommender{}, &stubPlanner{}, &stubRegStore{}, &stubGoalStore{}, nil,
	)

	if _, err := svc.ScoreAnswers(context.Background(), []int{1, 2}); !errors.Is(err, domain.ErrInvalidAnswers) {
		t.Fatalf("expected ErrInvalidAnswers, got %v", err)
	}
}

func TestAdvisorQuickAssess(t *testing.T) {
	svc := NewAdvisorService(
		trace.NewNoopTracerProvider().Tracer("test"),
		testCatalogHandle(t), &stubRecommender{}, &stubPlanner{}, &stubRegStore{}, &stubGoalStore{}, nil,
	)

	got, err := svc.QuickAssess(context.Background(), "high")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Category != domain.CategoryHigh || got.Score != 0 {
		t.Fatalf("unexpected assessment: %+v", got)
	}
	if got.BandLow != 29 || got.BandHigh != 45 {
		t.Fatalf("unexpected band: %+v", got)
	}

	// Moderate is only reachable through the full questionnaire.
	if _, err := svc.QuickAssess(context.Background(), "Moderate"); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
	if _, err := svc.QuickAssess(context.Background(), "yolo"); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestAdvisorRegisterValidates(t *testing.T) {
	regs := &stubRegStore{}
	svc := NewAdvisorService(
		trace.NewNoopTracerProvider().Tracer("test"),
		testCatalogHandle(t), &stubRecommender{}, &stubPlanner{}, regs, &stubGoalStore{}, nil,
	)
	ctx := context.Background()

	bad := validRegistration()
	bad.Email = "not-an-email"
	if _, _, err := svc.Register(ctx, bad, nil); !errors.Is(err, domain.ErrInvalidRegistration) {
		t.Fatalf("expected ErrInvalidRegistration for email, got %v", err)
	}

	bad = validRegistration()
	bad.Consent = false
	if _, _, err := svc.Register(ctx, bad, nil); !errors.Is(err, domain.ErrInvalidRegistration) {
		t.Fatalf("expected ErrInvalidRegistration for consent, got %v", err)
	}

	bad = validRegistration()
	bad.Country = "  "
	if _, _, err := svc.Register(ctx, bad, nil); !errors.Is(err, domain.ErrInvalidRegistration) {
		t.Fatalf("expected ErrInvalidRegistration for country, got %v", err)
	}

	bad = validRegistration()
	bad.RiskCategory = "Extreme"
	if _, _, err := svc.Register(ctx, bad, nil); !errors.Is(err, domain.ErrInvalidRegistration) {
		t.Fatalf("expected ErrInvalidRegistration for category, got %v", err)
	}

	if len(regs.saved) != 0 {
		t.Fatalf("invalid registrations must not be persisted, saved %d", len(regs.saved))
	}
}

func TestAdvisorRegisterScoresAndCreatesSession(t *testing.T) {
	regs := &stubRegStore{}
	sessions := &stubSessions{}
	svc := NewAdvisorService(
		trace.NewNoopTracerProvider().Tracer("test"),
		testCatalogHandle(t), &stubRecommender{}, &stubPlanner{}, regs, &stubGoalStore{}, sessions,
	)

	answers := make([]int, risk.QuestionCount)
	id, token, err := svc.Register(context.Background(), validRegistration(), answers)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != 1 || token == "" {
		t.Fatalf("unexpected id/token: %d %q", id, token)
	}

	if len(regs.saved) != 1 {
		t.Fatalf("expected 1 saved registration, got %d", len(regs.saved))
	}
	saved := regs.saved[0]
	if !saved.QuestionnaireCompleted || saved.RiskScore == 0 || !saved.RiskCategory.IsValid() {
		t.Fatalf("expected scored registration, got %+v", saved)
	}
	if saved.ConsentTS.IsZero() || saved.CreatedTS.IsZero() {
		t.Fatalf("expected timestamps to be filled, got %+v", saved)
	}

	sess, err := sessions.Get(context.Background(), token)
	if err != nil {
		t.Fatalf("expected session for token: %v", err)
	}
	if sess.RegistrationID != id || sess.RiskCategory != string(saved.RiskCategory) {
		t.Fatalf("unexpected session: %+v", sess)
	}
	if len(sess.Answers) != risk.QuestionCount {
		t.Fatalf("expected answers cached, got %d", len(sess.Answers))
	}
}

func TestAdvisorRegisterQuickProfile(t *testing.T) {
	regs := &stubRegStore{}
	svc := NewAdvisorService(
		trace.NewNoopTracerProvider().Tracer("test"),
		testCatalogHandle(t), &stubRecommender{}, &stubPlanner{}, regs, &stubGoalStore{}, nil,
	)

	reg := validRegistration()
	reg.RiskCategory = domain.CategoryHigh
	id, token, err := svc.Register(context.Background(), reg, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != 1 {
		t.Fatalf("expected id 1, got %d", id)
	}
	if token != "" {
		t.Fatalf("no session store configured, expected empty token, got %q", token)
	}
	saved := regs.saved[0]
	if saved.QuestionnaireCompleted || saved.RiskCategory != domain.CategoryHigh {
		t.Fatalf("unexpected quick-profile registration: %+v", saved)
	}
}

func TestAdvisorRecommendationsPaging(t *testing.T) {
	rec := &stubRecommender{out: makeRecommendations(12)}
	svc := NewAdvisorService(
		trace.NewNoopTracerProvider().Tracer("test"),
		testCatalogHandle(t), rec, &stubPlanner{}, &stubRegStore{}, &stubGoalStore{}, nil,
	)
	ctx := context.Background()
	req := domain.RecommendationRequest{RiskCategory: domain.CategoryHigh, Amount: 5000, Duration: "> 1 year"}

	page, err := svc.Recommendations(ctx, "", req, 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page.Recommendations) != domain.DefaultDisplayCount || page.Total != 12 || !page.HasMore {
		t.Fatalf("unexpected first page: %d of %d hasMore=%v", len(page.Recommendations), page.Total, page.HasMore)
	}
	if rec.lastFunds != 2 {
		t.Fatalf("expected full catalog snapshot, got %d funds", rec.lastFunds)
	}

	page, err = svc.Recommendations(ctx, "", req, 50, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page.Recommendations) != domain.MaxDisplayCount || !page.HasMore {
		t.Fatalf("oversized limit should cap at %d: got %d", domain.MaxDisplayCount, len(page.Recommendations))
	}

	page, err = svc.Recommendations(ctx, "", req, 5, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page.Recommendations) != 2 || page.HasMore {
		t.Fatalf("unexpected tail page: %d hasMore=%v", len(page.Recommendations), page.HasMore)
	}

	page, err = svc.Recommendations(ctx, "", req, 5, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page.Recommendations) != 0 || page.HasMore {
		t.Fatalf("offset past the end should be empty: %+v", page)
	}
}

func TestAdvisorRecommendationsSessionFillsProfile(t *testing.T) {
	rec := &stubRecommender{out: makeRecommendations(3)}
	sessions := &stubSessions{}
	svc := NewAdvisorService(
		trace.NewNoopTracerProvider().Tracer("test"),
		testCatalogHandle(t), rec, &stubPlanner{}, &stubRegStore{}, &stubGoalStore{}, sessions,
	)
	ctx := context.Background()

	token, err := sessions.Put(ctx, cache.Session{
		RegistrationID: 9,
		RiskCategory:   string(domain.CategoryHigh),
		Amount:         5000,
		Duration:       "> 1 year",
	})
	if err != nil {
		t.Fatalf("seed session: %v", err)
	}

	if _, err := svc.Recommendations(ctx, token, domain.RecommendationRequest{}, 0, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.lastReq.RiskCategory != domain.CategoryHigh || rec.lastReq.Amount != 5000 || rec.lastReq.Duration != "> 1 year" {
		t.Fatalf("session should fill the request, got %+v", rec.lastReq)
	}

	if _, err := svc.Recommendations(ctx, "missing-token", domain.RecommendationRequest{}, 0, 0); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing session, got %v", err)
	}
}

func TestAdvisorMarkViewed(t *testing.T) {
	regs := &stubRegStore{}
	svc := NewAdvisorService(
		trace.NewNoopTracerProvider().Tracer("test"),
		testCatalogHandle(t), &stubRecommender{}, &stubPlanner{}, regs, &stubGoalStore{}, nil,
	)
	ctx := context.Background()

	if err := svc.MarkViewed(ctx, 0); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
	if err := svc.MarkViewed(ctx, 5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if regs.viewedID != 5 {
		t.Fatalf("expected viewed id 5, got %d", regs.viewedID)
	}
}

func TestAdvisorSearchFunds(t *testing.T) {
	svc := NewAdvisorService(
		trace.NewNoopTracerProvider().Tracer("test"),
		testCatalogHandle(t), &stubRecommender{}, &stubPlanner{}, &stubRegStore{}, &stubGoalStore{}, nil,
	)
	ctx := context.Background()

	if _, err := svc.SearchFunds(ctx, "   ", 5); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest for empty query, got %v", err)
	}

	funds, err := svc.SearchFunds(ctx, "Quantum", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(funds) != 1 || funds[0].Name != "Quantum Momentum Fund" {
		t.Fatalf("unexpected search result: %+v", funds)
	}
}

func TestAdvisorPlanGoalPersists(t *testing.T) {
	planner := &stubPlanner{out: domain.Goal{GoalID: "GOAL_20250825_ABCDE", RegistrationID: 3, Expected: 100000}}
	goals := &stubGoalStore{}
	svc := NewAdvisorService(
		trace.NewNoopTracerProvider().Tracer("test"),
		testCatalogHandle(t), &stubRecommender{}, planner, &stubRegStore{}, goals, nil,
	)

	req := goal.PlanRequest{RegistrationID: 3, RiskCategory: domain.CategoryMedium, InitialCorpus: 50000, MonthlySIP: 5000, HorizonYears: 10}
	g, err := svc.PlanGoal(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.GoalID != "GOAL_20250825_ABCDE" {
		t.Fatalf("unexpected goal: %+v", g)
	}
	if planner.lastReq != req {
		t.Fatalf("unexpected plan request: %+v", planner.lastReq)
	}
	if len(goals.saved) != 1 || goals.saved[0].GoalID != g.GoalID {
		t.Fatalf("expected goal persisted, got %+v", goals.saved)
	}
}

func TestAdvisorGoalByIDStampsRevisit(t *testing.T) {
	goals := &stubGoalStore{goals: map[string]domain.Goal{
		"G1": {GoalID: "G1", RegistrationID: 3, Status: domain.GoalStatusSaved},
	}}
	svc := NewAdvisorService(
		trace.NewNoopTracerProvider().Tracer("test"),
		testCatalogHandle(t), &stubRecommender{}, &stubPlanner{}, &stubRegStore{}, goals, nil,
	)
	ctx := context.Background()

	g, err := svc.GoalByID(ctx, "G1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.Status != domain.GoalStatusRevisited {
		t.Fatalf("expected revisited status, got %q", g.Status)
	}
	if len(goals.revisited) != 1 || goals.revisited[0] != "G1" {
		t.Fatalf("expected revisit stamp, got %+v", goals.revisited)
	}

	if _, err := svc.GoalByID(ctx, "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.GoalByID(ctx, ""); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestAdvisorMarkGoalEmailed(t *testing.T) {
	goals := &stubGoalStore{goals: map[string]domain.Goal{
		"G1": {GoalID: "G1", Status: domain.GoalStatusSaved},
	}}
	svc := NewAdvisorService(
		trace.NewNoopTracerProvider().Tracer("test"),
		testCatalogHandle(t), &stubRecommender{}, &stubPlanner{}, &stubRegStore{}, goals, nil,
	)

	g, err := svc.MarkGoalEmailed(context.Background(), "G1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.Status != domain.GoalStatusEmailSent {
		t.Fatalf("expected email_sent status, got %q", g.Status)
	}
	if len(goals.emailed) != 1 {
		t.Fatalf("expected email stamp, got %+v", goals.emailed)
	}
}

func TestAdvisorGoalsForRegistration(t *testing.T) {
	goals := &stubGoalStore{goals: map[string]domain.Goal{
		"G1": {GoalID: "G1", RegistrationID: 3},
		"G2": {GoalID: "G2", RegistrationID: 4},
	}}
	svc := NewAdvisorService(
		trace.NewNoopTracerProvider().Tracer("test"),
		testCatalogHandle(t), &stubRecommender{}, &stubPlanner{}, &stubRegStore{}, goals, nil,
	)
	ctx := context.Background()

	if _, err := svc.GoalsForRegistration(ctx, 0); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
	got, err := svc.GoalsForRegistration(ctx, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].GoalID != "G1" {
		t.Fatalf("unexpected goals: %+v", got)
	}
}

func TestAdvisorGoalChart(t *testing.T) {
	goals := &stubGoalStore{goals: map[string]domain.Goal{
		"G1": {
			GoalID:         "G1",
			RegistrationID: 3,
			InitialCorpus:  100000,
			MonthlySIP:     5000,
			HorizonYears:   10,
			RiskCategory:   domain.CategoryMedium,
			AdjustedReturn: 9.0,
			Status:         domain.GoalStatusSaved,
		},
	}}
	svc := NewAdvisorService(
		trace.NewNoopTracerProvider().Tracer("test"),
		testCatalogHandle(t), &stubRecommender{}, &stubPlanner{}, &stubRegStore{}, goals, nil,
	)
	ctx := context.Background()

	img, err := svc.GoalChart(ctx, "G1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if img.MimeType != "image/png" || len(img.Bytes) == 0 {
		t.Fatalf("unexpected chart image: %s with %d bytes", img.MimeType, len(img.Bytes))
	}
	if len(goals.revisited) != 0 {
		t.Fatalf("chart fetch must not stamp a revisit, got %+v", goals.revisited)
	}

	if _, err := svc.GoalChart(ctx, "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.GoalChart(ctx, "  "); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func makeRecommendations(n int) []domain.Recommendation {
	out := make([]domain.Recommendation, n)
	for i := range out {
		out[i] = domain.Recommendation{
			Fund:     domain.Fund{Name: fmt.Sprintf("Fund %02d", i+1)},
			Position: i + 1,
		}
	}
	return out
}

type stubRecommender struct {
	lastReq   domain.RecommendationRequest
	lastFunds int
	out       []domain.Recommendation
	err       error
}

func (s *stubRecommender) Recommend(funds []domain.Fund, req domain.RecommendationRequest) ([]domain.Recommendation, error) {
	s.lastFunds = len(funds)
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	return append([]domain.Recommendation(nil), s.out...), nil
}

type stubPlanner struct {
	lastReq goal.PlanRequest
	out     domain.Goal
	err     error
}

func (s *stubPlanner) Plan(req goal.PlanRequest) (domain.Goal, error) {
	s.lastReq = req
	if s.err != nil {
		return domain.Goal{}, s.err
	}
	return s.out, nil
}

type stubRegStore struct {
	nextID   int64
	saved    []domain.Registration
	viewedID int64
	saveErr  error
}

func (s *stubRegStore) SaveRegistration(ctx context.Context, reg domain.Registration) (int64, error) {
	if s.saveErr != nil {
		return 0, s.saveErr
	}
	s.saved = append(s.saved, reg)
	s.nextID++
	return s.nextID, nil
}

func (s *stubRegStore) MarkRecommendationsViewed(ctx context.Context, id int64) error {
	s.viewedID = id
	return nil
}

type stubGoalStore struct {
	goals     map[string]domain.Goal
	saved     []domain.Goal
	emailed   []string
	revisited []string
}

func (s *stubGoalStore) SaveGoal(ctx context.Context, g domain.Goal) error {
	if s.goals == nil {
		s.goals = make(map[string]domain.Goal)
	}
	s.saved = append(s.saved, g)
	s.goals[g.GoalID] = g
	return nil
}

func (s *stubGoalStore) Goal(ctx context.Context, goalID string) (domain.Goal, error) {
	g, ok := s.goals[goalID]
	if !ok {
		return domain.Goal{}, domain.ErrNotFound
	}
	return g, nil
}

func (s *stubGoalStore) UserGoals(ctx context.Context, registrationID int64) ([]domain.Goal, error) {
	var out []domain.Goal
	for _, g := range s.goals {
		if g.RegistrationID == registrationID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (s *stubGoalStore) MarkGoalEmailSent(ctx context.Context, goalID string) error {
	g, ok := s.goals[goalID]
	if !ok {
		return domain.ErrNotFound
	}
	g.Status = domain.GoalStatusEmailSent
	s.goals[goalID] = g
	s.emailed = append(s.emailed, goalID)
	return nil
}

func (s *stubGoalStore) MarkGoalRevisited(ctx context.Context, goalID string) error {
	g, ok := s.goals[goalID]
	if !ok {
		return domain.ErrNotFound
	}
	g.Status = domain.GoalStatusRevisited
	s.goals[goalID] = g
	s.revisited = append(s.revisited, goalID)
	return nil
}

type stubSessions struct {
	stored map[string]cache.Session
	puts   int
}

func (s *stubSessions) Put(ctx context.Context, sess cache.Session) (string, error) {
	if s.stored == nil {
		s.stored = make(map[string]cache.Session)
	}
	s.puts++
	token := fmt.Sprintf("tok-%d", s.puts)
	s.stored[token] = sess
	return token, nil
}

func (s *stubSessions) Get(ctx context.Context, token string) (cache.Session, error) {
	sess, ok := s.stored[token]
	if !ok {
		return cache.Session{}, domain.ErrNotFound
	}
	return sess, nil
}
