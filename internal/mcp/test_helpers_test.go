package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/scaryPonens/fundadvisor/internal/catalog"
	"github.com/scaryPonens/fundadvisor/internal/domain"
	"github.com/scaryPonens/fundadvisor/internal/service"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const mcpCatalogHeader = "risk_profile,duration,rank,fund_name,fund_category,fund_type," +
	"aum_cr,exp_ratio,return_1y,return_3y,return_5y,min_investment,rating,remarks," +
	"last_updated,category_10y_return,category_volatility,fund_volatility"

type stubAdvisorService struct {
	assessment service.RiskAssessment
	page       service.RecommendationPage
	results    []domain.Fund

	lastAnswers     []int
	lastProfile     string
	lastRequest     domain.RecommendationRequest
	lastRecommend   int
	lastQuery       string
	lastSearchLimit int
}

func (s *stubAdvisorService) ScoreAnswers(ctx context.Context, answers []int) (service.RiskAssessment, error) {
	s.lastAnswers = append([]int(nil), answers...)
	return s.assessment, nil
}

func (s *stubAdvisorService) QuickAssess(ctx context.Context, profile string) (service.RiskAssessment, error) {
	s.lastProfile = profile
	if _, ok := domain.ParseRiskCategory(profile); !ok {
		return service.RiskAssessment{}, fmt.Errorf("%w: unknown quick profile %q", domain.ErrInvalidRequest, profile)
	}
	return s.assessment, nil
}

func (s *stubAdvisorService) Recommendations(ctx context.Context, token string, req domain.RecommendationRequest, limit, offset int) (service.RecommendationPage, error) {
	s.lastRequest = req
	s.lastRecommend = limit
	return s.page, nil
}

func (s *stubAdvisorService) SearchFunds(ctx context.Context, query string, limit int) ([]domain.Fund, error) {
	s.lastQuery = query
	s.lastSearchLimit = limit
	return append([]domain.Fund(nil), s.results...), nil
}

func testCatalogHandle(t *testing.T) *catalog.Handle {
	t.Helper()
	updated := time.Now().AddDate(0, 0, -1).Format("2006-01-02")
	rows := []string{
		mcpCatalogHeader,
		fmt.Sprintf("High Risk,> 1 year,1,Quantum Momentum Fund,Mid Cap,Equity,1200,0.8,22,18,16,500,5,,%s,14.5,16.2,15.0", updated),
		fmt.Sprintf("Low Risk,< 6 months,2,Anchor Liquid Fund,Liquid,Debt,800,0.2,6,6,6,500,4,,%s,6.5,2.1,1.8", updated),
	}
	c, err := catalog.Read(strings.NewReader(strings.Join(rows, "\n")))
	if err != nil {
		t.Fatalf("build test catalog: %v", err)
	}
	return catalog.NewHandle(c)
}

func testServer(t *testing.T) (*sdkmcp.Server, *stubAdvisorService, *catalog.Handle) {
	t.Helper()
	advisor := &stubAdvisorService{
		assessment: service.RiskAssessment{
			Score:    30,
			Category: domain.CategoryHigh,
			BandLow:  29,
			BandHigh: 45,
		},
		page: service.RecommendationPage{
			Recommendations: []domain.Recommendation{{
				Fund:       domain.Fund{Name: "Quantum Momentum Fund", RiskProfile: domain.CategoryHigh},
				Position:   1,
				Confidence: "Medium",
			}},
			Total: 1,
		},
		results: []domain.Fund{{Name: "Anchor Liquid Fund", RiskProfile: domain.CategoryLow}},
	}
	handle := testCatalogHandle(t)

	srv := NewServer(nil, advisor, handle, ServerConfig{RequestTimeout: time.Second})
	return srv, advisor, handle
}

func connectInMemory(ctx context.Context, srv *sdkmcp.Server) (*sdkmcp.ClientSession, context.CancelFunc, error) {
	clientTransport, serverTransport := sdkmcp.NewInMemoryTransports()
	runCtx, cancel := context.WithCancel(ctx)
	go func() { _ = srv.Run(runCtx, serverTransport) }()

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "mcp-test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		cancel()
		return nil, nil, err
	}
	return session, cancel, nil
}

type authRoundTripper struct {
	token string
	base  http.RoundTripper
}

func (t *authRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	if t.token != "" {
		clone.Header.Set("Authorization", "Bearer "+t.token)
	}
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(clone)
}

func decodeResourceJSON(result *sdkmcp.ReadResourceResult, out any) error {
	if len(result.Contents) == 0 {
		return nil
	}
	return json.Unmarshal([]byte(result.Contents[0].Text), out)
}
