package mcp

import (
	"context"
	"fmt"

	"github.com/scaryPonens/fundadvisor/internal/goal"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerTools(server *mcp.Server, advisor AdvisorClient) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "risk_assess",
		Description: "Score a completed risk questionnaire and return the category and score band",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in riskAssessInput) (*mcp.CallToolResult, riskAssessOutput, error) {
		if advisor == nil {
			return nil, riskAssessOutput{}, fmt.Errorf("advisor service unavailable")
		}
		assessment, err := advisor.ScoreAnswers(ctx, in.Answers)
		if err != nil {
			return nil, riskAssessOutput{}, err
		}
		return nil, riskAssessOutput{Assessment: assessment}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "risk_quick",
		Description: "Map a fast-track profile (low, medium, high) onto its risk category without the questionnaire",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in riskQuickInput) (*mcp.CallToolResult, riskQuickOutput, error) {
		if advisor == nil {
			return nil, riskQuickOutput{}, fmt.Errorf("advisor service unavailable")
		}
		assessment, err := advisor.QuickAssess(ctx, in.Profile)
		if err != nil {
			return nil, riskQuickOutput{}, err
		}
		return nil, riskQuickOutput{Assessment: assessment}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "funds_recommend",
		Description: "Rank catalog funds for a risk category, amount, and duration",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in fundsRecommendInput) (*mcp.CallToolResult, fundsRecommendOutput, error) {
		if advisor == nil {
			return nil, fundsRecommendOutput{}, fmt.Errorf("advisor service unavailable")
		}
		req, err := normalizeRecommendRequest(in)
		if err != nil {
			return nil, fundsRecommendOutput{}, err
		}
		page, err := advisor.Recommendations(ctx, "", req, normalizeRecommendLimit(in.Limit), 0)
		if err != nil {
			return nil, fundsRecommendOutput{}, err
		}
		return nil, fundsRecommendOutput{Recommendations: page.Recommendations, Total: page.Total}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "funds_search",
		Description: "Full-text search over the fund catalog by name, category, or remarks",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in fundsSearchInput) (*mcp.CallToolResult, fundsListOutput, error) {
		if advisor == nil {
			return nil, fundsListOutput{}, fmt.Errorf("advisor service unavailable")
		}
		funds, err := advisor.SearchFunds(ctx, in.Query, normalizeSearchLimit(in.Limit))
		if err != nil {
			return nil, fundsListOutput{}, err
		}
		return nil, fundsListOutput{Funds: funds, Count: len(funds)}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "goal_project",
		Description: "Project corpus growth for a goal across conservative, expected, and best-case scenarios",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in goalProjectInput) (*mcp.CallToolResult, goalProjectOutput, error) {
		category, err := normalizeGoalInput(in)
		if err != nil {
			return nil, goalProjectOutput{}, err
		}
		out := goalProjectOutput{
			Projection: goal.Project(category, in.Corpus, in.MonthlySIP, in.HorizonYears),
		}
		if in.Target > 0 {
			years, ok := goal.YearsToTarget(category, in.Target, in.Corpus, in.MonthlySIP)
			out.Target = &goalTargetOutput{Reachable: ok, Years: years}
		}
		return nil, out, nil
	})
}
