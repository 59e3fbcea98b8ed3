package bot

import (
	"strings"
	"testing"
	"time"

	"github.com/scaryPonens/fundadvisor/internal/domain"
)

func TestStartTelegramBotSkipsWithoutToken(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	if d := StartTelegramBot(nil); d != nil {
		t.Fatal("expected nil dispatcher without a token")
	}
}

func TestParseFundsArgs(t *testing.T) {
	req, err := parseFundsArgs([]string{"high", "5000", "3"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.RiskCategory != domain.CategoryHigh {
		t.Fatalf("expected High Risk, got %s", req.RiskCategory)
	}
	if req.Amount != 5000 {
		t.Fatalf("expected amount 5000, got %d", req.Amount)
	}
	if req.Duration != domain.DurationLong {
		t.Fatalf("expected long duration, got %q", req.Duration)
	}
}

func TestParseFundsArgsRejectsBadInput(t *testing.T) {
	cases := map[string][]string{
		"too few args":     {"high", "5000"},
		"unknown category": {"extreme", "5000", "3"},
		"bad amount":       {"high", "lots", "3"},
		"zero amount":      {"high", "0", "3"},
		"bad bucket":       {"high", "5000", "9"},
	}
	for name, args := range cases {
		if _, err := parseFundsArgs(args); err == nil {
			t.Fatalf("%s: expected error for %v", name, args)
		}
	}
}

func TestDurationFromBucket(t *testing.T) {
	if d, ok := durationFromBucket(1); !ok || d != domain.DurationShort {
		t.Fatalf("bucket 1: got %q ok=%v", d, ok)
	}
	if d, ok := durationFromBucket(2); !ok || d != domain.DurationMid {
		t.Fatalf("bucket 2: got %q ok=%v", d, ok)
	}
	if d, ok := durationFromBucket(3); !ok || d != domain.DurationLong {
		t.Fatalf("bucket 3: got %q ok=%v", d, ok)
	}
	if _, ok := durationFromBucket(0); ok {
		t.Fatal("bucket 0 must be rejected")
	}
}

func TestFormatRecommendation(t *testing.T) {
	rec := domain.Recommendation{
		Fund: domain.Fund{
			Name:          "Quantum Momentum Fund",
			Category:      "Mid Cap",
			Type:          domain.FundTypeEquity,
			Rating:        5,
			Return5Y:      16,
			ExpenseRatio:  0.8,
			MinInvestment: 500000,
			AUMCr:         1200,
			LastUpdated:   time.Now(),
		},
		Position:      1,
		Confidence:    "High",
		ConfidencePct: 70,
		Freshness:     domain.FreshnessRecent,
	}

	msg := formatRecommendation(rec)
	if !strings.Contains(msg, "1. Quantum Momentum Fund (Mid Cap, Equity)") {
		t.Fatalf("unexpected header: %s", msg)
	}
	if !strings.Contains(msg, "₹5,00,000") {
		t.Fatalf("expected Indian grouping for min investment, got %s", msg)
	}
	if strings.Contains(msg, "days old") {
		t.Fatalf("fresh data must not carry a staleness note: %s", msg)
	}

	rec.Freshness = domain.FreshnessStale
	rec.DaysOld = 40
	msg = formatRecommendation(rec)
	if !strings.Contains(msg, "data is 40 days old") {
		t.Fatalf("expected staleness note, got %s", msg)
	}
}

func TestShortCategory(t *testing.T) {
	if got := shortCategory(domain.CategoryHigh); got != "high" {
		t.Fatalf("expected high, got %q", got)
	}
	if got := shortCategory(domain.CategoryLow); got != "low" {
		t.Fatalf("expected low, got %q", got)
	}
}
