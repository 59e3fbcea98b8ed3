package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/scaryPonens/fundadvisor/internal/domain"
	"github.com/scaryPonens/fundadvisor/internal/format"
	"github.com/scaryPonens/fundadvisor/internal/service"

	tele "gopkg.in/telebot.v3"
)

type AdvisorClient interface {
	QuickAssess(ctx context.Context, profile string) (service.RiskAssessment, error)
	Recommendations(ctx context.Context, token string, req domain.RecommendationRequest, limit, offset int) (service.RecommendationPage, error)
}

const welcomeText = `Welcome to the fund advisor bot.

/risk <low|medium|high> - quick risk profile
/funds <category> <amount> <horizon 1-3> - top fund picks
/alerts on|off|status - stale data notifications`

func StartTelegramBot(advisor AdvisorClient) *AlertDispatcher {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		log.Println("TELEGRAM_BOT_TOKEN not set, skipping Telegram bot startup")
		return nil
	}
	pref := tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}
	b, err := tele.NewBot(pref)
	if err != nil {
		log.Fatalf("failed to create Telegram bot: %v", err)
	}
	alerts := NewAlertDispatcher(b)

	b.Handle("/start", func(c tele.Context) error {
		return c.Send(welcomeText)
	})

	b.Handle("/risk", func(c tele.Context) error {
		if advisor == nil {
			return c.Send("Advisor service unavailable")
		}
		args := c.Args()
		if len(args) == 0 {
			return c.Send("Usage: /risk low | /risk medium | /risk high\nUse the web questionnaire for a full 13-question assessment.")
		}
		assessment, err := advisor.QuickAssess(context.Background(), args[0])
		if err != nil {
			return c.Send("Pick one of: low, medium, high. Moderate profiles need the full questionnaire.")
		}
		return c.Send(fmt.Sprintf(
			"Profile: %s (score band %d-%d)\nNow try: /funds %s 5000 3",
			assessment.Category, assessment.BandLow, assessment.BandHigh, shortCategory(assessment.Category),
		))
	})

	b.Handle("/funds", func(c tele.Context) error {
		if advisor == nil {
			return c.Send("Advisor service unavailable")
		}
		req, err := parseFundsArgs(c.Args())
		if err != nil {
			return c.Send("Usage: /funds <low|medium|high> <amount> <1|2|3>\n1 = under 6 months, 2 = 6-12 months, 3 = over a year")
		}
		page, err := advisor.Recommendations(context.Background(), "", req, domain.DefaultDisplayCount, 0)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidRequest) {
				return c.Send(fmt.Sprintf("Can't recommend for that: %v", err))
			}
			return c.Send(fmt.Sprintf("Error fetching funds: %v", err))
		}
		if len(page.Recommendations) == 0 {
			return c.Send("No funds match that profile right now. Try a longer horizon or a larger amount.")
		}

		intro := fmt.Sprintf("Top picks for %s, %s:", req.RiskCategory, format.Currency(float64(req.Amount)))
		if err := c.Send(intro); err != nil {
			return err
		}
		for _, r := range page.Recommendations {
			if err := c.Send(formatRecommendation(r)); err != nil {
				return err
			}
		}
		return nil
	})

	b.Handle("/alerts", func(c tele.Context) error {
		chat := c.Chat()
		if chat == nil {
			return c.Send("Unable to detect chat")
		}

		mode, err := parseAlertMode(c.Args())
		if err != nil {
			return c.Send("Usage: /alerts on | /alerts off | /alerts status")
		}

		switch mode {
		case "on":
			if alerts.Subscribe(chat.ID) {
				return c.Send("Stale data alerts enabled for this chat.")
			}
			return c.Send("Stale data alerts are already enabled for this chat.")
		case "off":
			if alerts.Unsubscribe(chat.ID) {
				return c.Send("Stale data alerts disabled for this chat.")
			}
			return c.Send("Stale data alerts are already disabled for this chat.")
		default:
			if alerts.IsSubscribed(chat.ID) {
				return c.Send("Alerts status: ON")
			}
			return c.Send("Alerts status: OFF")
		}
	})

	log.Println("Telegram bot started")
	go b.Start()
	return alerts
}

func parseFundsArgs(args []string) (domain.RecommendationRequest, error) {
	if len(args) != 3 {
		return domain.RecommendationRequest{}, errors.New("expected category, amount, and horizon")
	}

	category, ok := domain.ParseRiskCategory(args[0])
	if !ok {
		return domain.RecommendationRequest{}, fmt.Errorf("unknown category %q", args[0])
	}
	amount, err := strconv.ParseInt(strings.TrimSpace(args[1]), 10, 64)
	if err != nil || amount <= 0 {
		return domain.RecommendationRequest{}, fmt.Errorf("bad amount %q", args[1])
	}
	bucket, err := strconv.Atoi(strings.TrimSpace(args[2]))
	if err != nil {
		return domain.RecommendationRequest{}, fmt.Errorf("bad horizon %q", args[2])
	}
	duration, ok := durationFromBucket(bucket)
	if !ok {
		return domain.RecommendationRequest{}, errors.New("horizon must be 1, 2, or 3")
	}

	return domain.RecommendationRequest{
		RiskCategory: category,
		Amount:       amount,
		Duration:     duration,
	}, nil
}

func durationFromBucket(n int) (string, bool) {
	switch n {
	case 1:
		return domain.DurationShort, true
	case 2:
		return domain.DurationMid, true
	case 3:
		return domain.DurationLong, true
	}
	return "", false
}

func formatRecommendation(r domain.Recommendation) string {
	f := r.Fund
	lines := []string{
		fmt.Sprintf("%d. %s (%s, %s)", r.Position, f.Name, f.Category, f.Type),
		fmt.Sprintf("Rating %d/5 | 5y return %s | expense %s", f.Rating, format.Percent(f.Return5Y), format.Percent(f.ExpenseRatio)),
		fmt.Sprintf("Min investment %s | AUM %s", format.Currency(float64(f.MinInvestment)), format.Crores(f.AUMCr)),
		fmt.Sprintf("Confidence: %s (%d%%)", r.Confidence, r.ConfidencePct),
	}
	if r.Freshness == domain.FreshnessStale {
		lines = append(lines, fmt.Sprintf("Note: data is %d days old", r.DaysOld))
	}
	return strings.Join(lines, "\n")
}

func shortCategory(c domain.RiskCategory) string {
	return strings.ToLower(strings.TrimSuffix(string(c), " Risk"))
}
