package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/scaryPonens/fundadvisor/internal/catalog"
	"github.com/scaryPonens/fundadvisor/internal/domain"
	"github.com/scaryPonens/fundadvisor/internal/format"

	"github.com/charmbracelet/lipgloss"
)

// FormatRegistration renders a registration as a single line. The two
// markers show questionnaire completion and recommendation views.
func FormatRegistration(r domain.Registration) string {
	quest := StagePendingStyle.Render("·")
	if r.QuestionnaireCompleted {
		quest = StageDoneStyle.Render("✓")
	}
	viewed := StagePendingStyle.Render("·")
	if r.RecommendationsViewed {
		viewed = StageDoneStyle.Render("✓")
	}

	cat := shortCategory(r.RiskCategory)
	if cat == "" {
		cat = "-"
	}

	return fmt.Sprintf("#%-5d %-30s %-14s %s %s %s  %s",
		r.ID,
		truncate(r.Email, 30),
		truncate(r.Country, 14),
		categoryStyle(r.RiskCategory).Render(fmt.Sprintf("%-8s", cat)),
		quest,
		viewed,
		r.CreatedTS.Format("02 Jan 15:04"),
	)
}

// FormatFund renders a catalog row with a freshness-colored data age.
func FormatFund(f domain.Fund, now time.Time) string {
	retStyle := ReturnFlatStyle
	if f.Return3Y > 0 {
		retStyle = ReturnUpStyle
	} else if f.Return3Y < 0 {
		retStyle = ReturnDownStyle
	}

	days := catalog.DaysOld(f, now)
	ageStyle := FreshRecentStyle
	switch domain.ClassifyFreshness(days) {
	case domain.FreshnessModerate:
		ageStyle = FreshModerateStyle
	case domain.FreshnessStale:
		ageStyle = FreshStaleStyle
	}

	return fmt.Sprintf("%2d %-32s %-14s %s %s %d★ %12s  %s",
		f.Rank,
		truncate(f.Name, 32),
		truncate(f.Category, 14),
		categoryStyle(f.RiskProfile).Render(fmt.Sprintf("%-8s", shortCategory(f.RiskProfile))),
		retStyle.Render(fmt.Sprintf("%6.1f%%", f.Return3Y)),
		f.Rating,
		format.Crores(f.AUMCr),
		ageStyle.Render(fmt.Sprintf("%dd", days)),
	)
}

// RenderFunnelBar renders one funnel stage as a bar proportional to total,
// colored by the conversion rate.
func RenderFunnelBar(label string, count, total, barWidth int) string {
	if barWidth <= 0 {
		barWidth = 20
	}
	frac := 0.0
	if total > 0 {
		frac = float64(count) / float64(total)
	}
	if frac > 1 {
		frac = 1
	}
	filled := int(math.Round(frac * float64(barWidth)))
	if filled > barWidth {
		filled = barWidth
	}
	empty := barWidth - filled

	style := FunnelGoodStyle
	if frac < 0.25 {
		style = FunnelBadStyle
	} else if frac < 0.6 {
		style = FunnelOkStyle
	}

	bar := style.Render(strings.Repeat("█", filled)) + SubtextStyle.Render(strings.Repeat("░", empty))
	return fmt.Sprintf("%-22s %s %d (%.1f%%)", label, bar, count, frac*100)
}

// RenderCountBar renders a bucket count as a bar scaled against the
// largest bucket.
func RenderCountBar(label string, count, max, barWidth int) string {
	if barWidth <= 0 {
		barWidth = 20
	}
	frac := 0.0
	if max > 0 {
		frac = float64(count) / float64(max)
	}
	if frac > 1 {
		frac = 1
	}
	filled := int(math.Round(frac * float64(barWidth)))
	if filled > barWidth {
		filled = barWidth
	}
	empty := barWidth - filled

	bar := BarStyle.Render(strings.Repeat("█", filled)) + SubtextStyle.Render(strings.Repeat("░", empty))
	return fmt.Sprintf("%-10s %s %d", label, bar, count)
}

func categoryStyle(c domain.RiskCategory) lipgloss.Style {
	switch c {
	case domain.CategoryLow:
		return CategoryLowStyle
	case domain.CategoryModerate:
		return CategoryModerateStyle
	case domain.CategoryMedium:
		return CategoryMediumStyle
	case domain.CategoryHigh:
		return CategoryHighStyle
	default:
		return SubtextStyle
	}
}

// shortCategory drops the " Risk" suffix for narrow table columns.
func shortCategory(c domain.RiskCategory) string {
	return strings.TrimSuffix(string(c), " Risk")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
