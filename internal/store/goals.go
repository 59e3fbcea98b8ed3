package store

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/scaryPonens/fundadvisor/internal/domain"
)

// SaveGoal inserts a goal row keyed by its goal_id.
func (s *Store) SaveGoal(ctx context.Context, g domain.Goal) error {
	_, span := s.tracer.Start(ctx, "store.save-goal")
	defer span.End()

	now := time.Now().UTC()
	if g.CreatedAt.IsZero() {
		g.CreatedAt = now
	}
	if g.UpdatedAt.IsZero() {
		g.UpdatedAt = now
	}
	if g.Status == "" {
		g.Status = domain.GoalStatusSaved
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO goals (
			goal_id, registration_id, corpus, sip, horizon, risk_category,
			conservative_projection, expected_projection, best_case_projection,
			confidence, adjusted_return, created_at, updated_at, status
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.GoalID,
		nullIfZero(g.RegistrationID),
		g.InitialCorpus,
		g.MonthlySIP,
		g.HorizonYears,
		string(g.RiskCategory),
		g.Conservative,
		g.Expected,
		g.BestCase,
		g.Confidence,
		g.AdjustedReturn,
		g.CreatedAt.Format(time.RFC3339),
		g.UpdatedAt.Format(time.RFC3339),
		g.Status,
	)
	if err != nil {
		return fmt.Errorf("insert goal: %w", err)
	}
	return nil
}

// Goal fetches a goal by its shareable id.
func (s *Store) Goal(ctx context.Context, goalID string) (domain.Goal, error) {
	_, span := s.tracer.Start(ctx, "store.get-goal")
	defer span.End()

	row := s.db.QueryRowContext(ctx, goalSelect+` WHERE goal_id = ?`, goalID)
	g, err := scanGoal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return g, fmt.Errorf("%w: goal %s", domain.ErrNotFound, goalID)
	}
	return g, err
}

// UserGoals lists a registration's goals, newest first.
func (s *Store) UserGoals(ctx context.Context, registrationID int64) ([]domain.Goal, error) {
	_, span := s.tracer.Start(ctx, "store.user-goals")
	defer span.End()

	rows, err := s.db.QueryContext(ctx,
		goalSelect+` WHERE registration_id = ? ORDER BY created_at DESC, id DESC`, registrationID)
	if err != nil {
		return nil, fmt.Errorf("query goals: %w", err)
	}
	defer rows.Close()

	var out []domain.Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// MarkGoalEmailSent records the email notification and advances the status.
func (s *Store) MarkGoalEmailSent(ctx context.Context, goalID string) error {
	return s.stampGoal(ctx, "store.mark-goal-email-sent", goalID,
		`UPDATE goals SET status = ?, email_sent_at = ?, updated_at = ? WHERE goal_id = ?`,
		domain.GoalStatusEmailSent)
}

// MarkGoalRevisited records a dashboard revisit and advances the status.
func (s *Store) MarkGoalRevisited(ctx context.Context, goalID string) error {
	return s.stampGoal(ctx, "store.mark-goal-revisited", goalID,
		`UPDATE goals SET status = ?, revisited_at = ?, updated_at = ? WHERE goal_id = ?`,
		domain.GoalStatusRevisited)
}

func (s *Store) stampGoal(ctx context.Context, spanName, goalID, query, status string) error {
	_, span := s.tracer.Start(ctx, spanName)
	defer span.End()

	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.ExecContext(ctx, query, status, now, now, goalID)
	if err != nil {
		return fmt.Errorf("update goal %s: %w", goalID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: goal %s", domain.ErrNotFound, goalID)
	}
	return nil
}

// GoalsAnalytics aggregates the goals table for the admin surface.
func (s *Store) GoalsAnalytics(ctx context.Context) (domain.GoalsAnalytics, error) {
	_, span := s.tracer.Start(ctx, "store.goals-analytics")
	defer span.End()

	var a domain.GoalsAnalytics
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*),
			COALESCE(AVG(corpus), 0),
			COALESCE(AVG(sip), 0),
			COALESCE(AVG(horizon), 0),
			COALESCE(AVG(expected_projection), 0)
		FROM goals`).Scan(
		&a.TotalGoals, &a.AvgCorpus, &a.AvgMonthlySIP, &a.AvgHorizonYrs, &a.AvgExpected,
	); err != nil {
		return a, fmt.Errorf("goal averages: %w", err)
	}

	var err error
	if a.ByStatus, err = s.countBy(ctx,
		`SELECT COALESCE(status, ''), COUNT(*) FROM goals GROUP BY status`); err != nil {
		return a, err
	}
	if a.ByConfidence, err = s.countBy(ctx,
		`SELECT COALESCE(confidence, ''), COUNT(*) FROM goals GROUP BY confidence`); err != nil {
		return a, err
	}
	if a.ByRiskCategory, err = s.countBy(ctx,
		`SELECT COALESCE(risk_category, ''), COUNT(*) FROM goals GROUP BY risk_category`); err != nil {
		return a, err
	}
	return a, nil
}

// ExportGoalsCSV streams the full goals table as CSV.
func (s *Store) ExportGoalsCSV(ctx context.Context, w io.Writer) error {
	_, span := s.tracer.Start(ctx, "store.export-goals-csv")
	defer span.End()

	rows, err := s.db.QueryContext(ctx, goalSelect+` ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return fmt.Errorf("query goals: %w", err)
	}
	defer rows.Close()

	cw := csv.NewWriter(w)
	header := []string{
		"goal_id", "registration_id", "corpus", "sip", "horizon",
		"risk_category", "conservative_projection", "expected_projection",
		"best_case_projection", "confidence", "adjusted_return",
		"status", "created_at", "updated_at",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return err
		}
		record := []string{
			g.GoalID,
			strconv.FormatInt(g.RegistrationID, 10),
			strconv.FormatFloat(g.InitialCorpus, 'f', 2, 64),
			strconv.FormatFloat(g.MonthlySIP, 'f', 2, 64),
			strconv.Itoa(g.HorizonYears),
			string(g.RiskCategory),
			strconv.FormatFloat(g.Conservative, 'f', 2, 64),
			strconv.FormatFloat(g.Expected, 'f', 2, 64),
			strconv.FormatFloat(g.BestCase, 'f', 2, 64),
			g.Confidence,
			strconv.FormatFloat(g.AdjustedReturn, 'f', 2, 64),
			g.Status,
			g.CreatedAt.Format(time.RFC3339),
			g.UpdatedAt.Format(time.RFC3339),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv record: %w", err)
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

const goalSelect = `SELECT goal_id, registration_id, corpus, sip, horizon, risk_category,
	conservative_projection, expected_projection, best_case_projection,
	confidence, adjusted_return, created_at, updated_at, status,
	email_sent_at, revisited_at
FROM goals`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGoal(row rowScanner) (domain.Goal, error) {
	var (
		g                  domain.Goal
		regID              sql.NullInt64
		category           string
		created, updated   string
		emailAt, revisitAt sql.NullString
	)
	if err := row.Scan(
		&g.GoalID, &regID, &g.InitialCorpus, &g.MonthlySIP, &g.HorizonYears, &category,
		&g.Conservative, &g.Expected, &g.BestCase,
		&g.Confidence, &g.AdjustedReturn, &created, &updated, &g.Status,
		&emailAt, &revisitAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return g, err
		}
		return g, fmt.Errorf("scan goal: %w", err)
	}

	g.RegistrationID = regID.Int64
	g.RiskCategory = domain.RiskCategory(category)
	g.CreatedAt, _ = time.Parse(time.RFC3339, created)
	g.UpdatedAt, _ = time.Parse(time.RFC3339, updated)
	if emailAt.Valid {
		if ts, err := time.Parse(time.RFC3339, emailAt.String); err == nil {
			g.EmailSentAt = &ts
		}
	}
	if revisitAt.Valid {
		if ts, err := time.Parse(time.RFC3339, revisitAt.String); err == nil {
			g.RevisitedAt = &ts
		}
	}
	return g, nil
}
