package store

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/scaryPonens/fundadvisor/internal/domain"
)

const defaultRegistrationLimit = 50

// SaveRegistration inserts a registration row and returns its id. Zero
// timestamps are filled with the current UTC time.
func (s *Store) SaveRegistration(ctx context.Context, reg domain.Registration) (int64, error) {
	_, span := s.tracer.Start(ctx, "store.save-registration")
	defer span.End()

	now := time.Now().UTC()
	if reg.ConsentTS.IsZero() {
		reg.ConsentTS = now
	}
	if reg.CreatedTS.IsZero() {
		reg.CreatedTS = now
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO registrations (
			name, email, city, country,
			consent, consent_ts,
			questionnaire_completed, recommendations_viewed,
			risk_score, risk_category,
			created_ts, user_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, 0, ?, ?, ?, ?)`,
		nullIfEmpty(reg.Name),
		reg.Email,
		nullIfEmpty(reg.City),
		nullIfEmpty(reg.Country),
		boolToInt(reg.Consent),
		reg.ConsentTS.Format(time.RFC3339),
		boolToInt(reg.QuestionnaireCompleted),
		nullIfZero(int64(reg.RiskScore)),
		nullIfEmpty(string(reg.RiskCategory)),
		reg.CreatedTS.Format(time.RFC3339),
		nullIfEmpty(reg.UserID),
	)
	if err != nil {
		return 0, fmt.Errorf("insert registration: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("registration id: %w", err)
	}
	return id, nil
}

// MarkRecommendationsViewed flips the funnel flag for a registration.
func (s *Store) MarkRecommendationsViewed(ctx context.Context, id int64) error {
	_, span := s.tracer.Start(ctx, "store.mark-recommendations-viewed")
	defer span.End()

	res, err := s.db.ExecContext(ctx,
		`UPDATE registrations SET recommendations_viewed = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark recommendations viewed: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: registration %d", domain.ErrNotFound, id)
	}
	return nil
}

// LatestRegistrations returns the newest rows for the admin view.
func (s *Store) LatestRegistrations(ctx context.Context, limit int) ([]domain.Registration, error) {
	_, span := s.tracer.Start(ctx, "store.latest-registrations")
	defer span.End()

	if limit <= 0 {
		limit = defaultRegistrationLimit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, email, city, country,
			consent, consent_ts,
			questionnaire_completed, recommendations_viewed,
			risk_score, risk_category,
			created_ts, user_id
		FROM registrations
		ORDER BY created_ts DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query registrations: %w", err)
	}
	defer rows.Close()

	var out []domain.Registration
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, reg)
	}
	return out, rows.Err()
}

// Overview computes the registration funnel metrics.
func (s *Store) Overview(ctx context.Context) (domain.OverviewMetrics, error) {
	_, span := s.tracer.Start(ctx, "store.overview")
	defer span.End()

	var m domain.OverviewMetrics

	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COUNT(DISTINCT email),
			COALESCE(SUM(questionnaire_completed), 0),
			COALESCE(SUM(recommendations_viewed), 0)
		FROM registrations`).Scan(
		&m.TotalRegistrations, &m.UniqueEmails,
		&m.QuestionnaireCompleted, &m.RecommendationsViewed,
	); err != nil {
		return m, fmt.Errorf("overview counts: %w", err)
	}

	m.CompletionRatePct = pct(m.UniqueEmails, m.QuestionnaireCompleted)
	m.ViewRatePct = pct(m.RecommendationsViewed, m.UniqueEmails)

	byCountry, err := s.countBy(ctx,
		`SELECT COALESCE(country, ''), COUNT(*) FROM registrations GROUP BY country ORDER BY COUNT(*) DESC`)
	if err != nil {
		return m, err
	}
	m.ByCountry = byCountry

	byRisk, err := s.countBy(ctx,
		`SELECT COALESCE(risk_category, ''), COUNT(*) FROM registrations GROUP BY risk_category ORDER BY COUNT(*) DESC`)
	if err != nil {
		return m, err
	}
	m.ByRiskCategory = byRisk

	rows, err := s.db.QueryContext(ctx,
		`SELECT city, COALESCE(country, ''), COUNT(*) AS c
		FROM registrations
		WHERE city IS NOT NULL AND city <> ''
		GROUP BY city, country
		ORDER BY c DESC
		LIMIT 10`)
	if err != nil {
		return m, fmt.Errorf("top cities: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var cc domain.CityCount
		if err := rows.Scan(&cc.City, &cc.Country, &cc.Count); err != nil {
			return m, fmt.Errorf("scan city count: %w", err)
		}
		m.TopCities = append(m.TopCities, cc)
	}
	return m, rows.Err()
}

// ExportRegistrationsCSV streams the full registrations table as CSV.
func (s *Store) ExportRegistrationsCSV(ctx context.Context, w io.Writer) error {
	_, span := s.tracer.Start(ctx, "store.export-registrations-csv")
	defer span.End()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, email, city, country,
			consent, consent_ts,
			questionnaire_completed, recommendations_viewed,
			risk_score, risk_category,
			created_ts, user_id
		FROM registrations
		ORDER BY created_ts DESC, id DESC`)
	if err != nil {
		return fmt.Errorf("query registrations: %w", err)
	}
	defer rows.Close()

	cw := csv.NewWriter(w)
	header := []string{
		"id", "name", "email", "city", "country",
		"consent", "consent_ts",
		"questionnaire_completed", "recommendations_viewed",
		"risk_score", "risk_category", "created_ts", "user_id",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return err
		}
		record := []string{
			strconv.FormatInt(reg.ID, 10),
			reg.Name,
			reg.Email,
			reg.City,
			reg.Country,
			strconv.Itoa(boolToInt(reg.Consent)),
			reg.ConsentTS.Format(time.RFC3339),
			strconv.Itoa(boolToInt(reg.QuestionnaireCompleted)),
			strconv.Itoa(boolToInt(reg.RecommendationsViewed)),
			strconv.Itoa(reg.RiskScore),
			string(reg.RiskCategory),
			reg.CreatedTS.Format(time.RFC3339),
			reg.UserID,
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

func (s *Store) countBy(ctx context.Context, query string) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("count query: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		out[key] = n
	}
	return out, rows.Err()
}

func scanRegistration(rows *sql.Rows) (domain.Registration, error) {
	var (
		reg                 domain.Registration
		name, city, country sql.NullString
		category, userID    sql.NullString
		consentTS, created  string
		consent, completed  int
		viewed              int
		score               sql.NullInt64
	)
	if err := rows.Scan(
		&reg.ID, &name, &reg.Email, &city, &country,
		&consent, &consentTS,
		&completed, &viewed,
		&score, &category,
		&created, &userID,
	); err != nil {
		return reg, fmt.Errorf("scan registration: %w", err)
	}

	reg.Name = name.String
	reg.City = city.String
	reg.Country = country.String
	reg.Consent = consent == 1
	reg.QuestionnaireCompleted = completed == 1
	reg.RecommendationsViewed = viewed == 1
	reg.RiskScore = int(score.Int64)
	reg.RiskCategory = domain.RiskCategory(category.String)
	reg.UserID = userID.String
	reg.ConsentTS, _ = time.Parse(time.RFC3339, consentTS)
	reg.CreatedTS, _ = time.Parse(time.RFC3339, created)
	return reg, nil
}

func pct(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return math.Round(float64(num)/float64(den)*1000) / 10
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullIfZero(n int64) any {
	if n == 0 {
		return nil
	}
	return n
}
