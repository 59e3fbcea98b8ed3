package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/scaryPonens/fundadvisor/internal/domain"
)

// Required dataset columns, in canonical order. The loader keys on the
// header row, so column order in the file does not matter.
var requiredColumns = []string{
	"risk_profile", "duration", "rank",
	"fund_name", "fund_category", "fund_type",
	"aum_cr", "exp_ratio",
	"return_1y", "return_3y", "return_5y",
	"min_investment", "rating", "remarks",
	"last_updated", "category_10y_return", "category_volatility", "fund_volatility",
}

const dateLayout = "2006-01-02"

// Load reads the fund dataset from path. Missing columns fail the load;
// malformed rows are skipped with a warning. Zero surviving rows is a load
// failure too, since serving an empty catalog is worse than refusing to
// start. The dataset contains "Not recommended" placeholder rows with N/A
// numerics; those are dropped here by the same skip rule.
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", domain.ErrCatalogLoad, path, err)
	}
	defer f.Close()

	c, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrCatalogLoad, path, err)
	}
	return c, nil
}

// Read parses a dataset from r. Split from Load so tests and the offline
// tool can feed arbitrary readers.
func Read(r io.Reader) (*Catalog, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(strings.ToLower(name))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("missing required column %q", name)
		}
	}

	var funds []domain.Fund
	skipped := 0
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			log.Printf("fund catalog: skipping line %d: %v", line, err)
			skipped++
			continue
		}

		fund, err := parseRow(record, cols)
		if err != nil {
			log.Printf("fund catalog: skipping line %d (%s): %v", line, field(record, cols, "fund_name"), err)
			skipped++
			continue
		}
		funds = append(funds, fund)
	}

	if len(funds) == 0 {
		return nil, fmt.Errorf("no valid rows (skipped %d)", skipped)
	}

	c := &Catalog{funds: funds, loadedAt: time.Now(), skipped: skipped}
	c.index = buildIndex(funds)
	return c, nil
}

func parseRow(record []string, cols map[string]int) (domain.Fund, error) {
	var f domain.Fund

	riskRaw := field(record, cols, "risk_profile")
	risk, ok := domain.ParseRiskCategory(riskRaw)
	if !ok {
		return f, fmt.Errorf("unknown risk_profile %q", riskRaw)
	}

	durRaw := field(record, cols, "duration")
	dur, ok := domain.ParseDuration(durRaw)
	if !ok {
		return f, fmt.Errorf("unknown duration %q", durRaw)
	}

	rank, err := parseInt(field(record, cols, "rank"))
	if err != nil {
		return f, fmt.Errorf("rank: %w", err)
	}
	aum, err := parseFloat(field(record, cols, "aum_cr"))
	if err != nil {
		return f, fmt.Errorf("aum_cr: %w", err)
	}
	expRatio, err := parseFloat(field(record, cols, "exp_ratio"))
	if err != nil {
		return f, fmt.Errorf("exp_ratio: %w", err)
	}
	r1, err := parseFloat(field(record, cols, "return_1y"))
	if err != nil {
		return f, fmt.Errorf("return_1y: %w", err)
	}
	r3, err := parseFloat(field(record, cols, "return_3y"))
	if err != nil {
		return f, fmt.Errorf("return_3y: %w", err)
	}
	r5, err := parseFloat(field(record, cols, "return_5y"))
	if err != nil {
		return f, fmt.Errorf("return_5y: %w", err)
	}
	minInv, err := parseInt(field(record, cols, "min_investment"))
	if err != nil {
		return f, fmt.Errorf("min_investment: %w", err)
	}
	rating, err := parseInt(field(record, cols, "rating"))
	if err != nil {
		return f, fmt.Errorf("rating: %w", err)
	}
	if rating < 1 || rating > 5 {
		return f, fmt.Errorf("rating %d outside 1-5", rating)
	}

	updated, err := time.Parse(dateLayout, strings.TrimSpace(field(record, cols, "last_updated")))
	if err != nil {
		return f, fmt.Errorf("last_updated: %w", err)
	}

	name := strings.TrimSpace(field(record, cols, "fund_name"))
	if name == "" {
		return f, fmt.Errorf("empty fund_name")
	}

	f = domain.Fund{
		RiskProfile:        risk,
		Duration:           dur,
		Rank:               rank,
		Name:               name,
		Category:           strings.TrimSpace(field(record, cols, "fund_category")),
		Type:               strings.TrimSpace(field(record, cols, "fund_type")),
		AUMCr:              aum,
		ExpenseRatio:       expRatio,
		Return1Y:           r1,
		Return3Y:           r3,
		Return5Y:           r5,
		MinInvestment:      int64(minInv),
		Rating:             rating,
		Remarks:            strings.TrimSpace(field(record, cols, "remarks")),
		LastUpdated:        updated,
		Category10YReturn:  lenientFloat(field(record, cols, "category_10y_return")),
		CategoryVolatility: lenientFloat(field(record, cols, "category_volatility")),
		FundVolatility:     lenientFloat(field(record, cols, "fund_volatility")),
	}
	return f, nil
}

func field(record []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(record) {
		return ""
	}
	return record[i]
}

func parseFloat(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("not numeric: %q", s)
	}
	return v, nil
}

func parseInt(s string) (int, error) {
	t := strings.TrimSpace(s)
	if v, err := strconv.Atoi(t); err == nil {
		return v, nil
	}
	// Ratings and amounts sometimes arrive as "5.0".
	fv, err := strconv.ParseFloat(t, 64)
	if err != nil {
		return 0, fmt.Errorf("not numeric: %q", s)
	}
	return int(fv), nil
}

// lenientFloat covers the reference columns that may be blank or N/A on
// otherwise valid rows; those never fail the row.
func lenientFloat(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}
