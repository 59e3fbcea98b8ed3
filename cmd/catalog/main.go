package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/scaryPonens/fundadvisor/internal/catalog"
	"github.com/scaryPonens/fundadvisor/internal/domain"
	"github.com/scaryPonens/fundadvisor/internal/format"

	"github.com/joho/godotenv"
)

const (
	defaultCSVPath = "data/funds.csv"

	modeValidate  = "validate"
	modeStats     = "stats"
	modeAnomalies = "anomalies"
)

var (
	loadEnvFunc     = godotenv.Load
	loadCatalogFunc = catalog.Load
)

type options struct {
	mode      string
	path      string
	threshold float64
	trees     int
	sample    int
}

func main() {
	loadEnvFunc()

	opts, err := parseOptions(os.Args[1:], os.Getenv)
	if err != nil {
		log.Fatalf("parse options: %v", err)
	}

	cat, err := loadCatalogFunc(opts.path)
	if err != nil {
		log.Fatalf("load catalog from %s: %v", opts.path, err)
	}

	switch opts.mode {
	case modeValidate:
		if err := runValidate(os.Stdout, cat, time.Now()); err != nil {
			log.Fatalf("validate %s: %v", opts.path, err)
		}
	case modeStats:
		runStats(os.Stdout, cat)
	case modeAnomalies:
		if err := runAnomalies(os.Stdout, cat, opts); err != nil {
			log.Fatalf("anomaly scan: %v", err)
		}
	}
}

func parseOptions(args []string, getenv func(string) string) (options, error) {
	fs := flag.NewFlagSet("catalog", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	defaults := defaultAnomalyOptions(getenv)
	mode := fs.String("mode", modeValidate, "one of validate, stats, anomalies")
	path := fs.String("csv", defaultCSVPathFromEnv(getenv), "fund dataset CSV (default from FUNDS_CSV_PATH)")
	threshold := fs.Float64("threshold", defaults.Threshold, "isolation forest score cutoff (default from ANOMALY_THRESHOLD)")
	trees := fs.Int("trees", defaults.NumTrees, "isolation forest tree count (default from ANOMALY_TREES)")
	sample := fs.Int("sample", defaults.SampleSize, "isolation forest subsample size (default from ANOMALY_SAMPLE_SIZE)")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	normalized, err := normalizeMode(*mode)
	if err != nil {
		return options{}, err
	}
	if strings.TrimSpace(*path) == "" {
		return options{}, fmt.Errorf("csv path cannot be empty")
	}
	if *threshold <= 0 || *threshold >= 1 {
		return options{}, fmt.Errorf("threshold must be between 0 and 1")
	}
	if *trees <= 0 {
		return options{}, fmt.Errorf("trees must be > 0")
	}
	if *sample <= 0 {
		return options{}, fmt.Errorf("sample must be > 0")
	}

	return options{
		mode:      normalized,
		path:      strings.TrimSpace(*path),
		threshold: *threshold,
		trees:     *trees,
		sample:    *sample,
	}, nil
}

func normalizeMode(raw string) (string, error) {
	mode := strings.ToLower(strings.TrimSpace(raw))
	switch mode {
	case modeValidate, modeStats, modeAnomalies:
		return mode, nil
	}
	return "", fmt.Errorf("unsupported mode: %s", raw)
}

func defaultCSVPathFromEnv(getenv func(string) string) string {
	if v := strings.TrimSpace(getenv("FUNDS_CSV_PATH")); v != "" {
		return v
	}
	return defaultCSVPath
}

func defaultAnomalyOptions(getenv func(string) string) catalog.AnomalyOptions {
	opts := catalog.DefaultAnomalyOptions()
	if v := strings.TrimSpace(getenv("ANOMALY_THRESHOLD")); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 && f < 1 {
			opts.Threshold = f
		}
	}
	if v := strings.TrimSpace(getenv("ANOMALY_TREES")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			opts.NumTrees = n
		}
	}
	if v := strings.TrimSpace(getenv("ANOMALY_SAMPLE_SIZE")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			opts.SampleSize = n
		}
	}
	return opts
}

// runValidate prints a load summary and fails when any row was rejected,
// so a bad dataset is caught before it ships.
func runValidate(w io.Writer, cat *catalog.Catalog, now time.Time) error {
	fmt.Fprintf(w, "funds loaded: %d\n", cat.Len())
	fmt.Fprintf(w, "rows skipped: %d\n", cat.SkippedRows())

	newest := cat.NewestUpdate()
	if !newest.IsZero() {
		age := int(now.Sub(newest).Hours() / 24)
		if age < 0 {
			age = 0
		}
		fmt.Fprintf(w, "newest row:   %s (%dd old, %s)\n", newest.Format("2006-01-02"), age, domain.ClassifyFreshness(age))
	}

	if cat.SkippedRows() > 0 {
		return fmt.Errorf("%d rows failed to parse", cat.SkippedRows())
	}
	return nil
}

var riskOrder = []domain.RiskCategory{
	domain.CategoryLow,
	domain.CategoryModerate,
	domain.CategoryMedium,
	domain.CategoryHigh,
}

func runStats(w io.Writer, cat *catalog.Catalog) {
	funds := cat.Funds()
	fmt.Fprintf(w, "funds: %d\n", len(funds))
	if len(funds) == 0 {
		return
	}

	byRisk := make(map[domain.RiskCategory]int)
	byType := make(map[string]int)
	byDuration := make(map[string]int)
	ratings := make(map[int]int)
	var totalAUM, totalExpense float64
	for _, f := range funds {
		byRisk[f.RiskProfile]++
		byType[f.Type]++
		byDuration[f.Duration]++
		ratings[f.Rating]++
		totalAUM += f.AUMCr
		totalExpense += f.ExpenseRatio
	}

	fmt.Fprintln(w, "\nby risk profile:")
	for _, rc := range riskOrder {
		if n := byRisk[rc]; n > 0 {
			fmt.Fprintf(w, "  %-14s %4d\n", rc, n)
		}
	}

	fmt.Fprintln(w, "\nby type:")
	for _, k := range sortedKeys(byType) {
		fmt.Fprintf(w, "  %-14s %4d\n", k, byType[k])
	}

	fmt.Fprintln(w, "\nby duration:")
	for _, k := range sortedKeys(byDuration) {
		fmt.Fprintf(w, "  %-22s %4d\n", k, byDuration[k])
	}

	fmt.Fprintln(w, "\nrating histogram:")
	for r := 5; r >= 1; r-- {
		fmt.Fprintf(w, "  %d star %4d\n", r, ratings[r])
	}

	fmt.Fprintf(w, "\ntotal AUM:   %s\n", format.Crores(totalAUM))
	fmt.Fprintf(w, "avg expense: %.2f%%\n", totalExpense/float64(len(funds)))
}

func runAnomalies(w io.Writer, cat *catalog.Catalog, opts options) error {
	anomalies, err := cat.Anomalies(catalog.AnomalyOptions{
		Threshold:  opts.threshold,
		NumTrees:   opts.trees,
		SampleSize: opts.sample,
	})
	if err != nil {
		return err
	}

	if len(anomalies) == 0 {
		fmt.Fprintf(w, "no outliers at score >= %.2f\n", opts.threshold)
		return nil
	}

	fmt.Fprintf(w, "outliers at score >= %.2f (features: %s):\n",
		opts.threshold, strings.Join(catalog.AnomalyFeatureNames(), ", "))
	for _, a := range anomalies {
		fmt.Fprintf(w, "  %.3f  %-34s %-14s exp %.2f%%  3y %.1f%%\n",
			a.Score, a.Fund.Name, a.Fund.Category, a.Fund.ExpenseRatio, a.Fund.Return3Y)
	}
	return nil
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
