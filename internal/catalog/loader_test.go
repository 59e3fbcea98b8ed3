package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/scaryPonens/fundadvisor/internal/domain"
)

const csvHeader = "risk_profile,duration,rank,fund_name,fund_category,fund_type,aum_cr,exp_ratio,return_1y,return_3y,return_5y,min_investment,rating,remarks,last_updated,category_10y_return,category_volatility,fund_volatility"

func fundRow(risk, duration string, rank int, name, category, typ string, minInv int64, rating int, updated string) string {
	return fmt.Sprintf("%s,%s,%d,%s,%s,%s,1500.5,0.45,8.2,7.9,8.5,%d,%d,Data as of 2025-08-20,%s,9.0,7.5,6.1",
		risk, duration, rank, name, category, typ, minInv, rating, updated)
}

func writeCSV(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "funds.csv")
	content := strings.Join(append([]string{csvHeader}, lines...), "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return path
}

func TestLoadValidDataset(t *testing.T) {
	path := writeCSV(t,
		fundRow("High Risk", "> 1 year", 1, "Quant Flexi Cap", "Flexi Cap", "Equity", 1000, 5, "2025-08-20"),
		fundRow("Low Risk", "< 6 months", 1, "Axis Liquid Fund", "Liquid", "Debt", 500, 4, "2025-08-19"),
	)

	c, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if c.Len() != 2 {
		t.Fatalf("expected 2 funds, got %d", c.Len())
	}
	if c.SkippedRows() != 0 {
		t.Errorf("expected no skipped rows, got %d", c.SkippedRows())
	}

	funds := c.Funds()
	if funds[0].Name != "Quant Flexi Cap" || funds[0].RiskProfile != domain.CategoryHigh {
		t.Errorf("first row mangled: %+v", funds[0])
	}
	if funds[1].Duration != domain.DurationShort {
		t.Errorf("duration not normalized: %q", funds[1].Duration)
	}
	if funds[0].MinInvestment != 1000 || funds[0].Rating != 5 {
		t.Errorf("numeric fields mangled: %+v", funds[0])
	}
	want := time.Date(2025, 8, 20, 0, 0, 0, 0, time.UTC)
	if !funds[0].LastUpdated.Equal(want) {
		t.Errorf("last_updated = %v, want %v", funds[0].LastUpdated, want)
	}
}

func TestLoadMissingColumnFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "funds.csv")
	// Header without rating.
	header := strings.Replace(csvHeader, ",rating", "", 1)
	row := "High Risk,> 1 year,1,Fund A,Flexi Cap,Equity,100,0.5,8,8,8,500,ok,2025-08-20,9.0,7.5,6.1"
	if err := os.WriteFile(path, []byte(header+"\n"+row+"\n"), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	_, err := Load(path)
	if !errors.Is(err, domain.ErrCatalogLoad) {
		t.Fatalf("expected ErrCatalogLoad, got %v", err)
	}
	if !strings.Contains(err.Error(), "rating") {
		t.Errorf("error should name the missing column: %v", err)
	}
}

func TestLoadSkipsMalformedRows(t *testing.T) {
	path := writeCSV(t,
		fundRow("High Risk", "> 1 year", 1, "Good Fund", "Flexi Cap", "Equity", 1000, 5, "2025-08-20"),
		// Placeholder row as emitted by the dataset generator.
		"High Risk,< 6 months,1,Not recommended,N/A,N/A,N/A,N/A,N/A,N/A,N/A,N/A,N/A,Equity/high-risk funds not suitable for < 6 months,2025-08-20,12.0,13.5,N/A",
		// Bad rating.
		fundRow("Low Risk", "> 1 year", 2, "Nine Star Fund", "Gilt", "Debt", 500, 9, "2025-08-20"),
		// Unknown risk profile.
		fundRow("Extreme Risk", "> 1 year", 3, "Mystery Fund", "Gilt", "Debt", 500, 4, "2025-08-20"),
	)

	c, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if c.Len() != 1 {
		t.Fatalf("expected 1 surviving fund, got %d", c.Len())
	}
	if c.SkippedRows() != 3 {
		t.Errorf("expected 3 skipped rows, got %d", c.SkippedRows())
	}
	if c.Funds()[0].Name != "Good Fund" {
		t.Errorf("wrong surviving fund: %q", c.Funds()[0].Name)
	}
}

func TestLoadAllRowsMalformedFails(t *testing.T) {
	path := writeCSV(t,
		"High Risk,< 6 months,1,Not recommended,N/A,N/A,N/A,N/A,N/A,N/A,N/A,N/A,N/A,placeholder,2025-08-20,12.0,13.5,N/A",
	)
	if _, err := Load(path); !errors.Is(err, domain.ErrCatalogLoad) {
		t.Fatalf("expected ErrCatalogLoad for all-malformed dataset, got %v", err)
	}
}

func TestLoadMissingFileFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.csv")); !errors.Is(err, domain.ErrCatalogLoad) {
		t.Fatalf("expected ErrCatalogLoad for missing file, got %v", err)
	}
}

func TestReadHeaderCaseInsensitive(t *testing.T) {
	content := strings.ToUpper(csvHeader) + "\n" +
		fundRow("Medium Risk", "6 months to 1 year", 1, "Balanced Fund", "Conservative Hybrid", "Hybrid", 1000, 4, "2025-08-18") + "\n"
	c, err := Read(strings.NewReader(content))
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if c.Len() != 1 || c.Funds()[0].RiskProfile != domain.CategoryMedium {
		t.Fatalf("case-insensitive header load failed: %+v", c.Funds())
	}
}

func TestFundsReturnsCopy(t *testing.T) {
	path := writeCSV(t, fundRow("Low Risk", "> 1 year", 1, "Gilt Fund", "Gilt", "Debt", 500, 4, "2025-08-20"))
	c, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	funds := c.Funds()
	funds[0].Name = "Tampered"
	if c.Funds()[0].Name != "Gilt Fund" {
		t.Fatal("mutating the returned slice leaked into the snapshot")
	}
}
