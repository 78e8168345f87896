package stats_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"

	"qrlinks/internal/models"
	"qrlinks/internal/stats"
	"qrlinks/internal/testutil"
)

// Integration coverage for the report queries against a real database.
func TestReportAgainstDatabase(t *testing.T) {
	database, cleanup := testutil.TestDB(t)
	defer cleanup()

	owner := testutil.CreateTestUser(t, database, "owner@example.com", models.RoleAdmin, nil)
	code := testutil.CreateTestQRCode(t, database, owner.ID, "menu", true)
	testutil.CreateTestScan(t, database, code.ID, "1.2.3.4", "Germany")
	testutil.CreateTestScan(t, database, code.ID, "1.2.3.4", "Germany")
	testutil.CreateTestScan(t, database, code.ID, "5.6.7.8", "France")

	agg := stats.NewAggregator(database, slog.New(slog.NewTextHandler(io.Discard, nil)))

	report, err := agg.Report(context.Background(), []uuid.UUID{owner.ID})
	if err != nil {
		t.Fatalf("Report() error = %v", err)
	}

	if report.TotalQRCodes != 1 {
		t.Errorf("TotalQRCodes = %d, want 1", report.TotalQRCodes)
	}
	if report.TotalScans != 3 {
		t.Errorf("TotalScans = %d, want 3", report.TotalScans)
	}
	if report.UniqueVisitors != 2 {
		t.Errorf("UniqueVisitors = %d, want 2", report.UniqueVisitors)
	}
	if len(report.TopCountries) != 2 || report.TopCountries[0].Country != "Germany" {
		t.Errorf("TopCountries = %+v, want Germany first", report.TopCountries)
	}
	if report.ScansDelta != "+3 this period" {
		t.Errorf("ScansDelta = %q, want %q", report.ScansDelta, "+3 this period")
	}
}
