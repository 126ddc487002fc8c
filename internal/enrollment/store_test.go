package enrollment

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "enrollment.db"), time.Hour)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seed(t *testing.T, s *Store) {
	t.Helper()
	err := s.Insert([]Row{
		{Term: "Fall 2023", Level: "All", Mode: "All", Metric: "Campus", Variable: "All", Students: 120000},
		{Term: "Fall 2024", Level: "All", Mode: "All", Metric: "Campus", Variable: "All", Students: 125000},
		{Term: "Fall 2024", Level: "All", Mode: "All", Metric: "Campus", Variable: "Tempe", Students: 58000},
		{Term: "Fall 2024", Level: "All", Mode: "All", Metric: "STEM discipline", Variable: "STEM", Students: 40000},
		{Term: "Fall 2024", Level: "All", Mode: "All", Metric: "STEM discipline", Variable: "Non-STEM", Students: 85000},
		{Term: "Fall 2024", Level: "Undergraduate", Mode: "Campus Immersion", Metric: "Campus", Variable: "All", Students: 60000},
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
}

func TestQueryDefaultsToCampusTotal(t *testing.T) {
	s := testStore(t)
	seed(t, s)

	resp, err := s.Query(Params{Terms: []string{"Fall 2024"}, Level: "All", Mode: "All"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(resp.Results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(resp.Results))
	}
	if resp.Results[0].Students != 125000 {
		t.Fatalf("expected the Campus/All total, got %d", resp.Results[0].Students)
	}
	if resp.TotalAcrossTerms != nil {
		t.Fatal("expected no total for a single term")
	}
}

func TestQueryMetricOnlyReturnsAllVariables(t *testing.T) {
	s := testStore(t)
	seed(t, s)

	resp, err := s.Query(Params{
		Terms: []string{"Fall 2024"}, Level: "All", Mode: "All",
		Metric: "STEM discipline",
	})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(resp.Results) != 2 {
		t.Fatalf("expected both variables, got %d results", len(resp.Results))
	}
	for _, r := range resp.Results {
		if r.Variable == "" {
			t.Fatalf("expected variable populated, got %+v", r)
		}
	}
}

func TestQueryMetricAndVariableExact(t *testing.T) {
	s := testStore(t)
	seed(t, s)

	resp, err := s.Query(Params{
		Terms: []string{"Fall 2024"}, Level: "All", Mode: "All",
		Metric: "STEM discipline", Variable: "STEM",
	})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(resp.Results) != 1 || resp.Results[0].Students != 40000 {
		t.Fatalf("expected the STEM row, got %+v", resp.Results)
	}
}

func TestQueryMultiTermSortedWithTotal(t *testing.T) {
	s := testStore(t)
	seed(t, s)

	resp, err := s.Query(Params{Terms: []string{"Fall 2024", "Fall 2023"}, Level: "All", Mode: "All"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(resp.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(resp.Results))
	}
	if resp.Results[0].Term != "Fall 2023" || resp.Results[1].Term != "Fall 2024" {
		t.Fatalf("expected chronological order, got %+v", resp.Results)
	}
	if resp.TotalAcrossTerms == nil || *resp.TotalAcrossTerms != 245000 {
		t.Fatalf("expected total 245000, got %v", resp.TotalAcrossTerms)
	}
}

func TestQueryLevelAndModeExact(t *testing.T) {
	s := testStore(t)
	seed(t, s)

	resp, err := s.Query(Params{
		Terms: []string{"Fall 2024"}, Level: "Undergraduate", Mode: "Campus Immersion",
	})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(resp.Results) != 1 || resp.Results[0].Students != 60000 {
		t.Fatalf("expected the undergraduate campus row, got %+v", resp.Results)
	}
}

func TestQueryNoMatches(t *testing.T) {
	s := testStore(t)
	seed(t, s)

	resp, err := s.Query(Params{Terms: []string{"Fall 2012"}, Level: "All", Mode: "All"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(resp.Results) != 0 {
		t.Fatalf("expected no results, got %+v", resp.Results)
	}
}

func TestInsertInvalidatesSnapshot(t *testing.T) {
	s := testStore(t)
	seed(t, s)

	if _, err := s.Query(Params{Terms: []string{"Fall 2024"}, Level: "All", Mode: "All"}); err != nil {
		t.Fatalf("query: %v", err)
	}
	err := s.Insert([]Row{
		{Term: "Fall 2025", Level: "All", Mode: "All", Metric: "Campus", Variable: "All", Students: 130000},
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	resp, err := s.Query(Params{Terms: []string{"Fall 2025"}, Level: "All", Mode: "All"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(resp.Results) != 1 {
		t.Fatalf("expected the new row after reimport, got %+v", resp.Results)
	}
}

func TestReadCSV(t *testing.T) {
	input := strings.Join([]string{
		"term,level,mode,metric,variable,description,students",
		`Fall 2024,All,All,Campus,All,Total enrollment,"125,000"`,
		"Fall 2024,Undergraduate,Campus Immersion,Campus,Tempe,,58000",
	}, "\n")

	rows, err := ReadCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Students != 125000 {
		t.Fatalf("expected comma-grouped count parsed, got %d", rows[0].Students)
	}
	if rows[1].Variable != "Tempe" || rows[1].Description != "" {
		t.Fatalf("unexpected row %+v", rows[1])
	}
}

func TestReadCSVMissingColumn(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("term,level,mode\nFall 2024,All,All"))
	if err == nil || !strings.Contains(err.Error(), "missing column") {
		t.Fatalf("expected missing column error, got %v", err)
	}
}
