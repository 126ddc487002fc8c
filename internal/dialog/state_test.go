package dialog

import (
	"reflect"
	"testing"
)

func TestMergeTermsCombine(t *testing.T) {
	s := QueryState{Terms: []string{"Fall 2023"}}
	s = s.Merge(Extraction{Terms: []string{"Fall 2024", "Fall 2023"}}, "")

	want := []string{"Fall 2023", "Fall 2024"}
	if !reflect.DeepEqual(s.Terms, want) {
		t.Fatalf("expected terms %v, got %v", want, s.Terms)
	}
}

func TestMergeLevelFillOnly(t *testing.T) {
	s := QueryState{Level: "Undergraduate"}
	s = s.Merge(Extraction{Level: "Graduate"}, "")

	if s.Level != "Undergraduate" {
		t.Fatalf("expected level to stay Undergraduate, got %q", s.Level)
	}
}

func TestMergeModeFillOnly(t *testing.T) {
	s := QueryState{}
	s = s.Merge(Extraction{Mode: "Digital Immersion"}, "")
	if s.Mode != "Digital Immersion" {
		t.Fatalf("expected mode Digital Immersion, got %q", s.Mode)
	}

	s = s.Merge(Extraction{Mode: "Campus Immersion"}, "")
	if s.Mode != "Digital Immersion" {
		t.Fatalf("expected mode to stay Digital Immersion, got %q", s.Mode)
	}
}

func TestMergeFocusUpdatesAnytime(t *testing.T) {
	s := QueryState{Metric: "Campus", Variable: "Tempe"}
	s = s.Merge(Extraction{Metric: "STEM discipline", Variable: "STEM"}, "")

	if s.Metric != "STEM discipline" || s.Variable != "STEM" {
		t.Fatalf("expected focus to update, got %q/%q", s.Metric, s.Variable)
	}
}

func TestMergeAllAnswerToModeQuestion(t *testing.T) {
	// Asked for mode, the user said "all": the extractor reports level All,
	// the answer belongs to the mode slot.
	s := QueryState{Terms: []string{"Fall 2024"}, Level: "Graduate"}
	s = s.Merge(Extraction{Level: "All"}, AskMode)

	if s.Mode != "All" {
		t.Fatalf("expected mode All, got %q", s.Mode)
	}
	if s.Level != "Graduate" {
		t.Fatalf("expected level to stay Graduate, got %q", s.Level)
	}
}

func TestMissingRequiredOrder(t *testing.T) {
	s := QueryState{}
	want := []string{AskTerm, AskLevel, AskMode}
	if got := s.MissingRequired(); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	s = QueryState{Terms: []string{"Fall 2024"}, Mode: "All"}
	if got := s.MissingRequired(); !reflect.DeepEqual(got, []string{AskLevel}) {
		t.Fatalf("expected [level], got %v", got)
	}

	s.Level = "All"
	if !s.Complete() {
		t.Fatal("expected state to be complete")
	}
}

func TestClearField(t *testing.T) {
	base := QueryState{
		Terms:    []string{"Fall 2024"},
		Level:    "Graduate",
		Mode:     "All",
		Metric:   "College",
		Variable: "Business",
	}

	cases := []struct {
		field string
		check func(QueryState) bool
	}{
		{"term", func(s QueryState) bool { return s.Terms == nil && s.Level != "" }},
		{"level", func(s QueryState) bool { return s.Level == "" && s.Mode != "" }},
		{"mode", func(s QueryState) bool { return s.Mode == "" && s.Level != "" }},
		{"focus", func(s QueryState) bool { return s.Metric == "" && s.Variable == "" }},
		{"yes", func(s QueryState) bool { return reflect.DeepEqual(s, base) }},
	}
	for _, c := range cases {
		if got := base.ClearField(c.field); !c.check(got) {
			t.Fatalf("ClearField(%q) gave %+v", c.field, got)
		}
	}
}

func TestSummary(t *testing.T) {
	s := QueryState{
		Terms:    []string{"Fall 2023", "Fall 2024"},
		Level:    "Undergraduate",
		Mode:     "Campus Immersion",
		Metric:   "STEM discipline",
		Variable: "STEM",
	}
	want := "Terms: Fall 2023, Fall 2024\nLevel: Undergraduate\nMode: Campus Immersion\nFocus: STEM discipline / STEM"
	if got := s.Summary(); got != want {
		t.Fatalf("expected summary %q, got %q", want, got)
	}

	if got := (QueryState{}).Summary(); got != "No parameters collected yet." {
		t.Fatalf("expected empty summary text, got %q", got)
	}
}
