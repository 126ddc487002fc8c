package dialog

import (
	"context"
	"reflect"
	"testing"
)

func ruleExtract(t *testing.T, message, askingFor string) Extraction {
	t.Helper()
	ex, err := NewRuleExtractor(DefaultVocabulary()).Extract(context.Background(), message, askingFor)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	return ex
}

func TestExtractTerms(t *testing.T) {
	cases := []struct {
		message string
		want    []string
	}{
		{"How many students enrolled in Fall 2024?", []string{"Fall 2024"}},
		{"fall 24 and fall 25", []string{"Fall 2024", "Fall 2025"}},
		{"compare 2023 and 2024", []string{"Fall 2023", "Fall 2024"}},
		{"the last 3 years", []string{"Fall 2023", "Fall 2024", "Fall 2025"}},
		{"the last three years", []string{"Fall 2023", "Fall 2024", "Fall 2025"}},
		{"fall of 2019", []string{"Fall 2019"}},
		{"fall 2024 and 2024 again", []string{"Fall 2024"}},
		{"fall 2008 please", nil}, // before the data range
		{"no term here", nil},
	}
	for _, c := range cases {
		if got := ruleExtract(t, c.message, "").Terms; !reflect.DeepEqual(got, c.want) {
			t.Fatalf("%q: expected terms %v, got %v", c.message, c.want, got)
		}
	}
}

func TestExtractLevelAndMode(t *testing.T) {
	cases := []struct {
		message   string
		askingFor string
		level     string
		mode      string
	}{
		{"undergraduate students please", "", "Undergraduate", ""},
		{"grad students", "", "Graduate", ""},
		{"all levels", "", "All", ""},
		{"online only", "", "", "Digital Immersion"},
		{"in person", "", "", "Campus Immersion"},
		{"on campus students", "", "", "Campus Immersion"},
		{"online and in person", "", "", "All"},
		{"all", AskLevel, "All", ""},
		{"all", AskMode, "", "All"},
		{"both", AskMode, "", "All"},
		{"the graduate college", "", "", ""}, // a college, not a level
		{"the tempe campus", "", "", ""},     // a campus name, not the mode
	}
	for _, c := range cases {
		ex := ruleExtract(t, c.message, c.askingFor)
		if ex.Level != c.level || ex.Mode != c.mode {
			t.Fatalf("%q: expected level=%q mode=%q, got level=%q mode=%q",
				c.message, c.level, c.mode, ex.Level, ex.Mode)
		}
	}
}

func TestExtractFocus(t *testing.T) {
	cases := []struct {
		message  string
		metric   string
		variable string
	}{
		{"how many stem students", "STEM discipline", "STEM"},
		{"non-stem enrollment", "STEM discipline", "Non-STEM"},
		{"out-of-state students", "Resident Status", "Non-Resident"},
		{"in state residents", "Resident Status", "Resident"},
		{"masters degrees", "Degree Level", "Master"},
		{"phd students", "Degree Level", "Doctor"},
		{"the engineering college", "College", "Engineering"},
		{"tempe enrollment", "Campus", "Tempe"},
		{"plain enrollment question", "", ""},
	}
	for _, c := range cases {
		ex := ruleExtract(t, c.message, "")
		if ex.Metric != c.metric || ex.Variable != c.variable {
			t.Fatalf("%q: expected %q/%q, got %q/%q",
				c.message, c.metric, c.variable, ex.Metric, ex.Variable)
		}
	}
}

func TestExtractConfirmation(t *testing.T) {
	for _, msg := range []string{"yes", "Yes!", "looks good", "correct"} {
		if !ruleExtract(t, msg, AskConfirmation).IsConfirmation {
			t.Fatalf("expected %q to confirm", msg)
		}
	}
	if ruleExtract(t, "yes but change the level", AskConfirmation).IsConfirmation {
		t.Fatal("a change request must not also confirm implicitly in the engine path")
	}
}

func TestExtractWantsChange(t *testing.T) {
	cases := []struct {
		message   string
		askingFor string
		want      string
	}{
		{"I want to change something", AskConfirmation, "yes"},
		{"no", AskConfirmation, "yes"},
		{"change the level", AskConfirmation, "level"},
		{"can we modify the semester", AskConfirmation, "term"},
		{"the mode", AskWhatToChange, "mode"},
		{"focus", AskWhatToChange, "focus"},
		{"yes", AskConfirmation, ""},
	}
	for _, c := range cases {
		if got := ruleExtract(t, c.message, c.askingFor).WantsChange; got != c.want {
			t.Fatalf("%q: expected wants_to_change %q, got %q", c.message, c.want, got)
		}
	}
}

func TestExtractChangeCarriesReplacement(t *testing.T) {
	ex := ruleExtract(t, "change the term to fall 2023", AskConfirmation)
	if ex.WantsChange != "term" {
		t.Fatalf("expected wants_to_change term, got %q", ex.WantsChange)
	}
	if !reflect.DeepEqual(ex.Terms, []string{"Fall 2023"}) {
		t.Fatalf("expected the replacement term to be extracted, got %v", ex.Terms)
	}
}
