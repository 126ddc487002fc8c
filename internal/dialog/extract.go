package dialog

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Extractor pulls query parameters out of a single user message.
// askingFor carries the slot the previous reply asked about, so short
// answers like "all" land in the right place.
type Extractor interface {
	Extract(ctx context.Context, message, askingFor string) (Extraction, error)
}

// RuleExtractor is the deterministic, offline extractor.
type RuleExtractor struct {
	vocab *Vocabulary
}

// NewRuleExtractor creates a rule extractor over the given vocabulary.
func NewRuleExtractor(v *Vocabulary) *RuleExtractor {
	return &RuleExtractor{vocab: v}
}

var (
	fallTermRe  = regexp.MustCompile(`\bfall\s*(?:of\s*)?'?(\d{2,4})\b`)
	bareYearRe  = regexp.MustCompile(`\b(20\d{2})\b`)
	lastYearsRe = regexp.MustCompile(`\blast\s+(\d+|two|three|four|five)\s+years?\b`)
	punctRe     = regexp.MustCompile(`[.,!?]`)
)

var affirmatives = map[string]bool{
	"yes": true, "y": true, "ok": true, "okay": true, "sure": true,
	"correct": true, "confirm": true, "yep": true, "yup": true,
	"looks good": true, "that's right": true, "sounds good": true,
	"that is right": true,
}

var rejections = map[string]bool{
	"no": true, "nope": true, "not right": true, "that's wrong": true,
}

// changeTargets maps the words users name a slot by to the slot itself.
var changeTargets = []struct{ keyword, field string }{
	{"term", "term"},
	{"semester", "term"},
	{"year", "term"},
	{"level", "level"},
	{"mode", "mode"},
	{"focus", "focus"},
	{"metric", "metric"},
}

// Extract applies the rule table. It never fails; the error return exists
// for the Extractor interface the LLM implementation shares.
func (r *RuleExtractor) Extract(_ context.Context, message, askingFor string) (Extraction, error) {
	msg := strings.ToLower(strings.TrimSpace(message))
	plain := strings.TrimSpace(punctRe.ReplaceAllString(msg, ""))

	var ex Extraction

	// Confirmation and rejection signals.
	if affirmatives[plain] {
		ex.IsConfirmation = true
	}
	if rejections[plain] || strings.Contains(msg, "change") || strings.Contains(msg, "modify") {
		ex.WantsChange = "yes"
	}
	if ex.WantsChange == "yes" || askingFor == AskWhatToChange {
		for _, t := range changeTargets {
			if strings.Contains(msg, t.keyword) {
				ex.WantsChange = t.field
				break
			}
		}
	}

	ex.Terms = r.extractTerms(msg)
	ex.Level, ex.Mode = r.extractLevelAndMode(msg, plain, askingFor)
	ex.Metric, ex.Variable = extractFocus(msg)

	return ex, nil
}

func (r *RuleExtractor) extractTerms(msg string) []string {
	seen := map[int]bool{}
	var years []int

	add := func(year int) {
		if year < 100 {
			year += 2000
		}
		if year < r.vocab.FirstYear || year > r.vocab.LastYear || seen[year] {
			return
		}
		seen[year] = true
		years = append(years, year)
	}

	for _, m := range fallTermRe.FindAllStringSubmatch(msg, -1) {
		if y, err := strconv.Atoi(m[1]); err == nil {
			add(y)
		}
	}

	if m := lastYearsRe.FindStringSubmatch(msg); m != nil {
		n := wordToInt(m[1])
		for y := r.vocab.LastYear - n + 1; y <= r.vocab.LastYear; y++ {
			add(y)
		}
	}

	// Bare years ("2024 and 2025") when not already captured as fall terms.
	for _, m := range bareYearRe.FindAllStringSubmatch(msg, -1) {
		if y, err := strconv.Atoi(m[1]); err == nil {
			add(y)
		}
	}

	if len(years) == 0 {
		return nil
	}
	terms := make([]string, len(years))
	for i, y := range years {
		terms[i] = fmt.Sprintf("Fall %d", y)
	}
	return terms
}

func wordToInt(s string) int {
	switch s {
	case "two":
		return 2
	case "three":
		return 3
	case "four":
		return 4
	case "five":
		return 5
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

func (r *RuleExtractor) extractLevelAndMode(msg, plain, askingFor string) (level, mode string) {
	// "graduate college" is a college, not a level.
	isGradCollege := strings.Contains(msg, "graduate college")

	switch {
	case strings.Contains(msg, "undergrad"):
		level = "Undergraduate"
	case strings.Contains(msg, "grad") && !isGradCollege:
		level = "Graduate"
	case strings.Contains(msg, "all levels"), strings.Contains(msg, "both levels"):
		level = "All"
	}

	digital := strings.Contains(msg, "online") || strings.Contains(msg, "digital")
	inPerson := strings.Contains(msg, "in-person") || strings.Contains(msg, "in person") ||
		strings.Contains(msg, "on-campus") || strings.Contains(msg, "on campus") ||
		strings.Contains(msg, "campus immersion")
	if !inPerson && strings.Contains(msg, "campus") && !mentionsCampusName(msg) {
		// Bare "campus" means the in-person mode unless a campus name is named.
		inPerson = true
	}

	switch {
	case digital && inPerson:
		mode = "All"
	case digital:
		mode = "Digital Immersion"
	case inPerson:
		mode = "Campus Immersion"
	case strings.Contains(msg, "all modes"), strings.Contains(msg, "both modes"):
		mode = "All"
	}

	// Short answers to a direct question.
	if plain == "all" || plain == "both" || plain == "everything" {
		switch askingFor {
		case AskLevel:
			level = "All"
		case AskMode:
			mode = "All"
		}
	}

	if level != "" && !r.vocab.ValidLevel(level) {
		level = ""
	}
	if mode != "" && !r.vocab.ValidMode(mode) {
		mode = ""
	}
	return level, mode
}

func mentionsCampusName(msg string) bool {
	for _, name := range []string{"tempe", "downtown", "polytechnic", "west valley", "other locations"} {
		if strings.Contains(msg, name) {
			return true
		}
	}
	return false
}

// focusRule maps a message keyword to a metric/variable pair.
// Order matters: negated forms before their positives.
type focusRule struct {
	keyword  string
	metric   string
	variable string
}

var focusRules = []focusRule{
	{"non-stem", "STEM discipline", "Non-STEM"},
	{"non stem", "STEM discipline", "Non-STEM"},
	{"stem", "STEM discipline", "STEM"},
	{"non-resident", "Resident Status", "Non-Resident"},
	{"out-of-state", "Resident Status", "Non-Resident"},
	{"out of state", "Resident Status", "Non-Resident"},
	{"in-state", "Resident Status", "Resident"},
	{"in state", "Resident Status", "Resident"},
	{"resident", "Resident Status", "Resident"},
	{"associate", "Degree Level", "Associate"},
	{"bachelor", "Degree Level", "Bachelor"},
	{"master", "Degree Level", "Master"},
	{"doctoral", "Degree Level", "Doctor"},
	{"doctorate", "Degree Level", "Doctor"},
	{"phd", "Degree Level", "Doctor"},
	{"non-degree", "Degree Level", "Non-Degree"},
	{"graduate college", "College", "Graduate College"},
	{"business", "College", "Business"},
	{"engineering", "College", "Engineering"},
	{"journalism", "College", "Journalism"},
	{"nursing", "College", "Nursing and Health Innovation"},
	{"liberal arts", "College", "Liberal Arts and Sciences"},
	{"design", "College", "Design and the Arts"},
	{"health solutions", "College", "Health Solutions"},
	{"global futures", "College", "Global Futures"},
	{"global management", "College", "Global Management"},
	{"new college", "College", "New College"},
	{"law", "College", "Law"},
	{"tempe", "Campus", "Tempe"},
	{"downtown", "Campus", "Downtown Phoenix"},
	{"polytechnic", "Campus", "Polytechnic"},
	{"west valley", "Campus", "West Valley"},
	{"other locations", "Campus", "Other Locations"},
}

func extractFocus(msg string) (metric, variable string) {
	for _, rule := range focusRules {
		if strings.Contains(msg, rule.keyword) {
			return rule.metric, rule.variable
		}
	}
	return "", ""
}
