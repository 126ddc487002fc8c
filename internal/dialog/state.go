package dialog

import (
	"fmt"
	"strings"
)

// Slot names used for the "what are we asking next" context.
const (
	AskTerm         = "term"
	AskLevel        = "level"
	AskMode         = "mode"
	AskConfirmation = "confirmation"
	AskWhatToChange = "what_to_change"
)

// QueryState accumulates the enrollment query across a conversation.
type QueryState struct {
	Terms                []string `json:"terms"`
	Level                string   `json:"level,omitempty"`
	Mode                 string   `json:"mode,omitempty"`
	Metric               string   `json:"metric,omitempty"`
	Variable             string   `json:"variable,omitempty"`
	Confirmed            bool     `json:"confirmed"`
	AwaitingConfirmation bool     `json:"awaiting_confirmation"`
}

// Extraction is what one user message yielded.
type Extraction struct {
	Terms    []string `json:"terms,omitempty"`
	Level    string   `json:"level,omitempty"`
	Mode     string   `json:"mode,omitempty"`
	Metric   string   `json:"metric,omitempty"`
	Variable string   `json:"variable,omitempty"`
	// IsConfirmation is set for "yes", "correct" and friends.
	IsConfirmation bool `json:"is_confirmation,omitempty"`
	// WantsChange names the field to change, or "yes" for a generic rejection.
	WantsChange string `json:"wants_to_change,omitempty"`
}

// MissingRequired returns the required slots still unfilled, in asking order.
func (s QueryState) MissingRequired() []string {
	var missing []string
	if len(s.Terms) == 0 {
		missing = append(missing, AskTerm)
	}
	if s.Level == "" {
		missing = append(missing, AskLevel)
	}
	if s.Mode == "" {
		missing = append(missing, AskMode)
	}
	return missing
}

// Complete reports whether every required slot is filled.
func (s QueryState) Complete() bool {
	return len(s.MissingRequired()) == 0
}

// Merge folds an extraction into the state.
//
// Rules (the slot-protection contract):
//   - terms combine, never overwrite;
//   - level and mode only fill when currently empty;
//   - metric and variable may be updated at any time.
//
// When we asked for mode and the user answered a bare "all" (which the
// extractor reports as level All), the answer belongs to the mode slot.
func (s QueryState) Merge(e Extraction, askingFor string) QueryState {
	out := s

	out.Terms = append([]string(nil), s.Terms...)
	for _, t := range e.Terms {
		if !contains(out.Terms, t) {
			out.Terms = append(out.Terms, t)
		}
	}

	if out.Level == "" {
		out.Level = e.Level
	}
	if out.Mode == "" {
		out.Mode = e.Mode
	}
	if askingFor == AskMode && e.Level == "All" && e.Mode == "" && s.Mode == "" {
		out.Mode = "All"
		out.Level = s.Level
	}

	if e.Metric != "" {
		out.Metric = e.Metric
	}
	if e.Variable != "" {
		out.Variable = e.Variable
	}

	return out
}

// ClearField empties the slot named by a change request. Unrecognized names
// (including the generic "yes") clear nothing.
func (s QueryState) ClearField(field string) QueryState {
	out := s
	field = strings.ToLower(field)
	switch {
	case strings.Contains(field, "term"):
		out.Terms = nil
	case strings.Contains(field, "level"), strings.Contains(field, "grad"):
		out.Level = ""
	case strings.Contains(field, "mode"), strings.Contains(field, "campus"), strings.Contains(field, "digital"):
		out.Mode = ""
	case strings.Contains(field, "focus"), strings.Contains(field, "metric"):
		out.Metric = ""
		out.Variable = ""
	}
	return out
}

// Summary renders the collected parameters for the confirmation prompt.
func (s QueryState) Summary() string {
	var parts []string
	switch {
	case len(s.Terms) == 1:
		parts = append(parts, fmt.Sprintf("Term: %s", s.Terms[0]))
	case len(s.Terms) > 1:
		parts = append(parts, fmt.Sprintf("Terms: %s", strings.Join(s.Terms, ", ")))
	}
	if s.Level != "" {
		parts = append(parts, fmt.Sprintf("Level: %s", s.Level))
	}
	if s.Mode != "" {
		parts = append(parts, fmt.Sprintf("Mode: %s", s.Mode))
	}
	switch {
	case s.Metric != "" && s.Variable != "":
		parts = append(parts, fmt.Sprintf("Focus: %s / %s", s.Metric, s.Variable))
	case s.Metric != "":
		parts = append(parts, fmt.Sprintf("Category: %s", s.Metric))
	case s.Variable != "":
		parts = append(parts, fmt.Sprintf("Focus: %s", s.Variable))
	}
	if len(parts) == 0 {
		return "No parameters collected yet."
	}
	return strings.Join(parts, "\n")
}
