package dialog

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmaren/registra/internal/enrollment"
)

// Responder renders the assistant side of a turn.
type Responder interface {
	AskSlot(ctx context.Context, state QueryState, slot string, captured bool) (string, error)
	Confirm(ctx context.Context, state QueryState) (string, error)
	AskWhatToChange(ctx context.Context) (string, error)
	Answer(ctx context.Context, state QueryState, resp *enrollment.QueryResponse) (string, error)
}

// TemplateResponder produces fixed-text replies. It is the default: answers
// stay deterministic and the server runs without a model configured.
type TemplateResponder struct {
	vocab *Vocabulary
}

// NewTemplateResponder creates a responder over the given vocabulary.
func NewTemplateResponder(v *Vocabulary) *TemplateResponder {
	return &TemplateResponder{vocab: v}
}

// AskSlot asks for the next unfilled required slot. captured notes whether
// the message we are replying to contributed anything.
func (t *TemplateResponder) AskSlot(_ context.Context, _ QueryState, slot string, captured bool) (string, error) {
	var q string
	switch slot {
	case AskTerm:
		q = fmt.Sprintf("Which semester(s) are you interested in? I have data for Fall %d through Fall %d.",
			t.vocab.FirstYear, t.vocab.LastYear)
	case AskLevel:
		q = "Are you interested in Undergraduate students, Graduate students, or All levels?"
	case AskMode:
		q = "Which mode of instruction? Campus Immersion (in person), Digital Immersion (online), or All?"
	default:
		return "", fmt.Errorf("unknown slot %q", slot)
	}
	if captured {
		return "Got it. " + q, nil
	}
	return q, nil
}

// Confirm shows the collected parameters and asks for a go-ahead.
func (t *TemplateResponder) Confirm(_ context.Context, state QueryState) (string, error) {
	return fmt.Sprintf("I'll search for:\n\n%s\n\nDoes this look correct?", state.Summary()), nil
}

// AskWhatToChange follows a generic "I want to change something".
func (t *TemplateResponder) AskWhatToChange(_ context.Context) (string, error) {
	return "Which field would you like to change? (Term, Level, Mode, or Focus)", nil
}

// Answer renders the query results.
func (t *TemplateResponder) Answer(_ context.Context, _ QueryState, resp *enrollment.QueryResponse) (string, error) {
	if len(resp.Results) == 0 {
		return "I couldn't find any enrollment data matching those parameters. Would you like to try a different query?", nil
	}

	var b strings.Builder
	b.WriteString("Here's what I found:\n\n")
	for _, r := range resp.Results {
		label := r.Term
		if r.Variable != "" && r.Variable != "All" {
			label = fmt.Sprintf("%s (%s)", r.Term, r.Variable)
		}
		fmt.Fprintf(&b, "%s: %s students\n", label, FormatCount(r.Students))
	}
	if resp.TotalAcrossTerms != nil {
		fmt.Fprintf(&b, "\nTotal across all terms: %s students\n", FormatCount(*resp.TotalAcrossTerms))
	}
	b.WriteString("\nIs there anything else you'd like to look up?")
	return b.String(), nil
}

// FormatCount renders an integer with thousands separators.
func FormatCount(n int) string {
	s := fmt.Sprintf("%d", n)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	out := strings.Join(parts, ",")
	if neg {
		out = "-" + out
	}
	return out
}
