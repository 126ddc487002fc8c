package dialog

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	einoopenai "github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/jmaren/registra/internal/config"
	"github.com/jmaren/registra/internal/enrollment"
)

// NewChatModel builds the eino chat model from configuration.
func NewChatModel(ctx context.Context, cfg config.ModelConfig) (model.ToolCallingChatModel, error) {
	switch strings.ToLower(cfg.Provider) {
	case "openai":
		modelConfig := &einoopenai.ChatModelConfig{
			APIKey: cfg.APIKey,
			Model:  cfg.Model,
		}
		if cfg.BaseURL != "" {
			modelConfig.BaseURL = cfg.BaseURL
		}
		if cfg.MaxTokens > 0 {
			maxTokens := cfg.MaxTokens
			modelConfig.MaxCompletionTokens = &maxTokens
		}
		if cfg.Timeout.Duration() > 0 {
			modelConfig.Timeout = cfg.Timeout.Duration()
		} else {
			modelConfig.Timeout = 60 * time.Second
		}
		if cfg.Temperature != nil {
			t := float32(*cfg.Temperature)
			modelConfig.Temperature = &t
		}
		return einoopenai.NewChatModel(ctx, modelConfig)
	default:
		return nil, fmt.Errorf("unknown provider: %s", cfg.Provider)
	}
}

const extractSystemPrompt = `You extract enrollment query parameters from a user message.

Reply with ONLY a JSON object, no prose, with these optional keys:
  "terms": list of semesters, normalized to "Fall YYYY"
  "level": "Undergraduate", "Graduate" or "All"
  "mode": "Campus Immersion", "Digital Immersion" or "All"
  "metric": one of %s
  "variable": a value of the chosen metric
  "is_confirmation": true when the message agrees with a proposed query
  "wants_to_change": the field the user wants to change, or "yes" when unspecified

Rules:
  - "online" means Digital Immersion, "in person" or "on campus" means Campus Immersion.
  - Bare years are fall semesters; data covers Fall %d through Fall %d.
  - "last N years" means the N most recent fall semesters.
  - Omit keys the message says nothing about. Never guess.`

// LLMExtractor asks a chat model for the extraction and falls back to the
// rule engine when the model output does not parse.
type LLMExtractor struct {
	model    model.ToolCallingChatModel
	fallback *RuleExtractor
	vocab    *Vocabulary
}

// NewLLMExtractor wraps a chat model with a rule fallback.
func NewLLMExtractor(m model.ToolCallingChatModel, v *Vocabulary) *LLMExtractor {
	return &LLMExtractor{model: m, fallback: NewRuleExtractor(v), vocab: v}
}

// Extract implements Extractor.
func (l *LLMExtractor) Extract(ctx context.Context, message, askingFor string) (Extraction, error) {
	metrics := make([]string, 0, len(l.vocab.Metrics))
	for m := range l.vocab.Metrics {
		metrics = append(metrics, fmt.Sprintf("%q", m))
	}
	system := fmt.Sprintf(extractSystemPrompt,
		strings.Join(metrics, ", "), l.vocab.FirstYear, l.vocab.LastYear)

	user := message
	if askingFor != "" {
		user = fmt.Sprintf("(the assistant just asked about: %s)\n%s", askingFor, message)
	}

	out, err := l.model.Generate(ctx, []*schema.Message{
		schema.SystemMessage(system),
		schema.UserMessage(user),
	})
	if err != nil {
		return Extraction{}, fmt.Errorf("model generate: %w", err)
	}

	ex, err := parseExtraction(out.Content)
	if err != nil {
		return l.fallback.Extract(ctx, message, askingFor)
	}
	return l.sanitize(ex), nil
}

func parseExtraction(content string) (Extraction, error) {
	// Models wrap JSON in fences often enough to be worth stripping.
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var ex Extraction
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &ex); err != nil {
		return Extraction{}, fmt.Errorf("parse extraction: %w", err)
	}
	return ex, nil
}

const rephraseSystemPrompt = `You are a friendly university enrollment assistant.
Rephrase the following question conversationally. Keep every factual detail
(available values, data ranges) intact. Reply with the question only.`

// LLMResponder rephrases slot prompts conversationally. Confirmation
// summaries and data answers stay deterministic; only the ask-next-slot
// questions go through the model, and any failure falls back to the
// template text.
type LLMResponder struct {
	model model.ToolCallingChatModel
	base  *TemplateResponder
}

// NewLLMResponder wraps the template responder with a chat model.
func NewLLMResponder(m model.ToolCallingChatModel, v *Vocabulary) *LLMResponder {
	return &LLMResponder{model: m, base: NewTemplateResponder(v)}
}

// AskSlot implements Responder.
func (l *LLMResponder) AskSlot(ctx context.Context, state QueryState, slot string, captured bool) (string, error) {
	text, err := l.base.AskSlot(ctx, state, slot, captured)
	if err != nil {
		return "", err
	}
	out, err := l.model.Generate(ctx, []*schema.Message{
		schema.SystemMessage(rephraseSystemPrompt),
		schema.UserMessage(text),
	})
	if err != nil || strings.TrimSpace(out.Content) == "" {
		return text, nil
	}
	return strings.TrimSpace(out.Content), nil
}

// Confirm implements Responder.
func (l *LLMResponder) Confirm(ctx context.Context, state QueryState) (string, error) {
	return l.base.Confirm(ctx, state)
}

// AskWhatToChange implements Responder.
func (l *LLMResponder) AskWhatToChange(ctx context.Context) (string, error) {
	return l.base.AskWhatToChange(ctx)
}

// Answer implements Responder.
func (l *LLMResponder) Answer(ctx context.Context, state QueryState, resp *enrollment.QueryResponse) (string, error) {
	return l.base.Answer(ctx, state, resp)
}

// sanitize drops values outside the vocabulary so a hallucinated slot never
// reaches the query state.
func (l *LLMExtractor) sanitize(ex Extraction) Extraction {
	terms := ex.Terms[:0:0]
	for _, t := range ex.Terms {
		if l.vocab.ValidTerm(t) {
			terms = append(terms, t)
		}
	}
	ex.Terms = terms
	if ex.Level != "" && !l.vocab.ValidLevel(ex.Level) {
		ex.Level = ""
	}
	if ex.Mode != "" && !l.vocab.ValidMode(ex.Mode) {
		ex.Mode = ""
	}
	if ex.Metric != "" {
		vars, ok := l.vocab.Metrics[ex.Metric]
		switch {
		case !ok:
			ex.Metric = ""
			ex.Variable = ""
		case ex.Variable != "" && ex.Variable != "All" && !contains(vars, ex.Variable):
			ex.Variable = ""
		}
	}
	return ex
}
