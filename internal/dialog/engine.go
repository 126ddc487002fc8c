package dialog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmaren/registra/internal/enrollment"
)

// DataSource answers a completed query.
type DataSource interface {
	Query(p enrollment.Params) (*enrollment.QueryResponse, error)
}

// Turn is the engine's view of one conversation turn: the updated state plus
// the reply to send.
type Turn struct {
	State     QueryState
	AskingFor string
	Reply     string
}

// Engine drives the slot-filling dialog. It is stateless; callers own the
// per-conversation QueryState and askingFor context.
type Engine struct {
	extractor Extractor
	responder Responder
	data      DataSource
	log       *slog.Logger
}

// NewEngine assembles an engine.
func NewEngine(ex Extractor, r Responder, data DataSource, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{extractor: ex, responder: r, data: data, log: log}
}

// Step processes one user message against the current state.
func (e *Engine) Step(ctx context.Context, state QueryState, askingFor, message string) (*Turn, error) {
	// A confirmed conversation starts a fresh query on the next message.
	if state.Confirmed {
		state = QueryState{}
		askingFor = ""
	}

	ex, err := e.extractor.Extract(ctx, message, askingFor)
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}
	e.log.Debug("extracted",
		slog.Any("terms", ex.Terms),
		slog.String("level", ex.Level),
		slog.String("mode", ex.Mode),
		slog.String("metric", ex.Metric),
		slog.Bool("confirmation", ex.IsConfirmation),
		slog.String("wants_change", ex.WantsChange))

	if state.AwaitingConfirmation {
		return e.stepConfirmation(ctx, state, ex)
	}
	return e.stepCollection(ctx, state, askingFor, ex)
}

func (e *Engine) stepConfirmation(ctx context.Context, state QueryState, ex Extraction) (*Turn, error) {
	switch {
	case ex.WantsChange == "yes":
		state.AwaitingConfirmation = false
		reply, err := e.responder.AskWhatToChange(ctx)
		if err != nil {
			return nil, err
		}
		return &Turn{State: state, AskingFor: AskWhatToChange, Reply: reply}, nil

	case ex.WantsChange != "":
		state.AwaitingConfirmation = false
		state = state.ClearField(ex.WantsChange)
		// The same message may carry the replacement value.
		return e.collect(ctx, state.Merge(ex, ""), true)

	case ex.IsConfirmation:
		state.AwaitingConfirmation = false
		state.Confirmed = true
		resp, err := e.data.Query(enrollment.Params{
			Terms:    state.Terms,
			Level:    state.Level,
			Mode:     state.Mode,
			Metric:   state.Metric,
			Variable: state.Variable,
		})
		if err != nil {
			return nil, fmt.Errorf("query dataset: %w", err)
		}
		reply, err := e.responder.Answer(ctx, state, resp)
		if err != nil {
			return nil, err
		}
		return &Turn{State: state, AskingFor: "", Reply: reply}, nil

	default:
		// Neither a yes nor a change request: fold in anything new
		// (metric and variable may still move) and ask again.
		state = state.Merge(ex, AskConfirmation)
		reply, err := e.responder.Confirm(ctx, state)
		if err != nil {
			return nil, err
		}
		return &Turn{State: state, AskingFor: AskConfirmation, Reply: reply}, nil
	}
}

func (e *Engine) stepCollection(ctx context.Context, state QueryState, askingFor string, ex Extraction) (*Turn, error) {
	if askingFor == AskWhatToChange && ex.WantsChange != "" && ex.WantsChange != "yes" {
		state = state.ClearField(ex.WantsChange)
	}
	captured := len(ex.Terms) > 0 || ex.Level != "" || ex.Mode != "" || ex.Metric != ""
	return e.collect(ctx, state.Merge(ex, askingFor), captured)
}

func (e *Engine) collect(ctx context.Context, state QueryState, captured bool) (*Turn, error) {
	if missing := state.MissingRequired(); len(missing) > 0 {
		reply, err := e.responder.AskSlot(ctx, state, missing[0], captured)
		if err != nil {
			return nil, err
		}
		return &Turn{State: state, AskingFor: missing[0], Reply: reply}, nil
	}

	state.AwaitingConfirmation = true
	reply, err := e.responder.Confirm(ctx, state)
	if err != nil {
		return nil, err
	}
	return &Turn{State: state, AskingFor: AskConfirmation, Reply: reply}, nil
}
