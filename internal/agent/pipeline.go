package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

var ErrEmptyInput = errors.New("empty input")

// Stage names a step of a pipeline.
type Stage string

const (
	StageSummarize       Stage = "summarize"
	StageValidateSummary Stage = "validate summary"
	StageWriteArticle    Stage = "write article"
	StageRefineArticle   Stage = "refine article"
	StageValidateArticle Stage = "validate article"
	StageFindEvents      Stage = "find events"
	StageValidateEvents  Stage = "validate events"
)

// StageError is returned when a step of a pipeline fails.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// SummaryResult holds the outputs of Pipeline.Summarize.
type SummaryResult struct {
	Summary    string `json:"summary"`
	Validation string `json:"validation,omitempty"`
}

// ArticleResult holds the outputs of Pipeline.WriteArticle.
type ArticleResult struct {
	Draft      string `json:"draft"`
	Refined    string `json:"refined,omitempty"`
	Validation string `json:"validation,omitempty"`
}

// EventsResult holds the outputs of Pipeline.FindEvents.
type EventsResult struct {
	Events     string `json:"events"`
	Validation string `json:"validation,omitempty"`
}

// Pipeline runs a worker agent followed by a validator agent. Steps run
// sequentially. A failing worker aborts the pipeline before the validator
// runs. A failing validator still returns the worker's output alongside the
// error.
type Pipeline struct {
	agents *Manager
}

func NewPipeline(agents *Manager) *Pipeline {
	return &Pipeline{agents: agents}
}

// Summarize summarizes text and validates the summary.
func (p *Pipeline) Summarize(ctx context.Context, text string) (*SummaryResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}

	summary, err := p.agents.Summarize.Execute(ctx, SummarizeInput{Text: text})
	if err != nil {
		slog.Error("Summarize agent failed", slog.Any("error", err))
		return nil, &StageError{Stage: StageSummarize, Err: err}
	}

	result := &SummaryResult{Summary: summary}

	result.Validation, err = p.agents.SummaryValidator.Execute(ctx, SummaryValidationInput{
		OriginalText: text,
		Summary:      summary,
	})
	if err != nil {
		slog.Error("Summarize validator agent failed", slog.Any("error", err))
		return result, &StageError{Stage: StageValidateSummary, Err: err}
	}

	return result, nil
}

// WriteArticle writes an article on topic, refines it and validates the
// refined article. Outline is optional.
func (p *Pipeline) WriteArticle(ctx context.Context, topic string, outline string) (*ArticleResult, error) {
	if strings.TrimSpace(topic) == "" {
		return nil, ErrEmptyInput
	}

	draft, err := p.agents.WriteArticle.Execute(ctx, ArticleInput{Topic: topic, Outline: outline})
	if err != nil {
		slog.Error("Write article agent failed", slog.Any("error", err))
		return nil, &StageError{Stage: StageWriteArticle, Err: err}
	}

	result := &ArticleResult{Draft: draft}

	result.Refined, err = p.agents.Refiner.Execute(ctx, RefineInput{Draft: draft})
	if err != nil {
		slog.Error("Refiner agent failed", slog.Any("error", err))
		return result, &StageError{Stage: StageRefineArticle, Err: err}
	}

	result.Validation, err = p.agents.ArticleValidator.Execute(ctx, ArticleValidationInput{
		Topic:   topic,
		Article: result.Refined,
	})
	if err != nil {
		slog.Error("Article validator agent failed", slog.Any("error", err))
		return result, &StageError{Stage: StageValidateArticle, Err: err}
	}

	return result, nil
}

// FindEvents finds important events of a year or century and validates them.
func (p *Pipeline) FindEvents(ctx context.Context, yearCentury string) (*EventsResult, error) {
	if strings.TrimSpace(yearCentury) == "" {
		return nil, ErrEmptyInput
	}

	events, err := p.agents.FindEvents.Execute(ctx, EventsInput{YearCentury: yearCentury})
	if err != nil {
		slog.Error("Events finder agent failed", slog.Any("error", err))
		return nil, &StageError{Stage: StageFindEvents, Err: err}
	}

	result := &EventsResult{Events: events}

	result.Validation, err = p.agents.EventsValidator.Execute(ctx, EventsValidationInput{
		YearCentury:      yearCentury,
		HistoricalEvents: events,
	})
	if err != nil {
		slog.Error("Events validator agent failed", slog.Any("error", err))
		return result, &StageError{Stage: StageValidateEvents, Err: err}
	}

	return result, nil
}
