package agent

import (
	"context"
	"strings"
	"text/template"

	"github.com/AlexGustafsson/chronicler/internal/llm"
)

// Agent performs one task using an LLM.
type Agent[T any] interface {
	Execute(context.Context, T) (string, error)
}

var _ Agent[SummarizeInput] = (*Task[SummarizeInput])(nil)

// Task is an Agent that renders a fixed user template with its input and
// sends it together with a fixed system message.
type Task[T any] struct {
	caller      *Caller
	system      string
	user        *template.Template
	temperature float64
	maxTokens   int
}

// TaskDefinition defines the prompt of a Task.
type TaskDefinition struct {
	Name string
	// System is sent verbatim as the system message.
	System string
	// User is a text/template rendered with the task's input.
	User string
	// MaxTokens defaults to DefaultMaxTokens.
	MaxTokens int
}

// NewTask returns a new Task. It panics if the user template is invalid, as
// templates are defined at compile time.
func NewTask[T any](definition TaskDefinition, caller *Caller, temperature float64) *Task[T] {
	maxTokens := definition.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	return &Task[T]{
		caller:      caller,
		system:      definition.System,
		user:        template.Must(template.New(definition.Name).Option("missingkey=error").Parse(definition.User)),
		temperature: temperature,
		maxTokens:   maxTokens,
	}
}

func (t *Task[T]) Name() string {
	return t.caller.Name()
}

// Prompt returns the messages sent for the input.
func (t *Task[T]) Prompt(input T) ([]llm.Message, error) {
	var builder strings.Builder
	if err := t.user.Execute(&builder, input); err != nil {
		return nil, err
	}

	return llm.NewPrompt(t.system, builder.String()), nil
}

// Execute implements Agent.
func (t *Task[T]) Execute(ctx context.Context, input T) (string, error) {
	messages, err := t.Prompt(input)
	if err != nil {
		return "", err
	}

	return t.caller.Call(ctx, messages, t.temperature, t.maxTokens)
}
