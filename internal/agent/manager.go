package agent

import (
	"github.com/AlexGustafsson/chronicler/internal/llm"
)

// Manager holds one instance of every agent, sharing a single client.
type Manager struct {
	Summarize        *Task[SummarizeInput]
	SummaryValidator *Task[SummaryValidationInput]
	WriteArticle     *Task[ArticleInput]
	Refiner          *Task[RefineInput]
	ArticleValidator *Task[ArticleValidationInput]
	FindEvents       *Task[EventsInput]
	EventsValidator  *Task[EventsValidationInput]
}

type ManagerOptions struct {
	// Model defaults to the client's default model.
	Model string
	// MaxRetries defaults to DefaultMaxRetries.
	MaxRetries int
	// Temperature defaults to DefaultTemperature.
	Temperature *float64
	// Metrics is optional.
	Metrics *Metrics
}

func NewManager(client llm.Client, options *ManagerOptions) *Manager {
	if options == nil {
		options = &ManagerOptions{}
	}

	temperature := float64(DefaultTemperature)
	if options.Temperature != nil {
		temperature = *options.Temperature
	}

	callerOptions := &CallerOptions{
		Model:      options.Model,
		MaxRetries: options.MaxRetries,
		Metrics:    options.Metrics,
	}

	return &Manager{
		Summarize:        newTask[SummarizeInput](SummarizeDefinition, client, callerOptions, temperature),
		SummaryValidator: newTask[SummaryValidationInput](SummaryValidationDefinition, client, callerOptions, temperature),
		WriteArticle:     newTask[ArticleInput](ArticleDefinition, client, callerOptions, temperature),
		Refiner:          newTask[RefineInput](RefineDefinition, client, callerOptions, temperature),
		ArticleValidator: newTask[ArticleValidationInput](ArticleValidationDefinition, client, callerOptions, temperature),
		FindEvents:       newTask[EventsInput](EventsDefinition, client, callerOptions, temperature),
		EventsValidator:  newTask[EventsValidationInput](EventsValidationDefinition, client, callerOptions, temperature),
	}
}

// Names returns the names of all agents.
func (m *Manager) Names() []string {
	return []string{
		m.Summarize.Name(),
		m.SummaryValidator.Name(),
		m.WriteArticle.Name(),
		m.Refiner.Name(),
		m.ArticleValidator.Name(),
		m.FindEvents.Name(),
		m.EventsValidator.Name(),
	}
}

func newTask[T any](definition TaskDefinition, client llm.Client, options *CallerOptions, temperature float64) *Task[T] {
	return NewTask[T](definition, NewCaller(definition.Name, client, options), temperature)
}
