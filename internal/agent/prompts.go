package agent

type SummarizeInput struct {
	Text string
}

type SummaryValidationInput struct {
	OriginalText string
	Summary      string
}

type ArticleInput struct {
	Topic string
	// Outline is optional.
	Outline string
}

type RefineInput struct {
	Draft string
}

type ArticleValidationInput struct {
	Topic   string
	Article string
}

type EventsInput struct {
	YearCentury string
}

type EventsValidationInput struct {
	YearCentury      string
	HistoricalEvents string
}

var SummarizeDefinition = TaskDefinition{
	Name:   "SummarizeTool",
	System: "You are an AI assistant that summarizes historical texts.",
	User: `Please provide a short summary of the following historical text:

{{.Text}}

Summary:`,
	MaxTokens: 300,
}

var SummaryValidationDefinition = TaskDefinition{
	Name:   "SummarizeValidatorAgent",
	System: "You are an expert AI assistant that validates summaries of historical texts.",
	User: `Given the original text and its summary, assess whether the summary accurately and concisely captures the key points of the original text.
Provide a brief analysis and rate the summary on a scale of 1 to 5, where 5 indicates an excellent quality.

Original Text:
{{.OriginalText}}

Summary:
{{.Summary}}

Validation:`,
	MaxTokens: 512,
}

var ArticleDefinition = TaskDefinition{
	Name:   "WriteArticleTool",
	System: "You are an expert historian and academic writer who writes well-researched historical articles.",
	User: `Write a well-structured historical article on the following topic.
{{- if .Outline}} Follow the provided outline.{{end}}

Topic: {{.Topic}}
{{if .Outline}}
Outline:
{{.Outline}}
{{end}}
Article:`,
	MaxTokens: 1000,
}

var RefineDefinition = TaskDefinition{
	Name:   "RefinerAgent",
	System: "You are an expert editor who refines historical articles for clarity, coherence and academic quality.",
	User: `Please refine the following historical article draft. Improve its language, coherence and structure while keeping the historical facts intact.

Draft:
{{.Draft}}

Refined Article:`,
	MaxTokens: 1200,
}

var ArticleValidationDefinition = TaskDefinition{
	Name:   "WriteArticleValidatorAgent",
	System: "You are an expert AI assistant that validates historical articles.",
	User: `Given the topic and the historical article, evaluate whether the historical article comprehensively covers the topic, follows a logical structure and maintains academic standards.
Provide a brief analysis and rate the article on a scale of 1 to 5, where 5 indicates an excellent quality.

Topic: {{.Topic}}

Article:
{{.Article}}

Validation`,
	MaxTokens: 512,
}

var EventsDefinition = TaskDefinition{
	Name:   "EventsFinderTool",
	System: "You are an AI assistant that searches numerous events that happened on a given year/century.",
	User: `Find and provide brief summary of the most important events that happened on the given year/century:

Given year/century {{.YearCentury}}:

`,
	MaxTokens: 500,
}

var EventsValidationDefinition = TaskDefinition{
	Name:   "EventsFinderValidatorAgent",
	System: "You are an expert AI assistant that validates the events that happened on a current year/century.",
	User: `Given the original data and the historical events, verify that the brief summary of the events is indeed correct.
Provide a brief analysis and rate the summary of the events on a scale from 1 to 5, where 5 indicates an excellent quality.

Given year/century:
{{.YearCentury}}

Historical Events in that year/century:
{{.HistoricalEvents}}

Validation`,
	MaxTokens: 512,
}
