// Package web serves the agents behind an HTML form.
package web

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"html/template"
	"log/slog"
	"strings"

	"github.com/AlexGustafsson/chronicler/internal/agent"
	"github.com/AlexGustafsson/chronicler/internal/ingest"
	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

//go:embed index.html.tmpl
var indexTemplate string

var page = template.Must(template.New("index").Parse(indexTemplate))

// Tab identifies a form on the page.
type Tab string

const (
	TabSummarize Tab = "summarize"
	TabArticle   Tab = "article"
	TabEvents    Tab = "events"
)

// View is rendered as HTML, or as JSON when the client prefers it.
type View struct {
	Tab    Tab      `json:"-"`
	Agents []string `json:"-"`
	Help   string   `json:"-"`

	Text        string `json:"-"`
	Topic       string `json:"-"`
	Outline     string `json:"-"`
	YearCentury string `json:"-"`

	Notice  string               `json:"notice,omitempty"`
	Error   string               `json:"error,omitempty"`
	Summary *agent.SummaryResult `json:"summary,omitempty"`
	Article *agent.ArticleResult `json:"article,omitempty"`
	Events  *agent.EventsResult  `json:"events,omitempty"`
}

// DefaultBodyLimit bounds request bodies. It is well above the ingest size
// cap so that oversized uploads are rejected by validation with the usual
// notice.
const DefaultBodyLimit = 64 << 20

type Server struct {
	app      *fiber.App
	pipeline *agent.Pipeline
	ingester *ingest.Ingester
	agents   []string
}

type Options struct {
	// Registry enables /metrics when set.
	Registry *prometheus.Registry
	// Agents are listed on the page.
	Agents []string
	// BodyLimit in bytes. Defaults to DefaultBodyLimit, or the ingest size cap
	// plus room for the multipart framing if that is larger.
	BodyLimit int
}

func NewServer(pipeline *agent.Pipeline, ingester *ingest.Ingester, options *Options) *Server {
	if options == nil {
		options = &Options{}
	}

	bodyLimit := options.BodyLimit
	if bodyLimit <= 0 {
		bodyLimit = max(DefaultBodyLimit, int(ingester.MaxSize)+1<<20)
	}

	s := &Server{
		pipeline: pipeline,
		ingester: ingester,
		agents:   options.Agents,
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		BodyLimit:             bodyLimit,
		ErrorHandler:          s.handleError,
	})
	s.app = app

	app.Get("/", s.handleIndex)
	app.Post("/summarize", s.handleSummarize)
	app.Post("/article", s.handleArticle)
	app.Post("/events", s.handleEvents)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	if options.Registry != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(options.Registry, promhttp.HandlerOpts{})))
	}

	return s
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves on address until Shutdown is called.
func (s *Server) Listen(address string) error {
	slog.Info("Starting web server", slog.String("address", address))
	return s.app.Listen(address)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) view(tab Tab) *View {
	return &View{
		Tab:    tab,
		Agents: s.agents,
		Help:   s.ingester.HelpText(),
	}
}

// handleError reports bodies above the limit on the upload form. Other errors
// are handled by fiber.
func (s *Server) handleError(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) && fiberErr.Code == fiber.StatusRequestEntityTooLarge {
		slog.Debug("Rejected request body", slog.Any("error", err))

		view := s.view(TabSummarize)
		view.Error = "Upload is too large. " + s.ingester.HelpText()
		return s.render(c, fiber.StatusRequestEntityTooLarge, view)
	}

	return fiber.DefaultErrorHandler(c, err)
}

func (s *Server) handleIndex(c *fiber.Ctx) error {
	return s.render(c, fiber.StatusOK, s.view(TabSummarize))
}

func (s *Server) handleSummarize(c *fiber.Ctx) error {
	view := s.view(TabSummarize)
	view.Text = c.FormValue("text")

	header, err := c.FormFile("file")
	if err == nil {
		file, err := header.Open()
		if err != nil {
			view.Error = "Error reading file: " + err.Error()
			return s.render(c, fiber.StatusBadRequest, view)
		}
		defer file.Close()

		result, err := s.ingester.Upload(&ingest.File{
			Name:   header.Filename,
			Size:   header.Size,
			Reader: file,
		})
		if err != nil {
			view.Error = err.Error()
			return s.render(c, fiber.StatusBadRequest, view)
		}

		view.Notice = result.Notice
		view.Text = result.Content
	}

	if strings.TrimSpace(view.Text) == "" {
		view.Error = "Please enter some text or upload a file to summarize"
		return s.render(c, fiber.StatusBadRequest, view)
	}

	view.Summary, err = s.pipeline.Summarize(c.UserContext(), view.Text)
	return s.renderResult(c, view, view.Summary != nil, err)
}

func (s *Server) handleArticle(c *fiber.Ctx) error {
	view := s.view(TabArticle)
	view.Topic = c.FormValue("topic")
	view.Outline = c.FormValue("outline")

	if strings.TrimSpace(view.Topic) == "" {
		view.Error = "Please enter a topic"
		return s.render(c, fiber.StatusBadRequest, view)
	}

	var err error
	view.Article, err = s.pipeline.WriteArticle(c.UserContext(), view.Topic, view.Outline)
	return s.renderResult(c, view, view.Article != nil, err)
}

func (s *Server) handleEvents(c *fiber.Ctx) error {
	view := s.view(TabEvents)
	view.YearCentury = c.FormValue("year")

	if strings.TrimSpace(view.YearCentury) == "" {
		view.Error = "Please enter a year or century"
		return s.render(c, fiber.StatusBadRequest, view)
	}

	var err error
	view.Events, err = s.pipeline.FindEvents(c.UserContext(), view.YearCentury)
	return s.renderResult(c, view, view.Events != nil, err)
}

// renderResult renders the outcome of a pipeline. Partial results are shown
// alongside the error.
func (s *Server) renderResult(c *fiber.Ctx, view *View, hasResult bool, err error) error {
	if err == nil {
		return s.render(c, fiber.StatusOK, view)
	}

	slog.Error("Pipeline failed", slog.String("tab", string(view.Tab)), slog.Any("error", err))
	view.Error = err.Error()

	status := fiber.StatusBadGateway
	if errors.Is(err, agent.ErrEmptyInput) {
		status = fiber.StatusBadRequest
	} else if hasResult {
		status = fiber.StatusOK
	}

	return s.render(c, status, view)
}

func (s *Server) render(c *fiber.Ctx, status int, view *View) error {
	c.Status(status)

	if c.Accepts(fiber.MIMETextHTML, fiber.MIMEApplicationJSON) == fiber.MIMEApplicationJSON {
		return c.JSON(view)
	}

	var buffer bytes.Buffer
	if err := page.Execute(&buffer, view); err != nil {
		slog.Error("Failed to render page", slog.Any("error", err))
		return c.Status(fiber.StatusInternalServerError).SendString("Internal server error")
	}

	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Send(buffer.Bytes())
}
