package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/AlexGustafsson/chronicler/internal/agent"
	"github.com/AlexGustafsson/chronicler/internal/config"
	"github.com/AlexGustafsson/chronicler/internal/ingest"
	"github.com/AlexGustafsson/chronicler/internal/llm"
	"github.com/AlexGustafsson/chronicler/internal/llm/provider"
	"github.com/AlexGustafsson/chronicler/internal/web"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

const rootLongDesc string = `Historical research agents backed by a chat completion provider.

Each task is handled by a worker agent whose output is checked by a
validator agent. Requests to the provider are retried a bounded number of
times.

Configuration is read from the config file, a .env file in the working
directory and the environment, in that order of increasing precedence.`

// commander holds state shared by all commands.
type commander struct {
	configPath string
	config     *config.Config
	newClient  func(context.Context, *config.Config) (llm.Client, error)
}

func newCommander() *commander {
	return &commander{
		newClient: provider.New,
	}
}

func newRootCmd(c *commander) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "chronicler",
		Short:         "Historical research agents",
		Long:          rootLongDesc,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			c.config = cfg

			slog.SetDefault(newLogger(cmd.ErrOrStderr(), cfg.LogLevel))
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&c.configPath, "config", "c", config.DefaultPath(), "Path to config file")

	cmd.AddCommand(
		newServeCmd(c),
		newSummarizeCmd(c),
		newArticleCmd(c),
		newEventsCmd(c),
		newExtractCmd(),
	)

	return cmd
}

// pipeline creates a pipeline using the configured provider. The returned
// function releases the client.
func (c *commander) pipeline(ctx context.Context, metrics *agent.Metrics) (*agent.Pipeline, *agent.Manager, func(), error) {
	client, err := c.newClient(ctx, c.config)
	if err != nil {
		return nil, nil, nil, err
	}

	release := func() {
		if closer, ok := client.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				slog.Warn("Failed to close client", slog.Any("error", err))
			}
		}
	}

	temperature := c.config.Temperature
	manager := agent.NewManager(client, &agent.ManagerOptions{
		Model:       c.config.Model,
		MaxRetries:  c.config.MaxRetries,
		Temperature: &temperature,
		Metrics:     metrics,
	})

	return agent.NewPipeline(manager), manager, release, nil
}

func newServeCmd(c *commander) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the web form",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if listen == "" {
				listen = c.config.Listen
			}
			return c.serve(cmd.Context(), listen)
		},
	}

	cmd.Flags().StringVarP(&listen, "listen", "l", "", "Address to listen on. Defaults to the configured address")

	return cmd
}

func (c *commander) serve(ctx context.Context, listen string) error {
	var registry *prometheus.Registry
	var metrics *agent.Metrics
	if c.config.Prometheus != nil && c.config.Prometheus.Enabled {
		registry = prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector())
		registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

		metrics = agent.NewMetrics()
		registry.MustRegister(metrics)
	}

	pipeline, manager, release, err := c.pipeline(ctx, metrics)
	if err != nil {
		return err
	}
	defer release()

	server := web.NewServer(pipeline, ingest.NewIngester(), &web.Options{
		Registry: registry,
		Agents:   manager.Names(),
	})

	errs := make(chan error, 1)
	go func() {
		errs <- server.Listen(listen)
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func newSummarizeCmd(c *commander) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "summarize [text]",
		Short: "Summarize a historical text",
		Long: `Summarize a historical text and validate the summary.

The text is read from the arguments, from a file given by --file, or from
standard input.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, args, file)
			if err != nil {
				return err
			}

			pipeline, _, release, err := c.pipeline(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer release()

			result, err := pipeline.Summarize(cmd.Context(), text)
			if result != nil {
				printSection(cmd.OutOrStdout(), "Summary", result.Summary)
				printSection(cmd.OutOrStdout(), "Validation", result.Validation)
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Path to a file to summarize")

	return cmd
}

func newArticleCmd(c *commander) *cobra.Command {
	var topic string
	var outline string

	cmd := &cobra.Command{
		Use:   "article",
		Short: "Write a historical article",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pipeline, _, release, err := c.pipeline(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer release()

			result, err := pipeline.WriteArticle(cmd.Context(), topic, outline)
			if result != nil {
				printSection(cmd.OutOrStdout(), "Draft", result.Draft)
				printSection(cmd.OutOrStdout(), "Refined", result.Refined)
				printSection(cmd.OutOrStdout(), "Validation", result.Validation)
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&topic, "topic", "t", "", "Topic of the article")
	cmd.Flags().StringVarP(&outline, "outline", "o", "", "Optional outline to follow")
	_ = cmd.MarkFlagRequired("topic")

	return cmd
}

func newEventsCmd(c *commander) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events <year or century>",
		Short: "Find important events of a year or century",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pipeline, _, release, err := c.pipeline(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer release()

			result, err := pipeline.FindEvents(cmd.Context(), strings.Join(args, " "))
			if result != nil {
				printSection(cmd.OutOrStdout(), "Events", result.Events)
				printSection(cmd.OutOrStdout(), "Validation", result.Validation)
			}
			return err
		},
	}

	return cmd
}

func newExtractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract <path>",
		Short: "Validate a file and print its text",
		Args:  cobra.ExactArgs(1),
		// Extraction needs no config, skip loading (and creating) it
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := uploadFile(args[0])
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.ErrOrStderr(), result.Notice)
			fmt.Fprint(cmd.OutOrStdout(), result.Content)
			return nil
		},
	}

	return cmd
}

// readInput returns the text to work on from a file, the arguments or
// standard input, in that order.
func readInput(cmd *cobra.Command, args []string, file string) (string, error) {
	if file != "" {
		result, err := uploadFile(file)
		if err != nil {
			return "", err
		}
		fmt.Fprintln(cmd.ErrOrStderr(), result.Notice)
		return result.Content, nil
	}

	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}

	content, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", err
	}
	return string(content), nil
}

func uploadFile(path string) (*ingest.Result, error) {
	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, &ingest.Error{Kind: ingest.KindMissing, Message: "No file uploaded", Err: err}
	} else if err != nil {
		return nil, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, err
	}

	return ingest.NewIngester().Upload(&ingest.File{
		Name:   filepath.Base(path),
		Size:   info.Size(),
		Reader: file,
	})
}

func printSection(w io.Writer, title string, content string) {
	if content == "" {
		return
	}
	fmt.Fprintf(w, "%s:\n%s\n\n", title, content)
}
