package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jsamuelsen11/go-todo-service/internal/adapters/clients/todoapi"
	"github.com/jsamuelsen11/go-todo-service/internal/adapters/http/middleware"
	"github.com/jsamuelsen11/go-todo-service/internal/platform/config"
	"github.com/jsamuelsen11/go-todo-service/internal/platform/httpclient"
	"github.com/jsamuelsen11/go-todo-service/internal/platform/logging"
)

// cli holds flag values and the client built from them before each command.
type cli struct {
	cfgFile string
	baseURL string
	timeout time.Duration
	jsonOut bool
	verbose bool

	client *todoapi.Client
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:          "todoctl",
		Short:        "Manage todos on a todo service",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.connect(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.cfgFile, "config", "", "YAML file of client settings, applied below TODOCTL_* variables")
	flags.StringVar(&c.baseURL, "base-url", "", "todo service URL (overrides TODOCTL_BASE_URL)")
	flags.DurationVar(&c.timeout, "timeout", 0, "per-request timeout (overrides TODOCTL_TIMEOUT)")
	flags.BoolVar(&c.jsonOut, "json", false, "print JSON instead of a table")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "log requests to stderr")

	root.AddCommand(
		c.listCmd(),
		c.getCmd(),
		c.createCmd(),
		c.updateCmd(),
		c.deleteCmd(),
		c.healthCmd(),
	)
	return root
}

// connect loads the client configuration, applies flag overrides and builds
// the API client. Every request of one invocation carries the same
// correlation ID so the server logs can be joined.
func (c *cli) connect(cmd *cobra.Command) error {
	cfg, err := config.LoadClient(config.WithClientFile(c.cfgFile))
	if err != nil {
		return err
	}
	if c.baseURL != "" {
		cfg.BaseURL = c.baseURL
	}
	if c.timeout > 0 {
		cfg.Timeout = c.timeout
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	level := "warn"
	if c.verbose {
		level = "debug"
	}
	logger := logging.New(cmd.ErrOrStderr(), config.LogConfig{Level: level, Format: logging.FormatText})

	c.client = todoapi.New(httpclient.New(cfg, httpclient.WithPeer(todoapi.ServiceName), httpclient.WithLogger(logger)), logger)

	correlationID := uuid.NewString()
	cmd.SetContext(httpclient.ForwardHeader(cmd.Context(), middleware.HeaderCorrelationID, correlationID))

	logger.Debug("todoctl configured",
		slog.String("base_url", cfg.BaseURL),
		slog.String("correlation_id", correlationID),
	)
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	return nil
}
