package main

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/jsamuelsen11/go-todo-service/internal/adapters/clients/todoapi"
	"github.com/jsamuelsen11/go-todo-service/internal/adapters/http/handlers"
	"github.com/jsamuelsen11/go-todo-service/internal/platform/health"
)

var errNotReady = errors.New("todo service is not ready")

// healthReport is the --json output of the health command.
type healthReport struct {
	*todoapi.Readiness
	Client map[string]string `json:"client"`
}

func (c *cli) healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Show readiness of the todo service and of this client",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := c.client.Readiness(cmd.Context())
			if err != nil {
				return err
			}

			// The client's own checks run after the server call so a breaker
			// tripped by it shows up.
			registry := health.New()
			registry.Register(c.client)

			report := healthReport{Readiness: r, Client: make(map[string]string)}
			ready := r.Ready
			for name, err := range registry.CheckAll(cmd.Context()) {
				report.Client[name] = handlers.StateOK
				if err != nil {
					report.Client[name] = err.Error()
					ready = false
				}
			}

			if c.jsonOut {
				if err := writeJSON(cmd.OutOrStdout(), report); err != nil {
					return err
				}
			} else {
				status := "ready"
				if !ready {
					status = "not ready"
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, status)
				for _, name := range slices.Sorted(maps.Keys(r.Checks)) {
					fmt.Fprintf(out, "  %s: %s\n", name, r.Checks[name])
				}
				for _, name := range slices.Sorted(maps.Keys(report.Client)) {
					fmt.Fprintf(out, "  client %s: %s\n", name, report.Client[name])
				}
			}

			if !ready {
				return errNotReady
			}
			return nil
		},
	}
}
