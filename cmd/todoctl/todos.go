package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jsamuelsen11/go-todo-service/internal/adapters/http/dto"
	"github.com/jsamuelsen11/go-todo-service/internal/domain"
	"github.com/jsamuelsen11/go-todo-service/internal/domain/todo"
)

func (c *cli) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all todos",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			todos, err := c.client.List(cmd.Context())
			if err != nil {
				return err
			}
			return c.print(cmd.OutOrStdout(), todos...)
		},
	}
}

func (c *cli) getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Show one todo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			t, err := c.client.Get(cmd.Context(), id)
			if err != nil {
				return notFound(id, err)
			}
			return c.print(cmd.OutOrStdout(), *t)
		},
	}
}

func (c *cli) createCmd() *cobra.Command {
	var in todo.Input

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a todo",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			t, err := c.client.Create(cmd.Context(), in)
			if err != nil {
				return err
			}
			return c.print(cmd.OutOrStdout(), *t)
		},
	}
	inputFlags(cmd, &in)
	return cmd
}

func (c *cli) updateCmd() *cobra.Command {
	var in todo.Input

	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Replace title and description of a todo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			t, err := c.client.Update(cmd.Context(), id, in)
			if err != nil {
				return notFound(id, err)
			}
			return c.print(cmd.OutOrStdout(), *t)
		},
	}
	inputFlags(cmd, &in)
	return cmd
}

func (c *cli) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a todo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			t, err := c.client.Delete(cmd.Context(), id)
			if err != nil {
				return notFound(id, err)
			}
			return c.print(cmd.OutOrStdout(), *t)
		},
	}
}

func inputFlags(cmd *cobra.Command, in *todo.Input) {
	cmd.Flags().StringVar(&in.Title, "title", "", "todo title")
	cmd.Flags().StringVar(&in.Description, "description", "", "todo description")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("description")
}

// print writes todos as a table, or as the API's JSON representation with
// --json.
func (c *cli) print(w io.Writer, todos ...todo.Todo) error {
	if c.jsonOut {
		if len(todos) == 1 {
			return writeJSON(w, dto.ToTodoResponse(&todos[0]))
		}
		return writeJSON(w, dto.ToTodoListResponse(todos))
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tDESCRIPTION\tUPDATED")
	for i := range todos {
		r := dto.ToTodoResponse(&todos[i])
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", r.ID, r.Title, r.Description, r.UpdatedAt)
	}
	return tw.Flush()
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid todo id %q", raw)
	}
	return id, nil
}

// notFound rewrites a not-found error to name the id.
func notFound(id int64, err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("todo %d: %w", id, domain.ErrNotFound)
	}
	return err
}
