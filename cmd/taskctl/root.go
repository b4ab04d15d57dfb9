package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"taskboard/core/task/taskclient"
	"taskboard/modules/worker"

	"github.com/spf13/cobra"
)

type globalFlags struct {
	baseURL string
	token     string
	userAgent string
	timeout   time.Duration
	verbose bool
}

// newRootCmd builds the command tree. Flag defaults come from TASK_API_*.
func newRootCmd(stdout, stderr io.Writer) (*cobra.Command, error) {
	cfg, err := taskclient.LoadConfig()
	if err != nil {
		return nil, err
	}

	g := &globalFlags{}
	root := &cobra.Command{
		Use:           "taskctl",
		Short:         "Call the task API from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&g.baseURL, "base-url", cfg.BaseURL, "task API base URL (TASK_API_BASE_URL)")
	pf.StringVar(&g.token, "token", cfg.Token, "bearer token (TASK_API_TOKEN)")
	pf.StringVar(&g.userAgent, "user-agent", "taskctl", "User-Agent sent with every request")
	pf.DurationVar(&g.timeout, "timeout", cfg.Timeout, "request timeout (TASK_API_TIMEOUT)")
	pf.BoolVarP(&g.verbose, "verbose", "v", false, "log requests to stderr")

	client := func() *taskclient.Client {
		level := slog.LevelWarn
		if g.verbose {
			level = slog.LevelDebug
		}
		logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
		return taskclient.NewFromConfig(taskclient.Config{
			BaseURL: g.baseURL,
			Timeout: g.timeout,
			Token:   g.token,
		}, taskclient.WithLogger(logger), taskclient.WithUserAgent(g.userAgent))
	}

	root.AddCommand(
		newListCmd(client),
		newGetCmd(client),
		newCreateCmd(client),
		newUpdateCmd(client),
		newDeleteCmd(client),
	)
	return root, nil
}

func newListCmd(client func() *taskclient.Client) *cobra.Command {
	var f taskclient.Filter
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tasks, err := client().ListTasks(cmd.Context(), f)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), tasks)
		},
	}
	cmd.Flags().StringVar(&f.Status, "status", "", "filter by status")
	cmd.Flags().StringVar(&f.Priority, "priority", "", "filter by priority")
	cmd.Flags().StringVar(&f.Search, "search", "", "free-text search")
	return cmd
}

func newGetCmd(client func() *taskclient.Client) *cobra.Command {
	var concurrency int
	cmd := &cobra.Command{
		Use:   "get ID [ID...]",
		Short: "Show one or more tasks",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := client()
			if len(args) == 1 {
				task, err := c.GetTask(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), task)
			}

			results := worker.Map(cmd.Context(), concurrency, args, c.GetTask)
			tasks := make([]taskclient.Task, 0, len(results))
			var errs []error
			for i, r := range results {
				if r.Err != nil {
					errs = append(errs, fmt.Errorf("%s: %w", args[i], r.Err))
					continue
				}
				tasks = append(tasks, r.Value)
			}
			if err := printJSON(cmd.OutOrStdout(), tasks); err != nil {
				return err
			}
			return errors.Join(errs...)
		},
	}
	cmd.Flags().IntVar(&concurrency, "concurrency", 4, "requests in flight when several IDs are given")
	return cmd
}

func newCreateCmd(client func() *taskclient.Client) *cobra.Command {
	var data string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a task from a JSON object",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			payload, err := parseTask(data)
			if err != nil {
				return err
			}
			task, err := client().CreateTask(cmd.Context(), payload)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), task)
		},
	}
	cmd.Flags().StringVar(&data, "data", "", `task JSON, e.g. '{"title":"buy milk"}'`)
	_ = cmd.MarkFlagRequired("data")
	return cmd
}

func newUpdateCmd(client func() *taskclient.Client) *cobra.Command {
	var data string
	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Replace a task with a JSON object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := parseTask(data)
			if err != nil {
				return err
			}
			task, err := client().UpdateTask(cmd.Context(), args[0], payload)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), task)
		},
	}
	cmd.Flags().StringVar(&data, "data", "", "task JSON")
	_ = cmd.MarkFlagRequired("data")
	return cmd
}

func newDeleteCmd(client func() *taskclient.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := client().DeleteTask(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
}

func parseTask(data string) (taskclient.Task, error) {
	var t taskclient.Task
	if err := json.Unmarshal([]byte(data), &t); err != nil {
		return nil, fmt.Errorf("--data must be a JSON object: %w", err)
	}
	if t == nil {
		return nil, fmt.Errorf("--data must be a JSON object")
	}
	return t, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
