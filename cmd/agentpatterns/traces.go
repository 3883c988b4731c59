package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ShayCichocki/agentpatterns/internal/trace"
)

var tracesCmd = &cobra.Command{
	Use:   "traces",
	Short: "Inspect recorded run traces",
}

var tracesShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Print every event recorded for a run",
	Long: `Print the events of a pattern run in the order they were recorded.

The run id is printed by every pattern command. Events are read from the
configured trace backend (trace.backend) under trace.dir.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkFormat(outputFormat); err != nil {
			return err
		}
		cfg, err := loadConfig(currentOverrides())
		if err != nil {
			return err
		}
		store, err := trace.OpenStore(cfg.Trace)
		if err != nil {
			return fmt.Errorf("open trace store: %w", err)
		}
		defer store.Close()

		return showTrace(cmd.Context(), store, cmd.OutOrStdout(), outputFormat, args[0])
	},
}

func init() {
	tracesCmd.AddCommand(tracesShowCmd)
}

func showTrace(ctx context.Context, store trace.Store, w io.Writer, format, runID string) error {
	events, err := store.Load(ctx, runID)
	if errors.Is(err, trace.ErrRunNotFound) {
		return fmt.Errorf("no trace recorded for run %s at %s", runID, store.Location(runID))
	}
	if err != nil {
		return fmt.Errorf("load trace: %w", err)
	}

	return render(w, format, events, func() string {
		rows := make([][]string, 0, len(events))
		for _, e := range events {
			rows = append(rows, []string{
				e.Timestamp.Local().Format(time.TimeOnly),
				string(e.Role),
				e.Sender,
				strings.TrimSpace(e.Content),
			})
		}
		return gridTable("Trace "+runID, []string{"Time", "Role", "Sender", "Content"}, rows)
	})
}
