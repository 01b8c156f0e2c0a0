package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/yildizm/LogDetect/internal/detect"
	"github.com/yildizm/LogDetect/internal/emoji"
	"github.com/yildizm/LogDetect/internal/history"
)

var (
	historyLimit int
	historyYes   bool
)

func newHistoryCommand() *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect the local run history",
		Long: `Every submission made by detect, watch, tui and serve is recorded in a
local SQLite database (storage.history_path) when storage.history_enabled
is set.`,
	}

	historyCmd.AddCommand(newHistoryListCommand())
	historyCmd.AddCommand(newHistoryShowCommand())
	historyCmd.AddCommand(newHistoryClearCommand())

	return historyCmd
}

// withHistory opens the store for a history subcommand
func withHistory(fn func(store *history.Store) error) error {
	cfg := GetGlobalConfig()
	if !cfg.Storage.HistoryEnabled {
		return errors.New("history is disabled (storage.history_enabled: false)")
	}
	store, closeFn, err := openHistory(cfg)
	if err != nil {
		return err
	}
	defer closeFn()
	return fn(store)
}

func newHistoryListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistory(func(store *history.Store) error {
				runs, err := store.List(context.Background(), historyLimit)
				if err != nil {
					return err
				}
				if getOutputFormat() == "json" {
					return writeJSON(cmd.OutOrStdout(), runs)
				}
				writeRunTable(cmd.OutOrStdout(), runs)
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum number of runs (0 for all)")

	return cmd
}

func newHistoryShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one run with its raw response",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid run id: %s", args[0])
			}
			return withHistory(func(store *history.Store) error {
				run, err := store.Get(context.Background(), id)
				if err != nil {
					return err
				}
				if getOutputFormat() == "json" {
					return writeJSON(cmd.OutOrStdout(), run)
				}
				writeRunDetail(cmd.OutOrStdout(), run)
				return nil
			})
		},
	}
}

func newHistoryClearCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every recorded run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !historyYes {
				return errors.New("refusing to clear history without --yes")
			}
			return withHistory(func(store *history.Store) error {
				removed, err := store.Clear(context.Background())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s Removed %d run(s)\n", emoji.GetEmoji("success"), removed)
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&historyYes, "yes", "y", false, "confirm deletion")

	return cmd
}

func writeRunTable(out io.Writer, runs []history.Run) {
	if len(runs) == 0 {
		fmt.Fprintf(out, "%s No runs recorded\n", emoji.GetEmoji("history"))
		return
	}
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTARTED\tFILE\tOUTCOME\tDURATION\tDOMINANT")
	for _, run := range runs {
		dominant := run.Dominant
		if dominant == "" {
			dominant = detect.PlaceholderSamples
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			run.ID,
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			displayFile(run.File),
			run.Outcome,
			run.Duration.Round(time.Millisecond),
			dominant)
	}
	_ = tw.Flush()
}

func writeRunDetail(out io.Writer, run *history.Run) {
	fmt.Fprintf(out, "%s Run %d\n", emoji.GetEmoji("history"), run.ID)
	fmt.Fprintf(out, "├─ File: %s\n", displayFile(run.File))
	fmt.Fprintf(out, "├─ Started: %s\n", run.StartedAt.Local().Format(time.RFC3339))
	fmt.Fprintf(out, "├─ Duration: %s\n", run.Duration.Round(time.Millisecond))
	fmt.Fprintf(out, "├─ Outcome: %s\n", run.Outcome)
	if run.Error != "" {
		fmt.Fprintf(out, "├─ Error: %s\n", run.Error)
	}
	if run.Summary != "" {
		fmt.Fprintf(out, "├─ Summary: %s\n", run.Summary)
	}
	if run.Dominant != "" {
		fmt.Fprintf(out, "├─ Dominant: %s\n", run.Dominant)
	}
	fmt.Fprintf(out, "└─ Status: %s\n", statusText(run.StatusCode))
	if run.Raw != "" {
		fmt.Fprintf(out, "\n%s Respuesta\n%s\n", emoji.GetEmoji("raw"), detect.PrettyJSON([]byte(run.Raw)))
	}
}

func displayFile(name string) string {
	if name == "" {
		return "(none)"
	}
	return name
}

func statusText(code int) string {
	if code == 0 {
		return "-"
	}
	return strconv.Itoa(code)
}

func writeJSON(out io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}
