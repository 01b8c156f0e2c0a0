package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/yildizm/LogDetect/internal/detect"
)

var (
	detectOutputFile string
	detectRender     bool
	detectStrict     bool
)

func newDetectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "detect [file]",
		Short: "Submit a log file for activity detection",
		Long: `Upload one sensor log file to the detection service and print the result.

The summary line shows the number of windows, the distinct activities, the
separator and the label column the service detected. The tally lists each
predicted activity with its window count, dominant first.

Examples:
  logdetect detect subject1.log
  logdetect detect --output json subject1.log
  logdetect detect --render subject1.log
  logdetect detect --output csv --output-file tally.csv subject1.log`,
		Args: cobra.MaximumNArgs(1),
		RunE: runDetect,
	}

	cmd.Flags().StringVar(&detectOutputFile, "output-file", "", "save output to file instead of stdout")
	cmd.Flags().BoolVar(&detectRender, "render", false, "render the markdown report for the terminal")
	cmd.Flags().BoolVar(&detectStrict, "strict", false, "reject success bodies that do not match the response schema")

	return cmd
}

func runDetect(cmd *cobra.Command, args []string) error {
	cfg := GetGlobalConfig()

	path := ""
	if len(args) > 0 {
		path = args[0]
	}

	client, err := newClient(cfg, detectStrict)
	if err != nil {
		return err
	}

	presenter, err := newStdoutPresenter(cmd.OutOrStdout(), cmd.ErrOrStderr(), getOutputFormat(), detectRender, colorEnabled(), detectOutputFile)
	if err != nil {
		return err
	}

	recorders, closeHistory := historyRecorders(cfg)
	defer closeHistory()

	upload, closeUpload, err := openUpload(cfg, path)
	if err != nil {
		return err
	}
	defer func() { _ = closeUpload() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctrl := detect.NewController(client, presenter, recorders...)
	if err := ctrl.Submit(ctx, upload); err != nil {
		// the presenter already printed the alert
		cmd.SilenceErrors = true
		return fmt.Errorf("detection failed: %w", err)
	}
	return presenter.Err()
}
