package cli

import (
	"github.com/spf13/cobra"
	"github.com/yildizm/LogDetect/internal/ui"
)

var (
	tuiTheme  string
	tuiStrict bool
)

func newTUICommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tui [file]",
		Short: "Interactive terminal front end",
		Long: `Open an interactive screen with a path input, a loading indicator, the
alert region and a scrollable result.

Type a path and press enter to submit. A file given as argument is
submitted right away.

Examples:
  logdetect tui
  logdetect tui --theme high-contrast subject1.log`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := GetGlobalConfig()

			client, err := newClient(cfg, tuiStrict)
			if err != nil {
				return err
			}
			recorders, closeHistory := historyRecorders(cfg)
			defer closeHistory()

			initial := ""
			if len(args) > 0 {
				initial = args[0]
			}

			return ui.Run(ui.Options{
				Detector:    client,
				Recorders:   recorders,
				InitialPath: initial,
				Color:       !noColor && cfg.Output.ColorMode != "never",
				Theme:       tuiTheme,
				Open:        uploadOpener(cfg),
			})
		},
	}

	cmd.Flags().StringVar(&tuiTheme, "theme", "default", "color theme (default, high-contrast, minimal)")
	cmd.Flags().BoolVar(&tuiStrict, "strict", false, "reject success bodies that do not match the response schema")

	return cmd
}
