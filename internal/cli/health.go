package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/yildizm/LogDetect/internal/emoji"
)

var healthTimeout time.Duration

func newHealthCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check the detection service health endpoint",
		Long: `Call GET {base}/health on the detection service and print its status.

Examples:
  logdetect health
  logdetect health --output json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(GetGlobalConfig(), false)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), healthTimeout)
			defer cancel()

			status, err := client.Health(ctx)
			if err != nil {
				return fmt.Errorf("health check against %s failed: %w", client.BaseURL(), err)
			}

			out := cmd.OutOrStdout()
			if getOutputFormat() == "json" {
				data, err := json.MarshalIndent(status, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal JSON: %w", err)
				}
				fmt.Fprintln(out, string(data))
				return nil
			}

			fmt.Fprintf(out, "%s %s: %s", emoji.GetEmoji("health"), client.BaseURL(), status.Status)
			if status.Message != "" {
				fmt.Fprintf(out, " (%s)", status.Message)
			}
			fmt.Fprintln(out)
			return nil
		},
	}

	cmd.Flags().DurationVar(&healthTimeout, "timeout", 5*time.Second, "health check timeout")

	return cmd
}
