package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/yildizm/LogDetect/internal/detect"
	"github.com/yildizm/LogDetect/internal/emoji"
	"github.com/yildizm/LogDetect/internal/metrics"
	"github.com/yildizm/LogDetect/internal/web"
)

var (
	serveAddr   string
	serveStrict bool
)

func newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a local upload page",
		Long: `Serve a browser upload page that forwards files to the detection service
and shows the summary, tally and raw response.

Also exposes Prometheus metrics on server.metrics_path and a liveness
probe on /healthz.

Examples:
  logdetect serve
  logdetect serve --addr 0.0.0.0:9090`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	cmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
	cmd.Flags().BoolVar(&serveStrict, "strict", false, "reject success bodies that do not match the response schema")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := GetGlobalConfig()

	addr := cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	client, err := newClient(cfg, serveStrict)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorders := []detect.Recorder{metrics.New(metrics.WithRegistry(registry))}

	historyRecs, closeHistory := historyRecorders(cfg)
	defer closeHistory()
	recorders = append(recorders, historyRecs...)

	srv, err := web.New(web.Config{
		Addr:        addr,
		MetricsPath: cfg.Server.MetricsPath,
		MaxFileSize: cfg.Upload.MaxFileSize,
		Detector:    client,
		Recorders:   recorders,
		Gatherer:    registry,
		Logger:      newLogger("web"),
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(cmd.ErrOrStderr(), "%s Serving on http://%s (service %s)\n", emoji.GetEmoji("server"), addr, client.BaseURL())
	return srv.Run(ctx)
}
