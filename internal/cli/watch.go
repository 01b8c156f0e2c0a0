package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/yildizm/LogDetect/internal/config"
	"github.com/yildizm/LogDetect/internal/detect"
	"github.com/yildizm/LogDetect/internal/emoji"
	"github.com/yildizm/LogDetect/internal/logger"
)

var (
	watchDebounce time.Duration
	watchStrict   bool
)

func newWatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [file]",
		Short: "Resubmit a log file whenever it changes",
		Long: `Submit a log file, then watch it and submit it again after every change.

Uses file system notifications on the file's directory, so editors that
save by renaming a temporary file are picked up too. Bursts of writes are
coalesced by the debounce interval, and a change that arrives while a
submission is in flight replaces it. Press Ctrl+C to stop watching.

Examples:
  logdetect watch subject1.log
  logdetect watch --debounce 2s --output json subject1.log`,
		Args: cobra.ExactArgs(1),
		RunE: runWatch,
	}

	cmd.Flags().DurationVar(&watchDebounce, "debounce", 0, "delay between a change and the resubmission (default from config)")
	cmd.Flags().BoolVar(&watchStrict, "strict", false, "reject success bodies that do not match the response schema")

	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg := GetGlobalConfig()
	log := newLogger("watch")

	filename, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("invalid file path: %w", err)
	}
	if err := validateWatchFilePath(filename); err != nil {
		return fmt.Errorf("invalid file path: %w", err)
	}

	debounce := cfg.Watch.Debounce
	if cmd.Flag("debounce").Changed {
		debounce = watchDebounce
	}

	client, err := newClient(cfg, watchStrict)
	if err != nil {
		return err
	}
	presenter, err := newStdoutPresenter(cmd.OutOrStdout(), cmd.ErrOrStderr(), getOutputFormat(), false, colorEnabled(), "")
	if err != nil {
		return err
	}
	recorders, closeHistory := historyRecorders(cfg)
	defer closeHistory()

	ctrl := detect.NewController(client, presenter, recorders...)

	watcher, err := createWatcher(filepath.Dir(filename))
	if err != nil {
		return err
	}
	defer cleanupWatcher(watcher)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(cmd.ErrOrStderr(), "%s Watching %s (Ctrl+C to stop)\n", emoji.GetEmoji("watch"), filename)

	d := newDebouncer(debounce, func() {
		submitWatchedFile(ctx, ctrl, cfg, filename, log)
	})
	defer d.Stop()

	d.Trigger()
	err = runWatchLoop(ctx, watcher, filename, d.Trigger, log)
	ctrl.Cancel()
	// the history store closes on return, so a running submission must finish first
	d.Stop()
	return err
}

// submitWatchedFile opens the file fresh and submits it. Failures are
// already reported by the presenter, so only open errors are logged.
func submitWatchedFile(ctx context.Context, ctrl *detect.Controller, cfg *config.Config, filename string, log *logger.Logger) {
	upload, closeUpload, err := openUpload(cfg, filename)
	if err != nil {
		log.WarnWithFields("cannot open watched file", []logger.Field{logger.File(filename), logger.Error(err)})
		return
	}
	defer func() { _ = closeUpload() }()

	err = ctrl.Submit(ctx, upload)
	switch {
	case errors.Is(err, detect.ErrSuperseded):
		log.Debug("submission superseded by a newer change")
	case err != nil:
		log.DebugWithFields("submission failed", []logger.Field{logger.Error(err)})
	}
}

// cleanupWatcher safely closes watcher with error logging
func cleanupWatcher(watcher *fsnotify.Watcher) {
	if err := watcher.Close(); err != nil && isVerbose() {
		fmt.Fprintf(os.Stderr, "Warning: failed to close watcher: %v\n", err)
	}
}

// createWatcher creates and configures a new file system watcher
func createWatcher(dir string) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	if err := watcher.Add(dir); err != nil {
		cleanupWatcher(watcher)
		return nil, fmt.Errorf("failed to watch directory: %w", err)
	}

	return watcher, nil
}

// runWatchLoop forwards relevant events to trigger until ctx is done
func runWatchLoop(ctx context.Context, watcher *fsnotify.Watcher, filename string, trigger func(), log *logger.Logger) error {
	for {
		select {
		case <-ctx.Done():
			log.Debug("received interrupt signal, stopping...")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if isRelevantEvent(event, filename) {
				log.DebugWithFields("change detected", []logger.Field{logger.File(event.Name), logger.F("op", event.Op.String())})
				trigger()
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			log.Warn("watcher error: %v", err)
		}
	}
}

// isRelevantEvent reports whether event is a write or (re)creation of filename
func isRelevantEvent(event fsnotify.Event, filename string) bool {
	if filepath.Clean(event.Name) != filepath.Clean(filename) {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create)
}

// debouncer runs fn once after the last Trigger in a burst
type debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	fn      func()
	timer   *time.Timer
	stopped bool
	running sync.WaitGroup
}

func newDebouncer(delay time.Duration, fn func()) *debouncer {
	return &debouncer{delay: delay, fn: fn}
}

// Trigger (re)arms the timer
func (d *debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.run)
}

func (d *debouncer) run() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.running.Add(1)
	d.mu.Unlock()

	defer d.running.Done()
	d.fn()
}

// Stop cancels any pending run and waits for one already in progress.
// It is safe to call more than once.
func (d *debouncer) Stop() {
	d.mu.Lock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
	d.mu.Unlock()

	d.running.Wait()
}

// validateWatchFilePath validates that a file path is safe to watch
func validateWatchFilePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("empty file path")
	}

	cleanPath := filepath.Clean(path)

	info, err := os.Stat(cleanPath)
	if err != nil {
		return fmt.Errorf("cannot access file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("cannot watch directory, must be a file")
	}

	return nil
}
