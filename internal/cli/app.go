package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/yildizm/LogDetect/internal/config"
	"github.com/yildizm/LogDetect/internal/detect"
	"github.com/yildizm/LogDetect/internal/history"
)

// newClient builds the detection client from cfg. The base URL is
// resolved once here and never re-evaluated.
func newClient(cfg *config.Config, strict bool) (*detect.Client, error) {
	client, err := detect.NewClient(detect.ClientConfig{
		BaseURL: config.ResolveBaseURL(cfg.Endpoint),
		Timeout: cfg.Endpoint.Timeout,
		Decode:  detect.DecodeOptions{Strict: strict || cfg.Decode.Strict},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create detection client: %w", err)
	}
	if isVerbose() {
		fmt.Fprintf(os.Stderr, "Detection service: %s\n", client.BaseURL())
	}
	return client, nil
}

// openHistory opens the run history when enabled. The returned close
// function is always safe to call.
func openHistory(cfg *config.Config) (*history.Store, func(), error) {
	if !cfg.Storage.HistoryEnabled {
		return nil, func() {}, nil
	}
	store, err := history.Open(config.ExpandPath(cfg.Storage.HistoryPath), newLogger("history"))
	if err != nil {
		return nil, nil, err
	}
	return store, func() {
		if err := store.Close(); err != nil && isVerbose() {
			fmt.Fprintf(os.Stderr, "Warning: failed to close history: %v\n", err)
		}
	}, nil
}

// historyRecorders returns the history store as a recorder list, or a
// warning and no recorders when it cannot be opened
func historyRecorders(cfg *config.Config) ([]detect.Recorder, func()) {
	store, closeFn, err := openHistory(cfg)
	if err != nil {
		newLogger("history").Warn("history disabled: %v", err)
		return nil, func() {}
	}
	if store == nil {
		return nil, closeFn
	}
	return []detect.Recorder{store}, closeFn
}

// uploadOpener binds openUpload to cfg for front ends that open paths
// themselves
func uploadOpener(cfg *config.Config) func(path string) (*detect.Upload, func() error, error) {
	return func(path string) (*detect.Upload, func() error, error) {
		return openUpload(cfg, path)
	}
}

// openUpload opens path for submission, enforcing upload.max_file_size
func openUpload(cfg *config.Config, path string) (*detect.Upload, func() error, error) {
	if strings.TrimSpace(path) != "" && cfg.Upload.MaxFileSize > 0 {
		if info, err := os.Stat(path); err == nil && info.Size() > cfg.Upload.MaxFileSize {
			return nil, nil, fmt.Errorf("file %s is %d bytes, larger than max_file_size (%d)", path, info.Size(), cfg.Upload.MaxFileSize)
		}
	}
	return detect.OpenUpload(path)
}
