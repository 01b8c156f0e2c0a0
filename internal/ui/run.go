package ui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/yildizm/LogDetect/internal/detect"
)

// Options configures Run
type Options struct {
	Detector    detect.Detector
	Recorders   []detect.Recorder
	InitialPath string
	Color       bool
	Theme       string

	// Open opens a typed path; nil means detect.OpenUpload
	Open OpenFunc
}

// Run starts the interactive detection screen and blocks until it exits
func Run(opts Options) error {
	if opts.Detector == nil {
		return fmt.Errorf("tui: detector is required")
	}
	if opts.Theme != "" && !SetThemeByName(opts.Theme) {
		return fmt.Errorf("unknown theme: %s (available: %v)", opts.Theme, GetAvailableThemes())
	}

	presenter := &Presenter{}
	ctrl := detect.NewController(opts.Detector, presenter, opts.Recorders...)
	model := newRunModel(ctrl, opts)

	program := tea.NewProgram(model, tea.WithAltScreen())
	presenter.Attach(program)

	_, err := program.Run()
	ctrl.Cancel()
	if err != nil {
		return fmt.Errorf("tui failed: %w", err)
	}
	return nil
}

func newRunModel(ctrl Submitter, opts Options) *Model {
	return NewModel(ctrl, opts.Open, NewStyles(GetTheme(), opts.Color && !IsColorDisabled()), opts.InitialPath)
}
