package ui

import (
	"context"
	"errors"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/yildizm/LogDetect/internal/detect"
)

// Submitter is the part of detect.Controller the model drives
type Submitter interface {
	Submit(ctx context.Context, upload *detect.Upload) error
	Clear()
	Cancel()
}

// stateMsg carries a controller transition into the event loop
type stateMsg struct {
	state detect.State
}

// submitDoneMsg reports a settled Submit call
type submitDoneMsg struct {
	file string
	err  error
}

// openErrorMsg reports a path that could not be opened
type openErrorMsg struct {
	err error
}

// clearedMsg is returned once Clear ran
type clearedMsg struct{}

// Presenter forwards controller state to a running bubbletea program.
// Transitions presented before Attach are dropped.
type Presenter struct {
	mu      sync.Mutex
	program *tea.Program
}

// Attach binds the presenter to program
func (p *Presenter) Attach(program *tea.Program) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.program = program
}

// Present implements detect.Presenter
func (p *Presenter) Present(state detect.State) {
	p.mu.Lock()
	program := p.program
	p.mu.Unlock()
	if program == nil {
		return
	}
	program.Send(stateMsg{state: state})
}

// submitCmd opens path and submits it. The controller is only ever called
// from commands since Present blocks until the event loop reads the state.
func submitCmd(ctrl Submitter, open OpenFunc, path string) tea.Cmd {
	return func() tea.Msg {
		upload, closeFn, err := open(path)
		if err != nil {
			return openErrorMsg{err: err}
		}
		defer func() { _ = closeFn() }()

		err = ctrl.Submit(context.Background(), upload)
		if errors.Is(err, detect.ErrSuperseded) {
			return nil
		}
		return submitDoneMsg{file: path, err: err}
	}
}

func clearCmd(ctrl Submitter) tea.Cmd {
	return func() tea.Msg {
		ctrl.Clear()
		return clearedMsg{}
	}
}

func cancelCmd(ctrl Submitter) tea.Cmd {
	return func() tea.Msg {
		ctrl.Cancel()
		return nil
	}
}
