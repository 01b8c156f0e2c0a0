package ui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/yildizm/LogDetect/internal/detect"
)

type fakeSubmitter struct {
	mu       sync.Mutex
	uploads  []*detect.Upload
	err      error
	cleared  int
	canceled int
}

func (f *fakeSubmitter) Submit(_ context.Context, upload *detect.Upload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads = append(f.uploads, upload)
	return f.err
}

func (f *fakeSubmitter) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleared++
}

func (f *fakeSubmitter) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.canceled++
}

func stubOpen(path string) (*detect.Upload, func() error, error) {
	if path == "" {
		return nil, func() error { return nil }, nil
	}
	if path == "missing.log" {
		return nil, nil, errors.New("cannot access file: missing.log")
	}
	return &detect.Upload{Name: path, Content: strings.NewReader("1\t2\n")}, func() error { return nil }, nil
}

func newTestModel(ctrl Submitter) *Model {
	m := NewModel(ctrl, stubOpen, NewStyles(DefaultTheme, false), "")
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return m
}

func sampleView() *detect.View {
	body := `{"predicted_labels":["Walking","Sitting","Walking"],"samples":3}`
	resp, _ := detect.Decode([]byte(body), detect.DecodeOptions{})
	return detect.Render(&detect.Result{Response: resp, Raw: []byte(body)})
}

func TestModel_LoadingBlocksSend(t *testing.T) {
	m := newTestModel(&fakeSubmitter{})
	m.Update(stateMsg{state: detect.State{Loading: true}})

	if !strings.Contains(m.View(), "Procesando archivo...") {
		t.Errorf("expected loading indicator, got\n%s", m.View())
	}
	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter}); cmd != nil {
		t.Errorf("enter should be ignored while loading")
	}
}

func TestModel_AlertRegion(t *testing.T) {
	m := newTestModel(&fakeSubmitter{})
	m.Update(stateMsg{state: detect.State{ErrorVisible: true, ErrorText: detect.MsgNoFile}})

	view := m.View()
	if !strings.Contains(view, detect.MsgNoFile) {
		t.Errorf("expected alert text, got\n%s", view)
	}
	if strings.Contains(view, "Resumen") {
		t.Errorf("results region should be empty on error")
	}

	m.Update(stateMsg{state: detect.State{}})
	if strings.Contains(m.View(), detect.MsgNoFile) {
		t.Errorf("alert should be hidden after clear")
	}
}

func TestModel_ResultsRegion(t *testing.T) {
	m := newTestModel(&fakeSubmitter{})
	m.Update(stateMsg{state: detect.State{View: sampleView()}})

	view := m.View()
	for _, want := range []string{
		"Ventanas: 3 | Actividades: Walking, Sitting",
		"Actividad dominante: Walking (2)",
		"Walking: 2",
		"Sitting: 1",
		`"samples": 3`,
	} {
		if !strings.Contains(view, want) {
			t.Errorf("expected %q in\n%s", want, view)
		}
	}
}

func TestModel_EnterSubmitsTrimmedPath(t *testing.T) {
	ctrl := &fakeSubmitter{}
	m := newTestModel(ctrl)
	m.input.SetValue("  walk.log ")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a submit command")
	}
	msg := cmd()
	done, ok := msg.(submitDoneMsg)
	if !ok {
		t.Fatalf("expected submitDoneMsg, got %T", msg)
	}
	if done.file != "walk.log" || done.err != nil {
		t.Errorf("unexpected done message %+v", done)
	}
	if len(ctrl.uploads) != 1 || ctrl.uploads[0].Name != "walk.log" {
		t.Fatalf("unexpected uploads %+v", ctrl.uploads)
	}

	m.Update(done)
	m.Update(stateMsg{state: detect.State{View: sampleView()}})
	if !strings.Contains(m.View(), "walk.log") {
		t.Errorf("status line should name the submitted file")
	}
}

func TestModel_EmptyPathSubmitsNil(t *testing.T) {
	ctrl := &fakeSubmitter{err: detect.NewValidationError()}
	m := newTestModel(ctrl)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	msg := cmd()
	done := msg.(submitDoneMsg)
	if !detect.IsValidationError(done.err) {
		t.Errorf("expected validation error, got %v", done.err)
	}
	if len(ctrl.uploads) != 1 || ctrl.uploads[0] != nil {
		t.Errorf("expected a single nil upload, got %+v", ctrl.uploads)
	}
}

func TestModel_OpenErrorShownLocally(t *testing.T) {
	ctrl := &fakeSubmitter{}
	m := newTestModel(ctrl)

	msg := submitCmd(ctrl, stubOpen, "missing.log")()
	if _, ok := msg.(openErrorMsg); !ok {
		t.Fatalf("expected openErrorMsg, got %T", msg)
	}
	m.Update(msg)
	if !strings.Contains(m.View(), "cannot access file") {
		t.Errorf("expected open error in alert, got\n%s", m.View())
	}
	if len(ctrl.uploads) != 0 {
		t.Errorf("controller should not be called when the file cannot be opened")
	}

	// the next controller transition replaces the local error
	m.Update(stateMsg{state: detect.State{Loading: true}})
	if strings.Contains(m.View(), "cannot access file") {
		t.Errorf("open error should be replaced by controller state")
	}
}

func TestSubmitCmd_SupersededIsSilent(t *testing.T) {
	ctrl := &fakeSubmitter{err: detect.ErrSuperseded}
	if msg := submitCmd(ctrl, stubOpen, "a.log")(); msg != nil {
		t.Errorf("superseded submissions should produce no message, got %T", msg)
	}
}

func TestModel_ClearAndQuit(t *testing.T) {
	ctrl := &fakeSubmitter{}
	m := newTestModel(ctrl)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlL})
	if _, ok := cmd().(clearedMsg); !ok {
		t.Fatal("expected clearedMsg")
	}
	if ctrl.cleared != 1 {
		t.Errorf("expected Clear to be called once, got %d", ctrl.cleared)
	}

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if !m.quitting {
		t.Errorf("model should be quitting")
	}
}

func TestPresenter_DropsBeforeAttach(t *testing.T) {
	p := &Presenter{}
	p.Present(detect.State{Loading: true})
}

func TestRenderResults_Nil(t *testing.T) {
	if got := renderResults(nil, NewStyles(DefaultTheme, false), 80); got != "" {
		t.Errorf("expected empty results region, got %q", got)
	}
}

func TestSetThemeByName(t *testing.T) {
	defer SetThemeByName("default")

	for _, name := range GetAvailableThemes() {
		if !SetThemeByName(name) {
			t.Errorf("theme %q should be available", name)
		}
		if GetTheme().Name != name {
			t.Errorf("active theme = %q, want %q", GetTheme().Name, name)
		}
	}
	if SetThemeByName("neon") {
		t.Errorf("unknown theme should be rejected")
	}
}

func TestRun_RequiresDetector(t *testing.T) {
	if err := Run(Options{}); err == nil {
		t.Error("expected error without detector")
	}
}

func TestRunModel_UsesConfiguredOpener(t *testing.T) {
	ctrl := &fakeSubmitter{}
	tooLarge := errors.New("file big.log is 10 bytes, larger than max_file_size (4)")
	m := newRunModel(ctrl, Options{
		Open: func(path string) (*detect.Upload, func() error, error) {
			return nil, nil, tooLarge
		},
	})

	msg := submitCmd(ctrl, m.open, "big.log")()
	openErr, ok := msg.(openErrorMsg)
	if !ok {
		t.Fatalf("expected openErrorMsg, got %T", msg)
	}
	if !errors.Is(openErr.err, tooLarge) {
		t.Errorf("unexpected open error %v", openErr.err)
	}
	if len(ctrl.uploads) != 0 {
		t.Error("a refused file must not be submitted")
	}
}
