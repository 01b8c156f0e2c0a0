package detect

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// State is the full UI state owned by the Controller
type State struct {
	Loading      bool   `json:"loading"`
	ErrorVisible bool   `json:"error_visible"`
	ErrorText    string `json:"error_text,omitempty"`
	View         *View  `json:"view,omitempty"`
}

// Presenter applies a State to a presentation layer. Present is called
// with the controller lock held, in transition order, and must not call
// back into the Controller.
type Presenter interface {
	Present(state State)
}

// PresenterFunc adapts a function to the Presenter interface
type PresenterFunc func(State)

// Present calls f(state)
func (f PresenterFunc) Present(state State) { f(state) }

// Recorder observes finished submissions (metrics, history, ...)
type Recorder interface {
	RecordSubmission(outcome Outcome)
}

// Outcome describes one settled submission
type Outcome struct {
	File     string
	Started  time.Time
	Duration time.Duration
	Result   *Result
	View     *View
	Err      *Error
}

// Controller orchestrates upload, detect and render cycles
type Controller struct {
	detector  Detector
	presenter Presenter
	recorders []Recorder

	mu     sync.Mutex
	state  State
	gen    uint64
	cancel context.CancelFunc
}

// NewController creates a controller; a nil presenter discards state
func NewController(detector Detector, presenter Presenter, recorders ...Recorder) *Controller {
	if presenter == nil {
		presenter = PresenterFunc(func(State) {})
	}
	return &Controller{
		detector:  detector,
		presenter: presenter,
		recorders: recorders,
	}
}

// State returns a snapshot of the current state
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Submit runs one cycle for the selected upload. A nil upload is a
// validation failure and never reaches the network. Starting a new
// submission cancels any earlier in-flight one; the earlier call then
// returns ErrSuperseded without touching state.
func (c *Controller) Submit(ctx context.Context, upload *Upload) (err error) {
	if upload == nil {
		verr := NewValidationError()
		c.mu.Lock()
		c.state = State{
			Loading:      c.state.Loading,
			ErrorVisible: true,
			ErrorText:    verr.Message,
		}
		c.presenter.Present(c.state)
		c.mu.Unlock()
		c.record(Outcome{Started: time.Now(), Err: verr})
		return verr
	}

	ctx, gen := c.begin(ctx)
	started := time.Now()

	var (
		result *Result
		view   *View
		derr   *Error
	)

	defer func() {
		if r := recover(); r != nil {
			derr = NewInternalError(fmt.Errorf("detector panic: %v", r))
			result, view = nil, nil
		}
		if !c.finish(gen, view, derr) {
			err = ErrSuperseded
			return
		}
		c.record(Outcome{
			File:     upload.Name,
			Started:  started,
			Duration: time.Since(started),
			Result:   result,
			View:     view,
			Err:      derr,
		})
		if derr != nil {
			err = derr
		}
	}()

	res, detectErr := c.detector.Detect(ctx, upload)
	if detectErr != nil {
		derr = AsError(detectErr)
		return derr
	}
	result = res
	view = Render(res)
	return nil
}

// begin clears the display, enters loading and takes a new generation
func (c *Controller) begin(parent context.Context) (context.Context, uint64) {
	ctx, cancel := context.WithCancel(parent)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
	}
	c.gen++
	c.cancel = cancel
	c.state = State{Loading: true}
	c.presenter.Present(c.state)
	return ctx, c.gen
}

// finish leaves loading and applies the outcome. It reports false when
// gen is no longer the current submission.
func (c *Controller) finish(gen uint64, view *View, derr *Error) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen {
		return false
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}

	next := State{Loading: false}
	if derr != nil {
		next.ErrorVisible = true
		next.ErrorText = derr.Message
	} else {
		next.View = view
	}
	c.state = next
	c.presenter.Present(c.state)
	return true
}

func (c *Controller) record(outcome Outcome) {
	for _, r := range c.recorders {
		r.RecordSubmission(outcome)
	}
}

// Clear hides the alert and empties every result region
func (c *Controller) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = State{Loading: c.state.Loading}
	c.presenter.Present(c.state)
}

// Cancel aborts the in-flight submission, if any
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
	}
}
