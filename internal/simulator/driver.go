// Package simulator wraps an automaton.Machine with the driver described in
// §4.6: single-step and timer-driven run, pause/resume/stop, reset, and
// string/batch testing against a working copy so the live model is never
// disturbed.
//
// Grounded on cmd/tqi/main.go's REPL loop (init the model, then either step
// once or run to completion, reporting as it goes) and engine.go's
// input-reader-driven main loop, generalized from a blocking read-eval loop
// to a timer-driven one since the driver has no terminal of its own to block
// on.
package simulator

import (
	"fmt"
	"sync"
	"time"

	"github.com/brannigan/finautomata/internal/automaton"
)

// BatchResult is one entry of the per-input report returned by RunBatchTests.
type BatchResult struct {
	Input    string
	Accepted bool
	Trace    []automaton.TraceStep
	Err      error
}

// StepCompleteFunc is invoked after every single step of the live
// simulation, whether it ran as part of Step or Run. TestString and
// RunBatchTests work on a copy and do not invoke it.
type StepCompleteFunc func(step automaton.TraceStep, verdict automaton.Verdict)

// SimulationCompleteFunc is invoked once a simulation stops running, either
// because it reached a verdict or hit an error. Stop does not invoke it.
type SimulationCompleteFunc func(verdict automaton.Verdict, err error)

// minIntervalMillis is the floor mapSpeed will never go below, regardless of
// how high speed is set.
const minIntervalMillis = 50

// mapSpeed converts a speed in {1..10} to a tick interval, per §4.6:
// ≈(1000 − 90·speed)ms, floored at 50ms.
func mapSpeed(speed int) time.Duration {
	if speed < 1 {
		speed = 1
	}
	if speed > 10 {
		speed = 10
	}
	ms := 1000 - 90*speed
	if ms < minIntervalMillis {
		ms = minIntervalMillis
	}
	return time.Duration(ms) * time.Millisecond
}

// Driver orchestrates a single automaton.Machine's simulation lifecycle. It
// is safe for concurrent use; Run drives its ticking from its own goroutine
// and reports back through the lifecycle callbacks rather than a return
// value.
type Driver struct {
	mu sync.Mutex

	m          automaton.Machine
	lastInput  string
	speed      int
	paused     bool
	runCancel  chan struct{}
	runDone    chan struct{}

	OnStepComplete       StepCompleteFunc
	OnSimulationComplete SimulationCompleteFunc
}

// New creates a Driver wrapping m. Speed defaults to 5.
func New(m automaton.Machine) *Driver {
	return &Driver{
		m:     m,
		speed: 5,
	}
}

// Machine returns the wrapped automaton. Callers may use this for
// introspection (Trace, States, ...) but should go through the Driver for
// anything that mutates simulation state, to keep callbacks and run-state
// bookkeeping consistent.
func (d *Driver) Machine() automaton.Machine {
	return d.m
}

// SetSpeed sets the run rate in {1..10}; out-of-range values are clamped.
func (d *Driver) SetSpeed(speed int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if speed < 1 {
		speed = 1
	}
	if speed > 10 {
		speed = 10
	}
	d.speed = speed
}

// Init starts a fresh simulation over input. Any in-progress Run is stopped
// first.
func (d *Driver) Init(input string) error {
	d.Stop()

	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.m.InitSimulation(input); err != nil {
		return err
	}
	d.lastInput = input
	d.paused = false
	return nil
}

// Reset re-initializes the simulation over the same input last passed to
// Init. It is an error to call Reset before Init.
func (d *Driver) Reset() error {
	d.mu.Lock()
	input := d.lastInput
	started := d.m.Running() || d.m.Verdict() != automaton.Undecided
	d.mu.Unlock()

	if !started && input == "" {
		return fmt.Errorf("simulator: Reset called before Init")
	}
	return d.Init(input)
}

// Step advances the simulation by exactly one step, firing OnStepComplete
// and, if the step ended the run, OnSimulationComplete.
func (d *Driver) Step() error {
	d.mu.Lock()
	err := d.m.Step()
	trace := d.m.Trace()
	verdict := d.m.Verdict()
	running := d.m.Running()
	d.mu.Unlock()

	var last automaton.TraceStep
	if len(trace) > 0 {
		last = trace[len(trace)-1]
	}

	if d.OnStepComplete != nil {
		d.OnStepComplete(last, verdict)
	}
	if (!running || err != nil) && d.OnSimulationComplete != nil {
		d.OnSimulationComplete(verdict, err)
	}
	return err
}

// Run starts timer-driven auto-stepping at the configured speed. It returns
// immediately; progress is reported through OnStepComplete and
// OnSimulationComplete from a background goroutine. Calling Run while
// already running is a no-op.
func (d *Driver) Run() {
	d.mu.Lock()
	if d.runCancel != nil {
		d.mu.Unlock()
		return
	}
	interval := mapSpeed(d.speed)
	cancel := make(chan struct{})
	done := make(chan struct{})
	d.runCancel = cancel
	d.runDone = done
	d.paused = false
	d.mu.Unlock()

	go d.runLoop(interval, cancel, done)
}

func (d *Driver) runLoop(interval time.Duration, cancel, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-cancel:
			return
		case <-ticker.C:
			d.mu.Lock()
			paused := d.paused
			d.mu.Unlock()
			if paused {
				continue
			}

			if err := d.Step(); err != nil {
				return
			}

			d.mu.Lock()
			running := d.m.Running()
			d.mu.Unlock()
			if !running {
				return
			}
		}
	}
}

// Pause suspends an in-progress Run without losing its goroutine; Resume
// picks the ticking back up. Pause/Resume on a Driver that isn't running is
// a no-op.
func (d *Driver) Pause() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.paused = true
}

// Resume un-pauses a Run previously suspended with Pause.
func (d *Driver) Resume() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.paused = false
}

// Stop halts an in-progress Run, if any, and blocks until its goroutine has
// exited. Calling Stop when nothing is running is a no-op.
func (d *Driver) Stop() {
	d.mu.Lock()
	cancel := d.runCancel
	done := d.runDone
	d.runCancel = nil
	d.runDone = nil
	d.mu.Unlock()

	if cancel == nil {
		return
	}
	close(cancel)
	<-done
}

// TestString runs input against a working copy of the wrapped machine,
// built by round-tripping it through the structured serialization form, so
// the live simulation (and its history) is left untouched. It returns the
// final verdict and the full trace produced by the copy's run.
func (d *Driver) TestString(input string) (automaton.Verdict, []automaton.TraceStep, error) {
	d.mu.Lock()
	structured := d.m.ToStructured()
	d.mu.Unlock()

	copyM, err := automaton.FromStructured(structured)
	if err != nil {
		return automaton.Undecided, nil, fmt.Errorf("building working copy: %w", err)
	}

	// Deliberately not copyM.Accepts: that method runs against its own
	// saved/restored snapshot and wipes out the trace it produced before
	// returning, since it's meant to not disturb a simulation already in
	// progress. Here copyM has no other caller, so we drive it directly and
	// keep the trace it leaves behind.
	if err := copyM.InitSimulation(input); err != nil {
		return automaton.Undecided, nil, err
	}
	if err := copyM.Run(0); err != nil {
		return automaton.Undecided, copyM.Trace(), err
	}
	return copyM.Verdict(), copyM.Trace(), nil
}

// RunBatchTests evaluates each of inputs sequentially against its own fresh
// working copy (§4.6: "no state leaks across cases"), in input order.
func (d *Driver) RunBatchTests(inputs []string) []BatchResult {
	results := make([]BatchResult, len(inputs))
	for i, in := range inputs {
		verdict, trace, err := d.TestString(in)
		results[i] = BatchResult{
			Input:    in,
			Accepted: verdict == automaton.Accepted,
			Trace:    trace,
			Err:      err,
		}
	}
	return results
}
