package simulator

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/brannigan/finautomata/internal/automaton"
)

// buildEvenAs builds a DFA that accepts strings with an even number of 'a's.
func buildEvenAs(t *testing.T) *automaton.DFA {
	t.Helper()
	d := automaton.NewDFA()
	even := d.AddState(automaton.State{Name: "even", IsFinal: true})
	odd := d.AddState(automaton.State{Name: "odd"})

	_, err := d.AddTransition(automaton.Transition{From: even.ID, To: odd.ID, Symbols: []string{"a"}})
	assert.NoError(t, err)
	_, err = d.AddTransition(automaton.Transition{From: odd.ID, To: even.ID, Symbols: []string{"a"}})
	assert.NoError(t, err)

	return d
}

func TestMapSpeed(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(910*time.Millisecond, mapSpeed(1))
	assert.Equal(550*time.Millisecond, mapSpeed(5))
	assert.Equal(100*time.Millisecond, mapSpeed(10))

	// out-of-range clamps rather than erroring
	assert.Equal(910*time.Millisecond, mapSpeed(0))
	assert.Equal(100*time.Millisecond, mapSpeed(99))
}

func TestDriver_InitAndStep(t *testing.T) {
	assert := assert.New(t)

	d := New(buildEvenAs(t))

	var steps []automaton.Verdict
	var mu sync.Mutex
	d.OnStepComplete = func(_ automaton.TraceStep, v automaton.Verdict) {
		mu.Lock()
		defer mu.Unlock()
		steps = append(steps, v)
	}

	assert.NoError(d.Init("aa"))

	for d.Machine().Running() {
		assert.NoError(d.Step())
	}

	assert.Equal(automaton.Accepted, d.Machine().Verdict())
	mu.Lock()
	assert.NotEmpty(steps)
	mu.Unlock()
}

func TestDriver_RunToCompletion(t *testing.T) {
	d := New(buildEvenAs(t))
	d.SetSpeed(10) // fastest, so the test doesn't sit around

	done := make(chan automaton.Verdict, 1)
	d.OnSimulationComplete = func(v automaton.Verdict, err error) {
		done <- v
	}

	assert := assert.New(t)
	assert.NoError(d.Init("aaa"))
	d.Run()

	select {
	case v := <-done:
		assert.Equal(automaton.Rejected, v) // odd number of a's
	case <-time.After(2 * time.Second):
		t.Fatal("simulation did not complete in time")
	}

	d.Stop()
}

func TestDriver_PauseResume(t *testing.T) {
	assert := assert.New(t)

	d := New(buildEvenAs(t))
	d.SetSpeed(10)
	assert.NoError(d.Init("aaaa"))

	d.Run()
	d.Pause()
	time.Sleep(150 * time.Millisecond)

	// Paused: no completion should have fired yet, and running should still
	// be true since Step never ran past the pause.
	assert.True(d.Machine().Running())

	d.Resume()

	done := make(chan struct{})
	d.OnSimulationComplete = func(automaton.Verdict, error) {
		close(done)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("simulation did not complete after resume")
	}

	d.Stop()
}

func TestDriver_StopIsIdempotent(t *testing.T) {
	assert := assert.New(t)
	d := New(buildEvenAs(t))
	assert.NoError(d.Init("a"))

	d.Stop()
	d.Stop()
}

func TestDriver_ResetBeforeInitIsError(t *testing.T) {
	assert := assert.New(t)
	d := New(buildEvenAs(t))
	assert.Error(d.Reset())
}

func TestDriver_Reset(t *testing.T) {
	assert := assert.New(t)
	d := New(buildEvenAs(t))

	assert.NoError(d.Init("aa"))
	assert.NoError(d.Machine().Run(0))
	assert.Equal(automaton.Accepted, d.Machine().Verdict())

	assert.NoError(d.Reset())
	assert.True(d.Machine().Running())
	assert.Equal(automaton.Undecided, d.Machine().Verdict())
}

func TestDriver_TestString_DoesNotDisturbLiveSimulation(t *testing.T) {
	assert := assert.New(t)

	d := New(buildEvenAs(t))
	assert.NoError(d.Init("a"))
	assert.NoError(d.Step())

	liveTraceLen := len(d.Machine().Trace())

	verdict, trace, err := d.TestString("aaaa")
	assert.NoError(err)
	assert.Equal(automaton.Accepted, verdict)
	assert.NotEmpty(trace)

	// the live simulation's own trace/verdict must be untouched
	assert.Equal(liveTraceLen, len(d.Machine().Trace()))
	assert.Equal(automaton.Undecided, d.Machine().Verdict())
}

func TestDriver_RunBatchTests(t *testing.T) {
	assert := assert.New(t)

	d := New(buildEvenAs(t))
	assert.NoError(d.Init(""))

	results := d.RunBatchTests([]string{"aa", "a", "aaaa", "aaa"})
	assert.Len(results, 4)
	assert.True(results[0].Accepted)
	assert.False(results[1].Accepted)
	assert.True(results[2].Accepted)
	assert.False(results[3].Accepted)

	for _, r := range results {
		assert.NoError(r.Err)
		assert.Equal(r.Input, r.Input)
		assert.NotEmpty(r.Trace)
	}
}
