package automaton

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// buildUnaryIncrement builds a TM that, given a string of 1s on the tape,
// halts in a final state having appended one more 1 -- a minimal machine
// that exercises tape growth to the right and a clean halt in a final
// state.
func buildUnaryIncrement(t *testing.T) *TM {
	t.Helper()
	tm := NewTM()
	scan := tm.AddState(State{Name: "scan"})
	halt := tm.AddState(State{Name: "halt", IsFinal: true, IsHalt: true})

	_, err := tm.AddTransition(Transition{From: scan.ID, To: scan.ID, ReadSymbol: "1", WriteSymbol: "1", Direction: DirRight})
	assert.NoError(t, err)
	_, err = tm.AddTransition(Transition{From: scan.ID, To: halt.ID, WriteSymbol: "1", Direction: DirStay}) // ReadSymbol "" = blank
	assert.NoError(t, err)

	return tm
}

func TestTM_UnaryIncrement(t *testing.T) {
	assert := assert.New(t)

	tm := buildUnaryIncrement(t)
	ok, err := tm.Accepts("111")
	assert.NoError(err)
	assert.True(ok)
}

func TestTM_HaltWithoutFinalIsReject(t *testing.T) {
	assert := assert.New(t)

	// A state with no outgoing transitions and IsFinal unset: the machine
	// halts immediately, and per §9 that's a reject regardless of IsHalt.
	tm := NewTM()
	tm.AddState(State{Name: "q0"})

	ok, err := tm.Accepts("")
	assert.NoError(err)
	assert.False(ok)
}

func TestTM_TapeGrowsLeft(t *testing.T) {
	assert := assert.New(t)

	// q0 moves left twice off the start of the tape (growing it), then
	// halts in a final state -- this only works if reading/writing past
	// the left edge doesn't panic or silently clamp to position 0.
	tm := NewTM()
	q0 := tm.AddState(State{Name: "q0"})
	q1 := tm.AddState(State{Name: "q1"})
	halt := tm.AddState(State{Name: "halt", IsFinal: true})

	_, err := tm.AddTransition(Transition{From: q0.ID, To: q1.ID, ReadSymbol: "a", WriteSymbol: "a", Direction: DirLeft})
	assert.NoError(err)
	_, err = tm.AddTransition(Transition{From: q1.ID, To: halt.ID, Direction: DirLeft}) // blank -> blank, move left

	assert.NoError(tm.InitSimulation("a"))
	assert.NoError(tm.Run(10))
	assert.Equal(Accepted, tm.Verdict())
	assert.Equal(-2, tm.head)
}

func TestTM_LoopHeuristic(t *testing.T) {
	assert := assert.New(t)

	// q0 and q1 bounce the head back and forth between positions 0 and 1
	// forever without ever writing anything -- the exact same (state,
	// head, tape) triple recurs every other step, and nothing else about
	// the machine ever halts on its own, so the loop heuristic has to be
	// what stops Run.
	tm := NewTM()
	q0 := tm.AddState(State{Name: "q0"})
	q1 := tm.AddState(State{Name: "q1"})
	_, err := tm.AddTransition(Transition{From: q0.ID, To: q1.ID, Direction: DirRight})
	assert.NoError(err)
	_, err = tm.AddTransition(Transition{From: q1.ID, To: q0.ID, Direction: DirLeft})
	assert.NoError(err)

	assert.NoError(tm.InitSimulation(""))
	err = tm.Run(10000)
	assert.NoError(err)
	assert.Equal(Rejected, tm.Verdict())
	assert.False(tm.Running())
}

func TestTM_Validate(t *testing.T) {
	assert := assert.New(t)

	tm := NewTM()
	tm.states = map[int]*State{}
	r := tm.Validate()
	assert.False(r.OK())
}
