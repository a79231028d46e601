package shell

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/brannigan/finautomata/internal/automaton"
)

func buildEvenAs(t *testing.T) *automaton.DFA {
	t.Helper()
	d := automaton.NewDFA()
	q0 := d.AddState(automaton.State{Name: "q0", IsInitial: true, IsFinal: true})
	q1 := d.AddState(automaton.State{Name: "q1"})
	_, err := d.AddTransition(automaton.Transition{From: q0.ID, To: q1.ID, Symbols: []string{"a"}})
	assert.NoError(t, err)
	_, err = d.AddTransition(automaton.Transition{From: q1.ID, To: q0.ID, Symbols: []string{"a"}})
	assert.NoError(t, err)
	return d
}

func newTestShell(t *testing.T) (*Shell, *strings.Builder) {
	t.Helper()
	var out strings.Builder
	d := buildEvenAs(t)
	s := New(d, func(msg string) { out.WriteString(msg) })
	return s, &out
}

func TestShell_StateAddAndShow(t *testing.T) {
	assert := assert.New(t)
	s, out := newTestShell(t)

	assert.NoError(s.Dispatch("STATE ADD q2 final"))
	assert.NoError(s.Dispatch("SHOW"))
	assert.Contains(out.String(), "q2")
	assert.Contains(out.String(), "[final]")
}

func TestShell_TransAddAndRemove(t *testing.T) {
	assert := assert.New(t)
	s, _ := newTestShell(t)

	assert.NoError(s.Dispatch("TRANS ADD 1 2 b"))
	before := len(s.Machine.Transitions())
	assert.NoError(s.Dispatch("TRANS RM 1"))
	assert.Equal(before-1, len(s.Machine.Transitions()))
}

func TestShell_InitStepTest(t *testing.T) {
	assert := assert.New(t)
	s, out := newTestShell(t)

	assert.NoError(s.Dispatch("INIT aa"))
	assert.NoError(s.Dispatch("STEP"))
	assert.Contains(out.String(), "step 1")

	assert.NoError(s.Dispatch("TEST aa"))
	assert.Contains(out.String(), "accepted")
}

func TestShell_BatchReportsEachInput(t *testing.T) {
	assert := assert.New(t)
	s, out := newTestShell(t)

	assert.NoError(s.Dispatch("BATCH aa a"))
	assert.Contains(out.String(), `"aa": accepted`)
	assert.Contains(out.String(), `"a": rejected`)
}

func TestShell_UnrecognizedCommand(t *testing.T) {
	assert := assert.New(t)
	s, _ := newTestShell(t)

	err := s.Dispatch("FROBNICATE")
	assert.Error(err)
}

func TestShell_Quit(t *testing.T) {
	assert := assert.New(t)
	s, _ := newTestShell(t)

	err := s.Dispatch("quit")
	assert.Equal(ErrQuit, err)
}

func TestShell_Validate(t *testing.T) {
	assert := assert.New(t)
	s, out := newTestShell(t)

	assert.NoError(s.Dispatch("VALIDATE"))
	assert.Contains(out.String(), "no errors")
}
