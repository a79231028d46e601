package automaton

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInterchangeXML_FARoundTrip(t *testing.T) {
	assert := assert.New(t)

	d := NewDFA()
	q0 := d.AddState(State{Name: "q0"})
	q1 := d.AddState(State{Name: "q1", IsFinal: true})
	_, err := d.AddTransition(Transition{From: q0.ID, To: q1.ID, Symbols: []string{"a"}})
	assert.NoError(err)

	data, err := ToInterchangeXML(d)
	assert.NoError(err)

	m, err := FromInterchangeXML(data)
	assert.NoError(err)

	// §6: type "fa" always loads as an NFA, even when the source was a DFA.
	assert.Equal(KindNFA, m.Kind())

	ok, err := m.Accepts("a")
	assert.NoError(err)
	assert.True(ok)

	states := m.States()
	assert.Len(states, 2)
}

func TestInterchangeXML_PDARoundTrip(t *testing.T) {
	assert := assert.New(t)

	// The interchange dialect's <automaton> only carries states and
	// transitions (§6) -- a PDA's accept-mode flags and initial stack
	// symbol aren't part of it, so FromInterchangeXML always rebuilds a
	// PDA with NewPDA's defaults (accept by final state, stack symbol
	// "Z"). Build the fixture to only depend on that: reaching a final
	// state with the input consumed, regardless of what's left on the
	// stack.
	p := NewPDA()
	q0 := p.AddState(State{Name: "q0", IsFinal: true})
	_, err := p.AddTransition(Transition{From: q0.ID, To: q0.ID, InputSymbol: "(", StackWrite: "("})
	assert.NoError(err)
	_, err = p.AddTransition(Transition{From: q0.ID, To: q0.ID, InputSymbol: ")", StackRead: "("})
	assert.NoError(err)

	data, err := ToInterchangeXML(p)
	assert.NoError(err)

	m, err := FromInterchangeXML(data)
	assert.NoError(err)
	assert.Equal(KindPDA, m.Kind())
	assert.Len(m.States(), 1)
	assert.Len(m.Transitions(), 2)

	ok, err := m.Accepts("()")
	assert.NoError(err)
	assert.True(ok)
}

func TestInterchangeXML_TMRoundTrip(t *testing.T) {
	assert := assert.New(t)

	tm := NewTM()
	scan := tm.AddState(State{Name: "scan"})
	halt := tm.AddState(State{Name: "halt", IsFinal: true, IsHalt: true})
	_, err := tm.AddTransition(Transition{From: scan.ID, To: scan.ID, ReadSymbol: "1", WriteSymbol: "1", Direction: DirRight})
	assert.NoError(err)
	_, err = tm.AddTransition(Transition{From: scan.ID, To: halt.ID, WriteSymbol: "1", Direction: DirStay})
	assert.NoError(err)

	data, err := ToInterchangeXML(tm)
	assert.NoError(err)

	m, err := FromInterchangeXML(data)
	assert.NoError(err)
	assert.Equal(KindTM, m.Kind())

	ok, err := m.Accepts("11")
	assert.NoError(err)
	assert.True(ok)
}

func TestFromInterchangeXML_UnknownType(t *testing.T) {
	assert := assert.New(t)

	_, err := FromInterchangeXML([]byte(`<structure><type>bogus</type><automaton></automaton></structure>`))
	assert.Error(err)
}
