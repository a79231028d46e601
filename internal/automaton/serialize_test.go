package automaton

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDFA_StructuredRoundTrip(t *testing.T) {
	assert := assert.New(t)

	d := NewDFA()
	q0 := d.AddState(State{Name: "q0"})
	q1 := d.AddState(State{Name: "q1", IsFinal: true})
	_, err := d.AddTransition(Transition{From: q0.ID, To: q1.ID, Symbols: []string{"a"}})
	assert.NoError(err)

	s := d.ToStructured()
	data := s.EncodeBinary()

	decoded, err := DecodeStructuredBinary(data)
	assert.NoError(err)
	assert.Equal(s.Type, decoded.Type)
	assert.Equal(s.InitialStateID, decoded.InitialStateID)
	assert.Len(decoded.States, 2)
	assert.Len(decoded.Transitions, 1)

	restored, err := LoadDFA(decoded)
	assert.NoError(err)

	ok, err := restored.Accepts("a")
	assert.NoError(err)
	assert.True(ok)

	// Loading from structured form must not itself be an undoable edit.
	assert.Equal(0, len(restored.past))
}

func TestPDA_StructuredRoundTrip(t *testing.T) {
	assert := assert.New(t)

	p := NewPDA()
	p.SetInitialStackSymbol("")
	p.SetAcceptMode(false, true)
	q0 := p.AddState(State{Name: "q0"})
	_, err := p.AddTransition(Transition{From: q0.ID, To: q0.ID, InputSymbol: "(", StackWrite: "("})
	assert.NoError(err)
	_, err = p.AddTransition(Transition{From: q0.ID, To: q0.ID, InputSymbol: ")", StackRead: "("})
	assert.NoError(err)

	data := p.ToStructured().EncodeBinary()
	decoded, err := DecodeStructuredBinary(data)
	assert.NoError(err)

	restored, err := LoadPDA(decoded)
	assert.NoError(err)
	assert.False(restored.acceptByFinalState)
	assert.True(restored.acceptByEmptyStack)

	ok, err := restored.Accepts("(())")
	assert.NoError(err)
	assert.True(ok)
}

func TestFromStructured_Dispatch(t *testing.T) {
	assert := assert.New(t)

	d := NewDFA()
	d.AddState(State{Name: "q0"})

	m, err := FromStructured(d.ToStructured())
	assert.NoError(err)
	assert.Equal(KindDFA, m.Kind())

	_, err = FromStructured(StructuredAutomaton{Type: "bogus"})
	assert.Error(err)
}

func TestDFA_UndoNotPushedOnLoad(t *testing.T) {
	assert := assert.New(t)

	d := NewDFA()
	d.AddState(State{Name: "q0"})
	d.AddState(State{Name: "q1"})

	s := d.ToStructured()
	restored, err := LoadDFA(s)
	assert.NoError(err)

	assert.False(restored.Undo())
}
