package automaton

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDFA_Accepts(t *testing.T) {
	testCases := []struct {
		name   string
		input  string
		expect bool
	}{
		{name: "empty string, not accepting", input: "", expect: false},
		{name: "single a, accepting", input: "a", expect: true},
		{name: "ab, not accepting (no such transition back)", input: "ab", expect: false},
		{name: "aa, not accepting", input: "aa", expect: false},
	}

	// q0 --a--> q1 (final); no other transitions defined.
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			d := NewDFA()
			q0 := d.AddState(State{Name: "q0"})
			q1 := d.AddState(State{Name: "q1", IsFinal: true})
			_, err := d.AddTransition(Transition{From: q0.ID, To: q1.ID, Symbols: []string{"a"}})
			assert.NoError(err)

			actual, err := d.Accepts(tc.input)
			assert.NoError(err)
			assert.Equal(tc.expect, actual)
		})
	}
}

func TestDFA_Validate(t *testing.T) {
	t.Run("no initial state is an error", func(t *testing.T) {
		assert := assert.New(t)
		d := NewDFA()
		d.states = map[int]*State{} // empty DFA, AddState never called
		r := d.Validate()
		assert.False(r.OK())
	})

	t.Run("epsilon transition is an error", func(t *testing.T) {
		assert := assert.New(t)
		d := NewDFA()
		q0 := d.AddState(State{Name: "q0"})
		q1 := d.AddState(State{Name: "q1"})
		_, err := d.AddTransition(Transition{From: q0.ID, To: q1.ID})
		assert.NoError(err)

		r := d.Validate()
		assert.False(r.OK())
	})

	t.Run("duplicate symbol out of one state is an error", func(t *testing.T) {
		assert := assert.New(t)
		d := NewDFA()
		q0 := d.AddState(State{Name: "q0"})
		q1 := d.AddState(State{Name: "q1"})
		q2 := d.AddState(State{Name: "q2"})
		_, err := d.AddTransition(Transition{From: q0.ID, To: q1.ID, Symbols: []string{"a"}})
		assert.NoError(err)
		_, err = d.AddTransition(Transition{From: q0.ID, To: q2.ID, Symbols: []string{"a"}})
		assert.NoError(err)

		r := d.Validate()
		assert.False(r.OK())
	})

	t.Run("unreachable state is a warning, not an error", func(t *testing.T) {
		assert := assert.New(t)
		d := NewDFA()
		d.AddState(State{Name: "q0"})
		d.AddState(State{Name: "q1"}) // never targeted by any transition

		r := d.Validate()
		assert.True(r.OK())
		assert.NotEmpty(r.Warnings)
	})

	t.Run("incomplete DFA is a warning, not an error", func(t *testing.T) {
		assert := assert.New(t)
		d := NewDFA()
		q0 := d.AddState(State{Name: "q0"})
		q1 := d.AddState(State{Name: "q1"})
		_, err := d.AddTransition(Transition{From: q0.ID, To: q1.ID, Symbols: []string{"a"}})
		assert.NoError(err)
		// alphabet is just {a}; q1 has no outgoing transition on a.

		r := d.Validate()
		assert.True(r.OK())
		assert.NotEmpty(r.Warnings)
	})
}

func TestDFA_UndoRedo(t *testing.T) {
	assert := assert.New(t)

	d := NewDFA()
	d.AddState(State{Name: "q0"})
	assert.Equal(1, len(d.States()))

	d.AddState(State{Name: "q1"})
	assert.Equal(2, len(d.States()))

	assert.True(d.Undo())
	assert.Equal(1, len(d.States()))

	assert.True(d.Redo())
	assert.Equal(2, len(d.States()))

	assert.False(d.Redo())
}

func TestDFA_ToNFA(t *testing.T) {
	assert := assert.New(t)

	d := NewDFA()
	q0 := d.AddState(State{Name: "q0"})
	q1 := d.AddState(State{Name: "q1", IsFinal: true})
	_, err := d.AddTransition(Transition{From: q0.ID, To: q1.ID, Symbols: []string{"a"}})
	assert.NoError(err)

	n := d.ToNFA()
	assert.Equal(KindNFA, n.Kind())
	ok, err := n.Accepts("a")
	assert.NoError(err)
	assert.True(ok)
}
