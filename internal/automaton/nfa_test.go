package automaton

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// buildABStarA builds an NFA for (a|b)*a -- strings over {a,b} ending in a.
// q0 loops on both symbols and also moves to the final q1 on 'a', so the
// machine is nondeterministic on 'a'; it has no epsilon transitions.
func buildABStarA(t *testing.T) (*NFA, int, int) {
	t.Helper()
	n := NewNFA()
	q0 := n.AddState(State{Name: "q0"})
	q1 := n.AddState(State{Name: "q1", IsFinal: true})

	mustAdd := func(from, to int, syms ...string) {
		_, err := n.AddTransition(Transition{From: from, To: to, Symbols: syms})
		assert.NoError(t, err)
	}
	mustAdd(q0.ID, q0.ID, "a")
	mustAdd(q0.ID, q0.ID, "b")
	mustAdd(q0.ID, q1.ID, "a")

	return n, q0.ID, q1.ID
}

func TestNFA_Accepts(t *testing.T) {
	testCases := []struct {
		name   string
		input  string
		expect bool
	}{
		{name: "empty string rejected", input: "", expect: false},
		{name: "single a accepted", input: "a", expect: true},
		{name: "single b rejected", input: "b", expect: false},
		{name: "abba ends in a, accepted", input: "abba", expect: true},
		{name: "abab ends in b, rejected", input: "abab", expect: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)
			n, _, _ := buildABStarA(t)

			actual, err := n.Accepts(tc.input)
			assert.NoError(err)
			assert.Equal(tc.expect, actual)
		})
	}
}

func TestNFA_EpsilonTransition(t *testing.T) {
	assert := assert.New(t)

	n := NewNFA()
	q0 := n.AddState(State{Name: "q0"})
	q1 := n.AddState(State{Name: "q1"})
	q2 := n.AddState(State{Name: "q2", IsFinal: true})

	// q0 --ε--> q1 --a--> q2
	_, err := n.AddTransition(Transition{From: q0.ID, To: q1.ID})
	assert.NoError(err)
	_, err = n.AddTransition(Transition{From: q1.ID, To: q2.ID, Symbols: []string{"a"}})
	assert.NoError(err)

	ok, err := n.Accepts("a")
	assert.NoError(err)
	assert.True(ok)
}

func TestNFA_AcceptanceRequiresFullInput(t *testing.T) {
	assert := assert.New(t)

	// q0 --a--> q1(final); q1 has no transitions at all.
	n := NewNFA()
	q0 := n.AddState(State{Name: "q0"})
	q1 := n.AddState(State{Name: "q1", IsFinal: true})
	_, err := n.AddTransition(Transition{From: q0.ID, To: q1.ID, Symbols: []string{"a"}})
	assert.NoError(err)

	assert.NoError(n.InitSimulation("ab"))
	assert.NoError(n.Run(0))
	assert.Equal(Rejected, n.Verdict())
}

func TestNFA_ToDFA(t *testing.T) {
	assert := assert.New(t)

	n, _, _ := buildABStarA(t)
	d, err := n.ToDFA()
	assert.NoError(err)

	r := d.Validate()
	assert.Empty(r.Errors)

	for _, tc := range []struct {
		input  string
		expect bool
	}{
		{"", false},
		{"a", true},
		{"b", false},
		{"abba", true},
		{"abab", false},
	} {
		actual, err := d.Accepts(tc.input)
		assert.NoError(err)
		assert.Equalf(tc.expect, actual, "input %q", tc.input)
	}
}

func TestNFA_Validate(t *testing.T) {
	t.Run("no initial state is an error", func(t *testing.T) {
		assert := assert.New(t)
		n := NewNFA()
		n.states = map[int]*State{}
		r := n.Validate()
		assert.False(r.OK())
	})

	t.Run("unreachable state is a warning", func(t *testing.T) {
		assert := assert.New(t)
		n := NewNFA()
		n.AddState(State{Name: "q0"})
		n.AddState(State{Name: "q1"})

		r := n.Validate()
		assert.True(r.OK())
		assert.NotEmpty(r.Warnings)
	})
}
