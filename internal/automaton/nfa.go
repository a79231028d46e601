package automaton

import (
	"fmt"
	"sort"
	"strings"

	"github.com/brannigan/finautomata/internal/util"
)

// NFA is a nondeterministic finite automaton: any number of transitions per
// (state, symbol), plus epsilon moves. A simulation tracks a *set* of
// active states rather than one. Grounded on ictiobus/automaton.go's
// EpsilonClosure/MOVE/ToDFA (§4.3).
type NFA struct {
	*base

	active  map[int]bool
	symbols []string
}

// NewNFA creates an empty NFA with no states.
func NewNFA() *NFA {
	n := &NFA{base: newBase(KindNFA)}
	n.base.owner = n
	return n
}

func (n *NFA) ToStructured() StructuredAutomaton {
	return StructuredAutomaton{
		Type:           string(KindNFA),
		States:         statesToStructured(n.States()),
		Transitions:    transitionsToStructured(n.Transitions()),
		Alphabet:       n.Alphabet(),
		InitialStateID: n.initialID,
	}
}

// LoadNFA rebuilds an NFA from its structured form. Per §4.1, this does not
// push a history entry.
func LoadNFA(s StructuredAutomaton) (*NFA, error) {
	b, err := baseFromStructured(KindNFA, s)
	if err != nil {
		return nil, err
	}
	n := &NFA{base: b}
	n.base.owner = n
	return n, nil
}

func (n *NFA) encodeSnapshot() []byte {
	return n.ToStructured().EncodeBinary()
}

func (n *NFA) decodeSnapshot(data []byte) error {
	s, err := DecodeStructuredBinary(data)
	if err != nil {
		return err
	}
	restored, err := LoadNFA(s)
	if err != nil {
		return err
	}
	n.base.loadGraphFrom(restored.base)
	n.active = nil
	return nil
}

// Validate checks that the NFA has an initial state, and warns about states
// unreachable from it. Epsilon transitions and multiple transitions on the
// same symbol are legal for an NFA, so neither is an error here.
func (n *NFA) Validate() ValidationResult {
	var r ValidationResult

	initial, hasInitial := n.InitialState()
	if !hasInitial {
		r.Errors = append(r.Errors, "no initial state")
		return r
	}

	reachable := n.epsilonClosure(map[int]bool{initial.ID: true})
	queue := []int{initial.ID}
	seen := map[int]bool{initial.ID: true}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, t := range n.GetTransitionsFrom(id) {
			for to := range n.epsilonClosure(map[int]bool{t.To: true}) {
				reachable[to] = true
				if !seen[to] {
					seen[to] = true
					queue = append(queue, to)
				}
			}
		}
	}

	for _, st := range n.States() {
		if st.ID == initial.ID {
			continue
		}
		if !reachable[st.ID] {
			r.Warnings = append(r.Warnings, fmt.Sprintf("state %s is unreachable from the initial state", stateName(st)))
		}
	}

	return r
}

// epsilonClosure computes the set of states reachable from start purely by
// epsilon transitions, start included. A worklist/stack, not recursion --
// the same shape as ictiobus/automaton.go's EpsilonClosure.
func (n *NFA) epsilonClosure(start map[int]bool) map[int]bool {
	closure := map[int]bool{}
	var stack util.Stack[int]
	for id := range start {
		closure[id] = true
		stack.Push(id)
	}
	for !stack.Empty() {
		id := stack.Pop()
		for _, t := range n.GetTransitionsFrom(id) {
			if !t.IsEpsilon() {
				continue
			}
			if !closure[t.To] {
				closure[t.To] = true
				stack.Push(t.To)
			}
		}
	}
	return closure
}

// move returns the set of states reachable from any state in active by a
// single transition labeled with sym (epsilon transitions never match a
// real symbol).
func (n *NFA) move(active map[int]bool, sym string) map[int]bool {
	out := map[int]bool{}
	for id := range active {
		for _, t := range n.GetTransitionsFrom(id) {
			if !t.IsEpsilon() && t.AcceptsSymbol(sym) {
				out[t.To] = true
			}
		}
	}
	return out
}

func sortedIDs(set map[int]bool) []int {
	out := make([]int, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

func (n *NFA) activeStateNames() []string {
	ids := sortedIDs(n.active)
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		st, _ := n.GetState(id)
		out = append(out, stateName(st))
	}
	return out
}

// InitSimulation resets simulation state and sets the active set to the
// epsilon-closure of the initial state.
func (n *NFA) InitSimulation(input string) error {
	initial, ok := n.InitialState()
	if !ok {
		return fmt.Errorf("cannot start simulation: no initial state")
	}
	n.resetSim()
	n.input = input
	n.symbols = splitInputSymbols(input)
	n.active = n.epsilonClosure(map[int]bool{initial.ID: true})
	n.runningFlag = true
	n.trace = append(n.trace, TraceStep{
		StepIndex:      0,
		ActiveStates:   n.activeStateNames(),
		RemainingInput: input,
		Description:    "start",
	})
	return nil
}

// Step consumes the next input symbol, moving the active set forward by
// move-then-epsilon-closure. With no input left, it stops the simulation
// and records a verdict via CheckAcceptance.
func (n *NFA) Step() error {
	if !n.runningFlag {
		return fmt.Errorf("simulation is not running")
	}
	n.clearHighlights()

	if n.cursor >= len(n.symbols) {
		n.verdictVal = n.CheckAcceptance()
		n.runningFlag = false
		n.trace = append(n.trace, TraceStep{
			StepIndex:      len(n.trace),
			ActiveStates:   n.activeStateNames(),
			RemainingInput: "",
			Description:    fmt.Sprintf("no input remaining, %s", n.verdictVal),
		})
		return nil
	}

	sym := n.symbols[n.cursor]
	for id := range n.active {
		for _, t := range n.GetTransitionsFrom(id) {
			if !t.IsEpsilon() && t.AcceptsSymbol(sym) {
				if live, ok := n.transitions[t.ID]; ok {
					live.Highlighted = true
				}
			}
		}
	}

	moved := n.move(n.active, sym)
	n.active = n.epsilonClosure(moved)
	n.cursor++

	desc := fmt.Sprintf("read %q, active set %s", sym, setDescription(n.activeStateNames()))
	n.trace = append(n.trace, TraceStep{
		StepIndex:      len(n.trace),
		ActiveStates:   n.activeStateNames(),
		RemainingInput: string([]rune(n.input)[n.cursor:]),
		CurrentSymbol:  sym,
		Description:    desc,
	})
	return nil
}

func setDescription(names []string) string {
	if len(names) == 0 {
		return "{}"
	}
	return "{" + strings.Join(names, ", ") + "}"
}

// CheckAcceptance reports the verdict for the current active set. Per §9,
// acceptance requires the cursor to have reached the end of the input --
// an empty active set partway through input is not itself a verdict, the
// simulation still runs to completion before rejecting.
func (n *NFA) CheckAcceptance() Verdict {
	if n.cursor != len(n.symbols) {
		return Undecided
	}
	for id := range n.active {
		st, _ := n.GetState(id)
		if st.IsFinal {
			return Accepted
		}
	}
	return Rejected
}

// Run steps the simulation until it produces a verdict or maxSteps is
// exceeded, whichever comes first. maxSteps <= 0 means unlimited.
func (n *NFA) Run(maxSteps int) error {
	for steps := 0; n.runningFlag; steps++ {
		if maxSteps > 0 && steps >= maxSteps {
			return fmt.Errorf("exceeded %d steps without reaching a verdict", maxSteps)
		}
		if err := n.Step(); err != nil {
			return err
		}
	}
	return nil
}

// Accepts runs input to completion on a fresh simulation and reports
// whether it was accepted, without disturbing any simulation already in
// progress on n.
func (n *NFA) Accepts(input string) (bool, error) {
	saved := *n.base
	savedActive := n.active
	savedSymbols := n.symbols
	defer func() {
		*n.base = saved
		n.active = savedActive
		n.symbols = savedSymbols
		n.clearHighlights()
	}()

	if err := n.InitSimulation(input); err != nil {
		return false, err
	}
	if err := n.Run(0); err != nil {
		return false, err
	}
	return n.verdictVal == Accepted, nil
}

// ToDFA performs subset construction (purple-dragon-book algorithm 3.20):
// each reachable DFA state is the epsilon-closure of some set of NFA
// states, named by that set's sorted member names. No generic "value set"
// container is needed -- the NFA state IDs are already the payload, so a
// plain map[string]int from canonical subset name to assigned DFA state ID
// is enough to detect subsets already seen.
func (n *NFA) ToDFA() (*DFA, error) {
	initial, ok := n.InitialState()
	if !ok {
		return nil, fmt.Errorf("cannot convert to DFA: no initial state")
	}

	d := NewDFA()

	subsetID := map[string]int{} // canonical name -> DFA state ID
	nameOf := func(set map[int]bool) string {
		ids := sortedIDs(set)
		parts := make([]string, len(ids))
		for i, id := range ids {
			st, _ := n.GetState(id)
			parts[i] = stateName(st)
		}
		return setDescription(parts)
	}
	isFinalSet := func(set map[int]bool) bool {
		for id := range set {
			st, _ := n.GetState(id)
			if st.IsFinal {
				return true
			}
		}
		return false
	}

	startSet := n.epsilonClosure(map[int]bool{initial.ID: true})
	startName := nameOf(startSet)

	type pending struct {
		name string
		set  map[int]bool
	}
	queue := []pending{{startName, startSet}}
	visited := map[string]bool{startName: true}

	startState := d.AddState(State{Name: startName, IsInitial: true, IsFinal: isFinalSet(startSet)})
	subsetID[startName] = startState.ID

	alphabet := n.Alphabet()

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		for _, sym := range alphabet {
			nextSet := n.epsilonClosure(n.move(cur.set, sym))
			if len(nextSet) == 0 {
				continue
			}
			nextName := nameOf(nextSet)

			toID, exists := subsetID[nextName]
			if !exists {
				st := d.AddState(State{Name: nextName, IsFinal: isFinalSet(nextSet)})
				toID = st.ID
				subsetID[nextName] = toID
			}
			if _, err := d.AddTransition(Transition{From: subsetID[cur.name], To: toID, Symbols: []string{sym}}); err != nil {
				return nil, err
			}

			if !visited[nextName] {
				visited[nextName] = true
				queue = append(queue, pending{nextName, nextSet})
			}
		}
	}

	return d, nil
}
