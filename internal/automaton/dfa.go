package automaton

import "fmt"

// DFA is a deterministic finite automaton: at most one transition per
// (state, symbol) pair, no epsilon moves, and exactly one active state at
// any point in a simulation. Grounded on ictiobus/automaton.go's DFA[E],
// generalized from string-keyed to integer-identified states (§4.2).
type DFA struct {
	*base

	// current is the active state's ID once a simulation is running; 0
	// before InitSimulation. It is not cleared when the simulation reaches
	// a verdict.
	current int
	symbols []string
}

// NewDFA creates an empty DFA with no states.
func NewDFA() *DFA {
	d := &DFA{base: newBase(KindDFA)}
	d.base.owner = d
	return d
}

func (d *DFA) ToStructured() StructuredAutomaton {
	return StructuredAutomaton{
		Type:           string(KindDFA),
		States:         statesToStructured(d.States()),
		Transitions:    transitionsToStructured(d.Transitions()),
		Alphabet:       d.Alphabet(),
		InitialStateID: d.initialID,
	}
}

// LoadDFA rebuilds a DFA from its structured form. Per §4.1, this does not
// push a history entry.
func LoadDFA(s StructuredAutomaton) (*DFA, error) {
	b, err := baseFromStructured(KindDFA, s)
	if err != nil {
		return nil, err
	}
	d := &DFA{base: b}
	d.base.owner = d
	return d, nil
}

func (d *DFA) encodeSnapshot() []byte {
	return d.ToStructured().EncodeBinary()
}

func (d *DFA) decodeSnapshot(data []byte) error {
	s, err := DecodeStructuredBinary(data)
	if err != nil {
		return err
	}
	restored, err := LoadDFA(s)
	if err != nil {
		return err
	}
	d.base.loadGraphFrom(restored.base)
	d.current = 0
	return nil
}

// Validate checks §7's DFA-specific well-formedness rules: determinism (at
// most one transition per state/symbol), no epsilon transitions, and an
// initial state. Warnings cover incompleteness (a state missing a
// transition for some alphabet symbol) and unreachability.
//
// The unreachable-state warning counts only non-initial states, regardless
// of whether some other unreachable state happens to have an edge into
// them -- reachability is always measured from the initial state by
// forward BFS, per the open question recorded in DESIGN.md.
func (d *DFA) Validate() ValidationResult {
	var r ValidationResult

	initial, hasInitial := d.InitialState()
	if !hasInitial {
		r.Errors = append(r.Errors, "no initial state")
	}

	seen := map[string]bool{} // "stateID/symbol"
	for _, t := range d.Transitions() {
		if t.IsEpsilon() {
			r.Errors = append(r.Errors, fmt.Sprintf("transition %d: DFA cannot have an epsilon transition", t.ID))
			continue
		}
		if len(t.Symbols) != 1 {
			r.Errors = append(r.Errors, fmt.Sprintf("transition %d: DFA transition must name exactly one symbol", t.ID))
			continue
		}
		key := fmt.Sprintf("%d/%s", t.From, t.Symbols[0])
		if seen[key] {
			r.Errors = append(r.Errors, fmt.Sprintf("state %d has more than one transition on symbol %q", t.From, t.Symbols[0]))
		}
		seen[key] = true
	}

	alphabet := d.Alphabet()
	for _, st := range d.States() {
		for _, sym := range alphabet {
			if !seen[fmt.Sprintf("%d/%s", st.ID, sym)] {
				r.Warnings = append(r.Warnings, fmt.Sprintf("state %s has no transition on symbol %q (incomplete DFA)", stateName(st), sym))
			}
		}
	}

	if hasInitial {
		reachable := d.reachableFrom(initial.ID)
		for _, st := range d.States() {
			if st.ID == initial.ID {
				continue
			}
			if !reachable[st.ID] {
				r.Warnings = append(r.Warnings, fmt.Sprintf("state %s is unreachable from the initial state", stateName(st)))
			}
		}
	}

	return r
}

func (d *DFA) reachableFrom(start int) map[int]bool {
	reachable := map[int]bool{start: true}
	queue := []int{start}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, t := range d.GetTransitionsFrom(id) {
			if !reachable[t.To] {
				reachable[t.To] = true
				queue = append(queue, t.To)
			}
		}
	}
	return reachable
}

// InitSimulation resets simulation state and places the DFA in its initial
// state, ready to consume input one rune at a time.
func (d *DFA) InitSimulation(input string) error {
	initial, ok := d.InitialState()
	if !ok {
		return fmt.Errorf("cannot start simulation: no initial state")
	}
	d.resetSim()
	d.input = input
	d.symbols = splitInputSymbols(input)
	d.current = initial.ID
	d.runningFlag = true
	d.trace = append(d.trace, TraceStep{
		StepIndex:      0,
		ActiveStates:   []string{stateName(initial)},
		RemainingInput: input,
		Description:    "start",
	})
	return nil
}

// Step consumes the next input symbol, following the unique matching
// transition out of the current state. With no input left, it decides
// acceptance from CheckAcceptance and stops the simulation.
func (d *DFA) Step() error {
	if !d.runningFlag {
		return fmt.Errorf("simulation is not running")
	}
	d.clearHighlights()

	if d.cursor >= len(d.symbols) {
		d.verdictVal = d.CheckAcceptance()
		d.runningFlag = false
		cur, _ := d.GetState(d.current)
		d.trace = append(d.trace, TraceStep{
			StepIndex:      len(d.trace),
			ActiveStates:   []string{stateName(cur)},
			RemainingInput: "",
			Description:    fmt.Sprintf("no input remaining, %s", d.verdictVal),
		})
		return nil
	}

	sym := d.symbols[d.cursor]
	var next *Transition
	for _, t := range d.GetTransitionsFrom(d.current) {
		if t.AcceptsSymbol(sym) {
			tt := t
			next = &tt
			break
		}
	}
	if next == nil {
		d.verdictVal = Rejected
		d.runningFlag = false
		d.trace = append(d.trace, TraceStep{
			StepIndex:      len(d.trace),
			RemainingInput: string(d.input[byteOffset(d.symbols, d.cursor):]),
			CurrentSymbol:  sym,
			Description:    fmt.Sprintf("no transition on %q, rejected", sym),
		})
		return nil
	}

	if live, ok := d.transitions[next.ID]; ok {
		live.Highlighted = true
	}
	d.current = next.To
	d.cursor++

	toState, _ := d.GetState(d.current)
	d.trace = append(d.trace, TraceStep{
		StepIndex:      len(d.trace),
		ActiveStates:   []string{stateName(toState)},
		RemainingInput: string(d.input[byteOffset(d.symbols, d.cursor):]),
		CurrentSymbol:  sym,
		Description:    fmt.Sprintf("read %q, move to %s", sym, stateName(toState)),
	})
	return nil
}

// byteOffset returns the byte offset of the rune at index i within the
// original string that symbols was split from.
func byteOffset(symbols []string, i int) int {
	off := 0
	for j := 0; j < i && j < len(symbols); j++ {
		off += len(symbols[j])
	}
	return off
}

// CheckAcceptance reports the verdict for the current state without
// advancing the simulation: Accepted if the active state is final,
// Rejected otherwise.
func (d *DFA) CheckAcceptance() Verdict {
	st, ok := d.GetState(d.current)
	if !ok || !st.IsFinal {
		return Rejected
	}
	return Accepted
}

// Run steps the simulation until it produces a verdict or maxSteps is
// exceeded, whichever comes first. maxSteps <= 0 means unlimited.
func (d *DFA) Run(maxSteps int) error {
	for steps := 0; d.runningFlag; steps++ {
		if maxSteps > 0 && steps >= maxSteps {
			return fmt.Errorf("exceeded %d steps without reaching a verdict", maxSteps)
		}
		if err := d.Step(); err != nil {
			return err
		}
	}
	return nil
}

// Accepts runs input to completion on a fresh simulation and reports
// whether it was accepted, without disturbing any simulation already in
// progress on d.
func (d *DFA) Accepts(input string) (bool, error) {
	saved := *d.base
	savedCurrent := d.current
	savedSymbols := d.symbols
	defer func() {
		*d.base = saved
		d.current = savedCurrent
		d.symbols = savedSymbols
		d.clearHighlights()
	}()

	if err := d.InitSimulation(input); err != nil {
		return false, err
	}
	if err := d.Run(0); err != nil {
		return false, err
	}
	return d.verdictVal == Accepted, nil
}

// ToNFA returns an NFA with identical states and transitions, useful as a
// starting point for algorithms that operate uniformly on the
// nondeterministic model (every DFA is trivially an NFA).
func (d *DFA) ToNFA() *NFA {
	n := NewNFA()
	for _, st := range d.States() {
		n.AddState(st)
	}
	for _, t := range d.Transitions() {
		_, _ = n.AddTransition(t)
	}
	return n
}
