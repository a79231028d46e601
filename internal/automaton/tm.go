package automaton

import (
	"fmt"
	"strconv"
	"strings"
)

// tape is a single-tape TM's storage: a growable window of cells addressed
// by a logical position, encapsulating the physical-vs-logical index
// translation so the rest of the package never has to reason about where
// cell 0 actually lives in the backing slice. Reading off either end
// returns blank without growing; writing off either end grows the slice,
// padding the new cells with blank.
type tape struct {
	cells  []string
	offset int // logical position of cells[0]
	blank  string
}

func newTape(input, blank string) *tape {
	cells := splitInputSymbols(input)
	if len(cells) == 0 {
		cells = []string{blank}
	}
	return &tape{cells: cells, blank: blank}
}

func (t *tape) read(pos int) string {
	idx := pos - t.offset
	if idx < 0 || idx >= len(t.cells) {
		return t.blank
	}
	return t.cells[idx]
}

func (t *tape) write(pos int, sym string) {
	idx := pos - t.offset
	switch {
	case idx < 0:
		grow := -idx
		extended := make([]string, grow, grow+len(t.cells))
		for i := range extended {
			extended[i] = t.blank
		}
		t.cells = append(extended, t.cells...)
		t.offset -= grow
		idx = pos - t.offset
	case idx >= len(t.cells):
		for len(t.cells) <= idx {
			t.cells = append(t.cells, t.blank)
		}
	}
	t.cells[idx] = sym
}

// String renders the tape's currently allocated window left to right.
func (t *tape) String() string {
	return strings.Join(t.cells, "")
}

// TM is a single-tape, deterministic Turing machine: one active (state,
// head position) configuration, stepping by reading the cell under the
// head, writing, moving, and transitioning. No direct analogue exists in
// the teacher's automaton package; the Step/Validate shape is adapted from
// DFA's, with a growable tape in place of an input cursor (§4.5).
type TM struct {
	*base

	blankSymbol string

	state int
	head  int
	tp    *tape
}

// NewTM creates an empty TM using Blank ("□") as its blank symbol.
func NewTM() *TM {
	t := &TM{base: newBase(KindTM), blankSymbol: Blank}
	t.base.owner = t
	return t
}

// SetBlankSymbol changes the symbol that reads as blank on cells the tape
// has never been written to.
func (t *TM) SetBlankSymbol(sym string) {
	t.blankSymbol = sym
	t.pushHistory()
}

func (t *TM) tapeAlphabet() []string {
	set := map[string]bool{}
	for _, tr := range t.Transitions() {
		if tr.ReadSymbol != "" {
			set[tr.ReadSymbol] = true
		}
		if tr.WriteSymbol != "" {
			set[tr.WriteSymbol] = true
		}
	}
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	return out
}

func (t *TM) ToStructured() StructuredAutomaton {
	return StructuredAutomaton{
		Type:           string(KindTM),
		States:         statesToStructured(t.States()),
		Transitions:    transitionsToStructured(t.Transitions()),
		Alphabet:       t.Alphabet(),
		InitialStateID: t.initialID,
		BlankSymbol:    t.blankSymbol,
		TapeAlphabet:   t.tapeAlphabet(),
	}
}

// LoadTM rebuilds a TM from its structured form. Per §4.1, this does not
// push a history entry.
func LoadTM(s StructuredAutomaton) (*TM, error) {
	b, err := baseFromStructured(KindTM, s)
	if err != nil {
		return nil, err
	}
	blank := s.BlankSymbol
	if blank == "" {
		blank = Blank
	}
	tm := &TM{base: b, blankSymbol: blank}
	tm.base.owner = tm
	return tm, nil
}

func (t *TM) encodeSnapshot() []byte {
	return t.ToStructured().EncodeBinary()
}

func (t *TM) decodeSnapshot(data []byte) error {
	s, err := DecodeStructuredBinary(data)
	if err != nil {
		return err
	}
	restored, err := LoadTM(s)
	if err != nil {
		return err
	}
	t.base.loadGraphFrom(restored.base)
	t.blankSymbol = restored.blankSymbol
	t.state = 0
	t.head = 0
	t.tp = nil
	return nil
}

// Validate checks for an initial state. A final state is not required --
// per §9, a TM that halts (no applicable transition) without being in a
// final state simply rejects, it isn't malformed. States with IsHalt set
// that have outgoing transitions are flagged, final or not, since IsHalt
// marks a dead end.
func (t *TM) Validate() ValidationResult {
	var r ValidationResult

	if _, ok := t.InitialState(); !ok {
		r.Errors = append(r.Errors, "no initial state")
	}

	for _, st := range t.States() {
		hasOut := len(t.GetTransitionsFrom(st.ID)) > 0
		if st.IsHalt && hasOut {
			r.Warnings = append(r.Warnings, fmt.Sprintf("state %s is marked halt but still has outgoing transitions", stateName(st)))
		}
		if !st.IsFinal && !hasOut && !st.IsHalt {
			r.Warnings = append(r.Warnings, fmt.Sprintf("state %s has no outgoing transitions and isn't marked final or halt", stateName(st)))
		}
	}

	return r
}

// InitSimulation writes input onto a fresh tape and places the head at
// position 0 in the initial state.
func (t *TM) InitSimulation(input string) error {
	initial, ok := t.InitialState()
	if !ok {
		return fmt.Errorf("cannot start simulation: no initial state")
	}
	t.resetSim()
	t.input = input
	t.tp = newTape(input, t.blankSymbol)
	t.head = 0
	t.state = initial.ID
	t.runningFlag = true

	t.trace = append(t.trace, TraceStep{
		StepIndex:   0,
		Tape:        t.tp.String(),
		HeadPos:     t.head,
		Description: "start",
	})
	return nil
}

// matchTransition finds the first transition out of state whose ReadSymbol
// matches sym, treating an empty ReadSymbol (normalized by ParseTMLabel)
// and any of isBlank's synonyms as the same blank token.
func (t *TM) matchTransition(state int, sym string) (Transition, bool) {
	for _, tr := range t.GetTransitionsFrom(state) {
		if tr.ReadSymbol == "" {
			if isBlank(sym, t.blankSymbol) {
				return tr, true
			}
			continue
		}
		if tr.ReadSymbol == sym {
			return tr, true
		}
	}
	return Transition{}, false
}

// Step reads the cell under the head, applies the first matching
// transition (write, move, retarget state), and appends a trace entry. If
// no transition matches, the machine halts: Accepted if the current state
// is final, Rejected otherwise -- IsHalt plays no part in that decision
// (§9). Step also runs the loop heuristic after advancing (§8).
func (t *TM) Step() error {
	if !t.runningFlag {
		return fmt.Errorf("simulation is not running")
	}
	t.clearHighlights()

	cur := t.tp.read(t.head)
	tr, ok := t.matchTransition(t.state, cur)
	if !ok {
		st, _ := t.GetState(t.state)
		if st.IsFinal {
			t.verdictVal = Accepted
		} else {
			t.verdictVal = Rejected
		}
		t.runningFlag = false
		t.trace = append(t.trace, TraceStep{
			StepIndex:   len(t.trace),
			Tape:        t.tp.String(),
			HeadPos:     t.head,
			Description: fmt.Sprintf("halted in %s, %s", stateName(st), t.verdictVal),
		})
		return nil
	}

	if live, ok := t.transitions[tr.ID]; ok {
		live.Highlighted = true
	}

	write := tr.WriteSymbol
	if write == "" {
		write = t.blankSymbol
	}
	t.tp.write(t.head, write)

	switch tr.Direction {
	case DirLeft:
		t.head--
	case DirRight:
		t.head++
	}
	t.state = tr.To

	toState, _ := t.GetState(t.state)
	t.trace = append(t.trace, TraceStep{
		StepIndex:   len(t.trace),
		ActiveStates: []string{stateName(toState)},
		Tape:        t.tp.String(),
		HeadPos:     t.head,
		Description: fmt.Sprintf("wrote %q, moved %s, now in %s", write, tr.Direction, stateName(toState)),
	})

	t.checkLoop()
	return nil
}

// checkLoop implements the loop heuristic of §8: once the trace is long
// enough to judge, look at the most recent 50 entries for a (state,
// head position, tape) triple that recurs more than twice. That many
// repeats of the exact same configuration is taken as a potential
// infinite loop, and the simulation is stopped with a rejection rather
// than run forever.
func (t *TM) checkLoop() {
	if len(t.trace) <= 100 {
		return
	}
	window := t.trace
	if len(window) > 50 {
		window = window[len(window)-50:]
	}

	key := func(s TraceStep) string {
		name := ""
		if len(s.ActiveStates) > 0 {
			name = s.ActiveStates[0]
		}
		return name + "|" + strconv.Itoa(s.HeadPos) + "|" + s.Tape
	}

	cur := key(window[len(window)-1])
	count := 0
	for _, s := range window {
		if key(s) == cur {
			count++
		}
	}
	if count > 2 {
		t.verdictVal = Rejected
		t.runningFlag = false
		t.trace = append(t.trace, TraceStep{
			StepIndex:   len(t.trace),
			Tape:        t.tp.String(),
			HeadPos:     t.head,
			Description: "potential infinite loop detected, rejected",
		})
	}
}

// CheckAcceptance reports the current verdict without advancing the
// simulation. While the machine is still running this is Undecided --
// unlike DFA/NFA/PDA, a TM's acceptance is only known once it halts.
func (t *TM) CheckAcceptance() Verdict {
	if t.runningFlag {
		return Undecided
	}
	return t.verdictVal
}

// Run steps the simulation until it halts or maxSteps is exceeded,
// whichever comes first. maxSteps <= 0 means unlimited; the run then also
// ends when checkLoop sees a (state, head, tape) configuration repeat, but a
// machine that never repeats one (e.g. moving right forever) never returns.
func (t *TM) Run(maxSteps int) error {
	for steps := 0; t.runningFlag; steps++ {
		if maxSteps > 0 && steps >= maxSteps {
			return fmt.Errorf("exceeded %d steps without halting", maxSteps)
		}
		if err := t.Step(); err != nil {
			return err
		}
	}
	return nil
}

// Accepts runs input to completion on a fresh simulation and reports
// whether it halted in a final state, without disturbing any simulation
// already in progress on t.
func (t *TM) Accepts(input string) (bool, error) {
	saved := *t.base
	savedState, savedHead, savedTape := t.state, t.head, t.tp
	defer func() {
		*t.base = saved
		t.state, t.head, t.tp = savedState, savedHead, savedTape
		t.clearHighlights()
	}()

	if err := t.InitSimulation(input); err != nil {
		return false, err
	}
	if err := t.Run(0); err != nil {
		return false, err
	}
	return t.verdictVal == Accepted, nil
}
