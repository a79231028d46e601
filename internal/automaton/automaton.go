// Package automaton implements the four classical machine models --
// deterministic and nondeterministic finite automata, pushdown automata, and
// single-tape Turing machines -- behind a single shared contract (§4.1), plus
// the structured and interchange-XML serialization forms of §6.
package automaton

import (
	"fmt"

	"github.com/brannigan/finautomata/internal/util"
)

// Kind identifies which of the four operational semantics an automaton
// implements.
type Kind string

const (
	KindDFA Kind = "dfa"
	KindNFA Kind = "nfa"
	KindPDA Kind = "pda"
	KindTM  Kind = "tm"
)

// Verdict is the tri-valued acceptance result of a simulation run.
type Verdict int

const (
	Undecided Verdict = iota
	Accepted
	Rejected
)

func (v Verdict) String() string {
	switch v {
	case Accepted:
		return "accepted"
	case Rejected:
		return "rejected"
	default:
		return "undecided"
	}
}

// TraceStep is one entry in a simulation's step-by-step trace (§3).
type TraceStep struct {
	StepIndex      int
	ActiveStates   []string
	RemainingInput string
	CurrentSymbol  string
	Description    string

	// Stack is populated for PDA traces (the canonical display stack, i.e.
	// that of the first active configuration).
	Stack []string

	// Tape/HeadPos are populated for TM traces.
	Tape    string
	HeadPos int
}

// ValidationResult is the output of Validate (§4.1, §7): a well-formed
// model may still carry warnings, but Errors being non-empty means the
// model does not meet its declared type's contract.
type ValidationResult struct {
	Errors   []string
	Warnings []string
}

// OK reports whether the model has no validation errors. Warnings do not
// affect OK.
func (r ValidationResult) OK() bool {
	return len(r.Errors) == 0
}

// Machine is the shared contract every one of the four variants satisfies
// (§4.1, §9: "a tagged sum with a shared interface"). Kind distinguishes the
// concrete operational semantics; callers that need variant-specific
// behavior (e.g. PDA's accept-mode flags) type-switch on the concrete type
// after checking Kind.
type Machine interface {
	Kind() Kind

	// Graph mutation, common to all four variants.
	AddState(s State) State
	RemoveState(id int)
	AddTransition(t Transition) (Transition, error)
	RemoveTransition(id int)
	SetInitialState(id int) error
	Clear()

	// Graph queries.
	States() []State
	GetState(id int) (State, bool)
	Transitions() []Transition
	GetTransitionsFrom(id int) []Transition
	GetTransitionsTo(id int) []Transition
	GetTransitionsBetween(from, to int) []Transition
	GetFinalStates() []State
	InitialState() (State, bool)
	Alphabet() []string

	// History.
	Undo() bool
	Redo() bool

	// Per-variant simulation semantics.
	Validate() ValidationResult
	InitSimulation(input string) error
	Step() error
	CheckAcceptance() Verdict
	Run(maxSteps int) error
	Accepts(input string) (bool, error)

	// Simulation introspection, for the renderer/driver.
	Trace() []TraceStep
	Verdict() Verdict
	Running() bool

	// Serialization.
	ToStructured() StructuredAutomaton
}

// snapshotRestorer is the unexported half of a variant's snapshot/restore
// support for base's undo/redo history: encodeSnapshot captures everything
// (base's graph plus the variant's own fields), decodeSnapshot replaces it
// all in place. Each variant constructor sets base.owner to itself.
type snapshotRestorer interface {
	encodeSnapshot() []byte
	decodeSnapshot(data []byte) error
}

// base holds everything common to all four variants: the flat state/
// transition stores, the derived alphabet, the initial-state reference,
// identity counters, undo history, and the simulation-state fields common to
// every model (input, cursor, verdict, running flag, trace). Each variant
// embeds *base and implements the rest of Machine itself.
//
// Mirrors the flat map[string]DFAState/NFAState stores in
// ictiobus/automaton/automaton.go, generalized from string-keyed states to
// integer identities so that renaming a state never invalidates a
// transition's endpoints.
type base struct {
	kind Kind

	states     map[int]*State
	stateOrder []int

	transitions map[int]*Transition
	transOrder  []int

	alphabetSet util.StringSet

	initialID   int // 0 means "no initial state"; real IDs start at 1
	nextStateID int
	nextTransID int

	past   [][]byte
	future [][]byte

	// owner is set by the concrete variant's constructor to itself, so that
	// base can push/pop full structured snapshots through the variant's own
	// ToStructured/load methods without knowing the variant-specific fields
	// (stack defaults, blank symbol, accept flags, ...) that belong to it.
	owner snapshotRestorer

	// simulation state, common shape across variants (contents differ only
	// in what "active configuration" means to each one).
	input       string
	cursor      int
	verdictVal  Verdict
	runningFlag bool
	trace       []TraceStep
}

const historyCap = 50

func newBase(k Kind) *base {
	return &base{
		kind:        k,
		states:      map[int]*State{},
		transitions: map[int]*Transition{},
		alphabetSet: util.NewStringSet(),
		initialID:   0,
		nextStateID: 1,
		nextTransID: 1,
	}
}

func (b *base) Kind() Kind { return b.kind }

func (b *base) AddState(s State) State {
	if s.ID == 0 {
		s.ID = b.nextStateID
	}
	if s.ID >= b.nextStateID {
		b.nextStateID = s.ID + 1
	}
	if len(b.states) == 0 {
		s.IsInitial = true
	}
	if s.IsInitial {
		for _, id := range b.stateOrder {
			b.states[id].IsInitial = false
		}
		b.initialID = s.ID
	}
	stored := s
	b.states[s.ID] = &stored
	b.stateOrder = append(b.stateOrder, s.ID)
	b.pushHistory()
	return stored
}

func (b *base) RemoveState(id int) {
	if _, ok := b.states[id]; !ok {
		return
	}
	delete(b.states, id)
	b.stateOrder = removeInt(b.stateOrder, id)

	for _, tid := range append([]int(nil), b.transOrder...) {
		t := b.transitions[tid]
		if t.From == id || t.To == id {
			delete(b.transitions, tid)
			b.transOrder = removeInt(b.transOrder, tid)
		}
	}

	if b.initialID == id {
		b.initialID = 0
		if len(b.stateOrder) > 0 {
			firstID := b.stateOrder[0]
			b.states[firstID].IsInitial = true
			b.initialID = firstID
		}
	}
	b.pushHistory()
}

func (b *base) AddTransition(t Transition) (Transition, error) {
	if _, ok := b.states[t.From]; !ok {
		return Transition{}, fmt.Errorf("add transition from non-existent state %d", t.From)
	}
	if _, ok := b.states[t.To]; !ok {
		return Transition{}, fmt.Errorf("add transition to non-existent state %d", t.To)
	}
	if t.ID == 0 {
		t.ID = b.nextTransID
	}
	if t.ID >= b.nextTransID {
		b.nextTransID = t.ID + 1
	}
	stored := t
	b.transitions[t.ID] = &stored
	b.transOrder = append(b.transOrder, t.ID)

	for _, sym := range t.Symbols {
		if sym != "" {
			b.alphabetSet.Add(sym)
		}
	}
	if t.InputSymbol != "" {
		b.alphabetSet.Add(t.InputSymbol)
	}

	b.pushHistory()
	return stored, nil
}

func (b *base) RemoveTransition(id int) {
	if _, ok := b.transitions[id]; !ok {
		return
	}
	delete(b.transitions, id)
	b.transOrder = removeInt(b.transOrder, id)
	b.pushHistory()
}

func (b *base) SetInitialState(id int) error {
	if _, ok := b.states[id]; !ok {
		return fmt.Errorf("no such state: %d", id)
	}
	for _, sid := range b.stateOrder {
		b.states[sid].IsInitial = false
	}
	b.states[id].IsInitial = true
	b.initialID = id
	b.pushHistory()
	return nil
}

func (b *base) Clear() {
	b.states = map[int]*State{}
	b.stateOrder = nil
	b.transitions = map[int]*Transition{}
	b.transOrder = nil
	b.alphabetSet = util.NewStringSet()
	b.initialID = 0
	b.nextStateID = 1
	b.nextTransID = 1
	b.past = nil
	b.future = nil
	b.resetSim()
	b.pushHistory()
}

func (b *base) States() []State {
	out := make([]State, 0, len(b.stateOrder))
	for _, id := range b.stateOrder {
		out = append(out, *b.states[id])
	}
	return out
}

func (b *base) GetState(id int) (State, bool) {
	s, ok := b.states[id]
	if !ok {
		return State{}, false
	}
	return *s, true
}

func (b *base) Transitions() []Transition {
	out := make([]Transition, 0, len(b.transOrder))
	for _, id := range b.transOrder {
		out = append(out, *b.transitions[id])
	}
	return out
}

func (b *base) GetTransitionsFrom(id int) []Transition {
	var out []Transition
	for _, tid := range b.transOrder {
		t := b.transitions[tid]
		if t.From == id {
			out = append(out, *t)
		}
	}
	return out
}

func (b *base) GetTransitionsTo(id int) []Transition {
	var out []Transition
	for _, tid := range b.transOrder {
		t := b.transitions[tid]
		if t.To == id {
			out = append(out, *t)
		}
	}
	return out
}

func (b *base) GetTransitionsBetween(from, to int) []Transition {
	var out []Transition
	for _, tid := range b.transOrder {
		t := b.transitions[tid]
		if t.From == from && t.To == to {
			out = append(out, *t)
		}
	}
	return out
}

func (b *base) GetFinalStates() []State {
	var out []State
	for _, id := range b.stateOrder {
		if b.states[id].IsFinal {
			out = append(out, *b.states[id])
		}
	}
	return out
}

func (b *base) InitialState() (State, bool) {
	if b.initialID == 0 {
		return State{}, false
	}
	return *b.states[b.initialID], true
}

func (b *base) Alphabet() []string {
	return b.alphabetSet.Elements()
}

func (b *base) Trace() []TraceStep { return b.trace }
func (b *base) Verdict() Verdict   { return b.verdictVal }
func (b *base) Running() bool      { return b.runningFlag }

func (b *base) resetSim() {
	b.input = ""
	b.cursor = 0
	b.verdictVal = Undecided
	b.runningFlag = false
	b.trace = nil
	b.clearHighlights()
}

func (b *base) clearHighlights() {
	for _, tid := range b.transOrder {
		b.transitions[tid].Highlighted = false
	}
}

// pushHistory snapshots the automaton after a mutation, per §4.1: "each
// mutating operation ... pushes a full snapshot; history is capped at ~50
// entries, FIFO eviction". Loading from serialization must not call this
// (see ToStructured/FromStructured in serialize.go).
func (b *base) pushHistory() {
	if b.owner == nil {
		return
	}
	b.past = append(b.past, b.owner.encodeSnapshot())
	if len(b.past) > historyCap {
		b.past = b.past[len(b.past)-historyCap:]
	}
	b.future = nil
}

func (b *base) Undo() bool {
	if len(b.past) < 2 || b.owner == nil {
		return false
	}
	cur := b.past[len(b.past)-1]
	prev := b.past[len(b.past)-2]
	if err := b.owner.decodeSnapshot(prev); err != nil {
		return false
	}
	b.future = append(b.future, cur)
	b.past = b.past[:len(b.past)-1]
	return true
}

func (b *base) Redo() bool {
	if len(b.future) == 0 || b.owner == nil {
		return false
	}
	next := b.future[len(b.future)-1]
	if err := b.owner.decodeSnapshot(next); err != nil {
		return false
	}
	b.future = b.future[:len(b.future)-1]
	b.past = append(b.past, next)
	return true
}

// loadGraphFrom replaces b's graph and simulation state with o's, leaving
// b's own history (past/future) and owner untouched -- those belong to the
// Undo/Redo call in progress, not to the snapshot being loaded. Used by each
// variant's decodeSnapshot after rebuilding a fresh instance from structured
// form via FromStructuredX.
func (b *base) loadGraphFrom(o *base) {
	b.states = o.states
	b.stateOrder = o.stateOrder
	b.transitions = o.transitions
	b.transOrder = o.transOrder
	b.alphabetSet = o.alphabetSet
	b.initialID = o.initialID
	b.nextStateID = o.nextStateID
	b.nextTransID = o.nextTransID
	b.resetSim()
}

// splitInputSymbols breaks an input string into one symbol per rune. DFA,
// NFA, and PDA all consume input this way; a multi-character alphabet
// symbol is not supported by the §6 label grammars, so a rune is the
// natural unit.
func splitInputSymbols(s string) []string {
	runes := []rune(s)
	out := make([]string, len(runes))
	for i, r := range runes {
		out[i] = string(r)
	}
	return out
}

func stateName(st State) string {
	if st.Name != "" {
		return st.Name
	}
	return fmt.Sprintf("q%d", st.ID)
}

func removeInt(sl []int, v int) []int {
	out := sl[:0]
	for _, x := range sl {
		if x != v {
			out = append(out, x)
		}
	}
	return out
}
