package automaton

import (
	"fmt"

	"github.com/dekarrin/rezi"

	"github.com/brannigan/finautomata/internal/util"
)

// StructuredAutomaton is the structured (§6) serialization form shared by
// all four variants: a flat states/transitions list plus the handful of
// per-Kind fields (TM's blank symbol, PDA's accept-mode flags, ...) that
// don't belong on every automaton. It round-trips through rezi's binary
// encoding the same way dao/sqlite stores a dao.Game or a dao.Session --
// one opaque blob per row/entry, decoded back into a typed value on load.
type StructuredAutomaton struct {
	Type           string
	States         []StructuredState
	Transitions    []StructuredTransition
	Alphabet       []string
	InitialStateID int

	// TM-specific.
	BlankSymbol  string
	TapeAlphabet []string

	// PDA-specific.
	InitialStackSymbol string
	AcceptByFinalState bool
	AcceptByEmptyStack bool
	StackAlphabet      []string
}

// StructuredState is a State flattened for serialization; identical shape,
// kept as its own type so StructuredAutomaton doesn't expose automaton.go's
// internal State directly to callers that only want the wire form.
type StructuredState struct {
	ID        int
	Name      string
	X, Y      float64
	IsInitial bool
	IsFinal   bool
	IsHalt    bool
}

// StructuredTransition is a Transition flattened for serialization.
type StructuredTransition struct {
	ID   int
	From int
	To   int

	Symbols []string

	InputSymbol string
	StackRead   string
	StackWrite  string

	ReadSymbol  string
	WriteSymbol string
	Direction   string

	ControlPoint Point
	LabelOffset  Point
}

func statesToStructured(states []State) []StructuredState {
	out := make([]StructuredState, 0, len(states))
	for _, s := range states {
		out = append(out, StructuredState{
			ID:        s.ID,
			Name:      s.Name,
			X:         s.X,
			Y:         s.Y,
			IsInitial: s.IsInitial,
			IsFinal:   s.IsFinal,
			IsHalt:    s.IsHalt,
		})
	}
	return out
}

func statesFromStructured(states []StructuredState) []State {
	out := make([]State, 0, len(states))
	for _, s := range states {
		out = append(out, State{
			ID:        s.ID,
			Name:      s.Name,
			X:         s.X,
			Y:         s.Y,
			IsInitial: s.IsInitial,
			IsFinal:   s.IsFinal,
			IsHalt:    s.IsHalt,
		})
	}
	return out
}

func transitionsToStructured(transitions []Transition) []StructuredTransition {
	out := make([]StructuredTransition, 0, len(transitions))
	for _, t := range transitions {
		out = append(out, StructuredTransition{
			ID:           t.ID,
			From:         t.From,
			To:           t.To,
			Symbols:      append([]string(nil), t.Symbols...),
			InputSymbol:  t.InputSymbol,
			StackRead:    t.StackRead,
			StackWrite:   t.StackWrite,
			ReadSymbol:   t.ReadSymbol,
			WriteSymbol:  t.WriteSymbol,
			Direction:    t.Direction.String(),
			ControlPoint: t.ControlPoint,
			LabelOffset:  t.LabelOffset,
		})
	}
	return out
}

func transitionsFromStructured(transitions []StructuredTransition) ([]Transition, error) {
	out := make([]Transition, 0, len(transitions))
	for _, t := range transitions {
		var dir Direction
		if t.Direction != "" {
			parsed, err := ParseDirection(t.Direction)
			if err != nil {
				return nil, fmt.Errorf("transition %d: %w", t.ID, err)
			}
			dir = parsed
		}
		out = append(out, Transition{
			ID:           t.ID,
			From:         t.From,
			To:           t.To,
			Symbols:      append([]string(nil), t.Symbols...),
			InputSymbol:  t.InputSymbol,
			StackRead:    t.StackRead,
			StackWrite:   t.StackWrite,
			ReadSymbol:   t.ReadSymbol,
			WriteSymbol:  t.WriteSymbol,
			Direction:    dir,
			ControlPoint: t.ControlPoint,
			LabelOffset:  t.LabelOffset,
		})
	}
	return out, nil
}

// baseFromStructured rebuilds a fresh *base from the state/transition/
// alphabet/initial-state portion of a StructuredAutomaton, common to all
// four Load* constructors. It never calls pushHistory -- loading from
// serialization is explicitly not an undoable edit (§4.1).
func baseFromStructured(k Kind, s StructuredAutomaton) (*base, error) {
	b := newBase(k)
	for _, st := range statesFromStructured(s.States) {
		stored := st
		b.states[st.ID] = &stored
		b.stateOrder = append(b.stateOrder, st.ID)
		if st.ID >= b.nextStateID {
			b.nextStateID = st.ID + 1
		}
	}
	transitions, err := transitionsFromStructured(s.Transitions)
	if err != nil {
		return nil, err
	}
	for _, t := range transitions {
		stored := t
		b.transitions[t.ID] = &stored
		b.transOrder = append(b.transOrder, t.ID)
		if t.ID >= b.nextTransID {
			b.nextTransID = t.ID + 1
		}
	}
	b.alphabetSet = util.NewStringSet(s.Alphabet)
	b.initialID = s.InitialStateID
	return b, nil
}

// EncodeBinary renders s to the binary form persisted by internal/store and
// used for each machine's undo-history snapshots (encodeSnapshot), via rezi --
// the same encoder server/dao/sqlite uses to put a dao.Game or dao.Session
// into a single TEXT column.
func (s StructuredAutomaton) EncodeBinary() []byte {
	return rezi.EncBinary(s)
}

// DecodeStructuredBinary is the inverse of EncodeBinary.
func DecodeStructuredBinary(data []byte) (StructuredAutomaton, error) {
	var s StructuredAutomaton
	if _, err := rezi.DecBinary(data, &s); err != nil {
		return StructuredAutomaton{}, fmt.Errorf("decode structured automaton: %w", err)
	}
	return s, nil
}

// FromStructured dispatches to the right variant's loader based on s.Type,
// returning the fully general Machine interface. Callers that need the
// concrete type (e.g. the PDA-specific accept-mode flags) should use the
// variant's own LoadX function instead.
func FromStructured(s StructuredAutomaton) (Machine, error) {
	switch Kind(s.Type) {
	case KindDFA:
		return LoadDFA(s)
	case KindNFA:
		return LoadNFA(s)
	case KindPDA:
		return LoadPDA(s)
	case KindTM:
		return LoadTM(s)
	default:
		return nil, fmt.Errorf("unknown automaton type: %q", s.Type)
	}
}
