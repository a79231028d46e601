package automaton

import "fmt"

// pdaConfig is one element of a PDA simulation's configuration set: the
// state it's in, its stack (top at index len-1), and how far into the
// input it has read. Unlike DFA/NFA, a PDA simulation can have many
// configurations alive at once with no shared "current position" -- two
// configs can be at different points in the input after the same Step.
type pdaConfig struct {
	state      int
	stack      []string
	inputIndex int
}

// PDA is a nondeterministic pushdown automaton: transitions are guarded by
// an input symbol (or epsilon) and an optional required stack-top symbol,
// and may push a symbol in response. A simulation tracks a set of
// configurations rather than one state, the same shape as NFA's active
// set but carrying a stack and an independent input position per member
// (§4.4). No direct analogue exists in the teacher's automaton package;
// the active-set/Step/Validate shape is adapted from NFA's.
type PDA struct {
	*base

	initialStackSymbol string
	acceptByFinalState bool
	acceptByEmptyStack bool

	active  []pdaConfig
	symbols []string
}

// NewPDA creates an empty PDA that accepts by final state, with "Z" as the
// default initial stack symbol (§6).
func NewPDA() *PDA {
	p := &PDA{
		base:                newBase(KindPDA),
		initialStackSymbol:  "Z",
		acceptByFinalState:  true,
	}
	p.base.owner = p
	return p
}

// SetAcceptMode configures which acceptance conditions are live. At least
// one should be true for the PDA to ever accept; both may be set.
func (p *PDA) SetAcceptMode(byFinalState, byEmptyStack bool) {
	p.acceptByFinalState = byFinalState
	p.acceptByEmptyStack = byEmptyStack
	p.pushHistory()
}

// SetInitialStackSymbol changes the symbol placed on the stack at the
// start of a simulation.
func (p *PDA) SetInitialStackSymbol(sym string) {
	p.initialStackSymbol = sym
	p.pushHistory()
}

func (p *PDA) stackAlphabet() []string {
	set := map[string]bool{}
	if p.initialStackSymbol != "" {
		set[p.initialStackSymbol] = true
	}
	for _, t := range p.Transitions() {
		if t.StackRead != "" {
			set[t.StackRead] = true
		}
		if t.StackWrite != "" {
			set[t.StackWrite] = true
		}
	}
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	return out
}

func (p *PDA) ToStructured() StructuredAutomaton {
	return StructuredAutomaton{
		Type:               string(KindPDA),
		States:             statesToStructured(p.States()),
		Transitions:        transitionsToStructured(p.Transitions()),
		Alphabet:           p.Alphabet(),
		InitialStateID:     p.initialID,
		InitialStackSymbol: p.initialStackSymbol,
		AcceptByFinalState: p.acceptByFinalState,
		AcceptByEmptyStack: p.acceptByEmptyStack,
		StackAlphabet:      p.stackAlphabet(),
	}
}

// LoadPDA rebuilds a PDA from its structured form. Per §4.1, this does not
// push a history entry.
func LoadPDA(s StructuredAutomaton) (*PDA, error) {
	b, err := baseFromStructured(KindPDA, s)
	if err != nil {
		return nil, err
	}
	p := &PDA{
		base:                b,
		initialStackSymbol:  s.InitialStackSymbol,
		acceptByFinalState:  s.AcceptByFinalState,
		acceptByEmptyStack:  s.AcceptByEmptyStack,
	}
	p.base.owner = p
	return p, nil
}

func (p *PDA) encodeSnapshot() []byte {
	return p.ToStructured().EncodeBinary()
}

func (p *PDA) decodeSnapshot(data []byte) error {
	s, err := DecodeStructuredBinary(data)
	if err != nil {
		return err
	}
	restored, err := LoadPDA(s)
	if err != nil {
		return err
	}
	p.base.loadGraphFrom(restored.base)
	p.initialStackSymbol = restored.initialStackSymbol
	p.acceptByFinalState = restored.acceptByFinalState
	p.acceptByEmptyStack = restored.acceptByEmptyStack
	p.active = nil
	return nil
}

// Validate checks for an initial state and at least one live accept mode;
// unlike DFA/NFA it never flags a transition shape as an error since every
// field (input symbol, stack read, stack write) is independently optional.
func (p *PDA) Validate() ValidationResult {
	var r ValidationResult

	if _, ok := p.InitialState(); !ok {
		r.Errors = append(r.Errors, "no initial state")
	}
	if !p.acceptByFinalState && !p.acceptByEmptyStack {
		r.Errors = append(r.Errors, "PDA must accept by final state, by empty stack, or both")
	}
	if p.initialStackSymbol == "" {
		r.Warnings = append(r.Warnings, "initial stack symbol is empty")
	}

	return r
}

// InitSimulation resets simulation state to a single configuration: the
// initial state, a stack holding just the initial stack symbol, and the
// input position at 0.
func (p *PDA) InitSimulation(input string) error {
	initial, ok := p.InitialState()
	if !ok {
		return fmt.Errorf("cannot start simulation: no initial state")
	}
	p.resetSim()
	p.input = input
	p.symbols = splitInputSymbols(input)

	var stack []string
	if p.initialStackSymbol != "" {
		stack = []string{p.initialStackSymbol}
	}
	p.active = []pdaConfig{{state: initial.ID, stack: stack, inputIndex: 0}}
	p.runningFlag = true

	p.trace = append(p.trace, TraceStep{
		StepIndex:      0,
		ActiveStates:   p.activeStateNames(),
		RemainingInput: input,
		Stack:          reverseCopy(stack),
		Description:    "start",
	})
	return nil
}

func (p *PDA) activeStateNames() []string {
	out := make([]string, 0, len(p.active))
	for _, cfg := range p.active {
		st, _ := p.GetState(cfg.state)
		out = append(out, stateName(st))
	}
	return out
}

// reverseCopy returns stack with the top first, for display purposes
// (internally top is stack[len(stack)-1]).
func reverseCopy(stack []string) []string {
	out := make([]string, len(stack))
	for i, s := range stack {
		out[len(stack)-1-i] = s
	}
	return out
}

// accepts reports whether cfg, with no input left to read, satisfies the
// PDA's configured acceptance mode(s).
func (p *PDA) accepts(cfg pdaConfig) bool {
	if cfg.inputIndex != len(p.symbols) {
		return false
	}
	if p.acceptByFinalState {
		if st, ok := p.GetState(cfg.state); ok && st.IsFinal {
			return true
		}
	}
	if p.acceptByEmptyStack && len(cfg.stack) == 0 {
		return true
	}
	return false
}

// Step expands every live configuration by one applicable transition
// (epsilon, or consuming the next input symbol), replacing the active set
// with the union of successors. Per §9, acceptance is a step-time side
// effect: the instant any successor configuration satisfies the accept
// mode, Step records Accepted and stops, without generating or exploring
// any further successors for that step.
func (p *PDA) Step() error {
	if !p.runningFlag {
		return fmt.Errorf("simulation is not running")
	}
	p.clearHighlights()

	for _, cfg := range p.active {
		if p.accepts(cfg) {
			p.verdictVal = Accepted
			p.runningFlag = false
			p.trace = append(p.trace, TraceStep{
				StepIndex:      len(p.trace),
				ActiveStates:   p.activeStateNames(),
				RemainingInput: "",
				Stack:          reverseCopy(cfg.stack),
				Description:    "accepted",
			})
			return nil
		}
	}

	var next []pdaConfig
	seen := map[string]bool{}

	for _, cfg := range p.active {
		for _, t := range p.GetTransitionsFrom(cfg.state) {
			succ, ok := p.apply(cfg, t)
			if !ok {
				continue
			}
			if live, ok := p.transitions[t.ID]; ok {
				live.Highlighted = true
			}

			if p.accepts(succ) {
				p.active = []pdaConfig{succ}
				p.verdictVal = Accepted
				p.runningFlag = false
				p.trace = append(p.trace, TraceStep{
					StepIndex:      len(p.trace),
					ActiveStates:   p.activeStateNames(),
					RemainingInput: "",
					Stack:          reverseCopy(succ.stack),
					Description:    "accepted",
				})
				return nil
			}

			key := pdaConfigKey(succ)
			if !seen[key] {
				seen[key] = true
				next = append(next, succ)
			}
		}
	}

	if len(next) == 0 {
		p.verdictVal = Rejected
		p.runningFlag = false
		p.active = nil
		p.trace = append(p.trace, TraceStep{
			StepIndex:      len(p.trace),
			RemainingInput: p.remainingInput(),
			Description:    "no configuration survives, rejected",
		})
		return nil
	}

	p.active = next
	p.trace = append(p.trace, TraceStep{
		StepIndex:      len(p.trace),
		ActiveStates:   p.activeStateNames(),
		RemainingInput: p.remainingInput(),
		Stack:          reverseCopy(next[0].stack),
		Description:    fmt.Sprintf("%d live configuration(s)", len(next)),
	})
	return nil
}

func (p *PDA) remainingInput() string {
	if p.active == nil {
		return ""
	}
	idx := p.active[0].inputIndex
	if idx >= len(p.symbols) {
		return ""
	}
	out := ""
	for _, s := range p.symbols[idx:] {
		out += s
	}
	return out
}

// apply tries to fire t from cfg, returning the successor configuration and
// whether t was applicable at all (wrong input symbol or stack-top
// mismatch means not applicable).
func (p *PDA) apply(cfg pdaConfig, t Transition) (pdaConfig, bool) {
	if t.InputSymbol != "" {
		if cfg.inputIndex >= len(p.symbols) || p.symbols[cfg.inputIndex] != t.InputSymbol {
			return pdaConfig{}, false
		}
	}

	stack := cfg.stack
	if t.StackRead != "" {
		if len(stack) == 0 || stack[len(stack)-1] != t.StackRead {
			return pdaConfig{}, false
		}
		stack = stack[:len(stack)-1]
	}

	newStack := append([]string(nil), stack...)
	if t.StackWrite != "" {
		newStack = append(newStack, t.StackWrite)
	}

	newIndex := cfg.inputIndex
	if t.InputSymbol != "" {
		newIndex++
	}

	return pdaConfig{state: t.To, stack: newStack, inputIndex: newIndex}, true
}

func pdaConfigKey(cfg pdaConfig) string {
	key := fmt.Sprintf("%d/%d/", cfg.state, cfg.inputIndex)
	for _, s := range cfg.stack {
		key += s + ","
	}
	return key
}

// CheckAcceptance reports Accepted if any live configuration currently
// satisfies the accept mode with no input left, Rejected if the active set
// is empty or every configuration has read all input without accepting,
// Undecided otherwise (some configuration still has input to read).
func (p *PDA) CheckAcceptance() Verdict {
	if len(p.active) == 0 {
		return Rejected
	}
	for _, cfg := range p.active {
		if p.accepts(cfg) {
			return Accepted
		}
	}
	for _, cfg := range p.active {
		if cfg.inputIndex != len(p.symbols) {
			return Undecided
		}
	}
	return Rejected
}

// Run steps the simulation until it produces a verdict or maxSteps is
// exceeded, whichever comes first. maxSteps <= 0 means unlimited.
func (p *PDA) Run(maxSteps int) error {
	for steps := 0; p.runningFlag; steps++ {
		if maxSteps > 0 && steps >= maxSteps {
			return fmt.Errorf("exceeded %d steps without reaching a verdict", maxSteps)
		}
		if err := p.Step(); err != nil {
			return err
		}
	}
	return nil
}

// Accepts runs input to completion on a fresh simulation and reports
// whether it was accepted, without disturbing any simulation already in
// progress on p.
func (p *PDA) Accepts(input string) (bool, error) {
	saved := *p.base
	savedActive := p.active
	savedSymbols := p.symbols
	defer func() {
		*p.base = saved
		p.active = savedActive
		p.symbols = savedSymbols
		p.clearHighlights()
	}()

	if err := p.InitSimulation(input); err != nil {
		return false, err
	}
	if err := p.Run(0); err != nil {
		return false, err
	}
	return p.verdictVal == Accepted, nil
}
