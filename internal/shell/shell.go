// Package shell implements automatonctl's REPL: parsing one line of typed
// input into a verb and arguments, dispatching it against an in-memory
// automaton.Machine and its simulator.Driver, and reporting back through an
// output function.
//
// Grounded on cmd/tqi/main.go's read-eval-print shape and
// internal/command.Get's "read a line, parse it, report errors, try again"
// loop, generalized from a fixed game-command grammar to a small verb
// dispatch table since this domain's command set (state/trans/init/step/...)
// has no natural-language parsing to do.
package shell

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/dekarrin/rosed"
	"github.com/google/shlex"

	"github.com/brannigan/finautomata/internal/automaton"
	"github.com/brannigan/finautomata/internal/simulator"
	"github.com/brannigan/finautomata/internal/store/diskstore"
)

const outputWidth = 80

// Reader is satisfied by both of internal/input's reader types.
type Reader interface {
	ReadCommand() (string, error)
	Close() error
	AllowBlank(bool)
}

// Shell holds the REPL's live state: the machine under construction/edit and
// the driver wrapping it.
type Shell struct {
	Machine automaton.Machine
	Driver  *simulator.Driver

	out func(string)
}

// New creates a Shell over an already-built machine, writing output through
// out.
func New(m automaton.Machine, out func(string)) *Shell {
	s := &Shell{Machine: m, out: out}
	s.Driver = simulator.New(m)
	s.Driver.OnStepComplete = func(step automaton.TraceStep, verdict automaton.Verdict) {
		s.out(fmt.Sprintf("step %d: %s\n", step.StepIndex, step.Description))
	}
	s.Driver.OnSimulationComplete = func(verdict automaton.Verdict, err error) {
		if err != nil {
			s.out(fmt.Sprintf("simulation error: %s\n", err.Error()))
			return
		}
		s.out(fmt.Sprintf("simulation finished: %s\n", verdict))
	}
	return s
}

// ErrQuit is returned by Dispatch when the QUIT verb is entered.
var ErrQuit = fmt.Errorf("quit requested")

// Dispatch tokenizes line with shell-style quoting rules and runs the
// resulting verb against s. A blank line is a no-op.
func (s *Shell) Dispatch(line string) error {
	fields, err := shlex.Split(line)
	if err != nil {
		return fmt.Errorf("parsing command: %w", err)
	}
	if len(fields) == 0 {
		return nil
	}

	verb := strings.ToUpper(fields[0])
	args := fields[1:]

	switch verb {
	case "HELP":
		s.help()
	case "QUIT", "EXIT":
		return ErrQuit
	case "SHOW":
		s.show()
	case "VALIDATE":
		s.validate()
	case "STATE":
		return s.state(args)
	case "TRANS":
		return s.trans(args)
	case "INIT":
		return s.init(args)
	case "STEP":
		return s.step()
	case "RUN":
		return s.run()
	case "SPEED":
		return s.speed(args)
	case "PAUSE":
		s.Driver.Pause()
	case "RESUME":
		s.Driver.Resume()
	case "STOP":
		s.Driver.Stop()
	case "RESET":
		return s.Driver.Reset()
	case "TEST":
		return s.test(args)
	case "BATCH":
		return s.batch(args)
	case "SAVE":
		return s.save(args)
	case "UNDO":
		if !s.Machine.Undo() {
			s.out("nothing to undo\n")
		}
	case "REDO":
		if !s.Machine.Redo() {
			s.out("nothing to redo\n")
		}
	default:
		return fmt.Errorf("unrecognized command %q; try HELP", fields[0])
	}
	return nil
}

func (s *Shell) wrap(msg string) string {
	return rosed.Edit(msg).Wrap(outputWidth).String()
}

func (s *Shell) help() {
	s.out(s.wrap(strings.Join([]string{
		"Available commands:",
		"  STATE ADD <name> [initial] [final]  -- add a state",
		"  STATE RM <id>                        -- remove a state",
		"  TRANS ADD <from> <to> <symbols...>    -- add a DFA/NFA transition (epsilon for NFA: -)",
		"  TRANS PDA <from> <to> <in> <pop> <push> -- add a PDA transition",
		"  TRANS TM <from> <to> <read> <write> <L|R|S> -- add a TM transition",
		"  TRANS RM <id>                         -- remove a transition",
		"  SHOW                                  -- print states and transitions",
		"  VALIDATE                              -- run Validate and report errors/warnings",
		"  INIT <input>                          -- start a simulation over input",
		"  STEP                                  -- advance one step",
		"  RUN                                   -- auto-step to completion at the current speed",
		"  SPEED <1-10>                          -- set the auto-step rate",
		"  PAUSE / RESUME / STOP                 -- control an in-progress RUN",
		"  RESET                                 -- reinitialize over the last INIT input",
		"  TEST <input>                          -- test input against a disposable copy",
		"  BATCH <input...>                      -- test multiple inputs",
		"  SAVE <path> [xml]                     -- save the machine to disk",
		"  UNDO / REDO                           -- step through edit history",
		"  QUIT                                  -- exit",
	}, "\n") + "\n"))
}

func (s *Shell) show() {
	var b strings.Builder
	fmt.Fprintf(&b, "kind: %s\n", s.Machine.Kind())
	states := s.Machine.States()
	sort.Slice(states, func(i, j int) bool { return states[i].ID < states[j].ID })
	for _, st := range states {
		flags := ""
		if st.IsInitial {
			flags += " [initial]"
		}
		if st.IsFinal {
			flags += " [final]"
		}
		if st.IsHalt {
			flags += " [halt]"
		}
		fmt.Fprintf(&b, "state %d: %s%s\n", st.ID, st.Name, flags)
	}
	for _, t := range s.Machine.Transitions() {
		fmt.Fprintf(&b, "trans %d: %d -> %d %s\n", t.ID, t.From, t.To, transLabel(t))
	}
	s.out(b.String())
}

func transLabel(t automaton.Transition) string {
	switch {
	case len(t.Symbols) > 0:
		return strings.Join(t.Symbols, ",")
	case t.ReadSymbol != "" || t.WriteSymbol != "":
		return fmt.Sprintf("%s/%s,%s", t.ReadSymbol, t.WriteSymbol, string(t.Direction))
	case t.InputSymbol != "" || t.StackRead != "" || t.StackWrite != "":
		return fmt.Sprintf("%s,%s/%s", t.InputSymbol, t.StackRead, t.StackWrite)
	default:
		return "ε"
	}
}

func (s *Shell) validate() {
	res := s.Machine.Validate()
	if res.OK() {
		s.out("no errors\n")
	}
	for _, e := range res.Errors {
		s.out("ERROR: " + e + "\n")
	}
	for _, w := range res.Warnings {
		s.out("WARNING: " + w + "\n")
	}
}

func (s *Shell) state(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("STATE requires ADD or RM")
	}
	switch strings.ToUpper(args[0]) {
	case "ADD":
		if len(args) < 2 {
			return fmt.Errorf("STATE ADD requires a name")
		}
		st := automaton.State{Name: args[1]}
		for _, flag := range args[2:] {
			switch strings.ToLower(flag) {
			case "initial":
				st.IsInitial = true
			case "final":
				st.IsFinal = true
			case "halt":
				st.IsHalt = true
			default:
				return fmt.Errorf("unrecognized state flag %q", flag)
			}
		}
		added := s.Machine.AddState(st)
		s.out(fmt.Sprintf("added state %d: %s\n", added.ID, added.Name))
	case "RM":
		id, err := parseID(args, 1, "STATE RM")
		if err != nil {
			return err
		}
		s.Machine.RemoveState(id)
	default:
		return fmt.Errorf("STATE requires ADD or RM, got %q", args[0])
	}
	return nil
}

func (s *Shell) trans(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("TRANS requires ADD, PDA, TM, or RM")
	}
	switch strings.ToUpper(args[0]) {
	case "ADD":
		if len(args) < 4 {
			return fmt.Errorf("TRANS ADD requires <from> <to> <symbols...>")
		}
		from, to, err := parseFromTo(args[1], args[2])
		if err != nil {
			return err
		}
		syms := args[3:]
		if len(syms) == 1 && syms[0] == "-" {
			syms = nil
		}
		added, err := s.Machine.AddTransition(automaton.Transition{From: from, To: to, Symbols: syms})
		if err != nil {
			return err
		}
		s.out(fmt.Sprintf("added transition %d\n", added.ID))
	case "PDA":
		if len(args) < 6 {
			return fmt.Errorf("TRANS PDA requires <from> <to> <in> <pop> <push>")
		}
		from, to, err := parseFromTo(args[1], args[2])
		if err != nil {
			return err
		}
		added, err := s.Machine.AddTransition(automaton.Transition{
			From: from, To: to,
			InputSymbol: dashToEmpty(args[3]),
			StackRead:   dashToEmpty(args[4]),
			StackWrite:  dashToEmpty(args[5]),
		})
		if err != nil {
			return err
		}
		s.out(fmt.Sprintf("added transition %d\n", added.ID))
	case "TM":
		if len(args) < 6 {
			return fmt.Errorf("TRANS TM requires <from> <to> <read> <write> <L|R|S>")
		}
		from, to, err := parseFromTo(args[1], args[2])
		if err != nil {
			return err
		}
		dir := automaton.Direction(strings.ToUpper(args[5])[0])
		added, err := s.Machine.AddTransition(automaton.Transition{
			From: from, To: to,
			ReadSymbol:  args[3],
			WriteSymbol: args[4],
			Direction:   dir,
		})
		if err != nil {
			return err
		}
		s.out(fmt.Sprintf("added transition %d\n", added.ID))
	case "RM":
		id, err := parseID(args, 1, "TRANS RM")
		if err != nil {
			return err
		}
		s.Machine.RemoveTransition(id)
	default:
		return fmt.Errorf("TRANS requires ADD, PDA, TM, or RM, got %q", args[0])
	}
	return nil
}

func dashToEmpty(s string) string {
	if s == "-" {
		return ""
	}
	return s
}

func parseFromTo(fromStr, toStr string) (int, int, error) {
	from, err := strconv.Atoi(fromStr)
	if err != nil {
		return 0, 0, fmt.Errorf("from id: %w", err)
	}
	to, err := strconv.Atoi(toStr)
	if err != nil {
		return 0, 0, fmt.Errorf("to id: %w", err)
	}
	return from, to, nil
}

func parseID(args []string, idx int, verb string) (int, error) {
	if len(args) <= idx {
		return 0, fmt.Errorf("%s requires an id", verb)
	}
	id, err := strconv.Atoi(args[idx])
	if err != nil {
		return 0, fmt.Errorf("%s: invalid id %q", verb, args[idx])
	}
	return id, nil
}

func (s *Shell) init(args []string) error {
	return s.Driver.Init(strings.Join(args, " "))
}

func (s *Shell) step() error {
	return s.Driver.Step()
}

func (s *Shell) run() error {
	s.Driver.Run()
	return nil
}

func (s *Shell) speed(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("SPEED requires exactly one value 1-10")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("SPEED: invalid value %q", args[0])
	}
	s.Driver.SetSpeed(n)
	return nil
}

func (s *Shell) test(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("TEST requires an input string")
	}
	verdict, trace, err := s.Driver.TestString(strings.Join(args, " "))
	if err != nil {
		return err
	}
	s.out(fmt.Sprintf("verdict: %s (%d steps)\n", verdict, len(trace)))
	return nil
}

func (s *Shell) save(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("SAVE requires a path")
	}
	format := diskstore.FormatStructuredBinary
	if len(args) > 1 && strings.ToLower(args[1]) == "xml" {
		format = diskstore.FormatInterchangeXML
	}
	if err := diskstore.Save(args[0], s.Machine, format); err != nil {
		return err
	}
	s.out(fmt.Sprintf("saved to %s\n", args[0]))
	return nil
}

func (s *Shell) batch(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("BATCH requires one or more input strings")
	}
	results := s.Driver.RunBatchTests(args)
	for _, r := range results {
		status := "rejected"
		if r.Accepted {
			status = "accepted"
		}
		if r.Err != nil {
			status = "error: " + r.Err.Error()
		}
		s.out(fmt.Sprintf("%q: %s\n", r.Input, status))
	}
	return nil
}
