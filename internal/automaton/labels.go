package automaton

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

// This file implements the transition label mini-grammars of §6. Parsing is
// done by direct character/field inspection rather than through a generated
// parser -- the grammars are a handful of characters split on fixed
// delimiters, in the same spirit as parseFATransition's hand-rolled
// left/right splitting.

var directionFolder = cases.Fold()

// ParseFALabel parses the DFA/NFA transition label grammar: a single symbol
// (DFA) or a comma-separated list of symbols (NFA). An empty string or "ε"
// means an epsilon-transition, represented as a nil slice. allowMultiple
// must be false for DFA labels and true for NFA labels.
func ParseFALabel(raw string, allowMultiple bool) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == Epsilon {
		return nil, nil
	}

	parts := strings.Split(raw, ",")
	syms := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" || p == Epsilon {
			continue
		}
		syms = append(syms, p)
	}

	if len(syms) == 0 {
		return nil, nil
	}
	if !allowMultiple && len(syms) > 1 {
		return nil, fmt.Errorf("not a valid DFA transition label: %q names more than one symbol", raw)
	}
	return syms, nil
}

// FormatFALabel renders a DFA/NFA symbol list back to its text form.
func FormatFALabel(syms []string) string {
	if len(syms) == 0 {
		return Epsilon
	}
	return strings.Join(syms, ",")
}

// ParsePDALabel parses the PDA transition label grammar:
//
//	input,pop;push
//	input,pop→push
//
// Missing fields default to ε (the empty string).
func ParsePDALabel(raw string) (input, pop, push string, err error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", "", "", nil
	}

	left, right, found := splitArrow(raw)
	if !found {
		return "", "", "", fmt.Errorf("not a valid PDA transition label: %q is missing a ; or → separator", raw)
	}

	fields := strings.SplitN(left, ",", 2)
	input = normEpsilon(fields[0])
	if len(fields) > 1 {
		pop = normEpsilon(fields[1])
	}
	push = normEpsilon(right)
	return input, pop, push, nil
}

// FormatPDALabel renders a PDA transition back to its "input,pop→push" text
// form, substituting ε for any empty field.
func FormatPDALabel(input, pop, push string) string {
	return fmt.Sprintf("%s,%s→%s", orEpsilon(input), orEpsilon(pop), orEpsilon(push))
}

// ParseTMLabel parses the TM transition label grammar:
//
//	read;write,dir
//	read→write,dir
//
// dir is one of L, R, S, case-insensitive.
func ParseTMLabel(raw string) (read, write string, dir Direction, err error) {
	raw = strings.TrimSpace(raw)

	lastComma := strings.LastIndex(raw, ",")
	if lastComma < 0 {
		return "", "", 0, fmt.Errorf("not a valid TM transition label: %q is missing the trailing ,dir", raw)
	}
	rw, dirPart := raw[:lastComma], raw[lastComma+1:]

	left, right, found := splitArrow(rw)
	if !found {
		return "", "", 0, fmt.Errorf("not a valid TM transition label: %q is missing a ; or → separator", rw)
	}

	dir, err = ParseDirection(dirPart)
	if err != nil {
		return "", "", 0, fmt.Errorf("not a valid TM transition label: %w", err)
	}

	return normBlank(left), normBlank(right), dir, nil
}

// FormatTMLabel renders a TM transition back to its "read→write,dir" text
// form.
func FormatTMLabel(read, write string, dir Direction) string {
	r := read
	if r == "" {
		r = Blank
	}
	w := write
	if w == "" {
		w = Blank
	}
	return fmt.Sprintf("%s→%s,%s", r, w, dir.String())
}

// ParseDirection parses a case-insensitive L/R/S direction token. Folding is
// done with golang.org/x/text/cases rather than strings.ToUpper, giving a
// Unicode-aware fold; no other label parser in this package uses it.
func ParseDirection(s string) (Direction, error) {
	folded := directionFolder.String(strings.TrimSpace(s))
	switch folded {
	case "l":
		return DirLeft, nil
	case "r":
		return DirRight, nil
	case "s":
		return DirStay, nil
	default:
		return 0, fmt.Errorf("not a valid direction (want L, R, or S): %q", s)
	}
}

func splitArrow(s string) (left, right string, ok bool) {
	if idx := strings.Index(s, "→"); idx >= 0 {
		return strings.TrimSpace(s[:idx]), strings.TrimSpace(s[idx+len("→"):]), true
	}
	if idx := strings.LastIndex(s, ";"); idx >= 0 {
		return strings.TrimSpace(s[:idx]), strings.TrimSpace(s[idx+1:]), true
	}
	return "", "", false
}

func normEpsilon(s string) string {
	s = strings.TrimSpace(s)
	if s == Epsilon {
		return ""
	}
	return s
}

func orEpsilon(s string) string {
	if s == "" {
		return Epsilon
	}
	return s
}

func normBlank(s string) string {
	if isBlank(s, Blank) {
		return ""
	}
	return s
}
