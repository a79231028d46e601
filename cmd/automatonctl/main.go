/*
Automatonctl starts an interactive shell for building and simulating a single
automaton.

It builds an empty machine of the requested kind, or loads one from a saved
file, and then reads shell commands from stdin until the user quits or end of
input is reached. Type HELP once in a session for the list of commands.

Usage:

	automatonctl [flags]

The flags are:

	-v, --version
		Give the current version of automatonctl and then exit.

	-k, --kind KIND
		The kind of automaton to start with: dfa, nfa, pda, or tm. Ignored if
		--load is given. Defaults to dfa.

	-l, --load FILE
		Load a previously saved machine from FILE instead of starting empty.

	-x, --xml
		Read the --load file as interchange XML instead of the structured
		binary format. It does not affect SAVE, which writes structured binary
		unless given the xml argument.

	-d, --direct
		Force reading directly from the console as opposed to using GNU
		readline based routines for reading command input even if launched in
		a tty with stdin and stdout.

	-c, --command COMMANDS
		Immediately run the given shell command(s) at start. Can be multiple
		commands separated by the ";" character.

To exit the shell, type QUIT.
*/
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/brannigan/finautomata/internal/automaton"
	"github.com/brannigan/finautomata/internal/config"
	"github.com/brannigan/finautomata/internal/input"
	"github.com/brannigan/finautomata/internal/shell"
	"github.com/brannigan/finautomata/internal/store/diskstore"
	"github.com/brannigan/finautomata/internal/version"
)

const (
	ExitSuccess = iota
	ExitShellError
	ExitInitError
)

var (
	returnCode    = ExitSuccess
	flagVersion   = pflag.BoolP("version", "v", false, "Gives the version info")
	flagKind      = pflag.StringP("kind", "k", "dfa", "The kind of automaton to start with: dfa, nfa, pda, or tm")
	flagLoad      = pflag.StringP("load", "l", "", "Load a previously saved machine from FILE")
	flagXML       = pflag.BoolP("xml", "x", false, "Read the --load file as interchange XML")
	flagDirect    = pflag.BoolP("direct", "d", false, "Force reading directly from stdin instead of going through GNU readline where possible")
	flagStartCmds = pflag.StringP("command", "c", "", "Execute the given shell commands immediately at start")
)

func main() {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			panic(fmt.Sprintf("unrecoverable panic occurred: %v", panicErr))
		} else {
			os.Exit(returnCode)
		}
	}()

	pflag.Parse()

	if *flagVersion {
		fmt.Printf("%s\n", version.Current)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: could not load config: %s\n", err.Error())
		returnCode = ExitInitError
		return
	}

	m, err := buildMachine()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitInitError
		return
	}

	var startCommands []string
	if *flagStartCmds != "" {
		startCommands = strings.Split(*flagStartCmds, ";")
	}

	useReadline := !*flagDirect
	var reader shell.Reader
	if useReadline {
		histPath, err := cfg.HistoryPath()
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: resolving history file: %s\n", err.Error())
			returnCode = ExitInitError
			return
		}
		reader, err = input.NewInteractiveReaderWithHistory(histPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: initializing interactive-mode input reader: %s\n", err.Error())
			returnCode = ExitInitError
			return
		}
	} else {
		reader = input.NewDirectReader(os.Stdin)
	}
	defer reader.Close()

	sh := shell.New(m, func(msg string) { fmt.Print(msg) })
	sh.Driver.SetSpeed(cfg.DefaultSpeed)

	for _, cmd := range startCommands {
		if err := sh.Dispatch(cmd); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		}
	}

	if err := runUntilQuit(sh, reader); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitShellError
	}
}

func buildMachine() (automaton.Machine, error) {
	if *flagLoad != "" {
		format := diskstore.FormatStructuredBinary
		if *flagXML {
			format = diskstore.FormatInterchangeXML
		}
		return diskstore.Load(*flagLoad, format)
	}

	switch strings.ToLower(*flagKind) {
	case "dfa":
		return automaton.NewDFA(), nil
	case "nfa":
		return automaton.NewNFA(), nil
	case "pda":
		return automaton.NewPDA(), nil
	case "tm":
		return automaton.NewTM(), nil
	default:
		return nil, fmt.Errorf("unrecognized kind %q: must be one of dfa, nfa, pda, tm", *flagKind)
	}
}

func runUntilQuit(sh *shell.Shell, reader shell.Reader) error {
	fmt.Printf("automatonctl %s\n", version.Current)
	fmt.Println("Type HELP for a list of commands, QUIT to exit.")

	reader.AllowBlank(true)
	for {
		line, err := reader.ReadCommand()
		if err != nil {
			return nil
		}

		dispatchErr := sh.Dispatch(line)
		if dispatchErr == shell.ErrQuit {
			fmt.Println("Goodbye")
			return nil
		}
		if dispatchErr != nil {
			fmt.Printf("ERROR: %s\n", dispatchErr.Error())
		}
	}
}
