package diskstore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/brannigan/finautomata/internal/automaton"
)

func buildSample(t *testing.T) *automaton.DFA {
	t.Helper()
	d := automaton.NewDFA()
	q0 := d.AddState(automaton.State{Name: "q0"})
	q1 := d.AddState(automaton.State{Name: "q1", IsFinal: true})
	_, err := d.AddTransition(automaton.Transition{From: q0.ID, To: q1.ID, Symbols: []string{"a"}})
	assert.NoError(t, err)
	return d
}

func TestSaveLoad_StructuredBinary(t *testing.T) {
	assert := assert.New(t)
	path := filepath.Join(t.TempDir(), "machine.bin")

	d := buildSample(t)
	assert.NoError(Save(path, d, FormatStructuredBinary))

	loaded, err := Load(path, FormatStructuredBinary)
	assert.NoError(err)
	assert.Equal(automaton.KindDFA, loaded.Kind())

	ok, err := loaded.Accepts("a")
	assert.NoError(err)
	assert.True(ok)
}

func TestSaveLoad_InterchangeXML(t *testing.T) {
	assert := assert.New(t)
	path := filepath.Join(t.TempDir(), "machine.xml")

	d := buildSample(t)
	assert.NoError(Save(path, d, FormatInterchangeXML))

	loaded, err := Load(path, FormatInterchangeXML)
	assert.NoError(err)
	assert.Equal(automaton.KindNFA, loaded.Kind()) // §6: "fa" always loads as NFA

	ok, err := loaded.Accepts("a")
	assert.NoError(err)
	assert.True(ok)
}

func TestSave_OverwritesExistingFileAtomically(t *testing.T) {
	assert := assert.New(t)
	path := filepath.Join(t.TempDir(), "machine.bin")

	d := buildSample(t)
	assert.NoError(Save(path, d, FormatStructuredBinary))

	d2 := automaton.NewDFA()
	d2.AddState(automaton.State{Name: "solo", IsFinal: true})
	assert.NoError(Save(path, d2, FormatStructuredBinary))

	loaded, err := Load(path, FormatStructuredBinary)
	assert.NoError(err)
	assert.Len(loaded.States(), 1)
}

func TestLoad_MissingFile(t *testing.T) {
	assert := assert.New(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.bin"), FormatStructuredBinary)
	assert.Error(err)
}
