package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/brannigan/finautomata/internal/automaton"
	"github.com/brannigan/finautomata/internal/store"
)

func openTestStore(t *testing.T) store.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	assert.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestMachineRepo_CreateAndRoundTrip(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	s := openTestStore(t)

	d := automaton.NewDFA()
	d.AddState(automaton.State{Name: "q0", IsFinal: true})

	owner := uuid.New()
	created, err := s.Machines().Create(ctx, store.Machine{
		OwnerID: owner,
		Name:    "trivial",
		Kind:    automaton.KindDFA,
		Data:    d.ToStructured(),
	})
	assert.NoError(err)
	assert.NotEqual(uuid.Nil, created.ID)

	fetched, err := s.Machines().GetByID(ctx, created.ID)
	assert.NoError(err)
	assert.Equal(created.Name, fetched.Name)
	assert.Equal(automaton.KindDFA, fetched.Kind)
	assert.Len(fetched.Data.States, 1)

	m, err := automaton.FromStructured(fetched.Data)
	assert.NoError(err)
	assert.Equal(automaton.KindDFA, m.Kind())
}

func TestMachineRepo_GetAllByOwner(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	s := openTestStore(t)

	owner := uuid.New()
	other := uuid.New()

	d := automaton.NewDFA()
	_, err := s.Machines().Create(ctx, store.Machine{OwnerID: owner, Name: "a", Kind: automaton.KindDFA, Data: d.ToStructured()})
	assert.NoError(err)
	_, err = s.Machines().Create(ctx, store.Machine{OwnerID: owner, Name: "b", Kind: automaton.KindDFA, Data: d.ToStructured()})
	assert.NoError(err)
	_, err = s.Machines().Create(ctx, store.Machine{OwnerID: other, Name: "c", Kind: automaton.KindDFA, Data: d.ToStructured()})
	assert.NoError(err)

	all, err := s.Machines().GetAllByOwner(ctx, owner)
	assert.NoError(err)
	assert.Len(all, 2)
}

func TestMachineRepo_DeleteNotFound(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	s := openTestStore(t)

	err := s.Machines().Delete(ctx, uuid.New())
	assert.ErrorIs(err, store.ErrNotFound)
}

func TestUserRepo_CreateAndConflict(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	s := openTestStore(t)

	_, err := s.Users().Create(ctx, store.User{Username: "river", PasswordHash: "hash"})
	assert.NoError(err)

	_, err = s.Users().Create(ctx, store.User{Username: "river", PasswordHash: "hash2"})
	assert.ErrorIs(err, store.ErrConstraintViolation)
}
