package serr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_ErrorMessage(t *testing.T) {
	assert := assert.New(t)

	e := New("could not save", ErrDB)
	assert.Equal("could not save: "+ErrDB.Error(), e.Error())

	bare := New("")
	assert.Equal("", bare.Error())
}

func TestError_IsMatchesCause(t *testing.T) {
	assert := assert.New(t)

	e := WrapDB("", errors.New("disk full"))
	assert.True(errors.Is(e, ErrDB))
	assert.False(errors.Is(e, ErrNotFound))
}
