package auth

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/brannigan/finautomata/internal/store"
	"github.com/brannigan/finautomata/internal/store/memory"
)

func TestJWT_GenerateAndValidate(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	s := memory.New()
	u, err := s.Users().Create(ctx, store.User{Username: "mal", PasswordHash: "hash"})
	assert.NoError(err)

	j := New([]byte("secret"))
	tok, err := j.Generate(u)
	assert.NoError(err)
	assert.NotEmpty(tok)

	validated, err := j.ValidateAndLookup(ctx, tok, s.Users())
	assert.NoError(err)
	assert.Equal(u.ID, validated.ID)
}

func TestJWT_InvalidatedAfterLogout(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	s := memory.New()
	u, err := s.Users().Create(ctx, store.User{Username: "zoe", PasswordHash: "hash"})
	assert.NoError(err)

	j := New([]byte("secret"))
	tok, err := j.Generate(u)
	assert.NoError(err)

	u.LastLogoutTime = u.LastLogoutTime.Add(time.Second)
	_, err = s.Users().Update(ctx, u.ID, u)
	assert.NoError(err)

	_, err = j.ValidateAndLookup(ctx, tok, s.Users())
	assert.Error(err)
}

func TestBearerToken(t *testing.T) {
	assert := assert.New(t)

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer abc.def.ghi")
	tok, err := BearerToken(req)
	assert.NoError(err)
	assert.Equal("abc.def.ghi", tok)

	req2 := httptest.NewRequest("GET", "/", nil)
	_, err = BearerToken(req2)
	assert.Error(err)
}
