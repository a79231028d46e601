package result

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOK_WritesStatusAndBody(t *testing.T) {
	assert := assert.New(t)

	r := OK(map[string]string{"hello": "world"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/", nil)

	r.WriteResponse(w, req)

	assert.Equal(http.StatusOK, w.Code)
	assert.Contains(w.Body.String(), "hello")
	assert.Equal("application/json", w.Header().Get("Content-Type"))
}

func TestNoContent_WritesNoBody(t *testing.T) {
	assert := assert.New(t)

	r := NoContent()
	w := httptest.NewRecorder()
	req := httptest.NewRequest("DELETE", "/", nil)

	r.WriteResponse(w, req)

	assert.Equal(http.StatusNoContent, w.Code)
	assert.Empty(w.Body.String())
}

func TestBadRequest_CarriesUserMessage(t *testing.T) {
	assert := assert.New(t)

	r := BadRequest("bad input", "field %q was empty", "name")
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/", nil)

	r.WriteResponse(w, req)

	assert.Equal(http.StatusBadRequest, w.Code)
	assert.Contains(w.Body.String(), "bad input")
	assert.Equal(`field "name" was empty`, r.InternalMsg)
}

func TestWithHeader(t *testing.T) {
	assert := assert.New(t)

	r := Unauthorized("")
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/", nil)

	r.WriteResponse(w, req)

	assert.NotEmpty(w.Header().Get("WWW-Authenticate"))
}
