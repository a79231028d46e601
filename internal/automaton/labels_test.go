package automaton

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseFALabel(t *testing.T) {
	testCases := []struct {
		name          string
		raw           string
		allowMultiple bool
		expect        []string
		expectErr     bool
	}{
		{name: "empty string is epsilon", raw: "", allowMultiple: false, expect: nil},
		{name: "epsilon symbol", raw: "ε", allowMultiple: false, expect: nil},
		{name: "single symbol", raw: "a", allowMultiple: false, expect: []string{"a"}},
		{name: "comma list, multiple allowed", raw: "a, b,c", allowMultiple: true, expect: []string{"a", "b", "c"}},
		{name: "comma list, multiple not allowed, is an error", raw: "a,b", allowMultiple: false, expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)
			actual, err := ParseFALabel(tc.raw, tc.allowMultiple)
			if tc.expectErr {
				assert.Error(err)
				return
			}
			if !assert.NoError(err) {
				return
			}
			assert.Equal(tc.expect, actual)
		})
	}
}

func TestFormatFALabel(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(Epsilon, FormatFALabel(nil))
	assert.Equal("a,b", FormatFALabel([]string{"a", "b"}))
}

func TestParsePDALabel(t *testing.T) {
	testCases := []struct {
		name                          string
		raw                           string
		input, pop, push              string
		expectErr                     bool
	}{
		{name: "full label with semicolon", raw: "a,X;Y", input: "a", pop: "X", push: "Y"},
		{name: "full label with arrow", raw: "a,X→Y", input: "a", pop: "X", push: "Y"},
		{name: "epsilon input and pop", raw: "ε,ε;Y", input: "", pop: "", push: "Y"},
		{name: "missing separator is an error", raw: "a,X", expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)
			input, pop, push, err := ParsePDALabel(tc.raw)
			if tc.expectErr {
				assert.Error(err)
				return
			}
			if !assert.NoError(err) {
				return
			}
			assert.Equal(tc.input, input)
			assert.Equal(tc.pop, pop)
			assert.Equal(tc.push, push)
		})
	}
}

func TestParseTMLabel(t *testing.T) {
	testCases := []struct {
		name               string
		raw                string
		read, write        string
		dir                Direction
		expectErr          bool
	}{
		{name: "full label with arrow, uppercase dir", raw: "a→b,R", read: "a", write: "b", dir: DirRight},
		{name: "full label with semicolon, lowercase dir", raw: "a;b,l", read: "a", write: "b", dir: DirLeft},
		{name: "blank read and write", raw: "□→□,S", read: "", write: "", dir: DirStay},
		{name: "missing direction is an error", raw: "a;b", expectErr: true},
		{name: "bad direction token is an error", raw: "a;b,Q", expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)
			read, write, dir, err := ParseTMLabel(tc.raw)
			if tc.expectErr {
				assert.Error(err)
				return
			}
			if !assert.NoError(err) {
				return
			}
			assert.Equal(tc.read, read)
			assert.Equal(tc.write, write)
			assert.Equal(tc.dir, dir)
		})
	}
}

func TestParseDirection(t *testing.T) {
	assert := assert.New(t)

	for _, s := range []string{"l", "L", "r", "R", "s", "S"} {
		_, err := ParseDirection(s)
		assert.NoErrorf(err, "direction %q", s)
	}

	_, err := ParseDirection("x")
	assert.Error(err)
}
