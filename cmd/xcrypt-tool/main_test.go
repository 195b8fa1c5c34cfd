package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMain(t *testing.T) {
	out := bytes.NewBuffer([]byte{})
	errout := bytes.NewBuffer([]byte{})
	rc := 0
	exit := func(c int) {
		rc = c
	}

	realMain([]string{"xcrypt-tool", "unknown"}, out, errout, exit)
	assert.Equal(t, 80, rc)
	assert.Equal(t, "xcrypt-tool: error: unexpected argument unknown\n", errout.String())
	assert.Empty(t, out.String())
}

func TestKeylen(t *testing.T) {
	out := bytes.NewBuffer([]byte{})
	errout := bytes.NewBuffer([]byte{})
	rc := 0
	exit := func(c int) {
		rc = c
	}

	realMain([]string{"xcrypt-tool", "keylen", "--alg=des-cbc"}, out, errout, exit)
	assert.Equal(t, 0, rc)
	assert.Empty(t, errout.String())
	assert.Contains(t, out.String(), `"block_size": 8`)
}
