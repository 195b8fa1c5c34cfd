package cli

import (
	"bytes"
	"testing"

	"github.com/effective-security/xcrypt/cryptoprov"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSON(t *testing.T) {
	var out bytes.Buffer
	err := WriteJSON(&out, KeyLengthInfo{
		Alg:       cryptoprov.AlgDESCBC,
		Provider:  "gocrypto",
		BlockSize: 8,
		KeyLength: cryptoprov.KeyLength{Min: 8, Max: 8, Step: 1},
	})
	require.NoError(t, err)
	exp := "{\n" +
		"\t\"alg\": \"des-cbc\",\n" +
		"\t\"provider\": \"gocrypto\",\n" +
		"\t\"block_size\": 8,\n" +
		"\t\"key_length\": {\n" +
		"\t\t\"min\": 8,\n" +
		"\t\t\"max\": 8,\n" +
		"\t\t\"step\": 1\n" +
		"\t}\n" +
		"}\n"
	assert.Equal(t, exp, out.String())

	out.Reset()
	require.NoError(t, WriteJSON(&out, []string{"sha1"}))
	assert.Equal(t, "[\n\t\"sha1\"\n]\n", out.String())

	err = WriteJSON(&out, make(chan int))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to encode")
}
