package oracle

import (
	"bytes"
	"crypto/sha256"
	"crypto/sha512"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHash(t *testing.T) {
	for name, size := range map[string]int{
		"SHA-1":    20,
		"SHA-256":  32,
		"SHA-384":  48,
		"SHA-512":  64,
		"SHA3-256": 32,
		"SHA3-512": 64,
		"sha2-256": 32,
		"sha3-384": 48,
	} {
		h, err := NewHash(name)
		require.NoError(t, err, name)
		assert.Equal(t, size, h.Size(), name)
		assert.Equal(t, name, h.Name())
	}

	h, err := NewHash("SHA-384")
	require.NoError(t, err)
	expected := sha512.Sum384([]byte("abc"))
	assert.Equal(t, expected[:], h.Sum([]byte("a"), []byte("bc")))

	_, err = NewHash("MD5")
	assert.True(t, errors.Is(err, ErrUnknownHash))
	_, err = NewPRNG("SHA-0", nil)
	assert.True(t, errors.Is(err, ErrUnknownHash))
	_, err = NewRandomOracle("", nil)
	assert.True(t, errors.Is(err, ErrUnknownHash))
}

func TestPRNGBlocks(t *testing.T) {
	seed := []byte("seed")
	p, err := NewPRNG("SHA-256", seed)
	require.NoError(t, err)

	out := make([]byte, 80)
	n, err := p.Read(out)
	require.NoError(t, err)
	assert.Equal(t, 80, n)

	var expected []byte
	for _, ctr := range [][]byte{{0, 0, 0, 0}, {0, 0, 0, 1}, {0, 0, 0, 2}} {
		block := sha256.Sum256(append(append([]byte{}, seed...), ctr...))
		expected = append(expected, block[:]...)
	}
	assert.Equal(t, expected[:80], out)
}

func TestPRNGChunkInvariance(t *testing.T) {
	seed := []byte{1, 2, 3}
	p, err := NewPRNG("SHA-512", seed)
	require.NoError(t, err)
	whole := make([]byte, 300)
	_, _ = p.Read(whole)

	for _, chunk := range []int{1, 7, 64, 65, 299} {
		p, err := NewPRNG("SHA-512", seed)
		require.NoError(t, err)
		var got []byte
		for len(got) < len(whole) {
			n := chunk
			if len(whole)-len(got) < n {
				n = len(whole) - len(got)
			}
			buf := make([]byte, n)
			_, _ = p.Read(buf)
			got = append(got, buf...)
		}
		assert.Equal(t, whole, got, "chunk size %d", chunk)
	}
}

func TestRandomOracle(t *testing.T) {
	seed := []byte("input")
	ro, err := NewRandomOracle("SHA-256", seed)
	require.NoError(t, err)

	out, err := ro.Bytes(256)
	require.NoError(t, err)

	digest := sha256.Sum256(append([]byte{0, 0, 1, 0}, seed...))
	p, err := NewPRNG("SHA-256", digest[:])
	require.NoError(t, err)
	expected := make([]byte, 32)
	_, _ = p.Read(expected)
	assert.Equal(t, expected, out)

	again, err := ro.Bytes(256)
	require.NoError(t, err)
	assert.Equal(t, out, again)
}

func TestRandomOracleMasking(t *testing.T) {
	ro, err := NewRandomOracle("SHA-256", []byte("mask"))
	require.NoError(t, err)
	for amount := 1; amount <= 24; amount++ {
		out, err := ro.Bytes(amount)
		require.NoError(t, err)
		assert.Len(t, out, (amount+7)/8)
		if r := amount % 8; r != 0 {
			assert.Less(t, int(out[0]), 1<<r, "amount %d", amount)
		}
	}
}

func TestRandomOracleAmountSeparation(t *testing.T) {
	ro, err := NewRandomOracle("SHA-256", []byte("domain"))
	require.NoError(t, err)
	a, err := ro.Bytes(256)
	require.NoError(t, err)
	b, err := ro.Bytes(264)
	require.NoError(t, err)
	assert.False(t, bytes.Equal(a, b[1:]))
	assert.False(t, bytes.Equal(a, b[:32]))

	// amounts that round to the same number of bytes, or that are not byte aligned, are
	// independent queries
	for _, amounts := range [][2]int{{8, 13}, {9, 16}, {13, 16}, {251, 256}} {
		a, err := ro.Bytes(amounts[0])
		require.NoError(t, err)
		b, err := ro.Bytes(amounts[1])
		require.NoError(t, err)
		assert.False(t, bytes.Equal(a, b[len(b)-len(a):]), "amounts %v", amounts)
	}
}

func TestRandomOracleErrors(t *testing.T) {
	ro, err := NewRandomOracle("SHA-256", nil)
	require.NoError(t, err)
	assert.True(t, errors.Is(ro.Read(make([]byte, 3), 16), ErrOutputLength))
	_, err = ro.Bytes(0)
	assert.True(t, errors.Is(err, ErrOutputLength))
	_, err = NewQuery("SHA-256", -8)
	assert.True(t, errors.Is(err, ErrOutputLength))
}

func TestQueryStreaming(t *testing.T) {
	input := bytes.Repeat([]byte("ciphertext"), 100)
	ro, err := NewRandomOracle("SHA-384", input)
	require.NoError(t, err)
	expected, err := ro.Bytes(100)
	require.NoError(t, err)

	q, err := NewQuery("SHA-384", 100)
	require.NoError(t, err)
	for i := 0; i < len(input); i += 37 {
		end := i + 37
		if end > len(input) {
			end = len(input)
		}
		_, err := q.Write(input[i:end])
		require.NoError(t, err)
	}
	out := make([]byte, 13)
	require.NoError(t, q.Read(out))
	assert.Equal(t, expected, out)
}
