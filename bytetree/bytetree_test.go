package bytetree

import (
	"bytes"
	"encoding/hex"
	"errors"
	"math/rand"
	"testing"

	"github.com/ivxv/vmnv/big"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustHex(t *testing.T, s string) []byte {
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

func TestEncodeVectors(t *testing.T) {
	tests := []struct {
		tree *Tree
		enc  string
	}{
		{Leaf(nil), "0100000000"},
		{LeafString("ab"), "01000000026162"},
		{LeafUint32(256), "010000000400000100"},
		{LeafInt(big.NewInt(128)), "01000000020080"},
		{LeafInt(big.NewInt(-1)), "0100000001ff"},
		{Node(), "0000000000"},
		{Node(Leaf([]byte{1})), "00000000010100000001" + "01"},
		{Node(Node(), LeafString("x")), "0000000002" + "0000000000" + "010000000178"},
		{NodeOfInts([]*big.Int{big.NewInt(1), big.NewInt(2)}), "0000000002" + "010000000101" + "010000000102"},
	}
	for _, tc := range tests {
		enc := tc.tree.Encode()
		assert.Equal(t, tc.enc, hex.EncodeToString(enc))
		assert.Equal(t, len(enc), tc.tree.EncodedLen())

		var buf bytes.Buffer
		n, err := tc.tree.WriteTo(&buf)
		require.NoError(t, err)
		assert.Equal(t, int64(len(enc)), n)
		assert.Equal(t, enc, buf.Bytes())

		decoded, err := Decode(enc)
		require.NoError(t, err)
		assert.True(t, tc.tree.Equal(decoded), "round trip of %s", tc.enc)
	}
}

func randomTree(rnd *rand.Rand, depth int) *Tree {
	if depth == 0 || rnd.Intn(3) == 0 {
		data := make([]byte, rnd.Intn(40))
		rnd.Read(data)
		return Leaf(data)
	}
	children := make([]*Tree, rnd.Intn(5))
	for i := range children {
		children[i] = randomTree(rnd, depth-1)
	}
	return Node(children...)
}

func TestRoundTrip(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	for i := 0; i < 200; i++ {
		tree := randomTree(rnd, 5)
		enc := tree.Encode()
		require.Equal(t, enc, tree.Encode(), "encoding is not deterministic")
		decoded, err := Decode(enc)
		require.NoError(t, err)
		require.True(t, tree.Equal(decoded))
		require.Equal(t, enc, decoded.Encode())
	}
}

func TestDecodeAt(t *testing.T) {
	first := LeafString("first").Encode()
	second := Node(LeafString("second")).Encode()
	buf := append(append([]byte{}, first...), second...)

	tree, n, err := DecodeAt(buf, 0)
	require.NoError(t, err)
	assert.Equal(t, len(first), n)
	assert.Equal(t, "first", string(tree.Bytes()))

	tree, n, err = DecodeAt(buf, len(first))
	require.NoError(t, err)
	assert.Equal(t, len(second), n)
	assert.False(t, tree.IsLeaf())
	assert.Equal(t, 1, tree.Len())
}

func TestDecodeErrors(t *testing.T) {
	tests := map[string]string{
		"empty":             "",
		"short header":      "01000000",
		"invalid tag":       "0200000000",
		"truncated leaf":    "010000000361",
		"truncated node":    "0000000002" + "0100000000",
		"too many children": "00ffffffff" + "0100000000",
		"bad child":         "0000000001" + "0700000000",
		"trailing bytes":    "010000000161" + "00",
	}
	for name, enc := range tests {
		_, err := Decode(mustHex(t, enc))
		require.Error(t, err, name)
		assert.True(t, errors.Is(err, ErrMalformed), name)
	}

	_, _, err := DecodeAt(mustHex(t, "0100000000"), -1)
	assert.True(t, errors.Is(err, ErrMalformed))
	_, _, err = DecodeAt(mustHex(t, "0100000000"), 6)
	assert.True(t, errors.Is(err, ErrMalformed))
}

func TestDecodeDepthLimit(t *testing.T) {
	var enc []byte
	for i := 0; i <= maxDepth+1; i++ {
		enc = append(enc, mustHex(t, "0000000001")...)
	}
	enc = append(enc, mustHex(t, "0100000000")...)
	_, err := Decode(enc)
	assert.True(t, errors.Is(err, ErrMalformed))
}

func TestAccessors(t *testing.T) {
	tree := Node(LeafInt(big.NewInt(-5)), NodeOfInts([]*big.Int{big.NewInt(7), big.NewInt(300)}))

	c, err := tree.Child(0)
	require.NoError(t, err)
	v, err := c.Int()
	require.NoError(t, err)
	assert.Equal(t, int64(-5), v.Int64())

	c, err = tree.Child(1)
	require.NoError(t, err)
	vs, err := c.Ints()
	require.NoError(t, err)
	require.Len(t, vs, 2)
	assert.Equal(t, int64(300), vs[1].Int64())

	_, err = tree.Child(2)
	assert.True(t, errors.Is(err, ErrShape))
	_, err = c.Int()
	assert.True(t, errors.Is(err, ErrShape))
	leaf, _ := tree.Child(0)
	_, err = leaf.Child(0)
	assert.True(t, errors.Is(err, ErrShape))
	_, err = Leaf(nil).Int()
	assert.True(t, errors.Is(err, ErrMalformed))
}

func TestLeafCopiesInput(t *testing.T) {
	data := []byte{1, 2, 3}
	leaf := Leaf(data)
	data[0] = 9
	assert.Equal(t, []byte{1, 2, 3}, leaf.Bytes())
}

func TestString(t *testing.T) {
	s := Node(LeafString("a"), Node()).String()
	assert.Equal(t, "node(2)\n  leaf(1): 61\n  node(0)\n", s)
}
