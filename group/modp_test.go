package group

import (
	"errors"
	"testing"

	"github.com/ivxv/vmnv/big"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func smallGroup(t *testing.T) *ModPGroup {
	g, err := NewModPGroup(big.NewInt(23))
	require.NoError(t, err)
	return g
}

func elem(t *testing.T, g *ModPGroup, v int64) *ModPElement {
	el, err := g.Element(big.NewInt(v))
	require.NoError(t, err)
	return el
}

func TestModPGroupParameters(t *testing.T) {
	g := smallGroup(t)
	assert.Equal(t, int64(11), g.Order().Int64())
	assert.Equal(t, int64(23), g.FieldOrder().Int64())
	assert.Equal(t, 1, g.ElementLen())
	assert.True(t, g.Identity().Equal(elem(t, g, 1)))

	_, err := NewModPGroup(big.NewInt(29))
	assert.True(t, errors.Is(err, ErrInvalidParameters))
	_, err = NewModPGroup(big.NewInt(24))
	assert.True(t, errors.Is(err, ErrInvalidParameters))
}

func TestModPElementRange(t *testing.T) {
	g := smallGroup(t)
	for _, v := range []int64{0, -1, 23, 24} {
		_, err := g.Element(big.NewInt(v))
		assert.True(t, errors.Is(err, ErrInvalidElement), "value %d", v)
	}
	_, err := g.SubgroupElement(big.NewInt(5))
	assert.True(t, errors.Is(err, ErrInvalidElement))
	el, err := g.SubgroupElement(big.NewInt(4))
	require.NoError(t, err)
	assert.True(t, el.InSubgroup())
}

func TestModPGroupLaws(t *testing.T) {
	g := smallGroup(t)
	a, b := elem(t, g, 3), elem(t, g, 7)

	ab, err := a.Op(b)
	require.NoError(t, err)
	assert.Equal(t, int64(21), ab.(*ModPElement).Value().Int64())

	ba, err := b.Op(a)
	require.NoError(t, err)
	assert.True(t, ab.Equal(ba))

	one, err := a.Op(a.Inverse())
	require.NoError(t, err)
	assert.True(t, one.Equal(g.Identity()))

	assert.Equal(t, int64(9), a.Scale(big.NewInt(2)).(*ModPElement).Value().Int64())
	// 3^-1 = 8 mod 23
	assert.Equal(t, int64(8), a.Scale(big.NewInt(-1)).(*ModPElement).Value().Int64())
	assert.True(t, a.Scale(big.NewInt(0)).Equal(g.Identity()))
}

func TestModPElementOrder(t *testing.T) {
	g := smallGroup(t)
	for v, order := range map[int64]int64{1: 1, 22: 2, 2: 11, 5: 22} {
		o, err := elem(t, g, v).Order()
		require.NoError(t, err)
		assert.Equal(t, order, o.Int64(), "order of %d", v)
	}
}

func TestModPGroupMismatch(t *testing.T) {
	g := smallGroup(t)
	h, err := NewModPGroup(big.NewInt(47))
	require.NoError(t, err)

	a, b := elem(t, g, 2), elem(t, h, 2)
	assert.False(t, a.Equal(b))
	_, err = a.Op(b)
	assert.True(t, errors.Is(err, ErrGroupMismatch))
	assert.True(t, errors.Is(SameGroup(a, b), ErrGroupMismatch))
	assert.NoError(t, SameGroup(a, elem(t, g, 3)))
}

func TestModPElementBytes(t *testing.T) {
	// 0x83 needs a sign byte in two's complement, so elements take two bytes
	g, err := NewModPGroup(big.NewInt(167))
	require.NoError(t, err)
	assert.Equal(t, 2, g.ElementLen())

	el, err := g.Element(big.NewInt(4))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x04}, el.Bytes())

	parsed, err := g.ElementFromBytes(el.Bytes())
	require.NoError(t, err)
	assert.True(t, el.Equal(parsed))

	for _, data := range [][]byte{
		{0x00, 0xa7}, // p
		{0x00, 0x05}, // not a quadratic residue
		{0x83},       // negative in two's complement
		{},
	} {
		_, err = g.ElementFromBytes(data)
		assert.True(t, errors.Is(err, ErrInvalidElement), "%x", data)
	}
}

func TestModPGroupParametersAreCopies(t *testing.T) {
	g := smallGroup(t)
	g.Order().SetBytes([]byte{5})
	g.FieldOrder().SetBytes([]byte{7})
	g.Modulus().SetBytes([]byte{7})
	assert.Equal(t, int64(11), g.Order().Int64())
	assert.Equal(t, int64(23), g.FieldOrder().Int64())
	assert.Equal(t, int64(23), g.Modulus().Int64())
}

func TestModPEncodeSmall(t *testing.T) {
	g := smallGroup(t)
	for m := int64(1); m <= 11; m++ {
		el, err := g.Encode(NewPlaintext([]byte{byte(m)}))
		require.NoError(t, err)
		assert.True(t, el.(*ModPElement).InSubgroup(), "encoding of %d", m)

		msg, err := g.Decode(el)
		require.NoError(t, err)
		assert.Equal(t, []byte{byte(m)}, msg.Message())
	}
	_, err := g.Encode(NewPlaintext([]byte{12}))
	assert.True(t, errors.Is(err, ErrMessageTooLong))
	_, err = g.Encode(NewPlaintext([]byte{0}))
	assert.True(t, errors.Is(err, ErrInvalidElement))
}

func TestModPEncodePadded(t *testing.T) {
	g, gen, err := GenerateModPGroup(128)
	require.NoError(t, err)
	assert.Equal(t, 128, g.Modulus().BitLen())
	assert.True(t, gen.InSubgroup())
	assert.False(t, gen.Equal(g.Identity()))

	padded, err := g.Pad(NewPlaintext([]byte("vote")))
	require.NoError(t, err)
	el, err := g.Encode(padded)
	require.NoError(t, err)

	decoded, err := g.Decode(el)
	require.NoError(t, err)
	assert.True(t, decoded.IsPadded())
	msg, err := decoded.StripPadding()
	require.NoError(t, err)
	assert.Equal(t, []byte("vote"), msg.Message())
}

func TestModPPrecompute(t *testing.T) {
	g, gen, err := GenerateModPGroup(128)
	require.NoError(t, err)
	table, err := gen.Precompute()
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		k := g.RandomExponent()
		assert.True(t, gen.Scale(k).Equal(table.Scale(k)))
	}
	k := new(big.Int).Add(g.Order(), big.NewInt(5))
	assert.True(t, gen.Scale(k).Equal(table.Scale(k)))
	assert.True(t, gen.Scale(big.NewInt(-3)).Equal(table.Scale(big.NewInt(-3))))

	nonResidue, err := g.Element(new(big.Int).Sub(g.Modulus(), big.NewInt(1)))
	require.NoError(t, err)
	_, err = nonResidue.Precompute()
	assert.True(t, errors.Is(err, ErrInvalidElement))
}

func TestFold(t *testing.T) {
	g := smallGroup(t)
	res, err := Fold(g.Identity(), []Element{elem(t, g, 2), elem(t, g, 3), elem(t, g, 4)})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.(*ModPElement).Value().Int64())

	res, err = Fold(g.Identity(), nil)
	require.NoError(t, err)
	assert.True(t, res.Equal(g.Identity()))
}
