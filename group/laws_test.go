package group

import (
	"crypto/rand"
	"testing"

	"github.com/ivxv/vmnv/big"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomExponent(t *testing.T, order *big.Int) *big.Int {
	k, err := big.RandInt(rand.Reader, order)
	require.NoError(t, err)
	return k
}

func randomElement(t *testing.T, g Group) Element {
	switch g := g.(type) {
	case *ModPGroup:
		return g.RandomElement()
	case *ECGroup:
		return g.Base().Scale(randomExponent(t, g.Order()))
	case *ProductGroup:
		els := make([]Element, g.Width())
		for i, c := range g.Groups() {
			els[i] = randomElement(t, c)
		}
		el, err := g.Element(els...)
		require.NoError(t, err)
		return el
	}
	t.Fatalf("unknown group %s", g)
	return nil
}

func op(t *testing.T, a, b Element) Element {
	res, err := a.Op(b)
	require.NoError(t, err)
	return res
}

// checkGroupLaws checks the group axioms and the exponent laws on random elements of g.
func checkGroupLaws(t *testing.T, g Group, rounds int) {
	order := g.Order()
	for i := 0; i < rounds; i++ {
		x, y, z := randomElement(t, g), randomElement(t, g), randomElement(t, g)

		assert.True(t, op(t, x, op(t, y, z)).Equal(op(t, op(t, x, y), z)), "associativity in %s", g)
		assert.True(t, op(t, x, y).Equal(op(t, y, x)), "commutativity in %s", g)
		assert.True(t, op(t, x, g.Identity()).Equal(x), "identity in %s", g)
		assert.True(t, op(t, x, x.Inverse()).Equal(g.Identity()), "inverse in %s", g)

		k, m := randomExponent(t, order), randomExponent(t, order)
		km := new(big.Int).Mul(k, m)
		km.Mod(km, order)
		assert.True(t, x.Scale(k).Scale(m).Equal(x.Scale(km)), "x^k^m = x^(km) in %s", g)

		kPlusM := new(big.Int).Add(k, m)
		assert.True(t, op(t, x.Scale(k), x.Scale(m)).Equal(x.Scale(kPlusM)), "x^k x^m = x^(k+m) in %s", g)
		assert.True(t, op(t, x, y).Scale(k).Equal(op(t, x.Scale(k), y.Scale(k))), "(xy)^k = x^k y^k in %s", g)
		assert.True(t, x.Scale(order).Equal(g.Identity()), "x^order in %s", g)
	}
}

func TestModPGroupLawsRandom(t *testing.T) {
	checkGroupLaws(t, smallGroup(t), 20)

	g, _, err := GenerateModPGroup(64)
	require.NoError(t, err)
	checkGroupLaws(t, g, 20)
}

func TestECGroupLawsRandom(t *testing.T) {
	checkGroupLaws(t, p384(t), 5)
}

func TestProductGroupLawsRandom(t *testing.T) {
	g, _, err := GenerateModPGroup(64)
	require.NoError(t, err)
	half, err := NewPowerGroup(g, 3)
	require.NoError(t, err)
	ciphertexts, err := NewPowerGroup(half, 2)
	require.NoError(t, err)
	checkGroupLaws(t, ciphertexts, 10)

	mixed, err := NewProductGroup(smallGroup(t), g)
	require.NoError(t, err)
	checkGroupLaws(t, mixed, 10)
}
