package common

import (
	"testing"

	"github.com/ivxv/vmnv/big"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModPowNegativeExponent(t *testing.T) {
	p := big.NewInt(23)
	x := big.NewInt(3)
	pos, err := ModPow(x, big.NewInt(5), p)
	require.NoError(t, err)
	neg, err := ModPow(x, big.NewInt(-5), p)
	require.NoError(t, err)
	prod := new(big.Int).Mul(pos, neg)
	assert.Equal(t, int64(1), prod.Mod(prod, p).Int64())

	_, err = ModPow(big.NewInt(6), big.NewInt(-1), big.NewInt(9))
	require.ErrorIs(t, err, ErrNoModInverse)
}

func TestLcm(t *testing.T) {
	assert.Equal(t, int64(12), Lcm(big.NewInt(4), big.NewInt(6)).Int64())
	assert.Equal(t, int64(11), Lcm(big.NewInt(11), big.NewInt(11)).Int64())
	assert.Equal(t, int64(77), Lcm(big.NewInt(7), big.NewInt(11)).Int64())
}

func TestLowBits(t *testing.T) {
	assert.Equal(t, int64(0x0f), LowBits([]byte{0xff}, 4).Int64())
	assert.Equal(t, int64(0x1ff), LowBits([]byte{0xff, 0xff}, 9).Int64())
	assert.Equal(t, int64(0xabcd), LowBits([]byte{0xab, 0xcd}, 16).Int64())
}

func TestSafePrimeOrder(t *testing.T) {
	assert.Equal(t, int64(11), SafePrimeOrder(big.NewInt(23)).Int64())
}
