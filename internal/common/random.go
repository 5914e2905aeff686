package common

import (
	"crypto/rand"
	"fmt"

	"github.com/ivxv/vmnv/big"
)

// RandomBelow returns a uniformly random integer in [0, limit).
func RandomBelow(limit *big.Int) *big.Int {
	res, err := big.RandInt(rand.Reader, limit)
	if err != nil {
		panic(fmt.Sprintf("reading random integer failed: %v", err))
	}
	return res
}

// RandomSquare returns a uniformly random non-zero quadratic residue modulo the prime p, i.e. a
// random element of the order (p-1)/2 subgroup when p is a safe prime.
func RandomSquare(p *big.Int) *big.Int {
	for {
		r := RandomBelow(p)
		if r.Sign() != 0 {
			return r.Mul(r, r).Mod(r, p)
		}
	}
}

// RandomOdd returns a random odd integer of exactly the given bit length, which must be at least 2.
func RandomOdd(bits int) *big.Int {
	r := RandomBelow(new(big.Int).Lsh(bigONE, uint(bits-1)))
	r.SetBit(r, bits-1, 1)
	return r.SetBit(r, 0, 1)
}
