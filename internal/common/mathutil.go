// Copyright 2016 Maarten Everts. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package common

import (
	"github.com/go-errors/errors"
	"github.com/ivxv/vmnv/big"
)

// Some utility code (mostly math stuff) shared by the group and verifier packages.

var bigONE = big.NewInt(1)

var ErrNoModInverse = errors.New("modular inverse does not exist")

// ModPow computes x^y mod m. The exponent (y) can be negative, in which case it
// uses the modular inverse to compute the result (in contrast to Go's Exp
// function).
func ModPow(x, y, m *big.Int) (*big.Int, error) {
	if y.Sign() == -1 {
		t := new(big.Int).ModInverse(x, m)
		if t == nil {
			return nil, ErrNoModInverse
		}
		return t.Exp(t, new(big.Int).Neg(y), m), nil
	}
	return new(big.Int).Exp(x, y, m), nil
}

// Lcm returns the least common multiple of a and b, both of which must be positive.
func Lcm(a, b *big.Int) *big.Int {
	gcd := new(big.Int).GCD(nil, nil, a, b)
	r := new(big.Int).Quo(a, gcd)
	return r.Mul(r, b)
}

// SafePrimeOrder returns (p-1)/2, the order of the quadratic residues modulo the safe prime p.
func SafePrimeOrder(p *big.Int) *big.Int {
	q := new(big.Int).Sub(p, bigONE)
	return q.Rsh(q, 1)
}

// LowBits interprets buf as an unsigned big-endian integer and returns it reduced modulo 2^bits.
func LowBits(buf []byte, bits int) *big.Int {
	r := new(big.Int).SetBytes(buf)
	if r.BitLen() <= bits {
		return r
	}
	mask := new(big.Int).Lsh(bigONE, uint(bits))
	return r.Mod(r, mask)
}
