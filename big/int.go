// Package big contains an API-compatible "math/big".Int that additionally converts to and from the
// minimal big-endian two's complement form used by Verificatum byte trees (the form produced by
// java.math.BigInteger.toByteArray).
package big

import (
	cryptorand "crypto/rand"
	"fmt"
	"io"
	"math/big"

	"github.com/go-errors/errors"
)

// Int is an API-compatible "math/big".Int.
type Int big.Int

// ErrEmptyEncoding is returned when decoding a two's complement integer from zero bytes.
var ErrEmptyEncoding = errors.New("zero length integer encoding")

// SetTwosComplement sets i to the integer represented by buf in big-endian two's complement, and
// returns i. A leading byte with the high bit set yields a negative integer.
func (i *Int) SetTwosComplement(buf []byte) (*Int, error) {
	if len(buf) == 0 {
		return nil, ErrEmptyEncoding
	}
	i.SetBytes(buf)
	if buf[0]&0x80 != 0 {
		mod := new(big.Int).Lsh(big.NewInt(1), uint(8*len(buf)))
		i.Go().Sub(i.Go(), mod)
	}
	return i, nil
}

// TwosComplement returns the shortest big-endian two's complement encoding of i that still holds
// its sign bit. It always returns at least one byte.
func (i *Int) TwosComplement() []byte {
	if i.Sign() >= 0 {
		return i.Go().FillBytes(make([]byte, i.BitLen()/8+1))
	}
	// -i-1 has the same bit length as i without its sign bit
	m := new(big.Int).Neg(i.Go())
	m.Sub(m, big.NewInt(1))
	n := m.BitLen()/8 + 1
	v := new(big.Int).Lsh(big.NewInt(1), uint(8*n))
	v.Add(v, i.Go())
	return v.FillBytes(make([]byte, n))
}

// TwosComplementLen returns len(i.TwosComplement()) without allocating the encoding.
func (i *Int) TwosComplementLen() int {
	if i.Sign() >= 0 {
		return i.BitLen()/8 + 1
	}
	m := new(big.Int).Neg(i.Go())
	m.Sub(m, big.NewInt(1))
	return m.BitLen()/8 + 1
}

// RandInt wraps "crypto/rand".Int:
// returns a uniform random value in [0, max). It panics if max <= 0.
func RandInt(rnd io.Reader, max *Int) (*Int, error) {
	i, err := cryptorand.Int(rnd, max.Go())
	return Convert(i), err
}

// Convert from a "math/big".Int
func Convert(x *big.Int) *Int {
	return (*Int)(x)
}

// Convert to a "math/big".Int
func (i *Int) Go() *big.Int {
	return (*big.Int)(i)
}

// The subset of the "math/big".Int API used by this module.

func NewInt(x int64) *Int  { return Convert(big.NewInt(x)) }
func Jacobi(x, y *Int) int { return big.Jacobi(x.Go(), y.Go()) }

func (i *Int) Format(s fmt.State, ch rune) { i.Go().Format(s, ch) }
func (i *Int) Bit(j int) uint              { return i.Go().Bit(j) }
func (i *Int) Bytes() []byte               { return i.Go().Bytes() }
func (i *Int) FillBytes(buf []byte) []byte { return i.Go().FillBytes(buf) }
func (i *Int) BitLen() int                 { return i.Go().BitLen() }
func (i *Int) Int64() int64                { return i.Go().Int64() }
func (i *Int) Sign() int                   { return i.Go().Sign() }
func (i *Int) Cmp(y *Int) int              { return i.Go().Cmp(y.Go()) }
func (i *Int) ProbablyPrime(n int) bool    { return i.Go().ProbablyPrime(n) }
func (i *Int) String() string              { return i.Go().String() }
func (i *Int) Text(base int) string        { return i.Go().Text(base) }
func (i *Int) Set(x *Int) *Int             { return Convert(i.Go().Set(x.Go())) }
func (i *Int) Neg(x *Int) *Int             { return Convert(i.Go().Neg(x.Go())) }
func (i *Int) Add(x, y *Int) *Int          { return Convert(i.Go().Add(x.Go(), y.Go())) }
func (i *Int) Sub(x, y *Int) *Int          { return Convert(i.Go().Sub(x.Go(), y.Go())) }
func (i *Int) Mul(x, y *Int) *Int          { return Convert(i.Go().Mul(x.Go(), y.Go())) }
func (i *Int) Quo(x, y *Int) *Int          { return Convert(i.Go().Quo(x.Go(), y.Go())) }
func (i *Int) Mod(x, y *Int) *Int          { return Convert(i.Go().Mod(x.Go(), y.Go())) }
func (i *Int) SetBytes(buf []byte) *Int    { return Convert(i.Go().SetBytes(buf)) }
func (i *Int) Lsh(x *Int, n uint) *Int     { return Convert(i.Go().Lsh(x.Go(), n)) }
func (i *Int) Rsh(x *Int, n uint) *Int     { return Convert(i.Go().Rsh(x.Go(), n)) }
func (i *Int) Exp(x, y, m *Int) *Int {
	return Convert(i.Go().Exp(x.Go(), y.Go(), m.Go()))
}
func (i *Int) GCD(x, y, a, b *Int) *Int {
	return Convert(i.Go().GCD(x.Go(), y.Go(), a.Go(), b.Go()))
}
func (i *Int) ModInverse(g, n *Int) *Int {
	return Convert(i.Go().ModInverse(g.Go(), n.Go()))
}
func (i *Int) ModSqrt(x, p *Int) *Int {
	return Convert(i.Go().ModSqrt(x.Go(), p.Go()))
}
func (i *Int) SetBit(x *Int, j int, b uint) *Int {
	return Convert(i.Go().SetBit(x.Go(), j, b))
}
func (i *Int) SetString(s string, base int) (*Int, bool) {
	z, b := i.Go().SetString(s, base)
	return Convert(z), b
}
