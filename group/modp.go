package group

import (
	"context"
	"fmt"
	"sync"

	"github.com/bwesterb/go-exptable"
	"github.com/ivxv/vmnv/big"
	"github.com/ivxv/vmnv/internal/common"
)

// Window size of the fixed-base exponentiation tables.
const tableWindow = 7

// Number of Miller-Rabin rounds used when checking group parameters.
const primalityRounds = 20

var (
	bigONE = big.NewInt(1)
	bigTWO = big.NewInt(2)
)

// ModPGroup is the group of quadratic residues modulo a safe prime p = 2q+1. Its elements are
// represented by integers in [1, p-1]; the group has prime order q.
type ModPGroup struct {
	p, q     *big.Int
	pMinus1  *big.Int
	elemLen  int
	identity *ModPElement
}

// ModPElement is an integer modulo p.
type ModPElement struct {
	group *ModPGroup
	value *big.Int
	table *exptable.Table

	orderOnce sync.Once
	order     *big.Int
	orderErr  error
}

// NewModPGroup returns the group modulo p. p must be a safe prime.
func NewModPGroup(p *big.Int) (*ModPGroup, error) {
	if !IsSafePrime(p, primalityRounds) {
		return nil, wrapf(ErrInvalidParameters, "modulus %s is not a safe prime", p)
	}
	g := &ModPGroup{
		p:       new(big.Int).Set(p),
		q:       common.SafePrimeOrder(p),
		pMinus1: new(big.Int).Sub(p, bigONE),
		elemLen: p.TwosComplementLen(),
	}
	g.identity = &ModPElement{group: g, value: big.NewInt(1)}
	return g, nil
}

// GenerateModPGroup generates a group modulo a fresh safe prime of the given bit length, together
// with a random generator of it.
func GenerateModPGroup(bits int) (*ModPGroup, *ModPElement, error) {
	p, err := SafePrime(context.Background(), bits)
	if err != nil {
		return nil, nil, err
	}
	g, err := NewModPGroup(p)
	if err != nil {
		return nil, nil, err
	}
	for {
		gen := g.RandomElement()
		if !gen.Equal(g.identity) {
			return g, gen, nil
		}
	}
}

func (g *ModPGroup) sealed() {}

// Modulus returns p.
func (g *ModPGroup) Modulus() *big.Int { return new(big.Int).Set(g.p) }

// Order returns q = (p-1)/2.
func (g *ModPGroup) Order() *big.Int { return new(big.Int).Set(g.q) }

// FieldOrder returns p.
func (g *ModPGroup) FieldOrder() *big.Int { return new(big.Int).Set(g.p) }

// ElementLen returns the length of the fixed width encoding of elements, which equals the length
// of the two's complement encoding of p.
func (g *ModPGroup) ElementLen() int { return g.elemLen }

func (g *ModPGroup) Identity() Element { return g.identity }

// Element returns the element represented by v, which must lie in [1, p-1].
func (g *ModPGroup) Element(v *big.Int) (*ModPElement, error) {
	if v.Sign() <= 0 || v.Cmp(g.p) >= 0 {
		return nil, wrapf(ErrInvalidElement, "%s is not in [1, p-1]", v)
	}
	return &ModPElement{group: g, value: new(big.Int).Set(v)}, nil
}

// SubgroupElement is like Element but additionally requires v to be a quadratic residue, i.e. to
// lie in the subgroup of order q.
func (g *ModPGroup) SubgroupElement(v *big.Int) (*ModPElement, error) {
	el, err := g.Element(v)
	if err != nil {
		return nil, err
	}
	if !el.InSubgroup() {
		return nil, wrapf(ErrInvalidElement, "%s is not a quadratic residue", v)
	}
	return el, nil
}

// RandomElement returns a uniformly random element of the subgroup of order q.
func (g *ModPGroup) RandomElement() *ModPElement {
	return &ModPElement{group: g, value: common.RandomSquare(g.p)}
}

// RandomExponent returns a uniformly random exponent in [0, q).
func (g *ModPGroup) RandomExponent() *big.Int {
	return common.RandomBelow(g.q)
}

// ElementFromBytes parses the two's complement encoding of an element of the subgroup of order q.
func (g *ModPGroup) ElementFromBytes(data []byte) (Element, error) {
	v, err := new(big.Int).SetTwosComplement(data)
	if err != nil {
		return nil, wrapf(ErrInvalidElement, "%v", err)
	}
	return g.SubgroupElement(v)
}

func (g *ModPGroup) msgBits() int { return g.q.BitLen() }

// PaddedMessageBits returns the number of bits available to padded plaintexts.
func (g *ModPGroup) PaddedMessageBits() int { return g.msgBits() }

// Pad pads msg to the byte length of q.
func (g *ModPGroup) Pad(msg *Plaintext) (*Plaintext, error) {
	return msg.AddPadding((g.msgBits() + 7) / 8)
}

// Encode maps m in [1, q] to m or p-m, whichever is a quadratic residue.
func (g *ModPGroup) Encode(msg *Plaintext) (Element, error) {
	m := msg.BigInt()
	if m.Sign() <= 0 {
		return nil, wrapf(ErrInvalidElement, "can not encode non-positive value")
	}
	if m.Cmp(g.q) > 0 {
		return nil, wrapf(ErrMessageTooLong, "value exceeds (p-1)/2")
	}
	switch big.Jacobi(m, g.p) {
	case 1:
		return &ModPElement{group: g, value: m}, nil
	case -1:
		return &ModPElement{group: g, value: new(big.Int).Sub(g.p, m)}, nil
	default:
		return nil, wrapf(ErrInvalidElement, "can not encode multiple of p")
	}
}

// Decode inverts Encode.
func (g *ModPGroup) Decode(el Element) (*Plaintext, error) {
	e, ok := el.(*ModPElement)
	if !ok || !g.Equal(e.group) {
		return nil, wrapf(ErrGroupMismatch, "can not decode %s in %s", el.Group(), g)
	}
	v := e.value
	if v.Cmp(g.q) > 0 {
		v = new(big.Int).Sub(g.p, v)
	}
	return PlaintextFromInt(v, g.msgBits(), true)
}

func (g *ModPGroup) Contains(el Element) bool {
	e, ok := el.(*ModPElement)
	return ok && g.Equal(e.group)
}

func (g *ModPGroup) Equal(o Group) bool {
	og, ok := o.(*ModPGroup)
	if !ok {
		return false
	}
	return og == g || og.p.Cmp(g.p) == 0
}

func (g *ModPGroup) String() string {
	return fmt.Sprintf("ModPGroup(%s)", g.p)
}

func (e *ModPElement) sealed() {}

func (e *ModPElement) Group() Group { return e.group }

// Value returns the integer representing e.
func (e *ModPElement) Value() *big.Int { return e.value }

// InSubgroup reports whether e lies in the subgroup of order q.
func (e *ModPElement) InSubgroup() bool {
	return big.Jacobi(e.value, e.group.p) == 1
}

// Precompute returns a copy of e that uses a fixed-base exponentiation table. This pays off for
// bases that are raised to many different exponents, such as the generator of the group. e must
// lie in the subgroup of order q.
func (e *ModPElement) Precompute() (*ModPElement, error) {
	if !e.InSubgroup() {
		return nil, wrapf(ErrInvalidElement, "fixed-base table requires a subgroup element")
	}
	res := &ModPElement{group: e.group, value: e.value, table: new(exptable.Table)}
	res.table.Compute(e.value.Go(), e.group.p.Go(), tableWindow)
	return res, nil
}

func (e *ModPElement) Op(o Element) (Element, error) {
	oe, ok := o.(*ModPElement)
	if !ok || !e.group.Equal(oe.group) {
		return nil, wrapf(ErrGroupMismatch, "%s and %s", e.group, o.Group())
	}
	v := new(big.Int).Mul(e.value, oe.value)
	return &ModPElement{group: e.group, value: v.Mod(v, e.group.p)}, nil
}

func (e *ModPElement) Scale(k *big.Int) Element {
	if e.table != nil {
		// the base has order q, so exponents reduce modulo q
		exp := new(big.Int).Mod(k, e.group.q)
		res := new(big.Int)
		e.table.Exp(res.Go(), exp.Go())
		return &ModPElement{group: e.group, value: res}
	}
	v, err := common.ModPow(e.value, k, e.group.p)
	if err != nil {
		// unreachable: elements lie in [1, p-1] and p is prime
		panic(fmt.Sprintf("exponentiation of %s failed: %v", e.value, err))
	}
	return &ModPElement{group: e.group, value: v}
}

func (e *ModPElement) Inverse() Element {
	return &ModPElement{group: e.group, value: new(big.Int).ModInverse(e.value, e.group.p)}
}

// Order returns the order of e, found by testing the divisors 1, 2, q and p-1 of p-1 in turn.
// The result is computed once.
func (e *ModPElement) Order() (*big.Int, error) {
	e.orderOnce.Do(func() {
		for _, c := range []*big.Int{bigONE, bigTWO, e.group.q, e.group.pMinus1} {
			if new(big.Int).Exp(e.value, c, e.group.p).Cmp(bigONE) == 0 {
				e.order = c
				return
			}
		}
		e.orderErr = wrapf(ErrInvalidParameters, "no order found for %s", e.value)
	})
	return e.order, e.orderErr
}

// Bytes returns the value of e left-padded to ElementLen bytes.
func (e *ModPElement) Bytes() []byte {
	return e.value.FillBytes(make([]byte, e.group.elemLen))
}

func (e *ModPElement) Equal(o Element) bool {
	oe, ok := o.(*ModPElement)
	if !ok {
		return false
	}
	return e.group.Equal(oe.group) && e.value.Cmp(oe.value) == 0
}

func (e *ModPElement) String() string {
	return e.value.String()
}
