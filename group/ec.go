package group

import (
	"crypto/elliptic"
	"fmt"

	"github.com/ivxv/vmnv/big"
)

// P384 is the name of the only supported curve.
const P384 = "P-384"

// Number of low x-coordinate bits reserved when encoding plaintexts as points. Each candidate x
// yields a point with probability 1/2, so 2^10 candidates fail with probability 2^-1024.
const encodingMargin = 10

var bigTHREE = big.NewInt(3)

// ECGroup is the group of points of a NIST prime curve.
type ECGroup struct {
	name  string
	curve elliptic.Curve
	inf   *ECElement
	base  *ECElement
}

// ECElement is a point of an ECGroup. The point at infinity has nil coordinates.
type ECElement struct {
	group *ECGroup
	x, y  *big.Int
}

// NewECGroup returns the group of the named curve. Only P-384 is supported.
func NewECGroup(name string) (*ECGroup, error) {
	var curve elliptic.Curve
	switch name {
	case P384:
		curve = elliptic.P384()
	default:
		return nil, wrapf(ErrInvalidParameters, "unknown curve %q", name)
	}
	g := &ECGroup{name: name, curve: curve}
	g.inf = &ECElement{group: g}
	params := curve.Params()
	g.base = &ECElement{group: g, x: big.Convert(params.Gx), y: big.Convert(params.Gy)}
	return g, nil
}

func (g *ECGroup) sealed() {}

// Name returns the curve name.
func (g *ECGroup) Name() string { return g.name }

// Base returns the standard base point of the curve.
func (g *ECGroup) Base() *ECElement { return g.base }

func (g *ECGroup) Identity() Element { return g.inf }

func (g *ECGroup) Order() *big.Int { return new(big.Int).Set(big.Convert(g.curve.Params().N)) }

// FieldOrder returns the characteristic of the prime field of the curve.
func (g *ECGroup) FieldOrder() *big.Int { return new(big.Int).Set(big.Convert(g.curve.Params().P)) }

// Point returns the point (x, y), which must lie on the curve.
func (g *ECGroup) Point(x, y *big.Int) (*ECElement, error) {
	if !g.curve.IsOnCurve(x.Go(), y.Go()) {
		return nil, wrapf(ErrInvalidElement, "(%s, %s) is not on %s", x, y, g.name)
	}
	return &ECElement{group: g, x: new(big.Int).Set(x), y: new(big.Int).Set(y)}, nil
}

// ElementFromBytes parses an uncompressed SEC 1 point, or a single zero byte for the point at
// infinity.
func (g *ECGroup) ElementFromBytes(data []byte) (Element, error) {
	if len(data) == 1 && data[0] == 0 {
		return g.inf, nil
	}
	x, y := elliptic.Unmarshal(g.curve, data)
	if x == nil {
		return nil, wrapf(ErrInvalidElement, "invalid %s point encoding", g.name)
	}
	return &ECElement{group: g, x: big.Convert(x), y: big.Convert(y)}, nil
}

// PaddedMessageBits returns the number of bits available to padded plaintexts.
func (g *ECGroup) PaddedMessageBits() int {
	return g.FieldOrder().BitLen() - encodingMargin
}

func (g *ECGroup) Pad(msg *Plaintext) (*Plaintext, error) {
	return msg.AddPadding((g.PaddedMessageBits() + 7) / 8)
}

// Encode shifts the message left by the encoding margin and increments the result until it is
// the x-coordinate of a curve point.
func (g *ECGroup) Encode(msg *Plaintext) (Element, error) {
	m := msg.BigInt()
	if m.BitLen() > g.PaddedMessageBits() {
		return nil, wrapf(ErrMessageTooLong, "%d bits exceed %d", m.BitLen(), g.PaddedMessageBits())
	}
	p := g.FieldOrder()
	b := big.Convert(g.curve.Params().B)
	x := new(big.Int).Lsh(m, encodingMargin)
	limit := new(big.Int).Add(x, new(big.Int).Lsh(bigONE, encodingMargin))
	for ; x.Cmp(limit) < 0 && x.Cmp(p) < 0; x.Add(x, bigONE) {
		// y^2 = x^3 - 3x + b
		rhs := new(big.Int).Mul(x, x)
		rhs.Sub(rhs, bigTHREE)
		rhs.Mul(rhs, x)
		rhs.Add(rhs, b)
		rhs.Mod(rhs, p)
		if y := new(big.Int).ModSqrt(rhs, p); y != nil {
			return &ECElement{group: g, x: new(big.Int).Set(x), y: y}, nil
		}
	}
	return nil, wrapf(ErrInvalidElement, "no point found for message")
}

// Decode drops the encoding margin from the x-coordinate.
func (g *ECGroup) Decode(el Element) (*Plaintext, error) {
	e, ok := el.(*ECElement)
	if !ok || !g.Equal(e.group) {
		return nil, wrapf(ErrGroupMismatch, "can not decode %s in %s", el.Group(), g)
	}
	if e.x == nil {
		return nil, wrapf(ErrInvalidElement, "can not decode the point at infinity")
	}
	m := new(big.Int).Rsh(e.x, encodingMargin)
	return PlaintextFromInt(m, g.PaddedMessageBits(), true)
}

func (g *ECGroup) Contains(el Element) bool {
	e, ok := el.(*ECElement)
	return ok && g.Equal(e.group)
}

func (g *ECGroup) Equal(o Group) bool {
	og, ok := o.(*ECGroup)
	return ok && og.name == g.name
}

func (g *ECGroup) String() string {
	return fmt.Sprintf("ECGroup(%s)", g.name)
}

func (e *ECElement) sealed() {}

func (e *ECElement) Group() Group { return e.group }

// IsInfinity reports whether e is the neutral element.
func (e *ECElement) IsInfinity() bool { return e.x == nil }

// Coordinates returns the affine coordinates of e, or nil for the point at infinity.
func (e *ECElement) Coordinates() (x, y *big.Int) { return e.x, e.y }

func (e *ECElement) point(x, y *big.Int) *ECElement {
	// crypto/elliptic represents infinity as (0, 0)
	if x.Sign() == 0 && y.Sign() == 0 {
		return e.group.inf
	}
	return &ECElement{group: e.group, x: x, y: y}
}

func (e *ECElement) Op(o Element) (Element, error) {
	oe, ok := o.(*ECElement)
	if !ok || !e.group.Equal(oe.group) {
		return nil, wrapf(ErrGroupMismatch, "%s and %s", e.group, o.Group())
	}
	if e.IsInfinity() {
		return oe, nil
	}
	if oe.IsInfinity() {
		return e, nil
	}
	x, y := e.group.curve.Add(e.x.Go(), e.y.Go(), oe.x.Go(), oe.y.Go())
	return e.point(big.Convert(x), big.Convert(y)), nil
}

func (e *ECElement) Scale(k *big.Int) Element {
	if e.IsInfinity() {
		return e
	}
	n := new(big.Int).Mod(k, e.group.Order())
	if n.Sign() == 0 {
		return e.group.inf
	}
	x, y := e.group.curve.ScalarMult(e.x.Go(), e.y.Go(), n.Bytes())
	return e.point(big.Convert(x), big.Convert(y))
}

func (e *ECElement) Inverse() Element {
	if e.IsInfinity() {
		return e
	}
	y := new(big.Int).Sub(e.group.FieldOrder(), e.y)
	return e.point(new(big.Int).Set(e.x), y.Mod(y, e.group.FieldOrder()))
}

// Bytes returns the uncompressed SEC 1 encoding of e, or a single zero byte for infinity.
func (e *ECElement) Bytes() []byte {
	if e.IsInfinity() {
		return []byte{0}
	}
	return elliptic.Marshal(e.group.curve, e.x.Go(), e.y.Go())
}

func (e *ECElement) Equal(o Element) bool {
	oe, ok := o.(*ECElement)
	if !ok || !e.group.Equal(oe.group) {
		return false
	}
	if e.IsInfinity() || oe.IsInfinity() {
		return e.IsInfinity() && oe.IsInfinity()
	}
	return e.x.Cmp(oe.x) == 0 && e.y.Cmp(oe.y) == 0
}

func (e *ECElement) String() string {
	if e.IsInfinity() {
		return "ECPoint(infinity)"
	}
	return fmt.Sprintf("ECPoint(%s, %s)", e.x.Text(16), e.y.Text(16))
}
