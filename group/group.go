// Package group implements the prime order groups used by Verificatum mix-nets: the quadratic
// residues modulo a safe prime, the NIST P-384 curve, and direct products of such groups, which
// represent ElGamal ciphertexts and public keys.
//
// Group and Element are closed interfaces: the only implementations are the ones in this package,
// so callers can switch exhaustively over *ModPGroup, *ECGroup and *ProductGroup.
package group

import (
	"github.com/go-errors/errors"
	"github.com/ivxv/vmnv/big"
)

var (
	// ErrGroupMismatch is returned when elements of different groups are combined.
	ErrGroupMismatch = errors.New("group mismatch")
	// ErrUnsupported is returned for operations a group does not implement.
	ErrUnsupported = errors.New("unsupported operation")
	// ErrInvalidParameters is returned when group parameters do not describe a valid group.
	ErrInvalidParameters = errors.New("invalid group parameters")
	// ErrInvalidElement is returned when a value does not represent an element of the group.
	ErrInvalidElement = errors.New("invalid group element")
	// ErrMessageTooLong is returned when a plaintext does not fit into a group element.
	ErrMessageTooLong = errors.New("message too long")
	// ErrPadding is returned when a plaintext does not carry valid padding.
	ErrPadding = errors.New("invalid padding")
)

// Group is a finite abelian group together with the plaintext encoding defined for it.
type Group interface {
	// Identity returns the neutral element.
	Identity() Element
	// Order returns the order of the group.
	Order() *big.Int
	// FieldOrder returns the order of the field the group is defined over.
	FieldOrder() *big.Int
	// ElementFromBytes is the inverse of Element.Bytes. Modular groups only accept elements of
	// the subgroup of order q.
	ElementFromBytes(data []byte) (Element, error)
	// Encode maps a padded plaintext to a group element.
	Encode(msg *Plaintext) (Element, error)
	// Decode is the inverse of Encode; the result is padded.
	Decode(el Element) (*Plaintext, error)
	// Pad adds the padding that Encode expects.
	Pad(msg *Plaintext) (*Plaintext, error)
	// PaddedMessageBits returns the number of bits available to padded plaintexts, or 0 if the
	// group has no plaintext encoding.
	PaddedMessageBits() int
	// Contains reports whether el belongs to this group.
	Contains(el Element) bool
	Equal(o Group) bool
	String() string

	sealed()
}

// Element is an immutable element of a Group.
type Element interface {
	Group() Group
	// Op applies the group operation. It fails with ErrGroupMismatch when o belongs to another group.
	Op(o Element) (Element, error)
	// Scale returns the element raised to the power k (or k-fold added, for curve points).
	Scale(k *big.Int) Element
	Inverse() Element
	// Bytes returns the canonical encoding of the element.
	Bytes() []byte
	// Equal reports whether o is the same element of the same group.
	Equal(o Element) bool
	String() string

	sealed()
}

// Fold combines elems with the group operation, starting from identity.
func Fold(identity Element, elems []Element) (Element, error) {
	res := identity
	var err error
	for _, el := range elems {
		if res, err = res.Op(el); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// SameGroup returns ErrGroupMismatch unless a and b belong to equal groups.
func SameGroup(a, b Element) error {
	if !a.Group().Equal(b.Group()) {
		return wrapf(ErrGroupMismatch, "%s and %s", a.Group(), b.Group())
	}
	return nil
}

func wrapf(err error, format string, a ...interface{}) error {
	return errors.Errorf(format+": %w", append(a, err)...)
}
