package group

import (
	"bytes"
	"fmt"

	"github.com/ivxv/vmnv/big"
)

// Plaintext is a message that can be mapped into a group. A padded plaintext has the form
// 00 01 FF .. FF 00 message, which fixes its length and makes the message recoverable.
type Plaintext struct {
	msg    []byte
	padded bool
}

// NewPlaintext returns an unpadded plaintext holding a copy of msg.
func NewPlaintext(msg []byte) *Plaintext {
	return &Plaintext{msg: append([]byte{}, msg...)}
}

// NewPaddedPlaintext wraps bytes that already carry padding.
func NewPaddedPlaintext(msg []byte) *Plaintext {
	return &Plaintext{msg: append([]byte{}, msg...), padded: true}
}

// PlaintextFromInt returns the plaintext whose big-endian representation, left-padded with zeroes
// to (totalBits+7)/8 bytes, is v.
func PlaintextFromInt(v *big.Int, totalBits int, padded bool) (*Plaintext, error) {
	n := (totalBits + 7) / 8
	if v.Sign() < 0 || v.BitLen() > 8*n {
		return nil, wrapf(ErrMessageTooLong, "%d bit value does not fit %d bytes", v.BitLen(), n)
	}
	return &Plaintext{msg: v.FillBytes(make([]byte, n)), padded: padded}, nil
}

// Message returns a copy of the plaintext bytes.
func (m *Plaintext) Message() []byte { return append([]byte{}, m.msg...) }

func (m *Plaintext) IsPadded() bool { return m.padded }

// BigInt interprets the plaintext bytes as an unsigned big-endian integer.
func (m *Plaintext) BigInt() *big.Int { return new(big.Int).SetBytes(m.msg) }

// AddPadding pads the message to totalBytes bytes. Padded plaintexts are returned unchanged.
func (m *Plaintext) AddPadding(totalBytes int) (*Plaintext, error) {
	if m.padded {
		return m, nil
	}
	if len(m.msg) > totalBytes-3 {
		return nil, wrapf(ErrMessageTooLong, "%d bytes do not fit padding of %d bytes", len(m.msg), totalBytes)
	}
	padded := make([]byte, totalBytes)
	padded[1] = 0x01
	end := totalBytes - len(m.msg) - 1
	for i := 2; i < end; i++ {
		padded[i] = 0xff
	}
	copy(padded[end+1:], m.msg)
	return &Plaintext{msg: padded, padded: true}, nil
}

// StripPadding removes the padding. Unpadded plaintexts are returned unchanged.
func (m *Plaintext) StripPadding() (*Plaintext, error) {
	if !m.padded {
		return m, nil
	}
	if len(m.msg) < 3 {
		return nil, wrapf(ErrPadding, "%d bytes can not hold padding", len(m.msg))
	}
	if m.msg[0] != 0x00 || m.msg[1] != 0x01 {
		return nil, wrapf(ErrPadding, "incorrect padding head")
	}
	for i := 2; i < len(m.msg); i++ {
		switch m.msg[i] {
		case 0x00:
			return NewPlaintext(m.msg[i+1:]), nil
		case 0xff:
		default:
			return nil, wrapf(ErrPadding, "incorrect padding byte at %d", i)
		}
	}
	return nil, wrapf(ErrPadding, "padding is not terminated")
}

// Equal compares the messages without their padding.
func (m *Plaintext) Equal(o *Plaintext) bool {
	a, err := m.StripPadding()
	if err != nil {
		return false
	}
	b, err := o.StripPadding()
	if err != nil {
		return false
	}
	return bytes.Equal(a.msg, b.msg)
}

func (m *Plaintext) String() string {
	return fmt.Sprintf("Plaintext(%X)", m.msg)
}
