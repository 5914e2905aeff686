// Package bytetree implements the Verificatum byte tree format: a recursive, length-prefixed
// binary encoding in which every value is either a leaf holding raw bytes or a node holding an
// ordered list of child trees.
//
// A leaf is encoded as 0x01, its length as 4 byte big-endian unsigned integer, and its bytes. A node
// is encoded as 0x00, its number of children as 4 byte big-endian unsigned integer, and the
// encodings of its children.
package bytetree

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-errors/errors"
	"github.com/ivxv/vmnv/big"
)

const (
	tagNode   byte = 0
	tagLeaf   byte = 1
	headerLen      = 5

	// maxDepth bounds the nesting of decoded trees; proof files nest a handful of levels.
	maxDepth = 64
)

var (
	// ErrMalformed is returned when a byte buffer does not hold a well-formed byte tree.
	ErrMalformed = errors.New("malformed byte tree")
	// ErrShape is returned when a well-formed byte tree does not have the expected structure.
	ErrShape = errors.New("unexpected byte tree shape")
)

// Tree is an immutable byte tree: a leaf when it carries data, a node when it carries children.
type Tree struct {
	leaf     bool
	data     []byte
	children []*Tree
}

// Leaf returns a leaf holding a copy of data.
func Leaf(data []byte) *Tree {
	return &Tree{leaf: true, data: append([]byte{}, data...)}
}

// LeafString returns a leaf holding the bytes of s.
func LeafString(s string) *Tree {
	return &Tree{leaf: true, data: []byte(s)}
}

// LeafInt returns a leaf holding the minimal two's complement encoding of i.
func LeafInt(i *big.Int) *Tree {
	return &Tree{leaf: true, data: i.TwosComplement()}
}

// LeafUint32 returns a leaf holding the 4 byte big-endian encoding of v.
func LeafUint32(v uint32) *Tree {
	data := make([]byte, 4)
	binary.BigEndian.PutUint32(data, v)
	return &Tree{leaf: true, data: data}
}

// Node returns a node with the given children.
func Node(children ...*Tree) *Tree {
	return &Tree{children: append([]*Tree{}, children...)}
}

// NodeOfInts returns a node holding one integer leaf per value.
func NodeOfInts(values []*big.Int) *Tree {
	children := make([]*Tree, len(values))
	for i, v := range values {
		children[i] = LeafInt(v)
	}
	return &Tree{children: children}
}

func (t *Tree) IsLeaf() bool { return t.leaf }

// Bytes returns the data of a leaf, or nil for a node.
func (t *Tree) Bytes() []byte { return t.data }

// Len returns the number of bytes of a leaf or the number of children of a node.
func (t *Tree) Len() int {
	if t.leaf {
		return len(t.data)
	}
	return len(t.children)
}

// Children returns the children of a node, or nil for a leaf.
func (t *Tree) Children() []*Tree { return t.children }

// Child returns the i-th child of a node.
func (t *Tree) Child(i int) (*Tree, error) {
	if t.leaf {
		return nil, wrapf(ErrShape, "expected node, found leaf")
	}
	if i < 0 || i >= len(t.children) {
		return nil, wrapf(ErrShape, "child %d requested from node with %d children", i, len(t.children))
	}
	return t.children[i], nil
}

// Int interprets a leaf as a big-endian two's complement integer.
func (t *Tree) Int() (*big.Int, error) {
	if !t.leaf {
		return nil, wrapf(ErrShape, "expected integer leaf, found node")
	}
	i, err := new(big.Int).SetTwosComplement(t.data)
	if err != nil {
		return nil, wrapf(ErrMalformed, "%v", err)
	}
	return i, nil
}

// Ints interprets a node of leaves as an array of integers.
func (t *Tree) Ints() ([]*big.Int, error) {
	if t.leaf {
		return nil, wrapf(ErrShape, "expected integer array node, found leaf")
	}
	res := make([]*big.Int, len(t.children))
	for i, c := range t.children {
		v, err := c.Int()
		if err != nil {
			return nil, err
		}
		res[i] = v
	}
	return res, nil
}

// Equal reports whether t and o have the same structure and contents.
func (t *Tree) Equal(o *Tree) bool {
	if t.leaf != o.leaf {
		return false
	}
	if t.leaf {
		return bytes.Equal(t.data, o.data)
	}
	if len(t.children) != len(o.children) {
		return false
	}
	for i := range t.children {
		if !t.children[i].Equal(o.children[i]) {
			return false
		}
	}
	return true
}

// EncodedLen returns the length of the encoding of t.
func (t *Tree) EncodedLen() int {
	if t.leaf {
		return headerLen + len(t.data)
	}
	n := headerLen
	for _, c := range t.children {
		n += c.EncodedLen()
	}
	return n
}

// Encode returns the byte tree encoding of t.
func (t *Tree) Encode() []byte {
	buf := make([]byte, 0, t.EncodedLen())
	return t.appendTo(buf)
}

func (t *Tree) appendTo(buf []byte) []byte {
	var hdr [headerLen]byte
	if t.leaf {
		hdr[0] = tagLeaf
		binary.BigEndian.PutUint32(hdr[1:], uint32(len(t.data)))
		buf = append(buf, hdr[:]...)
		return append(buf, t.data...)
	}
	hdr[0] = tagNode
	binary.BigEndian.PutUint32(hdr[1:], uint32(len(t.children)))
	buf = append(buf, hdr[:]...)
	for _, c := range t.children {
		buf = c.appendTo(buf)
	}
	return buf
}

// WriteTo writes the encoding of t to w. Hash functions accept it directly, so large trees are
// hashed without building the complete encoding first.
func (t *Tree) WriteTo(w io.Writer) (int64, error) {
	var hdr [headerLen]byte
	if t.leaf {
		hdr[0] = tagLeaf
		binary.BigEndian.PutUint32(hdr[1:], uint32(len(t.data)))
		n, err := w.Write(hdr[:])
		if err != nil {
			return int64(n), err
		}
		m, err := w.Write(t.data)
		return int64(n + m), err
	}
	hdr[0] = tagNode
	binary.BigEndian.PutUint32(hdr[1:], uint32(len(t.children)))
	n, err := w.Write(hdr[:])
	total := int64(n)
	if err != nil {
		return total, err
	}
	for _, c := range t.children {
		m, err := c.WriteTo(w)
		total += m
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Decode parses a complete byte tree from b. Bytes following the tree are an error.
func Decode(b []byte) (*Tree, error) {
	t, n, err := DecodeAt(b, 0)
	if err != nil {
		return nil, err
	}
	if n != len(b) {
		return nil, wrapf(ErrMalformed, "%d trailing bytes", len(b)-n)
	}
	return t, nil
}

// DecodeAt parses the byte tree starting at b[offset] and returns it together with the number of
// bytes it occupies.
func DecodeAt(b []byte, offset int) (*Tree, int, error) {
	if offset < 0 || offset > len(b) {
		return nil, 0, wrapf(ErrMalformed, "invalid offset %d", offset)
	}
	return decode(b, offset, 0)
}

func decode(b []byte, offset, depth int) (*Tree, int, error) {
	if depth > maxDepth {
		return nil, 0, wrapf(ErrMalformed, "nesting deeper than %d levels at offset %d", maxDepth, offset)
	}
	if len(b)-offset < headerLen {
		return nil, 0, wrapf(ErrMalformed, "truncated header at offset %d", offset)
	}
	tag := b[offset]
	length := binary.BigEndian.Uint32(b[offset+1 : offset+headerLen])
	pos := offset + headerLen
	remaining := uint64(len(b) - pos)

	switch tag {
	case tagLeaf:
		if uint64(length) > remaining {
			return nil, 0, wrapf(ErrMalformed, "leaf at offset %d declares %d bytes, %d available", offset, length, remaining)
		}
		end := pos + int(length)
		return &Tree{leaf: true, data: append([]byte{}, b[pos:end]...)}, end - offset, nil
	case tagNode:
		// every child needs at least a header
		if uint64(length)*headerLen > remaining {
			return nil, 0, wrapf(ErrMalformed, "node at offset %d declares %d children, %d bytes available", offset, length, remaining)
		}
		children := make([]*Tree, length)
		for i := range children {
			c, n, err := decode(b, pos, depth+1)
			if err != nil {
				return nil, 0, err
			}
			children[i] = c
			pos += n
		}
		return &Tree{children: children}, pos - offset, nil
	default:
		return nil, 0, wrapf(ErrMalformed, "invalid tag %d at offset %d", tag, offset)
	}
}

func wrapf(err error, format string, a ...interface{}) error {
	return errors.Errorf(format+": %w", append(a, err)...)
}

// ReadFile parses the byte tree stored in the named file.
func ReadFile(path string) (*Tree, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapPrefix(err, "could not read byte tree", 0)
	}
	t, err := Decode(b)
	if err != nil {
		return nil, errors.WrapPrefix(err, path, 0)
	}
	return t, nil
}

// WriteFile stores the encoding of t in the named file.
func WriteFile(path string, t *Tree) error {
	return os.WriteFile(path, t.Encode(), 0o644)
}

// String returns an indented, human readable rendering of t with leaves in hexadecimal.
func (t *Tree) String() string {
	var sb strings.Builder
	t.dump(&sb, 0)
	return sb.String()
}

func (t *Tree) dump(sb *strings.Builder, depth int) {
	indent := strings.Repeat("  ", depth)
	if t.leaf {
		fmt.Fprintf(sb, "%sleaf(%d): %x\n", indent, len(t.data), t.data)
		return
	}
	fmt.Fprintf(sb, "%snode(%d)\n", indent, len(t.children))
	for _, c := range t.children {
		c.dump(sb, depth+1)
	}
}
