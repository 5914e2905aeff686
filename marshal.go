package vmnv

import (
	"github.com/ivxv/vmnv/bytetree"
	"github.com/ivxv/vmnv/group"
)

// ElementTree returns the byte tree representation of el read by ElementFromTree.
func ElementTree(el group.Element) (*bytetree.Tree, error) {
	switch el := el.(type) {
	case *group.ModPElement:
		return bytetree.Leaf(el.Bytes()), nil
	case *group.ProductElement:
		children := make([]*bytetree.Tree, len(el.Elements()))
		for i, c := range el.Elements() {
			var err error
			if children[i], err = ElementTree(c); err != nil {
				return nil, err
			}
		}
		return bytetree.Node(children...), nil
	default:
		return nil, wrapf(group.ErrUnsupported, "encoding elements of %s", el.Group())
	}
}

// ElementsTree returns a node holding the representation of each element.
func ElementsTree(elements []group.Element) (*bytetree.Tree, error) {
	children := make([]*bytetree.Tree, len(elements))
	for i, el := range elements {
		var err error
		if children[i], err = ElementTree(el); err != nil {
			return nil, err
		}
	}
	return bytetree.Node(children...), nil
}

// ElementArrayTree returns the representation of an array read by ElementArrayFromTree: arrays of
// product elements are transposed first.
func ElementArrayTree(elements []group.Element) (*bytetree.Tree, error) {
	if len(elements) > 0 {
		if _, ok := elements[0].(*group.ProductElement); ok {
			t, err := Transpose(elements)
			if err != nil {
				return nil, err
			}
			return ElementTree(t)
		}
	}
	return ElementsTree(elements)
}

// Tree returns the byte tree stored in the permutation commitment file.
func (c *PermutationCommitment) Tree() (*bytetree.Tree, error) {
	return ElementArrayTree(c.U)
}

// Tree returns the byte tree stored in the commitment file of the proof of shuffle.
func (c *PoSCommitment) Tree() (*bytetree.Tree, error) {
	b, err := ElementArrayTree(c.B)
	if err != nil {
		return nil, err
	}
	bPrime, err := ElementArrayTree(c.BPrime)
	if err != nil {
		return nil, err
	}
	single := make([]*bytetree.Tree, 4)
	for i, el := range []group.Element{c.APrime, c.CPrime, c.DPrime, c.FPrime} {
		if single[i], err = ElementTree(el); err != nil {
			return nil, err
		}
	}
	return bytetree.Node(b, single[0], bPrime, single[1], single[2], single[3]), nil
}

// Tree returns the byte tree stored in the reply file of the proof of shuffle.
func (r *PoSReply) Tree() *bytetree.Tree {
	return bytetree.Node(
		bytetree.LeafInt(r.KA),
		bytetree.NodeOfInts(r.KB),
		bytetree.LeafInt(r.KC),
		bytetree.LeafInt(r.KD),
		bytetree.NodeOfInts(r.KE),
		bytetree.NodeOfInts(r.KF),
	)
}
