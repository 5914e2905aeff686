package group

import (
	"strings"

	"github.com/ivxv/vmnv/big"
	"github.com/ivxv/vmnv/bytetree"
	"github.com/ivxv/vmnv/internal/common"
)

// ProductGroup is the direct product of a fixed list of groups. Its elements are tuples with one
// element per component group, and all operations act componentwise.
type ProductGroup struct {
	groups   []Group
	identity *ProductElement
}

// ProductElement is a tuple of elements of the component groups of a ProductGroup.
type ProductElement struct {
	group    *ProductGroup
	elements []Element
}

// NewProductGroup returns the product of the given groups.
func NewProductGroup(groups ...Group) (*ProductGroup, error) {
	if len(groups) == 0 {
		return nil, wrapf(ErrInvalidParameters, "product of no groups")
	}
	g := &ProductGroup{groups: append([]Group{}, groups...)}
	ids := make([]Element, len(groups))
	for i, c := range groups {
		ids[i] = c.Identity()
	}
	g.identity = &ProductElement{group: g, elements: ids}
	return g, nil
}

// NewPowerGroup returns the product of multiplicity copies of g.
func NewPowerGroup(g Group, multiplicity int) (*ProductGroup, error) {
	if multiplicity <= 0 {
		return nil, wrapf(ErrInvalidParameters, "multiplicity %d", multiplicity)
	}
	groups := make([]Group, multiplicity)
	for i := range groups {
		groups[i] = g
	}
	return NewProductGroup(groups...)
}

func (g *ProductGroup) sealed() {}

// Groups returns the component groups.
func (g *ProductGroup) Groups() []Group { return g.groups }

// Width returns the number of components.
func (g *ProductGroup) Width() int { return len(g.groups) }

func (g *ProductGroup) Identity() Element { return g.identity }

// Order returns the least common multiple of the orders of the components.
func (g *ProductGroup) Order() *big.Int {
	res := g.groups[0].Order()
	for _, c := range g.groups[1:] {
		res = common.Lcm(res, c.Order())
	}
	return res
}

// FieldOrder returns the least common multiple of the field orders of the components.
func (g *ProductGroup) FieldOrder() *big.Int {
	res := g.groups[0].FieldOrder()
	for _, c := range g.groups[1:] {
		res = common.Lcm(res, c.FieldOrder())
	}
	return res
}

// Element returns the tuple of the given elements, which must belong to the respective components.
func (g *ProductGroup) Element(elements ...Element) (*ProductElement, error) {
	if len(elements) != len(g.groups) {
		return nil, wrapf(ErrGroupMismatch, "%d elements for product of width %d", len(elements), len(g.groups))
	}
	for i, el := range elements {
		if !g.groups[i].Contains(el) {
			return nil, wrapf(ErrGroupMismatch, "component %d: %s is not in %s", i, el.Group(), g.groups[i])
		}
	}
	return &ProductElement{group: g, elements: append([]Element{}, elements...)}, nil
}

// ElementFromBytes parses the byte tree produced by ProductElement.Bytes.
func (g *ProductGroup) ElementFromBytes(data []byte) (Element, error) {
	t, err := bytetree.Decode(data)
	if err != nil {
		return nil, err
	}
	return g.fromTree(t)
}

func (g *ProductGroup) fromTree(t *bytetree.Tree) (*ProductElement, error) {
	if t.IsLeaf() || t.Len() != len(g.groups) {
		return nil, wrapf(ErrInvalidElement, "expected node of %d components", len(g.groups))
	}
	elements := make([]Element, len(g.groups))
	for i, c := range g.groups {
		child := t.Children()[i]
		var err error
		if pg, ok := c.(*ProductGroup); ok {
			elements[i], err = pg.fromTree(child)
		} else if child.IsLeaf() {
			elements[i], err = c.ElementFromBytes(child.Bytes())
		} else {
			err = wrapf(ErrInvalidElement, "component %d is not a leaf", i)
		}
		if err != nil {
			return nil, err
		}
	}
	return &ProductElement{group: g, elements: elements}, nil
}

// Encode is not defined for product groups.
func (g *ProductGroup) Encode(*Plaintext) (Element, error) {
	return nil, wrapf(ErrUnsupported, "plaintext encoding in %s", g)
}

// Decode is not defined for product groups.
func (g *ProductGroup) Decode(Element) (*Plaintext, error) {
	return nil, wrapf(ErrUnsupported, "plaintext decoding in %s", g)
}

// PaddedMessageBits is 0: product groups have no plaintext encoding.
func (g *ProductGroup) PaddedMessageBits() int { return 0 }

// Pad is not defined for product groups.
func (g *ProductGroup) Pad(*Plaintext) (*Plaintext, error) {
	return nil, wrapf(ErrUnsupported, "plaintext padding in %s", g)
}

func (g *ProductGroup) Contains(el Element) bool {
	e, ok := el.(*ProductElement)
	return ok && g.Equal(e.group)
}

func (g *ProductGroup) Equal(o Group) bool {
	og, ok := o.(*ProductGroup)
	if !ok {
		return false
	}
	if og == g {
		return true
	}
	if len(og.groups) != len(g.groups) {
		return false
	}
	for i := range g.groups {
		if !g.groups[i].Equal(og.groups[i]) {
			return false
		}
	}
	return true
}

func (g *ProductGroup) String() string {
	names := make([]string, len(g.groups))
	for i, c := range g.groups {
		names[i] = c.String()
	}
	return "ProductGroup(" + strings.Join(names, ", ") + ")"
}

func (e *ProductElement) sealed() {}

func (e *ProductElement) Group() Group { return e.group }

// Elements returns the components of e. The returned slice must not be modified.
func (e *ProductElement) Elements() []Element { return e.elements }

func (e *ProductElement) Op(o Element) (Element, error) {
	oe, ok := o.(*ProductElement)
	if !ok || !e.group.Equal(oe.group) {
		return nil, wrapf(ErrGroupMismatch, "%s and %s", e.group, o.Group())
	}
	res := make([]Element, len(e.elements))
	for i := range e.elements {
		var err error
		if res[i], err = e.elements[i].Op(oe.elements[i]); err != nil {
			return nil, err
		}
	}
	return &ProductElement{group: e.group, elements: res}, nil
}

func (e *ProductElement) Scale(k *big.Int) Element {
	res := make([]Element, len(e.elements))
	for i, el := range e.elements {
		res[i] = el.Scale(k)
	}
	return &ProductElement{group: e.group, elements: res}
}

// ScaleVector raises every component to its own exponent.
func (e *ProductElement) ScaleVector(ks []*big.Int) (*ProductElement, error) {
	if len(ks) != len(e.elements) {
		return nil, wrapf(ErrGroupMismatch, "%d exponents for product of width %d", len(ks), len(e.elements))
	}
	res := make([]Element, len(e.elements))
	for i, el := range e.elements {
		res[i] = el.Scale(ks[i])
	}
	return &ProductElement{group: e.group, elements: res}, nil
}

func (e *ProductElement) Inverse() Element {
	res := make([]Element, len(e.elements))
	for i, el := range e.elements {
		res[i] = el.Inverse()
	}
	return &ProductElement{group: e.group, elements: res}
}

// Tree returns e as a byte tree node with one child per component: nested products become nodes
// and other components become leaves holding their canonical encoding.
func (e *ProductElement) Tree() *bytetree.Tree {
	children := make([]*bytetree.Tree, len(e.elements))
	for i, el := range e.elements {
		if pe, ok := el.(*ProductElement); ok {
			children[i] = pe.Tree()
		} else {
			children[i] = bytetree.Leaf(el.Bytes())
		}
	}
	return bytetree.Node(children...)
}

// Bytes returns the encoding of Tree.
func (e *ProductElement) Bytes() []byte {
	return e.Tree().Encode()
}

func (e *ProductElement) Equal(o Element) bool {
	oe, ok := o.(*ProductElement)
	if !ok || len(oe.elements) != len(e.elements) {
		return false
	}
	for i := range e.elements {
		if !e.elements[i].Equal(oe.elements[i]) {
			return false
		}
	}
	return true
}

func (e *ProductElement) String() string {
	parts := make([]string, len(e.elements))
	for i, el := range e.elements {
		parts[i] = el.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
