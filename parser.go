package vmnv

import (
	"encoding/hex"
	"strings"

	"github.com/ivxv/vmnv/big"
	"github.com/ivxv/vmnv/bytetree"
	"github.com/ivxv/vmnv/group"
)

// Class names identifying the group in a marshalled group description.
const (
	ClassModPGroup = "com.verificatum.arithm.ModPGroup"
	ClassECGroup   = "com.verificatum.arithm.ECqPGroup"
)

// UnmarshalGroup splits a marshalled group description "<class>::<hex byte tree>" into the class
// name and the byte tree of the group parameters.
func UnmarshalGroup(pgroup string) (string, *bytetree.Tree, error) {
	parts := strings.Split(pgroup, "::")
	if len(parts) != 2 {
		return "", nil, wrapf(ErrFormat, "invalid group description")
	}
	desc := parts[1]
	// some producers terminate the description with a newline
	if len(desc)%2 == 1 && strings.HasSuffix(desc, "\n") {
		desc = desc[:len(desc)-1]
	}
	data, err := hex.DecodeString(desc)
	if err != nil {
		return "", nil, wrapf(ErrFormat, "group description is not hexadecimal")
	}
	t, err := bytetree.Decode(data)
	if err != nil {
		return "", nil, err
	}
	if t.IsLeaf() || t.Len() != 2 {
		return "", nil, wrapf(ErrFormat, "group description must be a node of two children")
	}
	class := t.Children()[0]
	if !class.IsLeaf() {
		return "", nil, wrapf(ErrFormat, "group class must be a leaf")
	}
	return string(class.Bytes()), t.Children()[1], nil
}

// ParseGroupGenerator parses a marshalled group description and returns the standard generator of
// the group it describes.
func ParseGroupGenerator(pgroup string) (group.Element, error) {
	class, params, err := UnmarshalGroup(pgroup)
	if err != nil {
		return nil, err
	}
	switch class {
	case ClassModPGroup:
		return parseModPGenerator(params)
	case ClassECGroup:
		return parseECGenerator(params)
	default:
		return nil, wrapf(ErrFormat, "unknown group class %q", class)
	}
}

func parseModPGenerator(params *bytetree.Tree) (*group.ModPElement, error) {
	// modulus, order, generator, encoding
	if params.IsLeaf() || params.Len() != 4 {
		return nil, wrapf(ErrFormat, "modular group parameters must be a node of four children")
	}
	p, err := params.Children()[0].Int()
	if err != nil {
		return nil, err
	}
	gv, err := params.Children()[2].Int()
	if err != nil {
		return nil, err
	}
	g, err := group.NewModPGroup(p)
	if err != nil {
		return nil, err
	}
	gen, err := g.SubgroupElement(gv)
	if err != nil {
		return nil, err
	}
	if gen.Equal(g.Identity()) {
		return nil, wrapf(ErrFormat, "generator is the identity")
	}
	return gen, nil
}

func parseECGenerator(params *bytetree.Tree) (*group.ECElement, error) {
	if !params.IsLeaf() {
		return nil, wrapf(ErrFormat, "curve parameters must be a leaf naming the curve")
	}
	g, err := group.NewECGroup(string(params.Bytes()))
	if err != nil {
		return nil, err
	}
	return g.Base(), nil
}

// MarshalGroup returns the marshalled description of the group of generator, with generator as
// its standard generator.
func MarshalGroup(generator group.Element) (string, error) {
	var class string
	var params *bytetree.Tree
	switch gen := generator.(type) {
	case *group.ModPElement:
		g := gen.Group().(*group.ModPGroup)
		class = ClassModPGroup
		params = bytetree.Node(
			bytetree.LeafInt(g.Modulus()),
			bytetree.LeafInt(g.Order()),
			bytetree.LeafInt(gen.Value()),
			bytetree.LeafUint32(1),
		)
	case *group.ECElement:
		class = ClassECGroup
		params = bytetree.LeafString(gen.Group().(*group.ECGroup).Name())
	default:
		return "", wrapf(group.ErrUnsupported, "marshalling %s", generator.Group())
	}
	t := bytetree.Node(bytetree.LeafString(class), params)
	return class + "::" + hex.EncodeToString(t.Encode()), nil
}

// ElementFromTree parses an element of g. Elements of modular groups are integer leaves and must
// lie in the subgroup of order q; product elements are nodes with one child per component.
// Curve points are not supported.
func ElementFromTree(g group.Group, t *bytetree.Tree) (group.Element, error) {
	switch g := g.(type) {
	case *group.ModPGroup:
		v, err := t.Int()
		if err != nil {
			return nil, err
		}
		return g.SubgroupElement(v)
	case *group.ProductGroup:
		if t.IsLeaf() || t.Len() != g.Width() {
			return nil, wrapf(ErrFormat, "expected node of %d components", g.Width())
		}
		elements := make([]group.Element, g.Width())
		for i, c := range g.Groups() {
			var err error
			if elements[i], err = ElementFromTree(c, t.Children()[i]); err != nil {
				return nil, err
			}
		}
		return g.Element(elements...)
	default:
		return nil, wrapf(group.ErrUnsupported, "decoding elements of %s", g)
	}
}

// ElementArrayFromTree parses an array of elements of g. Arrays of product elements are stored
// transposed: a node with one array per component, all of the same length.
func ElementArrayFromTree(g group.Group, t *bytetree.Tree) ([]group.Element, error) {
	if t.IsLeaf() {
		return nil, wrapf(bytetree.ErrShape, "expected array node, found leaf")
	}
	pg, ok := g.(*group.ProductGroup)
	if !ok {
		res := make([]group.Element, t.Len())
		for i, c := range t.Children() {
			var err error
			if res[i], err = ElementFromTree(g, c); err != nil {
				return nil, err
			}
		}
		return res, nil
	}

	if t.Len() != pg.Width() {
		return nil, wrapf(ErrFormat, "expected %d component arrays, found %d", pg.Width(), t.Len())
	}
	columns := make([][]group.Element, pg.Width())
	for i, c := range pg.Groups() {
		var err error
		if columns[i], err = ElementArrayFromTree(c, t.Children()[i]); err != nil {
			return nil, err
		}
		if len(columns[i]) != len(columns[0]) {
			return nil, wrapf(ErrFormat, "component arrays have lengths %d and %d", len(columns[0]), len(columns[i]))
		}
	}
	res := make([]group.Element, len(columns[0]))
	for j := range res {
		row := make([]group.Element, pg.Width())
		for i := range columns {
			row[i] = columns[i][j]
		}
		var err error
		if res[j], err = pg.Element(row...); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// Transpose turns an array of product elements into a single product element of arrays: the
// component at a given position of the result holds that component of every input element, in
// order. All elements must belong to the same product group.
func Transpose(elements []group.Element) (*group.ProductElement, error) {
	if len(elements) == 0 {
		return nil, wrapf(ErrFormat, "can not transpose an empty array")
	}
	first, ok := elements[0].(*group.ProductElement)
	if !ok {
		return nil, wrapf(group.ErrGroupMismatch, "%s is not a product group", elements[0].Group())
	}
	pg := first.Group().(*group.ProductGroup)
	for _, el := range elements {
		if !pg.Contains(el) {
			return nil, wrapf(group.ErrGroupMismatch, "%s and %s", pg, el.Group())
		}
	}
	return transpose(pg, elements)
}

func transpose(pg *group.ProductGroup, elements []group.Element) (*group.ProductElement, error) {
	components := make([]group.Element, pg.Width())
	groups := make([]group.Group, pg.Width())
	for i, c := range pg.Groups() {
		column := make([]group.Element, len(elements))
		for j, el := range elements {
			column[j] = el.(*group.ProductElement).Elements()[i]
		}
		var err error
		if cp, ok := c.(*group.ProductGroup); ok {
			components[i], err = transpose(cp, column)
		} else {
			var array *group.ProductGroup
			if array, err = group.NewPowerGroup(c, len(column)); err == nil {
				components[i], err = array.Element(column...)
			}
		}
		if err != nil {
			return nil, err
		}
		groups[i] = components[i].Group()
	}
	res, err := group.NewProductGroup(groups...)
	if err != nil {
		return nil, err
	}
	return res.Element(components...)
}

// integersFromTree parses an array of exactly n integers.
func integersFromTree(t *bytetree.Tree, n int) ([]*big.Int, error) {
	ints, err := t.Ints()
	if err != nil {
		return nil, err
	}
	if len(ints) != n {
		return nil, wrapf(ErrFormat, "expected %d integers, found %d", n, len(ints))
	}
	return ints, nil
}
