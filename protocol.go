package vmnv

import (
	"github.com/ivxv/vmnv/big"
	"github.com/ivxv/vmnv/bytetree"
	"github.com/ivxv/vmnv/group"
	"github.com/ivxv/vmnv/internal/common"
)

// Derivation of the public values of the Fiat-Shamir transform. Every value is recomputed from the
// protocol information and the proof, never taken from the prover.

var bigTWO = big.NewInt(2)

// generatorsLabel is appended to rho to seed the independent generators h.
const generatorsLabel = "generators"

// ComputeRho returns the prefix hashed into every random oracle query: the digest of the session
// parameters.
func (v *Verifier) ComputeRho() []byte {
	info := v.info
	t := bytetree.Node(
		bytetree.LeafString(info.Version),
		bytetree.LeafString(info.Sid+"."+info.AuxSid),
		bytetree.LeafUint32(uint32(info.StatDist)),
		bytetree.LeafUint32(uint32(info.VBitLenRO)),
		bytetree.LeafUint32(uint32(info.EBitLenRO)),
		bytetree.LeafString(info.PRG),
		bytetree.LeafString(info.PGroup),
		bytetree.LeafString(info.ROHash),
	)
	return info.ROFunc().Sum(t.Encode())
}

// ComputeGenerators derives the N independent generators h of the group from rho. Only modular
// groups are supported: each generator is the square of a random integer of statdist bits more
// than the modulus.
func (v *Verifier) ComputeGenerators(rho []byte) ([]group.Element, error) {
	g, ok := v.info.Group().(*group.ModPGroup)
	if !ok {
		return nil, wrapf(group.ErrUnsupported, "deriving generators of %s", v.info.Group())
	}

	seed := append(append([]byte{}, rho...), bytetree.LeafString(generatorsLabel).Encode()...)
	prgSeed, err := v.info.ROFunc().RandomOracle(seed).Bytes(8 * v.info.PRGFunc().Size())
	if err != nil {
		return nil, err
	}
	prng := v.info.PRGFunc().PRNG(prgSeed)

	p := g.Modulus()
	bits := p.BitLen() + v.info.StatDist
	buf := make([]byte, (bits+7)/8)
	h := make([]group.Element, v.proof.N())
	for i := range h {
		if _, err = prng.Read(buf); err != nil {
			return nil, err
		}
		r := common.LowBits(buf, bits)
		if h[i], err = g.Element(r.Exp(r, bigTWO, p)); err != nil {
			return nil, err
		}
		v.follower.Tick()
	}
	return h, nil
}

// ComputeSeed returns the seed s of the batching challenges, a random oracle query over rho and the
// public inputs: g, h, u, the public key and both ciphertext lists.
func (v *Verifier) ComputeSeed(rho []byte, h []group.Element) ([]byte, error) {
	p := v.proof
	trees := make([]*bytetree.Tree, 6)
	var err error
	if trees[0], err = ElementTree(v.info.Generator()); err != nil {
		return nil, err
	}
	if trees[1], err = ElementsTree(h); err != nil {
		return nil, err
	}
	if trees[2], err = ElementsTree(p.PermutationCommitment.U); err != nil {
		return nil, err
	}
	if trees[3], err = ElementTree(p.PublicKey); err != nil {
		return nil, err
	}
	if trees[4], err = ElementArrayTree(p.Ciphertexts); err != nil {
		return nil, err
	}
	if trees[5], err = ElementArrayTree(p.ShuffledCiphertexts); err != nil {
		return nil, err
	}

	size := v.info.PRGFunc().Size()
	q, err := v.info.ROFunc().Query(8 * size)
	if err != nil {
		return nil, err
	}
	if _, err = q.Write(rho); err != nil {
		return nil, err
	}
	if _, err = bytetree.Node(trees...).WriteTo(q); err != nil {
		return nil, err
	}
	s := make([]byte, size)
	if err = q.Read(s); err != nil {
		return nil, err
	}
	return s, nil
}

// ComputeChallenges expands the seed s into the N batching exponents e of ebitlenro bits each.
func (v *Verifier) ComputeChallenges(s []byte) ([]*big.Int, error) {
	bits := v.info.EBitLenRO
	prng := v.info.PRGFunc().PRNG(s)
	buf := make([]byte, (bits+7)/8)
	e := make([]*big.Int, v.proof.N())
	for i := range e {
		if _, err := prng.Read(buf); err != nil {
			return nil, err
		}
		e[i] = common.LowBits(buf, bits)
		v.follower.Tick()
	}
	return e, nil
}

// ComputeV returns the challenge v, a random oracle query of vbitlenro bits over rho, the seed s
// and the commitment of the proof of shuffle.
func (v *Verifier) ComputeV(rho, s []byte) (*big.Int, error) {
	commitment, err := v.proof.PoSCommitment.Tree()
	if err != nil {
		return nil, err
	}
	t := bytetree.Node(bytetree.Leaf(s), commitment)
	seed := append(append([]byte{}, rho...), t.Encode()...)
	out, err := v.info.ROFunc().RandomOracle(seed).Bytes(v.info.VBitLenRO)
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(out), nil
}
