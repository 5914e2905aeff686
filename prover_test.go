package vmnv

import (
	"fmt"
	mathrand "math/rand"
	"sync"
	"testing"

	"github.com/ivxv/vmnv/big"
	"github.com/ivxv/vmnv/group"
	"github.com/stretchr/testify/require"
)

// An honest prover for the proof of shuffle, used to produce valid proofs for the tests.

const testGroupBits = 128

var (
	testGroupOnce sync.Once
	testGenerator *group.ModPElement
	testGroupErr  error
)

func testProtocolInformation(t *testing.T) *ProtocolInformation {
	testGroupOnce.Do(func() {
		_, testGenerator, testGroupErr = group.GenerateModPGroup(testGroupBits)
	})
	require.NoError(t, testGroupErr)

	pgroup, err := MarshalGroup(testGenerator)
	require.NoError(t, err)
	info, err := NewProtocolInformation("3.1.0", "MixSession", "Test mix-net", pgroup, 128, 64, "SHA-256", "SHA-256", 1, 50)
	require.NoError(t, err)
	return info
}

type prover struct {
	t    *testing.T
	info *ProtocolInformation
	g    *group.ModPGroup
	q    *big.Int
}

// witness holds the secrets of an honest proof.
type witness struct {
	perm []int
	r    []*big.Int
	s    [][]*big.Int
}

func newProver(t *testing.T, info *ProtocolInformation) *prover {
	g := info.Group().(*group.ModPGroup)
	return &prover{t: t, info: info, g: g, q: g.Order()}
}

func (p *prover) op(a, b group.Element) group.Element {
	res, err := a.Op(b)
	require.NoError(p.t, err)
	return res
}

func (p *prover) exp(k *big.Int) group.Element {
	return p.info.Generator().Scale(k)
}

func (p *prover) exponents(n int) []*big.Int {
	res := make([]*big.Int, n)
	for i := range res {
		res[i] = p.g.RandomExponent()
	}
	return res
}

// enc returns the encryption of the identity under pk with the exponent vector s.
func (p *prover) enc(pk *group.ProductElement, s []*big.Int) group.Element {
	halves := make([]group.Element, 2)
	for i, half := range pk.Elements() {
		var err error
		halves[i], err = half.(*group.ProductElement).ScaleVector(s)
		require.NoError(p.t, err)
	}
	res, err := p.info.CiphertextGroup().Element(halves...)
	require.NoError(p.t, err)
	return res
}

func (p *prover) randomHalf() group.Element {
	half := p.info.CiphertextGroup().Groups()[0].(*group.ProductGroup)
	els := make([]group.Element, half.Width())
	for i := range els {
		els[i] = p.g.RandomElement()
	}
	res, err := half.Element(els...)
	require.NoError(p.t, err)
	return res
}

func (p *prover) publicKey() *group.ProductElement {
	gens := make([]group.Element, KeyWidth)
	ys := make([]group.Element, KeyWidth)
	for i := range gens {
		gens[i] = p.info.Generator()
		ys[i] = p.exp(p.g.RandomExponent())
	}
	half := p.info.CiphertextGroup().Groups()[0].(*group.ProductGroup)
	l, err := half.Element(gens...)
	require.NoError(p.t, err)
	r, err := half.Element(ys...)
	require.NoError(p.t, err)
	pk, err := p.info.CiphertextGroup().Element(l, r)
	require.NoError(p.t, err)
	return pk
}

func (p *prover) ciphertexts(n int) []group.Element {
	res := make([]group.Element, n)
	for i := range res {
		el, err := p.info.CiphertextGroup().Element(p.randomHalf(), p.randomHalf())
		require.NoError(p.t, err)
		res[i] = el
	}
	return res
}

func (p *prover) mod(x *big.Int) *big.Int {
	return x.Mod(x, p.q)
}

// reply returns v*secret + mask mod q.
func (p *prover) reply(v, secret, mask *big.Int) *big.Int {
	res := new(big.Int).Mul(v, secret)
	return p.mod(res.Add(res, mask))
}

// toyProtocolInformation returns protocol information over the group modulo 23. The session id
// is chosen such that none of the n derived generators is 0 modulo 23.
func toyProtocolInformation(t *testing.T, n int) *ProtocolInformation {
	for i := 0; i < 64; i++ {
		info, err := NewProtocolInformation("3.1.0", "ToySession", "Toy mix-net", modPDescription(23, 4),
			128, 64, "SHA-256", "SHA-256", 1, 50)
		require.NoError(t, err)
		info.AuxSid = fmt.Sprintf("toy%d", i)
		ver := NewVerifier(&ShuffleProof{Info: info, Ciphertexts: make([]group.Element, n)})
		if _, err = ver.ComputeGenerators(ver.ComputeRho()); err == nil {
			return info
		}
	}
	t.Fatalf("no usable session for %d generators modulo 23", n)
	return nil
}

// newHonestProof re-encrypts and shuffles n random ciphertexts and proves the shuffle.
func newHonestProof(t *testing.T, n int) (*ShuffleProof, *witness) {
	return newHonestProofFor(t, testProtocolInformation(t), n)
}

func newHonestProofFor(t *testing.T, info *ProtocolInformation, n int) (*ShuffleProof, *witness) {
	p := newProver(t, info)
	pk := p.publicKey()
	w := p.ciphertexts(n)

	wit := &witness{perm: mathrand.Perm(n), r: p.exponents(n), s: make([][]*big.Int, n)}
	wp := make([]group.Element, n)
	for i := range wit.s {
		wit.s[i] = p.exponents(KeyWidth)
	}
	for j, i := range wit.perm {
		wp[i] = p.op(w[j], p.enc(pk, wit.s[i]))
	}

	proof := &ShuffleProof{
		Info:                  info,
		PermutationCommitment: &PermutationCommitment{},
		PoSCommitment:         &PoSCommitment{},
		PoSReply:              &PoSReply{},
		Ciphertexts:           w,
		ShuffledCiphertexts:   wp,
		PublicKey:             pk,
	}
	ver := NewVerifier(proof)
	rho := ver.ComputeRho()
	h, err := ver.ComputeGenerators(rho)
	require.NoError(t, err)

	u := make([]group.Element, n)
	for j, i := range wit.perm {
		u[j] = p.op(p.exp(wit.r[j]), h[i])
	}
	proof.PermutationCommitment.U = u

	seed, err := ver.ComputeSeed(rho, h)
	require.NoError(t, err)
	e, err := ver.ComputeChallenges(seed)
	require.NoError(t, err)
	// e'_i = e_j for i = perm[j]
	ep := make([]*big.Int, n)
	for j, i := range wit.perm {
		ep[i] = p.mod(new(big.Int).Set(e[j]))
	}

	b, beta, omegaE := p.exponents(n), p.exponents(n), p.exponents(n)
	omegaA, omegaC, omegaD := p.g.RandomExponent(), p.g.RandomExponent(), p.g.RandomExponent()
	omegaF := p.exponents(KeyWidth)

	c := &PoSCommitment{B: make([]group.Element, n), BPrime: make([]group.Element, n)}
	d := big.NewInt(0)
	for i := 0; i < n; i++ {
		prev := h[0]
		if i > 0 {
			prev = c.B[i-1]
		}
		c.B[i] = p.op(p.exp(b[i]), prev.Scale(ep[i]))
		c.BPrime[i] = p.op(p.exp(beta[i]), prev.Scale(omegaE[i]))
		d.Mul(d, ep[i])
		p.mod(d.Add(d, b[i]))
	}
	c.APrime = p.exp(omegaA)
	for i := range h {
		c.APrime = p.op(c.APrime, h[i].Scale(omegaE[i]))
	}
	c.CPrime = p.exp(omegaC)
	c.DPrime = p.exp(omegaD)
	negOmegaF := make([]*big.Int, KeyWidth)
	for l := range omegaF {
		negOmegaF[l] = new(big.Int).Neg(omegaF[l])
	}
	f := p.enc(pk, negOmegaF)
	for i := range wp {
		f = p.op(f, wp[i].Scale(omegaE[i]))
	}
	c.FPrime = f.(*group.ProductElement)
	proof.PoSCommitment = c

	v, err := ver.ComputeV(rho, seed)
	require.NoError(t, err)

	re, rsum := big.NewInt(0), big.NewInt(0)
	for j := range wit.r {
		re.Add(re, new(big.Int).Mul(wit.r[j], e[j]))
		rsum.Add(rsum, wit.r[j])
	}
	reply := &PoSReply{
		KA: p.reply(v, p.mod(re), omegaA),
		KB: make([]*big.Int, n),
		KC: p.reply(v, p.mod(rsum), omegaC),
		KD: p.reply(v, d, omegaD),
		KE: make([]*big.Int, n),
		KF: make([]*big.Int, KeyWidth),
	}
	for i := 0; i < n; i++ {
		reply.KB[i] = p.reply(v, b[i], beta[i])
		reply.KE[i] = p.reply(v, ep[i], omegaE[i])
	}
	for l := range reply.KF {
		se := big.NewInt(0)
		for i := range wit.s {
			se.Add(se, new(big.Int).Mul(wit.s[i][l], ep[i]))
		}
		reply.KF[l] = p.reply(v, p.mod(se), omegaF[l])
	}
	proof.PoSReply = reply

	require.NoError(t, proof.Validate())
	return proof, wit
}
