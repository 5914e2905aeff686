package vmnv

import (
	"runtime"

	"github.com/go-errors/errors"
	"github.com/ivxv/vmnv/big"
	"github.com/ivxv/vmnv/group"
)

// Options configure a Verifier.
type Options struct {
	// Threads is the number of workers used for the per-ciphertext products. Zero or less means
	// one worker per CPU.
	Threads int
	// Follower receives the verification steps; nil means the package-level Follower.
	Follower ProgressFollower
}

// Verifier checks a proof of shuffle. It recomputes the challenges of the Fiat-Shamir transform and
// then verifies the five equations of the proof. A Verifier does not modify the proof and may be
// used more than once, but not concurrently.
type Verifier struct {
	proof    *ShuffleProof
	info     *ProtocolInformation
	g        group.Element
	threads  int
	follower ProgressFollower
}

// Transcript holds the derived public values of one verification run.
type Transcript struct {
	Rho  []byte
	Seed []byte
	V    *big.Int
}

// NewVerifier returns a Verifier that runs in the calling goroutine.
func NewVerifier(proof *ShuffleProof) *Verifier {
	return NewVerifierWithOptions(proof, Options{Threads: 1})
}

// NewThreadedVerifier returns a Verifier that spreads the per-ciphertext products over the given
// number of workers, or one per CPU if threads is not positive.
func NewThreadedVerifier(proof *ShuffleProof, threads int) *Verifier {
	return NewVerifierWithOptions(proof, Options{Threads: threads})
}

func NewVerifierWithOptions(proof *ShuffleProof, opts Options) *Verifier {
	v := &Verifier{
		proof:    proof,
		info:     proof.Info,
		g:        proof.Info.Generator(),
		threads:  opts.Threads,
		follower: opts.Follower,
	}
	if v.threads <= 0 {
		v.threads = runtime.NumCPU()
	}
	if v.follower == nil {
		v.follower = Follower
	}
	// g is raised to a fresh exponent in every equation
	if g, ok := v.g.(*group.ModPElement); ok {
		if pre, err := g.Precompute(); err == nil {
			v.g = pre
		}
	}
	return v
}

// Threads returns the number of workers.
func (v *Verifier) Threads() int { return v.threads }

// ComputeA returns A = prod u_i^e_i.
func (v *Verifier) ComputeA(e []*big.Int) (group.Element, error) {
	u := v.proof.PermutationCommitment.U
	return v.fold(v.info.Group().Identity(), 0, len(u), func(i int) (group.Element, error) {
		return u[i].Scale(e[i]), nil
	})
}

// ComputeC returns C = prod u_i / prod h_i.
func (v *Verifier) ComputeC(h []group.Element) (group.Element, error) {
	u := v.proof.PermutationCommitment.U
	uProd, hProd := v.info.Group().Identity(), v.info.Group().Identity()
	var err error
	for i := range u {
		if uProd, err = uProd.Op(u[i]); err != nil {
			return nil, err
		}
		if hProd, err = hProd.Op(h[i]); err != nil {
			return nil, err
		}
		v.follower.Tick()
	}
	return uProd.Op(hProd.Inverse())
}

// ComputeD returns D = B_{N-1} / h_0^(prod e_i), with the product taken modulo the group order.
func (v *Verifier) ComputeD(h []group.Element, e []*big.Int) (group.Element, error) {
	q := v.info.Group().Order()
	prod := big.NewInt(1)
	for _, ei := range e {
		prod.Mul(prod, ei)
		prod.Mod(prod, q)
		v.follower.Tick()
	}
	b := v.proof.PoSCommitment.B
	return b[len(b)-1].Op(h[0].Scale(prod).Inverse())
}

// ComputeF returns F = prod w_i^e_i over the input ciphertexts.
func (v *Verifier) ComputeF(e []*big.Int) (group.Element, error) {
	w := v.proof.Ciphertexts
	return v.fold(v.info.CiphertextGroup().Identity(), 0, len(w), func(i int) (group.Element, error) {
		return w[i].Scale(e[i]), nil
	})
}

// VerifyA checks A^v A' = prod h_i^kE_i g^kA.
func (v *Verifier) VerifyA(val *big.Int, a group.Element, h []group.Element) error {
	c, r := v.proof.PoSCommitment, v.proof.PoSReply
	left, err := a.Scale(val).Op(c.APrime)
	if err != nil {
		return err
	}
	right, err := v.fold(v.info.Group().Identity(), 0, len(h), func(i int) (group.Element, error) {
		return h[i].Scale(r.KE[i]), nil
	})
	if err != nil {
		return err
	}
	if right, err = right.Op(v.g.Scale(r.KA)); err != nil {
		return err
	}
	return v.compare(EquationA, left, right)
}

// VerifyB checks the chain of commitments B: B_0^v B'_0 = h_0^kE_0 g^kB_0 and
// B_i^v B'_i = B_{i-1}^kE_i g^kB_i for i > 0. The first failing index is reported.
func (v *Verifier) VerifyB(val *big.Int, h []group.Element) error {
	c, r := v.proof.PoSCommitment, v.proof.PoSReply
	check := func(i int, base group.Element) error {
		left, err := c.B[i].Scale(val).Op(c.BPrime[i])
		if err != nil {
			return err
		}
		right, err := base.Scale(r.KE[i]).Op(v.g.Scale(r.KB[i]))
		if err != nil {
			return err
		}
		if err = group.SameGroup(left, right); err != nil {
			return err
		}
		if !left.Equal(right) {
			return &ProofError{Equation: EquationB, Index: i}
		}
		return nil
	}

	if err := check(0, h[0]); err != nil {
		return err
	}
	v.follower.Tick()
	return v.each(1, len(c.B), func(i int) error {
		return check(i, c.B[i-1])
	})
}

// VerifyC checks C^v C' = g^kC.
func (v *Verifier) VerifyC(val *big.Int, cc group.Element) error {
	c, r := v.proof.PoSCommitment, v.proof.PoSReply
	left, err := cc.Scale(val).Op(c.CPrime)
	if err != nil {
		return err
	}
	return v.compare(EquationC, left, v.g.Scale(r.KC))
}

// VerifyD checks D^v D' = g^kD.
func (v *Verifier) VerifyD(val *big.Int, d group.Element) error {
	c, r := v.proof.PoSCommitment, v.proof.PoSReply
	left, err := d.Scale(val).Op(c.DPrime)
	if err != nil {
		return err
	}
	return v.compare(EquationD, left, v.g.Scale(r.KD))
}

// VerifyF checks F^v F' = prod w'_i^kE_i Enc_pk(1, -kF), where the re-encryption factor is
// (pk_l^-kF, pk_r^-kF) computed componentwise.
func (v *Verifier) VerifyF(val *big.Int, f group.Element) error {
	c, r := v.proof.PoSCommitment, v.proof.PoSReply
	left, err := f.Scale(val).Op(c.FPrime)
	if err != nil {
		return err
	}
	wp := v.proof.ShuffledCiphertexts
	right, err := v.fold(v.info.CiphertextGroup().Identity(), 0, len(wp), func(i int) (group.Element, error) {
		return wp[i].Scale(r.KE[i]), nil
	})
	if err != nil {
		return err
	}

	neg := make([]*big.Int, len(r.KF))
	for i, k := range r.KF {
		neg[i] = new(big.Int).Neg(k)
	}
	halves := make([]group.Element, 2)
	for i, half := range v.proof.PublicKey.Elements() {
		if halves[i], err = half.(*group.ProductElement).ScaleVector(neg); err != nil {
			return err
		}
	}
	enc, err := v.info.CiphertextGroup().Element(halves...)
	if err != nil {
		return err
	}
	if right, err = right.Op(enc); err != nil {
		return err
	}
	return v.compare(EquationF, left, right)
}

func (v *Verifier) compare(eq Equation, left, right group.Element) error {
	if err := group.SameGroup(left, right); err != nil {
		return err
	}
	if !left.Equal(right) {
		return proofError(eq)
	}
	return nil
}

// VerifyAll checks that the proof is well formed, derives all challenges and checks the equations
// in the order C, D, A, B, F. It returns nil if the proof is valid, a *ProofError naming the first
// equation that fails, or another error if the proof could not be processed.
func (v *Verifier) VerifyAll() error {
	_, err := v.run()
	return err
}

// Verify reports whether the proof is valid. Errors are logged.
func (v *Verifier) Verify() bool {
	if err := v.VerifyAll(); err != nil {
		Logger.Infof("proof of shuffle rejected: %v", err)
		return false
	}
	return true
}

func (v *Verifier) run() (*Transcript, error) {
	if err := v.proof.Validate(); err != nil {
		Logger.Debugf("malformed proof: %v", err)
		return nil, err
	}
	n := v.proof.N()
	Logger.Debugf("verifying proof of shuffle of %d ciphertexts with %d workers", n, v.threads)
	tr := &Transcript{}
	var err error

	v.step(StepRho, 0, func() error {
		tr.Rho = v.ComputeRho()
		return nil
	})
	var h []group.Element
	if err = v.step(StepGenerators, n, func() (err error) {
		h, err = v.ComputeGenerators(tr.Rho)
		return
	}); err != nil {
		return tr, err
	}
	if err = v.step(StepSeed, 0, func() (err error) {
		tr.Seed, err = v.ComputeSeed(tr.Rho, h)
		return
	}); err != nil {
		return tr, err
	}
	var e []*big.Int
	if err = v.step(StepChallenges, n, func() (err error) {
		e, err = v.ComputeChallenges(tr.Seed)
		return
	}); err != nil {
		return tr, err
	}
	if err = v.step(StepV, 0, func() (err error) {
		tr.V, err = v.ComputeV(tr.Rho, tr.Seed)
		return
	}); err != nil {
		return tr, err
	}

	var a, c, d, f group.Element
	for _, s := range []struct {
		desc string
		n    int
		f    func() error
	}{
		{StepC, n, func() (err error) { c, err = v.ComputeC(h); return }},
		{StepVerifyC, 0, func() error { return v.VerifyC(tr.V, c) }},
		{StepD, n, func() (err error) { d, err = v.ComputeD(h, e); return }},
		{StepVerifyD, 0, func() error { return v.VerifyD(tr.V, d) }},
		{StepA, n, func() (err error) { a, err = v.ComputeA(e); return }},
		{StepVerifyA, n, func() error { return v.VerifyA(tr.V, a, h) }},
		{StepVerifyB, n, func() error { return v.VerifyB(tr.V, h) }},
		{StepF, n, func() (err error) { f, err = v.ComputeF(e); return }},
		{StepVerifyF, n, func() error { return v.VerifyF(tr.V, f) }},
	} {
		if err = v.step(s.desc, s.n, s.f); err != nil {
			return tr, err
		}
	}
	return tr, nil
}

func (v *Verifier) step(desc string, intermediates int, f func() error) error {
	v.follower.StepStart(desc, intermediates)
	defer v.follower.StepDone()
	if err := f(); err != nil {
		var perr *ProofError
		if !errors.As(err, &perr) {
			Logger.Debugf("%s failed: %v", desc, err)
		}
		return err
	}
	return nil
}
