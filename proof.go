package vmnv

import (
	"os"
	"path/filepath"

	"github.com/go-errors/errors"
	"github.com/ivxv/vmnv/big"
	"github.com/ivxv/vmnv/bytetree"
	"github.com/ivxv/vmnv/group"
)

// Locations of the proof files relative to the proof directory.
const (
	CiphertextsFile           = "Ciphertexts.bt"
	ShuffledCiphertextsFile   = "ShuffledCiphertexts.bt"
	PublicKeyFile             = "FullPublicKey.bt"
	ProofsDir                 = "proofs"
	PermutationCommitmentFile = "PermutationCommitment01.bt"
	PoSCommitmentFile         = "PoSCommitment01.bt"
	PoSReplyFile              = "PoSReply01.bt"
)

type (
	// PermutationCommitment holds the commitment u to the permutation of the shuffle.
	PermutationCommitment struct {
		U []group.Element
	}

	// PoSCommitment holds the commitments of the proof of shuffle.
	PoSCommitment struct {
		B      []group.Element
		APrime group.Element
		BPrime []group.Element
		CPrime group.Element
		DPrime group.Element
		FPrime *group.ProductElement
	}

	// PoSReply holds the replies of the proof of shuffle.
	PoSReply struct {
		KA *big.Int
		KB []*big.Int
		KC *big.Int
		KD *big.Int
		KE []*big.Int
		KF []*big.Int
	}

	// ShuffleProof is the complete input of the verification: the session parameters, the
	// ciphertexts before and after the shuffle, the public key they are encrypted under, and the
	// proof transcript.
	ShuffleProof struct {
		Info                  *ProtocolInformation
		PermutationCommitment *PermutationCommitment
		PoSCommitment         *PoSCommitment
		PoSReply              *PoSReply
		Ciphertexts           []group.Element
		ShuffledCiphertexts   []group.Element
		PublicKey             *group.ProductElement
	}
)

// ParsePermutationCommitment parses the contents of the permutation commitment file.
func ParsePermutationCommitment(info *ProtocolInformation, data []byte) (*PermutationCommitment, error) {
	t, err := bytetree.Decode(data)
	if err != nil {
		return nil, err
	}
	u, err := ElementArrayFromTree(info.Group(), t)
	if err != nil {
		return nil, errors.WrapPrefix(err, "permutation commitment", 0)
	}
	return &PermutationCommitment{U: u}, nil
}

// ParsePoSCommitment parses the contents of the commitment file of the proof of shuffle.
func ParsePoSCommitment(info *ProtocolInformation, data []byte) (*PoSCommitment, error) {
	t, err := bytetree.Decode(data)
	if err != nil {
		return nil, err
	}
	if t.IsLeaf() || t.Len() != 6 {
		return nil, wrapf(ErrFormat, "commitment must be a node of six children")
	}
	ciphGroup := info.CiphertextGroup()
	g := info.Group()
	c := t.Children()
	res := &PoSCommitment{}
	if res.B, err = ElementArrayFromTree(g, c[0]); err != nil {
		return nil, errors.WrapPrefix(err, "commitment B", 0)
	}
	if res.APrime, err = ElementFromTree(g, c[1]); err != nil {
		return nil, errors.WrapPrefix(err, "commitment A'", 0)
	}
	if res.BPrime, err = ElementArrayFromTree(g, c[2]); err != nil {
		return nil, errors.WrapPrefix(err, "commitment B'", 0)
	}
	if res.CPrime, err = ElementFromTree(g, c[3]); err != nil {
		return nil, errors.WrapPrefix(err, "commitment C'", 0)
	}
	if res.DPrime, err = ElementFromTree(g, c[4]); err != nil {
		return nil, errors.WrapPrefix(err, "commitment D'", 0)
	}
	f, err := ElementFromTree(ciphGroup, c[5])
	if err != nil {
		return nil, errors.WrapPrefix(err, "commitment F'", 0)
	}
	res.FPrime = f.(*group.ProductElement)
	return res, nil
}

// ParsePoSReply parses the contents of the reply file of the proof of shuffle.
func ParsePoSReply(info *ProtocolInformation, data []byte) (*PoSReply, error) {
	t, err := bytetree.Decode(data)
	if err != nil {
		return nil, err
	}
	if t.IsLeaf() || t.Len() != 6 {
		return nil, wrapf(ErrFormat, "reply must be a node of six children")
	}
	c := t.Children()
	res := &PoSReply{}
	if res.KA, err = c[0].Int(); err != nil {
		return nil, errors.WrapPrefix(err, "reply kA", 0)
	}
	if res.KB, err = c[1].Ints(); err != nil {
		return nil, errors.WrapPrefix(err, "reply kB", 0)
	}
	if res.KC, err = c[2].Int(); err != nil {
		return nil, errors.WrapPrefix(err, "reply kC", 0)
	}
	if res.KD, err = c[3].Int(); err != nil {
		return nil, errors.WrapPrefix(err, "reply kD", 0)
	}
	if res.KE, err = c[4].Ints(); err != nil {
		return nil, errors.WrapPrefix(err, "reply kE", 0)
	}
	if res.KF, err = integersFromTree(c[5], info.KeyWidth); err != nil {
		return nil, errors.WrapPrefix(err, "reply kF", 0)
	}
	return res, nil
}

// NewShuffleProof assembles a proof from parsed values and checks that their sizes and groups
// agree with each other and with the protocol information.
func NewShuffleProof(info *ProtocolInformation, pc *PermutationCommitment, posc *PoSCommitment, posr *PoSReply,
	ciphertexts, shuffled []group.Element, pk *group.ProductElement) (*ShuffleProof, error) {
	proof := &ShuffleProof{
		Info:                  info,
		PermutationCommitment: pc,
		PoSCommitment:         posc,
		PoSReply:              posr,
		Ciphertexts:           ciphertexts,
		ShuffledCiphertexts:   shuffled,
		PublicKey:             pk,
	}
	if err := proof.Validate(); err != nil {
		return nil, err
	}
	return proof, nil
}

// Validate checks that all parts of the proof are present, have matching sizes and belong to the
// right groups.
func (p *ShuffleProof) Validate() error {
	if p.Info == nil || p.PermutationCommitment == nil || p.PoSCommitment == nil || p.PoSReply == nil || p.PublicKey == nil {
		return wrapf(ErrFormat, "incomplete proof")
	}
	if p.PoSCommitment.FPrime == nil {
		return wrapf(ErrFormat, "incomplete proof")
	}
	n := len(p.Ciphertexts)
	if n == 0 {
		return wrapf(ErrFormat, "no ciphertexts")
	}
	c, r := p.PoSCommitment, p.PoSReply
	for _, l := range []struct {
		name string
		len  int
	}{
		{"shuffled ciphertexts", len(p.ShuffledCiphertexts)},
		{"u", len(p.PermutationCommitment.U)},
		{"B", len(c.B)},
		{"B'", len(c.BPrime)},
		{"kB", len(r.KB)},
		{"kE", len(r.KE)},
	} {
		if l.len != n {
			return wrapf(ErrFormat, "%d ciphertexts but %d elements in %s", n, l.len, l.name)
		}
	}
	if len(r.KF) != p.Info.KeyWidth {
		return wrapf(ErrFormat, "kF has %d elements, expected %d", len(r.KF), p.Info.KeyWidth)
	}
	for _, ks := range [][]*big.Int{{r.KA, r.KC, r.KD}, r.KB, r.KE, r.KF} {
		for _, k := range ks {
			if k == nil {
				return wrapf(ErrFormat, "incomplete reply")
			}
		}
	}

	g := p.Info.Group()
	for _, el := range [][]group.Element{p.PermutationCommitment.U, c.B, c.BPrime, {c.APrime, c.CPrime, c.DPrime}} {
		for _, e := range el {
			if e == nil || !g.Contains(e) {
				return wrapf(group.ErrGroupMismatch, "commitment element outside %s", g)
			}
		}
	}
	ciphGroup := p.Info.CiphertextGroup()
	for _, list := range [][]group.Element{p.Ciphertexts, p.ShuffledCiphertexts, {p.PublicKey, c.FPrime}} {
		for i, e := range list {
			if !ciphGroup.Contains(e) {
				return wrapf(group.ErrGroupMismatch, "element %d is not in %s", i, ciphGroup)
			}
		}
	}
	return nil
}

// N returns the number of ciphertexts.
func (p *ShuffleProof) N() int { return len(p.Ciphertexts) }

// LoadShuffleProof reads the protocol information file and the proof directory written by a
// mix-net. Shuffle parameter files in the proof directory, when present, are applied to the
// protocol information.
func LoadShuffleProof(protinfoPath, proofDir string) (*ShuffleProof, error) {
	f := Follower
	f.StepStart(StepRead, 7)
	defer f.StepDone()

	info, err := NewProtocolInformationFromFile(protinfoPath)
	if err != nil {
		return nil, err
	}
	if HasShuffleParameters(proofDir) {
		params, err := ReadShuffleParameters(proofDir)
		if err != nil {
			return nil, err
		}
		if err = info.ApplyParameters(params); err != nil {
			return nil, err
		}
	}
	f.Tick()

	ciphGroup := info.CiphertextGroup()
	t, err := bytetree.ReadFile(filepath.Join(proofDir, PublicKeyFile))
	if err != nil {
		return nil, err
	}
	pk, err := ElementFromTree(ciphGroup, t)
	if err != nil {
		return nil, errors.WrapPrefix(err, "public key", 0)
	}
	f.Tick()

	data, err := readProofFile(proofDir, PermutationCommitmentFile)
	if err != nil {
		return nil, err
	}
	pc, err := ParsePermutationCommitment(info, data)
	if err != nil {
		return nil, err
	}
	f.Tick()

	if data, err = readProofFile(proofDir, PoSCommitmentFile); err != nil {
		return nil, err
	}
	posc, err := ParsePoSCommitment(info, data)
	if err != nil {
		return nil, err
	}
	f.Tick()

	if data, err = readProofFile(proofDir, PoSReplyFile); err != nil {
		return nil, err
	}
	posr, err := ParsePoSReply(info, data)
	if err != nil {
		return nil, err
	}
	f.Tick()

	ciphertexts, err := readElementArray(ciphGroup, filepath.Join(proofDir, CiphertextsFile))
	if err != nil {
		return nil, err
	}
	f.Tick()
	shuffled, err := readElementArray(ciphGroup, filepath.Join(proofDir, ShuffledCiphertextsFile))
	if err != nil {
		return nil, err
	}
	f.Tick()

	Logger.Debugf("loaded proof of shuffle of %d ciphertexts over %s", len(ciphertexts), info.Group())
	return NewShuffleProof(info, pc, posc, posr, ciphertexts, shuffled, pk.(*group.ProductElement))
}

// WriteDir stores the proof files in dir, in the layout read by LoadShuffleProof.
func (p *ShuffleProof) WriteDir(dir string) error {
	if err := os.MkdirAll(filepath.Join(dir, ProofsDir), 0755); err != nil {
		return errors.WrapPrefix(err, "proof directory", 0)
	}
	pk, err := ElementTree(p.PublicKey)
	if err != nil {
		return err
	}
	ciphertexts, err := ElementArrayTree(p.Ciphertexts)
	if err != nil {
		return err
	}
	shuffled, err := ElementArrayTree(p.ShuffledCiphertexts)
	if err != nil {
		return err
	}
	pc, err := p.PermutationCommitment.Tree()
	if err != nil {
		return err
	}
	posc, err := p.PoSCommitment.Tree()
	if err != nil {
		return err
	}
	for path, t := range map[string]*bytetree.Tree{
		PublicKeyFile:           pk,
		CiphertextsFile:         ciphertexts,
		ShuffledCiphertextsFile: shuffled,
		filepath.Join(ProofsDir, PermutationCommitmentFile): pc,
		filepath.Join(ProofsDir, PoSCommitmentFile):         posc,
		filepath.Join(ProofsDir, PoSReplyFile):              p.PoSReply.Tree(),
	} {
		if err := bytetree.WriteFile(filepath.Join(dir, path), t); err != nil {
			return errors.WrapPrefix(err, path, 0)
		}
	}
	return nil
}

func readProofFile(proofDir, name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(proofDir, ProofsDir, name))
	if err != nil {
		return nil, errors.WrapPrefix(err, "could not read proof file", 0)
	}
	return data, nil
}

func readElementArray(g group.Group, path string) ([]group.Element, error) {
	t, err := bytetree.ReadFile(path)
	if err != nil {
		return nil, err
	}
	res, err := ElementArrayFromTree(g, t)
	if err != nil {
		return nil, errors.WrapPrefix(err, filepath.Base(path), 0)
	}
	return res, nil
}
