package oracle

import (
	"encoding/binary"
)

// PRNG is the hash-based pseudo-random generator of Verificatum. Its output is the concatenation
// of the blocks H(seed || be32(0)), H(seed || be32(1)), ...; how the output is split into reads
// does not change it.
type PRNG struct {
	hash    *Hash
	seed    []byte
	counter uint32
	block   []byte
	pos     int
}

// NewPRNG returns a generator seeded with seed.
func NewPRNG(hashName string, seed []byte) (*PRNG, error) {
	h, err := NewHash(hashName)
	if err != nil {
		return nil, err
	}
	return newPRNG(h, seed), nil
}

// PRNG returns a generator on h seeded with seed.
func (h *Hash) PRNG(seed []byte) *PRNG {
	return newPRNG(h, seed)
}

func newPRNG(h *Hash, seed []byte) *PRNG {
	return &PRNG{
		hash: h,
		seed: append([]byte{}, seed...),
		pos:  h.Size(),
	}
}

func (p *PRNG) refill() {
	var ctr [4]byte
	binary.BigEndian.PutUint32(ctr[:], p.counter)
	p.block = p.hash.Sum(p.seed, ctr[:])
	p.counter++
	p.pos = 0
}

// Read fills out with the next len(out) bytes of output. It never fails.
func (p *PRNG) Read(out []byte) (int, error) {
	n := 0
	for n < len(out) {
		if p.pos >= len(p.block) {
			p.refill()
		}
		c := copy(out[n:], p.block[p.pos:])
		p.pos += c
		n += c
	}
	return n, nil
}
