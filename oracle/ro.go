package oracle

import (
	"encoding/binary"
	"hash"
)

// RandomOracle is the Verificatum random oracle with a fixed input.
type RandomOracle struct {
	hash *Hash
	seed []byte
}

// NewRandomOracle returns an oracle on the input seed.
func NewRandomOracle(hashName string, seed []byte) (*RandomOracle, error) {
	h, err := NewHash(hashName)
	if err != nil {
		return nil, err
	}
	return h.RandomOracle(seed), nil
}

// RandomOracle returns an oracle on h with the input seed.
func (h *Hash) RandomOracle(seed []byte) *RandomOracle {
	return &RandomOracle{hash: h, seed: append([]byte{}, seed...)}
}

// Read fills out with amountBits bits of oracle output; out must be (amountBits+7)/8 bytes long.
// Different amounts give unrelated outputs.
func (ro *RandomOracle) Read(out []byte, amountBits int) error {
	q, err := newQuery(ro.hash, amountBits)
	if err != nil {
		return err
	}
	_, _ = q.Write(ro.seed)
	return q.Read(out)
}

// Bytes returns amountBits bits of oracle output.
func (ro *RandomOracle) Bytes(amountBits int) ([]byte, error) {
	if amountBits <= 0 {
		return nil, wrapf(ErrOutputLength, "amount %d", amountBits)
	}
	out := make([]byte, (amountBits+7)/8)
	if err := ro.Read(out, amountBits); err != nil {
		return nil, err
	}
	return out, nil
}

// Query is a random oracle query whose input is written incrementally. It lets large inputs, such
// as encoded ciphertext lists, be streamed into the oracle.
type Query struct {
	hash   *Hash
	amount int
	h      hash.Hash
}

// NewQuery starts a query for amountBits bits of output.
func NewQuery(hashName string, amountBits int) (*Query, error) {
	h, err := NewHash(hashName)
	if err != nil {
		return nil, err
	}
	return h.Query(amountBits)
}

// Query starts a query on h for amountBits bits of output.
func (h *Hash) Query(amountBits int) (*Query, error) {
	return newQuery(h, amountBits)
}

func newQuery(h *Hash, amountBits int) (*Query, error) {
	if amountBits <= 0 {
		return nil, wrapf(ErrOutputLength, "amount %d", amountBits)
	}
	q := &Query{hash: h, amount: amountBits, h: h.New()}
	var prefix [4]byte
	binary.BigEndian.PutUint32(prefix[:], uint32(amountBits))
	q.h.Write(prefix[:])
	return q, nil
}

// Write appends data to the oracle input.
func (q *Query) Write(data []byte) (int, error) {
	return q.h.Write(data)
}

// Read fills out with the oracle output for the input written so far. The bits of out[0] above the
// requested amount are cleared.
func (q *Query) Read(out []byte) error {
	if len(out) != (q.amount+7)/8 {
		return wrapf(ErrOutputLength, "%d bytes for %d bits", len(out), q.amount)
	}
	prng := newPRNG(q.hash, q.h.Sum(nil))
	_, _ = prng.Read(out)
	if r := q.amount % 8; r != 0 {
		out[0] &= byte(1<<r) - 1
	}
	return nil
}
