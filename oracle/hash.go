// Package oracle implements the pseudo-random generator and the random oracle that Verificatum
// derives its non-interactive challenges from. Both are built on a hash function identified by
// name, either by its Java MessageDigest name ("SHA-256") or by its multihash name ("sha2-256").
package oracle

import (
	"hash"

	"github.com/go-errors/errors"
	"github.com/multiformats/go-multihash"
	mhcore "github.com/multiformats/go-multihash/core"
)

var (
	// ErrUnknownHash is returned for hash names that are not recognized.
	ErrUnknownHash = errors.New("unknown hash function")
	// ErrOutputLength is returned when an output buffer does not match the requested bit amount.
	ErrOutputLength = errors.New("output length does not match amount")
)

// Names used by protocol info files.
var messageDigestNames = map[string]uint64{
	"SHA-1":    mhcore.SHA1,
	"SHA-224":  mhcore.SHA2_224,
	"SHA-256":  mhcore.SHA2_256,
	"SHA-384":  mhcore.SHA2_384,
	"SHA-512":  mhcore.SHA2_512,
	"SHA3-224": mhcore.SHA3_224,
	"SHA3-256": mhcore.SHA3_256,
	"SHA3-384": mhcore.SHA3_384,
	"SHA3-512": mhcore.SHA3_512,
}

// Hash is a named hash function.
type Hash struct {
	name string
	code uint64
	size int
}

// NewHash looks up the hash function with the given name.
func NewHash(name string) (*Hash, error) {
	code, ok := messageDigestNames[name]
	if !ok {
		if code, ok = multihash.Names[name]; !ok {
			return nil, wrapf(ErrUnknownHash, "%q", name)
		}
	}
	h, err := multihash.GetHasher(code)
	if err != nil {
		return nil, wrapf(ErrUnknownHash, "%q: %v", name, err)
	}
	return &Hash{name: name, code: code, size: h.Size()}, nil
}

// Name returns the name the hash was looked up by.
func (h *Hash) Name() string { return h.name }

// Size returns the digest length in bytes.
func (h *Hash) Size() int { return h.size }

// New returns a fresh instance of the hash function.
func (h *Hash) New() hash.Hash {
	hh, err := multihash.GetHasher(h.code)
	if err != nil {
		// unreachable: the code was resolved by NewHash
		panic(err)
	}
	return hh
}

// Sum returns the digest of the concatenation of data.
func (h *Hash) Sum(data ...[]byte) []byte {
	hh := h.New()
	for _, d := range data {
		hh.Write(d)
	}
	return hh.Sum(nil)
}

func wrapf(err error, format string, a ...interface{}) error {
	return errors.Errorf(format+": %w", append(a, err)...)
}
