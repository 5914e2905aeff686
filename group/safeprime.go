package group

import (
	"context"
	"runtime"

	"github.com/ivxv/vmnv/big"
	"github.com/ivxv/vmnv/internal/common"
	"golang.org/x/sync/errgroup"
)

// Number of candidates tried between checks for cancellation.
const searchBatch = 256

// IsSafePrime reports whether p is probably a safe prime, i.e. whether both p and (p-1)/2 pass
// rounds Miller-Rabin tests.
func IsSafePrime(p *big.Int, rounds int) bool {
	if p.Cmp(big.NewInt(5)) < 0 {
		return false
	}
	return p.ProbablyPrime(rounds) && common.SafePrimeOrder(p).ProbablyPrime(rounds)
}

// SafePrime returns a random safe prime of exactly the given bit length. The search runs on every
// CPU until a worker succeeds or ctx is done.
func SafePrime(ctx context.Context, bits int) (*big.Int, error) {
	if bits < 3 {
		return nil, wrapf(ErrInvalidParameters, "no safe primes of %d bits", bits)
	}
	search, cancel := context.WithCancel(ctx)
	defer cancel()

	found := make(chan *big.Int, 1)
	eg, search := errgroup.WithContext(search)
	for i := 0; i < runtime.GOMAXPROCS(0); i++ {
		eg.Go(func() error {
			if p := searchSafePrime(search, bits); p != nil {
				select {
				case found <- p:
					cancel()
				default:
				}
			}
			return nil
		})
	}
	_ = eg.Wait()

	select {
	case p := <-found:
		return p, nil
	default:
		return nil, ctx.Err()
	}
}

// searchSafePrime tries random q of bits-1 bits until 2q+1 is a safe prime, and returns nil when
// ctx is done first. Candidates are sieved with 2^(2q) = 1 mod 2q+1, which holds for every safe
// prime, before q is tested for primality.
func searchSafePrime(ctx context.Context, bits int) *big.Int {
	twoQ, t := new(big.Int), new(big.Int)
	for i := 0; ; i++ {
		if i%searchBatch == 0 && ctx.Err() != nil {
			return nil
		}
		q := common.RandomOdd(bits - 1)
		twoQ.Lsh(q, 1)
		p := new(big.Int).Add(twoQ, bigONE)
		t.Exp(bigTWO, twoQ, p)
		if t.Cmp(bigONE) == 0 && q.ProbablyPrime(primalityRounds) && p.ProbablyPrime(primalityRounds) {
			return p
		}
	}
}
