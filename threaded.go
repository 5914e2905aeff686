package vmnv

import (
	"github.com/ivxv/vmnv/group"
	"golang.org/x/sync/errgroup"
)

// workers returns the number of workers to use for the indices [from, to).
func (v *Verifier) workers(from, to int) int {
	n := v.threads
	if to-from < n {
		n = to - from
	}
	if n < 1 {
		n = 1
	}
	return n
}

// fold returns the product of term(i) for i in [from, to). Index i is handled by worker
// (i-from) mod workers; each worker folds its indices starting from identity and the partial
// products are combined in worker order. The group is abelian, so the result does not depend on
// the number of workers.
func (v *Verifier) fold(identity group.Element, from, to int, term func(i int) (group.Element, error)) (group.Element, error) {
	workers := v.workers(from, to)
	partials := make([]group.Element, workers)
	run := func(w int) error {
		acc := identity
		for i := from + w; i < to; i += workers {
			t, err := term(i)
			if err != nil {
				return err
			}
			if acc, err = acc.Op(t); err != nil {
				return err
			}
			v.follower.Tick()
		}
		partials[w] = acc
		return nil
	}
	if workers == 1 {
		if err := run(0); err != nil {
			return nil, err
		}
		return partials[0], nil
	}

	var eg errgroup.Group
	for w := 0; w < workers; w++ {
		w := w
		eg.Go(func() error { return run(w) })
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	Logger.Debugf("folded %d terms in %d partial products", to-from, workers)
	return group.Fold(identity, partials)
}

// each runs check(i) for i in [from, to), partitioned like fold. It returns the first error
// encountered; when several indices fail, which one is reported depends on scheduling.
func (v *Verifier) each(from, to int, check func(i int) error) error {
	workers := v.workers(from, to)
	run := func(w int) error {
		for i := from + w; i < to; i += workers {
			if err := check(i); err != nil {
				return err
			}
			v.follower.Tick()
		}
		return nil
	}
	if workers == 1 {
		return run(0)
	}

	var eg errgroup.Group
	for w := 0; w < workers; w++ {
		w := w
		eg.Go(func() error { return run(w) })
	}
	return eg.Wait()
}
