package vmnv

import (
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

type (
	// ProgressFollower is notified of the steps of loading and verifying a proof. Tick may be
	// called concurrently by verification workers.
	ProgressFollower interface {
		StepStart(desc string, intermediates int)
		Tick()
		StepDone()
	}

	EmptyFollower struct{}

	// LogFollower reports steps and their progress to a logger.
	LogFollower struct {
		Logger *logrus.Logger

		desc  string
		total int
		ticks int64
	}
)

// Step descriptions passed to ProgressFollower.StepStart.
const (
	StepRead       = "read proof"
	StepRho        = "compute rho"
	StepGenerators = "compute h"
	StepSeed       = "compute RO seed"
	StepChallenges = "compute e"
	StepV          = "compute v"
	StepA          = "compute A"
	StepC          = "compute C"
	StepD          = "compute D"
	StepF          = "compute F"
	StepVerifyA    = "verify A"
	StepVerifyB    = "verify B"
	StepVerifyC    = "verify C"
	StepVerifyD    = "verify D"
	StepVerifyF    = "verify F"
)

func (*EmptyFollower) StepStart(_ string, _ int) {}
func (*EmptyFollower) Tick()                     {}
func (*EmptyFollower) StepDone()                 {}

var Follower ProgressFollower = &EmptyFollower{}

func (f *LogFollower) StepStart(desc string, intermediates int) {
	f.desc, f.total = desc, intermediates
	atomic.StoreInt64(&f.ticks, 0)
	f.Logger.Infof("%s", desc)
}

// Tick logs every tenth of the step.
func (f *LogFollower) Tick() {
	n := atomic.AddInt64(&f.ticks, 1)
	if f.total < 10 {
		return
	}
	if step := int64(f.total / 10); n%step == 0 {
		f.Logger.Debugf("%s: %d/%d", f.desc, n, f.total)
	}
}

func (f *LogFollower) StepDone() {
	f.Logger.Debugf("%s: done", f.desc)
}
