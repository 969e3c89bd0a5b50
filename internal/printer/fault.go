package printer

import (
	"math/rand"
	"sync"
)

// FaultPolicy decides when the simulated printer misbehaves. Injecting it
// keeps the failure contract testable with deterministic policies.
type FaultPolicy interface {
	// ShouldGoOffline is consulted on a job's first attempt only.
	ShouldGoOffline() bool
	// ShouldFail is consulted on every attempt; policies that model
	// transient faults are expected to go quiet for later attempts.
	ShouldFail(attempt int) bool
}

// RandomFaultPolicy models a flaky thermal printer: a chance of being
// offline on first contact, and a chance of a transient failure on each of
// the first three attempts.
type RandomFaultPolicy struct {
	mu          sync.Mutex
	rng         *rand.Rand
	offlineRate float64
	failureRate float64
}

func NewRandomFaultPolicy(offlineRate, failureRate float64, seed int64) *RandomFaultPolicy {
	return &RandomFaultPolicy{
		rng:         rand.New(rand.NewSource(seed)),
		offlineRate: offlineRate,
		failureRate: failureRate,
	}
}

func (p *RandomFaultPolicy) ShouldGoOffline() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rng.Float64() < p.offlineRate
}

func (p *RandomFaultPolicy) ShouldFail(attempt int) bool {
	if attempt >= 3 {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rng.Float64() < p.failureRate
}

// NoFaults is the policy for environments without failure injection.
type NoFaults struct{}

func (NoFaults) ShouldGoOffline() bool { return false }
func (NoFaults) ShouldFail(int) bool   { return false }
