package cts

import (
	"time"

	"github.com/sigtrust/cts/clock"
	"github.com/sigtrust/cts/model"
	"github.com/sigtrust/cts/poe"
	"github.com/sigtrust/cts/policy"
)

// Builder configures and executes a CTS run. It mirrors the teacher's
// Document.Verify()/VerifyBuilder functional-options pattern (verify.go,
// root package): a fluent setter chain that only runs the underlying
// algorithm once, on Run.
type Builder struct {
	chain  model.Chain
	diag   model.DiagnosticData
	policy policy.Policy
	poe    poe.Store
	clock  clock.Clock
}

// New starts a Builder for the given chain and diagnostic data.
func New(chain model.Chain, diag model.DiagnosticData) *Builder {
	return &Builder{
		chain: chain,
		diag:  diag,
		clock: clock.System{},
	}
}

// WithPolicy sets the validation policy. Required before Run.
func (b *Builder) WithPolicy(p policy.Policy) *Builder {
	b.policy = p
	return b
}

// WithPOE sets the Proof-of-Existence store. Required before Run.
func (b *Builder) WithPOE(store poe.Store) *Builder {
	b.poe = store
	return b
}

// At pins "now" to a fixed instant instead of the system clock, the way
// §8's scenarios pin T0.
func (b *Builder) At(now time.Time) *Builder {
	b.clock = clock.Fixed(now)
	return b
}

// Run executes the CTS algorithm and returns its conclusion. Run panics if
// WithPolicy or WithPOE was never called, or if the chain is empty or nil
// collaborators were supplied — all programming errors per §7.
func (b *Builder) Run() Conclusion {
	if b.policy == nil {
		panic("cts: Builder.Run called without WithPolicy")
	}
	if b.poe == nil {
		panic("cts: Builder.Run called without WithPOE")
	}
	return Run(b.clock.Now(), b.policy, b.diag, b.poe, b.chain)
}
