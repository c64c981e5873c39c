package strategy

import (
	"context"

	"upnpfuzz/internal/grammar/ssdp"
	"upnpfuzz/internal/mutate"
	"upnpfuzz/internal/radamsa"
)

// SSDP dispatches all four fuzzing strategies for the SSDP protocol.
type SSDP struct {
	Gen       *ssdp.Generator
	Injection *mutate.Injection
	Overflow  *mutate.Overflow
	Radamsa   *radamsa.Mutator
}

// NewSSDP builds a dispatcher over gen using the canonical built-in
// mutators and the given external mutator adapter.
func NewSSDP(gen *ssdp.Generator, r *radamsa.Mutator) *SSDP {
	return &SSDP{Gen: gen, Injection: mutate.NewInjection(), Overflow: mutate.NewOverflow(), Radamsa: r}
}

// Dispatch runs the requested strategy, resolving All to a concretely
// chosen one.
func (d *SSDP) Dispatch(ctx context.Context, rng *mutate.Rand, selected Strategy) (Strategy, []byte) {
	switch selected {
	case Raw:
		return d.RawStrategy(rng)
	case Radamsa:
		return d.RadamsaStrategy(ctx, rng)
	case Injection:
		return d.InjectionStrategy(rng)
	case Overflow:
		return d.OverflowStrategy(rng)
	case All:
		return d.AllStrategy(ctx, rng)
	default:
		return d.RawStrategy(rng)
	}
}

func (d *SSDP) RawStrategy(rng *mutate.Rand) (Strategy, []byte) {
	req := d.Gen.Next(rng)
	return Raw, req.Finalize(req.Slots)
}

func (d *SSDP) RadamsaStrategy(ctx context.Context, rng *mutate.Rand) (Strategy, []byte) {
	req := d.Gen.Next(rng)
	finalized := req.Finalize(req.Slots)
	return Radamsa, d.Radamsa.Fuzz(ctx, finalized)
}

func (d *SSDP) InjectionStrategy(rng *mutate.Rand) (Strategy, []byte) {
	req := d.Gen.Next(rng)
	mutated := d.Injection.Mutate(rng, req.Slots)
	return Injection, req.Finalize(mutated)
}

func (d *SSDP) OverflowStrategy(rng *mutate.Rand) (Strategy, []byte) {
	req := d.Gen.Next(rng)
	mutated := d.Overflow.Mutate(rng, req.Slots)
	return Overflow, req.Finalize(mutated)
}

func (d *SSDP) AllStrategy(ctx context.Context, rng *mutate.Rand) (Strategy, []byte) {
	switch pickConcrete(rng.IntN) {
	case Radamsa:
		return d.RadamsaStrategy(ctx, rng)
	case Injection:
		return d.InjectionStrategy(rng)
	default:
		return d.OverflowStrategy(rng)
	}
}
