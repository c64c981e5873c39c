package strategy

import (
	"context"

	"upnpfuzz/internal/grammar/event"
	"upnpfuzz/internal/mutate"
	"upnpfuzz/internal/radamsa"
)

// Event dispatches all four fuzzing strategies for the eventing
// protocol.
type Event struct {
	Gen       *event.Generator
	Injection *mutate.Injection
	Overflow  *mutate.Overflow
	Radamsa   *radamsa.Mutator
}

// NewEvent builds a dispatcher over gen using the canonical built-in
// mutators and the given external mutator adapter.
func NewEvent(gen *event.Generator, r *radamsa.Mutator) *Event {
	return &Event{Gen: gen, Injection: mutate.NewInjection(), Overflow: mutate.NewOverflow(), Radamsa: r}
}

func (d *Event) Dispatch(ctx context.Context, rng *mutate.Rand, selected Strategy) (Strategy, []byte) {
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

func (d *Event) RawStrategy(rng *mutate.Rand) (Strategy, []byte) {
	req := d.Gen.Next(rng)
	return Raw, req.Finalize(req.Slots)
}

func (d *Event) RadamsaStrategy(ctx context.Context, rng *mutate.Rand) (Strategy, []byte) {
	req := d.Gen.Next(rng)
	finalized := req.Finalize(req.Slots)
	return Radamsa, d.Radamsa.Fuzz(ctx, finalized)
}

func (d *Event) InjectionStrategy(rng *mutate.Rand) (Strategy, []byte) {
	req := d.Gen.Next(rng)
	mutated := d.Injection.Mutate(rng, req.Slots)
	return Injection, req.Finalize(mutated)
}

func (d *Event) OverflowStrategy(rng *mutate.Rand) (Strategy, []byte) {
	req := d.Gen.Next(rng)
	mutated := d.Overflow.Mutate(rng, req.Slots)
	return Overflow, req.Finalize(mutated)
}

func (d *Event) AllStrategy(ctx context.Context, rng *mutate.Rand) (Strategy, []byte) {
	switch pickConcrete(rng.IntN) {
	case Radamsa:
		return d.RadamsaStrategy(ctx, rng)
	case Injection:
		return d.InjectionStrategy(rng)
	default:
		return d.OverflowStrategy(rng)
	}
}
