package strategy

import (
	"context"

	"upnpfuzz/internal/grammar/soap"
	"upnpfuzz/internal/mutate"
	"upnpfuzz/internal/radamsa"
)

// SOAP dispatches all four fuzzing strategies for the SOAP protocol.
// Unlike SSDP/eventing, mutation here must choose between the header
// slots and the body slots with a 0.5 coin whenever the body is
// non-empty, since the two are finalized together with a
// Content-Length that has to track whichever one was mutated.
type SOAP struct {
	Gen       *soap.Generator
	Injection *mutate.Injection
	Overflow  *mutate.Overflow
	Radamsa   *radamsa.Mutator
}

// NewSOAP builds a dispatcher over gen using the canonical built-in
// mutators and the given external mutator adapter.
func NewSOAP(gen *soap.Generator, r *radamsa.Mutator) *SOAP {
	return &SOAP{Gen: gen, Injection: mutate.NewInjection(), Overflow: mutate.NewOverflow(), Radamsa: r}
}

func (d *SOAP) Dispatch(ctx context.Context, rng *mutate.Rand, selected Strategy) (Strategy, []byte) {
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

func (d *SOAP) RawStrategy(rng *mutate.Rand) (Strategy, []byte) {
	req := d.Gen.Next(rng)
	return Raw, req.Finalize(req.HeaderSlots, req.BodySlots)
}

// RadamsaStrategy mutates the finalized body bytes through the
// external mutator with 0.5 probability (only when the body is
// non-empty) and rebuilds headers against the new body length;
// otherwise it builds headers against the unmutated body length and
// mutates only those header bytes.
func (d *SOAP) RadamsaStrategy(ctx context.Context, rng *mutate.Rand) (Strategy, []byte) {
	req := d.Gen.Next(rng)
	body := soap.BuildBody(req.BodySlots)

	if len(body) > 0 && rng.Bool() {
		mutatedBody := d.Radamsa.Fuzz(ctx, body)
		headers := soap.BuildHeaders(req.HeaderSlots, len(mutatedBody))
		return Radamsa, append(headers, mutatedBody...)
	}

	headers := soap.BuildHeaders(req.HeaderSlots, len(body))
	mutatedHeaders := d.Radamsa.Fuzz(ctx, headers)
	return Radamsa, append(mutatedHeaders, body...)
}

func (d *SOAP) InjectionStrategy(rng *mutate.Rand) (Strategy, []byte) {
	return Injection, d.mutateSlots(rng, d.Injection.Mutate)
}

func (d *SOAP) OverflowStrategy(rng *mutate.Rand) (Strategy, []byte) {
	return Overflow, d.mutateSlots(rng, d.Overflow.Mutate)
}

// mutateSlots implements the shared Injection/Overflow coin: with 0.5
// probability (only when the body is non-empty) mutate the body slot
// list and rebuild headers against the new body length; otherwise
// mutate the header slot list and rebuild against the unmutated body.
func (d *SOAP) mutateSlots(rng *mutate.Rand, mutateFn func(*mutate.Rand, [][]byte) [][]byte) []byte {
	req := d.Gen.Next(rng)
	body := soap.BuildBody(req.BodySlots)

	if len(body) > 0 && rng.Bool() {
		mutatedBodySlots := mutateFn(rng, req.BodySlots)
		mutatedBody := soap.BuildBody(mutatedBodySlots)
		headers := soap.BuildHeaders(req.HeaderSlots, len(mutatedBody))
		return append(headers, mutatedBody...)
	}

	mutatedHeaderSlots := mutateFn(rng, req.HeaderSlots)
	headers := soap.BuildHeaders(mutatedHeaderSlots, len(body))
	return append(headers, body...)
}

func (d *SOAP) AllStrategy(ctx context.Context, rng *mutate.Rand) (Strategy, []byte) {
	switch pickConcrete(rng.IntN) {
	case Radamsa:
		return d.RadamsaStrategy(ctx, rng)
	case Injection:
		return d.InjectionStrategy(rng)
	default:
		return d.OverflowStrategy(rng)
	}
}
