// Package fuzzloop drives the sequential, single-threaded fuzzing
// loop shared by all three protocols: dispatch a strategy, send,
// probe liveness, and on failure save the crash and wait for the
// target to come back.
package fuzzloop

import (
	"context"
	"time"

	"upnpfuzz/internal/display"
	"upnpfuzz/internal/flog"
	"upnpfuzz/internal/monitor"
	"upnpfuzz/internal/mutate"
	"upnpfuzz/internal/netio"
	"upnpfuzz/internal/strategy"
)

// DispatchFunc produces one iteration's (strategy tag, request bytes).
type DispatchFunc func(ctx context.Context, rng *mutate.Rand, selected strategy.Strategy) (strategy.Strategy, []byte)

// Params configures one protocol's fuzz loop run.
type Params struct {
	GeneratorName    string
	SelectedStrategy strategy.Strategy
	Dispatch         DispatchFunc

	Transport *netio.Transport
	Prober    monitor.Prober
	AliveURL  string

	Display *display.Display
	Monitor *monitor.State

	Delay time.Duration
	RNG   *mutate.Rand

	// OnResponse is the eventing-only SID tracking hook; nil for
	// SSDP/SOAP.
	OnResponse func(response []byte)
}

// Run executes the eight-step loop until ctx is cancelled.
func Run(ctx context.Context, p Params) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		current, request := p.Dispatch(ctx, p.RNG, p.SelectedStrategy)

		p.Display.Stats(p.Transport.Stats, p.Monitor.CrashCount, p.GeneratorName, p.SelectedStrategy.String(), current.String())
		p.Display.Request(request)

		response := p.Transport.Send(ctx, request)
		p.Display.Response(response)

		if p.OnResponse != nil {
			p.OnResponse(response)
		}

		if !monitor.Probe(ctx, p.Prober, p.AliveURL) {
			p.handleCrash(ctx, current, request)
		}

		if !sleep(ctx, p.Delay) {
			return
		}
	}
}

func (p Params) handleCrash(ctx context.Context, current strategy.Strategy, request []byte) {
	p.Monitor.CrashCount++

	path, err := monitor.SaveCrash(p.Monitor.CrashDir, p.GeneratorName, current.String(), p.Monitor.CrashCount, request, time.Now())
	if err != nil {
		flog.Errorf("failed to save crash: %v", err)
	} else {
		flog.Warnf("target unresponsive, saved crash to %s", path)
	}

	monitor.Restart(ctx, p.Monitor.RestartCmd)

	for !monitor.Probe(ctx, p.Prober, p.AliveURL) {
		if !sleep(ctx, p.Monitor.RestartDelay) {
			return
		}
	}
}

// sleep waits for d or ctx cancellation, reporting whether it
// completed normally (false means the caller should stop looping).
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		select {
		case <-ctx.Done():
			return false
		default:
			return true
		}
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
