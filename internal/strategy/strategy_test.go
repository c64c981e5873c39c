package strategy

import (
	"bytes"
	"context"
	"strconv"
	"testing"

	"upnpfuzz/internal/grammar/soap"
	"upnpfuzz/internal/grammar/ssdp"
	"upnpfuzz/internal/mutate"
	"upnpfuzz/internal/radamsa"
)

func TestSSDPRawStrategyReportsRawTag(t *testing.T) {
	gen := ssdp.New("192.168.1.1", 1900)
	disp := NewSSDP(gen, radamsa.New("/does/not/exist"))

	tag, out := disp.Dispatch(context.Background(), mutate.NewRand(1, 1), Raw)
	if tag != Raw {
		t.Fatalf("expected Raw tag, got %v", tag)
	}
	if len(out) == 0 {
		t.Fatal("expected non-empty request bytes")
	}
}

func TestSSDPAllStrategyReportsConcreteTagNotAll(t *testing.T) {
	gen := ssdp.New("192.168.1.1", 1900)
	disp := NewSSDP(gen, radamsa.New("/does/not/exist"))

	tag, _ := disp.Dispatch(context.Background(), mutate.NewRand(3, 3), All)
	if tag == All {
		t.Fatal("expected a concrete strategy tag, not All")
	}
	if tag != Radamsa && tag != Injection && tag != Overflow {
		t.Fatalf("expected a non-raw concrete tag, got %v", tag)
	}
}

func soapCatalog() soap.Catalog {
	return soap.Catalog{
		{
			ControlURL:  "/ctl/SwitchPower",
			ServiceType: "urn:schemas-upnp-org:service:SwitchPower:1",
			Name:        "SetTarget",
			Direction:   soap.In,
			Args: []soap.Argument{
				{Name: "NewTargetValue", DataType: "boolean"},
			},
		},
	}
}

func contentLengthOf(t *testing.T, out []byte) int {
	t.Helper()
	idx := bytes.Index(out, []byte("CONTENT-LENGTH: "))
	if idx < 0 {
		t.Fatal("expected a Content-Length header")
	}
	rest := out[idx+len("CONTENT-LENGTH: "):]
	end := bytes.Index(rest, []byte("\r\n"))
	n, err := strconv.Atoi(string(rest[:end]))
	if err != nil {
		t.Fatalf("failed to parse Content-Length: %v", err)
	}
	return n
}

func TestSOAPInjectionKeepsContentLengthAccurateRegardlessOfCoin(t *testing.T) {
	gen := soap.New(soapCatalog(), "192.168.1.50", 80)
	disp := NewSOAP(gen, radamsa.New("/does/not/exist"))

	for seed := uint64(0); seed < 20; seed++ {
		rng := mutate.NewRand(seed, seed)
		_, out := disp.Dispatch(context.Background(), rng, Injection)

		idx := bytes.Index(out, []byte("\r\n\r\n"))
		if idx < 0 {
			t.Fatalf("seed %d: expected a header/body separator", seed)
		}
		body := out[idx+4:]
		if contentLengthOf(t, out) != len(body) {
			t.Fatalf("seed %d: Content-Length does not match body length", seed)
		}
	}
}

func TestSOAPOverflowKeepsContentLengthAccurate(t *testing.T) {
	gen := soap.New(soapCatalog(), "192.168.1.50", 80)
	disp := NewSOAP(gen, radamsa.New("/does/not/exist"))

	for seed := uint64(100); seed < 120; seed++ {
		rng := mutate.NewRand(seed, seed)
		_, out := disp.Dispatch(context.Background(), rng, Overflow)

		idx := bytes.Index(out, []byte("\r\n\r\n"))
		body := out[idx+4:]
		if contentLengthOf(t, out) != len(body) {
			t.Fatalf("seed %d: Content-Length does not match body length", seed)
		}
	}
}
