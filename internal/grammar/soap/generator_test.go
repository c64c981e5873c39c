package soap

import (
	"bufio"
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"testing"

	"upnpfuzz/internal/mutate"
)

func switchTargetCatalog() Catalog {
	return Catalog{
		{
			ControlURL:  "/ctl/SwitchPower",
			ServiceType: "urn:schemas-upnp-org:service:SwitchPower:1",
			Name:        "SetTarget",
			Direction:   In,
			Args: []Argument{
				{Name: "NewTargetValue", DataType: "boolean"},
			},
		},
	}
}

func TestRawSynthesisProducesWellFormedPOST(t *testing.T) {
	gen := New(switchTargetCatalog(), "192.168.1.50", 80)
	rng := mutate.NewRand(1, 1)

	req := gen.Next(rng)
	out := req.Finalize(req.HeaderSlots, req.BodySlots)

	parsed, err := http.ReadRequest(bufio.NewReader(bytes.NewReader(out)))
	if err != nil {
		t.Fatalf("failed to parse synthesized request as HTTP: %v", err)
	}
	if parsed.Method != "POST" {
		t.Fatalf("expected POST, got %s", parsed.Method)
	}

	wantAction := req.Action.ServiceType + "#SetTarget"
	if parsed.Header.Get("Soapaction") != fmt.Sprintf("%q", wantAction) {
		t.Fatalf("expected SOAPAction header %q, got %q", wantAction, parsed.Header.Get("Soapaction"))
	}

	bodyBytes := make([]byte, parsed.ContentLength)
	if _, err := parsed.Body.Read(bodyBytes); err != nil && parsed.ContentLength > 0 {
		t.Fatalf("failed to read body: %v", err)
	}
	if !strings.Contains(string(bodyBytes), "<NewTargetValue>") {
		t.Fatalf("expected body to contain NewTargetValue element, got %q", bodyBytes)
	}

	contentLen, _ := strconv.Atoi(parsed.Header.Get("Content-Length"))
	if contentLen != len(BuildBody(req.BodySlots)) {
		t.Fatalf("Content-Length %d does not match body length %d", contentLen, len(BuildBody(req.BodySlots)))
	}
}

func TestOutActionProducesHeadersOnlyWithZeroContentLength(t *testing.T) {
	catalog := Catalog{
		{
			ControlURL:  "/ctl/SwitchPower",
			ServiceType: "urn:schemas-upnp-org:service:SwitchPower:1",
			Name:        "GetStatus",
			Direction:   Out,
		},
	}
	gen := New(catalog, "192.168.1.50", 80)
	rng := mutate.NewRand(2, 2)

	req := gen.Next(rng)
	if len(req.BodySlots) != 0 {
		t.Fatalf("expected no body slots for an OUT action, got %d", len(req.BodySlots))
	}

	out := req.Finalize(req.HeaderSlots, req.BodySlots)
	if !bytes.Contains(out, []byte("CONTENT-LENGTH: 0\r\n")) {
		t.Fatalf("expected Content-Length: 0, got %q", out)
	}
	if !bytes.HasSuffix(out, []byte("\r\n\r\n")) {
		t.Fatalf("expected headers-only request ending in a blank line, got %q", out)
	}
}

func TestOverflowOnBodySlotKeepsContentLengthAccurate(t *testing.T) {
	gen := New(switchTargetCatalog(), "192.168.1.50", 80)
	rng := mutate.NewRand(3, 3)

	req := gen.Next(rng)
	overflow := mutate.NewOverflow()
	mutated := overflow.Mutate(rng, req.BodySlots)

	out := req.Finalize(req.HeaderSlots, mutated)
	body := BuildBody(mutated)

	idx := bytes.Index(out, []byte("CONTENT-LENGTH: "))
	if idx < 0 {
		t.Fatal("expected a Content-Length header")
	}
	rest := out[idx+len("CONTENT-LENGTH: "):]
	end := bytes.Index(rest, []byte("\r\n"))
	line := string(rest[:end])

	n, err := strconv.Atoi(line)
	if err != nil {
		t.Fatalf("failed to parse Content-Length: %v", err)
	}
	if n != len(body) {
		t.Fatalf("Content-Length %d does not match mutated body length %d", n, len(body))
	}
}
