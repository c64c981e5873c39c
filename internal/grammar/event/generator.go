package event

import (
	"fmt"
	"regexp"

	"upnpfuzz/internal/mutate"
)

// Kind distinguishes the three eventing request shapes.
type Kind int

const (
	NewSubscribe Kind = iota
	RenewalSubscribe
	Unsubscribe
)

const placeholderSID = "uuid:1234-5678-90ab-cdef"

var sidPattern = regexp.MustCompile(`SID: (.*?)\r\n`)

// Request is one synthesized eventing request, ready for mutation and
// finalization.
type Request struct {
	Kind  Kind
	Slots [][]byte
}

// Generator produces NewSubscribe/RenewalSubscribe/Unsubscribe
// requests, tracking subscription identifiers issued by the target.
type Generator struct {
	Endpoints Endpoints
	Host      string
	Port      int
	Callback  string
	Table     *SubscriptionTable

	currentEvent string
}

// New builds a Generator over a bootstrap endpoint set.
func New(endpoints Endpoints, host string, port int, callback string) *Generator {
	return &Generator{
		Endpoints: endpoints,
		Host:      host,
		Port:      port,
		Callback:  callback,
		Table:     NewSubscriptionTable(),
	}
}

// Next picks uniformly among the three eventing request variants and
// builds its slots per the §4.6 selection and SID rules.
func (g *Generator) Next(rng *mutate.Rand) *Request {
	switch rng.IntN(3) {
	case 0:
		return g.newSubscribe(rng)
	case 1:
		return g.renewalSubscribe(rng)
	default:
		return g.unsubscribe(rng)
	}
}

func (g *Generator) randomEndpoint(rng *mutate.Rand) string {
	return g.Endpoints[rng.IntN(len(g.Endpoints))]
}

// newSubscribe picks a random event URL, remembers it as the current
// event for response-side SID tracking, and builds its slots: event,
// host, port, callback, NT, TIMEOUT.
func (g *Generator) newSubscribe(rng *mutate.Rand) *Request {
	event := g.randomEndpoint(rng)
	g.currentEvent = event

	return &Request{
		Kind: NewSubscribe,
		Slots: [][]byte{
			[]byte(event),
			[]byte(g.Host),
			[]byte(fmt.Sprintf("%d", g.Port)),
			[]byte(g.Callback),
			[]byte("upnp:event"),
			[]byte("Second-7200"),
		},
	}
}

// renewalSubscribe picks a random tracked SID (and its event) when the
// table is non-empty; otherwise it synthesizes with a placeholder SID
// and a random event. Slots: event, host, port, SID, TIMEOUT.
func (g *Generator) renewalSubscribe(rng *mutate.Rand) *Request {
	sid, eventURL, ok := g.Table.Random(rng.IntN)
	if !ok {
		sid = placeholderSID
		eventURL = g.randomEndpoint(rng)
	}

	return &Request{
		Kind: RenewalSubscribe,
		Slots: [][]byte{
			[]byte(eventURL),
			[]byte(g.Host),
			[]byte(fmt.Sprintf("%d", g.Port)),
			[]byte(sid),
			[]byte("Second-3600"),
		},
	}
}

// unsubscribe applies the same SID-selection rule as renewal, but when
// a SID is drawn from the table it is removed before the request is
// built. Slots: event, host, port, SID.
func (g *Generator) unsubscribe(rng *mutate.Rand) *Request {
	sid, eventURL, ok := g.Table.Random(rng.IntN)
	if ok {
		g.Table.Remove(sid)
	} else {
		sid = placeholderSID
		eventURL = g.randomEndpoint(rng)
	}

	return &Request{
		Kind: Unsubscribe,
		Slots: [][]byte{
			[]byte(eventURL),
			[]byte(g.Host),
			[]byte(fmt.Sprintf("%d", g.Port)),
			[]byte(sid),
		},
	}
}

// Finalize interleaves slots with CRLF-framed HTTP header lines,
// terminated by a blank line. slots must have the same length and
// order Next produced for r.Kind.
func (r *Request) Finalize(slots [][]byte) []byte {
	switch r.Kind {
	case NewSubscribe:
		return finalizeNewSubscribe(slots)
	case RenewalSubscribe:
		return finalizeRenewalSubscribe(slots)
	default:
		return finalizeUnsubscribe(slots)
	}
}

func finalizeNewSubscribe(s [][]byte) []byte {
	var out []byte
	out = append(out, "SUBSCRIBE "...)
	out = append(out, s[0]...)
	out = append(out, " HTTP/1.1\r\n"...)
	out = append(out, "HOST: "...)
	out = append(out, s[1]...)
	out = append(out, ':')
	out = append(out, s[2]...)
	out = append(out, "\r\n"...)
	out = append(out, "CALLBACK: <"...)
	out = append(out, s[3]...)
	out = append(out, ">\r\n"...)
	out = append(out, "NT: "...)
	out = append(out, s[4]...)
	out = append(out, "\r\n"...)
	out = append(out, "TIMEOUT: "...)
	out = append(out, s[5]...)
	out = append(out, "\r\n\r\n"...)
	return out
}

func finalizeRenewalSubscribe(s [][]byte) []byte {
	var out []byte
	out = append(out, "SUBSCRIBE "...)
	out = append(out, s[0]...)
	out = append(out, " HTTP/1.1\r\n"...)
	out = append(out, "HOST: "...)
	out = append(out, s[1]...)
	out = append(out, ':')
	out = append(out, s[2]...)
	out = append(out, "\r\n"...)
	out = append(out, "SID: "...)
	out = append(out, s[3]...)
	out = append(out, "\r\n"...)
	out = append(out, "TIMEOUT: "...)
	out = append(out, s[4]...)
	out = append(out, "\r\n\r\n"...)
	return out
}

func finalizeUnsubscribe(s [][]byte) []byte {
	var out []byte
	out = append(out, "UNSUBSCRIBE "...)
	out = append(out, s[0]...)
	out = append(out, " HTTP/1.1\r\n"...)
	out = append(out, "HOST: "...)
	out = append(out, s[1]...)
	out = append(out, ':')
	out = append(out, s[2]...)
	out = append(out, "\r\n"...)
	out = append(out, "SID: "...)
	out = append(out, s[3]...)
	out = append(out, "\r\n\r\n"...)
	return out
}

// TrackResponse scans a response for a SID header and, on match,
// associates it with the event URL of the most recent NewSubscribe.
func (g *Generator) TrackResponse(response []byte) {
	m := sidPattern.FindSubmatch(response)
	if m == nil {
		return
	}
	g.Table.Insert(string(m[1]), g.currentEvent)
}
