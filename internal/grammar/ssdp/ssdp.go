// Package ssdp builds the two UPnP discovery request shapes, Search
// and Notify. Neither needs a remote grammar fetch: the slot layout is
// fixed, only the slot values vary.
package ssdp

import (
	"fmt"

	"upnpfuzz/internal/mutate"
)

// Kind distinguishes the two request shapes.
type Kind int

const (
	Search Kind = iota
	Notify
)

// userAgents is the ten-entry table of realistic strings Search/Notify
// draw SERVER/User-Agent values from.
var userAgents = []string{
	"Linux/3.14.0 UPnP/1.0 libupnp/1.6.19",
	"Darwin/20.1.0 UPnP/1.0 libupnp/1.8.6",
	"Windows NT/10.0 UPnP/1.0 Windows-DeviceSpooler/10.0",
	"FreeBSD/12.2 UPnP/1.0 libupnp/1.14.0",
	"Linux/5.4.0 UPnP/1.1 libupnp/1.14.14",
	"SonosOS/14.9 UPnP/1.0 Sonos/58.3-65290",
	"POSIX UPnP/1.0 Intel MicroStack/1.0.2345",
	"Ubuntu/20.04 UPnP/1.0 BubbleUPnP/4.2.1",
	"Android/11 UPnP/1.0 Cling/2.1.2",
	"Roku/9.4 UPnP/1.0 Roku/DVP-9.4",
}

var searchTargets = []string{"ssdp:all", "upnp:rootdevice"}

// MulticastAddr is the standard SSDP discovery multicast target.
const MulticastAddr = "239.255.255.250"

// MulticastPort is the standard SSDP discovery multicast port.
const MulticastPort = 1900

// Request is one synthesized SSDP request, ready for mutation and
// finalization.
type Request struct {
	Kind  Kind
	Slots [][]byte
}

// Generator produces SSDP Search/Notify requests against a fixed
// unicast target.
type Generator struct {
	Host string
	Port int
}

// New builds a Generator targeting host:port.
func New(host string, port int) *Generator {
	return &Generator{Host: host, Port: port}
}

// Next returns one of Search or Notify, chosen uniformly at random.
func (g *Generator) Next(rng *mutate.Rand) *Request {
	if rng.Bool() {
		return g.search(rng)
	}
	return g.notify(rng)
}

// search builds an M-SEARCH request. Slots, in order: host, port, MAN,
// MX, ST, User-Agent.
func (g *Generator) search(rng *mutate.Rand) *Request {
	mx := fmt.Sprintf("%d", rng.IntN(5)+1) // 1..5
	st := searchTargets[rng.IntN(len(searchTargets))]
	ua := userAgents[rng.IntN(len(userAgents))]

	return &Request{
		Kind: Search,
		Slots: [][]byte{
			[]byte(g.Host),
			[]byte(fmt.Sprintf("%d", g.Port)),
			[]byte("ssdp:discover"),
			[]byte(mx),
			[]byte(st),
			[]byte(ua),
		},
	}
}

// notify builds a NOTIFY request. Slots, in order: host, port, NT,
// NTS, USN, LOCATION, CACHE-CONTROL, SERVER, BOOTID, CONFIGID.
func (g *Generator) notify(rng *mutate.Rand) *Request {
	ua := userAgents[rng.IntN(len(userAgents))]
	usn := fmt.Sprintf("uuid:%08x-0000-0000-0000-%012x", rng.Uint64N(1<<32), rng.Uint64N(1<<48))
	location := fmt.Sprintf("http://%s:%d/description.xml", g.Host, g.Port)
	bootid := fmt.Sprintf("%d", rng.IntN(1<<16))
	configid := fmt.Sprintf("%d", rng.IntN(1<<16))

	return &Request{
		Kind: Notify,
		Slots: [][]byte{
			[]byte(g.Host),
			[]byte(fmt.Sprintf("%d", g.Port)),
			[]byte("upnp:rootdevice"),
			[]byte("ssdp:alive"),
			[]byte(usn),
			[]byte(location),
			[]byte("max-age=1800"),
			[]byte(ua),
			[]byte(bootid),
			[]byte(configid),
		},
	}
}

// Finalize interleaves slots with CRLF-framed HTTP header lines,
// terminated by a blank line. slots must have the same length and
// order Next produced for r.Kind.
func (r *Request) Finalize(slots [][]byte) []byte {
	switch r.Kind {
	case Search:
		return finalizeSearch(slots)
	default:
		return finalizeNotify(slots)
	}
}

func finalizeSearch(s [][]byte) []byte {
	var out []byte
	out = append(out, "M-SEARCH * HTTP/1.1\r\n"...)
	out = append(out, "HOST: "...)
	out = append(out, s[0]...)
	out = append(out, ':')
	out = append(out, s[1]...)
	out = append(out, "\r\n"...)
	out = append(out, "MAN: \""...)
	out = append(out, s[2]...)
	out = append(out, "\"\r\n"...)
	out = append(out, "MX: "...)
	out = append(out, s[3]...)
	out = append(out, "\r\n"...)
	out = append(out, "ST: "...)
	out = append(out, s[4]...)
	out = append(out, "\r\n"...)
	out = append(out, "USER-AGENT: "...)
	out = append(out, s[5]...)
	out = append(out, "\r\n\r\n"...)
	return out
}

func finalizeNotify(s [][]byte) []byte {
	var out []byte
	out = append(out, "NOTIFY * HTTP/1.1\r\n"...)
	out = append(out, "HOST: "...)
	out = append(out, s[0]...)
	out = append(out, ':')
	out = append(out, s[1]...)
	out = append(out, "\r\n"...)
	out = append(out, "NT: "...)
	out = append(out, s[2]...)
	out = append(out, "\r\n"...)
	out = append(out, "NTS: "...)
	out = append(out, s[3]...)
	out = append(out, "\r\n"...)
	out = append(out, "USN: "...)
	out = append(out, s[4]...)
	out = append(out, "\r\n"...)
	out = append(out, "LOCATION: "...)
	out = append(out, s[5]...)
	out = append(out, "\r\n"...)
	out = append(out, "CACHE-CONTROL: "...)
	out = append(out, s[6]...)
	out = append(out, "\r\n"...)
	out = append(out, "SERVER: "...)
	out = append(out, s[7]...)
	out = append(out, "\r\n"...)
	out = append(out, "BOOTID.UPNP.ORG: "...)
	out = append(out, s[8]...)
	out = append(out, "\r\n"...)
	out = append(out, "CONFIGID.UPNP.ORG: "...)
	out = append(out, s[9]...)
	out = append(out, "\r\n\r\n"...)
	return out
}

// Multicast builds the standalone discovery request: MAN
// "ssdp:discover", MX 1, ST ssdp:all, addressed to the standard
// multicast host:port.
func Multicast() []byte {
	var out []byte
	out = append(out, "M-SEARCH * HTTP/1.1\r\n"...)
	out = append(out, fmt.Sprintf("HOST: %s:%d\r\n", MulticastAddr, MulticastPort)...)
	out = append(out, "MAN: \"ssdp:discover\"\r\n"...)
	out = append(out, "MX: 1\r\n"...)
	out = append(out, "ST: ssdp:all\r\n\r\n"...)
	return out
}
