// Package netio is the fuzzer's network transport: plain TCP/UDP
// send-and-receive plus UDP multicast discovery, with best-effort
// semantics — every failure is folded into a counter, never returned
// to the caller, so the fuzz loop never has to special-case a socket
// error.
package netio

import (
	"context"
	"fmt"
	"net"
	"time"

	"golang.org/x/net/ipv4"

	"upnpfuzz/internal/flog"
)

// ResponseBufferSize bounds how much of a response is read back.
const ResponseBufferSize = 2048

// Protocol is the underlying network protocol for a Transport.
type Protocol int

const (
	TCP Protocol = iota
	UDP
)

// Stats tracks network activity for display and test assertions. Only
// the Transport mutates it; single-threaded per the fuzz loop's
// concurrency contract.
type Stats struct {
	StartTime     time.Time
	TotalRequests int
	Timeouts      int
	Errors        int
}

// Datagram is one UDP packet received during multicast discovery.
type Datagram struct {
	Data []byte
	IP   string
	Port int
}

// Transport sends fuzzed requests to a single target and reads back a
// bounded response.
type Transport struct {
	Host        string
	Port        int
	Protocol    Protocol
	Timeout     time.Duration
	InterfaceIP string

	Stats Stats
}

// New constructs a Transport. The read/write timeout applies to every
// socket operation performed by Send/SendAndCollect.
func New(host string, port int, proto Protocol, timeout time.Duration, interfaceIP string) *Transport {
	return &Transport{
		Host:        host,
		Port:        port,
		Protocol:    proto,
		Timeout:     timeout,
		InterfaceIP: interfaceIP,
		Stats:       Stats{StartTime: time.Now()},
	}
}

// Send delivers data to the target and returns whatever response bytes
// (if any) come back within the configured timeout. It never returns
// an error: timeouts and other transport failures are recorded in
// Stats and an empty slice is returned.
func (t *Transport) Send(ctx context.Context, data []byte) []byte {
	switch t.Protocol {
	case TCP:
		return t.sendTCP(ctx, data)
	default:
		return t.sendUDP(ctx, data)
	}
}

func (t *Transport) sendTCP(ctx context.Context, data []byte) []byte {
	t.Stats.TotalRequests++

	d := net.Dialer{Timeout: t.Timeout}
	conn, err := d.DialContext(ctx, "tcp", fmt.Sprintf("%s:%d", t.Host, t.Port))
	if err != nil {
		t.recordErr(err)
		return nil
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(t.Timeout))
	if _, err := conn.Write(data); err != nil {
		t.recordErr(err)
		return nil
	}

	buf := make([]byte, ResponseBufferSize)
	n, err := conn.Read(buf)
	if err != nil {
		t.recordErr(err)
		return nil
	}
	return buf[:n]
}

func (t *Transport) sendUDP(ctx context.Context, data []byte) []byte {
	t.Stats.TotalRequests++

	conn, err := net.Dial("udp", fmt.Sprintf("%s:%d", t.Host, t.Port))
	if err != nil {
		t.recordErr(err)
		return nil
	}
	defer conn.Close()

	if _, err := conn.Write(data); err != nil {
		t.recordErr(err)
		return nil
	}

	conn.SetReadDeadline(time.Now().Add(t.Timeout))
	buf := make([]byte, ResponseBufferSize)
	n, err := conn.Read(buf)
	if err != nil {
		t.recordErr(err)
		return nil
	}
	return buf[:n]
}

// recordErr classifies a transport error into the Timeouts or Errors
// counter. Never surfaced to the caller.
func (t *Transport) recordErr(err error) {
	if ne, ok := err.(net.Error); ok && ne.Timeout() {
		t.Stats.Timeouts++
		return
	}
	t.Stats.Errors++
	flog.Debugf("transport error to %s:%d: %v", t.Host, t.Port, err)
}

// SendAndCollect sends data as a UDP multicast with TTL 2 (and, if
// InterfaceIP is set, a pinned outgoing interface), then yields every
// datagram received until the socket read times out. Used only by
// SSDP discovery.
func (t *Transport) SendAndCollect(data []byte) func(yield func(Datagram) bool) {
	return func(yield func(Datagram) bool) {
		conn, err := net.ListenUDP("udp", &net.UDPAddr{})
		if err != nil {
			flog.Errorf("failed to open multicast socket: %v", err)
			return
		}
		defer conn.Close()

		pconn := ipv4.NewPacketConn(conn)
		if t.InterfaceIP != "" {
			if iface := interfaceForIP(t.InterfaceIP); iface != nil {
				_ = pconn.SetMulticastInterface(iface)
			}
		}
		_ = pconn.SetMulticastTTL(2)

		dst := &net.UDPAddr{IP: net.ParseIP(t.Host), Port: t.Port}
		if _, err := conn.WriteToUDP(data, dst); err != nil {
			flog.Errorf("failed to send multicast request: %v", err)
			return
		}

		buf := make([]byte, ResponseBufferSize)
		for {
			conn.SetReadDeadline(time.Now().Add(t.Timeout))
			n, addr, err := conn.ReadFromUDP(buf)
			if err != nil {
				return
			}
			data := make([]byte, n)
			copy(data, buf[:n])
			if !yield(Datagram{Data: data, IP: addr.IP.String(), Port: addr.Port}) {
				return
			}
		}
	}
}

func interfaceForIP(ip string) *net.Interface {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil
	}
	for i := range ifaces {
		addrs, err := ifaces[i].Addrs()
		if err != nil {
			continue
		}
		for _, a := range addrs {
			if ipNet, ok := a.(*net.IPNet); ok && ipNet.IP.String() == ip {
				return &ifaces[i]
			}
		}
	}
	return nil
}
