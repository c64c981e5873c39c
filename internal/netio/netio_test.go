package netio

import (
	"context"
	"net"
	"testing"
	"time"
)

func TestSendTCPRecordsStatsAndResponse(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		buf := make([]byte, 64)
		n, _ := conn.Read(buf)
		conn.Write(append([]byte("echo:"), buf[:n]...))
	}()

	addr := ln.Addr().(*net.TCPAddr)
	tr := New(addr.IP.String(), addr.Port, TCP, time.Second, "")

	resp := tr.Send(context.Background(), []byte("ping"))
	if string(resp) != "echo:ping" {
		t.Fatalf("unexpected response: %q", resp)
	}
	if tr.Stats.TotalRequests != 1 {
		t.Fatalf("expected 1 request, got %d", tr.Stats.TotalRequests)
	}
	if tr.Stats.Errors != 0 || tr.Stats.Timeouts != 0 {
		t.Fatalf("expected no errors/timeouts, got %+v", tr.Stats)
	}
}

func TestSendTCPTimeout(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		time.Sleep(200 * time.Millisecond)
	}()

	addr := ln.Addr().(*net.TCPAddr)
	tr := New(addr.IP.String(), addr.Port, TCP, 20*time.Millisecond, "")

	resp := tr.Send(context.Background(), []byte("ping"))
	if resp != nil {
		t.Fatalf("expected empty response on timeout, got %q", resp)
	}
	if tr.Stats.Timeouts != 1 {
		t.Fatalf("expected 1 timeout, got stats=%+v", tr.Stats)
	}
}

func TestSendUDPRecordsTotalRequests(t *testing.T) {
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.ParseIP("127.0.0.1")})
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer conn.Close()

	go func() {
		buf := make([]byte, 64)
		n, addr, err := conn.ReadFromUDP(buf)
		if err != nil {
			return
		}
		conn.WriteToUDP(append([]byte("pong:"), buf[:n]...), addr)
	}()

	addr := conn.LocalAddr().(*net.UDPAddr)
	tr := New("127.0.0.1", addr.Port, UDP, time.Second, "")

	resp := tr.Send(context.Background(), []byte("hi"))
	if string(resp) != "pong:hi" {
		t.Fatalf("unexpected response: %q", resp)
	}
	if tr.Stats.TotalRequests != 1 {
		t.Fatalf("expected 1 request, got %d", tr.Stats.TotalRequests)
	}
}
