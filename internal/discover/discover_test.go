package discover

import "testing"

func TestParseHeadersExtractsLocationAndServer(t *testing.T) {
	data := []byte("HTTP/1.1 200 OK\r\n" +
		"CACHE-CONTROL: max-age=1800\r\n" +
		"LOCATION: http://192.168.1.10:1900/description.xml\r\n" +
		"SERVER: Linux/3.14.0 UPnP/1.0 libupnp/1.6.19\r\n" +
		"ST: upnp:rootdevice\r\n\r\n")

	location, server := parseHeaders(data)
	if location != "http://192.168.1.10:1900/description.xml" {
		t.Fatalf("unexpected location %q", location)
	}
	if server != "Linux/3.14.0 UPnP/1.0 libupnp/1.6.19" {
		t.Fatalf("unexpected server %q", server)
	}
}

func TestParseHeadersCaseInsensitive(t *testing.T) {
	data := []byte("HTTP/1.1 200 OK\r\nLocation: http://10.0.0.1/d.xml\r\nServer: x\r\n\r\n")
	location, server := parseHeaders(data)
	if location != "http://10.0.0.1/d.xml" || server != "x" {
		t.Fatalf("expected case-insensitive header match, got %q %q", location, server)
	}
}
