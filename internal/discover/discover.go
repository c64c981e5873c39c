// Package discover implements the one-shot SSDP multicast discovery
// command: send a single M-SEARCH, collect unique responses keyed by
// LOCATION until the socket read times out, and extract the LOCATION
// and SERVER headers from each.
package discover

import (
	"bufio"
	"fmt"
	"strings"

	"upnpfuzz/internal/grammar/ssdp"
	"upnpfuzz/internal/netio"
)

// Device is one discovered UPnP root device.
type Device struct {
	Addr     string
	Location string
	Server   string
}

// Run issues the standard discovery M-SEARCH through t and returns one
// Device per unique LOCATION header seen before the socket read times
// out. When two responses carry the same LOCATION, only the first is
// kept, per the dedup rule in §8 scenario 6.
func Run(t *netio.Transport) []Device {
	seen := map[string]bool{}
	var devices []Device

	for dgram := range t.SendAndCollect(ssdp.Multicast()) {
		location, server := parseHeaders(dgram.Data)
		if location == "" || seen[location] {
			continue
		}
		seen[location] = true

		devices = append(devices, Device{
			Addr:     fmt.Sprintf("%s:%d", dgram.IP, dgram.Port),
			Location: location,
			Server:   server,
		})
	}

	return devices
}

// parseHeaders extracts the LOCATION and SERVER header values from a
// raw SSDP response. Header names are matched case-insensitively, as
// real devices vary casing.
func parseHeaders(data []byte) (location, server string) {
	scanner := bufio.NewScanner(strings.NewReader(string(data)))
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		switch strings.ToUpper(strings.TrimSpace(name)) {
		case "LOCATION":
			location = strings.TrimSpace(value)
		case "SERVER":
			server = strings.TrimSpace(value)
		}
	}
	return location, server
}

// Print writes one line per device to standard output in the
// "ip:port — LOCATION — SERVER" format from §6.
func Print(devices []Device) {
	for _, d := range devices {
		fmt.Printf("%s — %s — %s\n", d.Addr, d.Location, d.Server)
	}
}
