package event

import (
	"context"
	"fmt"
	"strings"

	"upnpfuzz/internal/xmlwalk"
)

// Fetcher is the HTTP dependency grammar bootstrap needs. Satisfied by
// *upnpclient.Client.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Bootstrap fetches the device description and enumerates every
// <service>/<eventSubURL>, normalized to a leading slash. An empty
// endpoint set is a bootstrap error.
func Bootstrap(ctx context.Context, client Fetcher, descriptionURL string) (Endpoints, error) {
	body, err := client.Fetch(ctx, descriptionURL)
	if err != nil {
		return nil, fmt.Errorf("event: fetching device description: %w", err)
	}

	root, err := xmlwalk.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("event: parsing device description: %w", err)
	}

	var endpoints Endpoints
	for _, svc := range root.FindAll("service") {
		url, ok := svc.ChildText("eventSubURL")
		if !ok {
			continue
		}
		endpoints = append(endpoints, ensureLeadingSlash(url))
	}

	if len(endpoints) == 0 {
		return nil, ErrEmptyEndpoints
	}
	return endpoints, nil
}

func ensureLeadingSlash(path string) string {
	if strings.Contains(path, "://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		return "/" + path
	}
	return path
}
