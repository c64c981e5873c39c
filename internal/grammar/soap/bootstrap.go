package soap

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"upnpfuzz/internal/xmlwalk"
)

// Fetcher is the HTTP dependency grammar bootstrap needs: a single GET
// with no retries, bounded by the caller's context deadline. Satisfied
// by *upnpclient.Client.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Bootstrap fetches the device description, walks every <service>,
// fetches each SCPD document, and builds the frozen action catalog.
// An empty catalog is a bootstrap error.
func Bootstrap(ctx context.Context, client Fetcher, descriptionURL string) (Catalog, error) {
	base, err := url.Parse(descriptionURL)
	if err != nil {
		return nil, fmt.Errorf("soap: parsing description URL: %w", err)
	}

	body, err := client.Fetch(ctx, descriptionURL)
	if err != nil {
		return nil, fmt.Errorf("soap: fetching device description: %w", err)
	}

	root, err := xmlwalk.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("soap: parsing device description: %w", err)
	}

	var catalog Catalog
	for _, svc := range root.FindAll("service") {
		actions, err := bootstrapService(ctx, client, base, svc)
		if err != nil {
			return nil, err
		}
		catalog = append(catalog, actions...)
	}

	if len(catalog) == 0 {
		return nil, ErrEmptyCatalog
	}
	return catalog, nil
}

func bootstrapService(ctx context.Context, client Fetcher, base *url.URL, svc *xmlwalk.Node) ([]Action, error) {
	scpdURLRaw, ok := svc.ChildText("SCPDURL")
	if !ok {
		return nil, fmt.Errorf("%w: <SCPDURL>", ErrMissingNode)
	}
	controlURLRaw, ok := svc.ChildText("controlURL")
	if !ok {
		return nil, fmt.Errorf("%w: <controlURL>", ErrMissingNode)
	}
	serviceType, ok := svc.ChildText("serviceId")
	if !ok {
		return nil, fmt.Errorf("%w: <serviceId>", ErrMissingNode)
	}

	scpdURL := normalizeURL(base, scpdURLRaw)
	controlURL := ensureLeadingSlash(controlURLRaw)

	scpdBody, err := client.Fetch(ctx, scpdURL)
	if err != nil {
		return nil, fmt.Errorf("soap: fetching SCPD %s: %w", scpdURL, err)
	}

	scpdRoot, err := xmlwalk.Parse(scpdBody)
	if err != nil {
		return nil, fmt.Errorf("soap: parsing SCPD %s: %w", scpdURL, err)
	}

	vars := stateVariables(scpdRoot)

	var actions []Action
	for _, a := range scpdRoot.FindAll("action") {
		name, ok := a.ChildText("name")
		if !ok {
			return nil, fmt.Errorf("%w: <action>/<name>", ErrMissingNode)
		}

		var args []Argument
		direction := Out

		argListNode, _ := a.Child("argumentList")
		if argListNode != nil {
			for _, argNode := range argListNode.FindAll("argument") {
				argName, ok := argNode.ChildText("name")
				if !ok {
					return nil, fmt.Errorf("%w: <argument>/<name>", ErrMissingNode)
				}
				relatedVar, ok := argNode.ChildText("relatedStateVariable")
				if !ok {
					return nil, fmt.Errorf("%w: <argument>/<relatedStateVariable>", ErrMissingNode)
				}
				dir, _ := argNode.ChildText("direction")

				sv := vars[relatedVar]
				args = append(args, Argument{
					Name:     argName,
					DataType: sv.DataType,
					Default:  sv.Default,
					Allowed:  sv.Allowed,
				})

				if strings.EqualFold(dir, "in") {
					direction = In
				}
			}
		}

		actions = append(actions, Action{
			ControlURL:  controlURL,
			ServiceType: serviceType,
			Name:        name,
			Direction:   direction,
			Args:        args,
		})
	}

	return actions, nil
}

// stateVariables builds the name -> (type, default, allowed) lookup
// used to resolve each action argument's declared type.
func stateVariables(scpdRoot *xmlwalk.Node) map[string]stateVariable {
	out := map[string]stateVariable{}

	for _, sv := range scpdRoot.FindAll("stateVariable") {
		name, ok := sv.ChildText("name")
		if !ok {
			continue
		}
		dataType, _ := sv.ChildText("dataType")
		def, _ := sv.ChildText("defaultValue")

		var allowed []string
		if avl, ok := sv.Child("allowedValueList"); ok {
			for _, av := range avl.Children {
				if av.Tag != "allowedValue" {
					continue
				}
				if text, ok := av.Text(); ok {
					allowed = append(allowed, text)
				}
			}
		}

		out[name] = stateVariable{DataType: dataType, Default: def, Allowed: allowed}
	}

	return out
}

// normalizeURL resolves a possibly relative URL against the
// description document's base URL. If raw already carries a scheme it
// is returned unchanged.
func normalizeURL(base *url.URL, raw string) string {
	if strings.Contains(raw, "://") {
		return raw
	}
	path := raw
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	resolved := *base
	resolved.Path = path
	resolved.RawQuery = ""
	return resolved.String()
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
