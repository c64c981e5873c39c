package soap

import (
	"fmt"

	"upnpfuzz/internal/mutate"
)

const envelopeOpenPrefix = "<?xml version=\"1.0\"?>\n" +
	"<SOAP-ENV:Envelope xmlns:SOAP-ENV=\"http://schemas.xmlsoap.org/soap/envelope\" " +
	"SOAP-ENV:encodingStyle=\"http://schemas.xmlsoap.org/soap/encoding/\">" +
	"<SOAP-ENV:Body>"

const envelopeClose = "</SOAP-ENV:Body></SOAP-ENV:Envelope>"

// Request is one synthesized SOAP request: the chosen Action plus its
// header and body parameter slots, ready for mutation and
// finalization. HeaderSlots has six entries: control URL, host, port,
// content-length placeholder, service type, action name. BodySlots is
// nil for an OUT action.
type Request struct {
	Action      Action
	HeaderSlots [][]byte
	BodySlots   [][]byte
}

// Generator produces SOAP requests against a frozen action catalog.
type Generator struct {
	Catalog Catalog
	Host    string
	Port    int
}

// New builds a Generator over a bootstrap catalog.
func New(catalog Catalog, host string, port int) *Generator {
	return &Generator{Catalog: catalog, Host: host, Port: port}
}

// Next picks a uniformly random action and builds its header and body
// slots.
func (g *Generator) Next(rng *mutate.Rand) *Request {
	action := g.Catalog[rng.IntN(len(g.Catalog))]

	header := [][]byte{
		[]byte(action.ControlURL),
		[]byte(g.Host),
		[]byte(fmt.Sprintf("%d", g.Port)),
		[]byte("0"),
		[]byte(action.ServiceType),
		[]byte(action.Name),
	}

	var body [][]byte
	if action.Direction == In {
		body = buildBody(rng, action)
	}

	return &Request{Action: action, HeaderSlots: header, BodySlots: body}
}

func buildBody(rng *mutate.Rand, action Action) [][]byte {
	body := make([][]byte, 0, 2+3*len(action.Args))
	body = append(body, []byte(fmt.Sprintf("%s<m:%s xmlns:m=%q>\n", envelopeOpenPrefix, action.Name, action.ServiceType)))

	for _, arg := range action.Args {
		body = append(body, []byte(fmt.Sprintf("<%s>", arg.Name)))
		body = append(body, generateValue(rng, arg))
		body = append(body, []byte(fmt.Sprintf("</%s>\n", arg.Name)))
	}

	body = append(body, []byte(fmt.Sprintf("</m:%s>%s", action.Name, envelopeClose)))
	return body
}

// BuildBody joins body slots (no separator) into the request body.
func BuildBody(bodySlots [][]byte) []byte {
	var body []byte
	for _, s := range bodySlots {
		body = append(body, s...)
	}
	return body
}

// BuildHeaders substitutes header slots into the HTTP header template,
// with Content-Length set to bodyLen regardless of whatever bytes
// currently occupy the placeholder slot.
func BuildHeaders(headerSlots [][]byte, bodyLen int) []byte {
	var out []byte
	out = append(out, "POST "...)
	out = append(out, headerSlots[0]...)
	out = append(out, " HTTP/1.1\r\n"...)
	out = append(out, "HOST: "...)
	out = append(out, headerSlots[1]...)
	out = append(out, ':')
	out = append(out, headerSlots[2]...)
	out = append(out, "\r\n"...)
	out = append(out, fmt.Sprintf("CONTENT-LENGTH: %d\r\n", bodyLen)...)
	out = append(out, "CONTENT-TYPE: text/xml\r\n"...)
	out = append(out, "SOAPACTION: \""...)
	out = append(out, headerSlots[4]...)
	out = append(out, '#')
	out = append(out, headerSlots[5]...)
	out = append(out, "\"\r\n\r\n"...)
	return out
}

// Finalize builds the complete wire bytes: body slots joined first,
// then headers substituted with Content-Length set to the actual body
// length, then headers || body.
func (r *Request) Finalize(headerSlots, bodySlots [][]byte) []byte {
	body := BuildBody(bodySlots)
	headers := BuildHeaders(headerSlots, len(body))
	return append(headers, body...)
}
