package stub

import (
	"fmt"
	"slices"
	"strings"
)

// Method is an HTTP verb accepted by WireMock request patterns.
type Method string

// Methods understood by WireMock. MethodAny matches every verb.
const (
	MethodAny     Method = "ANY"
	MethodConnect Method = "CONNECT"
	MethodDelete  Method = "DELETE"
	MethodGet     Method = "GET"
	MethodHead    Method = "HEAD"
	MethodOptions Method = "OPTIONS"
	MethodPatch   Method = "PATCH"
	MethodPost    Method = "POST"
	MethodPut     Method = "PUT"
	MethodTrace   Method = "TRACE"
)

// Methods lists every Method in declaration order.
var Methods = []Method{
	MethodAny, MethodConnect, MethodDelete, MethodGet, MethodHead,
	MethodOptions, MethodPatch, MethodPost, MethodPut, MethodTrace,
}

// Valid reports whether m is one of the declared methods.
func (m Method) Valid() bool {
	return slices.Contains(Methods, m)
}

// ParseMethod parses a method name case-insensitively.
func ParseMethod(s string) (Method, error) {
	m := Method(strings.ToUpper(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", fmt.Errorf("method %q: %w", s, ErrUnknownValue)
	}
	return m, nil
}

// MatchStrategy names a WireMock string/body matcher.
type MatchStrategy string

// Matchers supported for headers, cookies, query/form parameters and bodies.
const (
	MatchBinaryEqualTo   MatchStrategy = "binaryEqualTo"
	MatchContains        MatchStrategy = "contains"
	MatchDoesNotMatch    MatchStrategy = "doesNotMatch"
	MatchEqualTo         MatchStrategy = "equalTo"
	MatchEqualToJSON     MatchStrategy = "equalToJson"
	MatchMatches         MatchStrategy = "matches"
	MatchMatchesJSONPath MatchStrategy = "matchesJsonPath"
)

// MatchStrategies lists every MatchStrategy.
var MatchStrategies = []MatchStrategy{
	MatchBinaryEqualTo, MatchContains, MatchDoesNotMatch, MatchEqualTo,
	MatchEqualToJSON, MatchMatches, MatchMatchesJSONPath,
}

// Valid reports whether s is one of the declared strategies.
func (s MatchStrategy) Valid() bool {
	return slices.Contains(MatchStrategies, s)
}

// ParseMatchStrategy parses a matcher name. Names are case-sensitive, as on the wire.
func ParseMatchStrategy(s string) (MatchStrategy, error) {
	ms := MatchStrategy(strings.TrimSpace(s))
	if !ms.Valid() {
		return "", fmt.Errorf("match strategy %q: %w", s, ErrUnknownValue)
	}
	return ms, nil
}

// EndpointMatch selects which request-pattern key carries the endpoint.
type EndpointMatch string

// Endpoint matching modes. EndpointURL is the default: exact path plus query.
const (
	EndpointURL            EndpointMatch = "url"
	EndpointURLPath        EndpointMatch = "urlPath"
	EndpointURLPathPattern EndpointMatch = "urlPathPattern"
	EndpointURLPattern     EndpointMatch = "urlPattern"
)

// EndpointMatches lists every EndpointMatch.
var EndpointMatches = []EndpointMatch{EndpointURL, EndpointURLPath, EndpointURLPathPattern, EndpointURLPattern}

// Valid reports whether e is one of the declared modes.
func (e EndpointMatch) Valid() bool {
	return slices.Contains(EndpointMatches, e)
}

// ParseEndpointMatch parses an endpoint matching mode.
func ParseEndpointMatch(s string) (EndpointMatch, error) {
	e := EndpointMatch(strings.TrimSpace(s))
	if !e.Valid() {
		return "", fmt.Errorf("endpoint match %q: %w", s, ErrUnknownValue)
	}
	return e, nil
}

// BodyType selects the response key the body is stored under.
type BodyType string

// Response body encodings. BodyJSON is the default.
const (
	BodyJSON   BodyType = "jsonBody"
	BodyRaw    BodyType = "body"
	BodyBase64 BodyType = "base64Body"
)

// BodyTypes lists every BodyType.
var BodyTypes = []BodyType{BodyJSON, BodyRaw, BodyBase64}

// Valid reports whether b is one of the declared body types.
func (b BodyType) Valid() bool {
	return slices.Contains(BodyTypes, b)
}

// ParseBodyType parses a body type. The short forms "json", "raw" and
// "base64" are accepted alongside the wire names.
func ParseBodyType(s string) (BodyType, error) {
	switch strings.TrimSpace(s) {
	case "json", string(BodyJSON):
		return BodyJSON, nil
	case "raw", string(BodyRaw):
		return BodyRaw, nil
	case "base64", string(BodyBase64):
		return BodyBase64, nil
	}
	return "", fmt.Errorf("body type %q: %w", s, ErrUnknownValue)
}

// Fault is a WireMock fault injected in place of a response.
type Fault string

// Faults supported by WireMock.
const (
	FaultConnectionResetByPeer  Fault = "CONNECTION_RESET_BY_PEER"
	FaultEmptyResponse          Fault = "EMPTY_RESPONSE"
	FaultMalformedResponseChunk Fault = "MALFORMED_RESPONSE_CHUNK"
	FaultRandomDataThenClose    Fault = "RANDOM_DATA_THEN_CLOSE"
)

// Faults lists every Fault.
var Faults = []Fault{
	FaultConnectionResetByPeer, FaultEmptyResponse,
	FaultMalformedResponseChunk, FaultRandomDataThenClose,
}

// Valid reports whether f is one of the declared faults.
func (f Fault) Valid() bool {
	return slices.Contains(Faults, f)
}

// ParseFault parses a fault name case-insensitively.
func ParseFault(s string) (Fault, error) {
	f := Fault(strings.ToUpper(strings.TrimSpace(s)))
	if !f.Valid() {
		return "", fmt.Errorf("fault %q: %w", s, ErrUnknownValue)
	}
	return f, nil
}

// Transformer names a response transformer registered on the server.
type Transformer string

// TransformerResponseTemplate enables Handlebars response templating.
const TransformerResponseTemplate Transformer = "response-template"

// ScenarioStarted is the state every WireMock scenario begins in.
const ScenarioStarted = "Started"

// Scenario binds a mapping to a named server-side state machine.
// The mapping only matches while the scenario is in RequiredState and,
// when NewState is set, moves the scenario there after serving.
type Scenario struct {
	Name          string
	RequiredState string
	NewState      string
}

// Ptr returns a pointer to v. Handy for optional Features fields.
func Ptr[T any](v T) *T {
	return &v
}

