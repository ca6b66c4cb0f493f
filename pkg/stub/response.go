package stub

import (
	"encoding/json"
	"maps"
)

// jsonContentType is injected as the baseline header for jsonBody responses.
const jsonContentType = "application/json; charset=utf-8"

// Response describes what a stub serves.
type Response struct {
	Status int
	// Body is stored unmodified under the key chosen by Features.ResponseBodyType.
	// Binary content must be pre-encoded (base64 text) by the caller.
	Body    any
	Headers map[string]any
	// Delay overrides Features.ResponseDelay for this registration.
	Delay Delay
	// Fault overrides Features.Fault for this registration.
	Fault Fault
}

// ResponseDefinition is WireMock's response object.
//
// A fault response carries only Fault. Otherwise Headers is always emitted,
// as {} when empty.
type ResponseDefinition struct {
	Status                 int                `json:"status,omitempty"`
	StatusMessage          string             `json:"statusMessage,omitempty"`
	Headers                map[string]any     `json:"headers,omitempty"`
	JSONBody               any                `json:"jsonBody,omitempty"`
	Body                   any                `json:"body,omitempty"`
	Base64Body             any                `json:"base64Body,omitempty"`
	BodyFileName           string             `json:"bodyFileName,omitempty"`
	FixedDelayMilliseconds *int               `json:"fixedDelayMilliseconds,omitempty"`
	DelayDistribution      *DelayDistribution `json:"delayDistribution,omitempty"`
	ChunkedDribbleDelay    *ChunkedDribble    `json:"chunkedDribbleDelay,omitempty"`
	Transformers           []Transformer      `json:"transformers,omitempty"`
	Fault                  Fault              `json:"fault,omitempty"`
}

// MarshalJSON keeps an empty, non-nil header map on the wire and always
// emits status unless the response is a fault.
func (r ResponseDefinition) MarshalJSON() ([]byte, error) {
	type plain ResponseDefinition
	aux := struct {
		plain
		Status  *int            `json:"status,omitempty"`
		Headers *map[string]any `json:"headers,omitempty"`
	}{plain: plain(r)}
	if r.Fault == "" {
		aux.Status = &r.Status
	}
	if r.Headers != nil {
		aux.Headers = &r.Headers
	}
	return json.Marshal(aux)
}

// BuildResponse converts resp into a response definition using f. f may be nil.
// Faults are not applied here; see BuildMapping.
func BuildResponse(resp Response, f *Features) ResponseDefinition {
	r := ResponseDefinition{Status: resp.Status}
	bodyType := f.responseBodyType()

	if resp.Body != nil {
		switch bodyType {
		case BodyRaw:
			r.Body = resp.Body
		case BodyBase64:
			r.Base64Body = resp.Body
		default:
			r.JSONBody = resp.Body
		}
	}

	r.Headers = make(map[string]any, len(resp.Headers)+1)
	if bodyType == BodyJSON {
		r.Headers["Content-Type"] = jsonContentType
	}
	maps.Copy(r.Headers, resp.Headers)

	delay := resp.Delay
	if delay == nil && f != nil {
		delay = f.ResponseDelay
	}
	applyDelay(&r, delay)

	if f != nil && len(f.Transformers) > 0 {
		r.Transformers = f.Transformers
	}
	return r
}
