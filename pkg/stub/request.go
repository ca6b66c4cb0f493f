package stub

import "encoding/json"

// Request describes the requests a stub should match.
// Values in the field maps are strings, numbers or booleans.
type Request struct {
	Method   Method
	Endpoint string
	// Body is matched with Features.BodyMatch when non-nil.
	Body            any
	Headers         map[string]any
	Cookies         map[string]any
	QueryParameters map[string]any
	FormParameters  map[string]any
	// Metadata is lifted onto the mapping; it does not take part in matching.
	Metadata map[string]any
}

// MatchPattern is a single matcher object, e.g. {"equalTo": "x"} or
// {"equalToJson": {...}, "ignoreArrayOrder": false, "ignoreExtraElements": false}.
type MatchPattern map[string]any

// RequestPattern is WireMock's request-matching object. Exactly one of the
// URL fields is set by BuildRequest.
type RequestPattern struct {
	Method          Method                  `json:"method,omitempty"`
	URL             string                  `json:"url,omitempty"`
	URLPath         string                  `json:"urlPath,omitempty"`
	URLPathPattern  string                  `json:"urlPathPattern,omitempty"`
	URLPattern      string                  `json:"urlPattern,omitempty"`
	Headers         map[string]MatchPattern `json:"headers,omitempty"`
	Cookies         map[string]MatchPattern `json:"cookies,omitempty"`
	QueryParameters map[string]MatchPattern `json:"queryParameters,omitempty"`
	FormParameters  map[string]MatchPattern `json:"formParameters,omitempty"`
	BodyPatterns    []MatchPattern          `json:"bodyPatterns,omitempty"`

	// endpointKey is the URL key chosen by BuildRequest. It is emitted even
	// when the endpoint is empty.
	endpointKey EndpointMatch
}

// MarshalJSON always emits method and the endpoint key of a built pattern.
// Patterns decoded from the server keep only the keys they carry.
func (p RequestPattern) MarshalJSON() ([]byte, error) {
	type plain RequestPattern
	aux := struct {
		plain
		Method         *Method `json:"method,omitempty"`
		URL            *string `json:"url,omitempty"`
		URLPath        *string `json:"urlPath,omitempty"`
		URLPathPattern *string `json:"urlPathPattern,omitempty"`
		URLPattern     *string `json:"urlPattern,omitempty"`
	}{plain: plain(p)}
	if p.Method != "" || p.endpointKey != "" {
		aux.Method = &p.Method
	}
	pick := func(key EndpointMatch, v *string) *string {
		if *v != "" || p.endpointKey == key {
			return v
		}
		return nil
	}
	aux.URL = pick(EndpointURL, &p.URL)
	aux.URLPath = pick(EndpointURLPath, &p.URLPath)
	aux.URLPathPattern = pick(EndpointURLPathPattern, &p.URLPathPattern)
	aux.URLPattern = pick(EndpointURLPattern, &p.URLPattern)
	return json.Marshal(aux)
}

// Endpoint returns the endpoint value and the key it is matched under.
func (p RequestPattern) Endpoint() (string, EndpointMatch) {
	switch {
	case p.URLPath != "":
		return p.URLPath, EndpointURLPath
	case p.URLPathPattern != "":
		return p.URLPathPattern, EndpointURLPathPattern
	case p.URLPattern != "":
		return p.URLPattern, EndpointURLPattern
	case p.endpointKey != "":
		return "", p.endpointKey
	default:
		return p.URL, EndpointURL
	}
}

// BuildRequest converts req into a request pattern using the matchers selected by f.
// f may be nil.
func BuildRequest(req Request, f *Features) RequestPattern {
	p := RequestPattern{Method: req.Method, endpointKey: f.endpointMatch()}

	switch p.endpointKey {
	case EndpointURLPath:
		p.URLPath = req.Endpoint
	case EndpointURLPathPattern:
		p.URLPathPattern = req.Endpoint
	case EndpointURLPattern:
		p.URLPattern = req.Endpoint
	default:
		p.URL = req.Endpoint
	}

	if req.Body != nil {
		strategy := f.bodyMatch()
		body := MatchPattern{string(strategy): req.Body}
		if strategy == MatchEqualToJSON {
			body["ignoreArrayOrder"] = false
			body["ignoreExtraElements"] = false
			if f != nil && f.IgnoreArrayOrder != nil {
				body["ignoreArrayOrder"] = *f.IgnoreArrayOrder
			}
			if f != nil && f.IgnoreExtraElements != nil {
				body["ignoreExtraElements"] = *f.IgnoreExtraElements
			}
		}
		p.BodyPatterns = []MatchPattern{body}
	}

	var headerMatch, cookieMatch, queryMatch, formMatch map[string]MatchStrategy
	if f != nil {
		headerMatch, cookieMatch, queryMatch, formMatch = f.HeaderMatch, f.CookieMatch, f.QueryMatch, f.FormMatch
	}
	p.Cookies = matchFields(req.Cookies, cookieMatch)
	p.Headers = matchFields(req.Headers, headerMatch)
	p.QueryParameters = matchFields(req.QueryParameters, queryMatch)
	p.FormParameters = matchFields(req.FormParameters, formMatch)

	return p
}

// matchFields maps every field to {strategy: value}, defaulting to equalTo.
// A nil field group yields nil so the key is omitted.
func matchFields(fields map[string]any, strategies map[string]MatchStrategy) map[string]MatchPattern {
	if fields == nil {
		return nil
	}
	out := make(map[string]MatchPattern, len(fields))
	for name, value := range fields {
		strategy, ok := strategies[name]
		if !ok || strategy == "" {
			strategy = MatchEqualTo
		}
		out[name] = MatchPattern{string(strategy): value}
	}
	return out
}
