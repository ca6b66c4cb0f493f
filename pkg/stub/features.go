package stub

// Features carries the cross-cutting options of a stub registration.
// Every field is optional; the zero value selects WireMock's defaults.
type Features struct {
	// Name is the display name stored on the mapping.
	Name string

	// EndpointMatch selects the request-pattern key for the endpoint (default url).
	EndpointMatch EndpointMatch
	// BodyMatch selects the body matcher (default equalToJson).
	BodyMatch MatchStrategy
	// IgnoreArrayOrder and IgnoreExtraElements tune equalToJson body matching.
	IgnoreArrayOrder    *bool
	IgnoreExtraElements *bool

	// Per-field matchers; a field absent from the map is matched with equalTo.
	HeaderMatch map[string]MatchStrategy
	CookieMatch map[string]MatchStrategy
	QueryMatch  map[string]MatchStrategy
	FormMatch   map[string]MatchStrategy

	// ResponseBodyType selects the response body key (default jsonBody).
	ResponseBodyType BodyType
	// ResponseDelay applies when the Response itself has no delay.
	ResponseDelay Delay
	// Transformers are emitted only when non-empty.
	Transformers []Transformer

	// Fault replaces the whole response when set.
	Fault Fault
	// Priority: lower values win. Nil defers to the server default.
	Priority *int
	Scenario *Scenario
	Webhook  *Webhook
	// Metadata is stored on the mapping for later lookup by metadata queries.
	Metadata map[string]any
}

// MergeFeatures returns defaults overlaid with overrides.
//
// The merge is shallow: any field set in overrides replaces the whole field in
// defaults, maps and slices included. Either argument may be nil. The result
// is always non-nil and shares maps and pointers with its inputs.
func MergeFeatures(defaults, overrides *Features) *Features {
	merged := &Features{}
	if defaults != nil {
		*merged = *defaults
	}
	if overrides == nil {
		return merged
	}

	o := overrides
	if o.Name != "" {
		merged.Name = o.Name
	}
	if o.EndpointMatch != "" {
		merged.EndpointMatch = o.EndpointMatch
	}
	if o.BodyMatch != "" {
		merged.BodyMatch = o.BodyMatch
	}
	if o.IgnoreArrayOrder != nil {
		merged.IgnoreArrayOrder = o.IgnoreArrayOrder
	}
	if o.IgnoreExtraElements != nil {
		merged.IgnoreExtraElements = o.IgnoreExtraElements
	}
	if o.HeaderMatch != nil {
		merged.HeaderMatch = o.HeaderMatch
	}
	if o.CookieMatch != nil {
		merged.CookieMatch = o.CookieMatch
	}
	if o.QueryMatch != nil {
		merged.QueryMatch = o.QueryMatch
	}
	if o.FormMatch != nil {
		merged.FormMatch = o.FormMatch
	}
	if o.ResponseBodyType != "" {
		merged.ResponseBodyType = o.ResponseBodyType
	}
	if o.ResponseDelay != nil {
		merged.ResponseDelay = o.ResponseDelay
	}
	if o.Transformers != nil {
		merged.Transformers = o.Transformers
	}
	if o.Fault != "" {
		merged.Fault = o.Fault
	}
	if o.Priority != nil {
		merged.Priority = o.Priority
	}
	if o.Scenario != nil {
		merged.Scenario = o.Scenario
	}
	if o.Webhook != nil {
		merged.Webhook = o.Webhook
	}
	if o.Metadata != nil {
		merged.Metadata = o.Metadata
	}
	return merged
}

func (f *Features) endpointMatch() EndpointMatch {
	if f == nil || f.EndpointMatch == "" {
		return EndpointURL
	}
	return f.EndpointMatch
}

func (f *Features) bodyMatch() MatchStrategy {
	if f == nil || f.BodyMatch == "" {
		return MatchEqualToJSON
	}
	return f.BodyMatch
}

func (f *Features) responseBodyType() BodyType {
	if f == nil || f.ResponseBodyType == "" {
		return BodyJSON
	}
	return f.ResponseBodyType
}
