package stubfile

import (
	"fmt"

	"github.com/getmockd/captain/pkg/stub"
)

// Delay type tags used in stub files.
const (
	DelayFixed          = "fixed"
	DelayUniform        = "uniform"
	DelayLogNormal      = "lognormal"
	DelayChunkedDribble = "chunkedDribble"
)

// Webhook body type tags used in stub files.
const (
	WebhookBodyJSON   = "json"
	WebhookBodyString = "string"
)

// document is the {defaults, stubs} form of a file.
type document struct {
	Defaults *featuresSpec `json:"defaults,omitempty"`
	Stubs    []stubSpec    `json:"stubs"`
}

type stubSpec struct {
	Name     string        `json:"name,omitempty"`
	Request  requestSpec   `json:"request"`
	Response responseSpec  `json:"response"`
	Features *featuresSpec `json:"features,omitempty"`
}

type requestSpec struct {
	Method          string         `json:"method,omitempty"`
	Endpoint        string         `json:"endpoint"`
	Body            any            `json:"body,omitempty"`
	Headers         map[string]any `json:"headers,omitempty"`
	Cookies         map[string]any `json:"cookies,omitempty"`
	QueryParameters map[string]any `json:"queryParameters,omitempty"`
	FormParameters  map[string]any `json:"formParameters,omitempty"`
	Metadata        map[string]any `json:"metadata,omitempty"`
}

type responseSpec struct {
	Status  int            `json:"status"`
	Body    any            `json:"body,omitempty"`
	Headers map[string]any `json:"headers,omitempty"`
	Delay   *delaySpec     `json:"delay,omitempty"`
	Fault   string         `json:"fault,omitempty"`
}

type delaySpec struct {
	Type           string  `json:"type"`
	Milliseconds   int     `json:"milliseconds,omitempty"`
	Lower          int     `json:"lower,omitempty"`
	Upper          int     `json:"upper,omitempty"`
	Median         float64 `json:"median,omitempty"`
	Sigma          float64 `json:"sigma,omitempty"`
	NumberOfChunks int     `json:"numberOfChunks,omitempty"`
	TotalDuration  int     `json:"totalDuration,omitempty"`
}

type scenarioSpec struct {
	Name          string `json:"name"`
	RequiredState string `json:"requiredState,omitempty"`
	NewState      string `json:"newState,omitempty"`
}

type webhookBodySpec struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type webhookSpec struct {
	Method  string           `json:"method"`
	URL     string           `json:"url"`
	Headers map[string]any   `json:"headers,omitempty"`
	Body    *webhookBodySpec `json:"body,omitempty"`
	Delay   *delaySpec       `json:"delay,omitempty"`
}

type featuresSpec struct {
	Name                string            `json:"name,omitempty"`
	EndpointMatch       string            `json:"endpointMatch,omitempty"`
	BodyMatch           string            `json:"bodyMatch,omitempty"`
	IgnoreArrayOrder    *bool             `json:"ignoreArrayOrder,omitempty"`
	IgnoreExtraElements *bool             `json:"ignoreExtraElements,omitempty"`
	HeaderMatch         map[string]string `json:"headerMatch,omitempty"`
	CookieMatch         map[string]string `json:"cookieMatch,omitempty"`
	QueryMatch          map[string]string `json:"queryMatch,omitempty"`
	FormMatch           map[string]string `json:"formMatch,omitempty"`
	ResponseBodyType    string            `json:"responseBodyType,omitempty"`
	Delay               *delaySpec        `json:"delay,omitempty"`
	Transformers        []string          `json:"transformers,omitempty"`
	Fault               string            `json:"fault,omitempty"`
	Priority            *int              `json:"priority,omitempty"`
	Scenario            *scenarioSpec     `json:"scenario,omitempty"`
	Webhook             *webhookSpec      `json:"webhook,omitempty"`
	Metadata            map[string]any    `json:"metadata,omitempty"`
}

func (d *delaySpec) toDelay() (stub.Delay, error) {
	if d == nil {
		return nil, nil
	}
	switch d.Type {
	case DelayFixed:
		return stub.FixedDelay{Milliseconds: d.Milliseconds}, nil
	case DelayUniform:
		return stub.UniformDelay{Lower: d.Lower, Upper: d.Upper}, nil
	case DelayLogNormal:
		return stub.LogNormalDelay{Median: d.Median, Sigma: d.Sigma}, nil
	case DelayChunkedDribble:
		return stub.ChunkedDribbleDelay{NumberOfChunks: d.NumberOfChunks, TotalDuration: d.TotalDuration}, nil
	default:
		return nil, fmt.Errorf("delay type %q: %w", d.Type, stub.ErrUnknownValue)
	}
}

func (b *webhookBodySpec) toBody() (stub.WebhookBody, error) {
	if b == nil {
		return nil, nil
	}
	switch b.Type {
	case WebhookBodyJSON:
		return stub.JSONWebhookBody{Data: b.Data}, nil
	case WebhookBodyString:
		s, ok := b.Data.(string)
		if !ok {
			return nil, fmt.Errorf("webhook body of type string has %T data", b.Data)
		}
		return stub.StringWebhookBody{Data: s}, nil
	default:
		return nil, fmt.Errorf("webhook body type %q: %w", b.Type, stub.ErrUnknownValue)
	}
}

func (w *webhookSpec) toWebhook() (*stub.Webhook, error) {
	if w == nil {
		return nil, nil
	}
	method, err := stub.ParseMethod(w.Method)
	if err != nil {
		return nil, err
	}
	body, err := w.Body.toBody()
	if err != nil {
		return nil, err
	}
	delay, err := w.Delay.toDelay()
	if err != nil {
		return nil, err
	}
	if delay != nil {
		// fail at load time rather than at registration
		if _, err := stub.EncodeWebhookDelay(delay); err != nil {
			return nil, err
		}
	}
	return &stub.Webhook{
		Method:  method,
		URL:     w.URL,
		Headers: w.Headers,
		Body:    body,
		Delay:   delay,
	}, nil
}

func (f *featuresSpec) toFeatures() (*stub.Features, error) {
	if f == nil {
		return nil, nil
	}
	out := &stub.Features{
		Name:                f.Name,
		IgnoreArrayOrder:    f.IgnoreArrayOrder,
		IgnoreExtraElements: f.IgnoreExtraElements,
		Priority:            f.Priority,
		Metadata:            f.Metadata,
	}

	var err error
	if f.EndpointMatch != "" {
		if out.EndpointMatch, err = stub.ParseEndpointMatch(f.EndpointMatch); err != nil {
			return nil, err
		}
	}
	if f.BodyMatch != "" {
		if out.BodyMatch, err = stub.ParseMatchStrategy(f.BodyMatch); err != nil {
			return nil, err
		}
	}
	if f.ResponseBodyType != "" {
		if out.ResponseBodyType, err = stub.ParseBodyType(f.ResponseBodyType); err != nil {
			return nil, err
		}
	}
	if f.Fault != "" {
		if out.Fault, err = stub.ParseFault(f.Fault); err != nil {
			return nil, err
		}
	}
	for _, group := range []struct {
		in  map[string]string
		out *map[string]stub.MatchStrategy
	}{
		{f.HeaderMatch, &out.HeaderMatch},
		{f.CookieMatch, &out.CookieMatch},
		{f.QueryMatch, &out.QueryMatch},
		{f.FormMatch, &out.FormMatch},
	} {
		if *group.out, err = parseStrategies(group.in); err != nil {
			return nil, err
		}
	}
	if out.ResponseDelay, err = f.Delay.toDelay(); err != nil {
		return nil, err
	}
	if f.Transformers != nil {
		out.Transformers = make([]stub.Transformer, len(f.Transformers))
		for i, t := range f.Transformers {
			out.Transformers[i] = stub.Transformer(t)
		}
	}
	if s := f.Scenario; s != nil {
		out.Scenario = &stub.Scenario{Name: s.Name, RequiredState: s.RequiredState, NewState: s.NewState}
	}
	if out.Webhook, err = f.Webhook.toWebhook(); err != nil {
		return nil, fmt.Errorf("webhook: %w", err)
	}
	return out, nil
}

func parseStrategies(in map[string]string) (map[string]stub.MatchStrategy, error) {
	if in == nil {
		return nil, nil
	}
	out := make(map[string]stub.MatchStrategy, len(in))
	for name, s := range in {
		strategy, err := stub.ParseMatchStrategy(s)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		out[name] = strategy
	}
	return out, nil
}

func (r requestSpec) toRequest() (stub.Request, error) {
	method := stub.MethodAny
	if r.Method != "" {
		var err error
		if method, err = stub.ParseMethod(r.Method); err != nil {
			return stub.Request{}, err
		}
	}
	return stub.Request{
		Method:          method,
		Endpoint:        r.Endpoint,
		Body:            r.Body,
		Headers:         r.Headers,
		Cookies:         r.Cookies,
		QueryParameters: r.QueryParameters,
		FormParameters:  r.FormParameters,
		Metadata:        r.Metadata,
	}, nil
}

func (r responseSpec) toResponse() (stub.Response, error) {
	resp := stub.Response{
		Status:  r.Status,
		Body:    r.Body,
		Headers: r.Headers,
	}
	var err error
	if resp.Delay, err = r.Delay.toDelay(); err != nil {
		return stub.Response{}, err
	}
	if r.Fault != "" {
		if resp.Fault, err = stub.ParseFault(r.Fault); err != nil {
			return stub.Response{}, err
		}
	}
	return resp, nil
}
