package stub

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRequest_MethodAndEndpointOnly(t *testing.T) {
	tests := []struct {
		name    string
		mode    EndpointMatch
		wantKey string
	}{
		{name: "default", mode: "", wantKey: "url"},
		{name: "url", mode: EndpointURL, wantKey: "url"},
		{name: "urlPath", mode: EndpointURLPath, wantKey: "urlPath"},
		{name: "urlPathPattern", mode: EndpointURLPathPattern, wantKey: "urlPathPattern"},
		{name: "urlPattern", mode: EndpointURLPattern, wantKey: "urlPattern"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := BuildRequest(Request{Method: MethodGet, Endpoint: "/api/users"}, &Features{EndpointMatch: tt.mode})

			got := toJSONMap(t, p)
			assert.ElementsMatch(t, []string{"method", tt.wantKey}, keys(got))
			assert.Equal(t, "GET", got["method"])
			assert.Equal(t, "/api/users", got[tt.wantKey])

			endpoint, mode := p.Endpoint()
			assert.Equal(t, "/api/users", endpoint)
			assert.Equal(t, tt.wantKey, string(mode))
		})
	}
}

func TestBuildRequest_NilFeatures(t *testing.T) {
	p := BuildRequest(Request{Method: MethodPost, Endpoint: "/x"}, nil)
	assert.Equal(t, MethodPost, p.Method)
	assert.Equal(t, "/x", p.URL)
	assert.Nil(t, p.BodyPatterns)
}

func TestBuildRequest_BodyDefaultsToEqualToJSON(t *testing.T) {
	bodies := []any{
		map[string]any{"a": float64(1)},
		[]any{"x", "y"},
		"plain",
		float64(42),
	}

	for _, body := range bodies {
		p := BuildRequest(Request{Method: MethodPost, Endpoint: "/echo", Body: body}, &Features{})
		require.Len(t, p.BodyPatterns, 1)
		assert.Equal(t, MatchPattern{
			"equalToJson":         body,
			"ignoreArrayOrder":    false,
			"ignoreExtraElements": false,
		}, p.BodyPatterns[0])
	}
}

func TestBuildRequest_BodyIgnoreFlags(t *testing.T) {
	f := &Features{IgnoreArrayOrder: Ptr(true), IgnoreExtraElements: Ptr(true)}
	p := BuildRequest(Request{Method: MethodPost, Endpoint: "/echo", Body: map[string]any{"a": 1}}, f)

	require.Len(t, p.BodyPatterns, 1)
	assert.Equal(t, true, p.BodyPatterns[0]["ignoreArrayOrder"])
	assert.Equal(t, true, p.BodyPatterns[0]["ignoreExtraElements"])
}

func TestBuildRequest_BodyOtherStrategyHasNoFlags(t *testing.T) {
	f := &Features{BodyMatch: MatchContains, IgnoreArrayOrder: Ptr(true)}
	p := BuildRequest(Request{Method: MethodPost, Endpoint: "/echo", Body: "needle"}, f)

	require.Len(t, p.BodyPatterns, 1)
	assert.Equal(t, MatchPattern{"contains": "needle"}, p.BodyPatterns[0])
}

func TestBuildRequest_FieldGroups(t *testing.T) {
	req := Request{
		Method:          MethodGet,
		Endpoint:        "/items",
		Headers:         map[string]any{"Accept": "application/json", "X-Trace": "abc.*"},
		Cookies:         map[string]any{"session": "s1"},
		QueryParameters: map[string]any{"page": 2, "debug": true},
		FormParameters:  map[string]any{"name": "bob"},
	}
	f := &Features{
		HeaderMatch: map[string]MatchStrategy{"X-Trace": MatchMatches},
		CookieMatch: map[string]MatchStrategy{"session": MatchContains},
		QueryMatch:  map[string]MatchStrategy{"page": MatchDoesNotMatch},
		FormMatch:   map[string]MatchStrategy{},
	}

	p := BuildRequest(req, f)

	assert.Equal(t, map[string]MatchPattern{
		"Accept":  {"equalTo": "application/json"},
		"X-Trace": {"matches": "abc.*"},
	}, p.Headers)
	assert.Equal(t, map[string]MatchPattern{"session": {"contains": "s1"}}, p.Cookies)
	assert.Equal(t, map[string]MatchPattern{
		"page":  {"doesNotMatch": 2},
		"debug": {"equalTo": true},
	}, p.QueryParameters)
	assert.Equal(t, map[string]MatchPattern{"name": {"equalTo": "bob"}}, p.FormParameters)
}

func TestBuildRequest_AbsentGroupsOmitted(t *testing.T) {
	p := BuildRequest(Request{Method: MethodDelete, Endpoint: "/a", Headers: map[string]any{"A": "b"}}, nil)

	got := toJSONMap(t, p)
	assert.ElementsMatch(t, []string{"method", "url", "headers"}, keys(got))
}

func TestBuildRequest_EmptyEndpointKeepsKey(t *testing.T) {
	got := toJSONMap(t, BuildRequest(Request{Method: MethodAny}, &Features{EndpointMatch: EndpointURLPathPattern}))
	assert.Equal(t, map[string]any{"method": "ANY", "urlPathPattern": ""}, got)

	p := BuildRequest(Request{}, nil)
	assert.Equal(t, map[string]any{"method": "", "url": ""}, toJSONMap(t, p))
	endpoint, mode := p.Endpoint()
	assert.Empty(t, endpoint)
	assert.Equal(t, EndpointURL, mode)
}

func TestRequestPattern_DecodedKeepsOnlyPresentKeys(t *testing.T) {
	var p RequestPattern
	require.NoError(t, json.Unmarshal([]byte(`{"urlPath": "/x"}`), &p))
	assert.Equal(t, map[string]any{"urlPath": "/x"}, toJSONMap(t, p))
}
