package requestlog

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func journal() []ServeEvent {
	return []ServeEvent{
		{
			ID:         "1",
			Request:    LoggedRequest{Method: "POST", URL: "/echo", Body: `{"a":1}`, Headers: map[string]any{"Authorization": "Bearer x"}},
			Response:   &LoggedResponse{Status: 200},
			WasMatched: true,
		},
		{
			ID:         "2",
			Request:    LoggedRequest{Method: "GET", URL: "/echo"},
			Response:   &LoggedResponse{Status: 404},
			WasMatched: false,
		},
		{
			ID:         "3",
			Request:    LoggedRequest{Method: "POST", URL: "/echo?x=1", Body: `{"a":2}`},
			Response:   &LoggedResponse{Status: 500},
			WasMatched: true,
		},
		{
			ID:         "4",
			Request:    LoggedRequest{Method: "POST", URL: "/echo"},
			WasMatched: true,
		},
	}
}

func ids(events []ServeEvent) []string {
	out := make([]string, 0, len(events))
	for _, e := range events {
		out = append(out, e.ID)
	}
	return out
}

func TestByMethodURL_ExactMatch(t *testing.T) {
	got := ByMethodURL(journal(), "POST", "/echo")
	assert.Equal(t, []string{"1", "4"}, ids(got))

	assert.Empty(t, ByMethodURL(journal(), "post", "/echo"), "method match is case-sensitive")
	assert.Empty(t, ByMethodURL(nil, "GET", "/"))
}

func TestApply(t *testing.T) {
	tests := []struct {
		name   string
		filter *Filter
		want   []string
	}{
		{name: "nil filter", filter: nil, want: []string{"1", "2", "3", "4"}},
		{name: "zero filter", filter: &Filter{}, want: []string{"1", "2", "3", "4"}},
		{name: "method", filter: &Filter{Method: "GET"}, want: []string{"2"}},
		{name: "url", filter: &Filter{URL: "/echo?x=1"}, want: []string{"3"}},
		{name: "unmatched", filter: &Filter{Matched: boolPtr(false)}, want: []string{"2"}},
		{name: "status", filter: &Filter{StatusCode: 500}, want: []string{"3"}},
		{name: "limit", filter: &Filter{Method: "POST", Limit: 2}, want: []string{"1", "3"}},
		{name: "jsonpath", filter: &Filter{JSONPath: "$.request.headers.Authorization"}, want: []string{"1"}},
		{name: "where", filter: &Filter{Where: `method == "POST" && status >= 500`}, want: []string{"3"}},
		{name: "where body", filter: &Filter{Where: `body contains "\"a\":1"`}, want: []string{"1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Apply(journal(), tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestApply_InvalidExpressions(t *testing.T) {
	_, err := MatchJSONPath(journal(), "$.request[")
	assert.Error(t, err)

	_, err = MatchExpr(journal(), `method ==`)
	assert.Error(t, err)

	_, err = MatchExpr(journal(), `status + 1`)
	assert.Error(t, err, "non-boolean expressions are rejected at compile time")
}

func TestServeEvent_DecodesJournal(t *testing.T) {
	raw := `{
		"requests": [{
			"id": "e1",
			"request": {
				"url": "/echo",
				"absoluteUrl": "http://localhost:8080/echo",
				"method": "POST",
				"headers": {"Content-Type": "application/json"},
				"body": "{\"a\":1}",
				"loggedDate": 1700000000000
			},
			"responseDefinition": {"status": 200, "jsonBody": {"b": 2}},
			"response": {"status": 200, "body": "{\"b\":2}"},
			"wasMatched": true
		}],
		"meta": {"total": 1}
	}`

	var envelope struct {
		Requests []ServeEvent `json:"requests"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &envelope))
	require.Len(t, envelope.Requests, 1)

	e := envelope.Requests[0]
	assert.Equal(t, "POST", e.Request.Method)
	assert.Equal(t, 200, e.Status())
	assert.True(t, e.WasMatched)
	assert.Equal(t, time.UnixMilli(1700000000000), e.Request.Time())
	assert.JSONEq(t, `{"status": 200, "jsonBody": {"b": 2}}`, string(e.ResponseDefinition))
}

func TestServeEvent_ZeroValues(t *testing.T) {
	var e ServeEvent
	assert.Equal(t, 0, e.Status())
	assert.True(t, e.Request.Time().IsZero())
}

func boolPtr(b bool) *bool {
	return &b
}
