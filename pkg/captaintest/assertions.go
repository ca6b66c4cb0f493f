package captaintest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/getmockd/captain/pkg/requestlog"
)

// JournalReader is the part of the admin client the journal assertions need.
type JournalReader interface {
	GetAllRequests(ctx context.Context) ([]requestlog.ServeEvent, error)
	GetUnmatchedRequests(ctx context.Context) ([]requestlog.LoggedRequest, error)
}

// JournalAssert runs assertions against a server's request journal. Every
// call fetches the journal afresh.
type JournalAssert struct {
	t testing.TB
	r JournalReader
}

// Journal returns assertions over r's request journal.
func Journal(t testing.TB, r JournalReader) *JournalAssert {
	return &JournalAssert{t: t, r: r}
}

func (j *JournalAssert) fetch() []requestlog.ServeEvent {
	j.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	events, err := j.r.GetAllRequests(ctx)
	if err != nil {
		j.t.Fatalf("captaintest: reading request journal: %v", err)
	}
	return events
}

// Requests returns the journal entries for method and url, newest first.
func (j *JournalAssert) Requests(method, url string) []requestlog.ServeEvent {
	j.t.Helper()
	return requestlog.ByMethodURL(j.fetch(), method, url)
}

// Where returns the journal entries for which expression holds.
// See requestlog.Filter for the variables.
func (j *JournalAssert) Where(expression string) []requestlog.ServeEvent {
	j.t.Helper()
	events, err := requestlog.MatchExpr(j.fetch(), expression)
	if err != nil {
		j.t.Fatalf("captaintest: %v", err)
	}
	return events
}

// AssertCalled asserts that at least one request was made to method and url.
func (j *JournalAssert) AssertCalled(method, url string) bool {
	j.t.Helper()
	if len(j.Requests(method, url)) == 0 {
		j.t.Errorf("expected %s %s to be called, but it was not", method, url)
		return false
	}
	return true
}

// AssertNotCalled asserts that no request was made to method and url.
func (j *JournalAssert) AssertNotCalled(method, url string) bool {
	j.t.Helper()
	if n := len(j.Requests(method, url)); n > 0 {
		j.t.Errorf("expected %s %s not to be called, but it was called %d time(s)", method, url, n)
		return false
	}
	return true
}

// AssertCalledTimes asserts that exactly n requests were made to method and url.
func (j *JournalAssert) AssertCalledTimes(method, url string, n int) bool {
	j.t.Helper()
	if got := len(j.Requests(method, url)); got != n {
		j.t.Errorf("expected %s %s to be called %d time(s), but it was called %d time(s)", method, url, n, got)
		return false
	}
	return true
}

// AssertNoUnmatched asserts that every request the server received matched a stub.
func (j *JournalAssert) AssertNoUnmatched() bool {
	j.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	reqs, err := j.r.GetUnmatchedRequests(ctx)
	if err != nil {
		j.t.Fatalf("captaintest: reading unmatched requests: %v", err)
	}
	if len(reqs) == 0 {
		return true
	}
	lines := make([]string, 0, len(reqs))
	for _, r := range reqs {
		lines = append(lines, "  "+r.Method+" "+r.URL)
	}
	j.t.Errorf("expected no unmatched requests, got %d:\n%s", len(reqs), strings.Join(lines, "\n"))
	return false
}

// Last returns assertions on the most recent request to method and url.
// The test fails immediately when there is none.
func (j *JournalAssert) Last(method, url string) *RequestAssert {
	j.t.Helper()
	events := j.Requests(method, url)
	if len(events) == 0 {
		j.t.Fatalf("expected a request to %s %s, found none", method, url)
		return nil
	}
	// the journal lists newest first
	return &RequestAssert{t: j.t, Request: events[0].Request}
}

// RequestAssert runs assertions against one logged request.
type RequestAssert struct {
	t       testing.TB
	Request requestlog.LoggedRequest
}

// AssertJSONBody asserts that the request body is JSON equal to expected.
// Strings and byte slices are taken as JSON text; other values are encoded.
func (r *RequestAssert) AssertJSONBody(expected any) bool {
	r.t.Helper()
	var want string
	switch v := expected.(type) {
	case string:
		want = v
	case []byte:
		want = string(v)
	default:
		data, err := json.Marshal(v)
		if err != nil {
			r.t.Errorf("failed to marshal expected value: %v", err)
			return false
		}
		want = string(data)
	}
	return assert.JSONEq(r.t, want, r.Request.Body)
}

// AssertBody asserts that the request body equals expected.
func (r *RequestAssert) AssertBody(expected string) bool {
	r.t.Helper()
	return assert.Equal(r.t, expected, r.Request.Body, "request body")
}

// AssertBodyContains asserts that the request body contains substr.
func (r *RequestAssert) AssertBodyContains(substr string) bool {
	r.t.Helper()
	return assert.Contains(r.t, r.Request.Body, substr, "request body")
}

// AssertHeader asserts that the request carried header key with value expected.
// Header names are compared case-insensitively.
func (r *RequestAssert) AssertHeader(key, expected string) bool {
	r.t.Helper()
	actual, ok := r.Header(key)
	if !ok {
		r.t.Errorf("request does not have header %q", key)
		return false
	}
	return assert.Equal(r.t, expected, actual, "header %q", key)
}

// Header returns the first value of header key.
func (r *RequestAssert) Header(key string) (string, bool) {
	for k, v := range r.Request.Headers {
		if !strings.EqualFold(k, key) {
			continue
		}
		switch v := v.(type) {
		case string:
			return v, true
		case []any:
			if len(v) > 0 {
				return fmt.Sprint(v[0]), true
			}
			return "", true
		default:
			return fmt.Sprint(v), true
		}
	}
	return "", false
}
