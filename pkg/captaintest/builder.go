package captaintest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/getmockd/captain/pkg/admin/wiremockclient"
	"github.com/getmockd/captain/pkg/stub"
)

// SessionKey is the metadata key that tags stubs with their session id.
const SessionKey = "captaintestSession"

// Admin is the part of the admin client the builder needs.
type Admin interface {
	Register(ctx context.Context, req stub.Request, resp stub.Response, f *stub.Features) (*stub.StubMapping, error)
	RemoveMappingsByMetadata(ctx context.Context, matchType string, match any) error
}

// Session groups the stubs one test registers on one server.
type Session struct {
	ID    string
	t     testing.TB
	admin Admin
}

type sessionKey struct {
	t     testing.TB
	admin Admin
}

var sessions sync.Map // sessionKey -> *Session

// NewSession starts a session whose stubs are removed when t ends.
func NewSession(t testing.TB, admin Admin) *Session {
	t.Helper()
	s := &Session{ID: uuid.NewString(), t: t, admin: admin}
	t.Cleanup(func() {
		// t.Context is already canceled here
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := admin.RemoveMappingsByMetadata(ctx, wiremockclient.MetadataMatchesJSONPath, s.Match()); err != nil {
			t.Errorf("captaintest: removing stubs of session %s: %v", s.ID, err)
		}
	})
	return s
}

// Match is the matchesJsonPath value selecting this session's stubs.
func (s *Session) Match() map[string]any {
	return map[string]any{
		"expression": "$." + SessionKey,
		"equalTo":    s.ID,
	}
}

// Stub starts a builder whose stub belongs to s.
func (s *Session) Stub() *StubBuilder {
	return &StubBuilder{
		t:       s.t,
		session: s,
		req:     stub.Request{Method: stub.MethodAny},
		resp:    stub.Response{Status: http.StatusOK},
	}
}

// Stub starts a builder in the test's session for admin, creating the
// session on first use.
func Stub(t testing.TB, admin Admin) *StubBuilder {
	t.Helper()
	key := sessionKey{t: t, admin: admin}
	if v, ok := sessions.Load(key); ok {
		return v.(*Session).Stub()
	}
	s := NewSession(t, admin)
	sessions.Store(key, s)
	t.Cleanup(func() { sessions.Delete(key) })
	return s.Stub()
}

// StubBuilder builds a stub registration using a fluent API.
type StubBuilder struct {
	t       testing.TB
	session *Session
	req     stub.Request
	resp    stub.Response
	f       stub.Features
	err     error // First error encountered during building
}

// setError records the first error encountered during building.
func (b *StubBuilder) setError(err error) {
	if b.err == nil {
		b.err = err
	}
}

// Err returns any error encountered during building.
func (b *StubBuilder) Err() error {
	return b.err
}

// Request sets the method and endpoint to match.
func (b *StubBuilder) Request(method stub.Method, endpoint string) *StubBuilder {
	b.req.Method = method
	b.req.Endpoint = endpoint
	return b
}

// Get matches GET requests to endpoint.
func (b *StubBuilder) Get(endpoint string) *StubBuilder { return b.Request(stub.MethodGet, endpoint) }

// Post matches POST requests to endpoint.
func (b *StubBuilder) Post(endpoint string) *StubBuilder { return b.Request(stub.MethodPost, endpoint) }

// Put matches PUT requests to endpoint.
func (b *StubBuilder) Put(endpoint string) *StubBuilder { return b.Request(stub.MethodPut, endpoint) }

// Patch matches PATCH requests to endpoint.
func (b *StubBuilder) Patch(endpoint string) *StubBuilder { return b.Request(stub.MethodPatch, endpoint) }

// Delete matches DELETE requests to endpoint.
func (b *StubBuilder) Delete(endpoint string) *StubBuilder {
	return b.Request(stub.MethodDelete, endpoint)
}

// Any matches requests to endpoint with any method.
func (b *StubBuilder) Any(endpoint string) *StubBuilder { return b.Request(stub.MethodAny, endpoint) }

// MatchPath selects how the endpoint is matched (default url).
func (b *StubBuilder) MatchPath(m stub.EndpointMatch) *StubBuilder {
	if !m.Valid() {
		b.setError(fmt.Errorf("MatchPath: invalid endpoint match %q", m))
		return b
	}
	b.f.EndpointMatch = m
	return b
}

// WithName sets the mapping display name.
func (b *StubBuilder) WithName(name string) *StubBuilder {
	b.f.Name = name
	return b
}

// WithQuery matches a query parameter with equalTo.
func (b *StubBuilder) WithQuery(key string, value any) *StubBuilder {
	if b.req.QueryParameters == nil {
		b.req.QueryParameters = make(map[string]any)
	}
	b.req.QueryParameters[key] = value
	return b
}

// WithHeader matches a request header with equalTo.
func (b *StubBuilder) WithHeader(key string, value any) *StubBuilder {
	return b.WithHeaderMatching(key, stub.MatchEqualTo, value)
}

// WithHeaderMatching matches a request header with the given strategy.
func (b *StubBuilder) WithHeaderMatching(key string, strategy stub.MatchStrategy, value any) *StubBuilder {
	if !strategy.Valid() {
		b.setError(fmt.Errorf("WithHeaderMatching: invalid strategy %q", strategy))
		return b
	}
	if b.req.Headers == nil {
		b.req.Headers = make(map[string]any)
	}
	if b.f.HeaderMatch == nil {
		b.f.HeaderMatch = make(map[string]stub.MatchStrategy)
	}
	b.req.Headers[key] = value
	b.f.HeaderMatch[key] = strategy
	return b
}

// WithJSONBody matches the request body with equalToJson. Strings and byte
// slices are parsed as JSON; anything else is used as is.
func (b *StubBuilder) WithJSONBody(body any) *StubBuilder {
	var raw []byte
	switch v := body.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return b.WithBodyMatching(stub.MatchEqualToJSON, body)
	}
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		b.setError(fmt.Errorf("WithJSONBody: invalid JSON: %w", err))
		return b
	}
	return b.WithBodyMatching(stub.MatchEqualToJSON, decoded)
}

// WithBodyMatching matches the request body with the given strategy.
func (b *StubBuilder) WithBodyMatching(strategy stub.MatchStrategy, body any) *StubBuilder {
	if !strategy.Valid() {
		b.setError(fmt.Errorf("WithBodyMatching: invalid strategy %q", strategy))
		return b
	}
	b.f.BodyMatch = strategy
	b.req.Body = body
	return b
}

// WithPriority sets the mapping priority. Lower values win.
func (b *StubBuilder) WithPriority(priority int) *StubBuilder {
	if priority < 1 {
		b.setError(fmt.Errorf("WithPriority: priority must be positive, got %d", priority))
		return b
	}
	b.f.Priority = stub.Ptr(priority)
	return b
}

// InScenario makes the stub part of a scenario. An empty required state
// means Started; an empty next state leaves the state unchanged.
func (b *StubBuilder) InScenario(name, required, next string) *StubBuilder {
	b.f.Scenario = &stub.Scenario{Name: name, RequiredState: required, NewState: next}
	return b
}

// WithDelay delays the response.
func (b *StubBuilder) WithDelay(d stub.Delay) *StubBuilder {
	b.resp.Delay = d
	return b
}

// WithResponseHeader adds a response header.
func (b *StubBuilder) WithResponseHeader(key string, value any) *StubBuilder {
	if b.resp.Headers == nil {
		b.resp.Headers = make(map[string]any)
	}
	b.resp.Headers[key] = value
	return b
}

// WithTransformer adds a response transformer.
func (b *StubBuilder) WithTransformer(t stub.Transformer) *StubBuilder {
	b.f.Transformers = append(b.f.Transformers, t)
	return b
}

// WithMetadata adds a metadata entry. SessionKey is reserved.
func (b *StubBuilder) WithMetadata(key string, value any) *StubBuilder {
	if key == SessionKey {
		b.setError(fmt.Errorf("WithMetadata: %q is reserved", SessionKey))
		return b
	}
	if b.req.Metadata == nil {
		b.req.Metadata = make(map[string]any)
	}
	b.req.Metadata[key] = value
	return b
}

// Respond registers the stub with a plain-text body.
func (b *StubBuilder) Respond(status int, body string) *stub.StubMapping {
	b.t.Helper()
	b.f.ResponseBodyType = stub.BodyRaw
	b.resp.Status = status
	if body != "" {
		b.resp.Body = body
	}
	return b.register()
}

// RespondJSON registers the stub with a JSON body. Content-Type is set.
func (b *StubBuilder) RespondJSON(status int, body any) *stub.StubMapping {
	b.t.Helper()
	b.f.ResponseBodyType = stub.BodyJSON
	b.resp.Status = status
	b.resp.Body = body
	return b.register()
}

// RespondStatus registers the stub with an empty body.
func (b *StubBuilder) RespondStatus(status int) *stub.StubMapping {
	b.t.Helper()
	return b.Respond(status, "")
}

// RespondNotFound registers a 404 with a JSON error body.
func (b *StubBuilder) RespondNotFound() *stub.StubMapping {
	b.t.Helper()
	return b.RespondJSON(http.StatusNotFound, map[string]string{"error": "not_found"})
}

// RespondFault registers the stub serving a fault instead of a response.
func (b *StubBuilder) RespondFault(fault stub.Fault) *stub.StubMapping {
	b.t.Helper()
	if !fault.Valid() {
		b.setError(fmt.Errorf("RespondFault: invalid fault %q", fault))
	}
	b.resp.Fault = fault
	return b.register()
}

// register sends the stub, failing the test on any builder or server error.
func (b *StubBuilder) register() *stub.StubMapping {
	b.t.Helper()
	if b.err != nil {
		b.t.Fatalf("captaintest: building stub %s %s: %v", b.req.Method, b.req.Endpoint, b.err)
		return nil
	}

	if b.req.Metadata == nil {
		b.req.Metadata = make(map[string]any, 1)
	}
	b.req.Metadata[SessionKey] = b.session.ID

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	m, err := b.session.admin.Register(ctx, b.req, b.resp, &b.f)
	if err != nil {
		b.t.Fatalf("captaintest: registering stub %s %s: %v", b.req.Method, b.req.Endpoint, err)
		return nil
	}
	return m
}
