package e2e_test

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/captain/pkg/admin/wiremockclient"
	"github.com/getmockd/captain/pkg/captaintest"
	"github.com/getmockd/captain/pkg/stub"
	"github.com/getmockd/captain/pkg/stubfile"
)

// TestWireMock runs every scenario against one container. Each subtest uses
// its own URLs, and captaintest sessions remove its stubs afterwards.
func TestWireMock(t *testing.T) {
	wm := startWireMock(t)

	t.Run("echo and journal", func(t *testing.T) {
		ctx := t.Context()
		created, err := wm.Register(ctx,
			stub.Request{Method: stub.MethodGet, Endpoint: "/e2e/echo"},
			stub.Response{Status: 200, Body: map[string]any{"hello": "world"}, Headers: map[string]any{"X-Echo": "yes"}},
			nil,
		)
		require.NoError(t, err)
		t.Cleanup(func() { _ = wm.DeleteMapping(context.Background(), created.ID) })

		for range 3 {
			res := hit(t, wm, http.MethodGet, "/e2e/echo", nil)
			assert.Equal(t, 200, res.status)
			assert.JSONEq(t, `{"hello": "world"}`, res.body)
			assert.Equal(t, "yes", res.header.Get("X-Echo"))
			assert.Equal(t, "application/json; charset=utf-8", res.header.Get("Content-Type"))
		}

		events, err := wm.GetRequestsForAPI(ctx, stub.MethodGet, "/e2e/echo")
		require.NoError(t, err)
		assert.Len(t, events, 3)

		got, err := wm.GetMapping(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "/e2e/echo", got.Request.URL)
	})

	t.Run("json body matching", func(t *testing.T) {
		captaintest.Stub(t, wm).
			Post("/e2e/orders").
			WithJSONBody(`{"sku": "a", "qty": 1}`).
			RespondJSON(201, map[string]any{"id": 42})

		res := hit(t, wm, http.MethodPost, "/e2e/orders", strings.NewReader(`{"qty": 1, "sku": "a"}`))
		assert.Equal(t, 201, res.status)
		assert.JSONEq(t, `{"id": 42}`, res.body)

		res = hit(t, wm, http.MethodPost, "/e2e/orders", strings.NewReader(`{"sku": "b", "qty": 1}`))
		assert.Equal(t, 404, res.status)

		j := captaintest.Journal(t, wm)
		j.AssertCalledTimes("POST", "/e2e/orders", 2)
		j.Last("POST", "/e2e/orders").AssertJSONBody(`{"sku": "b", "qty": 1}`)
	})

	t.Run("priority", func(t *testing.T) {
		captaintest.Stub(t, wm).Get("/e2e/prio").WithPriority(5).Respond(200, "low")
		captaintest.Stub(t, wm).Get("/e2e/prio").WithPriority(1).Respond(200, "high")

		assert.Equal(t, "high", hit(t, wm, http.MethodGet, "/e2e/prio", nil).body)
	})

	t.Run("scenario states", func(t *testing.T) {
		const scenario = "e2e-flow"
		captaintest.Stub(t, wm).Get("/e2e/flow").InScenario(scenario, "", "Second").Respond(200, "first")
		captaintest.Stub(t, wm).Get("/e2e/flow").InScenario(scenario, "Second", "").Respond(200, "second")

		assert.Equal(t, "first", hit(t, wm, http.MethodGet, "/e2e/flow", nil).body)
		assert.Equal(t, "second", hit(t, wm, http.MethodGet, "/e2e/flow", nil).body)
		assert.Equal(t, "second", hit(t, wm, http.MethodGet, "/e2e/flow", nil).body)

		scenarios, err := wm.GetAllScenarios(t.Context())
		require.NoError(t, err)
		var state string
		for _, s := range scenarios {
			if s.Name == scenario {
				state = s.State
			}
		}
		assert.Equal(t, "Second", state)

		require.NoError(t, wm.ResetAllScenarios(t.Context()))
		assert.Equal(t, "first", hit(t, wm, http.MethodGet, "/e2e/flow", nil).body)
	})

	t.Run("fault", func(t *testing.T) {
		captaintest.Stub(t, wm).Get("/e2e/fault").RespondFault(stub.FaultEmptyResponse)

		req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, wm.BaseURL()+"/e2e/fault", nil)
		require.NoError(t, err)
		resp, err := http.DefaultClient.Do(req)
		if err == nil {
			resp.Body.Close()
		}
		assert.Error(t, err)
	})

	t.Run("fixed delay", func(t *testing.T) {
		captaintest.Stub(t, wm).Get("/e2e/slow").WithDelay(stub.FixedDelay{Milliseconds: 300}).RespondStatus(204)

		start := time.Now()
		res := hit(t, wm, http.MethodGet, "/e2e/slow", nil)
		assert.Equal(t, 204, res.status)
		assert.GreaterOrEqual(t, time.Since(start), 300*time.Millisecond)
	})

	t.Run("metadata lookup", func(t *testing.T) {
		s := captaintest.NewSession(t, wm)
		s.Stub().Get("/e2e/meta/a").WithMetadata("team", "payments").RespondStatus(200)
		s.Stub().Get("/e2e/meta/b").WithMetadata("team", "payments").RespondStatus(200)

		found, err := wm.FindMappingsByMetadata(t.Context(), wiremockclient.MetadataMatchesJSONPath, s.Match())
		require.NoError(t, err)
		assert.Len(t, found, 2)

		require.NoError(t, wm.RemoveMappingsByMetadata(t.Context(), wiremockclient.MetadataMatchesJSONPath, s.Match()))
		found, err = wm.FindMappingsByMetadata(t.Context(), wiremockclient.MetadataMatchesJSONPath, s.Match())
		require.NoError(t, err)
		assert.Empty(t, found)
	})

	t.Run("endpoint client", func(t *testing.T) {
		users := wm.Endpoint(stub.MethodGet, "/e2e/users/[0-9]+", &stub.Features{
			EndpointMatch: stub.EndpointURLPathPattern,
			Metadata:      map[string]any{"suite": "e2e-endpoint"},
		})
		m, err := users.RegisterDefaultResponse(t.Context(), stub.Response{Status: 200, Body: map[string]any{"user": true}}, nil)
		require.NoError(t, err)
		t.Cleanup(func() { _ = wm.DeleteMapping(context.Background(), m.ID) })

		assert.Equal(t, 200, hit(t, wm, http.MethodGet, "/e2e/users/7", nil).status)
		assert.Equal(t, 404, hit(t, wm, http.MethodGet, "/e2e/users/x", nil).status)
	})

	t.Run("stub file", func(t *testing.T) {
		doc, err := stubfile.Parse([]byte(`
defaults:
  endpointMatch: urlPath
  metadata: {suite: e2e-file}
stubs:
  - name: file one
    request: {method: GET, endpoint: /e2e/file/one}
    response: {status: 200, body: {n: 1}}
  - name: file two
    request: {method: GET, endpoint: /e2e/file/two}
    response: {status: 418}
`))
		require.NoError(t, err)

		created, err := stubfile.Register(t.Context(), wm, doc)
		require.NoError(t, err)
		require.Len(t, created, 2)
		t.Cleanup(func() {
			_ = wm.RemoveMappingsByMetadata(context.Background(), wiremockclient.MetadataEqualToJSON, map[string]any{"suite": "e2e-file"})
		})

		assert.JSONEq(t, `{"n": 1}`, hit(t, wm, http.MethodGet, "/e2e/file/one?x=1", nil).body)
		assert.Equal(t, 418, hit(t, wm, http.MethodGet, "/e2e/file/two", nil).status)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := wm.GetMapping(t.Context(), "00000000-0000-0000-0000-000000000000")
		assert.ErrorIs(t, err, wiremockclient.ErrNotFound)
	})

	t.Run("clear except default", func(t *testing.T) {
		captaintest.Stub(t, wm).Get("/e2e/clear").RespondStatus(200)
		hit(t, wm, http.MethodGet, "/e2e/clear", nil)

		require.NoError(t, wm.ClearAllExceptDefault(t.Context()))

		mappings, err := wm.GetAllMappings(t.Context())
		require.NoError(t, err)
		for _, m := range mappings {
			assert.NotEqual(t, "/e2e/clear", m.Request.URL)
		}
		events, err := wm.GetAllRequests(t.Context())
		require.NoError(t, err)
		assert.Empty(t, events)
	})
}
