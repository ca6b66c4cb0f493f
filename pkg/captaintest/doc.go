// Package captaintest provides helpers for using WireMock from Go tests.
//
// It starts a throwaway WireMock container, registers stubs through a fluent
// builder, and asserts on the request journal.
//
// # Basic Usage
//
//	func TestCheckout(t *testing.T) {
//	    wm := captaintest.StartWireMock(t.Context(), t)
//
//	    captaintest.Stub(t, wm).
//	        Post("/orders").
//	        WithJSONBody(map[string]any{"sku": "a"}).
//	        RespondJSON(201, map[string]any{"id": 1})
//
//	    // exercise the code under test against wm.BaseURL() ...
//
//	    captaintest.Journal(t, wm).AssertCalledTimes("POST", "/orders", 1)
//	}
//
// # Stub Builder
//
// Stubs registered through Stub are tagged with a per-test session id in
// their metadata and removed when the test ends, so tests sharing one WireMock
// server do not see each other's stubs:
//
//	captaintest.Stub(t, wm).
//	    Get("/users/.*").
//	    MatchPath(stub.EndpointURLPathPattern).
//	    WithQuery("active", "true").
//	    WithPriority(1).
//	    InScenario("signup", "", "Registered").
//	    WithDelay(stub.FixedDelay{Milliseconds: 50}).
//	    RespondJSON(200, users)
//
// Builder errors are collected and reported when the stub is registered
// (first error wins).
//
// # Journal Assertions
//
//	j := captaintest.Journal(t, wm)
//	j.AssertCalled("GET", "/users/1")
//	j.AssertNotCalled("DELETE", "/users/1")
//	j.AssertNoUnmatched()
//	j.Last("POST", "/orders").AssertJSONBody(`{"sku": "a"}`)
//
// # Container
//
// StartWireMock needs a Docker provider. The image defaults to DefaultImage
// and can be overridden with CAPTAIN_WIREMOCK_IMAGE. Tests are skipped when no
// provider is reachable.
package captaintest
