// Package stub translates request/response descriptors into WireMock's stub
// mapping JSON schema.
//
// The builders in this package are pure: they take caller-owned descriptors
// plus optional Features and return the server-side shapes that the admin
// client posts to /__admin/mappings.
//
// # Building a mapping
//
//	m, err := stub.BuildMapping(
//	    stub.Request{Method: stub.MethodPost, Endpoint: "/echo", Body: map[string]any{"a": 1}},
//	    stub.Response{Status: 200, Body: map[string]any{"b": 2}},
//	    &stub.Features{Priority: stub.Ptr(1)},
//	)
//
// # Closed variants
//
// Delays and webhook bodies are sealed interfaces: only the variant types
// declared here implement them, so every dispatch in this package is a type
// switch over a known set. Enumerations (Method, MatchStrategy, EndpointMatch,
// BodyType, Fault) are string types with a Valid method and a Parse function.
package stub
