// Package requestlog holds WireMock's request journal types and the local
// filters applied to them.
//
// WireMock records every request it receives as a serve event. The admin
// client fetches the journal in one call; narrowing it down (by method and
// URL, by JSONPath, or by an expression) happens here, client-side.
//
//	events, _ := client.GetAllRequests(ctx)
//	posts := requestlog.ByMethodURL(events, "POST", "/echo")
//	slow, err := requestlog.Apply(events, &requestlog.Filter{Where: `status >= 500`})
//
// This is a leaf package with no internal dependencies.
package requestlog
