package stub

import "testing"

func BenchmarkBuildMapping(b *testing.B) {
	req := Request{
		Method:          MethodPost,
		Endpoint:        "/orders",
		Body:            map[string]any{"sku": "a", "qty": 1},
		Headers:         map[string]any{"X-Tenant": "t1"},
		QueryParameters: map[string]any{"dry": "true"},
	}
	resp := Response{Status: 201, Body: map[string]any{"id": 1}, Delay: UniformDelay{Lower: 10, Upper: 20}}
	f := &Features{
		Priority: Ptr(1),
		Scenario: &Scenario{Name: "checkout", NewState: "Paid"},
		Webhook: &Webhook{
			Method: MethodPost,
			URL:    "http://hooks.local/paid",
			Body:   JSONWebhookBody{Data: map[string]any{"paid": true}},
		},
	}

	b.ReportAllocs()
	for b.Loop() {
		if _, err := BuildMapping(req, resp, f); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkMergeFeatures(b *testing.B) {
	defaults := &Features{EndpointMatch: EndpointURLPath, Metadata: map[string]any{"team": "a"}}
	overrides := &Features{Priority: Ptr(2), BodyMatch: MatchContains}

	b.ReportAllocs()
	for b.Loop() {
		_ = MergeFeatures(defaults, overrides)
	}
}
