package wiremockclient

import (
	"context"

	"github.com/getmockd/captain/pkg/requestlog"
	"github.com/getmockd/captain/pkg/stub"
)

// EndpointClient binds a Client to one method and endpoint so tests can stub a
// single API without repeating them. Other operations are available through
// the embedded *Client.
type EndpointClient struct {
	*Client
	method   stub.Method
	endpoint string
	defaults *stub.Features
}

// NewEndpoint returns an EndpointClient for method and endpoint.
//
// defaults are merged under the per-call features of Register. Scenario and
// Priority are dropped from them: those only make sense per registration.
func NewEndpoint(c *Client, method stub.Method, endpoint string, defaults *stub.Features) *EndpointClient {
	var d *stub.Features
	if defaults != nil {
		copied := *defaults
		copied.Scenario = nil
		copied.Priority = nil
		d = &copied
	}
	return &EndpointClient{
		Client:   c,
		method:   method,
		endpoint: endpoint,
		defaults: d,
	}
}

// Method returns the bound HTTP method.
func (e *EndpointClient) Method() stub.Method { return e.method }

// Path returns the bound endpoint.
func (e *EndpointClient) Path() string { return e.endpoint }

// Register stubs the bound endpoint. The method and endpoint in req are
// replaced by the bound ones.
func (e *EndpointClient) Register(ctx context.Context, req stub.Request, resp stub.Response, f *stub.Features) (*stub.StubMapping, error) {
	req.Method = e.method
	req.Endpoint = e.endpoint
	return e.Client.Register(ctx, req, resp, stub.MergeFeatures(e.defaults, f))
}

// RegisterDefaultResponse stubs the bound endpoint with no further request
// constraints, typically together with a high Priority value so specific
// stubs win.
func (e *EndpointClient) RegisterDefaultResponse(ctx context.Context, resp stub.Response, f *stub.Features) (*stub.StubMapping, error) {
	return e.Register(ctx, stub.Request{}, resp, f)
}

// GetRequestsForAPI returns the journal entries for the bound method and endpoint.
func (e *EndpointClient) GetRequestsForAPI(ctx context.Context) ([]requestlog.ServeEvent, error) {
	return e.Client.GetRequestsForAPI(ctx, e.method, e.endpoint)
}
