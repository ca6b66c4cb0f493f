package stub

import "fmt"

// Delay is a response or webhook delay. The set of implementations is closed:
// FixedDelay, UniformDelay, LogNormalDelay and ChunkedDribbleDelay.
type Delay interface {
	isDelay()
}

// FixedDelay delays every response by a constant number of milliseconds.
type FixedDelay struct {
	Milliseconds int
}

// UniformDelay draws the delay uniformly from [Lower, Upper] milliseconds.
type UniformDelay struct {
	Lower int
	Upper int
}

// LogNormalDelay draws the delay from a log-normal distribution.
// Median is in milliseconds.
type LogNormalDelay struct {
	Median float64
	Sigma  float64
}

// ChunkedDribbleDelay splits the body into chunks spread over TotalDuration milliseconds.
// It applies to responses only; webhooks reject it.
type ChunkedDribbleDelay struct {
	NumberOfChunks int
	TotalDuration  int
}

func (FixedDelay) isDelay()          {}
func (UniformDelay) isDelay()        {}
func (LogNormalDelay) isDelay()      {}
func (ChunkedDribbleDelay) isDelay() {}

// Distribution type names used on the wire.
const (
	distributionFixed     = "fixed"
	distributionUniform   = "uniform"
	distributionLogNormal = "lognormal"
)

// DelayDistribution is the response "delayDistribution" object.
type DelayDistribution struct {
	Type   string   `json:"type"`
	Median *float64 `json:"median,omitempty"`
	Sigma  *float64 `json:"sigma,omitempty"`
	Lower  *int     `json:"lower,omitempty"`
	Upper  *int     `json:"upper,omitempty"`
}

// ChunkedDribble is the response "chunkedDribbleDelay" object.
type ChunkedDribble struct {
	NumberOfChunks int `json:"numberOfChunks"`
	TotalDuration  int `json:"totalDuration"`
}

// WebhookDelay is the "delay" parameter of a webhook post-serve action.
type WebhookDelay struct {
	Type         string   `json:"type"`
	Milliseconds *int     `json:"milliseconds,omitempty"`
	Median       *float64 `json:"median,omitempty"`
	Sigma        *float64 `json:"sigma,omitempty"`
	Lower        *int     `json:"lower,omitempty"`
	Upper        *int     `json:"upper,omitempty"`
}

// applyDelay writes d onto a response definition. A nil delay leaves r untouched.
func applyDelay(r *ResponseDefinition, d Delay) {
	switch d := d.(type) {
	case FixedDelay:
		r.FixedDelayMilliseconds = Ptr(d.Milliseconds)
	case UniformDelay:
		r.DelayDistribution = &DelayDistribution{
			Type:  distributionUniform,
			Lower: Ptr(d.Lower),
			Upper: Ptr(d.Upper),
		}
	case LogNormalDelay:
		r.DelayDistribution = &DelayDistribution{
			Type:   distributionLogNormal,
			Median: Ptr(d.Median),
			Sigma:  Ptr(d.Sigma),
		}
	case ChunkedDribbleDelay:
		r.ChunkedDribbleDelay = &ChunkedDribble{
			NumberOfChunks: d.NumberOfChunks,
			TotalDuration:  d.TotalDuration,
		}
	}
}

// EncodeWebhookDelay converts d into the webhook delay shape.
// ChunkedDribbleDelay returns ErrUnsupportedDelay.
func EncodeWebhookDelay(d Delay) (*WebhookDelay, error) {
	switch d := d.(type) {
	case FixedDelay:
		return &WebhookDelay{Type: distributionFixed, Milliseconds: Ptr(d.Milliseconds)}, nil
	case LogNormalDelay:
		return &WebhookDelay{Type: distributionLogNormal, Median: Ptr(d.Median), Sigma: Ptr(d.Sigma)}, nil
	case UniformDelay:
		return &WebhookDelay{Type: distributionUniform, Lower: Ptr(d.Lower), Upper: Ptr(d.Upper)}, nil
	case ChunkedDribbleDelay:
		return nil, fmt.Errorf("chunked dribble: %w", ErrUnsupportedDelay)
	default:
		return nil, fmt.Errorf("%T: %w", d, ErrUnsupportedDelay)
	}
}
