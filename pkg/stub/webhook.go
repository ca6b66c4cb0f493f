package stub

import (
	"encoding/json"
	"fmt"
)

// Webhook describes a fire-and-forget call WireMock makes after serving a response.
type Webhook struct {
	Method  Method
	URL     string
	Headers map[string]any
	Body    WebhookBody
	Delay   Delay
}

// WebhookBody is the payload of a webhook. Implementations: JSONWebhookBody, StringWebhookBody.
type WebhookBody interface {
	isWebhookBody()
}

// JSONWebhookBody is serialized to a JSON string before being sent to the server.
type JSONWebhookBody struct {
	Data any
}

// StringWebhookBody is sent verbatim.
type StringWebhookBody struct {
	Data string
}

func (JSONWebhookBody) isWebhookBody()   {}
func (StringWebhookBody) isWebhookBody() {}

// EncodeWebhookBody renders a webhook body as the string WireMock expects.
func EncodeWebhookBody(b WebhookBody) (string, error) {
	switch b := b.(type) {
	case JSONWebhookBody:
		data, err := json.Marshal(b.Data)
		if err != nil {
			return "", fmt.Errorf("encode webhook body: %w", err)
		}
		return string(data), nil
	case StringWebhookBody:
		return b.Data, nil
	default:
		return "", fmt.Errorf("%T: %w", b, ErrUnsupportedWebhookBody)
	}
}

// webhookActionName is the post-serve action WireMock's webhook extension registers.
const webhookActionName = "webhook"

// PostServeAction is one entry of a mapping's "postServeActions" list.
type PostServeAction struct {
	Name       string            `json:"name"`
	Parameters WebhookParameters `json:"parameters"`
}

// WebhookParameters are the parameters of the webhook post-serve action.
type WebhookParameters struct {
	Method  Method         `json:"method"`
	URL     string         `json:"url"`
	Headers map[string]any `json:"headers,omitempty"`
	Body    string         `json:"body,omitempty"`
	Delay   *WebhookDelay  `json:"delay,omitempty"`
}

// buildWebhookAction converts w into a post-serve action.
// Headers, body and delay are only emitted when present.
func buildWebhookAction(w *Webhook) (PostServeAction, error) {
	params := WebhookParameters{
		Method:  w.Method,
		URL:     w.URL,
		Headers: w.Headers,
	}
	if w.Body != nil {
		body, err := EncodeWebhookBody(w.Body)
		if err != nil {
			return PostServeAction{}, err
		}
		params.Body = body
	}
	if w.Delay != nil {
		delay, err := EncodeWebhookDelay(w.Delay)
		if err != nil {
			return PostServeAction{}, err
		}
		params.Delay = delay
	}
	return PostServeAction{Name: webhookActionName, Parameters: params}, nil
}
