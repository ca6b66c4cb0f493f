package stub

import "errors"

var (
	// ErrUnsupportedDelay is returned when a delay variant has no webhook form.
	// WireMock webhooks support fixed, uniform and lognormal delays only.
	ErrUnsupportedDelay = errors.New("unsupported webhook delay type")

	// ErrUnknownValue is returned by the Parse functions for names outside an enumeration.
	ErrUnknownValue = errors.New("unknown value")

	// ErrUnsupportedWebhookBody is returned for webhook body values that are not a known variant.
	ErrUnsupportedWebhookBody = errors.New("unsupported webhook body type")
)
