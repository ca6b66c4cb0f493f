package stub

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeWebhookBody(t *testing.T) {
	got, err := EncodeWebhookBody(JSONWebhookBody{Data: map[string]any{"a": 1}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, got)

	got, err = EncodeWebhookBody(StringWebhookBody{Data: "raw {not json"})
	require.NoError(t, err)
	assert.Equal(t, "raw {not json", got)

	_, err = EncodeWebhookBody(nil)
	assert.ErrorIs(t, err, ErrUnsupportedWebhookBody)

	_, err = EncodeWebhookBody(JSONWebhookBody{Data: make(chan int)})
	assert.Error(t, err)
}

func TestEncodeWebhookDelay(t *testing.T) {
	tests := []struct {
		name  string
		delay Delay
		want  map[string]any
	}{
		{
			name:  "fixed",
			delay: FixedDelay{Milliseconds: 100},
			want:  map[string]any{"type": "fixed", "milliseconds": float64(100)},
		},
		{
			name:  "lognormal",
			delay: LogNormalDelay{Median: 90, Sigma: 0.1},
			want:  map[string]any{"type": "lognormal", "median": float64(90), "sigma": 0.1},
		},
		{
			name:  "uniform",
			delay: UniformDelay{Lower: 10, Upper: 20},
			want:  map[string]any{"type": "uniform", "lower": float64(10), "upper": float64(20)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EncodeWebhookDelay(tt.delay)
			require.NoError(t, err)
			assert.Equal(t, tt.want, toJSONMap(t, got))
		})
	}
}

func TestEncodeWebhookDelay_ChunkedDribbleUnsupported(t *testing.T) {
	got, err := EncodeWebhookDelay(ChunkedDribbleDelay{NumberOfChunks: 2, TotalDuration: 10})
	assert.Nil(t, got)
	assert.True(t, errors.Is(err, ErrUnsupportedDelay))

	_, err = EncodeWebhookDelay(nil)
	assert.ErrorIs(t, err, ErrUnsupportedDelay)
}
