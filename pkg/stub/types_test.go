package stub

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMethod(t *testing.T) {
	m, err := ParseMethod(" post ")
	require.NoError(t, err)
	assert.Equal(t, MethodPost, m)

	_, err = ParseMethod("FETCH")
	assert.ErrorIs(t, err, ErrUnknownValue)
}

func TestParseEnums(t *testing.T) {
	ms, err := ParseMatchStrategy("matchesJsonPath")
	require.NoError(t, err)
	assert.Equal(t, MatchMatchesJSONPath, ms)
	_, err = ParseMatchStrategy("equaltojson")
	assert.ErrorIs(t, err, ErrUnknownValue)

	em, err := ParseEndpointMatch("urlPathPattern")
	require.NoError(t, err)
	assert.Equal(t, EndpointURLPathPattern, em)
	_, err = ParseEndpointMatch("path")
	assert.ErrorIs(t, err, ErrUnknownValue)

	for in, want := range map[string]BodyType{"json": BodyJSON, "jsonBody": BodyJSON, "raw": BodyRaw, "body": BodyRaw, "base64": BodyBase64} {
		got, err := ParseBodyType(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err = ParseBodyType("xml")
	assert.ErrorIs(t, err, ErrUnknownValue)

	f, err := ParseFault("empty_response")
	require.NoError(t, err)
	assert.Equal(t, FaultEmptyResponse, f)
	_, err = ParseFault("TIMEOUT")
	assert.ErrorIs(t, err, ErrUnknownValue)
}
