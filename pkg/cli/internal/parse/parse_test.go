package parse

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPair(t *testing.T) {
	tests := []struct {
		in        string
		wantName  string
		wantValue string
		wantErr   bool
	}{
		{"X-Tenant=t1", "X-Tenant", "t1", false},
		{" spaced =v", "spaced", "v", false},
		{"expr=a=b", "expr", "a=b", false},
		{"empty=", "empty", "", false},
		{"novalue", "", "", true},
		{"=v", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			name, value, err := Pair(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "Name=Value")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, name)
			assert.Equal(t, tt.wantValue, value)
		})
	}
}

func TestPairs(t *testing.T) {
	got, err := Pairs("--header", nil)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = Pairs("--header", []string{"A=1", "B=2", "A=3"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"A": "3", "B": "2"}, got)

	_, err = Pairs("--header", []string{"A=1", "broken"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--header:")
}

func TestStringPairs(t *testing.T) {
	got, err := StringPairs("--admin-header", []string{"Authorization=Bearer x"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"Authorization": "Bearer x"}, got)

	_, err = StringPairs("--admin-header", []string{"nope"})
	assert.ErrorContains(t, err, "--admin-header:")
}

func TestJSON(t *testing.T) {
	v, err := JSON(`{"id": 9007199254740993, "ok": true}`)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"id": json.Number("9007199254740993"), "ok": true}, v)

	_, err = JSON(`{"a": 1} {"b": 2}`)
	assert.Error(t, err)
	_, err = JSON(`{nope`)
	assert.Error(t, err)
}
