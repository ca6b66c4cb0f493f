package stub

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

// toJSONMap marshals v and decodes it back into a generic map, so tests can
// compare the exact wire shape.
func toJSONMap(t *testing.T, v any) map[string]any {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
