package e2e_test

import (
	"context"
	"io"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/getmockd/captain/pkg/admin/wiremockclient"
	"github.com/getmockd/captain/pkg/captaintest"
	"github.com/getmockd/captain/pkg/logging"
)

// startWireMock skips unless CAPTAIN_E2E=1 and the run is not -short.
func startWireMock(t *testing.T) *wiremockclient.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping e2e test in short mode")
	}
	if os.Getenv("CAPTAIN_E2E") != "1" {
		t.Skip("set CAPTAIN_E2E=1 to run e2e tests")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	// CAPTAIN_E2E_LOG=debug traces every admin call
	logger := logging.Nop()
	if level := os.Getenv("CAPTAIN_E2E_LOG"); level != "" {
		logger = logging.FromStrings(level, "text", os.Stderr)
	}
	return captaintest.StartWireMock(ctx, t, wiremockclient.WithLogger(logger))
}

type result struct {
	status int
	body   string
	header http.Header
}

// hit calls the stub server and returns the response.
func hit(t *testing.T, c *wiremockclient.Client, method, path string, body io.Reader) result {
	t.Helper()
	req, err := http.NewRequestWithContext(t.Context(), method, c.BaseURL()+path, body)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return result{status: resp.StatusCode, body: string(data), header: resp.Header}
}
