package captaintest

import (
	"context"
	"os"
	"testing"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/getmockd/captain/pkg/admin/wiremockclient"
)

// DefaultImage is the WireMock image StartWireMock runs.
const DefaultImage = "wiremock/wiremock:3.9.2"

// EnvImage overrides DefaultImage.
const EnvImage = "CAPTAIN_WIREMOCK_IMAGE"

const wiremockPort = "8080/tcp"

// StartWireMock starts a WireMock container for the duration of the test and
// returns a client for its admin API. The container is removed at cleanup.
// The test is skipped when no container provider is available.
func StartWireMock(ctx context.Context, t *testing.T, opts ...wiremockclient.Option) *wiremockclient.Client {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)

	image := os.Getenv(EnvImage)
	if image == "" {
		image = DefaultImage
	}

	req := testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        image,
			ExposedPorts: []string{wiremockPort},
			Cmd:          []string{"--disable-banner"},
			WaitingFor: wait.ForHTTP("/__admin/health").
				WithPort(wiremockPort).
				WithStatusCodeMatcher(func(status int) bool { return status == 200 }),
		},
		Started: true,
	}

	container, err := testcontainers.GenericContainer(ctx, req)
	testcontainers.CleanupContainer(t, container)
	if err != nil {
		t.Fatalf("failed to start wiremock: %v", err)
	}

	baseURL, err := container.PortEndpoint(ctx, wiremockPort, "http")
	if err != nil {
		t.Fatalf("failed to resolve wiremock endpoint: %v", err)
	}
	return wiremockclient.New(baseURL, opts...)
}
