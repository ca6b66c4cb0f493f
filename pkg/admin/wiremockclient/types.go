package wiremockclient

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/getmockd/captain/pkg/requestlog"
	"github.com/getmockd/captain/pkg/stub"
)

// ErrNotFound is matched by an *APIError with status 404.
var ErrNotFound = errors.New("not found")

// APIError is returned for every non-2xx admin API response.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	// Message is taken from WireMock's {"errors":[{"title": ...}]} body when present.
	Message string
	Body    string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, msg)
}

// Is lets errors.Is(err, ErrNotFound) detect 404 responses.
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// Scenario is the server's view of a scenario state machine.
type Scenario struct {
	ID             string              `json:"id"`
	Name           string              `json:"name"`
	State          string              `json:"state"`
	PossibleStates []string            `json:"possibleStates,omitempty"`
	Mappings       []*stub.StubMapping `json:"mappings,omitempty"`
}

// Metadata match types accepted by the find/remove-by-metadata endpoints.
const (
	MetadataEqualToJSON     = string(stub.MatchEqualToJSON)
	MetadataMatchesJSONPath = string(stub.MatchMatchesJSONPath)
)

// Response envelopes.
type (
	mappingsEnvelope struct {
		Mappings []stub.StubMapping `json:"mappings"`
	}
	requestsEnvelope struct {
		Requests []requestlog.ServeEvent `json:"requests"`
	}
	unmatchedEnvelope struct {
		Requests []requestlog.LoggedRequest `json:"requests"`
	}
	scenariosEnvelope struct {
		Scenarios []Scenario `json:"scenarios"`
	}
	wiremockErrors struct {
		Errors []struct {
			Code   int    `json:"code"`
			Title  string `json:"title"`
			Detail string `json:"detail,omitempty"`
		} `json:"errors"`
	}
)
