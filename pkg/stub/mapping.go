package stub

import (
	"fmt"
	"maps"
)

// Mapping is the body posted to /__admin/mappings.
type Mapping struct {
	ID                    string             `json:"id,omitempty"`
	Name                  string             `json:"name,omitempty"`
	Request               RequestPattern     `json:"request"`
	Response              ResponseDefinition `json:"response"`
	Priority              *int               `json:"priority,omitempty"`
	ScenarioName          string             `json:"scenarioName,omitempty"`
	RequiredScenarioState string             `json:"requiredScenarioState,omitempty"`
	NewScenarioState      string             `json:"newScenarioState,omitempty"`
	PostServeActions      []PostServeAction  `json:"postServeActions,omitempty"`
	Metadata              map[string]any     `json:"metadata,omitempty"`
	Persistent            bool               `json:"persistent,omitempty"`
}

// StubMapping is a mapping as stored by the server. The server owns it;
// ID is what DeleteMapping and GetMapping take.
type StubMapping struct {
	Mapping
	UUID string `json:"uuid,omitempty"`
}

// BuildMapping assembles the full mapping for a registration.
//
// Priority, scenario, webhook and metadata are only set when present. A fault
// (Response.Fault, else Features.Fault) replaces the response with exactly
// {"fault": ...}. The only error comes from encoding the webhook.
func BuildMapping(req Request, resp Response, f *Features) (*Mapping, error) {
	if f == nil {
		f = &Features{}
	}

	m := &Mapping{
		Name:     f.Name,
		Request:  BuildRequest(req, f),
		Response: BuildResponse(resp, f),
		Priority: f.Priority,
	}

	if s := f.Scenario; s != nil {
		m.ScenarioName = s.Name
		m.RequiredScenarioState = s.RequiredState
		if m.RequiredScenarioState == "" {
			m.RequiredScenarioState = ScenarioStarted
		}
		m.NewScenarioState = s.NewState
	}

	if f.Webhook != nil {
		action, err := buildWebhookAction(f.Webhook)
		if err != nil {
			return nil, fmt.Errorf("webhook: %w", err)
		}
		m.PostServeActions = []PostServeAction{action}
	}

	if len(req.Metadata) > 0 || len(f.Metadata) > 0 {
		m.Metadata = make(map[string]any, len(req.Metadata)+len(f.Metadata))
		maps.Copy(m.Metadata, req.Metadata)
		maps.Copy(m.Metadata, f.Metadata)
	}

	fault := resp.Fault
	if fault == "" {
		fault = f.Fault
	}
	if fault != "" {
		m.Response = ResponseDefinition{Fault: fault}
	}
	return m, nil
}
