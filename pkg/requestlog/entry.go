package requestlog

import (
	"encoding/json"
	"time"
)

// LoggedRequest is a request as recorded by WireMock.
type LoggedRequest struct {
	ID          string         `json:"id,omitempty"`
	URL         string         `json:"url"`
	AbsoluteURL string         `json:"absoluteUrl,omitempty"`
	Method      string         `json:"method"`
	ClientIP    string         `json:"clientIp,omitempty"`
	Headers     map[string]any `json:"headers,omitempty"`
	Cookies     map[string]any `json:"cookies,omitempty"`
	Body        string         `json:"body,omitempty"`
	// BodyAsBase64 is set for every request; Body may be lossy for binary payloads.
	BodyAsBase64        string `json:"bodyAsBase64,omitempty"`
	BrowserProxyRequest bool   `json:"browserProxyRequest,omitempty"`
	// LoggedDate is milliseconds since the epoch.
	LoggedDate       int64  `json:"loggedDate,omitempty"`
	LoggedDateString string `json:"loggedDateString,omitempty"`
}

// Time returns LoggedDate as a time.Time. Zero when the server sent no date.
func (r LoggedRequest) Time() time.Time {
	if r.LoggedDate == 0 {
		return time.Time{}
	}
	return time.UnixMilli(r.LoggedDate)
}

// LoggedResponse is the response WireMock actually sent.
type LoggedResponse struct {
	Status  int            `json:"status"`
	Headers map[string]any `json:"headers,omitempty"`
	Body    string         `json:"body,omitempty"`
	Fault   string         `json:"fault,omitempty"`
}

// ServeEvent is one entry of the request journal.
// ResponseDefinition and StubMapping are kept raw; they echo what the
// matching stub declared.
type ServeEvent struct {
	ID                 string          `json:"id"`
	Request            LoggedRequest   `json:"request"`
	ResponseDefinition json.RawMessage `json:"responseDefinition,omitempty"`
	Response           *LoggedResponse `json:"response,omitempty"`
	WasMatched         bool            `json:"wasMatched"`
	StubMapping        json.RawMessage `json:"stubMapping,omitempty"`
	Timing             map[string]any  `json:"timing,omitempty"`
}

// Status returns the served status code, or 0 if the event has no response yet.
func (e ServeEvent) Status() int {
	if e.Response == nil {
		return 0
	}
	return e.Response.Status
}
