package stubfile

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/captain/pkg/stub"
)

const documentYAML = `
defaults:
  endpointMatch: urlPath
  headerMatch:
    X-Trace: matches
stubs:
  - name: echo
    request:
      method: post
      endpoint: /echo
      body: {a: 1}
      headers: {X-Trace: "[a-z]+"}
    response:
      status: 200
      body: {b: 2}
    features:
      priority: 1
      delay: {type: uniform, lower: 10, upper: 50}
      scenario: {name: flow, newState: Next}
      webhook:
        method: POST
        url: http://hook
        body: {type: json, data: {x: 1}}
        delay: {type: fixed, milliseconds: 5}
  - request: {endpoint: /plain}
    response: {status: 503, fault: empty_response}
    features:
      endpointMatch: url
`

func TestParse_Document(t *testing.T) {
	doc, err := Parse([]byte(documentYAML))
	require.NoError(t, err)

	require.NotNil(t, doc.Defaults)
	assert.Equal(t, stub.EndpointURLPath, doc.Defaults.EndpointMatch)
	require.Len(t, doc.Stubs, 2)

	echo := doc.Stubs[0]
	assert.Equal(t, "echo", echo.Name)
	assert.Equal(t, stub.MethodPost, echo.Request.Method)
	assert.Equal(t, "/echo", echo.Request.Endpoint)
	assert.Equal(t, map[string]any{"a": json.Number("1")}, echo.Request.Body)
	assert.Equal(t, 200, echo.Response.Status)

	f := echo.Features
	assert.Equal(t, "echo", f.Name)
	assert.Equal(t, stub.EndpointURLPath, f.EndpointMatch, "inherited from defaults")
	assert.Equal(t, map[string]stub.MatchStrategy{"X-Trace": stub.MatchMatches}, f.HeaderMatch)
	require.NotNil(t, f.Priority)
	assert.Equal(t, 1, *f.Priority)
	assert.Equal(t, stub.UniformDelay{Lower: 10, Upper: 50}, f.ResponseDelay)
	assert.Equal(t, &stub.Scenario{Name: "flow", NewState: "Next"}, f.Scenario)
	require.NotNil(t, f.Webhook)
	assert.Equal(t, stub.JSONWebhookBody{Data: map[string]any{"x": json.Number("1")}}, f.Webhook.Body)
	assert.Equal(t, stub.FixedDelay{Milliseconds: 5}, f.Webhook.Delay)

	plain := doc.Stubs[1]
	assert.Equal(t, stub.MethodAny, plain.Request.Method)
	assert.Equal(t, stub.FaultEmptyResponse, plain.Response.Fault)
	assert.Equal(t, stub.EndpointURL, plain.Features.EndpointMatch, "stub features override defaults")
}

func TestParse_BuildsMapping(t *testing.T) {
	doc, err := Parse([]byte(documentYAML))
	require.NoError(t, err)

	s := doc.Stubs[0]
	m, err := stub.BuildMapping(s.Request, s.Response, s.Features)
	require.NoError(t, err)
	assert.Equal(t, "/echo", m.Request.URLPath)
	assert.Equal(t, "Started", m.RequiredScenarioState)
	require.Len(t, m.PostServeActions, 1)
	assert.Equal(t, `{"x":1}`, m.PostServeActions[0].Parameters.Body)
}

func TestParse_KeepsLargeIntegers(t *testing.T) {
	doc, err := Parse([]byte("request: {endpoint: /big, body: {id: 9007199254740993}}\nresponse: {status: 200, body: {id: 9007199254740993, ratio: 0.5}}\n"))
	require.NoError(t, err)

	s := doc.Stubs[0]
	m, err := stub.BuildMapping(s.Request, s.Response, s.Features)
	require.NoError(t, err)
	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"jsonBody":{"id":9007199254740993,"ratio":0.5}`)
	assert.Contains(t, string(data), `"equalToJson":{"id":9007199254740993}`)
}

func TestParse_Shapes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{"single yaml", "request: {endpoint: /a}\nresponse: {status: 200}\n", 1},
		{"list yaml", "- request: {endpoint: /a}\n  response: {status: 200}\n- request: {endpoint: /b}\n  response: {status: 404}\n", 2},
		{"single json", `{"request": {"method": "GET", "endpoint": "/a"}, "response": {"status": 200, "body": "hi"}}`, 1},
		{"document json", `{"stubs": [{"request": {"endpoint": "/a"}, "response": {"status": 200}}]}`, 1},
		{"empty document", "stubs: []\n", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse([]byte(tt.input))
			require.NoError(t, err)
			assert.Len(t, doc.Stubs, tt.want)
			assert.Nil(t, doc.Defaults)
		})
	}
}

func TestParse_SchemaErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"missing response", "request: {endpoint: /a}\n"},
		{"status out of range", "request: {endpoint: /a}\nresponse: {status: 42}\n"},
		{"unknown field", "request: {endpoint: /a}\nresponse: {status: 200}\nextra: true\n"},
		{"unknown delay type", "request: {endpoint: /a}\nresponse: {status: 200, delay: {type: random}}\n"},
		{"fixed delay without milliseconds", "request: {endpoint: /a}\nresponse: {status: 200, delay: {type: fixed}}\n"},
		{"bad body match", "request: {endpoint: /a}\nresponse: {status: 200}\nfeatures: {bodyMatch: fuzzy}\n"},
		{"scalar", "42\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input))
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.NotEmpty(t, ve.Problems)
			assert.Contains(t, err.Error(), "invalid stub file")
		})
	}
}

func TestParse_DecodeErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"unknown method", "request: {method: FETCH, endpoint: /a}\nresponse: {status: 200}\n", stub.ErrUnknownValue},
		{"unknown fault", "request: {endpoint: /a}\nresponse: {status: 200, fault: BOOM}\n", stub.ErrUnknownValue},
		{"unknown body type", "request: {endpoint: /a}\nresponse: {status: 200}\nfeatures: {responseBodyType: xml}\n", stub.ErrUnknownValue},
		{
			"dribble webhook delay",
			"request: {endpoint: /a}\nresponse: {status: 200}\nfeatures:\n  webhook: {method: POST, url: http://h, delay: {type: chunkedDribble, numberOfChunks: 2, totalDuration: 10}}\n",
			stub.ErrUnsupportedDelay,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input))
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestParse_Empty(t *testing.T) {
	_, err := Parse([]byte("   \n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty stub file")

	_, err = Parse([]byte("request: [unclosed\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse")
}

func TestLoadFiles_Globs(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "a.yaml"), "request: {endpoint: /a}\nresponse: {status: 200}\n")
	write(t, filepath.Join(dir, "nested", "deep", "b.json"), `[{"request": {"endpoint": "/b"}, "response": {"status": 201}}]`)
	write(t, filepath.Join(dir, "nested", "c.yml"), "stubs:\n  - request: {endpoint: /c}\n    response: {status: 202}\n")

	docs, err := LoadFiles(
		filepath.Join(dir, "**", "*.{yaml,yml,json}"),
		filepath.Join(dir, "a.yaml"),
	)
	require.NoError(t, err)
	require.Len(t, docs, 3, "a.yaml is matched twice but loaded once")

	var endpoints []string
	for _, d := range docs {
		assert.NotEmpty(t, d.Path)
		for _, s := range d.Stubs {
			endpoints = append(endpoints, s.Request.Endpoint)
		}
	}
	assert.Equal(t, []string{"/a", "/b", "/c"}, endpoints)
}

func TestLoadFiles_NoMatch(t *testing.T) {
	_, err := LoadFiles(filepath.Join(t.TempDir(), "*.yaml"))
	require.ErrorIs(t, err, ErrNoMatch)
}

func TestLoadFile_ErrorNamesPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	write(t, path, "request: {endpoint: /a}\n")

	_, err := LoadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), path)
}

type fakeRegistrar struct {
	calls  []stub.Request
	failAt int
}

func (f *fakeRegistrar) Register(_ context.Context, req stub.Request, _ stub.Response, _ *stub.Features) (*stub.StubMapping, error) {
	f.calls = append(f.calls, req)
	if len(f.calls) == f.failAt {
		return nil, errors.New("boom")
	}
	return &stub.StubMapping{Mapping: stub.Mapping{ID: req.Endpoint}}, nil
}

func TestRegister(t *testing.T) {
	doc, err := Parse([]byte(documentYAML))
	require.NoError(t, err)

	r := &fakeRegistrar{}
	created, err := Register(context.Background(), r, doc)
	require.NoError(t, err)
	require.Len(t, created, 2)
	assert.Equal(t, "/echo", created[0].ID)

	r = &fakeRegistrar{failAt: 2}
	created, err = Register(context.Background(), r, doc)
	require.Error(t, err)
	assert.Len(t, created, 1)
	assert.Contains(t, err.Error(), "<input>: stub 1")
}

func TestSchemaCompiles(t *testing.T) {
	s, err := compileSchema()
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Contains(t, Schema(), "2020-12")
}

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}
