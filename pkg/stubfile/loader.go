// Package stubfile loads stub definitions from YAML or JSON files.
//
// A file holds a single stub, a list of stubs, or a document with shared
// defaults:
//
//	defaults:
//	  endpointMatch: urlPath
//	stubs:
//	  - name: echo
//	    request: {method: POST, endpoint: /echo, body: {a: 1}}
//	    response: {status: 200, body: {b: 2}}
//	    features:
//	      priority: 1
//	      delay: {type: uniform, lower: 10, upper: 50}
//
// Every file is validated against an embedded JSON Schema before decoding.
package stubfile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/getmockd/captain/pkg/stub"
)

// ErrNoMatch is returned when a path or glob matches no file.
var ErrNoMatch = errors.New("no stub files matched")

// Stub is one registration read from a file. Features already include the
// file's defaults.
type Stub struct {
	Name     string
	Request  stub.Request
	Response stub.Response
	Features *stub.Features
}

// Document is the decoded content of one stub file.
type Document struct {
	// Path is the file the document was read from; empty for Parse.
	Path string
	// Defaults are the file-level features, nil when the file has none.
	Defaults *stub.Features
	Stubs    []Stub
}

// Registrar is the subset of the admin client Register needs.
type Registrar interface {
	Register(ctx context.Context, req stub.Request, resp stub.Response, f *stub.Features) (*stub.StubMapping, error)
}

// Parse validates and decodes a stub file. YAML and JSON are both accepted.
func Parse(data []byte) (*Document, error) {
	raw, err := normalize(data)
	if err != nil {
		return nil, err
	}
	if err := validate(raw); err != nil {
		return nil, err
	}

	doc, err := decode(raw)
	if err != nil {
		return nil, err
	}
	return doc.build()
}

// LoadFile reads and parses one stub file.
func LoadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	doc.Path = path
	return doc, nil
}

// LoadFiles expands every pattern (doublestar syntax, ** allowed) and loads
// the matching files in sorted order. A file matched by several patterns is
// loaded once. A pattern that matches nothing is an error.
func LoadFiles(patterns ...string) ([]*Document, error) {
	paths, err := Expand(patterns...)
	if err != nil {
		return nil, err
	}
	docs := make([]*Document, 0, len(paths))
	for _, p := range paths {
		doc, err := LoadFile(p)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// Expand resolves patterns to a sorted, de-duplicated list of file paths.
func Expand(patterns ...string) ([]string, error) {
	var paths []string
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("expanding glob pattern %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("%q: %w", pattern, ErrNoMatch)
		}
		paths = append(paths, matches...)
	}
	slices.Sort(paths)
	return slices.Compact(paths), nil
}

// Register registers every stub of docs in order and returns the created
// mappings. It stops at the first failure.
func Register(ctx context.Context, r Registrar, docs ...*Document) ([]*stub.StubMapping, error) {
	var created []*stub.StubMapping
	for _, doc := range docs {
		for i, s := range doc.Stubs {
			m, err := r.Register(ctx, s.Request, s.Response, s.Features)
			if err != nil {
				return created, fmt.Errorf("%s: stub %d (%s): %w", doc.label(), i, s.Name, err)
			}
			created = append(created, m)
		}
	}
	return created, nil
}

func (d *Document) label() string {
	if d.Path == "" {
		return "<input>"
	}
	return d.Path
}

// normalize parses YAML (a superset of JSON) and converts the result to the
// generic form encoding/json produces, which the schema validator expects.
func normalize(data []byte) (any, error) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	if v == nil {
		return nil, errors.New("parse: empty stub file")
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	// numbers stay json.Number so large integers in bodies survive intact
	d := json.NewDecoder(bytes.NewReader(b))
	d.UseNumber()
	var out any
	if err := d.Decode(&out); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	return out, nil
}

// decode picks the file shape: list, {stubs: ...} document, or single stub.
func decode(raw any) (*document, error) {
	b, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	dec := func(v any) error {
		d := json.NewDecoder(bytes.NewReader(b))
		d.DisallowUnknownFields()
		d.UseNumber()
		return d.Decode(v)
	}

	var doc document
	switch r := raw.(type) {
	case []any:
		err = dec(&doc.Stubs)
	case map[string]any:
		if _, ok := r["stubs"]; ok {
			err = dec(&doc)
		} else {
			var s stubSpec
			err = dec(&s)
			doc.Stubs = []stubSpec{s}
		}
	default:
		err = fmt.Errorf("unexpected top-level %T", raw)
	}
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return &doc, nil
}

func (d *document) build() (*Document, error) {
	defaults, err := d.Defaults.toFeatures()
	if err != nil {
		return nil, fmt.Errorf("defaults: %w", err)
	}

	out := &Document{Defaults: defaults, Stubs: make([]Stub, 0, len(d.Stubs))}
	for i, s := range d.Stubs {
		st, err := s.build(defaults)
		if err != nil {
			return nil, fmt.Errorf("stub %d: %w", i, err)
		}
		out.Stubs = append(out.Stubs, st)
	}
	return out, nil
}

func (s stubSpec) build(defaults *stub.Features) (Stub, error) {
	req, err := s.Request.toRequest()
	if err != nil {
		return Stub{}, fmt.Errorf("request: %w", err)
	}
	resp, err := s.Response.toResponse()
	if err != nil {
		return Stub{}, fmt.Errorf("response: %w", err)
	}
	f, err := s.Features.toFeatures()
	if err != nil {
		return Stub{}, fmt.Errorf("features: %w", err)
	}

	merged := stub.MergeFeatures(defaults, f)
	if merged.Name == "" {
		merged.Name = s.Name
	}
	return Stub{
		Name:     merged.Name,
		Request:  req,
		Response: resp,
		Features: merged,
	}, nil
}
