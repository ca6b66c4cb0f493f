// Package parse provides string parsing utilities for CLI commands.
package parse

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Pair parses a "Name=Value" argument. The name is trimmed and must not be
// empty; the value is kept as given.
func Pair(s string) (name, value string, err error) {
	k, v, ok := strings.Cut(s, "=")
	if !ok || strings.TrimSpace(k) == "" {
		return "", "", fmt.Errorf("%q is not in Name=Value form", s)
	}
	return strings.TrimSpace(k), v, nil
}

// Pairs parses repeated Name=Value flag values into a map. Later values win.
// No values yields nil so optional matchers stay unset.
func Pairs(flag string, values []string) (map[string]any, error) {
	if len(values) == 0 {
		return nil, nil
	}
	out := make(map[string]any, len(values))
	for _, s := range values {
		k, v, err := Pair(s)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", flag, err)
		}
		out[k] = v
	}
	return out, nil
}

// StringPairs is Pairs for flags whose values stay strings, like admin headers.
func StringPairs(flag string, values []string) (map[string]string, error) {
	if len(values) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(values))
	for _, s := range values {
		k, v, err := Pair(s)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", flag, err)
		}
		out[k] = v
	}
	return out, nil
}

// JSON decodes a single JSON value from s. Numbers are kept as json.Number so
// integers beyond float64 precision are sent on unchanged.
func JSON(s string) (any, error) {
	d := json.NewDecoder(strings.NewReader(s))
	d.UseNumber()
	var v any
	if err := d.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := d.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("trailing data after JSON value")
	}
	return v, nil
}
