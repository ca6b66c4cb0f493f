package requestlog

import (
	"encoding/json"
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/ohler55/ojg/jp"
)

// Filter defines criteria for narrowing a request journal.
// All set criteria must hold. The zero Filter keeps everything.
type Filter struct {
	// Method keeps events whose request method equals Method exactly.
	Method string

	// URL keeps events whose request url (path plus query) equals URL exactly.
	URL string

	// Matched filters by whether a stub served the request.
	Matched *bool

	// StatusCode keeps events served with this status.
	StatusCode int

	// JSONPath keeps events whose JSON form has at least one value at this path,
	// e.g. "$.request.headers.Authorization".
	JSONPath string

	// Where is an expr-lang boolean expression evaluated per event. Variables:
	// id, method, url, body, headers, matched, status.
	Where string

	// Limit is the maximum number of entries to return (0 = unlimited).
	Limit int
}

// ByMethodURL returns the events whose request method and url equal method and url.
func ByMethodURL(events []ServeEvent, method, url string) []ServeEvent {
	out := make([]ServeEvent, 0, len(events))
	for _, e := range events {
		if e.Request.Method == method && e.Request.URL == url {
			out = append(out, e)
		}
	}
	return out
}

// Apply returns the events matching f, preserving order.
// Errors come only from invalid JSONPath or Where expressions.
func Apply(events []ServeEvent, f *Filter) ([]ServeEvent, error) {
	if f == nil {
		return events, nil
	}

	var path jp.Expr
	if f.JSONPath != "" {
		p, err := jp.ParseString(f.JSONPath)
		if err != nil {
			return nil, fmt.Errorf("invalid jsonpath %q: %w", f.JSONPath, err)
		}
		path = p
	}

	var program *vm.Program
	if f.Where != "" {
		p, err := compileWhere(f.Where)
		if err != nil {
			return nil, err
		}
		program = p
	}

	out := make([]ServeEvent, 0, len(events))
	for _, e := range events {
		if f.Limit > 0 && len(out) >= f.Limit {
			break
		}
		if f.Method != "" && e.Request.Method != f.Method {
			continue
		}
		if f.URL != "" && e.Request.URL != f.URL {
			continue
		}
		if f.Matched != nil && e.WasMatched != *f.Matched {
			continue
		}
		if f.StatusCode != 0 && e.Status() != f.StatusCode {
			continue
		}
		if path != nil {
			ok, err := hasJSONPath(path, e)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
		}
		if program != nil {
			ok, err := runWhere(program, e)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
		}
		out = append(out, e)
	}
	return out, nil
}

// MatchJSONPath is shorthand for Apply with only a JSONPath filter.
func MatchJSONPath(events []ServeEvent, path string) ([]ServeEvent, error) {
	return Apply(events, &Filter{JSONPath: path})
}

// MatchExpr is shorthand for Apply with only a Where expression.
func MatchExpr(events []ServeEvent, expression string) ([]ServeEvent, error) {
	return Apply(events, &Filter{Where: expression})
}

// hasJSONPath evaluates path against the generic JSON form of e.
func hasJSONPath(path jp.Expr, e ServeEvent) (bool, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return false, fmt.Errorf("encode serve event %s: %w", e.ID, err)
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return false, fmt.Errorf("decode serve event %s: %w", e.ID, err)
	}
	return len(path.Get(doc)) > 0, nil
}

func whereEnv(e ServeEvent) map[string]any {
	headers := e.Request.Headers
	if headers == nil {
		headers = map[string]any{}
	}
	return map[string]any{
		"id":      e.ID,
		"method":  e.Request.Method,
		"url":     e.Request.URL,
		"body":    e.Request.Body,
		"headers": headers,
		"matched": e.WasMatched,
		"status":  e.Status(),
	}
}

func compileWhere(expression string) (*vm.Program, error) {
	program, err := expr.Compile(expression, expr.Env(whereEnv(ServeEvent{})), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile %q: %w", expression, err)
	}
	return program, nil
}

func runWhere(program *vm.Program, e ServeEvent) (bool, error) {
	result, err := expr.Run(program, whereEnv(e))
	if err != nil {
		return false, fmt.Errorf("eval for serve event %s: %w", e.ID, err)
	}
	ok, _ := result.(bool)
	return ok, nil
}
