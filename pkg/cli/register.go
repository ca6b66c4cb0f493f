package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/getmockd/captain/pkg/cli/internal/parse"
	"github.com/getmockd/captain/pkg/stub"
)

type registerFlags struct {
	name       string
	method     string
	url        string
	urlMatch   string
	matchBody  string
	bodyMatch  string
	status     int
	body       string
	bodyType   string
	headers    []string
	reqHeaders []string
	query      []string
	priority   int
	hasPrio    bool
	fault      string
	delay      string
	scenario   string
	required   string
	newState   string
	metadata   []string
	transform  []string
}

func newRegisterCmd(a *app) *cobra.Command {
	var f registerFlags

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a stub mapping",
		Long: `Register a stub mapping from flags.

Without --url on an interactive terminal, a form asks for the method, URL,
status and body.`,
		Example: `  captain register --method POST --url /orders --status 201 --body '{"id": 1}'
  captain register --url /slow --delay uniform:100-500
  captain register --url /flaky --fault CONNECTION_RESET_BY_PEER
  captain register --url-match urlPathPattern --url '/users/[0-9]+' --priority 1`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("url") {
				if a.io.Interactive == nil || !a.io.Interactive() {
					return errors.New("--url is required")
				}
				if err := runRegisterForm(&f); err != nil {
					return err
				}
			}

			f.hasPrio = cmd.Flags().Changed("priority")
			req, resp, features, err := f.build()
			if err != nil {
				return err
			}

			c, err := a.client()
			if err != nil {
				return err
			}
			created, err := c.Register(cmd.Context(), req, resp, features)
			if err != nil {
				return err
			}
			return a.printResult(created, func(w io.Writer) {
				fmt.Fprintf(w, "Registered mapping %s (%s %s)\n", created.ID, req.Method, req.Endpoint)
			})
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.name, "name", "", "Mapping display name")
	fl.StringVar(&f.method, "method", "GET", "HTTP method to match (ANY matches every method)")
	fl.StringVar(&f.url, "url", "", "Endpoint to match")
	fl.StringVar(&f.urlMatch, "url-match", "", "How the endpoint is matched: url, urlPath, urlPathPattern, urlPattern")
	fl.StringVar(&f.matchBody, "match-body", "", "Request body to match (JSON for equalToJson)")
	fl.StringVar(&f.bodyMatch, "body-match", "", "Request body matcher (default equalToJson)")
	fl.StringArrayVar(&f.reqHeaders, "match-header", nil, "Request header to match, as Name=Value (repeatable)")
	fl.StringArrayVar(&f.query, "match-query", nil, "Query parameter to match, as Name=Value (repeatable)")
	fl.IntVar(&f.status, "status", 200, "Response status code")
	fl.StringVar(&f.body, "body", "", "Response body")
	fl.StringVar(&f.bodyType, "body-type", "", "Response body type: jsonBody, body, base64Body (default jsonBody)")
	fl.StringArrayVar(&f.headers, "header", nil, "Response header, as Name=Value (repeatable)")
	fl.IntVar(&f.priority, "priority", 0, "Mapping priority, lower wins (server default when not given)")
	fl.StringVar(&f.fault, "fault", "", "Serve a fault instead of a response")
	fl.StringVar(&f.delay, "delay", "", "Response delay: fixed:MS, uniform:LOW-HIGH, lognormal:MEDIAN,SIGMA, dribble:CHUNKS,TOTAL")
	fl.StringVar(&f.scenario, "scenario", "", "Scenario name")
	fl.StringVar(&f.required, "required-state", "", "Scenario state required to match (default Started)")
	fl.StringVar(&f.newState, "new-state", "", "Scenario state after matching")
	fl.StringArrayVar(&f.metadata, "metadata", nil, "Mapping metadata, as key=value (repeatable)")
	fl.StringArrayVar(&f.transform, "transformer", nil, "Response transformer, e.g. response-template (repeatable)")
	return cmd
}

func runRegisterForm(f *registerFlags) error {
	statusStr := strconv.Itoa(f.status)
	options := make([]huh.Option[string], 0, len(stub.Methods))
	for _, m := range stub.Methods {
		options = append(options, huh.NewOption(string(m), string(m)))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("What URL should the stub match?").
				Placeholder("/api/v1/users").
				Value(&f.url).
				Validate(func(s string) error {
					if s == "" {
						return errors.New("url is required")
					}
					return nil
				}),
			huh.NewSelect[string]().
				Title("Which HTTP method?").
				Options(options...).
				Value(&f.method),
			huh.NewInput().
				Title("What status code should it return?").
				Value(&statusStr).
				Validate(func(s string) error {
					_, err := strconv.Atoi(s)
					return err
				}),
			huh.NewText().
				Title("Response body (JSON)").
				Placeholder(`{"status": "ok"}`).
				Value(&f.body),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}
	status, err := strconv.Atoi(statusStr)
	if err != nil {
		return err
	}
	f.status = status
	return nil
}

// build converts the flags into a registration.
func (f *registerFlags) build() (stub.Request, stub.Response, *stub.Features, error) {
	var (
		req      stub.Request
		resp     stub.Response
		features stub.Features
		err      error
	)

	if req.Method, err = stub.ParseMethod(f.method); err != nil {
		return req, resp, nil, err
	}
	req.Endpoint = f.url
	features.Name = f.name

	if f.urlMatch != "" {
		if features.EndpointMatch, err = stub.ParseEndpointMatch(f.urlMatch); err != nil {
			return req, resp, nil, err
		}
	}
	if f.bodyMatch != "" {
		if features.BodyMatch, err = stub.ParseMatchStrategy(f.bodyMatch); err != nil {
			return req, resp, nil, err
		}
	}
	if f.matchBody != "" {
		req.Body = f.matchBody
		if features.BodyMatch == "" || features.BodyMatch == stub.MatchEqualToJSON {
			v, err := parse.JSON(f.matchBody)
			if err != nil {
				return req, resp, nil, fmt.Errorf("--match-body is not valid JSON: %w", err)
			}
			req.Body = v
		}
	}
	if req.Headers, err = parse.Pairs("--match-header", f.reqHeaders); err != nil {
		return req, resp, nil, err
	}
	if req.QueryParameters, err = parse.Pairs("--match-query", f.query); err != nil {
		return req, resp, nil, err
	}
	if req.Metadata, err = parse.Pairs("--metadata", f.metadata); err != nil {
		return req, resp, nil, err
	}

	resp.Status = f.status
	if f.bodyType != "" {
		if features.ResponseBodyType, err = stub.ParseBodyType(f.bodyType); err != nil {
			return req, resp, nil, err
		}
	}
	if f.body != "" {
		resp.Body = f.body
		if features.ResponseBodyType == "" || features.ResponseBodyType == stub.BodyJSON {
			v, err := parse.JSON(f.body)
			if err != nil {
				return req, resp, nil, fmt.Errorf("--body is not valid JSON (use --body-type body for text): %w", err)
			}
			resp.Body = v
		}
	}
	if resp.Headers, err = parse.Pairs("--header", f.headers); err != nil {
		return req, resp, nil, err
	}
	if f.fault != "" {
		if resp.Fault, err = stub.ParseFault(f.fault); err != nil {
			return req, resp, nil, err
		}
	}
	if f.delay != "" {
		if resp.Delay, err = parseDelay(f.delay); err != nil {
			return req, resp, nil, err
		}
	}

	if f.hasPrio {
		features.Priority = stub.Ptr(f.priority)
	}
	if f.scenario != "" {
		features.Scenario = &stub.Scenario{Name: f.scenario, RequiredState: f.required, NewState: f.newState}
	} else if f.required != "" || f.newState != "" {
		return req, resp, nil, errors.New("--required-state and --new-state need --scenario")
	}
	for _, t := range f.transform {
		features.Transformers = append(features.Transformers, stub.Transformer(t))
	}
	return req, resp, &features, nil
}

// parseDelay parses the --delay forms fixed:MS, uniform:LOW-HIGH,
// lognormal:MEDIAN,SIGMA and dribble:CHUNKS,TOTAL. A bare number is fixed.
func parseDelay(s string) (stub.Delay, error) {
	kind, arg, ok := strings.Cut(s, ":")
	if !ok {
		kind, arg = "fixed", s
	}
	bad := func(err error) error {
		return fmt.Errorf("--delay %q: %w", s, err)
	}

	switch strings.ToLower(kind) {
	case "fixed":
		ms, err := strconv.Atoi(arg)
		if err != nil {
			return nil, bad(err)
		}
		return stub.FixedDelay{Milliseconds: ms}, nil
	case "uniform":
		lo, hi, ok := strings.Cut(arg, "-")
		if !ok {
			return nil, bad(errors.New("want LOW-HIGH"))
		}
		lower, err := strconv.Atoi(lo)
		if err != nil {
			return nil, bad(err)
		}
		upper, err := strconv.Atoi(hi)
		if err != nil {
			return nil, bad(err)
		}
		return stub.UniformDelay{Lower: lower, Upper: upper}, nil
	case "lognormal":
		m, sg, ok := strings.Cut(arg, ",")
		if !ok {
			return nil, bad(errors.New("want MEDIAN,SIGMA"))
		}
		median, err := strconv.ParseFloat(m, 64)
		if err != nil {
			return nil, bad(err)
		}
		sigma, err := strconv.ParseFloat(sg, 64)
		if err != nil {
			return nil, bad(err)
		}
		return stub.LogNormalDelay{Median: median, Sigma: sigma}, nil
	case "dribble":
		c, t, ok := strings.Cut(arg, ",")
		if !ok {
			return nil, bad(errors.New("want CHUNKS,TOTAL"))
		}
		chunks, err := strconv.Atoi(c)
		if err != nil {
			return nil, bad(err)
		}
		total, err := strconv.Atoi(t)
		if err != nil {
			return nil, bad(err)
		}
		return stub.ChunkedDribbleDelay{NumberOfChunks: chunks, TotalDuration: total}, nil
	default:
		return nil, bad(fmt.Errorf("unknown delay kind %q", kind))
	}
}
