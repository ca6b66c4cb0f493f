package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/getmockd/captain/pkg/cli/internal/output"
	"github.com/getmockd/captain/pkg/requestlog"
)

func newRequestsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "requests",
		Aliases: []string{"req", "r"},
		Short:   "Query and clear the request journal",
	}
	cmd.AddCommand(newRequestsListCmd(a), newRequestsUnmatchedCmd(a), newRequestsClearCmd(a))
	return cmd
}

func newRequestsListCmd(a *app) *cobra.Command {
	var (
		f         requestlog.Filter
		matched   bool
		unmatched bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List journal entries",
		Long: `List the requests WireMock received, newest first, as the server returns them.

--method and --url match exactly (the url includes the query string).
--jsonpath keeps entries whose JSON form has a value at the path.
--where takes a boolean expression over id, method, url, body, headers,
matched and status.`,
		Example: `  captain requests list --method POST --url /orders
  captain requests list --unmatched
  captain requests list --jsonpath '$.request.headers.Authorization'
  captain requests list --where 'status >= 500 || !matched'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch {
			case matched && unmatched:
				return fmt.Errorf("--matched and --unmatched are mutually exclusive")
			case matched:
				f.Matched = &matched
			case unmatched:
				no := false
				f.Matched = &no
			}

			c, err := a.client()
			if err != nil {
				return err
			}
			events, err := c.GetAllRequests(cmd.Context())
			if err != nil {
				return err
			}
			events, err = requestlog.Apply(events, &f)
			if err != nil {
				return err
			}
			return a.printResult(events, func(w io.Writer) {
				printEvents(w, events)
			})
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.Method, "method", "", "Keep requests with this method")
	fl.StringVar(&f.URL, "url", "", "Keep requests with this exact url")
	fl.BoolVar(&matched, "matched", false, "Keep requests a stub served")
	fl.BoolVar(&unmatched, "unmatched", false, "Keep requests no stub matched")
	fl.IntVar(&f.StatusCode, "status", 0, "Keep requests served with this status")
	fl.StringVar(&f.JSONPath, "jsonpath", "", "Keep requests with a value at this JSONPath")
	fl.StringVar(&f.Where, "where", "", "Keep requests for which this expression is true")
	fl.IntVarP(&f.Limit, "limit", "n", 0, "Maximum number of entries (0 = all)")
	return cmd
}

func newRequestsUnmatchedCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "unmatched",
		Short: "List requests no stub matched",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			reqs, err := c.GetUnmatchedRequests(cmd.Context())
			if err != nil {
				return err
			}
			return a.printResult(reqs, func(w io.Writer) {
				if len(reqs) == 0 {
					fmt.Fprintln(w, "No unmatched requests")
					return
				}
				tw := output.Table(w)
				fmt.Fprintln(tw, "TIME\tMETHOD\tURL")
				for _, r := range reqs {
					fmt.Fprintf(tw, "%s\t%s\t%s\n", output.Timestamp(r.Time()), r.Method, output.Truncate(r.URL, 70))
				}
				_ = tw.Flush()
			})
		},
	}
}

func newRequestsClearCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Empty the request journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			if err := c.ClearAllRequests(cmd.Context()); err != nil {
				return err
			}
			return a.printResult(map[string]bool{"cleared": true}, func(w io.Writer) {
				fmt.Fprintln(w, "Request journal cleared")
			})
		},
	}
}

func printEvents(w io.Writer, events []requestlog.ServeEvent) {
	if len(events) == 0 {
		fmt.Fprintln(w, "No requests")
		return
	}
	tw := output.Table(w)
	fmt.Fprintln(tw, "ID\tTIME\tMETHOD\tURL\tSTATUS\tMATCHED")
	for _, e := range events {
		status := "-"
		if s := e.Status(); s != 0 {
			status = strconv.Itoa(s)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%t\n",
			output.Truncate(e.ID, 12),
			output.Timestamp(e.Request.Time()),
			e.Request.Method,
			output.Truncate(e.Request.URL, 60),
			status,
			e.WasMatched,
		)
	}
	_ = tw.Flush()
}
