package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/getmockd/captain/pkg/admin/wiremockclient"
	"github.com/getmockd/captain/pkg/cli/internal/output"
	"github.com/getmockd/captain/pkg/stub"
)

func newMappingsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "mappings",
		Aliases: []string{"mapping", "m"},
		Short:   "List, inspect and remove stub mappings",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List all stub mappings",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				c, err := a.client()
				if err != nil {
					return err
				}
				mappings, err := c.GetAllMappings(cmd.Context())
				if err != nil {
					return err
				}
				return a.printResult(mappings, func(w io.Writer) {
					printMappings(w, mappings)
				})
			},
		},
		&cobra.Command{
			Use:   "get ID",
			Short: "Show one stub mapping",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				c, err := a.client()
				if err != nil {
					return err
				}
				m, err := c.GetMapping(cmd.Context(), args[0])
				if err != nil {
					return notFound(err, "mapping", args[0])
				}
				// a mapping has no useful flat form
				return output.JSON(a.io.Out, m)
			},
		},
		&cobra.Command{
			Use:   "delete ID",
			Short: "Delete a stub mapping",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				c, err := a.client()
				if err != nil {
					return err
				}
				if err := c.DeleteMapping(cmd.Context(), args[0]); err != nil {
					return notFound(err, "mapping", args[0])
				}
				return a.printResult(map[string]string{"deleted": args[0]}, func(w io.Writer) {
					fmt.Fprintf(w, "Deleted mapping: %s\n", args[0])
				})
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Remove every stub mapping",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				c, err := a.client()
				if err != nil {
					return err
				}
				if err := c.ClearAllMappings(cmd.Context()); err != nil {
					return err
				}
				return a.printResult(map[string]bool{"cleared": true}, func(w io.Writer) {
					fmt.Fprintln(w, "Removed all mappings")
				})
			},
		},
		&cobra.Command{
			Use:   "reset",
			Short: "Restore the mappings defined in the server's backing store",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				c, err := a.client()
				if err != nil {
					return err
				}
				if err := c.ResetMappings(cmd.Context()); err != nil {
					return err
				}
				return a.printResult(map[string]bool{"reset": true}, func(w io.Writer) {
					fmt.Fprintln(w, "Mappings reset to defaults")
				})
			},
		},
		newMetadataCmd(a, "find", "List mappings whose metadata matches VALUE"),
		newMetadataCmd(a, "remove", "Remove mappings whose metadata matches VALUE"),
	)
	return cmd
}

func newMetadataCmd(a *app, use, short string) *cobra.Command {
	var matchType string
	cmd := &cobra.Command{
		Use:   use + " VALUE",
		Short: short,
		Long: short + `.

VALUE is parsed as JSON when possible and sent as a string otherwise, as
{MATCH-TYPE: VALUE}.`,
		Example: `  captain mappings ` + use + ` '{"team": "payments"}'
  captain mappings ` + use + ` --match-type matchesJsonPath '$.session'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			value := jsonOrString(args[0])

			if use == "remove" {
				if err := c.RemoveMappingsByMetadata(cmd.Context(), matchType, value); err != nil {
					return err
				}
				return a.printResult(map[string]bool{"removed": true}, func(w io.Writer) {
					fmt.Fprintln(w, "Removed matching mappings")
				})
			}

			found, err := c.FindMappingsByMetadata(cmd.Context(), matchType, value)
			if err != nil {
				return err
			}
			return a.printResult(found, func(w io.Writer) {
				printMappings(w, found)
			})
		},
	}
	cmd.Flags().StringVar(&matchType, "match-type", wiremockclient.MetadataEqualToJSON,
		"Metadata matcher: "+wiremockclient.MetadataEqualToJSON+" or "+wiremockclient.MetadataMatchesJSONPath)
	return cmd
}

func printMappings(w io.Writer, mappings []stub.StubMapping) {
	if len(mappings) == 0 {
		fmt.Fprintln(w, "No mappings")
		return
	}
	tw := output.Table(w)
	fmt.Fprintln(tw, "ID\tNAME\tMETHOD\tENDPOINT\tSTATUS\tPRIORITY\tSCENARIO")
	for _, m := range mappings {
		endpoint, _ := m.Request.Endpoint()
		status := strconv.Itoa(m.Response.Status)
		if m.Response.Fault != "" {
			status = string(m.Response.Fault)
		}
		priority := "-"
		if m.Priority != nil {
			priority = strconv.Itoa(*m.Priority)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			m.ID,
			output.Dash(m.Name),
			output.Dash(string(m.Request.Method)),
			output.Truncate(endpoint, 50),
			status,
			priority,
			output.Dash(m.ScenarioName),
		)
	}
	_ = tw.Flush()
}

// jsonOrString decodes s as JSON, falling back to the raw string.
func jsonOrString(s string) any {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err == nil {
		return v
	}
	return s
}

// notFound turns a 404 into a short message naming the resource.
func notFound(err error, kind, id string) error {
	if errors.Is(err, wiremockclient.ErrNotFound) {
		return fmt.Errorf("%s not found: %s", kind, id)
	}
	return err
}
