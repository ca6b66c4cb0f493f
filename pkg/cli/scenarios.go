package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/getmockd/captain/pkg/cli/internal/output"
)

func newScenariosCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scenarios",
		Short: "Inspect and reset scenario states",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List scenarios and their current state",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				c, err := a.client()
				if err != nil {
					return err
				}
				scenarios, err := c.GetAllScenarios(cmd.Context())
				if err != nil {
					return err
				}
				return a.printResult(scenarios, func(w io.Writer) {
					if len(scenarios) == 0 {
						fmt.Fprintln(w, "No scenarios")
						return
					}
					tw := output.Table(w)
					fmt.Fprintln(tw, "NAME\tSTATE\tPOSSIBLE STATES")
					for _, s := range scenarios {
						fmt.Fprintf(tw, "%s\t%s\t%s\n", s.Name, s.State, output.Dash(strings.Join(s.PossibleStates, ", ")))
					}
					_ = tw.Flush()
				})
			},
		},
		&cobra.Command{
			Use:   "reset",
			Short: "Move every scenario back to Started",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				c, err := a.client()
				if err != nil {
					return err
				}
				if err := c.ResetAllScenarios(cmd.Context()); err != nil {
					return err
				}
				return a.printResult(map[string]bool{"reset": true}, func(w io.Writer) {
					fmt.Fprintln(w, "All scenarios reset")
				})
			},
		},
	)
	return cmd
}

func newClearCmd(a *app) *cobra.Command {
	var keepDefaults bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove all mappings and empty the request journal",
		Long: `Remove all mappings and empty the request journal.

With --keep-defaults, mappings are reset to the ones in the server's backing
store instead of removed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			if keepDefaults {
				err = c.ClearAllExceptDefault(cmd.Context())
			} else {
				err = c.ClearAll(cmd.Context())
			}
			if err != nil {
				return err
			}
			return a.printResult(map[string]bool{"cleared": true, "keptDefaults": keepDefaults}, func(w io.Writer) {
				if keepDefaults {
					fmt.Fprintln(w, "Mappings reset to defaults and request journal cleared")
					return
				}
				fmt.Fprintln(w, "All mappings and requests cleared")
			})
		},
	}
	cmd.Flags().BoolVar(&keepDefaults, "keep-defaults", false, "Reset to default mappings instead of removing all")
	return cmd
}
