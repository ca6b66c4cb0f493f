package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/getmockd/captain/pkg/cli/internal/output"
	"github.com/getmockd/captain/pkg/stub"
	"github.com/getmockd/captain/pkg/stubfile"
)

func newApplyCmd(a *app) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "apply FILE|GLOB...",
		Short: "Register every stub from stub files",
		Long: `Register every stub defined in YAML or JSON stub files.

Arguments may be paths or globs (** matches nested directories). Files are
processed in sorted order; registration stops at the first failure.`,
		Example: `  captain apply stubs/orders.yaml
  captain apply 'stubs/**/*.yaml' --dry-run`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			docs, err := stubfile.LoadFiles(args...)
			if err != nil {
				return err
			}
			c, err := a.client()
			if err != nil {
				return err
			}

			if dryRun {
				var mappings []*stub.Mapping
				for _, doc := range docs {
					for _, s := range doc.Stubs {
						m, err := stub.BuildMapping(s.Request, s.Response, stub.MergeFeatures(c.DefaultFeatures(), s.Features))
						if err != nil {
							return fmt.Errorf("%s: %w", doc.Path, err)
						}
						mappings = append(mappings, m)
					}
				}
				// dry runs always print the exact bodies that would be posted
				return output.JSON(a.io.Out, mappings)
			}

			created, err := stubfile.Register(cmd.Context(), c, docs...)
			for _, m := range created {
				a.logger.Debug("registered stub", "id", m.ID, "name", m.Name)
			}
			if err != nil {
				if len(created) > 0 {
					a.status("%d stub(s) were registered before the failure", len(created))
				}
				return err
			}
			return a.printResult(created, func(w io.Writer) {
				tw := output.Table(w)
				fmt.Fprintln(tw, "ID\tMETHOD\tENDPOINT\tNAME")
				for _, m := range created {
					endpoint, _ := m.Request.Endpoint()
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", m.ID, output.Dash(string(m.Request.Method)), endpoint, output.Dash(m.Name))
				}
				_ = tw.Flush()
				fmt.Fprintf(w, "\nRegistered %d stub(s) from %d file(s)\n", len(created), len(docs))
			})
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the mappings as JSON without registering them")
	return cmd
}
