package cli

import (
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/getmockd/captain/pkg/cli/internal/output"
	"github.com/getmockd/captain/pkg/cliconfig"
)

// ConfigOutput is the JSON form of `captain config`.
type ConfigOutput struct {
	Config  *cliconfig.CLIConfig `json:"config"`
	Sources map[string]string    `json:"sources"`
	Files   ConfigFiles          `json:"files"`
}

// ConfigFiles lists the config files that were found.
type ConfigFiles struct {
	Global string `json:"global,omitempty"`
	Local  string `json:"local,omitempty"`
}

func newConfigCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration and where each value came from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			global, _ := cliconfig.FindGlobalConfig()
			local, _ := cliconfig.FindLocalConfig()
			out := ConfigOutput{
				Config:  a.cfg,
				Sources: a.cfg.Sources,
				Files:   ConfigFiles{Global: global, Local: local},
			}
			return a.printResult(out, func(w io.Writer) {
				cfg := a.cfg
				tw := output.Table(w)
				fmt.Fprintln(tw, "KEY\tVALUE\tSOURCE")
				row := func(key, value string) {
					fmt.Fprintf(tw, "%s\t%s\t%s\n", key, output.Dash(value), output.Dash(cfg.Sources[key]))
				}
				row(cliconfig.KeyAdminURL, cfg.AdminURL)
				row(cliconfig.KeyTimeout, cfg.Timeout.String())
				row(cliconfig.KeyLogLevel, cfg.LogLevel)
				row(cliconfig.KeyLogFormat, cfg.LogFormat)
				row(cliconfig.KeyJSON, fmt.Sprint(cfg.JSON))
				row(cliconfig.KeyDefaultsFile, cfg.DefaultsFile)
				for _, k := range slices.Sorted(maps.Keys(cfg.Headers)) {
					fmt.Fprintf(tw, "%s.%s\t%s\t%s\n", cliconfig.KeyHeaders, k, cfg.Headers[k], cfg.Sources[cliconfig.KeyHeaders])
				}
				_ = tw.Flush()

				fmt.Fprintln(w)
				fmt.Fprintf(w, "Global config: %s\n", output.Dash(global))
				fmt.Fprintf(w, "Local config:  %s\n", output.Dash(local))
			})
		},
	}
}
