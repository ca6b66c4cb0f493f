package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/getmockd/captain/pkg/admin/wiremockclient"
	"github.com/getmockd/captain/pkg/cli/internal/output"
	"github.com/getmockd/captain/pkg/cli/internal/parse"
	"github.com/getmockd/captain/pkg/cliconfig"
	"github.com/getmockd/captain/pkg/logging"
	"github.com/getmockd/captain/pkg/stubfile"
)

var (
	// Version is injected during build
	Version = "dev"
	// Commit is injected during build
	Commit = "none"
	// BuildDate is injected during build
	BuildDate = "unknown"
)

// IO holds the streams a command tree reads from and writes to.
type IO struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
	// Interactive reports whether forms may be shown. Nil means never.
	Interactive func() bool
}

// app is the state shared by every command of one tree.
type app struct {
	io IO

	// persistent flag targets
	adminURL  string
	jsonOut   bool
	timeout   time.Duration
	logLevel  string
	logFormat string
	headers   []string
	defaults  string

	cfg    *cliconfig.CLIConfig
	logger *slog.Logger
	wm     *wiremockclient.Client
}

// NewRootCommand builds the captain command tree.
func NewRootCommand(streams IO) *cobra.Command {
	a := &app{io: streams}

	root := &cobra.Command{
		Use:   "captain",
		Short: "captain manages stubs on a WireMock server",
		Long: `captain registers, inspects and clears stub mappings on a running WireMock
server through its admin API, and queries the request journal.

Configuration can be provided via flags, CAPTAIN_* environment variables,
.captainrc.yaml in the current directory, or $XDG_CONFIG_HOME/captain/config.yaml.`,
		SilenceUsage:  true,
		SilenceErrors: true, // We handle errors in Execute()
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	root.SetIn(streams.In)
	root.SetOut(streams.Out)
	root.SetErr(streams.Err)

	pf := root.PersistentFlags()
	pf.StringVar(&a.adminURL, "admin-url", "", "WireMock base URL (default: "+cliconfig.DefaultAdminURL+")")
	pf.BoolVar(&a.jsonOut, "json", false, "Output command results in JSON format")
	pf.DurationVar(&a.timeout, "timeout", 0, "Admin API timeout (default: "+cliconfig.DefaultTimeout.String()+")")
	pf.StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	pf.StringVar(&a.logFormat, "log-format", "", "Log format: text, json")
	pf.StringArrayVar(&a.headers, "admin-header", nil, "Extra header for admin calls, as Name=Value (repeatable)")
	pf.StringVar(&a.defaults, "defaults", "", "Stub file whose defaults apply to every registration")

	root.AddCommand(
		newRegisterCmd(a),
		newApplyCmd(a),
		newMappingsCmd(a),
		newRequestsCmd(a),
		newScenariosCmd(a),
		newClearCmd(a),
		newConfigCmd(a),
		newVersionCmd(a),
	)
	return root
}

// Execute runs the command tree against the process streams and exits
// non-zero on error.
func Execute() {
	root := NewRootCommand(IO{
		In:          os.Stdin,
		Out:         os.Stdout,
		Err:         os.Stderr,
		Interactive: stdinIsTerminal,
	})
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func stdinIsTerminal() bool {
	fi, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

// setup resolves configuration: flags > env > local file > global file > defaults.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := cliconfig.LoadAll()
	if err != nil {
		return err
	}

	flagCfg, err := a.flagConfig(cmd)
	if err != nil {
		return err
	}
	cliconfig.MergeConfig(cfg, flagCfg, cliconfig.SourceFlag)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	a.cfg = cfg
	a.logger = logging.FromStrings(cfg.LogLevel, cfg.LogFormat, a.io.Err)
	return nil
}

// flagConfig returns the persistent flags that were set explicitly.
func (a *app) flagConfig(cmd *cobra.Command) (*cliconfig.CLIConfig, error) {
	flags := cmd.Flags()
	fc := &cliconfig.CLIConfig{SetFields: map[string]bool{}}
	if flags.Changed("admin-url") {
		fc.AdminURL = a.adminURL
	}
	if flags.Changed("timeout") {
		fc.Timeout = a.timeout
	}
	if flags.Changed("log-level") {
		fc.LogLevel = a.logLevel
	}
	if flags.Changed("log-format") {
		fc.LogFormat = a.logFormat
	}
	if flags.Changed("json") {
		fc.JSON = a.jsonOut
		fc.SetFields[cliconfig.KeyJSON] = true
	}
	if flags.Changed("defaults") {
		fc.DefaultsFile = a.defaults
	}
	headers, err := parse.StringPairs("--admin-header", a.headers)
	if err != nil {
		return nil, err
	}
	fc.Headers = headers
	return fc, nil
}

// client returns the admin client, building it on first use.
func (a *app) client() (*wiremockclient.Client, error) {
	if a.wm != nil {
		return a.wm, nil
	}
	opts := []wiremockclient.Option{
		wiremockclient.WithTimeout(a.cfg.Timeout),
		wiremockclient.WithLogger(a.logger),
	}
	for k, v := range a.cfg.Headers {
		opts = append(opts, wiremockclient.WithHeader(k, v))
	}
	if a.cfg.DefaultsFile != "" {
		doc, err := stubfile.LoadFile(a.cfg.DefaultsFile)
		if err != nil {
			return nil, fmt.Errorf("loading defaults: %w", err)
		}
		opts = append(opts, wiremockclient.WithDefaultFeatures(doc.Defaults))
	}
	a.wm = wiremockclient.New(a.cfg.AdminURL, opts...)
	return a.wm, nil
}

// printResult outputs a single operation result.
//
// Contract: when --json is active, ONLY the JSON encoding of data is written
// to stdout. textFn is called only in text mode.
func (a *app) printResult(data any, textFn func(w io.Writer)) error {
	if a.cfg != nil && a.cfg.JSON {
		return output.JSON(a.io.Out, data)
	}
	textFn(a.io.Out)
	return nil
}

// status prints a progress line to stderr so stdout stays parseable.
func (a *app) status(format string, args ...any) {
	fmt.Fprintf(a.io.Err, format+"\n", args...)
}
