// Package cli implements the shimctl command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/tahopen/tahopen-hadoop-shims/pkg/color"
	"github.com/tahopen/tahopen-hadoop-shims/pkg/config"
	"github.com/tahopen/tahopen-hadoop-shims/pkg/logging"
	"github.com/tahopen/tahopen-hadoop-shims/pkg/shims"
)

// app holds global flag values and the streams commands write to.
type app struct {
	jsonOutput bool
	configPath string
	logLevel   string
	noColor    bool

	stdout io.Writer
	stderr io.Writer
	getenv func(string) string
}

// NewRootCmd builds the shimctl command tree.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&app{stdout: os.Stdout, stderr: os.Stderr, getenv: os.Getenv})
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "shimctl",
		Short: "shimctl - Kettle environment installer for the distributed cache",
		Long: `shimctl installs a Kettle runtime archive, shim drivers and plugins onto a
distributed filesystem so that cluster jobs can load them from the
distributed cache, and builds job configurations that reference them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			color.Init(a.noColor)
		},
	}
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	pf := root.PersistentFlags()
	pf.BoolVar(&a.jsonOutput, "json", false, "output in JSON format")
	pf.StringVar(&a.configPath, "config", "", "config file (default .shimctl/config.yaml in the current directory)")
	pf.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.BoolVar(&a.noColor, "no-color", false, "disable colored output")

	root.AddCommand(
		newInstallCmd(a),
		newStatusCmd(a),
		newStageCmd(a),
		newStagePluginsCmd(a),
		newExtractCmd(a),
		newFindPluginCmd(a),
		newClasspathCmd(a),
		newDoctorCmd(a),
		newJournalCmd(a),
		newConfigCmd(a),
	)
	return root
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmtErr(os.Stderr, "%v", err)
		os.Exit(1)
	}
}

// loadConfig reads --config or .shimctl/config.yaml under the working
// directory and applies environment overrides.
func (a *app) loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if a.configPath != "" {
		cfg, err = config.LoadFile(a.configPath)
	} else {
		var cwd string
		cwd, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("cannot get current directory: %w", err)
		}
		cfg, err = config.Load(cwd)
	}
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv(a.getenv)
	return cfg, nil
}

func (a *app) logger(cfg *config.Config) *logging.Logger {
	level := cfg.Logging.Level
	if a.logLevel != "" {
		level = a.logLevel
	}
	l := logging.NewLogger(logging.ParseLevel(level))
	l.SetOutput(a.stderr)
	l.SetFormat(logging.Format(cfg.Logging.Format))
	logging.SetGlobal(l)
	return l
}

// openClient loads configuration and opens a library client.
func (a *app) openClient(opts ...shims.Option) (*shims.Client, error) {
	cfg, err := a.loadConfig()
	if err != nil {
		return nil, err
	}
	opts = append([]shims.Option{shims.WithLogger(a.logger(cfg))}, opts...)
	return shims.Open(cfg, opts...)
}

// outputJSON prints v as indented JSON.
func (a *app) outputJSON(v any) error {
	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *app) printf(format string, args ...any) {
	fmt.Fprintf(a.stdout, format, args...)
}

func fmtErr(w io.Writer, format string, args ...any) {
	prefix := "shimctl: "
	if color.Enabled() {
		prefix = color.Error("shimctl:") + " "
	}
	fmt.Fprintf(w, prefix+format+"\n", args...)
}
