package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/roshangit23/ReadyTestAPI/internal/config"
	"github.com/roshangit23/ReadyTestAPI/internal/logging"
	"github.com/roshangit23/ReadyTestAPI/internal/output"
)

var version = "0.1.0"

// globalOptions carries the persistent flags shared by every command.
type globalOptions struct {
	configFile string
	envFile    string
	logFile    string
	logFormat  string
	verbose    bool
	noColor    bool

	logOut io.WriteCloser
}

// NewRootCmd builds the command tree. Each call returns an independent tree.
func NewRootCmd() *cobra.Command {
	cmd, _ := newRootCmd()
	return cmd
}

func newRootCmd() (*cobra.Command, *globalOptions) {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:     "readytest",
		Short:   "Declarative API and database test runner",
		Version: version,
		Long: `readytest runs Gherkin feature files whose steps name HTTP endpoints
and SQL queries. The names are resolved against YAML tables, so the
features stay readable while URLs and statements live in one place.`,
		SilenceUsage:       true,
		SilenceErrors:      true,
		PersistentPreRunE:  opts.setup,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return opts.closeLog()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.configFile, "config", "c", "", "settings file (default "+config.DefaultSettingsFile+" if present)")
	flags.StringVar(&opts.envFile, "env-file", "", "dotenv file to load before running (default .env if present)")
	flags.StringVar(&opts.logFile, "log-file", "", "append log records to this file instead of stderr")
	flags.StringVar(&opts.logFormat, "log-format", "text", "log record format: text or json")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose output and debug logging")
	flags.BoolVar(&opts.noColor, "no-color", false, "Disable colored output")

	cmd.AddCommand(
		newRunCmd(opts),
		newCheckCmd(opts),
		newResolveCmd(opts),
		newSendCmd(opts),
		newCoerceCmd(),
	)

	return cmd, opts
}

// Execute runs the command tree against os.Args.
func Execute() error {
	cmd, opts := newRootCmd()
	if err := runRoot(cmd, opts); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", output.ErrorIcon(output.ColorDisabled(false, os.Stderr)), err)
		return err
	}
	return nil
}

// runRoot executes cmd and releases what setup acquired, also when the
// command fails and PersistentPostRunE is skipped.
func runRoot(cmd *cobra.Command, opts *globalOptions) error {
	err := cmd.Execute()
	if cerr := opts.closeLog(); err == nil {
		err = cerr
	}
	return err
}

func (o *globalOptions) setup(cmd *cobra.Command, args []string) error {
	level := logging.LevelInfo
	if o.verbose {
		level = logging.LevelDebug
	}

	var initLog func(logging.LogLevel, io.Writer)
	switch o.logFormat {
	case "", "text":
		initLog = logging.InitForCLI
	case "json":
		initLog = logging.InitJSON
	default:
		return fmt.Errorf("unknown log format %q (want text or json)", o.logFormat)
	}

	var w io.Writer = cmd.ErrOrStderr()
	if o.logFile != "" {
		f, err := os.OpenFile(o.logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		o.logOut = f
		w = f
	}
	initLog(level, w)

	return loadEnvFile(o.envFile, o.envFile != "")
}

// closeLog closes the --log-file handle. It is safe to call more than once.
func (o *globalOptions) closeLog() error {
	if o.logOut == nil {
		return nil
	}
	err := o.logOut.Close()
	o.logOut = nil
	return err
}

// loadEnvFile loads a dotenv file without overriding variables that are
// already set. A missing file is only an error when it was asked for.
func loadEnvFile(path string, required bool) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if !required && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading env file %s: %w", path, err)
	}
	logging.Debug("cli", "loaded environment from %s", path)
	return nil
}

// settings loads the settings file named by --config, or the default file
// when it exists, or falls back to the default layout.
func (o *globalOptions) settings() (*config.Settings, error) {
	path := o.configFile
	if path == "" {
		if _, err := os.Stat(config.DefaultSettingsFile); err != nil {
			s := config.DefaultSettings()
			return &s, nil
		}
		path = config.DefaultSettingsFile
	}

	s, err := config.LoadSettings(path)
	if err != nil {
		return nil, err
	}
	if s.EnvFile != "" {
		if err := loadEnvFile(s.EnvFile, true); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (o *globalOptions) colorDisabled() bool {
	return output.ColorDisabled(o.noColor, os.Stdout)
}
