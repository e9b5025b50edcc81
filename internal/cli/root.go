// Package cli implements the knobs command-line interface.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mesh-intelligence/knobs/internal/logging"
	"github.com/mesh-intelligence/knobs/internal/paths"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// exitError carries the exit code a failed command ends the process with.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }

func (e *exitError) Unwrap() error { return e.err }

// userError marks err as caused by the invocation: unknown keys, values that
// do not parse or are rejected.
func userError(err error) error {
	return &exitError{code: exitUserError, err: err}
}

// sysError marks err as caused by the environment: storage and filesystem
// failures.
func sysError(err error) error {
	return &exitError{code: exitSysError, err: err}
}

// exitCode maps a command error to its exit code.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitUserError
}

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	langDir   string
	lang      string
	jsonMode  bool
}

// session is the state shared by the subcommands of one invocation.
type session struct {
	flags     rootFlags
	configDir string
	v         *viper.Viper
}

// NewRootCmd creates the top-level "knobs" command with global flags and all
// subcommands registered.
func NewRootCmd() *cobra.Command {
	s := &session{}
	root := &cobra.Command{
		Use:     "knobs",
		Short:   "Typed, validated configuration with generated options",
		Long:    "knobs stores typed configuration keys, validates every write against\nthe key's type and constraint and shows the options each key offers.",
		Version: Version,
		// Do not print usage on errors returned by subcommands.
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return s.load(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&s.flags.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	pf.StringVar(&s.flags.dataDir, "data-dir", "", "data directory (default: $(CWD)/.knobs-data)")
	pf.StringVar(&s.flags.langDir, "lang-dir", "", "language catalog directory (default: <config-dir>/lang)")
	pf.StringVar(&s.flags.lang, "lang", "", "catalog language (default: EN)")
	pf.BoolVar(&s.flags.jsonMode, "json", false, "output in JSON format")

	root.AddCommand(
		newVersionCmd(),
		newInitCmd(s),
		newShowCmd(s),
		newGetCmd(s),
		newSetCmd(s),
		newResetCmd(s),
		newOptionsCmd(s),
		newTypesCmd(s),
	)
	return root
}

// load resolves the config directory, reads config.yaml and installs the
// logger in the command context.
func (s *session) load(cmd *cobra.Command) error {
	if cmd.Name() == "version" {
		return nil
	}
	configDir, err := paths.ResolveConfigDir(s.flags.configDir)
	if err != nil {
		return sysError(fmt.Errorf("resolve config dir: %w", err))
	}
	v, err := loadConfig(configDir)
	if err != nil {
		return sysError(err)
	}
	s.configDir, s.v = configDir, v

	log := newLogger(v, cmd.ErrOrStderr())
	cmd.SetContext(logging.WithContext(cmd.Context(), log))
	log.Debug().Str("config_dir", configDir).Str("command", cmd.Name()).Msg("config loaded")
	return nil
}

// Run executes the root command with args and returns the process exit code.
func Run(args []string, stdout, stderr io.Writer) int {
	root := NewRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	err := root.Execute()
	if err != nil {
		fmt.Fprintln(stderr, "knobs:", err)
	}
	return exitCode(err)
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	os.Exit(Run(os.Args[1:], os.Stdout, os.Stderr))
}
