package app

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	cliflag "k8s.io/component-base/cli/flag"
	"k8s.io/component-base/term"

	"github.com/autopeer-io/sensoragent/pkg/log"
)

// RunFunc is the entry point of an application, invoked after the options
// have been loaded, completed and validated.
type RunFunc func() error

// Option configures an App.
type Option func(*App)

// App is a command-line application built on cobra, configured from flags,
// an optional config file and the environment.
type App struct {
	name        string
	shortDesc   string
	description string
	options     NamedFlagSetOptions
	runFunc     RunFunc
	args        cobra.PositionalArgs
	envPrefix   string
	watchConfig bool
	noConfig    bool

	v   *viper.Viper
	cmd *cobra.Command
}

// WithOptions sets the application's options.
func WithOptions(opts NamedFlagSetOptions) Option {
	return func(a *App) { a.options = opts }
}

// WithRunFunc sets the function executed by the application.
func WithRunFunc(run RunFunc) Option {
	return func(a *App) { a.runFunc = run }
}

// WithDescription sets the long description shown in the help output.
func WithDescription(desc string) Option {
	return func(a *App) { a.description = desc }
}

// WithDefaultValidArgs rejects any positional argument.
func WithDefaultValidArgs() Option {
	return func(a *App) {
		a.args = func(cmd *cobra.Command, args []string) error {
			for _, arg := range args {
				if len(arg) > 0 {
					return fmt.Errorf("%q does not take any arguments, got %q", cmd.CommandPath(), args)
				}
			}
			return nil
		}
	}
}

// WithEnvPrefix sets the prefix of the environment variables that override
// flags, e.g. CPEER for CPEER_MQTT_BROKER.
func WithEnvPrefix(prefix string) Option {
	return func(a *App) { a.envPrefix = prefix }
}

// WithWatchConfig logs a notice when the loaded config file changes.
func WithWatchConfig() Option {
	return func(a *App) { a.watchConfig = true }
}

// WithNoConfig disables the --config flag.
func WithNoConfig() Option {
	return func(a *App) { a.noConfig = true }
}

// NewApp creates a new application.
func NewApp(name string, shortDesc string, opts ...Option) *App {
	a := &App{
		name:      name,
		shortDesc: shortDesc,
		v:         viper.New(),
	}

	for _, o := range opts {
		o(a)
	}

	a.buildCommand()
	return a
}

// Command returns the root cobra command of the application.
func (a *App) Command() *cobra.Command {
	return a.cmd
}

// Run executes the application and exits the process on failure.
func (a *App) Run() {
	if err := a.cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func (a *App) buildCommand() {
	cmd := &cobra.Command{
		Use:           a.name,
		Short:         a.shortDesc,
		Long:          a.description,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          a.args,
	}
	cmd.SetOut(os.Stdout)
	cmd.SetErr(os.Stderr)
	cmd.Flags().SortFlags = true
	cmd.PersistentFlags().SetNormalizeFunc(cliflag.WordSepNormalizeFunc)

	if a.runFunc != nil {
		cmd.RunE = func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd); err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()
			return a.runFunc()
		}
	}

	var namedFlagSets cliflag.NamedFlagSets
	if a.options != nil {
		namedFlagSets = a.options.Flags()
	}
	if !a.noConfig {
		addConfigFlag(a.name, namedFlagSets.FlagSet("global"))
	}
	namedFlagSets.FlagSet("global").BoolP("help", "h", false, fmt.Sprintf("help for %s", a.name))

	for _, f := range namedFlagSets.FlagSets {
		cmd.PersistentFlags().AddFlagSet(f)
	}

	if a.options != nil {
		cmd.AddCommand(a.showConfigCommand())
	}

	cols, _, _ := term.TerminalSize(cmd.OutOrStdout())
	cliflag.SetUsageAndHelpFunc(cmd, namedFlagSets, cols)

	a.cmd = cmd
}

// load resolves the options from flags, the config file and the environment,
// then completes and validates them.
func (a *App) load(cmd *cobra.Command) error {
	if a.options == nil {
		return nil
	}

	if err := a.v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	if err := a.readConfig(cmd); err != nil {
		return err
	}
	if err := a.v.Unmarshal(a.options); err != nil {
		return fmt.Errorf("failed to decode configuration: %w", err)
	}
	if err := a.options.Complete(); err != nil {
		return err
	}
	return a.options.Validate()
}
