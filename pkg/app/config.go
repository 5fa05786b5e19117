package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/autopeer-io/sensoragent/pkg/log"
)

const configFlagName = "config"

func addConfigFlag(name string, fs *pflag.FlagSet) {
	fs.StringP(configFlagName, "c", "",
		fmt.Sprintf("Read configuration from the specified YAML file. Without it, %s.yaml is searched for in '.', '$HOME/.cpeer' and '/etc/cpeer'.", name))
}

// readConfig merges the config file and the environment into the viper
// instance. A missing default config file is not an error.
func (a *App) readConfig(cmd *cobra.Command) error {
	if a.envPrefix != "" {
		a.v.SetEnvPrefix(a.envPrefix)
	}
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	a.v.AutomaticEnv()

	if a.noConfig {
		return nil
	}

	cfgFile, _ := cmd.Flags().GetString(configFlagName)
	if cfgFile != "" {
		a.v.SetConfigFile(cfgFile)
	} else {
		a.v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			a.v.AddConfigPath(filepath.Join(home, ".cpeer"))
		}
		a.v.AddConfigPath("/etc/cpeer")
		a.v.SetConfigName(a.name)
		a.v.SetConfigType("yaml")
	}

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read configuration file: %w", err)
	}

	if a.watchConfig {
		a.v.OnConfigChange(a.onConfigChange)
		a.v.WatchConfig()
	}

	return nil
}

// onConfigChange applies the log level live. Every other setting is read
// once at startup.
func (a *App) onConfigChange(e fsnotify.Event) {
	if level := a.v.GetString("log.level"); level != "" {
		if err := log.SetLevel(level); err != nil {
			log.Error(err, "Ignoring log level from changed configuration", "file", e.Name)
		} else {
			log.Info("Log level updated", "level", level)
		}
	}
	log.Warn("Configuration file changed, restart the agent to apply other settings", "file", e.Name, "op", e.Op.String())
}
