package cmd

import (
	"context"
	"strings"
	"sync"

	"github.com/Iron-Ham/taskclient/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewRootCmd builds the taskclient command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "taskclient",
		Short: "Start, stop and wait on tasks of a remote task server",
		Long: `taskclient drives a remote task server. It starts tasks in the foreground
or background and blocks until they have finished.

Task parameters are given as key=value pairs. Waits can be cut short by
conditions on other tasks (see "taskclient wait --help").`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/taskclient/config.yaml)")
	_ = viper.BindPFlag("config", root.PersistentFlags().Lookup("config"))

	root.AddCommand(sessionCommands()...)
	root.AddCommand(newShellCmd(), newConfigCmd())
	return root
}

// sessionCommands returns the commands that operate on a client session.
// They are registered both on the root and on every shell line.
func sessionCommands() []*cobra.Command {
	return []*cobra.Command{
		newTasksCmd(),
		newStatusCmd(),
		newRunCmd(),
		newStopCmd(),
		newIdleCmd(),
		newWaitCmd(),
		newWatchCmd(),
	}
}

// Execute runs the root command
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

var configOnce sync.Once

func init() {
	cobra.OnInitialize(func() { configOnce.Do(initConfig) })
}

func initConfig() {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("TASKCLIENT")
	// Replace dots with underscores for nested keys in env vars
	// e.g., TASKCLIENT_CLIENT_POLL_INTERVAL_MS for client.poll_interval_ms
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}
