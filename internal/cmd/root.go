// Package cmd defines the agora command-line interface.
package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/openmesh-labs/agora/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "agora",
	Short: "Multi-agent coordination engine",
	Long: `Agora coordinates autonomous agents: it registers them, routes
prioritized messages between them, distributes tasks by pluggable policies,
aggregates their results, and runs hierarchical, peer-to-peer, and
market-based coordination protocols.`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringP("config", "c", "", "config directory (default is $HOME/.config/agora)")
	rootCmd.PersistentFlags().String("log-level", "", "minimum log level: DEBUG, INFO, WARN, ERROR")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	config.SetDefaults(viper.GetViper())

	viper.SetConfigName("agora")
	viper.SetConfigType("yaml")
	if dir := viper.GetString("config"); dir != "" {
		viper.AddConfigPath(dir)
	}
	viper.AddConfigPath(config.ConfigDir())
	viper.AddConfigPath(".")

	viper.AutomaticEnv()
	viper.SetEnvPrefix("AGORA")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	_ = viper.ReadInConfig()
}

// loadConfig materializes the resolved configuration.
func loadConfig() (*config.Config, error) {
	var cfg config.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
