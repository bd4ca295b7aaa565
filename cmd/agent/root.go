package main

import (
	"errors"
	"fmt"
	"log"

	"apply-agent/internal/infrastructure/config"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "apply-agent"
)

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:           app,
		Short:         "apply-agent fills job application forms on configured career sites",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is apply-agent.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().String("sites-file", "", "site definitions (default is the built-in set)")

	for _, name := range []string{"debug", "json", "sites-file"} {
		if err := bindFlag(viper.GetViper(), rootCmd, name, name); err != nil {
			log.Fatal(err)
		}
	}

	config.SetDefaults(viper.GetViper())
}

// bindFlag binds the named flag of cmd, persistent or local, to key.
func bindFlag(v *viper.Viper, cmd *cobra.Command, key, name string) error {
	flag := cmd.Flag(name)
	if flag == nil {
		return fmt.Errorf("bind %s: no flag --%s on %s", key, name, cmd.Name())
	}
	if err := v.BindPFlag(key, flag); err != nil {
		return fmt.Errorf("bind %s: %w", key, err)
	}
	return nil
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("APPLY_AGENT")
	viper.AutomaticEnv()

	// Without an explicit --config the file is optional and defaults apply.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}
