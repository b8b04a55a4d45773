package cmd

import (
	"log"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	rootCmd = &cobra.Command{
		Use:     "fx-sync",
		Short:   "Scheduled FX rate sync to Dune Analytics",
		Version: "v1.0.0",
	}
	debug      bool
	configFile string
)

func Execute() error {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Debug logging")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "./config.yml", "Path to config file")
	cobra.OnInitialize(initConfig)

	rootCmd.AddCommand(daily(), backfill(), fullSync())

	return rootCmd.Execute()
}

func initConfig() {
	_ = godotenv.Load()

	absolutePath, _ := filepath.Abs(configFile)

	viper.SetConfigFile(absolutePath)
	viper.SetEnvPrefix("FX_SYNC")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("base", "USD")
	viper.SetDefault("fetchers.daily", "exchangerateapi")
	viper.SetDefault("dune.url", "")
	viper.SetDefault("dune.namespace", "unhappyben")
	viper.SetDefault("dune.table", "fx_rates")
	viper.SetDefault("sync.start", "2025-01-01")

	// Scheduled runs can carry everything through the environment.
	if err := viper.ReadInConfig(); err != nil {
		log.Printf("config file not loaded: %v", err)
	}
}
