/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/munindb/munin/pkg/config"
)

var (
	cfgFile string
	cfg     *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "munin",
	Short: "MuninDB - In-Memory Record Store",
	Long: `MuninDB is an in-memory record store mapping small integer recids
to serialized payloads inside one fixed-size byte arena, with snapshot
tooling for dumping and restoring store images.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path := cfgFile
		if path == "" {
			path = config.GetDefaultConfigPath()
		}
		if !config.ConfigExists(path) {
			// No file yet (e.g. before `munin init`): run on defaults.
			cfg = config.DefaultConfig()
			return nil
		}
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return err
		}
		cfg = loaded
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.config/munin/config.yaml)")
}
