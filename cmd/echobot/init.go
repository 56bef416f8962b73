package main

import (
	"github.com/spf13/cobra"

	"github.com/convexim/botgo/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a bot configuration with an interactive wizard",
	Long:  `Runs an interactive wizard that collects the listen address, log level and bot accounts, then writes the configuration file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard(cfgFile)
		return err
	},
}
