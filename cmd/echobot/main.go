// Command echobot is a minimal bot built on the framework: it answers
// /echo with the message argument and serves the webhook over HTTP.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "echobot",
	Short: "Example echo bot for the Convex messenger",
	Long: `echobot is a example bot built on botgo. It registers a couple of
commands, answers them in chat and exposes the webhook and status
endpoints the messenger calls.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "botgo.yml", "config file path")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(initCmd)
}

func main() {
	// .env is optional; real deployments set variables in the service
	// definition.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
