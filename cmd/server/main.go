package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	// Swagger imports
	_ "socialhub/backend/docs" // registers the generated Swagger document
)

var configDir string

var rootCmd = &cobra.Command{
	Use:   "socialhub",
	Short: "Socialhub API server",
	Long: `Socialhub serves the REST API for friends, groups, posts and comments.

Configuration is read from a .env file in --config-dir and from the environment.`,
	SilenceUsage: true,
}

// @title           Socialhub API
// @version         1.0
// @description     Friends, groups, posts and comments for the socialhub service.
// @host            localhost:8080
// @BasePath        /api/v1
// @securityDefinitions.apiKey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", ".", "Directory containing the .env file")
	rootCmd.AddCommand(serveCmd, migrateCmd)
}
