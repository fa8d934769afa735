package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// @title Therapy Plan API
// @version 1.0
// @description API for AI-generated therapy plans, their adaptation and mood tracking.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newRootCmd creates the top-level "therapy-app" command.
func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "therapy-app",
		Short:         "Therapy plan generation and adaptation service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", ".", "directory containing config.yaml")

	root.AddCommand(
		newServeCmd(&configPath),
		newEnsureIndexesCmd(&configPath),
	)
	return root
}
