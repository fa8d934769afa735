package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"mindpath/therapy-app/internal/config"
	"mindpath/therapy-app/internal/repository/mongo"

	"github.com/spf13/cobra"
)

func newEnsureIndexesCmd(configPath *string) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "ensure-indexes",
		Short: "Create the MongoDB indexes and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(*configPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			dbClient, err := mongo.ConnectDB(cfg.Database.URI)
			if err != nil {
				return fmt.Errorf("connecting to MongoDB: %w", err)
			}
			defer func() {
				if err := mongo.DisconnectDB(dbClient); err != nil {
					log.Printf("ERROR: Failed to disconnect MongoDB: %v", err)
				}
			}()

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			if err := mongo.EnsureIndexes(ctx, dbClient.Database(cfg.Database.Name)); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Indexes are in place.")
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", time.Minute, "upper bound on index creation")
	return cmd
}
