package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hirewire/hirewire/internal/config"
	"github.com/hirewire/hirewire/internal/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations and exit",
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	dbURL, err := config.DatabaseURL()
	if err != nil {
		return err
	}

	ctx := context.Background()
	database, err := db.Connect(ctx, dbURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	return database.Migrate(ctx)
}
