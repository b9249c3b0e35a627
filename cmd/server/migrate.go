package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/Skufu/liverscreen/internal/store"
)

func newMigrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Database migration commands",
		Flags: []cli.Flag{
			databaseURLFlag(),
		},
		Commands: []*cli.Command{
			{
				Name:   "up",
				Usage:  "Run all pending migrations",
				Action: migrateUp,
			},
			{
				Name:   "down",
				Usage:  "Roll back the last migration",
				Action: migrateDown,
			},
			{
				Name:   "status",
				Usage:  "Show migration status",
				Action: migrateStatus,
			},
			{
				Name:   "version",
				Usage:  "Print the current version of the database",
				Action: migrateVersion,
			},
		},
	}
}

func requireDatabaseURL(cmd *cli.Command) (string, error) {
	url := cmd.String("database-url")
	if url == "" {
		return "", fmt.Errorf("database-url is required (set via --database-url or DATABASE_URL env var)")
	}
	return url, nil
}

func migrateUp(ctx context.Context, cmd *cli.Command) error {
	url, err := requireDatabaseURL(cmd)
	if err != nil {
		return err
	}
	if err := store.MigrateUp(ctx, url); err != nil {
		return err
	}

	fmt.Fprintln(cmd.Root().Writer, "Migrations completed successfully")
	return nil
}

func migrateDown(ctx context.Context, cmd *cli.Command) error {
	url, err := requireDatabaseURL(cmd)
	if err != nil {
		return err
	}
	if err := store.MigrateDown(ctx, url); err != nil {
		return err
	}

	fmt.Fprintln(cmd.Root().Writer, "Rolled back one migration")
	return nil
}

func migrateStatus(ctx context.Context, cmd *cli.Command) error {
	url, err := requireDatabaseURL(cmd)
	if err != nil {
		return err
	}
	return store.MigrateStatus(ctx, url)
}

func migrateVersion(ctx context.Context, cmd *cli.Command) error {
	url, err := requireDatabaseURL(cmd)
	if err != nil {
		return err
	}

	version, err := store.MigrationVersion(ctx, url)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.Root().Writer, "Database version: %d\n", version)
	return nil
}
