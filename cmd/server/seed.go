package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/Skufu/liverscreen/internal/evaluation"
	"github.com/Skufu/liverscreen/internal/logging"
	"github.com/Skufu/liverscreen/internal/store"
)

func newSeedCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "Load a model evaluation export into the database",
		Flags: []cli.Flag{
			databaseURLFlag(),
			&cli.StringFlag{
				Name:     "file",
				Aliases:  []string{"f"},
				Usage:    "Path to model_data.json",
				Required: true,
			},
		},
		Action: runSeed,
	}
}

func runSeed(ctx context.Context, cmd *cli.Command) error {
	ev, err := loadEvaluation(cmd.String("file"))
	if err != nil {
		return err
	}

	url, err := requireDatabaseURL(cmd)
	if err != nil {
		return err
	}

	pg, err := store.Connect(ctx, url)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer pg.Close()

	if err := pg.InsertEvaluation(ctx, ev); err != nil {
		return err
	}

	fmt.Fprintf(cmd.Root().Writer, "Seeded evaluation %d (accuracy %.4f, %d test samples)\n",
		ev.ID, ev.Accuracy, ev.Metadata.TestSetSize)
	return nil
}

func loadEvaluation(path string) (*evaluation.Evaluation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open model data: %w", err)
	}
	defer f.Close()

	return evaluation.LoadModelData(f, time.Now())
}

// seedIfEmpty stores the evaluation at path unless one is already stored.
func seedIfEmpty(ctx context.Context, st store.Store, path string) error {
	_, err := st.LatestEvaluation(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	ev, err := loadEvaluation(path)
	if err != nil {
		return err
	}
	if err := st.InsertEvaluation(ctx, ev); err != nil {
		return err
	}

	logging.Logger(logging.SourceApp).Info("seeded model evaluation", "id", ev.ID, "path", path)
	return nil
}
