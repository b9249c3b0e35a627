package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/Skufu/liverscreen/internal/batch"
	"github.com/Skufu/liverscreen/internal/logging"
)

func newScoreCommand() *cli.Command {
	return &cli.Command{
		Name:  "score",
		Usage: "Score a CSV of patient panels and print the JSON result",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "file",
				Aliases:  []string{"f"},
				Usage:    "CSV file to score, or - for stdin",
				Required: true,
			},
		},
		Action: runScore,
	}
}

func runScore(ctx context.Context, cmd *cli.Command) error {
	var in io.Reader = os.Stdin
	if path := cmd.String("file"); path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open csv: %w", err)
		}
		defer f.Close()
		in = f
	}

	adapter := batch.New(batch.WithLogger(logging.Logger(logging.SourceBatch)))
	res, err := adapter.Process(ctx, in)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.Root().Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
