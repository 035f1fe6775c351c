package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"leadhub/internal/dedup/models"
)

var errUsage = errors.New("usage")

// Deduper is the dedup behaviour the CLI drives.
type Deduper interface {
	ExecuteForProduct(ctx context.Context, rawPID string) (*models.Stats, error)
	ExecuteForAllProducts(ctx context.Context) ([]models.ProductOutcome, error)
	Stats(ctx context.Context) (*models.StatsInfo, error)
	PreviewProductDuplicates(ctx context.Context) ([][]models.ProductPreview, error)
}

func dispatch(ctx context.Context, svc Deduper, name string, args []string, stdout, stderr io.Writer) error {
	switch name {
	case "dedup":
		return runDedup(ctx, svc, args, stdout, stderr)
	case "stats":
		info, err := svc.Stats(ctx)
		if err != nil {
			return err
		}
		return renderStatsInfo(stdout, info)
	case "products-preview":
		groups, err := svc.PreviewProductDuplicates(ctx)
		if err != nil {
			return err
		}
		return renderPreview(stdout, groups)
	}
	fmt.Fprintf(stderr, "unknown command %q\n", name)
	return errUsage
}

func runDedup(ctx context.Context, svc Deduper, args []string, stdout, stderr io.Writer) error {
	flags := pflag.NewFlagSet("dedup", pflag.ContinueOnError)
	flags.SetOutput(stderr)
	product := flags.StringP("product", "p", "", "Deduplicate the leads of one product (pId)")
	all := flags.Bool("all", false, "Deduplicate every product in turn")
	if err := flags.Parse(args); err != nil {
		return errUsage
	}
	if (*product == "") == !*all {
		fmt.Fprintln(stderr, "dedup needs exactly one of --product or --all")
		return errUsage
	}

	if *all {
		outcomes, err := svc.ExecuteForAllProducts(ctx)
		if err != nil {
			return err
		}
		return renderOutcomes(stdout, outcomes)
	}
	stats, err := svc.ExecuteForProduct(ctx, *product)
	if err != nil {
		return err
	}
	return renderStats(stdout, *product, stats)
}
