// Command leadctl runs deduplication and inspects duplicates against the
// configured stores from a terminal.
//
//	leadctl [--env-file .env] dedup --product PL
//	leadctl dedup --all
//	leadctl stats
//	leadctl products-preview
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"leadhub/internal/app"
	"leadhub/internal/platform/config"
	"leadhub/internal/platform/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	flags := pflag.NewFlagSet("leadctl", pflag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.SetInterspersed(false)
	envFile := flags.String("env-file", "", "Optional .env file loaded before the environment")
	flags.Usage = func() {
		fmt.Fprintln(stderr, "Usage: leadctl [flags] <dedup|stats|products-preview> [command flags]")
		flags.PrintDefaults()
	}
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}
	if flags.NArg() == 0 {
		flags.Usage()
		return 2
	}

	var files []string
	if *envFile != "" {
		files = append(files, *envFile)
	}
	cfg := config.Load(files...)
	log := logger.NewWithWriter(stderr, cfg.Log.Level, cfg.Log.Format)

	a, err := app.Build(ctx, cfg, log)
	if err != nil {
		log.Error("connect", "error", err)
		return 1
	}
	defer func() { _ = a.Close() }()

	if err := dispatch(ctx, a.Dedup, flags.Arg(0), flags.Args()[1:], stdout, stderr); err != nil {
		if errors.Is(err, errUsage) {
			return 2
		}
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
	return 0
}
