package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/openfroyo/lzconfig/cmd/lzconfig/commands"
	"github.com/openfroyo/lzconfig/pkg/telemetry"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Version information (set via ldflags during build)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// Exit codes: a rejected configuration exits 1, any other failure exits 2.
const (
	exitInvalid = 1
	exitFailure = 2
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(telemetry.ParseLevel(os.Getenv("LOG_LEVEL")))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}

// run executes one invocation and maps its outcome onto an exit status.
// Cancelling ctx stops in-flight loads and ends `watch`.
func run(ctx context.Context, args []string) int {
	err := commands.Execute(ctx, args, Version, Commit, BuildDate)
	switch {
	case err == nil:
		return 0
	case errors.Is(err, commands.ErrInvalid):
		// the report has already been printed
		return exitInvalid
	default:
		log.Error().Err(err).Msg("lzconfig failed")
		return exitFailure
	}
}
