package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	if err := newRootCmd(logger).Execute(); err != nil {
		// Cobra already printed the error; record it and exit non-zero.
		logger.Error().Err(err).Msg("run failed")
		os.Exit(1)
	}
}
