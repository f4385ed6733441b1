package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	_ "github.com/desain-gratis/imageadjust/lib/imageproc/webp"
)

func init() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).With().Logger()
}

func main() {
	if err := Execute(); err != nil {
		log.Error().Err(err).Msgf("imageadjust")
		os.Exit(1)
	}
}
