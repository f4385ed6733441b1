package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	imageadjustapi "github.com/desain-gratis/imageadjust/delivery/imageadjust-api"
)

func serveCmd() *cobra.Command {
	var address string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the demo HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if address == "" {
				address = cfg.Server.Address
			}

			controller, err := newController()
			if err != nil {
				return err
			}
			api := imageadjustapi.New(controller, newUploader())
			server := http.Server{
				Addr:         address,
				Handler:      api.Router(),
				ReadTimeout:  cfg.Server.ReadTimeout,
				WriteTimeout: cfg.Server.WriteTimeout,
			}

			idleConnsClosed := make(chan struct{})
			go func() {
				sigint := make(chan os.Signal, 1)
				signal.Notify(sigint, os.Interrupt)
				<-sigint

				ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
				defer cancel()

				log.Info().Msgf("Shutting down HTTP server..")
				if err := server.Shutdown(ctx); err != nil {
					log.Err(err).Msgf("HTTP server Shutdown")
				}
				log.Info().Msgf("Stopped serving new connections.")
				close(idleConnsClosed)
			}()

			log.Info().Msgf("Serving at %v..", address)
			if err := server.ListenAndServe(); err != http.ErrServerClosed {
				return err
			}

			<-idleConnsClosed
			log.Info().Msgf("Bye bye")
			return nil
		},
	}
	cmd.Flags().StringVar(&address, "address", "", "listen address (default server.address)")
	return cmd
}
