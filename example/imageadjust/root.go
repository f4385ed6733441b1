package main

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	imageadjustapiclient "github.com/desain-gratis/imageadjust/delivery/imageadjust-api-client"
	"github.com/desain-gratis/imageadjust/delivery/upload"
	"github.com/desain-gratis/imageadjust/usecase/screen"
	"github.com/desain-gratis/imageadjust/utility/config"
)

var (
	cfgFile string
	cfg     config.Config
)

func Execute() error {
	root := &cobra.Command{
		Use:           "imageadjust",
		Short:         "Image adjustment demo: zoom, pan, rotate, crop and export",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(cfgFile)
			if err != nil {
				return err
			}
			level, err := zerolog.ParseLevel(cfg.Log.Level)
			if err != nil {
				log.Warn().Msgf("unknown log level %q, using info", cfg.Log.Level)
				level = zerolog.InfoLevel
			}
			zerolog.SetGlobalLevel(level)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "yaml config file (default $"+config.EnvConfig+")")

	root.AddCommand(serveCmd(), exportCmd(), screensCmd())
	return root.Execute()
}

func newController() (*screen.Controller, error) {
	opts := cfg.Export.Options()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return screen.NewController(screen.Options{
		Export:    opts,
		Submitter: imageadjustapiclient.NewLogOnly(),
	}, screen.Screens(cfg.Screens)...), nil
}

func newUploader() *upload.Uploader {
	return upload.New(cfg.Upload.MaxBytes, cfg.Upload.AllowedTypes)
}
