package main

import (
	"fmt"

	"github.com/jonathan/resume-tailor/internal/chat"
	"github.com/jonathan/resume-tailor/internal/server"
	"github.com/spf13/cobra"
)

func newServeCmd(a *app) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server",
		Long:  "Start an HTTP server that exposes the extraction, tailoring, chat and export endpoints.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("port") {
				a.cfg.Port = port
				if err := a.cfg.Validate(); err != nil {
					return err
				}
			}

			client, err := a.client(cmd.Context())
			if err != nil {
				return err
			}

			srv, err := server.New(server.Config{
				Port:       a.cfg.Port,
				Client:     client,
				Generation: a.generationOptions(),
				Chat:       chat.Options{Logger: a.logger},
				Extractor:  a.cfg.ExtractorConfig(),
				JobFetch:   a.cfg.JobFetchOptions(a.logger),
				Geometry:   a.cfg.Geometry(),
				RateLimit:  a.cfg.RateLimiterConfig(),
				Logger:     a.logger,
			})
			if err != nil {
				_ = client.Close()
				return fmt.Errorf("failed to create server: %w", err)
			}

			return srv.Start()
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "Port to listen on (default from config, 8080)")
	return cmd
}
