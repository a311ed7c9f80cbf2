// Copyright (c) 2019-present Mattermost, Inc. All Rights Reserved.
// See License for license information.

package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/mattermost/mattermost-lambda-function/config"
	"github.com/mattermost/mattermost-lambda-function/entrypoint"
)

const shutdownTimeout = 10 * time.Second

var servePort string

func init() {
	rootCmd.AddCommand(
		serveCmd,
	)
	serveCmd.Flags().StringVar(&servePort, "port", "", "port to listen on, overrides $PORT")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the function over HTTP, outside of AWS Lambda.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		conf, err := loadConfig()
		if err != nil {
			return err
		}
		if servePort != "" {
			conf.Port = servePort
		}
		return serve(cmd.Context(), newEntryPoint(conf), conf)
	},
}

func serve(ctx context.Context, ep *entrypoint.EntryPoint, conf *config.Config) error {
	h, err := ep.Handler()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	l, err := net.Listen("tcp", ":"+conf.Port)
	if err != nil {
		return errors.Wrap(err, "failed to listen")
	}

	rootURL := conf.RootURL
	if rootURL == "" {
		rootURL = "http://localhost:" + conf.Port
	}
	log.Infof("Function started, listening on port %s, root URL %s; use environment variables PORT and ROOT_URL to customize.", conf.Port, rootURL)
	return runServer(ctx, l, h)
}

// runServer serves h on l until ctx is done, then shuts down gracefully.
func runServer(ctx context.Context, l net.Listener, h http.Handler) error {
	server := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 30 * time.Second,
	}

	done := make(chan error, 1)
	go func() {
		done <- server.Serve(l)
	}()

	select {
	case err := <-done:
		return errors.Wrap(err, "server failed")
	case <-ctx.Done():
	}

	log.Infof("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "failed to shut down")
	}
	if err := <-done; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server failed")
	}
	return nil
}
