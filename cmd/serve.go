package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/listsync/internal/server"
	"github.com/urfave/cli/v3"
)

// Handler builds the hook server handler: record events plus the bound sync action.
//
// Pushes through the hook server are always followed by a poll of the created record.
func (r *Runner) Handler() (*server.BasicRouter, error) {
	dispatcher, err := r.dispatcher(true)
	if err != nil {
		return nil, err
	}

	router := server.NewBasicRouter()
	router.Use(server.Recover(r.logger), server.LogRequests(r.logger))
	router.Handler(server.NewHookHandler(dispatcher, r.logger))
	return router, nil
}

// Serve runs the hook server until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	host := cmd.String("host")
	if host == "" {
		host = r.config.Server.Host
	}
	port := cmd.Int("port")
	if port == 0 {
		port = r.config.Server.Port
	}

	handler, err := r.Handler()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.ListenAndServe(ctx, fmt.Sprintf("%s:%d", host, port), handler, r.logger)
}
