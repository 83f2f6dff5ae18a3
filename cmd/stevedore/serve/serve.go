// Package servecmd runs the MCP server over stdio.
package servecmd

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"stevedore/config"
	"stevedore/internal/engine"
	"stevedore/internal/mcp"
	"stevedore/internal/server"
	"stevedore/internal/telemetry"

	"github.com/spf13/cobra"
)

// Cmd serves MCP over stdin/stdout until the client disconnects or the
// process receives an interrupt. The host and context flags live on the
// root command so doctor can share them.
func Cmd(host, contextName *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the MCP protocol over stdio",
		Long: "Serve speaks MCP (JSON-RPC 2.0, one message per line) on stdin and stdout.\n" +
			"All logging goes to stderr; stdout carries only protocol frames.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, *host, *contextName)
		},
	}
}

func run(ctx context.Context, hostFlag, contextName string) error {
	engCtx, err := config.Resolve(contextName)
	if err != nil {
		return err
	}

	host := engCtx.Host
	if os.Getenv("DOCKER_HOST") != "" {
		// DOCKER_HOST overrides the context host; Connect reads the
		// variable when no explicit target is given.
		host = ""
	}
	if hostFlag != "" {
		host = hostFlag
	}

	opts := []engine.Option{engine.WithHost(host)}
	if engCtx.AcceptNewHostKeys {
		opts = append(opts, engine.WithAcceptNewHostKeys())
	}

	client, err := engine.Connect(ctx, opts...)
	if err != nil {
		return err
	}
	defer client.Close()

	tp := telemetry.NewProvider()
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			slog.Warn("Telemetry shutdown failed.", "error", err)
		}
	}()

	srv := server.New(client, tp)
	slog.Info("Serving MCP on stdio.", "host", displayHost(client))

	err = mcp.NewServer(srv, os.Stdin, os.Stdout).Run(ctx)
	if errors.Is(err, context.Canceled) {
		// Interrupt is the normal way for a supervisor to end the session.
		return nil
	}
	return err
}

func displayHost(client *engine.Client) string {
	if h := client.Host(); h != "" {
		return h
	}
	return "default socket"
}
