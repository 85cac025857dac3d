// cmd/mcp-server/main.go: Standalone HTTP MCP server for dimplot
//
// Exposes the dimplot tools (expand, parse, solve, contour, ...) as an HTTP
// endpoint for AI agent frameworks. Every call is stateless: dimension and
// user functions travel with the request.
//
// Usage:
//
//	go run ./cmd/mcp-server --port 8080
//
// Tool call endpoint: POST /tool
// Schema endpoint:    GET  /schema
// Health endpoint:    GET  /health
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/njchilds90/dimplot/internal/cli/config"
	"github.com/njchilds90/dimplot/internal/server"
)

func main() {
	port := pflag.IntP("port", "p", 8080, "Port to listen on")
	level := pflag.String("log-level", "info", "Log level (debug|info|warn|error)")
	pflag.Parse()

	logger, err := config.NewLogger(os.Stderr, *level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Serve(ctx, fmt.Sprintf(":%d", *port), logger); err != nil {
		logger.Error("server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}
