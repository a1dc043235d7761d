// cmd/mcp-server/main.go: Standalone HTTP MCP server for symdiff
//
// Exposes the symdiff tools and the derive/simplify API over HTTP for AI
// agent frameworks.
//
// Usage:
//
//	go run ./cmd/mcp-server -config symdiff.yaml -port 8080
//
// Tool call endpoint: POST /tool
// Schema endpoint:    GET  /schema
// Health endpoint:    GET  /health
// Derive endpoint:    POST /v1/derive
// Simplify endpoint:  POST /v1/simplify
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/njchilds90/symdiff/internal/config"
	"github.com/njchilds90/symdiff/internal/logging"
	"github.com/njchilds90/symdiff/internal/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "mcp-server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "Path to a YAML config file")
	port := flag.String("port", "", "Port to listen on (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *port != "" {
		cfg.Server.Port = *port
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	logger := logging.Init(cfg.Logging)
	if !cfg.Server.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	logger.Info("routes",
		"tool", "POST /tool",
		"schema", "GET /schema",
		"health", "GET /health",
		"derive", "POST /v1/derive",
		"simplify", "POST /v1/simplify",
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.Serve(ctx, cfg, logger)
}
