package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/peterkuimelis/evogame/internal/config"
	evomcp "github.com/peterkuimelis/evogame/internal/mcp"
	"github.com/peterkuimelis/evogame/internal/telemetry"
)

func main() {
	fs := flag.NewFlagSet("evogame-mcp", flag.ExitOnError)
	seat := fs.Int("seat", 0, "default 0-based seat played through the tools")
	cfg, err := config.Parse(fs, os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "seat" {
			cfg.AgentSeat = *seat
		}
	})
	// stdout carries the MCP protocol; the logger writes to stderr.
	logger := cfg.NewLogger()

	shutdown, err := telemetry.Setup(context.Background(), "evogame-mcp", cfg.OTLPEndpoint)
	if err != nil {
		logger.WithError(err).Warn("tracing disabled")
	} else {
		defer shutdown(context.Background())
	}

	tools := evomcp.NewTools(cfg, logger)
	defer tools.Close()

	s := server.NewMCPServer("evogame", "1.0.0")
	tools.RegisterTools(s)

	logger.WithField("rules", cfg.Summary()).Info("serving MCP over stdio")
	if err := server.ServeStdio(s); err != nil {
		logger.WithError(err).Error("serve stdio")
		os.Exit(1)
	}
}
