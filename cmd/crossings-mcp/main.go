package main

import (
	"fmt"
	"log"
	"os"

	"github.com/ironsheep/stroke-crossings/internal/config"
	"github.com/ironsheep/stroke-crossings/internal/logging"
	"github.com/ironsheep/stroke-crossings/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("crossings-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("crossings-mcp - MCP server for stroke crossing detection")
			fmt.Println()
			fmt.Println("Usage: crossings-mcp [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables (also read from ./.env):")
			fmt.Println("  CROSSINGS_DEPTH, CROSSINGS_LINE_WIDTH, CROSSINGS_DEPTH_METRIC,")
			fmt.Println("  CROSSINGS_WHITE_LEVEL, CROSSINGS_WORKERS, CROSSINGS_MARKER_COLOR")
			fmt.Println("                               Tool defaults (see crossings --help)")
			fmt.Println("  CROSSINGS_LOG_LEVEL=debug    Enable debug logging")
			fmt.Println()
			fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
			fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
			return
		}
	}

	// Configure logging to stderr (stdout is for MCP protocol)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	if err := config.LoadEnvFile(".env"); err != nil {
		log.Printf("Ignoring .env: %v", err)
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	logger := logging.NewLogger("crossings-mcp", cfg.LogLevel)
	logger.Debug("starting",
		"version", Version,
		"built", BuildTime,
		"commit", GitCommit,
		"depth", cfg.DepthLimit,
		"line_width", cfg.LineWidth,
		"metric", cfg.DepthMetric,
		"workers", cfg.Workers)

	server.Version = Version
	srv := server.NewWithConfig(cfg, logger)
	if err := srv.Run(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
