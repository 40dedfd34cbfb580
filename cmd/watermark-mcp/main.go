package main

import (
	"fmt"
	"log"
	"os"

	"github.com/ironsheep/watermark-tools-mcp/internal/config"
	"github.com/ironsheep/watermark-tools-mcp/internal/server"
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
			fmt.Printf("watermark-tools-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("watermark-tools-mcp - MCP server for DCT text watermarks")
			fmt.Println()
			fmt.Println("Usage: watermark-tools-mcp [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables:")
			fmt.Println("  WATERMARK_MCP_LOG_LEVEL=debug    Enable debug logging")
			fmt.Println("  WATERMARK_MCP_CONFIG=<file>      YAML file of profile overrides")
			fmt.Println()
			fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
			return
		}
	}

	// Configure logging to stderr (stdout is for MCP protocol)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	debug := os.Getenv("WATERMARK_MCP_LOG_LEVEL") == "debug"
	if debug {
		log.Printf("Watermark MCP Server v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
	}

	configPath := os.Getenv("WATERMARK_MCP_CONFIG")
	profiles, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}
	if debug {
		log.Printf("Profiles %v (default %s) from %q", profiles.Names(), profiles.DefaultName(), configPath)
	}

	server.Version = Version
	srv := server.New(profiles, debug)
	if err := srv.Run(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
