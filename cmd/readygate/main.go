// Readygate: implementation-readiness MCP server.
//
// A universal MCP server that integrates with any AI coding tool to gate
// implementation behind understanding: a questioning session must reach
// its confidence target, and the constitutional rules must pass, before
// code gets written.
//
// Usage:
//
//	readygate serve    # Start MCP server (stdio transport)
package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"

	rgserver "github.com/readygate/readygate/internal/server"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		if err := run(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "--help", "-h", "help":
		printUsage()
		os.Exit(0)
	case "--version", "-v", "version":
		fmt.Printf("readygate v%s\n", rgserver.Version)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func run() error {
	s, err := rgserver.New()
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	return server.ServeStdio(s)
}

func printUsage() {
	fmt.Println(`readygate - implementation-readiness MCP server

Usage:
  readygate serve      Start the MCP server (stdio transport)
  readygate version    Print version
  readygate help       Show this help

Add to your MCP host configuration:
  { "mcpServers": { "readygate": { "command": "readygate", "args": ["serve"] } } }`)
}
