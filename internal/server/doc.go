// Package server implements the MCP (Model Context Protocol) server for the
// stroke crossing detector.
//
// This package provides a JSON-RPC 2.0 server that exposes crossing detection
// through the MCP protocol, so that MCP-compatible clients can count and
// locate junctions in scanned handwriting, diagrams and other line drawings.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Basic Image Information:
//   - image_load: Load image and get metadata
//   - image_binarize: Show the foreground mask the detector works on
//
// Crossing Detection:
//   - image_count_crossings: Count crossing pixels
//   - image_find_crossings: List crossing pixels with frontier sizes
//   - image_annotate_crossings: Mark crossings on the image
//
// Every detection tool accepts depth_limit, line_width, depth_metric,
// white_level and an optional region. Omitted values fall back to the
// server's configuration (see internal/config).
//
// # Image Caching
//
// The server maintains an in-memory cache of loaded images. Images are cached
// by path and reused across multiple tool calls, avoiding redundant disk I/O.
// The cache persists for the lifetime of the server process.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// # Usage
//
// The server is typically started by an MCP client:
//
//	srv := server.NewWithConfig(cfg, logging.NewLogger("crossings-mcp", cfg.LogLevel))
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
