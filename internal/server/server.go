package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/ironsheep/stroke-crossings/internal/config"
	"github.com/ironsheep/stroke-crossings/internal/imaging"
	"github.com/ironsheep/stroke-crossings/internal/logging"
)

// Name and Version are reported in the initialize handshake.
var (
	Name    = "stroke-crossings"
	Version = "0.1.0"
)

const (
	jsonrpcVersion  = "2.0"
	protocolVersion = "2024-11-05"

	// maxRequestBytes caps a single request line.
	maxRequestBytes = 1 << 20
)

// JSON-RPC error codes returned by the server.
const (
	codeParseError     = -32700
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeToolFailed     = -32000
)

// Server answers MCP requests for the crossing tools. Decoded images are
// cached per path for the lifetime of the server.
type Server struct {
	cache  *imaging.ImageCache
	cfg    *config.Config
	logger *logging.Logger
}

// MCPRequest is one line of client input. ID is nil for notifications.
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// MCPResponse carries either Result or Error, never both.
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

// MCPError is the error member of a response. Data holds the Go error text.
type MCPError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// New creates a server with the default configuration, logging warnings and
// errors to stderr.
func New() *Server {
	return NewWithConfig(config.Default(), logging.NewLogger(Name, logging.LevelWarn))
}

// NewWithConfig creates a server whose tool defaults (depth limit, line
// width, depth metric, white level, workers, marker colour) come from cfg.
// Tool arguments override them per call.
func NewWithConfig(cfg *config.Config, logger *logging.Logger) *Server {
	return &Server{
		cache:  imaging.NewImageCache(),
		cfg:    cfg,
		logger: logger,
	}
}

// Run serves stdin to stdout. Logs go to stderr.
func (s *Server) Run() error {
	return s.Serve(context.Background(), os.Stdin, os.Stdout)
}

// Serve reads one JSON-RPC request per line from r and writes responses to
// w until r is exhausted. ctx bounds every tool call.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	lines := bufio.NewScanner(r)
	lines.Buffer(make([]byte, 0, 64*1024), maxRequestBytes)
	enc := json.NewEncoder(w)

	for lines.Scan() {
		line := lines.Bytes()
		if len(line) == 0 {
			continue
		}

		var req MCPRequest
		if err := json.Unmarshal(line, &req); err != nil {
			s.logger.Warn("failed to parse request", "error", err)
			s.write(enc, s.errorResponse(nil, codeParseError, "Parse error", err.Error()))
			continue
		}
		if resp := s.handleRequest(ctx, &req); resp != nil {
			s.write(enc, resp)
		}
	}

	if err := lines.Err(); err != nil {
		return fmt.Errorf("reading requests: %w", err)
	}
	return nil
}

func (s *Server) write(enc *json.Encoder, resp *MCPResponse) {
	if err := enc.Encode(resp); err != nil {
		s.logger.Error("failed to encode response", "id", resp.ID, "error", err)
	}
}

// handleRequest dispatches on the method name. Notifications get no response.
func (s *Server) handleRequest(ctx context.Context, req *MCPRequest) *MCPResponse {
	s.logger.Debug("request", "method", req.Method, "id", req.ID)

	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "notifications/initialized":
		return nil
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(ctx, req)
	case "ping":
		return okResponse(req.ID, map[string]interface{}{})
	default:
		return s.errorResponse(req.ID, codeMethodNotFound, fmt.Sprintf("Method not found: %s", req.Method), "")
	}
}

func (s *Server) handleInitialize(req *MCPRequest) *MCPResponse {
	return okResponse(req.ID, map[string]interface{}{
		"protocolVersion": protocolVersion,
		"capabilities": map[string]interface{}{
			"tools": map[string]interface{}{},
		},
		"serverInfo": map[string]interface{}{
			"name":    Name,
			"version": Version,
		},
	})
}

func okResponse(id interface{}, v interface{}) *MCPResponse {
	return &MCPResponse{JSONRPC: jsonrpcVersion, ID: id, Result: v}
}
