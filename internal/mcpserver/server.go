// Package mcpserver exposes the calculator to MCP clients as tools.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mitchellh/mapstructure"

	"github.com/zephyrtronium/calculator"
	"github.com/zephyrtronium/calculator/internal/dto"
	"github.com/zephyrtronium/calculator/internal/logging"
	"github.com/zephyrtronium/calculator/internal/metrics"
	"github.com/zephyrtronium/calculator/session"
)

// symbolsURI names the resource listing accepted keys.
const symbolsURI = "calculator://symbols"

// Server wraps a session manager and exposes it as an MCP server.
type Server struct {
	sessions  *session.Manager
	metrics   *metrics.Recorder
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger configures a logger for tool calls.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics records evaluations in rec.
func WithMetrics(rec *metrics.Recorder) Option {
	return func(s *Server) {
		s.metrics = rec
	}
}

// NewServer creates a new MCP server over sessions.
func NewServer(sessions *session.Manager, version string, opts ...Option) *Server {
	s := &Server{
		sessions:  sessions,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("calculator", version),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio serves MCP on Stdin and Stdout until the input closes.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// MCPServer returns the underlying server, e.g. for other transports.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

func (s *Server) registerTools() {
	evaluateTool := mcp.NewTool("evaluate",
		mcp.WithDescription("Evaluate an arithmetic expression such as \"2+3×4\" or \"sqrt(16\". Missing closing brackets are added. Trig functions use radians."),
		mcp.WithString("expression", mcp.Required(), mcp.Description("The expression to evaluate")),
		mcp.WithOutputSchema[dto.EvaluateResponse](),
	)
	s.mcpServer.AddTool(evaluateTool, mcp.NewStructuredToolHandler(s.handleEvaluate))

	pressTool := mcp.NewTool("press_keys",
		mcp.WithDescription("Press calculator keys in a session. Keys are typed text like \"12+sin(30\"; each \"=\" commits the expression. The session is created on first use and keeps its history."),
		mcp.WithString("session", mcp.Required(), mcp.Description("Session ID")),
		mcp.WithString("keys", mcp.Required(), mcp.Description("Keys to press, in order")),
		mcp.WithOutputSchema[dto.SnapshotResponse](),
	)
	s.mcpServer.AddTool(pressTool, mcp.NewStructuredToolHandler(s.handlePressKeys))

	s.mcpServer.AddTool(mcp.NewTool("clear_session",
		mcp.WithDescription("Delete a session and its history."),
		mcp.WithString("session", mcp.Required(), mcp.Description("Session ID")),
	), s.handleClearSession)
}

func (s *Server) handleEvaluate(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (dto.EvaluateResponse, error) {
	var req dto.EvaluateRequest
	if err := mapstructure.Decode(args, &req); err != nil {
		return dto.EvaluateResponse{}, fmt.Errorf("invalid arguments: %w", err)
	}
	if strings.TrimSpace(req.Expression) == "" {
		return dto.EvaluateResponse{}, errors.New("expression is required")
	}

	start := time.Now()
	v, err := calculator.EvalString(req.Expression)
	if s.metrics != nil {
		s.metrics.ObserveEvaluate(start, err)
	}
	if err != nil {
		s.logger.Debug("MCP evaluate failed", "expression", req.Expression, "error", err)
		return dto.EvaluateResponse{}, fmt.Errorf("%s error: %w", calculator.KindOf(err), err)
	}
	return dto.NewEvaluate(req.Expression, v), nil
}

func (s *Server) handlePressKeys(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (dto.SnapshotResponse, error) {
	var req dto.PressKeysRequest
	if err := mapstructure.Decode(args, &req); err != nil {
		return dto.SnapshotResponse{}, fmt.Errorf("invalid arguments: %w", err)
	}
	acts, err := dto.ParseKeys(req.Keys)
	if err != nil {
		return dto.SnapshotResponse{}, fmt.Errorf("keys rejected: %w", err)
	}
	snap, err := s.sessions.Dispatch(ctx, req.Session, acts...)
	if err != nil {
		s.logger.Warn("MCP press_keys failed", "session_id", req.Session, "error", err)
		return dto.SnapshotResponse{}, err
	}
	return dto.NewSnapshot(req.Session, snap), nil
}

func (s *Server) handleClearSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("session")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.sessions.Delete(ctx, id); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("clear failed: %v", err)), nil
	}
	return mcp.NewToolResultText("session " + id + " deleted"), nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(symbolsURI, "Calculator keys",
		mcp.WithResourceDescription("Symbol keys accepted by press_keys besides digits"),
		mcp.WithMIMEType("application/json"),
	), s.handleSymbols)
}

func (s *Server) handleSymbols(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	b, err := json.Marshal(map[string][]string{
		"symbols":   calculator.Symbols(),
		"functions": calculator.Funcs(),
	})
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      symbolsURI,
			MIMEType: "application/json",
			Text:     string(b),
		},
	}, nil
}
