// Package mcpserver exposes the Salesforce adapter as MCP tools over stdio or
// SSE.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"sfmcp/internal/adapter"
	"sfmcp/internal/metrics"
	"sfmcp/pkg/logging"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const subsystem = "MCPServer"

// Config holds the server identity and the SSE listen address.
type Config struct {
	Name    string
	Version string
	Host    string
	Port    int
}

// Tools is the set of operations the server exposes.
type Tools interface {
	ListObjects(ctx context.Context) (*adapter.ListObjectsResult, error)
	DescribeObject(ctx context.Context, objectName string) (*adapter.DescribeObjectResult, error)
	ExecuteSOQLQuery(ctx context.Context, query string) (*adapter.QueryResult, error)
}

type toolFunc func(ctx context.Context, request mcp.CallToolRequest) (any, error)

// Server registers the Salesforce tools on an MCP server.
type Server struct {
	config   Config
	tools    Tools
	recorder *metrics.Recorder
	mcp      *server.MCPServer

	handlers map[string]server.ToolHandlerFunc
	order    []mcp.Tool
	ready    atomic.Bool
}

// New builds a Server. recorder may be nil.
func New(config Config, tools Tools, recorder *metrics.Recorder) *Server {
	if config.Name == "" {
		config.Name = "sfmcp"
	}
	if config.Version == "" {
		config.Version = "dev"
	}
	if config.Host == "" {
		config.Host = "localhost"
	}
	if config.Port == 0 {
		config.Port = 8090
	}

	s := &Server{
		config:   config,
		tools:    tools,
		recorder: recorder,
		mcp: server.NewMCPServer(
			config.Name,
			config.Version,
			server.WithToolCapabilities(true),
		),
		handlers: make(map[string]server.ToolHandlerFunc),
	}

	s.register(listObjectsTool(), s.handleListObjects)
	s.register(describeObjectTool(), s.handleDescribeObject)
	s.register(executeSOQLQueryTool(), s.handleExecuteSOQLQuery)

	return s
}

func (s *Server) register(tool mcp.Tool, fn toolFunc) {
	handler := s.instrument(tool.Name, fn)
	s.handlers[tool.Name] = handler
	s.order = append(s.order, tool)
	s.mcp.AddTool(tool, handler)
}

// MCPServer returns the underlying MCP server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// ListTools returns the registered tools in registration order.
func (s *Server) ListTools() []mcp.Tool {
	out := make([]mcp.Tool, len(s.order))
	copy(out, s.order)
	return out
}

// CallTool runs a tool in-process, exactly as an MCP client call would.
func (s *Server) CallTool(ctx context.Context, name string, args map[string]any) (*mcp.CallToolResult, error) {
	handler, ok := s.handlers[name]
	if !ok {
		return nil, fmt.Errorf("tool %q not found", name)
	}

	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return handler(ctx, req)
}

func (s *Server) handleListObjects(ctx context.Context, _ mcp.CallToolRequest) (any, error) {
	return s.tools.ListObjects(ctx)
}

func (s *Server) handleDescribeObject(ctx context.Context, request mcp.CallToolRequest) (any, error) {
	return s.tools.DescribeObject(ctx, request.GetString("object_name", ""))
}

func (s *Server) handleExecuteSOQLQuery(ctx context.Context, request mcp.CallToolRequest) (any, error) {
	return s.tools.ExecuteSOQLQuery(ctx, request.GetString("query", ""))
}

// instrument turns a typed tool function into an MCP handler. Failures become
// error results carrying the message unchanged; they are never protocol errors.
func (s *Server) instrument(name string, fn toolFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		log := logging.With(subsystem,
			slog.String("tool", name),
			slog.String("call_id", uuid.NewString()),
		)
		log.Debug("Tool call started")

		start := time.Now()
		out, err := fn(ctx, request)
		elapsed := time.Since(start)

		if err != nil {
			kind := adapter.KindOf(err)
			s.recorder.ObserveCall(name, kind.String(), elapsed)
			log.Warn("Tool call failed after %s (%s): %v", elapsed, kind, err)
			return mcp.NewToolResultError(err.Error()), nil
		}

		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			s.recorder.ObserveCall(name, adapter.KindTransport.String(), elapsed)
			log.Error(err, "Failed to encode tool result")
			return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
		}

		s.recorder.ObserveCall(name, "", elapsed)
		log.Info("Tool call completed in %s", elapsed)
		return mcp.NewToolResultText(string(data)), nil
	}
}

// ServeStdio serves MCP over the given streams until ctx is cancelled or
// stdin is closed.
func (s *Server) ServeStdio(ctx context.Context, stdin io.Reader, stdout io.Writer) error {
	logging.Info(subsystem, "Serving %d tools over stdio", len(s.order))
	s.ready.Store(true)
	defer s.ready.Store(false)

	err := server.NewStdioServer(s.mcp).Listen(ctx, stdin, stdout)
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, io.EOF) {
		return fmt.Errorf("stdio server: %w", err)
	}
	return nil
}

// Addr returns the configured SSE listen address.
func (s *Server) Addr() string {
	return net.JoinHostPort(s.config.Host, fmt.Sprint(s.config.Port))
}

// ServeSSE listens on the configured address and serves until ctx is
// cancelled, then shuts down gracefully.
func (s *Server) ServeSSE(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.Addr())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.Addr(), err)
	}
	return s.serveSSE(ctx, ln)
}

func (s *Server) serveSSE(ctx context.Context, ln net.Listener) error {
	baseURL := "http://" + ln.Addr().String()

	// Open SSE streams end with ctx, so Shutdown does not wait on them.
	srv := &http.Server{
		Handler:           s.Handler(baseURL),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	errCh := make(chan error, 1)
	go func() {
		logging.Info(subsystem, "Serving %d tools over SSE at %s/sse", len(s.order), baseURL)
		errCh <- srv.Serve(ln)
	}()
	s.ready.Store(true)

	select {
	case err := <-errCh:
		s.ready.Store(false)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("sse server: %w", err)
	case <-ctx.Done():
	}

	s.ready.Store(false)
	logging.Info(subsystem, "Stopping SSE server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error(subsystem, err, "Error shutting down SSE server")
		return err
	}
	return nil
}
