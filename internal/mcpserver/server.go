package mcpserver

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"lantern/internal/api"
	"lantern/pkg/logging"
)

const subsystem = "MCP"

// Config configures the MCP endpoint.
type Config struct {
	Host    string
	Port    int
	Version string
}

// Server serves the lantern tools over MCP's SSE transport.
type Server struct {
	config Config
	tools  *Tools

	mu  sync.Mutex
	mcp *server.MCPServer
	sse *server.SSEServer
}

// New creates an MCP server for display.
func New(config Config, display api.DisplayAPI) *Server {
	if config.Host == "" {
		config.Host = "localhost"
	}
	if config.Port == 0 {
		config.Port = 8091
	}
	if config.Version == "" {
		config.Version = "dev"
	}
	return &Server{config: config, tools: NewTools(display)}
}

// MCPServer builds (once) and returns the underlying MCP server.
func (s *Server) MCPServer() *server.MCPServer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buildLocked()
}

func (s *Server) buildLocked() *server.MCPServer {
	if s.mcp == nil {
		s.mcp = server.NewMCPServer(
			"lantern",
			s.config.Version,
			server.WithToolCapabilities(true),
		)
		s.mcp.AddTools(s.tools.ServerTools()...)
	}
	return s.mcp
}

// Start serves SSE in the background.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.sse != nil {
		s.mu.Unlock()
		return fmt.Errorf("mcp server already started")
	}
	mcpServer := s.buildLocked()

	baseURL := fmt.Sprintf("http://%s:%d", s.config.Host, s.config.Port)
	sse := server.NewSSEServer(
		mcpServer,
		server.WithBaseURL(baseURL),
		server.WithSSEEndpoint("/sse"),
		server.WithMessageEndpoint("/message"),
		server.WithKeepAlive(true),
		server.WithKeepAliveInterval(30*time.Second),
	)
	s.sse = sse
	s.mu.Unlock()

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	logging.Info(subsystem, "Serving MCP tools on %s/sse", baseURL)
	go func() {
		if err := sse.Start(addr); err != nil && err != http.ErrServerClosed {
			logging.Error(subsystem, err, "SSE server error")
		}
	}()
	return nil
}

// Stop shuts the SSE server down.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	sse := s.sse
	s.sse = nil
	s.mu.Unlock()

	if sse == nil {
		return fmt.Errorf("mcp server not started")
	}
	logging.Info(subsystem, "Stopping MCP server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return sse.Shutdown(shutdownCtx)
}
