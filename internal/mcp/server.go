// ABOUTME: MCP server setup for the weight-cut engine.
// ABOUTME: Wraps the MCP server around the shared application service.
package mcp

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/makeweight/internal/logging"
	"github.com/harperreed/makeweight/internal/service"
)

// Version is reported to MCP clients.
const Version = "1.0.0"

// Server wraps the MCP server with service access.
type Server struct {
	mcpServer *mcp.Server
	svc       *service.Service
	logger    *log.Logger
}

// NewServer creates a new MCP server backed by svc.
func NewServer(svc *service.Service, logger *log.Logger) (*Server, error) {
	if logger == nil {
		logger = logging.Discard()
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "makeweight",
			Version: Version,
		},
		nil,
	)

	s := &Server{
		mcpServer: mcpServer,
		svc:       svc,
		logger:    logger.With("component", "mcp"),
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Serve starts the MCP server using stdio transport.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("serving MCP on stdio")
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}
