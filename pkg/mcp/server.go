// Package mcp exposes the taskforce MCP server for embedding in other programs.
package mcp

import (
	"go.uber.org/zap"

	infra "github.com/felixgeelhaar/taskforce/internal/infrastructure/mcp"
)

// Server exposes the MCP server implementation from the infrastructure layer.
type Server = infra.Server

// Decomposer is the service behind the MCP tools.
type Decomposer = infra.Decomposer

// NewServer constructs an MCP server serving svc.
func NewServer(svc Decomposer, logger *zap.Logger) *Server {
	return infra.NewServer(svc, logger)
}
