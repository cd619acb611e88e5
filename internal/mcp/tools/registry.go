// Package tools implements the MCP tools that trigger and inspect search runs.
package tools

import (
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Option registers one tool. A nil Option is skipped, which lets
// constructors opt out when their collaborator is not configured.
type Option func(*registry)

type registry struct {
	server *sdkmcp.Server
}

// Register applies the provided tool options
func Register(server *sdkmcp.Server, opts ...Option) {
	reg := &registry{server: server}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(reg)
	}
}
