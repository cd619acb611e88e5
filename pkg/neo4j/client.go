// Package neo4j wraps the Neo4j driver used by the graph mirror
package neo4j

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Config holds Neo4j connection settings
type Config struct {
	URI      string
	Username string
	Password string

	// Database selects a named database; empty means the server default
	Database string
}

// Client owns one driver shared by all sessions
type Client struct {
	driver   neo4j.DriverWithContext
	database string
}

// NewClient creates a driver and verifies the server is reachable
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.Username, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("neo4j: create driver: %w", err)
	}

	verifyCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := driver.VerifyConnectivity(verifyCtx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("neo4j: verify connectivity: %w", err)
	}

	return &Client{driver: driver, database: cfg.Database}, nil
}

// ExecuteWrite runs work in one managed write transaction, retried by the
// driver on transient cluster errors
func (c *Client) ExecuteWrite(ctx context.Context, work neo4j.ManagedTransactionWork) error {
	session := c.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: c.database,
	})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, work)
	return err
}

// Close closes the driver
func (c *Client) Close(ctx context.Context) error {
	if c.driver == nil {
		return nil
	}
	return c.driver.Close(ctx)
}
