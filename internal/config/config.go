// Package config holds the per-process configuration for a noobcash node,
// following the teacher's env-driven NodeConfig shape.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// NodeConfig holds all configuration for a noobcash node.
type NodeConfig struct {
	// Node identity
	NodeID string

	// Network
	Host         string   // this node's own base URL, e.g. http://10.0.0.1:5000
	Port         int      // HTTP listen port
	CoordinatorHost string // base URL of the bootstrap coordinator (peer path only)

	// Consensus parameters (spec §6 Configuration constants)
	BlockCapacity int // transactions per non-genesis block
	Difficulty    int // leading hex zeros required in block hash

	// Logging
	LogLevel string
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *NodeConfig {
	return &NodeConfig{
		NodeID:        "node",
		Host:          "http://127.0.0.1:5000",
		Port:          5000,
		BlockCapacity: 4,
		Difficulty:    5,
		LogLevel:      "info",
	}
}

// LoadFromEnv loads configuration from environment variables, overriding
// the defaults.
func LoadFromEnv() *NodeConfig {
	cfg := DefaultConfig()

	if v := os.Getenv("NODE_ID"); v != "" {
		cfg.NodeID = v
	}
	if v := os.Getenv("HOST"); v != "" {
		cfg.Host = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Port = port
		}
	}
	if v := os.Getenv("COORDINATOR_HOST"); v != "" {
		cfg.CoordinatorHost = v
	}
	if v := os.Getenv("BLOCK_CAPACITY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.BlockCapacity = n
		}
	}
	if v := os.Getenv("DIFFICULTY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Difficulty = n
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	return cfg
}

// Validate checks the configuration for obvious mistakes.
func (c *NodeConfig) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.BlockCapacity < 1 {
		return fmt.Errorf("block capacity must be >= 1, got %d", c.BlockCapacity)
	}
	if c.Difficulty < 0 {
		return fmt.Errorf("difficulty must be >= 0, got %d", c.Difficulty)
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("invalid log level: %s", c.LogLevel)
	}

	return nil
}

// String renders the configuration for startup logging.
func (c *NodeConfig) String() string {
	return fmt.Sprintf(`noobcash node configuration:
  Node ID:          %s
  Host:             %s
  Port:             %d
  Coordinator Host: %s
  Block Capacity:   %d
  Difficulty:       %d
  Log Level:        %s`,
		c.NodeID, c.Host, c.Port, c.CoordinatorHost, c.BlockCapacity, c.Difficulty, c.LogLevel)
}

// GetListenAddress returns the address to bind the HTTP server to.
func (c *NodeConfig) GetListenAddress() string {
	return fmt.Sprintf(":%d", c.Port)
}
