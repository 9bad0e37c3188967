// Package main provides the ansible-write-mcp binary, an MCP server over
// stdio for module lookup and playbook validation.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/mahespth/ansible-write/pkg/config"
	awmcp "github.com/mahespth/ansible-write/pkg/mcp"
	"github.com/mahespth/ansible-write/pkg/modules"
	"github.com/mahespth/ansible-write/pkg/providers"
)

var version = "dev"

func main() {
	cfg, err := config.Load(config.DefaultPath(), false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	// stdout carries the protocol.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	var provider modules.Provider
	if cfg.ModulesFile != "" {
		s, err := modules.LoadStaticFile(cfg.ModulesFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		provider = s
	} else {
		executor := &providers.RealExecutor{Logger: logger}
		provider = modules.NewCache(modules.NewAnsibleDoc(executor, cfg.AnsibleDocBinary, logger))
	}

	s := awmcp.NewServer(version, provider)
	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
