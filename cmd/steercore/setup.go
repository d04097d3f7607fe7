package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/BrendanGraham14/steer-sub006/internal/config"
	"github.com/BrendanGraham14/steer-sub006/internal/mcp"
	"github.com/BrendanGraham14/steer-sub006/internal/provider"
	"github.com/BrendanGraham14/steer-sub006/internal/remoteworkspace"
	"github.com/BrendanGraham14/steer-sub006/internal/session"
	"github.com/BrendanGraham14/steer-sub006/internal/tool"
	"github.com/BrendanGraham14/steer-sub006/internal/tool/local"
)

// newSession wires the Tool Registry, Provider Clients, and SessionConfig
// together and constructs a Session Actor rooted at cwd.
func newSession(cwd string) (*session.Session, error) {
	sessionCfg := config.DefaultSessionConfig()
	if configFlag != "" {
		loaded, err := config.LoadSessionConfig(configFlag)
		if err != nil {
			return nil, err
		}
		sessionCfg = loaded
	}
	if planModeFlag {
		sessionCfg.ToolConfig.Visibility = "read_only"
	}

	registry := tool.NewRegistry()
	backend := local.NewBackend()
	backend.Register(&local.ReadTool{Cwd: cwd})
	backend.Register(&local.BashTool{})
	backend.Register(&local.EditTool{Cwd: cwd})
	backend.Register(&local.WriteTool{Cwd: cwd})
	registry.AddBackend(backend, tool.AllFilter())

	if mcpConfigFlag {
		mcpRegistry, err := mcp.NewRegistry(cwd)
		if err == nil {
			mcpRegistry.ConnectAll(context.Background())
			registry.AddBackend(mcp.NewBackend(mcpRegistry), tool.AllFilter())
		}
	}

	if sessionCfg.Workspace == config.WorkspaceRemote {
		addr := sessionCfg.Metadata["remote_workspace_addr"]
		if addr == "" {
			return nil, fmt.Errorf("session config selects workspace=remote but metadata.remote_workspace_addr is unset")
		}
		conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
		if err != nil {
			return nil, fmt.Errorf("dial remote workspace %s: %w", addr, err)
		}
		registry.AddBackend(remoteworkspace.NewBackend(remoteworkspace.NewClient(conn)), tool.AllFilter())
	}

	clients := provider.NewClients(nil)

	return session.New(session.Config{
		Registry:     registry,
		Clients:      clients,
		Cwd:          cwd,
		IsGit:        isGitRepo(cwd),
		InitialModel: modelFlag,
		Session:      sessionCfg,
	}), nil
}

func isGitRepo(cwd string) bool {
	_, err := os.Stat(cwd + "/.git")
	return err == nil
}

// newRootContext returns a context cancelled on SIGINT/SIGTERM, so an
// in-flight operation gets a clean opctx.CancelAndShutdown on exit.
func newRootContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		cancel()
	}()
	return ctx, cancel
}
