package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/claude/exlog/internal/config"
	"github.com/claude/exlog/internal/mcp"
	"github.com/claude/exlog/internal/storage"
	"github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via -ldflags.
var Version = "dev"

// Speaks MCP over stdio. With -server the tools call a running exlog
// instance over its REST API; otherwise the store from the config file is
// opened directly.
func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	serverURL := flag.String("server", "", "base URL of a running exlog server (remote mode)")
	flag.Parse()

	// stdout carries the MCP transport; logs go to stderr.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	var ds mcp.DataSource

	if *serverURL != "" {
		ds = mcp.NewHTTPClient(*serverURL)
		log.Info("exlog-mcp starting", "version", Version, "mode", "remote", "server", *serverURL)
	} else {
		cfg, err := config.Load(*configPath)
		if err != nil {
			log.Error("failed to load config", "error", err)
			os.Exit(1)
		}

		switch cfg.Database.Driver {
		case config.DriverPostgres:
			db, err := storage.New(context.Background(), cfg.Database.DSN())
			if err != nil {
				log.Error("failed to connect database", "error", err)
				os.Exit(1)
			}
			defer db.Close()
			ds = db
		case config.DriverSQLite:
			lite, err := storage.OpenLite(cfg.Database.Path)
			if err != nil {
				log.Error("failed to open database", "path", cfg.Database.Path, "error", err)
				os.Exit(1)
			}
			defer lite.Close()
			ds = lite
		}
		log.Info("exlog-mcp starting", "version", Version, "mode", "local", "driver", cfg.Database.Driver)
	}

	s := mcp.New(ds, Version, log)
	if err := server.ServeStdio(s); err != nil {
		log.Error("mcp server error", "error", err)
		os.Exit(1)
	}
}
