// Command atlasd is a minimal host binary wiring an engine.Engine, its
// asset registry, and an interactive console together, the way a dragonfly
// server binary wires a server.Config, its world providers, and its
// console.Console.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/atlas-engine/atlas/server/asset"
	"github.com/atlas-engine/atlas/server/cmd/builtin"
	"github.com/atlas-engine/atlas/server/console"
	"github.com/atlas-engine/atlas/server/engine"
)

func main() {
	configPath := flag.String("config", "atlas.toml", "path to the engine config file")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if _, err := os.Stat(*configPath); os.IsNotExist(err) {
		if err := engine.WriteDefault(*configPath); err != nil {
			log.Error("write default config", "error", err)
			os.Exit(1)
		}
		log.Info("wrote default config", "path", *configPath)
	}

	cfg, err := engine.LoadConfig(*configPath)
	if err != nil {
		log.Error("load config", "error", err)
		os.Exit(1)
	}

	e, err := engine.New(cfg, log)
	if err != nil {
		log.Error("construct engine", "error", err)
		os.Exit(1)
	}
	e.InitCore()
	e.InitRender()
	e.InitUI()
	e.InitECS()
	e.InitNetworking()
	e.InitEditor()

	registry := asset.NewRegistry(log)
	if cfg.AssetCachePath != "" {
		if err := registry.OpenCache(cfg.AssetCachePath); err != nil {
			log.Warn("open asset cache", "error", err)
		} else {
			defer registry.Close()
		}
	}
	if cfg.AssetRoot != "" {
		if err := registry.Scan(cfg.AssetRoot); err != nil {
			log.Warn("scan asset root", "path", cfg.AssetRoot, "error", err)
		}
	}

	builtin.Register(e)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go console.New(log).Run(ctx)

	go func() {
		<-ctx.Done()
		e.Shutdown()
	}()

	if err := e.Run(); err != nil {
		log.Error("engine run", "error", err)
		os.Exit(1)
	}
}
