// Command liveview serves a member roster whose live views are exposed
// over HTTP and streamed as Server-Sent Events.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/kbukum/liveview/bootstrap"
	"github.com/kbukum/liveview/collection"
	"github.com/kbukum/liveview/component"
	"github.com/kbukum/liveview/config"
	"github.com/kbukum/liveview/internal/memberapi"
	"github.com/kbukum/liveview/internal/server"
	"github.com/kbukum/liveview/logger"
	"github.com/kbukum/liveview/sse"
)

const serviceName = "liveview"

func main() {
	configFile := flag.String("config", "", "path to the config file")
	envFile := flag.String("env", "", "path to a .env file")
	flag.Parse()

	if err := run(context.Background(), *configFile, *envFile); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", serviceName, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configFile, envFile string) error {
	var cfg AppConfig
	opts := []config.LoaderOption{config.WithEnvPrefix("LIVEVIEW")}
	if configFile != "" {
		opts = append(opts, config.WithConfigFile(configFile))
	}
	if envFile != "" {
		opts = append(opts, config.WithEnvFile(envFile))
	}
	if err := config.LoadConfig(serviceName, &cfg, opts...); err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Name == "" {
		cfg.Name = serviceName
	}

	app, err := bootstrap.NewApp(&cfg)
	if err != nil {
		return err
	}
	inst, err := app.Telemetry(ctx)
	if err != nil {
		return err
	}

	roster, err := memberapi.NewRoster(app.Logger,
		collection.WithEngineConfig(cfg.Engine),
		collection.WithInstruments(inst),
	)
	if err != nil {
		return fmt.Errorf("create roster: %w", err)
	}
	seeded := roster.Seed(cfg.Members)
	app.Logger.Info("roster seeded", logger.Fields(logger.FieldCount, seeded))

	events := sse.NewComponent("/events")
	roster.Publish(events)

	srv := server.New(cfg.Server, app.Logger)
	srv.ApplyMiddleware()
	srv.RegisterDefaultEndpoints(cfg.Name, app.Components.HealthAll)
	memberapi.NewHandler(roster, events).Register(srv.GinEngine())

	// Stopped in reverse: the hub closes open streams before the server
	// waits for its connections to drain.
	for _, c := range []component.Component{roster, server.NewComponent(srv), events} {
		if err := app.RegisterComponent(c); err != nil {
			return err
		}
	}
	return app.Run(ctx)
}
