// Package bootstrap runs a liveview service: it validates the typed
// configuration, initializes logging and optional telemetry, starts the
// registered components in order, and shuts them down on SIGINT/SIGTERM.
//
//	app, err := bootstrap.NewApp(&cfg)
//	inst, err := app.Telemetry(ctx)
//	app.RegisterComponent(rosterComponent)
//	app.RegisterComponent(serverComponent)
//	err = app.Run(ctx)
package bootstrap
