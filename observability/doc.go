// Package observability wires OpenTelemetry into the collection engine.
//
// Instruments records source mutations, emitted stage events, subscriber
// failures and delivery latency, and opens one span per source mutation.
// A nil *Instruments is valid and records nothing, which is the engine
// default.
//
// # Usage
//
//	id := observability.Identity{Service: "liveview", Environment: "production"}
//	mp, _ := observability.InitMeter(ctx, cfg.Telemetry, id)
//	defer mp.Shutdown(ctx)
//	inst, _ := observability.NewInstruments(observability.Meter("liveview"), observability.Tracer("liveview"))
//	src := collection.NewSource[*Member](collection.WithInstruments(inst))
package observability
