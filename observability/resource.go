package observability

import (
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"

	"github.com/kbukum/liveview/version"
)

// Resource attribute keys specific to liveview processes.
const (
	AttrCommit       = "liveview.build.commit"
	AttrChecks = "liveview.engine.invariant_checks"
)

// Identity names the process that exports telemetry.
type Identity struct {
	Service     string
	Version     string
	Environment string
	// Checks reports whether the callback determinism checks run.
	Checks bool
}

// newResource describes the process: service, deployment, build and one
// instance id per process so that replicas stay apart.
func newResource(id Identity) (*resource.Resource, error) {
	ver := id.Version
	build := version.Get()
	if ver == "" {
		ver = build.Version
	}
	attrs := []attribute.KeyValue{
		semconv.ServiceName(id.Service),
		semconv.ServiceVersion(ver),
		semconv.ServiceInstanceID(uuid.NewString()),
		semconv.DeploymentEnvironment(id.Environment),
		attribute.Bool(AttrChecks, id.Checks),
	}
	if build.GitCommit != "" {
		attrs = append(attrs, attribute.String(AttrCommit, build.GitCommit))
	}
	return resource.Merge(resource.Default(), resource.NewSchemaless(attrs...))
}
