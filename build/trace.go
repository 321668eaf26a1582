package build

import (
	"context"

	"github.com/PumbleCorp/invader/internal/metrics"
	"go.opentelemetry.io/otel"
)

// tracer is the package-wide OpenTelemetry tracer for the build pipeline.
// With no SDK registered (the default for library callers and every test
// in this package) otel.Tracer returns a no-op implementation, so every
// span below costs nothing unless a caller wires up a real provider.
var tracer = otel.Tracer("github.com/PumbleCorp/invader/build")

// stage wraps fn in a span named name and a StageDuration timer, the same
// per-operation shape claircore uses for its datastore calls: one entry
// point, timed and traced, regardless of whether anything is listening.
func stage(ctx context.Context, name string, fn func(context.Context) error) error {
	ctx, span := tracer.Start(ctx, name)
	defer span.End()

	err := metrics.ObserveStage(name, func() error { return fn(ctx) })
	if err != nil {
		span.RecordError(err)
	}
	return err
}
