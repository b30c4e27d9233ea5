package ports

import (
	"context"
	"time"
)

//go:generate mockgen -source=telemetry.go -destination=mocks/mock_telemetry.go -package=mocks

// Tracer is the entry point for creating spans.
type Tracer interface {
	// Start creates a new span.
	Start(ctx context.Context, name string) (context.Context, Span)
	// EmitPlan signals the targets planned for execution, in order.
	EmitPlan(ctx context.Context, targets []string)
}

// Span represents the run of one target.
type Span interface {
	// End completes the span.
	End()
	// RecordError records an error for the span.
	RecordError(err error)
	// SetAttribute adds a key-value pair to the span.
	SetAttribute(key string, value any)
}

// Renderer presents target progress.
type Renderer interface {
	// OnPlanEmit is called once the plan is known.
	OnPlanEmit(targets []string)

	// OnTargetStart is called when a target begins running.
	OnTargetStart(spanID, name string, startTime time.Time)

	// OnTargetComplete is called when a target finishes.
	// err is nil on success.
	OnTargetComplete(spanID string, endTime time.Time, err error)
}
