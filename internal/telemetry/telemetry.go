package telemetry

import (
	"context"

	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
)

var (
	MSteps    = stats.Int64("percept/steps", "Emitted training point-steps", stats.UnitDimensionless)
	MUpdates  = stats.Int64("percept/weight_updates", "Steps that changed the weights", stats.UnitDimensionless)
	MEpochs   = stats.Int64("percept/epochs", "Completed training epochs", stats.UnitDimensionless)
	MSessions = stats.Int64("percept/sessions", "Started training sessions", stats.UnitDimensionless)
)

var DefaultViews = []*view.View{
	{Name: "percept/steps", Description: "Emitted training point-steps", Measure: MSteps, Aggregation: view.Count()},
	{Name: "percept/weight_updates", Description: "Steps that changed the weights", Measure: MUpdates, Aggregation: view.Count()},
	{Name: "percept/epochs", Description: "Completed training epochs", Measure: MEpochs, Aggregation: view.Count()},
	{Name: "percept/sessions", Description: "Started training sessions", Measure: MSessions, Aggregation: view.Count()},
}

func RegisterViews() error {
	return view.Register(DefaultViews...)
}

func RecordStep(ctx context.Context, updated bool, epochDone bool) {
	ms := []stats.Measurement{MSteps.M(1)}
	if updated {
		ms = append(ms, MUpdates.M(1))
	}
	if epochDone {
		ms = append(ms, MEpochs.M(1))
	}
	stats.Record(ctx, ms...)
}

func RecordSession(ctx context.Context) {
	stats.Record(ctx, MSessions.M(1))
}
