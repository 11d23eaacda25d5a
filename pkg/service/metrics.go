package service

import (
	"context"

	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"
)

var (
	evaluationCount = stats.Int64("infix/evaluations", "Number of expression evaluations", stats.UnitDimensionless)

	notationKey = mustNewTagKey("notation")
	statusKey   = mustNewTagKey("status")
)

// Views describes the measurements exported by the service. Register these
// alongside the transport views before serving.
var Views = []*view.View{
	{
		Name:        "infix/evaluations",
		Description: "Number of expression evaluations by notation and status",
		Measure:     evaluationCount,
		TagKeys:     []tag.Key{notationKey, statusKey},
		Aggregation: view.Count(),
	},
}

func recordEvaluation(ctx context.Context, notation, status string) {
	_ = stats.RecordWithTags(ctx,
		[]tag.Mutator{
			tag.Upsert(notationKey, notation),
			tag.Upsert(statusKey, status),
		},
		evaluationCount.M(1),
	)
}

func mustNewTagKey(name string) tag.Key {
	k, err := tag.NewKey(name)
	if err != nil {
		panic(err)
	}
	return k
}
