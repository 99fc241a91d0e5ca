// Package classify holds the resource classification engine: the decision
// policies that turn one resource's inventory attributes, aggregated
// utilization, and resolved unit prices into a finding with a monthly cost
// breakdown.
//
// Classifiers are deterministic given their collaborators and clock. They
// reach metrics and pricing only through the narrow interfaces below, so the
// decision logic is unit-testable with canned fakes and no resource pays for
// a catalog or metrics query it does not need.
package classify

import (
	"context"
	"math"

	"github.com/opscost/wastefinder/internal/metrics"
)

// MetricSource aggregates one metric over the lookback window.
// *metrics.Aggregator satisfies it.
type MetricSource interface {
	Aggregate(ctx context.Context, q metrics.Query) (float64, error)
}

// PriceSource resolves on-demand unit prices per price component.
// *pricing.Resolver satisfies it. Implementations must return 0, never an
// error, when a price cannot be resolved.
type PriceSource interface {
	StoragePrice(ctx context.Context, volumeType, region string) float64
	IOPSPrice(ctx context.Context, volumeType, region string) float64
	ThroughputPrice(ctx context.Context, region string) float64
	InstancePrice(ctx context.Context, instanceClass, region string) float64
}

// AttachmentFunc resolves the instance a volume is attached to, for operator
// triage on Unused findings.
type AttachmentFunc func(ctx context.Context, volumeID string) (string, error)

// roundCents rounds a currency amount to whole cents. Applied once per cost
// component so that the savings column is the exact sum of the rendered
// breakdown columns.
func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
