// Package metrics aggregates CloudWatch utilization telemetry into scalar
// values over a trailing lookback window.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

// Statistic selects which CloudWatch statistic Aggregate returns.
type Statistic string

const (
	StatisticSum Statistic = "sum"
	StatisticAvg Statistic = "avg"
	StatisticMax Statistic = "max"
)

// Query describes one metric aggregation request.
type Query struct {
	Namespace      string
	MetricName     string
	DimensionName  string
	DimensionValue string
	Statistic      Statistic

	// LookbackDays sets the trailing window [now-LookbackDays, now].
	LookbackDays int

	// PeriodSeconds is the CloudWatch aggregation period. A period covering
	// the whole window yields a single datapoint.
	PeriodSeconds int32
}

// CloudWatchClient is the subset of CloudWatch operations the aggregator
// uses. The real *cloudwatch.Client satisfies it.
type CloudWatchClient interface {
	GetMetricStatistics(
		ctx context.Context,
		params *cloudwatch.GetMetricStatisticsInput,
		optFns ...func(*cloudwatch.Options),
	) (*cloudwatch.GetMetricStatisticsOutput, error)
}

// Aggregator issues single-shot metric queries and reduces the response to
// one scalar. It holds no per-resource state and performs no retries; a
// CloudWatch fault surfaces as the returned error and the caller decides
// whether to skip the resource.
type Aggregator struct {
	cw  CloudWatchClient
	now func() time.Time
}

// NewAggregator returns an Aggregator reading from cw. The clock defaults to
// time.Now; override it with WithClock in tests.
func NewAggregator(cw CloudWatchClient) *Aggregator {
	return &Aggregator{cw: cw, now: time.Now}
}

// WithClock replaces the wall clock used to compute query windows and
// returns the aggregator for chaining.
func (a *Aggregator) WithClock(now func() time.Time) *Aggregator {
	a.now = now
	return a
}

// Aggregate runs one GetMetricStatistics call for q and returns the requested
// statistic of the first returned datapoint.
//
// A window with zero datapoints means no recorded activity and returns 0 with
// no error; that is the defined fallback, not a failure.
func (a *Aggregator) Aggregate(ctx context.Context, q Query) (float64, error) {
	end := a.now().UTC()
	start := end.AddDate(0, 0, -q.LookbackDays)

	out, err := a.cw.GetMetricStatistics(ctx, &cloudwatch.GetMetricStatisticsInput{
		Namespace:  aws.String(q.Namespace),
		MetricName: aws.String(q.MetricName),
		Dimensions: []cwtypes.Dimension{
			{
				Name:  aws.String(q.DimensionName),
				Value: aws.String(q.DimensionValue),
			},
		},
		StartTime:  aws.Time(start),
		EndTime:    aws.Time(end),
		Period:     aws.Int32(q.PeriodSeconds),
		Statistics: []cwtypes.Statistic{cloudwatchStatistic(q.Statistic)},
	})
	if err != nil {
		return 0, fmt.Errorf("GetMetricStatistics %s/%s: %w", q.Namespace, q.MetricName, err)
	}
	if len(out.Datapoints) == 0 {
		return 0, nil
	}
	return datapointValue(out.Datapoints[0], q.Statistic), nil
}

// cloudwatchStatistic maps a Statistic to the SDK enum.
func cloudwatchStatistic(s Statistic) cwtypes.Statistic {
	switch s {
	case StatisticAvg:
		return cwtypes.StatisticAverage
	case StatisticMax:
		return cwtypes.StatisticMaximum
	default:
		return cwtypes.StatisticSum
	}
}

// datapointValue pulls the requested statistic out of a datapoint, treating a
// missing field as 0.
func datapointValue(dp cwtypes.Datapoint, s Statistic) float64 {
	switch s {
	case StatisticAvg:
		return aws.ToFloat64(dp.Average)
	case StatisticMax:
		return aws.ToFloat64(dp.Maximum)
	default:
		return aws.ToFloat64(dp.Sum)
	}
}
