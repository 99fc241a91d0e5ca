package classify

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opscost/wastefinder/internal/metrics"
	"github.com/opscost/wastefinder/internal/models"
)

// statMetrics serves values keyed by metric name and statistic, so the CPU
// average and maximum can differ.
type statMetrics struct {
	values  map[metrics.Statistic]map[string]float64
	err     error
	queries []metrics.Query
}

func (s *statMetrics) Aggregate(_ context.Context, q metrics.Query) (float64, error) {
	s.queries = append(s.queries, q)
	if s.err != nil {
		return 0, s.err
	}
	return s.values[q.Statistic][q.MetricName], nil
}

func testDBInstance() models.DBInstance {
	return models.DBInstance{
		DBInstanceID:    "graph-prod-1",
		DBClusterID:     "graph-prod",
		Region:          "us-east-1",
		DBInstanceClass: "db.r5.large",
		Engine:          "neptune",
		Status:          "available",
		VPCID:           "vpc-0aa1",
	}
}

func TestClassifyActiveDBInstance(t *testing.T) {
	m := &statMetrics{values: map[metrics.Statistic]map[string]float64{
		metrics.StatisticSum: {"TotalRequestsPerSec": 120000},
		metrics.StatisticAvg: {"CPUUtilization": 12.5},
		metrics.StatisticMax: {"CPUUtilization": 74.2},
	}}
	p := &stubPrices{instance: 0.348}
	c := NewDBInstanceClassifier(m, p, zerolog.Nop())

	f, err := c.Classify(context.Background(), testDBInstance())
	require.NoError(t, err)
	require.NotNil(t, f)

	assert.Equal(t, "graph-prod-1", f.DBInstanceID)
	assert.Equal(t, "graph-prod", f.DBClusterID)
	assert.Equal(t, "neptune", f.Engine)
	assert.Equal(t, "available", f.Status)
	assert.Equal(t, "db.r5.large", f.InstanceClass)
	assert.Equal(t, 120000.0, f.RequestSum)
	assert.Equal(t, 12.5, f.AvgCPUPercent)
	assert.Equal(t, 74.2, f.MaxCPUPercent)
	assert.Equal(t, 0.348, f.InstancePriceUSD)

	require.Len(t, m.queries, 3)
	for _, q := range m.queries {
		assert.Equal(t, "AWS/Neptune", q.Namespace)
		assert.Equal(t, "DBInstanceIdentifier", q.DimensionName)
		assert.Equal(t, "graph-prod-1", q.DimensionValue)
		assert.Equal(t, 14, q.LookbackDays)
		assert.Equal(t, int32(1209600), q.PeriodSeconds)
	}
	// Request activity is checked first so idle instances cost one query.
	assert.Equal(t, "TotalRequestsPerSec", m.queries[0].MetricName)
}

func TestClassifyIdleDBInstanceIsExcluded(t *testing.T) {
	m := &statMetrics{values: map[metrics.Statistic]map[string]float64{
		metrics.StatisticSum: {"TotalRequestsPerSec": 0},
	}}
	p := &stubPrices{instance: 0.348}
	c := NewDBInstanceClassifier(m, p, zerolog.Nop())

	f, err := c.Classify(context.Background(), testDBInstance())
	require.NoError(t, err)
	assert.Nil(t, f)

	assert.Len(t, m.queries, 1)
	assert.Zero(t, p.calls)
}

func TestClassifyDBInstanceActivityThreshold(t *testing.T) {
	m := &statMetrics{values: map[metrics.Statistic]map[string]float64{
		metrics.StatisticSum: {"TotalRequestsPerSec": 5},
	}}
	c := NewDBInstanceClassifier(m, &stubPrices{}, zerolog.Nop()).
		WithPolicy(DBInstancePolicy{LookbackDays: 14, PeriodSeconds: 1209600, MinRequestSum: 10})

	f, err := c.Classify(context.Background(), testDBInstance())
	require.NoError(t, err)
	assert.Nil(t, f)
}

func TestClassifyDBInstanceMetricsFaultPropagates(t *testing.T) {
	boom := errors.New("cloudwatch down")
	c := NewDBInstanceClassifier(&statMetrics{err: boom}, &stubPrices{}, zerolog.Nop())

	_, err := c.Classify(context.Background(), testDBInstance())
	assert.ErrorIs(t, err, boom)
}
