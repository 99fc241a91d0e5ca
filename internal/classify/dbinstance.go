package classify

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/opscost/wastefinder/internal/metrics"
	"github.com/opscost/wastefinder/internal/models"
)

const (
	neptuneNamespace    = "AWS/Neptune"
	dbInstanceDimension = "DBInstanceIdentifier"
	cpuMetricName       = "CPUUtilization"
	requestsMetricName  = "TotalRequestsPerSec"
)

// DBInstancePolicy carries the tunable thresholds of the database-instance
// policy.
type DBInstancePolicy struct {
	LookbackDays  int
	PeriodSeconds int32

	// MinRequestSum is the activity threshold: instances whose summed request
	// count over the window falls below it are excluded from the report
	// entirely. This pipeline reports active instances with their cost, it is
	// not a waste detector.
	MinRequestSum float64
}

// DefaultDBInstancePolicy mirrors the volume policy window with an activity
// threshold of one request.
func DefaultDBInstancePolicy() DBInstancePolicy {
	return DBInstancePolicy{
		LookbackDays:  14,
		PeriodSeconds: 1209600,
		MinRequestSum: 1,
	}
}

// DBInstanceClassifier applies the database-instance cost-visibility policy:
// instances meeting the activity threshold get one report row carrying their
// CPU utilization profile, request volume, and on-demand instance-class
// price. There is no waste label and no savings estimate for this kind.
type DBInstanceClassifier struct {
	metrics MetricSource
	prices  PriceSource
	policy  DBInstancePolicy
	logger  zerolog.Logger
}

// NewDBInstanceClassifier wires a classifier with the default policy.
func NewDBInstanceClassifier(metricSource MetricSource, priceSource PriceSource, logger zerolog.Logger) *DBInstanceClassifier {
	return &DBInstanceClassifier{
		metrics: metricSource,
		prices:  priceSource,
		policy:  DefaultDBInstancePolicy(),
		logger:  logger,
	}
}

// WithPolicy overrides the instance policy and returns the classifier.
func (c *DBInstanceClassifier) WithPolicy(p DBInstancePolicy) *DBInstanceClassifier {
	c.policy = p
	return c
}

// Classify evaluates one database instance. Instances below the activity
// threshold return nil (excluded from the report, not a zero-cost row).
// Metrics faults propagate; pricing faults price as 0.
func (c *DBInstanceClassifier) Classify(ctx context.Context, inst models.DBInstance) (*models.DBInstanceFinding, error) {
	requestSum, err := c.aggregate(ctx, inst.DBInstanceID, requestsMetricName, metrics.StatisticSum)
	if err != nil {
		return nil, err
	}
	if requestSum < c.policy.MinRequestSum {
		return nil, nil
	}

	avgCPU, err := c.aggregate(ctx, inst.DBInstanceID, cpuMetricName, metrics.StatisticAvg)
	if err != nil {
		return nil, err
	}
	maxCPU, err := c.aggregate(ctx, inst.DBInstanceID, cpuMetricName, metrics.StatisticMax)
	if err != nil {
		return nil, err
	}

	return &models.DBInstanceFinding{
		Region:           inst.Region,
		DBClusterID:      inst.DBClusterID,
		DBInstanceID:     inst.DBInstanceID,
		Engine:           inst.Engine,
		Status:           inst.Status,
		VPCID:            inst.VPCID,
		InstanceClass:    inst.DBInstanceClass,
		MaxCPUPercent:    maxCPU,
		AvgCPUPercent:    avgCPU,
		RequestSum:       requestSum,
		InstancePriceUSD: c.prices.InstancePrice(ctx, inst.DBInstanceClass, inst.Region),
	}, nil
}

// aggregate runs one metric query against this instance over the policy
// window.
func (c *DBInstanceClassifier) aggregate(ctx context.Context, instanceID, metricName string, stat metrics.Statistic) (float64, error) {
	return c.metrics.Aggregate(ctx, metrics.Query{
		Namespace:      neptuneNamespace,
		MetricName:     metricName,
		DimensionName:  dbInstanceDimension,
		DimensionValue: instanceID,
		Statistic:      stat,
		LookbackDays:   c.policy.LookbackDays,
		PeriodSeconds:  c.policy.PeriodSeconds,
	})
}
