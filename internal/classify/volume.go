package classify

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/opscost/wastefinder/internal/metrics"
	"github.com/opscost/wastefinder/internal/models"
)

const (
	ebsNamespace       = "AWS/EBS"
	volumeDimension    = "VolumeId"
	volumeReadOpsName  = "VolumeReadOps"
	volumeWriteOpsName = "VolumeWriteOps"
)

// VolumePolicy carries the tunable thresholds of the storage-volume policy.
type VolumePolicy struct {
	// LookbackDays is the trailing window over which read/write operations
	// are summed.
	LookbackDays int

	// PeriodSeconds is the CloudWatch aggregation period; the default covers
	// the whole lookback window so one datapoint is returned.
	PeriodSeconds int32

	// MinAgeDays is the observation window: in-use volumes younger than this
	// are never flagged, because not enough telemetry has accrued to call
	// them unused.
	MinAgeDays int

	// FreeThroughputMiBps is the gp3 baseline throughput included in the
	// storage price; only the excess above it is billable.
	FreeThroughputMiBps int32
}

// DefaultVolumePolicy returns the policy used by production scans:
// 14-day lookback at a single full-window period, 15-day observation window,
// 125 MiB/s free gp3 throughput.
func DefaultVolumePolicy() VolumePolicy {
	return VolumePolicy{
		LookbackDays:        14,
		PeriodSeconds:       1209600,
		MinAgeDays:          15,
		FreeThroughputMiBps: 125,
	}
}

// VolumeClassifier applies the storage-volume waste policy:
//
//   - state "available": always flagged Available — the volume is paying for
//     capacity nobody uses. Savings is the full monthly cost.
//   - state "in-use", at least MinAgeDays old: flagged Unused when the summed
//     read+write operations over the lookback window are exactly zero. The
//     attached instance ID is resolved for triage.
//   - every other state, or an in-use volume too young to evaluate: no finding.
type VolumeClassifier struct {
	metrics    MetricSource
	prices     PriceSource
	attachment AttachmentFunc
	policy     VolumePolicy
	now        func() time.Time
	logger     zerolog.Logger
}

// NewVolumeClassifier wires a classifier with the default policy and wall
// clock.
func NewVolumeClassifier(
	metricSource MetricSource,
	priceSource PriceSource,
	attachment AttachmentFunc,
	logger zerolog.Logger,
) *VolumeClassifier {
	return &VolumeClassifier{
		metrics:    metricSource,
		prices:     priceSource,
		attachment: attachment,
		policy:     DefaultVolumePolicy(),
		now:        time.Now,
		logger:     logger,
	}
}

// WithPolicy overrides the volume policy and returns the classifier.
func (c *VolumeClassifier) WithPolicy(p VolumePolicy) *VolumeClassifier {
	c.policy = p
	return c
}

// WithClock overrides the wall clock and returns the classifier.
func (c *VolumeClassifier) WithClock(now func() time.Time) *VolumeClassifier {
	c.now = now
	return c
}

// Classify evaluates one volume and returns its finding, or nil when the
// volume is healthy. Metrics faults and attachment-lookup faults propagate to
// the caller; pricing faults never do (they price as 0).
func (c *VolumeClassifier) Classify(ctx context.Context, vol models.EBSVolume) (*models.VolumeFinding, error) {
	now := c.now().UTC()
	cutoff := now.AddDate(0, 0, -c.policy.MinAgeDays)

	switch vol.State {
	case "available":
		f := c.newFinding(vol, cutoff, models.FindingAvailable)
		c.priceFinding(ctx, f, vol)
		return f, nil

	case "in-use":
		// Too young: not enough telemetry to distinguish idle from new.
		if vol.CreateTime.After(cutoff) {
			return nil, nil
		}

		utilization, err := c.volumeOps(ctx, vol.VolumeID)
		if err != nil {
			return nil, err
		}
		if utilization != 0 {
			return nil, nil
		}

		instanceID, err := c.attachment(ctx, vol.VolumeID)
		if err != nil {
			return nil, err
		}

		f := c.newFinding(vol, cutoff, models.FindingUnused)
		f.InstanceID = instanceID
		f.IOPSUtilization = utilization
		c.priceFinding(ctx, f, vol)
		return f, nil

	default:
		return nil, nil
	}
}

// volumeOps sums read and write operation counts over the lookback window.
// The two metrics are aggregated independently; zero datapoints on either
// side contribute zero.
func (c *VolumeClassifier) volumeOps(ctx context.Context, volumeID string) (float64, error) {
	var total float64
	for _, metricName := range []string{volumeReadOpsName, volumeWriteOpsName} {
		v, err := c.metrics.Aggregate(ctx, metrics.Query{
			Namespace:      ebsNamespace,
			MetricName:     metricName,
			DimensionName:  volumeDimension,
			DimensionValue: volumeID,
			Statistic:      metrics.StatisticSum,
			LookbackDays:   c.policy.LookbackDays,
			PeriodSeconds:  c.policy.PeriodSeconds,
		})
		if err != nil {
			return 0, err
		}
		total += v
	}
	return total, nil
}

// newFinding copies the volume attributes the report needs into a finding
// shell; costs are filled in by priceFinding.
func (c *VolumeClassifier) newFinding(vol models.EBSVolume, cutoff time.Time, kind models.FindingKind) *models.VolumeFinding {
	return &models.VolumeFinding{
		Region:            vol.Region,
		VolumeID:          vol.VolumeID,
		State:             vol.State,
		VolumeType:        vol.VolumeType,
		SnapshotID:        vol.SnapshotID,
		SizeGB:            vol.SizeGB,
		Iops:              vol.Iops,
		Throughput:        vol.Throughput,
		CreationDate:      vol.CreateTime,
		ObservationCutoff: cutoff,
		Kind:              kind,
	}
}

// priceFinding resolves the three price components and fills in the monthly
// cost breakdown. Each component is rounded to cents before summing so the
// savings figure equals the sum of the rendered columns exactly.
//
// IOPS pricing resolves to zero for non-provisioned-IOPS types without a
// catalog call; throughput is billable only for gp3 above the free baseline.
// The catalog throughput price is per GiB/s-month while provisioned
// throughput is in MiB/s, hence the /1000.
func (c *VolumeClassifier) priceFinding(ctx context.Context, f *models.VolumeFinding, vol models.EBSVolume) {
	f.StorageCostUSD = roundCents(
		c.prices.StoragePrice(ctx, vol.VolumeType, vol.Region) * float64(vol.SizeGB))
	f.IopsCostUSD = roundCents(
		c.prices.IOPSPrice(ctx, vol.VolumeType, vol.Region) * float64(vol.Iops))

	if vol.VolumeType == "gp3" && vol.Throughput > c.policy.FreeThroughputMiBps {
		excess := float64(vol.Throughput - c.policy.FreeThroughputMiBps)
		f.ThroughputCostUSD = roundCents(
			c.prices.ThroughputPrice(ctx, vol.Region) / 1000 * excess)
	}

	f.SavingsUSD = f.StorageCostUSD + f.IopsCostUSD + f.ThroughputCostUSD
}
