package engine

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/opscost/wastefinder/internal/classify"
	"github.com/opscost/wastefinder/internal/metrics"
	"github.com/opscost/wastefinder/internal/models"
	"github.com/opscost/wastefinder/internal/pricing"
	"github.com/opscost/wastefinder/internal/providers/aws/common"
	"github.com/opscost/wastefinder/internal/providers/aws/costsummary"
	"github.com/opscost/wastefinder/internal/providers/aws/inventory"
	"github.com/opscost/wastefinder/internal/report"
)

const (
	defaultLookbackDays = 14

	defaultVolumeReport     = "ebs.csv"
	defaultDBInstanceReport = "neptune.csv"

	// resourceTimeout bounds the metrics + pricing round trips for a single
	// resource. Expiry is the same skip-and-continue failure class as any
	// other per-resource fault.
	resourceTimeout = 30 * time.Second
)

// DefaultEngine is the production implementation of Engine. It processes
// resources sequentially in inventory order; the only shared state is the
// open report sink, appended to one row at a time.
type DefaultEngine struct {
	provider common.AWSClientProvider
	logger   zerolog.Logger
	clock    func() time.Time
}

// NewDefaultEngine constructs an engine on the supplied client provider.
func NewDefaultEngine(provider common.AWSClientProvider, logger zerolog.Logger) *DefaultEngine {
	return &DefaultEngine{
		provider: provider,
		logger:   logger,
		clock:    time.Now,
	}
}

// WithClock overrides the wall clock used for metric windows and cost-summary
// date ranges. Tests inject a fixed clock for deterministic output.
func (e *DefaultEngine) WithClock(now func() time.Time) *DefaultEngine {
	e.clock = now
	return e
}

// ScanVolumes implements Engine.
func (e *DefaultEngine) ScanVolumes(ctx context.Context, opts ScanOptions) (*ScanResult, error) {
	opts = withDefaults(opts, defaultVolumeReport)

	acct, err := e.provider.LoadRegion(ctx, opts.Profile, opts.Region)
	if err != nil {
		return nil, fmt.Errorf("load region %q: %w", opts.Region, err)
	}

	out, err := os.Create(opts.OutFile)
	if err != nil {
		return nil, fmt.Errorf("create report %q: %w", opts.OutFile, err)
	}
	defer out.Close()

	emitter := report.NewEmitter(out)
	if err := emitter.WriteHeader(report.VolumeHeader()); err != nil {
		return nil, err
	}

	volumes, err := inventory.ListEBSVolumes(ctx, acct.Clients.EC2, opts.Region)
	if err != nil {
		return nil, fmt.Errorf("list volumes in %q: %w", opts.Region, err)
	}

	aggregator := metrics.NewAggregator(acct.Clients.CloudWatch).WithClock(e.clock)
	resolver := pricing.NewResolver(acct.Clients.Pricing, e.logger)
	attachment := func(ctx context.Context, volumeID string) (string, error) {
		return inventory.AttachedInstanceID(ctx, acct.Clients.EC2, volumeID)
	}

	policy := classify.DefaultVolumePolicy()
	policy.LookbackDays = opts.LookbackDays
	policy.PeriodSeconds = opts.PeriodSeconds

	classifier := classify.NewVolumeClassifier(aggregator, resolver, attachment, e.logger).
		WithPolicy(policy).
		WithClock(e.clock)

	for _, vol := range volumes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		finding, err := e.classifyVolume(ctx, classifier, vol)
		if err != nil {
			// Contain the fault to this volume; the pass continues.
			e.logger.Warn().Err(err).Str("volume_id", vol.VolumeID).Msg("skipping volume")
			continue
		}
		if finding == nil {
			continue
		}

		finding.AccountID = acct.AccountID
		if err := emitter.WriteRow(report.VolumeRow(finding)); err != nil {
			// A broken sink is fatal: rows already flushed survive.
			return nil, err
		}
	}

	result := &ScanResult{
		AccountID:        acct.AccountID,
		Region:           opts.Region,
		ResourcesScanned: len(volumes),
		RowsWritten:      emitter.Rows(),
		ReportPath:       opts.OutFile,
	}
	e.attachCostSummary(ctx, acct, opts, result)
	return result, nil
}

// ScanDBInstances implements Engine.
func (e *DefaultEngine) ScanDBInstances(ctx context.Context, opts ScanOptions) (*ScanResult, error) {
	opts = withDefaults(opts, defaultDBInstanceReport)

	acct, err := e.provider.LoadRegion(ctx, opts.Profile, opts.Region)
	if err != nil {
		return nil, fmt.Errorf("load region %q: %w", opts.Region, err)
	}

	out, err := os.Create(opts.OutFile)
	if err != nil {
		return nil, fmt.Errorf("create report %q: %w", opts.OutFile, err)
	}
	defer out.Close()

	emitter := report.NewEmitter(out)
	if err := emitter.WriteHeader(report.DBInstanceHeader(opts.LookbackDays)); err != nil {
		return nil, err
	}

	instances, err := inventory.ListNeptuneInstances(ctx, acct.Clients.RDS, opts.Region)
	if err != nil {
		return nil, fmt.Errorf("list database instances in %q: %w", opts.Region, err)
	}

	aggregator := metrics.NewAggregator(acct.Clients.CloudWatch).WithClock(e.clock)
	resolver := pricing.NewResolver(acct.Clients.Pricing, e.logger)

	classifier := classify.NewDBInstanceClassifier(aggregator, resolver, e.logger).
		WithPolicy(classify.DBInstancePolicy{
			LookbackDays:  opts.LookbackDays,
			PeriodSeconds: opts.PeriodSeconds,
			MinRequestSum: classify.DefaultDBInstancePolicy().MinRequestSum,
		})

	for _, inst := range instances {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		finding, err := e.classifyDBInstance(ctx, classifier, inst)
		if err != nil {
			e.logger.Warn().Err(err).Str("db_instance_id", inst.DBInstanceID).Msg("skipping database instance")
			continue
		}
		if finding == nil {
			continue
		}

		finding.AccountID = acct.AccountID
		if err := emitter.WriteRow(report.DBInstanceRow(finding)); err != nil {
			return nil, err
		}
	}

	result := &ScanResult{
		AccountID:        acct.AccountID,
		Region:           opts.Region,
		ResourcesScanned: len(instances),
		RowsWritten:      emitter.Rows(),
		ReportPath:       opts.OutFile,
	}
	e.attachCostSummary(ctx, acct, opts, result)
	return result, nil
}

// classifyVolume runs one volume through the classifier under the
// per-resource deadline.
func (e *DefaultEngine) classifyVolume(
	ctx context.Context,
	classifier *classify.VolumeClassifier,
	vol models.EBSVolume,
) (*models.VolumeFinding, error) {
	rctx, cancel := context.WithTimeout(ctx, resourceTimeout)
	defer cancel()
	return classifier.Classify(rctx, vol)
}

// classifyDBInstance runs one instance through the classifier under the
// per-resource deadline.
func (e *DefaultEngine) classifyDBInstance(
	ctx context.Context,
	classifier *classify.DBInstanceClassifier,
	inst models.DBInstance,
) (*models.DBInstanceFinding, error) {
	rctx, cancel := context.WithTimeout(ctx, resourceTimeout)
	defer cancel()
	return classifier.Classify(rctx, inst)
}

// attachCostSummary fetches the account-level Cost Explorer summary for the
// lookback window when requested. Failure is logged and never fails the scan.
func (e *DefaultEngine) attachCostSummary(ctx context.Context, acct *common.AccountContext, opts ScanOptions, result *ScanResult) {
	if !opts.WithCostSummary {
		return
	}

	end := e.clock().UTC()
	start := end.AddDate(0, 0, -opts.LookbackDays)

	summary, err := costsummary.Collect(
		ctx,
		acct.Clients.CostExplorer,
		start.Format("2006-01-02"),
		end.Format("2006-01-02"),
	)
	if err != nil {
		e.logger.Warn().Err(err).Msg("cost summary unavailable")
		return
	}
	result.CostSummary = summary
}

// withDefaults fills in zero-valued options. The default CloudWatch period
// spans the whole lookback window so each query returns a single datapoint.
func withDefaults(opts ScanOptions, defaultOut string) ScanOptions {
	if opts.LookbackDays <= 0 {
		opts.LookbackDays = defaultLookbackDays
	}
	if opts.PeriodSeconds <= 0 {
		opts.PeriodSeconds = int32(opts.LookbackDays * 24 * 60 * 60)
	}
	if opts.OutFile == "" {
		opts.OutFile = defaultOut
	}
	return opts
}
