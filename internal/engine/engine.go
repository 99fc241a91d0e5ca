// Package engine drives one full scan pass per resource kind: resolve
// identity, list inventory, and for each resource run metrics aggregation,
// price resolution, and classification, handing findings to the report
// emitter as they are produced.
package engine

import (
	"context"

	"github.com/opscost/wastefinder/internal/models"
)

// ScanOptions carries per-run parameters. Zero values fall back to the
// defaults noted on each field.
type ScanOptions struct {
	// Region is the AWS region code to scan (required, from the CLI
	// positional argument).
	Region string

	// Profile is the AWS shared-config profile; empty uses the default
	// credential chain.
	Profile string

	// LookbackDays is the trailing metrics window. Defaults to 14.
	LookbackDays int

	// PeriodSeconds is the CloudWatch aggregation period. Defaults to the
	// full lookback window (1209600s for 14 days).
	PeriodSeconds int32

	// OutFile is the report path. Defaults to ebs.csv / neptune.csv per
	// resource kind.
	OutFile string

	// WithCostSummary additionally fetches an account-level Cost Explorer
	// spend summary for the window. Its failure never fails the scan.
	WithCostSummary bool
}

// ScanResult summarises one completed pass.
type ScanResult struct {
	AccountID        string
	Region           string
	ResourcesScanned int
	RowsWritten      int
	ReportPath       string

	// CostSummary is populated only when requested and successfully fetched.
	CostSummary *models.CostSummary
}

// Engine runs scan passes. A pass tolerates per-resource failures: one
// resource's fault is logged and skipped, and never aborts the remainder of
// the inventory — the same containment policy for both resource kinds.
type Engine interface {
	// ScanVolumes runs the storage-volume waste pass and writes the EBS
	// report.
	ScanVolumes(ctx context.Context, opts ScanOptions) (*ScanResult, error)

	// ScanDBInstances runs the database-instance cost pass and writes the
	// Neptune report.
	ScanDBInstances(ctx context.Context, opts ScanOptions) (*ScanResult, error)
}
