package models

import "time"

// FindingKind labels why a volume was flagged.
type FindingKind string

const (
	// FindingAvailable marks a volume in the "available" state: provisioned
	// capacity with no attachment at all.
	FindingAvailable FindingKind = "Available"

	// FindingUnused marks an attached volume with zero read+write operations
	// over the full lookback window.
	FindingUnused FindingKind = "Unused"
)

// VolumeFinding is the classification outcome for one wasteful EBS volume.
// It is created once per volume per run, is immutable thereafter, and is
// discarded after the report emitter has rendered it.
//
// Savings is always the exact sum of the three cost components; each
// component is already rounded to cents so the report columns add up.
type VolumeFinding struct {
	AccountID  string
	Region     string
	VolumeID   string
	State      string
	InstanceID string // attached instance for Unused findings, "" otherwise
	VolumeType string
	SnapshotID string
	SizeGB     int32
	Iops       int32
	Throughput int32

	// IOPSUtilization is the summed read+write operation count over the
	// lookback window. Zero for Available volumes (never queried).
	IOPSUtilization float64

	CreationDate time.Time

	// ObservationCutoff is the minimum-age boundary used for the Unused
	// check (run time minus the observation window).
	ObservationCutoff time.Time

	Kind FindingKind

	// Monthly cost breakdown in USD, one figure per price component,
	// each rounded to cents.
	StorageCostUSD    float64
	IopsCostUSD       float64
	ThroughputCostUSD float64

	// SavingsUSD == StorageCostUSD + IopsCostUSD + ThroughputCostUSD.
	SavingsUSD float64
}

// DBInstanceFinding is one report row for an active Neptune instance.
// This pipeline reports cost visibility for instances meeting the activity
// threshold; there is no waste label or savings estimate.
type DBInstanceFinding struct {
	AccountID        string
	Region           string
	DBClusterID      string
	DBInstanceID     string
	Engine           string
	Status           string
	VPCID            string
	InstanceClass    string
	MaxCPUPercent    float64
	AvgCPUPercent    float64
	RequestSum       float64
	InstancePriceUSD float64
}

// ---------------------------------------------------------------------------
// Account-level cost summary (Cost Explorer)
// ---------------------------------------------------------------------------

// ServiceCost holds the aggregated cost for a single AWS service.
type ServiceCost struct {
	Service string  `json:"service"`
	CostUSD float64 `json:"cost_usd"`
}

// CostSummary holds account-level Cost Explorer data for the scan window.
// It is informational context printed alongside the report, never an input
// to classification.
type CostSummary struct {
	PeriodStart      string        `json:"period_start"`
	PeriodEnd        string        `json:"period_end"`
	TotalCostUSD     float64       `json:"total_cost_usd"`
	ServiceBreakdown []ServiceCost `json:"service_breakdown"`
}
