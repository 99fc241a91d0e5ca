// Package report serialises findings to fixed-schema CSV. One header row is
// always written, then one row per finding, flushed after every row so a
// long-running scan never loses already-computed rows to a later failure.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/opscost/wastefinder/internal/models"
)

// placeholder renders absent optional string fields, e.g. the instance ID of
// an unattached volume.
const placeholder = "NA"

// Emitter writes findings to a tabular sink. It is not safe for concurrent
// use; scans append rows strictly in inventory order.
type Emitter struct {
	w    *csv.Writer
	rows int
}

// NewEmitter returns an Emitter writing CSV to w.
func NewEmitter(w io.Writer) *Emitter {
	return &Emitter{w: csv.NewWriter(w)}
}

// WriteHeader writes the schema header row. Call exactly once, before any
// row, so the output file carries the header even when zero findings follow.
func (e *Emitter) WriteHeader(columns []string) error {
	if err := e.w.Write(columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	return e.flush()
}

// WriteRow writes one finding row and flushes it to the sink.
func (e *Emitter) WriteRow(row []string) error {
	if err := e.w.Write(row); err != nil {
		return fmt.Errorf("write row: %w", err)
	}
	if err := e.flush(); err != nil {
		return err
	}
	e.rows++
	return nil
}

// Rows returns the number of finding rows written (the header excluded).
func (e *Emitter) Rows() int {
	return e.rows
}

func (e *Emitter) flush() error {
	e.w.Flush()
	if err := e.w.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Schemas and row rendering
// ---------------------------------------------------------------------------

// VolumeHeader returns the storage-volume report schema in exact column order.
func VolumeHeader() []string {
	return []string{
		"Account ID", "Region", "VolumeId", "State", "InstanceId", "Type",
		"SnapshotId", "SizeGB", "Iops", "Throughput", "IOPSUtilization",
		"CreationDate", "cloudwatch_period",
		"CurrentMonthlyStorageCost($)", "CurrentMonthlyIopsCost($)",
		"CurrentMonthlyThroughputCost($)", "Finding", "Savings($)",
	}
}

// VolumeRow renders one volume finding. Currency is rounded to two decimals
// here, at presentation time; the finding already carries cent-rounded
// components so Savings($) equals the sum of the three cost columns exactly.
func VolumeRow(f *models.VolumeFinding) []string {
	instanceID := f.InstanceID
	if instanceID == "" {
		instanceID = placeholder
	}

	return []string{
		f.AccountID,
		f.Region,
		f.VolumeID,
		f.State,
		instanceID,
		f.VolumeType,
		f.SnapshotID,
		formatInt(f.SizeGB),
		formatInt(f.Iops),
		formatInt(f.Throughput),
		formatFloat(f.IOPSUtilization),
		f.CreationDate.UTC().Format("2006-01-02"),
		f.ObservationCutoff.UTC().Format("2006-01-02 15:04:05"),
		formatFixed2(f.StorageCostUSD),
		formatFixed2(f.IopsCostUSD),
		formatFixed2(f.ThroughputCostUSD),
		string(f.Kind),
		formatFixed2(f.SavingsUSD),
	}
}

// DBInstanceHeader returns the database-instance report schema; the CPU
// column names embed the lookback window length.
func DBInstanceHeader(lookbackDays int) []string {
	days := fmt.Sprintf("%d Days", lookbackDays)
	return []string{
		"Account Id", "Region", "DBCluster", "DBIdentifier", "Engine",
		"Status", "VPCId", "InstanceClass",
		"MaxCPU(" + days + ")", "AvgCPU(" + days + ")",
		"SumOfConnections", "Price($)",
	}
}

// DBInstanceRow renders one database-instance finding.
func DBInstanceRow(f *models.DBInstanceFinding) []string {
	return []string{
		f.AccountID,
		f.Region,
		f.DBClusterID,
		f.DBInstanceID,
		f.Engine,
		f.Status,
		f.VPCID,
		f.InstanceClass,
		formatFixed2(f.MaxCPUPercent),
		formatFixed2(f.AvgCPUPercent),
		formatFloat(f.RequestSum),
		formatFixed2(f.InstancePriceUSD),
	}
}

func formatInt(v int32) string {
	return strconv.FormatInt(int64(v), 10)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatFixed2(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
