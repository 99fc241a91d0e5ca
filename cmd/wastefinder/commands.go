package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/opscost/wastefinder/internal/engine"
	"github.com/opscost/wastefinder/internal/providers/aws/common"
	"github.com/opscost/wastefinder/internal/version"
)

func newRootCmd(logger zerolog.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:           "wastefinder",
		Short:         "wastefinder — find idle cloud spend and report the savings",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newScanCmd(logger))
	root.AddCommand(newVersionCmd())
	return root
}

func newScanCmd(logger zerolog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan one region's resources and write a cost report",
	}
	cmd.AddCommand(newScanEBSCmd(logger))
	cmd.AddCommand(newScanNeptuneCmd(logger))
	return cmd
}

// scanFlags are the options shared by every scan subcommand.
type scanFlags struct {
	profile     string
	days        int
	period      int32
	out         string
	costSummary bool
}

func (f *scanFlags) register(cmd *cobra.Command, defaultOut string) {
	cmd.Flags().StringVar(&f.profile, "profile", "", "AWS profile name (default: uses environment / default profile)")
	cmd.Flags().IntVar(&f.days, "days", 14, "Lookback window in days for utilization metrics")
	cmd.Flags().Int32Var(&f.period, "period", 0, "CloudWatch aggregation period in seconds (default: the full lookback window)")
	cmd.Flags().StringVar(&f.out, "out", defaultOut, "Report file path")
	cmd.Flags().BoolVar(&f.costSummary, "cost-summary", false, "Also fetch an account-level Cost Explorer spend summary for the window")
}

func (f *scanFlags) options(region string) engine.ScanOptions {
	return engine.ScanOptions{
		Region:          region,
		Profile:         f.profile,
		LookbackDays:    f.days,
		PeriodSeconds:   f.period,
		OutFile:         f.out,
		WithCostSummary: f.costSummary,
	}
}

func newScanEBSCmd(logger zerolog.Logger) *cobra.Command {
	var flags scanFlags

	cmd := &cobra.Command{
		Use:   "ebs <region>",
		Short: "Report unattached and unused EBS volumes with their monthly cost",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng := engine.NewDefaultEngine(common.NewDefaultAWSClientProvider(), logger)
			result, err := eng.ScanVolumes(cmd.Context(), flags.options(args[0]))
			if err != nil {
				return fmt.Errorf("ebs scan: %w", err)
			}
			printResult(result)
			return nil
		},
	}
	flags.register(cmd, "ebs.csv")
	return cmd
}

func newScanNeptuneCmd(logger zerolog.Logger) *cobra.Command {
	var flags scanFlags

	cmd := &cobra.Command{
		Use:   "neptune <region>",
		Short: "Report active Neptune instances with their utilization and on-demand price",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng := engine.NewDefaultEngine(common.NewDefaultAWSClientProvider(), logger)
			result, err := eng.ScanDBInstances(cmd.Context(), flags.options(args[0]))
			if err != nil {
				return fmt.Errorf("neptune scan: %w", err)
			}
			printResult(result)
			return nil
		},
	}
	flags.register(cmd, "neptune.csv")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Print(version.Info())
		},
	}
}

// printResult renders the scan outcome to stdout.
func printResult(r *engine.ScanResult) {
	fmt.Fprintf(os.Stdout,
		"Account: %s  Region: %s  Scanned: %d  Rows: %d\nOutput stored in %s\n",
		r.AccountID, r.Region, r.ResourcesScanned, r.RowsWritten, r.ReportPath,
	)
	if r.CostSummary != nil {
		fmt.Fprintf(os.Stdout,
			"Account spend %s to %s: $%.2f\n",
			r.CostSummary.PeriodStart, r.CostSummary.PeriodEnd, r.CostSummary.TotalCostUSD,
		)
	}
}
