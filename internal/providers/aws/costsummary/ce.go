// Package costsummary fetches an account-level spend summary from Cost
// Explorer. It provides context alongside the waste report and never feeds
// into classification.
package costsummary

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	ce "github.com/aws/aws-sdk-go-v2/service/costexplorer"
	cetypes "github.com/aws/aws-sdk-go-v2/service/costexplorer/types"

	"github.com/opscost/wastefinder/internal/models"
	"github.com/opscost/wastefinder/internal/providers/aws/common"
)

// Collect calls Cost Explorer GetCostAndUsage for [start, end) and returns an
// aggregated CostSummary with a per-service cost breakdown.
//
// Granularity is MONTHLY; costs are summed across all returned time periods
// so the summary covers the full requested window (which may span two
// calendar months). Services are sorted descending by cost. Dates are
// YYYY-MM-DD strings as Cost Explorer requires.
func Collect(ctx context.Context, client common.CostExplorerClient, start, end string) (*models.CostSummary, error) {
	serviceTotals := make(map[string]float64)

	var nextToken *string
	for {
		out, err := client.GetCostAndUsage(ctx, &ce.GetCostAndUsageInput{
			TimePeriod: &cetypes.DateInterval{
				Start: aws.String(start),
				End:   aws.String(end),
			},
			Granularity: cetypes.GranularityMonthly,
			Metrics:     []string{"UnblendedCost"},
			GroupBy: []cetypes.GroupDefinition{
				{
					Key:  aws.String("SERVICE"),
					Type: cetypes.GroupDefinitionTypeDimension,
				},
			},
			NextPageToken: nextToken,
		})
		if err != nil {
			return nil, fmt.Errorf("GetCostAndUsage: %w", err)
		}

		for _, result := range out.ResultsByTime {
			for _, group := range result.Groups {
				if len(group.Keys) == 0 {
					continue
				}
				service := group.Keys[0]
				metric, ok := group.Metrics["UnblendedCost"]
				if !ok {
					continue
				}
				serviceTotals[service] += parseCostFloat(metric.Amount)
			}
		}

		if out.NextPageToken == nil {
			break
		}
		nextToken = out.NextPageToken
	}

	var totalCost float64
	for _, v := range serviceTotals {
		totalCost += v
	}

	breakdown := make([]models.ServiceCost, 0, len(serviceTotals))
	for service, cost := range serviceTotals {
		if cost > 0 {
			breakdown = append(breakdown, models.ServiceCost{
				Service: service,
				CostUSD: cost,
			})
		}
	}
	sort.Slice(breakdown, func(i, j int) bool {
		return breakdown[i].CostUSD > breakdown[j].CostUSD
	})

	return &models.CostSummary{
		PeriodStart:      start,
		PeriodEnd:        end,
		TotalCostUSD:     totalCost,
		ServiceBreakdown: breakdown,
	}, nil
}

// parseCostFloat converts a Cost Explorer amount string to a float64,
// treating nil or malformed amounts as 0.
func parseCostFloat(amount *string) float64 {
	if amount == nil {
		return 0
	}
	v, err := strconv.ParseFloat(*amount, 64)
	if err != nil {
		return 0
	}
	return v
}
