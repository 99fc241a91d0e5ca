package common

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	ce "github.com/aws/aws-sdk-go-v2/service/costexplorer"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	pricingsvc "github.com/aws/aws-sdk-go-v2/service/pricing"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// ---------------------------------------------------------------------------
// Per-service client interfaces
//
// Each interface covers only the operations used by this project. Using narrow
// interfaces instead of the full SDK clients makes mocking in unit tests
// trivial: create a struct that satisfies the interface and return canned data.
// ---------------------------------------------------------------------------

// STSClient is the subset of STS operations used to resolve the account ID.
type STSClient interface {
	GetCallerIdentity(
		ctx context.Context,
		params *sts.GetCallerIdentityInput,
		optFns ...func(*sts.Options),
	) (*sts.GetCallerIdentityOutput, error)
}

// EC2Client covers the EC2 operations used for volume inventory.
// A *ec2.Client satisfies it, which also satisfies
// ec2.DescribeVolumesAPIClient — enabling the SDK v2 paginator.
type EC2Client interface {
	DescribeVolumes(
		ctx context.Context,
		params *ec2.DescribeVolumesInput,
		optFns ...func(*ec2.Options),
	) (*ec2.DescribeVolumesOutput, error)
}

// RDSClient covers the RDS operations used for database instance inventory.
// Neptune instances ride the RDS control plane, so DescribeDBInstances with
// an engine filter is the inventory call for both.
type RDSClient interface {
	DescribeDBInstances(
		ctx context.Context,
		params *rds.DescribeDBInstancesInput,
		optFns ...func(*rds.Options),
	) (*rds.DescribeDBInstancesOutput, error)
}

// CloudWatchClient covers the CloudWatch operations used for metric
// aggregation. Metrics are regional; the client must be initialised with the
// scan region's aws.Config.
type CloudWatchClient interface {
	GetMetricStatistics(
		ctx context.Context,
		params *cloudwatch.GetMetricStatisticsInput,
		optFns ...func(*cloudwatch.Options),
	) (*cloudwatch.GetMetricStatisticsOutput, error)
}

// PricingClient covers the Pricing API operations used by the price resolver.
// The Pricing API is a global service; always use us-east-1.
type PricingClient interface {
	GetProducts(
		ctx context.Context,
		params *pricingsvc.GetProductsInput,
		optFns ...func(*pricingsvc.Options),
	) (*pricingsvc.GetProductsOutput, error)
}

// CostExplorerClient covers the Cost Explorer operations used for the
// optional account-level cost summary. Global service; always us-east-1.
type CostExplorerClient interface {
	GetCostAndUsage(
		ctx context.Context,
		params *ce.GetCostAndUsageInput,
		optFns ...func(*ce.Options),
	) (*ce.GetCostAndUsageOutput, error)
}

// ---------------------------------------------------------------------------
// ClientSet and ClientFactory
// ---------------------------------------------------------------------------

// ClientSet holds fully initialised AWS service clients for one account and
// region. All fields are interfaces so they can be replaced with mocks in
// tests without importing the AWS SDK in test files.
type ClientSet struct {
	STS          STSClient
	EC2          EC2Client
	RDS          RDSClient
	CloudWatch   CloudWatchClient
	Pricing      PricingClient
	CostExplorer CostExplorerClient
}

// ClientFactory creates a ClientSet from an aws.Config.
// Swap this in tests to inject mock clients.
type ClientFactory func(cfg aws.Config) *ClientSet

// NewClientSet is the production ClientFactory. It constructs real AWS SDK
// clients from cfg. Pricing and Cost Explorer are always pointed at us-east-1
// because both are global services only reachable there.
func NewClientSet(cfg aws.Config) *ClientSet {
	globalCfg := cfg
	globalCfg.Region = "us-east-1"

	return &ClientSet{
		STS:          sts.NewFromConfig(cfg),
		EC2:          ec2.NewFromConfig(cfg),
		RDS:          rds.NewFromConfig(cfg),
		CloudWatch:   cloudwatch.NewFromConfig(cfg),
		Pricing:      pricingsvc.NewFromConfig(globalCfg),
		CostExplorer: ce.NewFromConfig(globalCfg),
	}
}
