package inventory

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	rdssvc "github.com/aws/aws-sdk-go-v2/service/rds"
	rdstypes "github.com/aws/aws-sdk-go-v2/service/rds/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRDS struct {
	pages map[string]*rdssvc.DescribeDBInstancesOutput
	calls []*rdssvc.DescribeDBInstancesInput
}

func (f *fakeRDS) DescribeDBInstances(
	_ context.Context,
	params *rdssvc.DescribeDBInstancesInput,
	_ ...func(*rdssvc.Options),
) (*rdssvc.DescribeDBInstancesOutput, error) {
	f.calls = append(f.calls, params)
	return f.pages[aws.ToString(params.Marker)], nil
}

func TestListNeptuneInstances(t *testing.T) {
	client := &fakeRDS{pages: map[string]*rdssvc.DescribeDBInstancesOutput{
		"": {
			Marker: aws.String("page2"),
			DBInstances: []rdstypes.DBInstance{
				{
					DBInstanceIdentifier: aws.String("graph-prod-1"),
					DBClusterIdentifier:  aws.String("graph-prod"),
					DBInstanceClass:      aws.String("db.r5.large"),
					Engine:               aws.String("neptune"),
					DBInstanceStatus:     aws.String("available"),
					DBSubnetGroup: &rdstypes.DBSubnetGroup{
						VpcId: aws.String("vpc-0aa1"),
					},
					TagList: []rdstypes.Tag{
						{Key: aws.String("env"), Value: aws.String("prod")},
					},
				},
			},
		},
		"page2": {
			DBInstances: []rdstypes.DBInstance{
				{
					DBInstanceIdentifier: aws.String("graph-prod-2"),
					DBClusterIdentifier:  aws.String("graph-prod"),
					DBInstanceClass:      aws.String("db.r5.large"),
					Engine:               aws.String("neptune"),
					DBInstanceStatus:     aws.String("stopped"),
				},
			},
		},
	}}

	instances, err := ListNeptuneInstances(context.Background(), client, "us-east-1")
	require.NoError(t, err)
	require.Len(t, instances, 2)

	first := instances[0]
	assert.Equal(t, "graph-prod-1", first.DBInstanceID)
	assert.Equal(t, "graph-prod", first.DBClusterID)
	assert.Equal(t, "us-east-1", first.Region)
	assert.Equal(t, "db.r5.large", first.DBInstanceClass)
	assert.Equal(t, "neptune", first.Engine)
	assert.Equal(t, "available", first.Status)
	assert.Equal(t, "vpc-0aa1", first.VPCID)
	assert.Equal(t, map[string]string{"env": "prod"}, first.Tags)

	second := instances[1]
	assert.Equal(t, "graph-prod-2", second.DBInstanceID)
	assert.Equal(t, "stopped", second.Status)
	assert.Empty(t, second.VPCID)

	// The engine filter is applied server-side on every page.
	require.Len(t, client.calls, 2)
	for _, call := range client.calls {
		require.Len(t, call.Filters, 1)
		assert.Equal(t, "engine", aws.ToString(call.Filters[0].Name))
		assert.Equal(t, []string{"neptune"}, call.Filters[0].Values)
	}
}
