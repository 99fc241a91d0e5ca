package inventory

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	rdssvc "github.com/aws/aws-sdk-go-v2/service/rds"
	rdstypes "github.com/aws/aws-sdk-go-v2/service/rds/types"

	"github.com/opscost/wastefinder/internal/models"
	"github.com/opscost/wastefinder/internal/providers/aws/common"
)

// neptuneEngine is the engine name Neptune instances report on the RDS
// control plane.
const neptuneEngine = "neptune"

// ListNeptuneInstances pages through all Neptune database instances in
// region, filtered server-side by engine, and converts them to internal
// models.
func ListNeptuneInstances(ctx context.Context, client common.RDSClient, region string) ([]models.DBInstance, error) {
	paginator := rdssvc.NewDescribeDBInstancesPaginator(client, &rdssvc.DescribeDBInstancesInput{
		Filters: []rdstypes.Filter{
			{
				Name:   aws.String("engine"),
				Values: []string{neptuneEngine},
			},
		},
	})

	var instances []models.DBInstance
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("DescribeDBInstances page: %w", err)
		}
		for _, db := range page.DBInstances {
			instances = append(instances, toDBInstance(db, region))
		}
	}
	return instances, nil
}

// toDBInstance converts an SDK DBInstance to the internal model.
func toDBInstance(db rdstypes.DBInstance, region string) models.DBInstance {
	var vpcID string
	if db.DBSubnetGroup != nil {
		vpcID = aws.ToString(db.DBSubnetGroup.VpcId)
	}

	return models.DBInstance{
		DBInstanceID:    aws.ToString(db.DBInstanceIdentifier),
		DBClusterID:     aws.ToString(db.DBClusterIdentifier),
		Region:          region,
		DBInstanceClass: aws.ToString(db.DBInstanceClass),
		Engine:          aws.ToString(db.Engine),
		Status:          aws.ToString(db.DBInstanceStatus),
		VPCID:           vpcID,
		Tags:            tagsFromRDS(db.TagList),
	}
}

// tagsFromRDS converts RDS SDK tags to a plain string map.
func tagsFromRDS(tags []rdstypes.Tag) map[string]string {
	if len(tags) == 0 {
		return nil
	}
	m := make(map[string]string, len(tags))
	for _, t := range tags {
		if t.Key != nil && t.Value != nil {
			m[*t.Key] = *t.Value
		}
	}
	return m
}
