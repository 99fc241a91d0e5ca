// Package inventory lists the cloud resources under analysis and converts
// them to internal read-only views. It applies no business rules.
package inventory

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	ec2svc "github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/opscost/wastefinder/internal/models"
	"github.com/opscost/wastefinder/internal/providers/aws/common"
)

// ListEBSVolumes pages through all EBS volumes in region and converts them to
// internal models. No state filter is applied; the classification engine
// decides which states are relevant.
func ListEBSVolumes(ctx context.Context, client common.EC2Client, region string) ([]models.EBSVolume, error) {
	paginator := ec2svc.NewDescribeVolumesPaginator(client, &ec2svc.DescribeVolumesInput{})

	var volumes []models.EBSVolume
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("DescribeVolumes page: %w", err)
		}
		for _, v := range page.Volumes {
			volumes = append(volumes, toEBSVolume(v, region))
		}
	}
	return volumes, nil
}

// AttachedInstanceID re-describes a single volume and returns the instance ID
// of its first attachment, or "" when the volume has no attachments. Used to
// resolve the triage target for Unused findings.
func AttachedInstanceID(ctx context.Context, client common.EC2Client, volumeID string) (string, error) {
	out, err := client.DescribeVolumes(ctx, &ec2svc.DescribeVolumesInput{
		VolumeIds: []string{volumeID},
	})
	if err != nil {
		return "", fmt.Errorf("DescribeVolumes %s: %w", volumeID, err)
	}
	for _, v := range out.Volumes {
		if len(v.Attachments) > 0 {
			return aws.ToString(v.Attachments[0].InstanceId), nil
		}
	}
	return "", nil
}

// toEBSVolume converts an SDK EBS volume to the internal model.
// The attached instance ID is derived from the first attachment, if any.
func toEBSVolume(v ec2types.Volume, region string) models.EBSVolume {
	var instanceID string
	if len(v.Attachments) > 0 {
		instanceID = aws.ToString(v.Attachments[0].InstanceId)
	}

	return models.EBSVolume{
		VolumeID:   aws.ToString(v.VolumeId),
		Region:     region,
		VolumeType: string(v.VolumeType),
		SizeGB:     aws.ToInt32(v.Size),
		State:      string(v.State),
		SnapshotID: aws.ToString(v.SnapshotId),
		InstanceID: instanceID,
		Iops:       aws.ToInt32(v.Iops),
		Throughput: aws.ToInt32(v.Throughput),
		CreateTime: aws.ToTime(v.CreateTime),
		Tags:       tagsFromEC2(v.Tags),
	}
}

// tagsFromEC2 converts EC2 SDK tags to a plain string map.
func tagsFromEC2(tags []ec2types.Tag) map[string]string {
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
