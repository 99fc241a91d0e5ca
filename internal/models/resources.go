package models

import "time"

// ---------------------------------------------------------------------------
// Raw resource models (collected by the inventory provider, consumed by the
// classification engine)
// ---------------------------------------------------------------------------

// EBSVolume is a read-only view of a single EBS volume for one analysis pass.
// The inventory service owns the underlying resource; this struct is never
// written back.
type EBSVolume struct {
	VolumeID   string            `json:"volume_id"`
	Region     string            `json:"region"`
	VolumeType string            `json:"volume_type"`
	SizeGB     int32             `json:"size_gb"`
	State      string            `json:"state"`
	SnapshotID string            `json:"snapshot_id,omitempty"`
	InstanceID string            `json:"instance_id,omitempty"`
	Iops       int32             `json:"iops"`
	Throughput int32             `json:"throughput"`
	CreateTime time.Time         `json:"create_time"`
	Tags       map[string]string `json:"tags,omitempty"`
}

// DBInstance is a read-only view of a single Neptune database instance.
type DBInstance struct {
	DBInstanceID    string            `json:"db_instance_id"`
	DBClusterID     string            `json:"db_cluster_id"`
	Region          string            `json:"region"`
	DBInstanceClass string            `json:"db_instance_class"`
	Engine          string            `json:"engine"`
	Status          string            `json:"status"`
	VPCID           string            `json:"vpc_id"`
	Tags            map[string]string `json:"tags,omitempty"`
}
