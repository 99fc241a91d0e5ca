package common

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
)

// AccountContext is a resolved AWS identity scoped to one region, with its
// SDK configuration and initialised service clients. It is the unit passed
// from the provider into the scan engine.
type AccountContext struct {
	// ProfileName is the name from ~/.aws/credentials or "default".
	ProfileName string

	// AccountID is the resolved AWS account ID (via STS GetCallerIdentity).
	AccountID string

	// Region is the region this scan runs against.
	Region string

	// Config is the fully loaded AWS SDK v2 configuration.
	Config aws.Config

	// Clients holds initialised service clients scoped to Region. The
	// pricing and Cost Explorer clients are pinned to us-east-1 because
	// both are global services.
	Clients *ClientSet
}

// AWSClientProvider loads AWS configuration and resolves the caller identity.
// It is the sole entry point for AWS credential management across the
// provider layer.
//
// Implementations must use the AWS SDK v2 only. Never call the aws CLI.
type AWSClientProvider interface {
	// LoadRegion returns an AccountContext for the named profile scoped to
	// region. Pass an empty profile to use the default credential chain.
	LoadRegion(ctx context.Context, profile, region string) (*AccountContext, error)
}
