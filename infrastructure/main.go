package main

import (
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
)

func main() {
	pulumi.Run(run)
}

func run(ctx *pulumi.Context) error {
	cfg, err := loadStackConfig(ctx)
	if err != nil {
		return err
	}
	return createLab(ctx, cfg)
}

// createLab creates every resource of the stack and exports their identifiers.
func createLab(ctx *pulumi.Context, cfg *stackConfig) error {
	// 1. Create the VPC and its subnet pairs
	networkResources, err := createNetworkResources(ctx, cfg)
	if err != nil {
		return err
	}

	// 2. Create the security groups used by the instances
	securityResources, err := createSecurityResources(ctx, cfg, networkResources)
	if err != nil {
		return err
	}

	// 3. Create the lab bucket, if requested
	if cfg.BucketName != "" {
		bucket, err := createLabBucket(ctx, cfg)
		if err != nil {
			return err
		}
		ctx.Export("bucketName", bucket.ID())
	}

	// Export network outputs
	ctx.Export("vpcId", networkResources.Vpc.ID())
	ctx.Export("publicSubnetIds", subnetIDs(networkResources.PublicSubnets))
	ctx.Export("privateSubnetIds", subnetIDs(networkResources.PrivateSubnets))
	ctx.Export("internetGatewayId", networkResources.InternetGateway.ID())

	// Export security outputs
	ctx.Export("webSecurityGroupId", securityResources.WebSecurityGroup.ID())
	ctx.Export("dbSecurityGroupId", securityResources.DBSecurityGroup.ID())

	return nil
}
