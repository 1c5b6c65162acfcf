package main

import (
	"fmt"
	"net/netip"

	"github.com/pulumi/pulumi-aws/sdk/v5/go/aws/ec2"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
)

// NetworkResources holds all the networking resources
type NetworkResources struct {
	Vpc               *ec2.Vpc
	InternetGateway   *ec2.InternetGateway
	PublicRouteTable  *ec2.RouteTable
	PrivateRouteTable *ec2.RouteTable
	PublicSubnets     []*ec2.Subnet
	PrivateSubnets    []*ec2.Subnet
	S3VpcEndpoint     *ec2.VpcEndpoint
}

// createNetworkResources creates the VPC and one subnet per block of the layout
func createNetworkResources(ctx *pulumi.Context, cfg *stackConfig) (*NetworkResources, error) {
	name := cfg.VpcName

	vpc, err := ec2.NewVpc(ctx, name, &ec2.VpcArgs{
		CidrBlock:          pulumi.String(cfg.Layout.Source.String()),
		EnableDnsSupport:   pulumi.Bool(true),
		EnableDnsHostnames: pulumi.Bool(true),
		Tags: pulumi.StringMap{
			"Name": pulumi.String(name),
		},
	})
	if err != nil {
		return nil, err
	}

	igw, err := ec2.NewInternetGateway(ctx, name+"-igw", &ec2.InternetGatewayArgs{
		VpcId: vpc.ID(),
		Tags: pulumi.StringMap{
			"Name": pulumi.String(name + "-igw"),
		},
	})
	if err != nil {
		return nil, err
	}

	// Public route table with the default route to the Internet Gateway
	publicRouteTable, err := ec2.NewRouteTable(ctx, name+"-public-rt", &ec2.RouteTableArgs{
		VpcId: vpc.ID(),
		Routes: ec2.RouteTableRouteArray{
			&ec2.RouteTableRouteArgs{
				CidrBlock: pulumi.String("0.0.0.0/0"),
				GatewayId: igw.ID(),
			},
		},
		Tags: pulumi.StringMap{
			"Name": pulumi.String(name + "-public-rt"),
		},
	})
	if err != nil {
		return nil, err
	}

	// Private route table (no route to the internet)
	privateRouteTable, err := ec2.NewRouteTable(ctx, name+"-private-rt", &ec2.RouteTableArgs{
		VpcId: vpc.ID(),
		Tags: pulumi.StringMap{
			"Name": pulumi.String(name + "-private-rt"),
		},
	})
	if err != nil {
		return nil, err
	}

	publicSubnets, err := createSubnets(ctx, cfg, vpc, publicRouteTable, "public", cfg.Layout.Public)
	if err != nil {
		return nil, err
	}
	privateSubnets, err := createSubnets(ctx, cfg, vpc, privateRouteTable, "private", cfg.Layout.Private)
	if err != nil {
		return nil, err
	}

	// S3 gateway endpoint, so that private subnets reach the lab buckets
	s3VpcEndpoint, err := ec2.NewVpcEndpoint(ctx, name+"-s3-endpoint", &ec2.VpcEndpointArgs{
		VpcId:           vpc.ID(),
		ServiceName:     pulumi.String(fmt.Sprintf("com.amazonaws.%s.s3", cfg.Region)),
		VpcEndpointType: pulumi.String("Gateway"),
		RouteTableIds:   pulumi.StringArray{publicRouteTable.ID(), privateRouteTable.ID()},
		Tags: pulumi.StringMap{
			"Name": pulumi.String(name + "-s3-endpoint"),
		},
	})
	if err != nil {
		return nil, err
	}

	return &NetworkResources{
		Vpc:               vpc,
		InternetGateway:   igw,
		PublicRouteTable:  publicRouteTable,
		PrivateRouteTable: privateRouteTable,
		PublicSubnets:     publicSubnets,
		PrivateSubnets:    privateSubnets,
		S3VpcEndpoint:     s3VpcEndpoint,
	}, nil
}

// createSubnets creates one subnet group and associates it with routeTable.
// Availability zones are assigned round-robin.
func createSubnets(ctx *pulumi.Context, cfg *stackConfig, vpc *ec2.Vpc, routeTable *ec2.RouteTable,
	label string, blocks []netip.Prefix) ([]*ec2.Subnet, error) {
	subnets := make([]*ec2.Subnet, 0, len(blocks))

	for i, block := range blocks {
		resourceName := fmt.Sprintf("%s-%s-%d", cfg.VpcName, label, i+1)

		args := &ec2.SubnetArgs{
			VpcId:               vpc.ID(),
			CidrBlock:           pulumi.String(block.String()),
			MapPublicIpOnLaunch: pulumi.Bool(label == "public"),
			Tags: pulumi.StringMap{
				"Name": pulumi.String(fmt.Sprintf("%s-%s-%s", cfg.VpcName, label, block)),
			},
		}
		if len(cfg.AvailabilityZones) > 0 {
			args.AvailabilityZone = pulumi.String(cfg.AvailabilityZones[i%len(cfg.AvailabilityZones)])
		}

		s, err := ec2.NewSubnet(ctx, resourceName, args)
		if err != nil {
			return nil, err
		}

		_, err = ec2.NewRouteTableAssociation(ctx, resourceName+"-rt-assoc", &ec2.RouteTableAssociationArgs{
			SubnetId:     s.ID(),
			RouteTableId: routeTable.ID(),
		})
		if err != nil {
			return nil, err
		}

		subnets = append(subnets, s)
	}

	return subnets, nil
}

func subnetIDs(subnets []*ec2.Subnet) pulumi.StringArray {
	ids := make(pulumi.StringArray, 0, len(subnets))
	for _, s := range subnets {
		ids = append(ids, s.ID())
	}
	return ids
}
