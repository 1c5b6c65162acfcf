// Package network creates a VPC with an internet gateway, a public and a
// private route table and the subnets attached to them.
package network

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
)

// DefaultWaitTimeout bounds each wait for a VPC or subnet to become available.
const DefaultWaitTimeout = 10 * time.Minute

// anywhere is the destination of the default route to the internet gateway.
const anywhere = "0.0.0.0/0"

// EC2API is the subset of the EC2 client used to lay out a VPC.
type EC2API interface {
	CreateVpc(ctx context.Context, params *ec2.CreateVpcInput, optFns ...func(*ec2.Options)) (*ec2.CreateVpcOutput, error)
	DescribeVpcs(ctx context.Context, params *ec2.DescribeVpcsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeVpcsOutput, error)
	ModifyVpcAttribute(ctx context.Context, params *ec2.ModifyVpcAttributeInput, optFns ...func(*ec2.Options)) (*ec2.ModifyVpcAttributeOutput, error)
	CreateTags(ctx context.Context, params *ec2.CreateTagsInput, optFns ...func(*ec2.Options)) (*ec2.CreateTagsOutput, error)
	CreateInternetGateway(ctx context.Context, params *ec2.CreateInternetGatewayInput, optFns ...func(*ec2.Options)) (*ec2.CreateInternetGatewayOutput, error)
	AttachInternetGateway(ctx context.Context, params *ec2.AttachInternetGatewayInput, optFns ...func(*ec2.Options)) (*ec2.AttachInternetGatewayOutput, error)
	CreateRouteTable(ctx context.Context, params *ec2.CreateRouteTableInput, optFns ...func(*ec2.Options)) (*ec2.CreateRouteTableOutput, error)
	CreateRoute(ctx context.Context, params *ec2.CreateRouteInput, optFns ...func(*ec2.Options)) (*ec2.CreateRouteOutput, error)
	CreateSubnet(ctx context.Context, params *ec2.CreateSubnetInput, optFns ...func(*ec2.Options)) (*ec2.CreateSubnetOutput, error)
	DescribeSubnets(ctx context.Context, params *ec2.DescribeSubnetsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeSubnetsOutput, error)
	AssociateRouteTable(ctx context.Context, params *ec2.AssociateRouteTableInput, optFns ...func(*ec2.Options)) (*ec2.AssociateRouteTableOutput, error)
}

// createVpc creates a VPC and blocks until it is available
func createVpc(ctx context.Context, client EC2API, cidrBlock string, timeout time.Duration) (string, error) {
	resp, err := client.CreateVpc(ctx, &ec2.CreateVpcInput{
		CidrBlock: aws.String(cidrBlock),
	})
	if err != nil {
		return "", fmt.Errorf("failed to create VPC: %w", err)
	}
	vpcID := aws.ToString(resp.Vpc.VpcId)

	waiter := ec2.NewVpcAvailableWaiter(client)
	if err := waiter.Wait(ctx, &ec2.DescribeVpcsInput{VpcIds: []string{vpcID}}, timeout); err != nil {
		return "", fmt.Errorf("failed waiting for VPC %s: %w", vpcID, err)
	}

	return vpcID, nil
}

// tagResource sets the Name tag of a resource
func tagResource(ctx context.Context, client EC2API, resourceID, name string) error {
	_, err := client.CreateTags(ctx, &ec2.CreateTagsInput{
		Resources: []string{resourceID},
		Tags: []types.Tag{
			{Key: aws.String("Name"), Value: aws.String(name)},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to tag %s: %w", resourceID, err)
	}
	return nil
}

// enableDNSHostnames turns on DNS hostnames for instances in the VPC
func enableDNSHostnames(ctx context.Context, client EC2API, vpcID string) error {
	_, err := client.ModifyVpcAttribute(ctx, &ec2.ModifyVpcAttributeInput{
		VpcId:              aws.String(vpcID),
		EnableDnsHostnames: &types.AttributeBooleanValue{Value: aws.Bool(true)},
	})
	if err != nil {
		return fmt.Errorf("failed to enable DNS hostnames on %s: %w", vpcID, err)
	}
	return nil
}

func createInternetGateway(ctx context.Context, client EC2API) (string, error) {
	resp, err := client.CreateInternetGateway(ctx, &ec2.CreateInternetGatewayInput{})
	if err != nil {
		return "", fmt.Errorf("failed to create internet gateway: %w", err)
	}
	return aws.ToString(resp.InternetGateway.InternetGatewayId), nil
}

func attachInternetGateway(ctx context.Context, client EC2API, igwID, vpcID string) error {
	_, err := client.AttachInternetGateway(ctx, &ec2.AttachInternetGatewayInput{
		InternetGatewayId: aws.String(igwID),
		VpcId:             aws.String(vpcID),
	})
	if err != nil {
		return fmt.Errorf("failed to attach %s to %s: %w", igwID, vpcID, err)
	}
	return nil
}

func createRouteTable(ctx context.Context, client EC2API, vpcID string) (string, error) {
	resp, err := client.CreateRouteTable(ctx, &ec2.CreateRouteTableInput{
		VpcId: aws.String(vpcID),
	})
	if err != nil {
		return "", fmt.Errorf("failed to create route table: %w", err)
	}
	return aws.ToString(resp.RouteTable.RouteTableId), nil
}

func createRoute(ctx context.Context, client EC2API, routeTableID, destination, gatewayID string) error {
	_, err := client.CreateRoute(ctx, &ec2.CreateRouteInput{
		RouteTableId:         aws.String(routeTableID),
		DestinationCidrBlock: aws.String(destination),
		GatewayId:            aws.String(gatewayID),
	})
	if err != nil {
		return fmt.Errorf("failed to create route %s via %s: %w", destination, gatewayID, err)
	}
	return nil
}

// createSubnet creates a subnet and blocks until it is available.
// An empty availabilityZone lets AWS pick one.
func createSubnet(ctx context.Context, client EC2API, vpcID, cidrBlock, availabilityZone string, timeout time.Duration) (string, error) {
	input := &ec2.CreateSubnetInput{
		VpcId:     aws.String(vpcID),
		CidrBlock: aws.String(cidrBlock),
	}
	if availabilityZone != "" {
		input.AvailabilityZone = aws.String(availabilityZone)
	}

	resp, err := client.CreateSubnet(ctx, input)
	if err != nil {
		return "", fmt.Errorf("failed to create subnet %s: %w", cidrBlock, err)
	}
	subnetID := aws.ToString(resp.Subnet.SubnetId)

	waiter := ec2.NewSubnetAvailableWaiter(client)
	if err := waiter.Wait(ctx, &ec2.DescribeSubnetsInput{SubnetIds: []string{subnetID}}, timeout); err != nil {
		return "", fmt.Errorf("failed waiting for subnet %s: %w", subnetID, err)
	}

	return subnetID, nil
}

func associateRouteTable(ctx context.Context, client EC2API, subnetID, routeTableID string) error {
	_, err := client.AssociateRouteTable(ctx, &ec2.AssociateRouteTableInput{
		SubnetId:     aws.String(subnetID),
		RouteTableId: aws.String(routeTableID),
	})
	if err != nil {
		return fmt.Errorf("failed to associate %s with %s: %w", subnetID, routeTableID, err)
	}
	return nil
}
