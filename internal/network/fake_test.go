package network

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/smithy-go"
)

// fakeEC2 records every call and hands out sequential resource identifiers.
type fakeEC2 struct {
	calls   []string
	tags    map[string]string
	subnets map[string]*ec2.CreateSubnetInput
	assoc   map[string]string
	routes  map[string]string
	counter int

	// failOn makes the n-th call (1-based) of the named operation fail
	failOn    string
	failAfter int
	seen      map[string]int
}

func newFakeEC2() *fakeEC2 {
	return &fakeEC2{
		tags:    map[string]string{},
		subnets: map[string]*ec2.CreateSubnetInput{},
		assoc:   map[string]string{},
		routes:  map[string]string{},
		seen:    map[string]int{},
	}
}

func (f *fakeEC2) record(op string) error {
	f.calls = append(f.calls, op)
	f.seen[op]++
	if op == f.failOn && f.seen[op] == f.failAfter {
		return &smithy.GenericAPIError{Code: "SubnetLimitExceeded", Message: "limit reached"}
	}
	return nil
}

func (f *fakeEC2) nextID(prefix string) string {
	f.counter++
	return fmt.Sprintf("%s-%04d", prefix, f.counter)
}

func (f *fakeEC2) CreateVpc(_ context.Context, _ *ec2.CreateVpcInput, _ ...func(*ec2.Options)) (*ec2.CreateVpcOutput, error) {
	if err := f.record("CreateVpc"); err != nil {
		return nil, err
	}
	return &ec2.CreateVpcOutput{Vpc: &types.Vpc{VpcId: aws.String(f.nextID("vpc")), State: types.VpcStatePending}}, nil
}

func (f *fakeEC2) DescribeVpcs(_ context.Context, in *ec2.DescribeVpcsInput, _ ...func(*ec2.Options)) (*ec2.DescribeVpcsOutput, error) {
	if err := f.record("DescribeVpcs"); err != nil {
		return nil, err
	}
	vpcs := make([]types.Vpc, 0, len(in.VpcIds))
	for _, id := range in.VpcIds {
		vpcs = append(vpcs, types.Vpc{VpcId: aws.String(id), State: types.VpcStateAvailable})
	}
	return &ec2.DescribeVpcsOutput{Vpcs: vpcs}, nil
}

func (f *fakeEC2) ModifyVpcAttribute(_ context.Context, _ *ec2.ModifyVpcAttributeInput, _ ...func(*ec2.Options)) (*ec2.ModifyVpcAttributeOutput, error) {
	if err := f.record("ModifyVpcAttribute"); err != nil {
		return nil, err
	}
	return &ec2.ModifyVpcAttributeOutput{}, nil
}

func (f *fakeEC2) CreateTags(_ context.Context, in *ec2.CreateTagsInput, _ ...func(*ec2.Options)) (*ec2.CreateTagsOutput, error) {
	if err := f.record("CreateTags"); err != nil {
		return nil, err
	}
	for _, id := range in.Resources {
		for _, tag := range in.Tags {
			if aws.ToString(tag.Key) == "Name" {
				f.tags[id] = aws.ToString(tag.Value)
			}
		}
	}
	return &ec2.CreateTagsOutput{}, nil
}

func (f *fakeEC2) CreateInternetGateway(_ context.Context, _ *ec2.CreateInternetGatewayInput, _ ...func(*ec2.Options)) (*ec2.CreateInternetGatewayOutput, error) {
	if err := f.record("CreateInternetGateway"); err != nil {
		return nil, err
	}
	return &ec2.CreateInternetGatewayOutput{
		InternetGateway: &types.InternetGateway{InternetGatewayId: aws.String(f.nextID("igw"))},
	}, nil
}

func (f *fakeEC2) AttachInternetGateway(_ context.Context, _ *ec2.AttachInternetGatewayInput, _ ...func(*ec2.Options)) (*ec2.AttachInternetGatewayOutput, error) {
	if err := f.record("AttachInternetGateway"); err != nil {
		return nil, err
	}
	return &ec2.AttachInternetGatewayOutput{}, nil
}

func (f *fakeEC2) CreateRouteTable(_ context.Context, _ *ec2.CreateRouteTableInput, _ ...func(*ec2.Options)) (*ec2.CreateRouteTableOutput, error) {
	if err := f.record("CreateRouteTable"); err != nil {
		return nil, err
	}
	return &ec2.CreateRouteTableOutput{RouteTable: &types.RouteTable{RouteTableId: aws.String(f.nextID("rtb"))}}, nil
}

func (f *fakeEC2) CreateRoute(_ context.Context, in *ec2.CreateRouteInput, _ ...func(*ec2.Options)) (*ec2.CreateRouteOutput, error) {
	if err := f.record("CreateRoute"); err != nil {
		return nil, err
	}
	f.routes[aws.ToString(in.RouteTableId)] = aws.ToString(in.DestinationCidrBlock) + "->" + aws.ToString(in.GatewayId)
	return &ec2.CreateRouteOutput{Return: aws.Bool(true)}, nil
}

func (f *fakeEC2) CreateSubnet(_ context.Context, in *ec2.CreateSubnetInput, _ ...func(*ec2.Options)) (*ec2.CreateSubnetOutput, error) {
	if err := f.record("CreateSubnet"); err != nil {
		return nil, err
	}
	id := f.nextID("subnet")
	f.subnets[id] = in
	return &ec2.CreateSubnetOutput{Subnet: &types.Subnet{SubnetId: aws.String(id), State: types.SubnetStatePending}}, nil
}

func (f *fakeEC2) DescribeSubnets(_ context.Context, in *ec2.DescribeSubnetsInput, _ ...func(*ec2.Options)) (*ec2.DescribeSubnetsOutput, error) {
	if err := f.record("DescribeSubnets"); err != nil {
		return nil, err
	}
	subnets := make([]types.Subnet, 0, len(in.SubnetIds))
	for _, id := range in.SubnetIds {
		subnets = append(subnets, types.Subnet{SubnetId: aws.String(id), State: types.SubnetStateAvailable})
	}
	return &ec2.DescribeSubnetsOutput{Subnets: subnets}, nil
}

func (f *fakeEC2) AssociateRouteTable(_ context.Context, in *ec2.AssociateRouteTableInput, _ ...func(*ec2.Options)) (*ec2.AssociateRouteTableOutput, error) {
	if err := f.record("AssociateRouteTable"); err != nil {
		return nil, err
	}
	f.assoc[aws.ToString(in.SubnetId)] = aws.ToString(in.RouteTableId)
	return &ec2.AssociateRouteTableOutput{AssociationId: aws.String(f.nextID("rtbassoc"))}, nil
}
