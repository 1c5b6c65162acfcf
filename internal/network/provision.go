package network

import (
	"context"
	"fmt"
	"net/netip"
	"strings"
	"time"

	"github.com/zhang1980s/aws-provisioning-lab/internal/output"
	"github.com/zhang1980s/aws-provisioning-lab/internal/subnet"
)

// Options holds the parameters of a VPC layout.
type Options struct {
	Printer *output.Printer
	Client  EC2API

	VpcCidr netip.Prefix
	VpcName string
	Public  []netip.Prefix
	Private []netip.Prefix

	// AvailabilityZones are assigned round-robin within each subnet group.
	AvailabilityZones []string
	WaitTimeout       time.Duration
}

// Subnet describes a subnet created by Run.
type Subnet struct {
	ID               string
	CidrBlock        string
	AvailabilityZone string
}

// Result collects the identifiers of the created resources.
type Result struct {
	VpcID               string
	InternetGatewayID   string
	PublicRouteTableID  string
	PrivateRouteTableID string
	PublicSubnets       []Subnet
	PrivateSubnets      []Subnet
}

// NewOptionsFromLayout returns Options creating the subnets of layout.
func NewOptionsFromLayout(printer *output.Printer, client EC2API, name string, layout *subnet.Layout) *Options {
	return &Options{
		Printer: printer,
		Client:  client,
		VpcCidr: layout.Source,
		VpcName: name,
		Public:  layout.Public,
		Private: layout.Private,
	}
}

// Validate checks the layout locally, before any AWS call is made.
func (o *Options) Validate() error {
	if o.VpcName == "" {
		return fmt.Errorf("VPC name must not be empty")
	}
	if !o.VpcCidr.IsValid() {
		return fmt.Errorf("%w: VPC CIDR block is not set", subnet.ErrInvalidBlock)
	}
	// CreateVpc takes an IPv4 primary block and the default route is IPv4 only
	if !o.VpcCidr.Addr().Is4() {
		return fmt.Errorf("%w: VPC CIDR block %s must be IPv4", subnet.ErrInvalidBlock, o.VpcCidr)
	}
	all := append(append([]netip.Prefix{}, o.Public...), o.Private...)
	return subnet.Within(o.VpcCidr, all...)
}

// Run creates the VPC and its subnets. Every call blocks until AWS confirms
// the resource, and the first failure aborts the run leaving the resources
// created so far in place.
func (o *Options) Run(ctx context.Context) (*Result, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}

	timeout := o.WaitTimeout
	if timeout <= 0 {
		timeout = DefaultWaitTimeout
	}

	res := &Result{}
	var err error

	o.Printer.Step("Creating VPC...")
	if res.VpcID, err = createVpc(ctx, o.Client, o.VpcCidr.String(), timeout); err != nil {
		return res, err
	}
	if err = tagResource(ctx, o.Client, res.VpcID, o.VpcName); err != nil {
		return res, err
	}
	if err = enableDNSHostnames(ctx, o.Client, res.VpcID); err != nil {
		return res, err
	}
	o.Printer.Done("VPC created: %s", res.VpcID)

	o.Printer.Step("Creating Internet Gateway...")
	if res.InternetGatewayID, err = createInternetGateway(ctx, o.Client); err != nil {
		return res, err
	}
	if err = tagResource(ctx, o.Client, res.InternetGatewayID, o.VpcName+"-igw"); err != nil {
		return res, err
	}
	if err = attachInternetGateway(ctx, o.Client, res.InternetGatewayID, res.VpcID); err != nil {
		return res, err
	}
	o.Printer.Done("IGW created and attached: %s", res.InternetGatewayID)

	o.Printer.Step("Setting up public route table and subnets...")
	if res.PublicRouteTableID, err = createRouteTable(ctx, o.Client, res.VpcID); err != nil {
		return res, err
	}
	if err = tagResource(ctx, o.Client, res.PublicRouteTableID, o.VpcName+"-public-rt"); err != nil {
		return res, err
	}
	if err = createRoute(ctx, o.Client, res.PublicRouteTableID, anywhere, res.InternetGatewayID); err != nil {
		return res, err
	}
	if res.PublicSubnets, err = o.createSubnets(ctx, res.VpcID, res.PublicRouteTableID, "Public", o.Public, timeout); err != nil {
		return res, err
	}

	o.Printer.Step("Setting up private route table and subnets...")
	if res.PrivateRouteTableID, err = createRouteTable(ctx, o.Client, res.VpcID); err != nil {
		return res, err
	}
	if err = tagResource(ctx, o.Client, res.PrivateRouteTableID, o.VpcName+"-private-rt"); err != nil {
		return res, err
	}
	if res.PrivateSubnets, err = o.createSubnets(ctx, res.VpcID, res.PrivateRouteTableID, "Private", o.Private, timeout); err != nil {
		return res, err
	}

	o.Printer.Success.Println("All resources created successfully.")
	return res, nil
}

// createSubnets creates one group of subnets and associates them with routeTableID.
// The subnets created before a failure are still returned.
func (o *Options) createSubnets(ctx context.Context, vpcID, routeTableID, label string,
	blocks []netip.Prefix, timeout time.Duration) ([]Subnet, error) {
	subnets := make([]Subnet, 0, len(blocks))

	for i, block := range blocks {
		cidr := block.String()
		az := ""
		if len(o.AvailabilityZones) > 0 {
			az = o.AvailabilityZones[i%len(o.AvailabilityZones)]
		}

		subnetID, err := createSubnet(ctx, o.Client, vpcID, cidr, az, timeout)
		if err != nil {
			return subnets, err
		}
		subnets = append(subnets, Subnet{ID: subnetID, CidrBlock: cidr, AvailabilityZone: az})

		if err := tagResource(ctx, o.Client, subnetID, fmt.Sprintf("%s-%s-%s", o.VpcName, strings.ToLower(label), cidr)); err != nil {
			return subnets, err
		}
		if err := associateRouteTable(ctx, o.Client, subnetID, routeTableID); err != nil {
			return subnets, err
		}

		if az != "" {
			o.Printer.Done("%s subnet created: %s (%s, %s)", label, subnetID, cidr, az)
		} else {
			o.Printer.Done("%s subnet created: %s (%s)", label, subnetID, cidr)
		}
	}

	return subnets, nil
}
