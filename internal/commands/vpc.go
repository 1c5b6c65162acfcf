package commands

import (
	"context"
	"fmt"
	"net/netip"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/spf13/cobra"

	"github.com/zhang1980s/aws-provisioning-lab/internal/network"
	"github.com/zhang1980s/aws-provisioning-lab/internal/subnet"
)

const createVpcLongHelp = `Create a VPC with public/private subnets and an Internet Gateway.

The subnets are either listed explicitly, or computed from a subnet count N:
the VPC CIDR block is split into 2xN equal subnets, the first N public and the
next N private. The total is capped by --max-subnets (the default AWS limit of
200 subnets per VPC, so N <= 100). A non-positive --max-subnets selects the
default.

The VPC CIDR block must be IPv4.

Public subnets are associated with a route table holding a default route to the
Internet Gateway; private subnets with a route table without it.

Examples:
  $ create-vpc --region us-east-1 --vpc-cidr 10.0.0.0/16 --vpc-name lab -n 3
  $ create-vpc --region us-east-1 --vpc-cidr 10.0.0.0/16 --vpc-name lab \
      --public-subnets 10.0.0.0/24,10.0.1.0/24 --private-subnets 10.0.10.0/24
`

type createVpcOptions struct {
	vpcCidr           string
	vpcName           string
	publicSubnets     []string
	privateSubnets    []string
	subnetCount       int
	countSet          bool
	maxSubnets        int
	availabilityZones []string
	waitTimeout       time.Duration
	dryRun            bool
}

// NewCreateVpcCommand returns the create-vpc command.
func NewCreateVpcCommand(ctx context.Context, f *Factory) *cobra.Command {
	o := &createVpcOptions{}

	cmd := newRootCommand(f, "create-vpc", "Create a VPC with public and private subnets", createVpcLongHelp)
	cmd.RunE = func(c *cobra.Command, _ []string) error {
		o.countSet = c.Flags().Changed("subnet-count")
		return o.run(ctx, f)
	}

	f.AddFlags(cmd.Flags(), "")
	cmd.Flags().StringVar(&o.vpcCidr, "vpc-cidr", "", "CIDR block for the new VPC (e.g., 10.0.0.0/16)")
	cmd.Flags().StringVar(&o.vpcName, "vpc-name", "", "Name tag value for the VPC")
	cmd.Flags().StringSliceVar(&o.publicSubnets, "public-subnets", nil, "One or more CIDR blocks for public subnets")
	cmd.Flags().StringSliceVar(&o.privateSubnets, "private-subnets", nil, "One or more CIDR blocks for private subnets")
	cmd.Flags().IntVarP(&o.subnetCount, "subnet-count", "n", 0,
		"Number of public and private subnets each (total 2xN)")
	cmd.Flags().IntVar(&o.maxSubnets, "max-subnets", subnet.DefaultMaxSubnets,
		"Maximum number of subnets allowed in the VPC (non-positive selects the default)")
	cmd.Flags().StringSliceVar(&o.availabilityZones, "availability-zones", nil,
		"Availability zones assigned round-robin to the subnets (optional)")
	cmd.Flags().DurationVar(&o.waitTimeout, "wait-timeout", network.DefaultWaitTimeout,
		"Maximum time to wait for each VPC and subnet to become available")
	cmd.Flags().BoolVar(&o.dryRun, "dry-run", false, "Print the subnet layout without creating any resource")

	must(cmd.MarkFlagRequired("region"))
	must(cmd.MarkFlagRequired("vpc-cidr"))
	must(cmd.MarkFlagRequired("vpc-name"))
	cmd.MarkFlagsRequiredTogether("public-subnets", "private-subnets")
	cmd.MarkFlagsMutuallyExclusive("subnet-count", "public-subnets")
	cmd.MarkFlagsMutuallyExclusive("subnet-count", "private-subnets")
	cmd.MarkFlagsOneRequired("subnet-count", "public-subnets")

	return cmd
}

// layout computes the VPC layout without calling AWS.
func (o *createVpcOptions) layout() (*network.Options, error) {
	vpc, err := subnet.ParseBlock(o.vpcCidr)
	if err != nil {
		return nil, err
	}

	opts := &network.Options{
		VpcCidr:           vpc,
		VpcName:           o.vpcName,
		AvailabilityZones: o.availabilityZones,
		WaitTimeout:       o.waitTimeout,
	}

	partitioner := subnet.NewPartitioner(o.maxSubnets)
	if o.countSet {
		layout, err := partitioner.Split(vpc, o.subnetCount)
		if err != nil {
			return nil, err
		}
		opts.Public, opts.Private = layout.Public, layout.Private
	} else {
		if opts.Public, err = subnet.ParseBlocks(o.publicSubnets); err != nil {
			return nil, err
		}
		if opts.Private, err = subnet.ParseBlocks(o.privateSubnets); err != nil {
			return nil, err
		}
		if total := len(opts.Public) + len(opts.Private); total > partitioner.MaxSubnets() {
			return nil, fmt.Errorf("%w: %d subnets requested, limit is %d",
				subnet.ErrTooManySubnets, total, partitioner.MaxSubnets())
		}
	}

	return opts, opts.Validate()
}

func (o *createVpcOptions) run(ctx context.Context, f *Factory) error {
	opts, err := o.layout()
	if err != nil {
		return err
	}
	opts.Printer = f.Printer

	if o.dryRun {
		printLayout(f, opts)
		return nil
	}

	cfg, err := f.Load(ctx)
	if err != nil {
		return err
	}
	opts.Client = ec2.NewFromConfig(cfg)

	_, err = opts.Run(ctx)
	return err
}

func printLayout(f *Factory, opts *network.Options) {
	f.Printer.Section.Printfln("VPC %s (%s)", opts.VpcName, opts.VpcCidr)
	for _, group := range []struct {
		name   string
		blocks []netip.Prefix
	}{{"Public", opts.Public}, {"Private", opts.Private}} {
		f.Printer.Info.Printfln("%s subnets:", group.name)
		for _, b := range group.blocks {
			f.Printer.Info.Printfln("  %s", b)
		}
	}
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
