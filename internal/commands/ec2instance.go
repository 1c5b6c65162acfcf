package commands

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/spf13/cobra"

	"github.com/zhang1980s/aws-provisioning-lab/internal/compute"
)

const createEC2InstanceLongHelp = `Create an EC2 instance with a security group and a key pair.

The security group allows HTTP from anywhere and SSH from the public IP of the
host running the command only. The private key of the new key pair is saved as
<key-name>.pem, readable by its owner only.

Examples:
  $ create-ec2-instance --vpc-id vpc-0abc --subnet-id subnet-0def --ami-id ami-1234567890abcdef0
`

// NewCreateEC2InstanceCommand returns the create-ec2-instance command.
func NewCreateEC2InstanceCommand(ctx context.Context, f *Factory) *cobra.Command {
	o := &compute.Options{}

	cmd := newRootCommand(f, "create-ec2-instance", "Create an EC2 instance with security group and key pair",
		createEC2InstanceLongHelp)
	cmd.RunE = func(_ *cobra.Command, _ []string) error {
		cfg, err := f.Load(ctx)
		if err != nil {
			return err
		}

		o.Printer = f.Printer
		o.Client = ec2.NewFromConfig(cfg)
		_, err = o.Run(ctx)
		return err
	}

	f.AddFlags(cmd.Flags(), "us-east-1")
	cmd.Flags().StringVar(&o.VpcID, "vpc-id", "", "VPC ID")
	cmd.Flags().StringVar(&o.SubnetID, "subnet-id", "", "Subnet ID")
	cmd.Flags().StringVar(&o.ImageID, "ami-id", "", "AMI ID (e.g. ami-1234567890abcdef0)")
	cmd.Flags().StringVar(&o.KeyName, "key-name", compute.DefaultKeyName, "Name of the EC2 Key Pair to create")
	cmd.Flags().StringVar(&o.KeyDir, "key-dir", ".", "Directory where the private key is saved")
	cmd.Flags().StringVar(&o.InstanceType, "instance-type", compute.DefaultInstanceType, "EC2 instance type")
	cmd.Flags().StringVar(&o.SecurityGroupName, "security-group-name", compute.DefaultSecurityGroupName,
		"Name of the security group to create")
	cmd.Flags().StringVar(&o.CheckIPURL, "check-ip-url", compute.DefaultCheckIPURL,
		"Service returning the public IP allowed to SSH into the instance")
	cmd.Flags().BoolVar(&o.Wait, "wait", false, "Wait for the instance to be running and print its public IP")
	cmd.Flags().DurationVar(&o.WaitTimeout, "wait-timeout", compute.DefaultWaitTimeout, "Maximum time to wait for the instance")
	cmd.Flags().Int32Var(&o.VolumeSize, "volume-size", compute.DefaultVolumeSize, "Size of the root volume in GiB")

	must(cmd.MarkFlagRequired("vpc-id"))
	must(cmd.MarkFlagRequired("subnet-id"))
	must(cmd.MarkFlagRequired("ami-id"))

	return cmd
}

