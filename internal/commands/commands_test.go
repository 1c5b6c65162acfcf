package commands

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"

	"github.com/zhang1980s/aws-provisioning-lab/internal/awsconfig"
	"github.com/zhang1980s/aws-provisioning-lab/internal/database"
	"github.com/zhang1980s/aws-provisioning-lab/internal/output"
	"github.com/zhang1980s/aws-provisioning-lab/internal/subnet"
)

var errNoAWS = errors.New("AWS must not be reached")

var _ = Describe("Commands", func() {
	var (
		ctx      context.Context
		buf      *bytes.Buffer
		f        *Factory
		loaded   int
		execute  func(cmd *cobra.Command, args ...string) error
		loadedAt awsconfig.Config
	)

	BeforeEach(func() {
		ctx = context.Background()
		buf = &bytes.Buffer{}
		loaded = 0
		f = NewFactory()
		f.Printer = output.NewFakePrinter(buf)
		f.LoadConfig = func(_ context.Context, c awsconfig.Config) (aws.Config, error) {
			loaded++
			loadedAt = c
			return aws.Config{}, errNoAWS
		}
		execute = func(cmd *cobra.Command, args ...string) error {
			cmd.SetArgs(args)
			cmd.SetOut(buf)
			cmd.SetErr(buf)
			return cmd.Execute()
		}
	})

	Describe("create-vpc", func() {
		var cmd *cobra.Command

		BeforeEach(func() {
			cmd = NewCreateVpcCommand(ctx, f)
		})

		It("prints the computed layout on dry run", func() {
			Expect(execute(cmd, "--region", "us-east-1", "--vpc-cidr", "10.0.0.0/16",
				"--vpc-name", "lab", "-n", "3", "--dry-run")).To(Succeed())

			Expect(loaded).To(BeZero())
			out := buf.String()
			Expect(out).To(ContainSubstring("VPC lab (10.0.0.0/16)"))
			for _, cidr := range []string{"10.0.0.0/19", "10.0.32.0/19", "10.0.64.0/19",
				"10.0.96.0/19", "10.0.128.0/19", "10.0.160.0/19"} {
				Expect(out).To(ContainSubstring(cidr))
			}
			Expect(out).NotTo(ContainSubstring("10.0.192.0/19"))
			Expect(out).NotTo(ContainSubstring("10.0.224.0/19"))
		})

		It("accepts explicit subnet lists", func() {
			Expect(execute(cmd, "--region", "us-east-1", "--vpc-cidr", "10.0.0.0/16", "--vpc-name", "lab",
				"--public-subnets", "10.0.0.0/24,10.0.1.0/24", "--private-subnets", "10.0.10.0/24", "--dry-run")).To(Succeed())

			Expect(buf.String()).To(ContainSubstring("10.0.1.0/24"))
			Expect(buf.String()).To(ContainSubstring("10.0.10.0/24"))
		})

		It("rejects more than 100 subnet pairs before calling AWS", func() {
			err := execute(cmd, "--region", "us-east-1", "--vpc-cidr", "10.0.0.0/8", "--vpc-name", "lab", "-n", "101")
			Expect(err).To(MatchError(subnet.ErrTooManySubnets))
			Expect(loaded).To(BeZero())
		})

		It("honors a raised subnet limit", func() {
			Expect(execute(cmd, "--region", "us-east-1", "--vpc-cidr", "10.0.0.0/8", "--vpc-name", "lab",
				"-n", "101", "--max-subnets", "400", "--dry-run")).To(Succeed())
		})

		It("applies the default limit to both paths for a non-positive --max-subnets", func() {
			for _, limit := range []string{"--max-subnets=0", "--max-subnets=-5"} {
				Expect(execute(NewCreateVpcCommand(ctx, f), "--region", "us-east-1", "--vpc-cidr", "10.0.0.0/16",
					"--vpc-name", "lab", "--public-subnets", "10.0.0.0/24", "--private-subnets", "10.0.1.0/24",
					limit, "--dry-run")).To(Succeed())

				Expect(execute(NewCreateVpcCommand(ctx, f), "--region", "us-east-1", "--vpc-cidr", "10.0.0.0/16",
					"--vpc-name", "lab", "-n", "2", limit, "--dry-run")).To(Succeed())

				err := execute(NewCreateVpcCommand(ctx, f), "--region", "us-east-1", "--vpc-cidr", "10.0.0.0/8",
					"--vpc-name", "lab", "-n", "101", limit)
				Expect(err).To(MatchError(subnet.ErrTooManySubnets))
			}
			Expect(loaded).To(BeZero())
		})

		It("rejects an IPv6 VPC block before calling AWS", func() {
			err := execute(cmd, "--region", "us-east-1", "--vpc-cidr", "2001:db8::/56", "--vpc-name", "lab", "-n", "2")
			Expect(err).To(MatchError(subnet.ErrInvalidBlock))
			Expect(loaded).To(BeZero())
		})

		It("rejects a huge subnet count with the limit error", func() {
			err := execute(cmd, "--region", "us-east-1", "--vpc-cidr", "10.0.0.0/16", "--vpc-name", "lab",
				"-n", "4611686018427387904")
			Expect(err).To(MatchError(subnet.ErrTooManySubnets))
		})

		It("rejects a block too small to split", func() {
			err := execute(cmd, "--region", "us-east-1", "--vpc-cidr", "10.0.0.0/28", "--vpc-name", "lab", "-n", "32")
			Expect(err).To(MatchError(subnet.ErrBlockTooSmall))
			Expect(loaded).To(BeZero())
		})

		It("rejects a zero subnet count", func() {
			err := execute(cmd, "--region", "us-east-1", "--vpc-cidr", "10.0.0.0/16", "--vpc-name", "lab", "-n", "0")
			Expect(err).To(MatchError(subnet.ErrInvalidCount))
		})

		It("rejects a malformed CIDR block", func() {
			err := execute(cmd, "--region", "us-east-1", "--vpc-cidr", "10.0.0.0/not", "--vpc-name", "lab", "-n", "2")
			Expect(err).To(MatchError(subnet.ErrInvalidBlock))
		})

		It("rejects explicit subnets outside the VPC", func() {
			err := execute(cmd, "--region", "us-east-1", "--vpc-cidr", "10.0.0.0/16", "--vpc-name", "lab",
				"--public-subnets", "10.1.0.0/24", "--private-subnets", "10.0.10.0/24")
			Expect(err).To(MatchError(subnet.ErrOutsideBlock))
			Expect(loaded).To(BeZero())
		})

		It("rejects a subnet count combined with explicit lists", func() {
			err := execute(cmd, "--region", "us-east-1", "--vpc-cidr", "10.0.0.0/16", "--vpc-name", "lab",
				"-n", "2", "--public-subnets", "10.0.0.0/24", "--private-subnets", "10.0.1.0/24")
			Expect(err).To(HaveOccurred())
			Expect(loaded).To(BeZero())
		})

		It("requires the region", func() {
			err := execute(cmd, "--vpc-cidr", "10.0.0.0/16", "--vpc-name", "lab", "-n", "2")
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("region"))
		})

		It("loads the AWS configuration for the selected region", func() {
			err := execute(cmd, "--region", "eu-west-1", "--profile", "lab", "--vpc-cidr", "10.0.0.0/16",
				"--vpc-name", "lab", "-n", "2")
			Expect(err).To(MatchError(errNoAWS))
			Expect(loaded).To(Equal(1))
			Expect(loadedAt).To(Equal(awsconfig.Config{Region: "eu-west-1", Profile: "lab"}))
		})
	})

	Describe("create-ec2-instance", func() {
		It("requires the VPC, subnet and AMI", func() {
			err := execute(NewCreateEC2InstanceCommand(ctx, f), "--vpc-id", "vpc-1")
			Expect(err).To(HaveOccurred())
			Expect(loaded).To(BeZero())
		})

		It("defaults to us-east-1", func() {
			err := execute(NewCreateEC2InstanceCommand(ctx, f),
				"--vpc-id", "vpc-1", "--subnet-id", "subnet-1", "--ami-id", "ami-1")
			Expect(err).To(MatchError(errNoAWS))
			Expect(loadedAt.Region).To(Equal("us-east-1"))
		})
	})

	Describe("create-rds", func() {
		It("requires the credentials and the security group", func() {
			err := execute(NewCreateRDSCommand(ctx, f), "--db-identifier", "labdb")
			Expect(err).To(HaveOccurred())
			Expect(loaded).To(BeZero())
		})

		It("rejects empty required values before calling AWS", func() {
			err := execute(NewCreateRDSCommand(ctx, f), "--db-identifier", "labdb", "--db-username", "admin",
				"--db-password", "", "--security-group-id", "sg-1")
			Expect(err).To(MatchError(database.ErrMissingArgument))
			Expect(loaded).To(BeZero())
		})
	})

	Describe("s3ops", func() {
		It("exposes the object storage operations", func() {
			cmd := NewS3OpsCommand(ctx, f)
			var names []string
			for _, c := range cmd.Commands() {
				names = append(names, c.Name())
			}
			Expect(names).To(ConsistOf("list-buckets", "upload", "download", "delete"))
		})

		It("requires a bucket and a key to delete", func() {
			err := execute(NewS3OpsCommand(ctx, f), "delete", "--bucket", "lab")
			Expect(err).To(HaveOccurred())
			Expect(loaded).To(BeZero())
		})

		It("passes the region of the parent command", func() {
			file := filepath.Join(GinkgoT().TempDir(), "report.txt")
			Expect(os.WriteFile(file, []byte("x"), 0o600)).To(Succeed())

			err := execute(NewS3OpsCommand(ctx, f), "--region", "ap-southeast-1", "upload",
				"--bucket", "lab", "--file", file)
			Expect(err).To(MatchError(errNoAWS))
			Expect(loadedAt.Region).To(Equal("ap-southeast-1"))
		})
	})
})
