package commands

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/spf13/cobra"

	"github.com/zhang1980s/aws-provisioning-lab/internal/database"
)

const createRDSLongHelp = `Create a publicly accessible RDS instance.

The database port is first opened to --ingress-cidr (anywhere by default) on
the given security group, then the instance is created and the command blocks
until it is available, printing its endpoint.

Examples:
  $ create-rds --db-identifier labdb --db-username admin --db-password '***' \
      --security-group-id sg-0abc
`

// NewCreateRDSCommand returns the create-rds command.
func NewCreateRDSCommand(ctx context.Context, f *Factory) *cobra.Command {
	o := database.NewOptions(nil)

	cmd := newRootCommand(f, "create-rds", "Create an RDS instance", createRDSLongHelp)
	cmd.RunE = func(_ *cobra.Command, _ []string) error {
		o.Printer = f.Printer
		if err := o.Validate(); err != nil {
			return err
		}

		cfg, err := f.Load(ctx)
		if err != nil {
			return err
		}
		o.EC2 = ec2.NewFromConfig(cfg)
		o.RDS = rds.NewFromConfig(cfg)
		if o.EndpointParameter != "" {
			o.SSM = ssm.NewFromConfig(cfg)
		}

		endpoint, err := o.Run(ctx)
		if err != nil {
			return err
		}
		f.Printer.Success.Printfln("Connect to your DB at: %s", endpoint)
		return nil
	}

	f.AddFlags(cmd.Flags(), "")
	cmd.Flags().StringVar(&o.Identifier, "db-identifier", "", "DB instance identifier")
	cmd.Flags().StringVar(&o.Username, "db-username", "", "Master username")
	cmd.Flags().StringVar(&o.Password, "db-password", "", "Master password")
	cmd.Flags().StringVar(&o.SecurityGroupID, "security-group-id", "", "Existing security group attached to the instance")
	cmd.Flags().StringVar(&o.InstanceClass, "db-instance-class", o.InstanceClass, "DB instance class")
	cmd.Flags().StringVar(&o.Engine, "engine", o.Engine, "Database engine")
	cmd.Flags().Int32Var(&o.AllocatedStorage, "allocated-storage", o.AllocatedStorage, "Allocated storage in GiB")
	cmd.Flags().Int32Var(&o.Port, "port", o.Port, "Database port")
	cmd.Flags().Int32Var(&o.BackupRetention, "backup-retention", o.BackupRetention, "Backup retention period in days")
	cmd.Flags().BoolVar(&o.MultiAZ, "multi-az", o.MultiAZ, "Create a Multi-AZ deployment")
	cmd.Flags().StringVar(&o.IngressCidr, "ingress-cidr", o.IngressCidr, "CIDR block allowed to reach the database port")
	cmd.Flags().StringVar(&o.EndpointParameter, "endpoint-parameter", "",
		"SSM parameter receiving the endpoint address (optional)")
	cmd.Flags().DurationVar(&o.WaitTimeout, "wait-timeout", o.WaitTimeout,
		"Maximum time to wait for the instance to become available")

	must(cmd.MarkFlagRequired("db-identifier"))
	must(cmd.MarkFlagRequired("db-username"))
	must(cmd.MarkFlagRequired("db-password"))
	must(cmd.MarkFlagRequired("security-group-id"))

	return cmd
}
