// Package database creates a publicly reachable RDS instance.
package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"

	"github.com/zhang1980s/aws-provisioning-lab/internal/output"
)

// Defaults of a single-AZ public MySQL instance.
const (
	DefaultInstanceClass    = "db.r6i.2xlarge"
	DefaultEngine           = "mysql"
	DefaultAllocatedStorage = 100
	DefaultPort             = 3306
	DefaultBackupRetention  = 1
	DefaultIngressCidr      = "0.0.0.0/0"

	// DefaultWaitTimeout bounds the wait for the instance to become available.
	DefaultWaitTimeout = 60 * time.Minute
)

// ErrMissingArgument is returned when a required parameter is empty.
var ErrMissingArgument = errors.New("missing required argument")

// EC2API is the subset of the EC2 client used to open the database port.
type EC2API interface {
	AuthorizeSecurityGroupIngress(ctx context.Context, params *ec2.AuthorizeSecurityGroupIngressInput, optFns ...func(*ec2.Options)) (*ec2.AuthorizeSecurityGroupIngressOutput, error)
}

// RDSAPI is the subset of the RDS client used to create the instance.
type RDSAPI interface {
	CreateDBInstance(ctx context.Context, params *rds.CreateDBInstanceInput, optFns ...func(*rds.Options)) (*rds.CreateDBInstanceOutput, error)
	DescribeDBInstances(ctx context.Context, params *rds.DescribeDBInstancesInput, optFns ...func(*rds.Options)) (*rds.DescribeDBInstancesOutput, error)
}

// SSMAPI stores the endpoint in Parameter Store.
type SSMAPI interface {
	PutParameter(ctx context.Context, params *ssm.PutParameterInput, optFns ...func(*ssm.Options)) (*ssm.PutParameterOutput, error)
}

// Options holds the parameters of the database instance.
type Options struct {
	Printer *output.Printer
	EC2     EC2API
	RDS     RDSAPI
	// SSM is only used when EndpointParameter is set.
	SSM SSMAPI

	Identifier      string
	Username        string
	Password        string
	SecurityGroupID string

	InstanceClass      string
	Engine             string
	AllocatedStorage   int32
	Port               int32
	BackupRetention    int32
	MultiAZ            bool
	PubliclyAccessible bool
	IngressCidr        string

	// EndpointParameter names an SSM parameter receiving the endpoint address.
	EndpointParameter string
	WaitTimeout       time.Duration
}

// NewOptions returns Options with the defaults of a single public MySQL instance.
func NewOptions(printer *output.Printer) *Options {
	return &Options{
		Printer:            printer,
		InstanceClass:      DefaultInstanceClass,
		Engine:             DefaultEngine,
		AllocatedStorage:   DefaultAllocatedStorage,
		Port:               DefaultPort,
		BackupRetention:    DefaultBackupRetention,
		PubliclyAccessible: true,
		IngressCidr:        DefaultIngressCidr,
		WaitTimeout:        DefaultWaitTimeout,
	}
}

// Validate checks that all the required parameters are set.
func (o *Options) Validate() error {
	required := []struct{ name, value string }{
		{"db-identifier", o.Identifier},
		{"db-username", o.Username},
		{"db-password", o.Password},
		{"security-group-id", o.SecurityGroupID},
	}
	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("%w: %s", ErrMissingArgument, r.name)
		}
	}
	return nil
}

// Run opens the database port on the security group, creates the instance and
// waits for it to be available. It returns the endpoint address.
func (o *Options) Run(ctx context.Context) (string, error) {
	if err := o.Validate(); err != nil {
		return "", err
	}

	if err := o.openPort(ctx); err != nil {
		return "", err
	}

	endpoint, err := o.createInstance(ctx)
	if err != nil {
		return "", err
	}

	if o.EndpointParameter != "" {
		if err := o.publishEndpoint(ctx, endpoint); err != nil {
			return endpoint, err
		}
	}

	return endpoint, nil
}

// openPort allows the database port from IngressCidr
func (o *Options) openPort(ctx context.Context) error {
	o.Printer.Step("Authorizing inbound traffic to port %d from %s...", o.Port, o.IngressCidr)

	_, err := o.EC2.AuthorizeSecurityGroupIngress(ctx, &ec2.AuthorizeSecurityGroupIngressInput{
		GroupId: aws.String(o.SecurityGroupID),
		IpPermissions: []ec2types.IpPermission{
			{
				IpProtocol: aws.String("tcp"),
				FromPort:   aws.Int32(o.Port),
				ToPort:     aws.Int32(o.Port),
				IpRanges:   []ec2types.IpRange{{CidrIp: aws.String(o.IngressCidr)}},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to authorize ingress on %s: %w", o.SecurityGroupID, err)
	}

	o.Printer.Done("Ingress rule added.")
	return nil
}

func (o *Options) createInstance(ctx context.Context) (string, error) {
	o.Printer.Step("Creating RDS instance...")

	_, err := o.RDS.CreateDBInstance(ctx, &rds.CreateDBInstanceInput{
		DBInstanceIdentifier:  aws.String(o.Identifier),
		MasterUsername:        aws.String(o.Username),
		MasterUserPassword:    aws.String(o.Password),
		DBInstanceClass:       aws.String(o.InstanceClass),
		AllocatedStorage:      aws.Int32(o.AllocatedStorage),
		Engine:                aws.String(o.Engine),
		VpcSecurityGroupIds:   []string{o.SecurityGroupID},
		Port:                  aws.Int32(o.Port),
		BackupRetentionPeriod: aws.Int32(o.BackupRetention),
		MultiAZ:               aws.Bool(o.MultiAZ),
		PubliclyAccessible:    aws.Bool(o.PubliclyAccessible),
	})
	if err != nil {
		return "", fmt.Errorf("failed to create DB instance %s: %w", o.Identifier, err)
	}

	o.Printer.Step("Waiting for RDS to become available...")
	waiter := rds.NewDBInstanceAvailableWaiter(o.RDS)
	input := &rds.DescribeDBInstancesInput{DBInstanceIdentifier: aws.String(o.Identifier)}
	if err := waiter.Wait(ctx, input, o.WaitTimeout); err != nil {
		return "", fmt.Errorf("failed waiting for DB instance %s: %w", o.Identifier, err)
	}

	resp, err := o.RDS.DescribeDBInstances(ctx, input)
	if err != nil {
		return "", fmt.Errorf("failed to describe DB instance %s: %w", o.Identifier, err)
	}
	if len(resp.DBInstances) == 0 || resp.DBInstances[0].Endpoint == nil {
		return "", fmt.Errorf("DB instance %s has no endpoint", o.Identifier)
	}

	endpoint := aws.ToString(resp.DBInstances[0].Endpoint.Address)
	o.Printer.Done("Database endpoint: %s", endpoint)
	return endpoint, nil
}

func (o *Options) publishEndpoint(ctx context.Context, endpoint string) error {
	if o.SSM == nil {
		return fmt.Errorf("no SSM client to store %s", o.EndpointParameter)
	}

	_, err := o.SSM.PutParameter(ctx, &ssm.PutParameterInput{
		Name:      aws.String(o.EndpointParameter),
		Value:     aws.String(endpoint),
		Type:      ssmtypes.ParameterTypeString,
		Overwrite: aws.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("failed to store endpoint in %s: %w", o.EndpointParameter, err)
	}

	o.Printer.Done("Endpoint stored in SSM parameter %s", o.EndpointParameter)
	return nil
}
