// Package compute launches a single EC2 instance reachable over HTTP and SSH.
package compute

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/zhang1980s/aws-provisioning-lab/internal/output"
)

const (
	// DefaultInstanceType is the instance type launched when none is given.
	DefaultInstanceType = "t2.micro"
	// DefaultKeyName is the name of the key pair created when none is given.
	DefaultKeyName = "my-key-pair"
	// DefaultSecurityGroupName is the name of the security group created for the instance.
	DefaultSecurityGroupName = "web-ssh-access"
	// DefaultVolumeSize is the size in GiB of the root volume.
	DefaultVolumeSize = 10
	// DefaultWaitTimeout bounds the wait for the instance to run.
	DefaultWaitTimeout = 10 * time.Minute

	keyFileMode fs.FileMode = 0o400
)

// ErrKeyFileExists is returned when the private key would overwrite an existing file.
var ErrKeyFileExists = errors.New("key file already exists")

// EC2API is the subset of the EC2 client used to launch an instance.
type EC2API interface {
	CreateSecurityGroup(ctx context.Context, params *ec2.CreateSecurityGroupInput, optFns ...func(*ec2.Options)) (*ec2.CreateSecurityGroupOutput, error)
	AuthorizeSecurityGroupIngress(ctx context.Context, params *ec2.AuthorizeSecurityGroupIngressInput, optFns ...func(*ec2.Options)) (*ec2.AuthorizeSecurityGroupIngressOutput, error)
	CreateKeyPair(ctx context.Context, params *ec2.CreateKeyPairInput, optFns ...func(*ec2.Options)) (*ec2.CreateKeyPairOutput, error)
	RunInstances(ctx context.Context, params *ec2.RunInstancesInput, optFns ...func(*ec2.Options)) (*ec2.RunInstancesOutput, error)
	DescribeInstances(ctx context.Context, params *ec2.DescribeInstancesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error)
}

// Options holds the parameters of the instance launch.
type Options struct {
	Printer    *output.Printer
	Client     EC2API
	HTTPClient *http.Client
	CheckIPURL string

	VpcID             string
	SubnetID          string
	ImageID           string
	InstanceType      string
	KeyName           string
	KeyDir            string
	SecurityGroupName string
	VolumeSize        int32

	// Wait blocks until the instance is running and reports its public IP.
	Wait        bool
	WaitTimeout time.Duration
}

// Result collects the identifiers of the created resources.
type Result struct {
	SecurityGroupID string
	KeyName         string
	KeyFile         string
	InstanceID      string
	PublicIP        string
}

func (o *Options) setDefaults() {
	if o.HTTPClient == nil {
		o.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}
	if o.CheckIPURL == "" {
		o.CheckIPURL = DefaultCheckIPURL
	}
	if o.InstanceType == "" {
		o.InstanceType = DefaultInstanceType
	}
	if o.KeyName == "" {
		o.KeyName = DefaultKeyName
	}
	if o.SecurityGroupName == "" {
		o.SecurityGroupName = DefaultSecurityGroupName
	}
	if o.VolumeSize <= 0 {
		o.VolumeSize = DefaultVolumeSize
	}
	if o.WaitTimeout <= 0 {
		o.WaitTimeout = DefaultWaitTimeout
	}
}

// KeyFile returns the path the private key is written to.
func (o *Options) KeyFile() string {
	name := o.KeyName
	if name == "" {
		name = DefaultKeyName
	}
	return filepath.Join(o.KeyDir, name+".pem")
}

// Run creates the security group and the key pair, then launches the instance.
func (o *Options) Run(ctx context.Context) (*Result, error) {
	o.setDefaults()

	keyFile := o.KeyFile()
	if _, err := os.Stat(keyFile); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrKeyFileExists, keyFile)
	}

	myIP, err := LookupPublicIP(ctx, o.HTTPClient, o.CheckIPURL)
	if err != nil {
		return nil, err
	}
	o.Printer.Verbosef("Public IP of this host: %s", myIP)

	res := &Result{KeyName: o.KeyName}

	if res.SecurityGroupID, err = o.createSecurityGroup(ctx, hostCidr(myIP)); err != nil {
		return res, err
	}
	o.Printer.Done("Created Security Group with ID: %s", res.SecurityGroupID)

	if err = o.createKeyPair(ctx, keyFile); err != nil {
		return res, err
	}
	res.KeyFile = keyFile
	o.Printer.Done("Key pair saved as %s", keyFile)

	if res.InstanceID, err = o.launchInstance(ctx, res.SecurityGroupID); err != nil {
		return res, err
	}
	o.Printer.Done("Launched instance with ID: %s", res.InstanceID)

	if o.Wait {
		o.Printer.Step("Waiting for instance %s to be running...", res.InstanceID)
		if res.PublicIP, err = o.waitRunning(ctx, res.InstanceID); err != nil {
			return res, err
		}
		if res.PublicIP != "" {
			o.Printer.Done("Public IP: %s", res.PublicIP)
		}
	}

	o.Printer.Success.Printfln("EC2 instance %s launched successfully.", res.InstanceID)
	return res, nil
}

// createSecurityGroup opens HTTP to everyone and SSH to sshCidr only
func (o *Options) createSecurityGroup(ctx context.Context, sshCidr string) (string, error) {
	sg, err := o.Client.CreateSecurityGroup(ctx, &ec2.CreateSecurityGroupInput{
		GroupName:   aws.String(o.SecurityGroupName),
		Description: aws.String("Allow HTTP and SSH access"),
		VpcId:       aws.String(o.VpcID),
	})
	if err != nil {
		return "", fmt.Errorf("failed to create security group: %w", err)
	}
	sgID := aws.ToString(sg.GroupId)

	_, err = o.Client.AuthorizeSecurityGroupIngress(ctx, &ec2.AuthorizeSecurityGroupIngressInput{
		GroupId: aws.String(sgID),
		IpPermissions: []types.IpPermission{
			tcpPermission(80, "0.0.0.0/0"),
			tcpPermission(22, sshCidr),
		},
	})
	if err != nil {
		return sgID, fmt.Errorf("failed to authorize ingress on %s: %w", sgID, err)
	}

	return sgID, nil
}

// tcpPermission allows a single TCP port from cidr
func tcpPermission(port int32, cidr string) types.IpPermission {
	perm := types.IpPermission{
		IpProtocol: aws.String("tcp"),
		FromPort:   aws.Int32(port),
		ToPort:     aws.Int32(port),
	}
	if strings.Contains(cidr, ":") {
		perm.Ipv6Ranges = []types.Ipv6Range{{CidrIpv6: aws.String(cidr)}}
	} else {
		perm.IpRanges = []types.IpRange{{CidrIp: aws.String(cidr)}}
	}
	return perm
}

// createKeyPair creates the key pair and stores its private key readable by the owner only
func (o *Options) createKeyPair(ctx context.Context, keyFile string) error {
	kp, err := o.Client.CreateKeyPair(ctx, &ec2.CreateKeyPairInput{
		KeyName: aws.String(o.KeyName),
	})
	if err != nil {
		return fmt.Errorf("failed to create key pair %s: %w", o.KeyName, err)
	}

	f, err := os.OpenFile(keyFile, os.O_WRONLY|os.O_CREATE|os.O_EXCL, keyFileMode)
	if err != nil {
		return fmt.Errorf("failed to save key pair %s: %w", o.KeyName, err)
	}
	defer f.Close()

	if _, err := f.WriteString(aws.ToString(kp.KeyMaterial)); err != nil {
		return fmt.Errorf("failed to save key pair %s: %w", o.KeyName, err)
	}
	// The umask may have been applied at creation time.
	return f.Chmod(keyFileMode)
}

func (o *Options) launchInstance(ctx context.Context, sgID string) (string, error) {
	resp, err := o.Client.RunInstances(ctx, &ec2.RunInstancesInput{
		ImageId:      aws.String(o.ImageID),
		InstanceType: types.InstanceType(o.InstanceType),
		KeyName:      aws.String(o.KeyName),
		MinCount:     aws.Int32(1),
		MaxCount:     aws.Int32(1),
		NetworkInterfaces: []types.InstanceNetworkInterfaceSpecification{
			{
				SubnetId:                 aws.String(o.SubnetID),
				DeviceIndex:              aws.Int32(0),
				AssociatePublicIpAddress: aws.Bool(true),
				Groups:                   []string{sgID},
			},
		},
		BlockDeviceMappings: []types.BlockDeviceMapping{
			{
				DeviceName: aws.String("/dev/xvda"),
				Ebs: &types.EbsBlockDevice{
					VolumeSize:          aws.Int32(o.VolumeSize),
					VolumeType:          types.VolumeTypeGp2,
					DeleteOnTermination: aws.Bool(true),
				},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to launch instance: %w", err)
	}
	if len(resp.Instances) == 0 {
		return "", fmt.Errorf("failed to launch instance: no instance returned")
	}

	return aws.ToString(resp.Instances[0].InstanceId), nil
}

// waitRunning blocks until the instance is running and returns its public IP
func (o *Options) waitRunning(ctx context.Context, instanceID string) (string, error) {
	waiter := ec2.NewInstanceRunningWaiter(o.Client)
	out, err := waiter.WaitForOutput(ctx, &ec2.DescribeInstancesInput{InstanceIds: []string{instanceID}}, o.WaitTimeout)
	if err != nil {
		return "", fmt.Errorf("failed waiting for instance %s: %w", instanceID, err)
	}

	for _, r := range out.Reservations {
		for _, i := range r.Instances {
			if aws.ToString(i.InstanceId) == instanceID {
				return aws.ToString(i.PublicIpAddress), nil
			}
		}
	}
	return "", nil
}
