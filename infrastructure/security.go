package main

import (
	"github.com/pulumi/pulumi-aws/sdk/v5/go/aws/ec2"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"

	"github.com/zhang1980s/aws-provisioning-lab/internal/compute"
)

// SecurityResources holds the security groups of the lab instances
type SecurityResources struct {
	WebSecurityGroup *ec2.SecurityGroup
	DBSecurityGroup  *ec2.SecurityGroup
}

var allowAllEgress = ec2.SecurityGroupEgressArray{
	&ec2.SecurityGroupEgressArgs{
		Protocol:    pulumi.String("-1"),
		FromPort:    pulumi.Int(0),
		ToPort:      pulumi.Int(0),
		CidrBlocks:  pulumi.StringArray{pulumi.String("0.0.0.0/0")},
		Description: pulumi.String("Allow all outbound traffic"),
	},
}

// createSecurityResources creates the web and database security groups
func createSecurityResources(ctx *pulumi.Context, cfg *stackConfig, network *NetworkResources) (*SecurityResources, error) {
	ingress := ec2.SecurityGroupIngressArray{
		&ec2.SecurityGroupIngressArgs{
			Protocol:    pulumi.String("tcp"),
			FromPort:    pulumi.Int(80),
			ToPort:      pulumi.Int(80),
			CidrBlocks:  pulumi.StringArray{pulumi.String("0.0.0.0/0")},
			Description: pulumi.String("Allow HTTP from anywhere"),
		},
	}
	// SSH stays closed unless a source block is configured
	if cfg.SSHCidr != "" {
		ingress = append(ingress, &ec2.SecurityGroupIngressArgs{
			Protocol:    pulumi.String("tcp"),
			FromPort:    pulumi.Int(22),
			ToPort:      pulumi.Int(22),
			CidrBlocks:  pulumi.StringArray{pulumi.String(cfg.SSHCidr)},
			Description: pulumi.String("Allow SSH from the operator"),
		})
	}

	webSecurityGroup, err := ec2.NewSecurityGroup(ctx, compute.DefaultSecurityGroupName, &ec2.SecurityGroupArgs{
		VpcId:       network.Vpc.ID(),
		Description: pulumi.String("Allow HTTP and SSH"),
		Ingress:     ingress,
		Egress:      allowAllEgress,
		Tags: pulumi.StringMap{
			"Name": pulumi.String(cfg.VpcName + "-web-sg"),
		},
	})
	if err != nil {
		return nil, err
	}

	dbSecurityGroup, err := ec2.NewSecurityGroup(ctx, cfg.VpcName+"-db-sg", &ec2.SecurityGroupArgs{
		VpcId:       network.Vpc.ID(),
		Description: pulumi.String("Security group for the lab database"),
		Ingress: ec2.SecurityGroupIngressArray{
			&ec2.SecurityGroupIngressArgs{
				Protocol:       pulumi.String("tcp"),
				FromPort:       pulumi.Int(cfg.DBPort),
				ToPort:         pulumi.Int(cfg.DBPort),
				SecurityGroups: pulumi.StringArray{webSecurityGroup.ID()},
				Description:    pulumi.String("Allow the database port from the web instances"),
			},
		},
		Egress: allowAllEgress,
		Tags: pulumi.StringMap{
			"Name": pulumi.String(cfg.VpcName + "-db-sg"),
		},
	})
	if err != nil {
		return nil, err
	}

	return &SecurityResources{
		WebSecurityGroup: webSecurityGroup,
		DBSecurityGroup:  dbSecurityGroup,
	}, nil
}
