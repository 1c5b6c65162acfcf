package main

import (
	"fmt"
	"net/netip"

	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi/config"

	"github.com/zhang1980s/aws-provisioning-lab/internal/subnet"
)

// stackConfig holds the settings of the lab stack.
type stackConfig struct {
	Region            string
	VpcName           string
	Layout            *subnet.Layout
	AvailabilityZones []string
	SSHCidr           string
	DBPort            int
	BucketName        string
}

// loadStackConfig reads the stack configuration and computes the subnet layout.
func loadStackConfig(ctx *pulumi.Context) (*stackConfig, error) {
	awsCfg := config.New(ctx, "aws")
	projectCfg := config.New(ctx, "")

	vpcCidr := projectCfg.Get("vpcCidr")
	if vpcCidr == "" {
		vpcCidr = "10.0.0.0/16"
	}
	block, err := subnet.ParseBlock(vpcCidr)
	if err != nil {
		return nil, err
	}
	if !block.Addr().Is4() {
		return nil, fmt.Errorf("%w: vpcCidr %s must be IPv4", subnet.ErrInvalidBlock, block)
	}

	// Unset means one pair, an explicit 0 is rejected by Split
	count := 1
	if projectCfg.Get("subnetCount") != "" {
		if count, err = projectCfg.TryInt("subnetCount"); err != nil {
			return nil, fmt.Errorf("invalid subnetCount: %w", err)
		}
	}
	layout, err := subnet.NewPartitioner(projectCfg.GetInt("maxSubnets")).Split(block, count)
	if err != nil {
		return nil, err
	}

	cfg := &stackConfig{
		Region:     awsCfg.Require("region"),
		VpcName:    projectCfg.Get("vpcName"),
		Layout:     layout,
		SSHCidr:    projectCfg.Get("sshCidr"),
		DBPort:     projectCfg.GetInt("dbPort"),
		BucketName: projectCfg.Get("bucketName"),
	}
	if cfg.VpcName == "" {
		cfg.VpcName = "lab-vpc"
	}
	if cfg.DBPort == 0 {
		cfg.DBPort = 3306
	}
	if err := projectCfg.GetObject("availabilityZones", &cfg.AvailabilityZones); err != nil {
		return nil, fmt.Errorf("invalid availabilityZones: %w", err)
	}
	if cfg.SSHCidr != "" {
		if _, err := netip.ParsePrefix(cfg.SSHCidr); err != nil {
			return nil, fmt.Errorf("invalid sshCidr %q: %w", cfg.SSHCidr, err)
		}
	}

	return cfg, nil
}
