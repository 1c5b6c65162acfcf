// Package awsconfig turns the command-line AWS settings into an aws.Config.
package awsconfig

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/spf13/pflag"
)

// ErrMissingRegion is returned when no region is given on the command line or
// in the environment.
var ErrMissingRegion = errors.New("no AWS region configured, use --region or AWS_REGION")

// Config holds the settings used to build the AWS clients. Credentials are
// always resolved through the default provider chain.
type Config struct {
	Region  string
	Profile string
}

// AddFlags registers the AWS flags on fs.
func (c *Config) AddFlags(fs *pflag.FlagSet, defaultRegion string) {
	fs.StringVar(&c.Region, "region", defaultRegion, "AWS region (e.g., us-east-1)")
	fs.StringVar(&c.Profile, "profile", "", "Shared configuration profile to use (optional)")
}

// Load resolves the AWS configuration from c and the environment.
func (c Config) Load(ctx context.Context) (aws.Config, error) {
	var opts []func(*config.LoadOptions) error
	if c.Region != "" {
		opts = append(opts, config.WithRegion(c.Region))
	}
	if c.Profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(c.Profile))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}

	if cfg.Region == "" {
		return aws.Config{}, ErrMissingRegion
	}

	return cfg, nil
}
