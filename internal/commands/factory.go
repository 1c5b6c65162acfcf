// Package commands builds the cobra commands of the provisioning tools.
package commands

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/zhang1980s/aws-provisioning-lab/internal/awsconfig"
	"github.com/zhang1980s/aws-provisioning-lab/internal/output"
)

// Factory holds the settings shared by every command.
type Factory struct {
	AWS     awsconfig.Config
	Printer *output.Printer
	Verbose bool

	// LoadConfig resolves the AWS configuration, it is replaced in tests.
	LoadConfig func(ctx context.Context, c awsconfig.Config) (aws.Config, error)
}

// NewFactory returns a Factory loading the AWS configuration from the environment.
func NewFactory() *Factory {
	return &Factory{
		LoadConfig: func(ctx context.Context, c awsconfig.Config) (aws.Config, error) {
			return c.Load(ctx)
		},
	}
}

// AddFlags registers the shared flags on fs.
func (f *Factory) AddFlags(fs *pflag.FlagSet, defaultRegion string) {
	f.AWS.AddFlags(fs, defaultRegion)
	fs.BoolVarP(&f.Verbose, "verbose", "v", false, "Enable verbose logs")
}

// Load resolves the AWS configuration.
func (f *Factory) Load(ctx context.Context) (aws.Config, error) {
	f.Printer.Verbosef("AWS region: %q", f.AWS.Region)
	return f.LoadConfig(ctx, f.AWS)
}

// CheckErr prints a user friendly error and exits with a non-zero exit code.
func (f *Factory) CheckErr(err error) {
	if f.Printer == nil {
		f.Printer = output.NewPrinter(f.Verbose)
	}
	f.Printer.CheckErr(err)
}

// newRootCommand returns a command with the behavior shared by all the tools.
func newRootCommand(f *Factory, use, short, long string) *cobra.Command {
	return &cobra.Command{
		Use:           use,
		Short:         short,
		Long:          long,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,

		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if f.Printer == nil {
				f.Printer = output.NewPrinter(f.Verbose)
			}
		},
	}
}
