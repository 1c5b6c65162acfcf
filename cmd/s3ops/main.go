// Package main contains the s3ops tool.
package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/zhang1980s/aws-provisioning-lab/internal/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	f := commands.NewFactory()
	cmd := commands.NewS3OpsCommand(ctx, f)
	f.CheckErr(cmd.Execute())
}
