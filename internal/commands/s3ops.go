package commands

import (
	"context"
	"path"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/cobra"

	"github.com/zhang1980s/aws-provisioning-lab/internal/storage"
)

const s3opsLongHelp = `Basic S3 operations.

Examples:
  $ s3ops list-buckets
  $ s3ops upload --bucket my-bucket --file ./report.txt --key reports/report.txt
  $ s3ops download --bucket my-bucket --key reports/report.txt --file ./report.txt
  $ s3ops delete --bucket my-bucket --key reports/report.txt
`

// NewS3OpsCommand returns the s3ops command and its sub-commands.
func NewS3OpsCommand(ctx context.Context, f *Factory) *cobra.Command {
	cmd := newRootCommand(f, "s3ops", "Basic S3 operations", s3opsLongHelp)
	f.AddFlags(cmd.PersistentFlags(), "")

	newClient := func() (*storage.Client, error) {
		cfg, err := f.Load(ctx)
		if err != nil {
			return nil, err
		}
		return storage.New(s3.NewFromConfig(cfg)), nil
	}

	cmd.AddCommand(
		newListBucketsCommand(ctx, f, newClient),
		newUploadCommand(ctx, f, newClient),
		newDownloadCommand(ctx, f, newClient),
		newDeleteCommand(ctx, f, newClient),
	)

	return cmd
}

type storageClientFunc func() (*storage.Client, error)

func newListBucketsCommand(ctx context.Context, f *Factory, newClient storageClientFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "list-buckets",
		Short: "List the buckets owned by the caller",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			names, err := c.ListBuckets(ctx)
			if err != nil {
				return err
			}
			for _, name := range names {
				f.Printer.Info.Println(name)
			}
			return nil
		},
	}
}

func newUploadCommand(ctx context.Context, f *Factory, newClient storageClientFunc) *cobra.Command {
	var bucket, file, key string

	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Upload a local file",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if key == "" {
				key = filepath.Base(file)
			}
			c, err := newClient()
			if err != nil {
				return err
			}
			if err := c.UploadFile(ctx, bucket, file, key); err != nil {
				return err
			}
			f.Printer.Success.Printfln("Uploaded %s to s3://%s/%s", file, bucket, key)
			return nil
		},
	}

	cmd.Flags().StringVar(&bucket, "bucket", "", "Destination bucket")
	cmd.Flags().StringVar(&file, "file", "", "Local file to upload")
	cmd.Flags().StringVar(&key, "key", "", "Object key (defaults to the file name)")
	must(cmd.MarkFlagRequired("bucket"))
	must(cmd.MarkFlagRequired("file"))

	return cmd
}

func newDownloadCommand(ctx context.Context, f *Factory, newClient storageClientFunc) *cobra.Command {
	var bucket, key, file string

	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download an object to a local file",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if file == "" {
				file = path.Base(key)
			}
			c, err := newClient()
			if err != nil {
				return err
			}
			n, err := c.DownloadFile(ctx, bucket, key, file)
			if err != nil {
				return err
			}
			f.Printer.Success.Printfln("Downloaded s3://%s/%s to %s (%d bytes)", bucket, key, file, n)
			return nil
		},
	}

	cmd.Flags().StringVar(&bucket, "bucket", "", "Source bucket")
	cmd.Flags().StringVar(&key, "key", "", "Object key")
	cmd.Flags().StringVar(&file, "file", "", "Local destination (defaults to the last element of the key)")
	must(cmd.MarkFlagRequired("bucket"))
	must(cmd.MarkFlagRequired("key"))

	return cmd
}

func newDeleteCommand(ctx context.Context, f *Factory, newClient storageClientFunc) *cobra.Command {
	var bucket, key string

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete an object",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			if err := c.DeleteObject(ctx, bucket, key); err != nil {
				return err
			}
			f.Printer.Success.Printfln("Deleted s3://%s/%s", bucket, key)
			return nil
		},
	}

	cmd.Flags().StringVar(&bucket, "bucket", "", "Bucket holding the object")
	cmd.Flags().StringVar(&key, "key", "", "Object key")
	must(cmd.MarkFlagRequired("bucket"))
	must(cmd.MarkFlagRequired("key"))

	return cmd
}
