package main

import (
	"github.com/pulumi/pulumi-aws/sdk/v5/go/aws/s3"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
)

// createLabBucket creates the encrypted bucket used with s3ops
func createLabBucket(ctx *pulumi.Context, cfg *stackConfig) (*s3.Bucket, error) {
	return s3.NewBucket(ctx, "lab-bucket", &s3.BucketArgs{
		Bucket: pulumi.String(cfg.BucketName),
		Acl:    pulumi.String("private"),
		Tags: pulumi.StringMap{
			"Name": pulumi.String(cfg.BucketName),
		},
		ServerSideEncryptionConfiguration: &s3.BucketServerSideEncryptionConfigurationArgs{
			Rule: &s3.BucketServerSideEncryptionConfigurationRuleArgs{
				ApplyServerSideEncryptionByDefault: &s3.BucketServerSideEncryptionConfigurationRuleApplyServerSideEncryptionByDefaultArgs{
					SseAlgorithm: pulumi.String("AES256"),
				},
			},
		},
		LifecycleRules: s3.BucketLifecycleRuleArray{
			&s3.BucketLifecycleRuleArgs{
				Id:      pulumi.String("expire-old-objects"),
				Enabled: pulumi.Bool(true),
				Expiration: &s3.BucketLifecycleRuleExpirationArgs{
					Days: pulumi.Int(90),
				},
			},
		},
	})
}
