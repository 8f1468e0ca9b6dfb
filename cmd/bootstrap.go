package cmd

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/bomt1me/paris/pkg/log"
	"github.com/bomt1me/paris/pkg/s3_utils"
)

// CreateBootstrapCommand builds the one-shot provisioning command: it waits
// for the storage endpoint, force-removes the bucket if present, recreates it
// and opens it for anonymous download. This is the Go rendition of the init
// container in docker-compose.yml.
func CreateBootstrapCommand() (*cobra.Command, error) {
	var s3endpoint string
	var s3AccessKeyID string
	var s3SecretAccessKey string
	var bucketName string
	var s3CaCertLocation string
	var s3SSL bool
	var startupTimeoutSeconds int

	command := cobra.Command{
		Use: "bootstrap",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()
			logger := log.WithContext(ctx)
			s3conf := s3_utils.Config{
				Endpoint:         s3endpoint,
				AccessKeyID:      s3AccessKeyID,
				SecretAccessKey:  s3SecretAccessKey,
				UseSSL:           s3SSL,
				BucketName:       bucketName,
				S3CaCertLocation: s3CaCertLocation,
			}

			s3Client, err := s3_utils.NewS3Client(logger, s3conf)
			if err != nil {
				panic(errors.Wrap(err, "Unable to init s3 client"))
			}

			startupTimeout := time.Duration(startupTimeoutSeconds) * time.Second
			if err := s3_utils.EnsureBucket(ctx, logger, s3Client, bucketName, startupTimeout); err != nil {
				panic(errors.Wrapf(err, "Unable to provision bucket %s", bucketName))
			}
			logger.Infof("bucket %s provisioned", bucketName)
		},
	}
	command.Flags().StringVar(&s3endpoint, "endpoint", "localhost:9000", "Endpoint to connect to S3")
	command.Flags().StringVar(&s3AccessKeyID, "accesskeyid", "", "Access Key of S3 instance")
	command.Flags().StringVar(&s3SecretAccessKey, "secretaccesskey", "", "Secret Key of S3 instance")
	command.Flags().StringVar(&bucketName, "bucket", "bom", "Bucket name to provision")
	command.Flags().StringVar(&s3CaCertLocation, "ca-cert", "", "ca cert location to connect to s3 bucket")
	command.Flags().BoolVar(&s3SSL, "ssl", false, "Enable SSL for s3 connection")
	command.Flags().IntVar(&startupTimeoutSeconds, "startup-timeout", 60, "Seconds to wait for the storage endpoint to accept connections")
	err := command.MarkFlagRequired("accesskeyid")
	if err != nil {
		return nil, err
	}
	err = command.MarkFlagRequired("secretaccesskey")
	if err != nil {
		return nil, err
	}
	return &command, nil
}
