package cmd

import (
	"context"

	"github.com/minio/minio-go/v7"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/source"

	"github.com/bomt1me/paris/impl"
	"github.com/bomt1me/paris/pkg/log"
	"github.com/bomt1me/paris/pkg/s3_utils"
)

func CreateCountManifestCommand() (*cobra.Command, error) {
	var manifestFilePath string
	var s3endpoint string
	var s3AccessKeyID string
	var s3SecretAccessKey string
	var bucketName string
	var s3CaCertLocation string
	var s3SSL bool

	command := cobra.Command{
		Use: "count-manifest",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()
			logger := log.FromContext(ctx)

			var pf source.ParquetFile
			var s3Client *minio.Client
			var err error
			if s3endpoint != "" {
				s3conf := s3_utils.Config{
					Endpoint:         s3endpoint,
					AccessKeyID:      s3AccessKeyID,
					SecretAccessKey:  s3SecretAccessKey,
					UseSSL:           s3SSL,
					BucketName:       bucketName,
					S3CaCertLocation: s3CaCertLocation,
				}
				s3Client, err = s3_utils.NewS3Client(logger, s3conf)
				if err != nil {
					panic(errors.Wrap(err, "Unable to init s3 client"))
				}
				pf, err = s3_utils.NewManifestFileReader(ctx, s3Client, bucketName, manifestFilePath)
				if err != nil {
					panic(errors.Wrap(err, "Unable to open manifest in bucket"))
				}
			} else {
				pf, err = local.NewLocalFileReader(manifestFilePath)
				if err != nil {
					panic(errors.Wrap(err, "Unable to open manifest file"))
				}
			}
			defer pf.Close()

			rows, err := impl.CountManifestRows(pf)
			if err != nil {
				panic(errors.Wrap(err, "Unable to read manifest"))
			}
			log.Infof("Number of rows in manifest file: %d", rows)
		},
	}
	command.Flags().StringVarP(&manifestFilePath, "file", "f", "", "File path of the upload manifest (required)")
	command.Flags().StringVar(&s3endpoint, "endpoint", "", "Endpoint to connect to S3")
	command.Flags().StringVar(&s3AccessKeyID, "accesskeyid", "", "Access Key of S3 instance")
	command.Flags().StringVar(&s3SecretAccessKey, "secretaccesskey", "", "Secret Key of S3 instance")
	command.Flags().StringVar(&bucketName, "bucket", "", "Bucket name to connect to s3 bucket")
	command.Flags().StringVar(&s3CaCertLocation, "ca-cert", "", "ca cert location to connect to s3 bucket")
	command.Flags().BoolVar(&s3SSL, "ssl", false, "Enable SSL for s3 connection")
	err := command.MarkFlagRequired("file")
	if err != nil {
		return nil, err
	}
	return &command, nil
}
