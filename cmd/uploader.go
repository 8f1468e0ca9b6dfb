package cmd

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"

	"github.com/acomagu/bufpipe"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/bomt1me/paris/impl"
	"github.com/bomt1me/paris/pkg/config"
	"github.com/bomt1me/paris/pkg/gcs_utils"
	"github.com/bomt1me/paris/pkg/log"
	"github.com/bomt1me/paris/pkg/s3_utils"
	"github.com/bomt1me/paris/pkg/storage"
)

func CreateUploadCommand() (*cobra.Command, error) {
	var storageType string
	var sourceDir string
	var keyPrefix string
	var concurrency int
	var queueSize int
	var joinTimeoutSeconds int
	var uniqueNames bool
	var manifestFile string
	var manifestToBucket bool
	var googleCredentialsFile string
	var gcsBucketName string
	var gcsProjectID string
	var localRoot string
	var s3endpoint string
	var s3AccessKeyID string
	var s3SecretAccessKey string
	var bucketName string
	var s3CaCertLocation string
	var s3SSL bool

	command := cobra.Command{
		Use: "upload",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()
			logger := log.WithContext(ctx)

			uploadBucket := bucketName
			if Storage(storageType) == StorageGoogleCloudStorage {
				uploadBucket = gcsBucketName
			}
			conf := config.FromProperties([][2]string{
				{"files.provider", storageType},
				{"files.upload.bucket", uploadBucket},
				{"files.upload.key", keyPrefix},
				{"worker.threads", fmt.Sprintf("%d", concurrency)},
				{"worker.join.timeout", fmt.Sprintf("%d", joinTimeoutSeconds)},
			})

			s3conf := s3_utils.Config{
				Endpoint:         s3endpoint,
				AccessKeyID:      s3AccessKeyID,
				SecretAccessKey:  s3SecretAccessKey,
				UseSSL:           s3SSL,
				BucketName:       bucketName,
				S3CaCertLocation: s3CaCertLocation,
			}
			gcsconf := gcs_utils.Config{
				ProjectId:       gcsProjectID,
				BucketName:      gcsBucketName,
				CredentialsFile: googleCredentialsFile,
			}

			factory := storage.NewFactory(conf)
			factory.Register(storage.NewS3Engine(logger, s3conf))
			factory.Register(storage.NewGCSEngine(logger, gcsconf))
			factory.Register(storage.NewFileEngine(localRoot))

			var mu sync.Mutex
			var entries []impl.ManifestEntry
			record := func(u impl.Uploaded) {
				mu.Lock()
				defer mu.Unlock()
				entries = append(entries, impl.ManifestEntry{
					Bucket:           u.Bucket,
					Key:              u.Key,
					Source:           u.Source,
					Size:             u.Size,
					UploadedAtMillis: u.UploadedAt.UnixMilli(),
					Worker:           int32(u.Worker),
				})
			}

			queue := make(chan *storage.File, queueSize)
			manager := impl.NewManager(conf, queue, factory, logger, record)
			if err := manager.Prepare(); err != nil {
				panic(errors.Wrap(err, "Unable to prepare upload manager"))
			}
			manager.Start(ctx)

			enqueued := 0
			err := filepath.WalkDir(sourceDir, func(path string, d fs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if d.IsDir() {
					return nil
				}
				name := d.Name()
				if uniqueNames {
					ext := filepath.Ext(name)
					name = fmt.Sprintf("%s_%s%s", strings.TrimSuffix(name, ext), uuid.NewString(), ext)
				}
				queue <- storage.NewFile(conf, path, "upload", name)
				enqueued++
				return nil
			})
			close(queue)
			if err != nil {
				panic(errors.Wrapf(err, "Unable to walk source dir %s", sourceDir))
			}
			logger.Infof("enqueued %d files from %s", enqueued, sourceDir)

			if err := manager.Stop(); err != nil {
				panic(errors.Wrap(err, "Upload workers did not stop cleanly"))
			}
			logger.Infof("uploaded %d files, %d failures", manager.Uploads(), manager.Failures())

			if manifestFile != "" {
				if err := writeManifest(ctx, logger, Storage(storageType), manifestToBucket, manifestFile, s3conf, entries); err != nil {
					panic(errors.Wrap(err, "Unable to write upload manifest"))
				}
				logger.Infof("manifest with %d entries written to %s", len(entries), manifestFile)
			}
		},
	}
	command.Flags().StringVar(&storageType, "storage", "s3", "Storage type: local file (file), Google cloud storage (gcs) or S3 compatible (s3)")
	command.Flags().StringVarP(&sourceDir, "source-dir", "d", "", "Directory whose files are uploaded (required)")
	command.Flags().StringVar(&keyPrefix, "key-prefix", "upload/", "Object key prefix for uploaded files")
	command.Flags().IntVar(&concurrency, "concurrency", 7, "Number of concurrent upload workers")
	command.Flags().IntVar(&queueSize, "queue-size", 1000, "Capacity of the upload queue")
	command.Flags().IntVar(&joinTimeoutSeconds, "join-timeout", 60, "Seconds to wait for workers to drain on shutdown")
	command.Flags().BoolVar(&uniqueNames, "unique-names", false, "Append a UUID to every object name")
	command.Flags().StringVar(&manifestFile, "manifest-file", "", "Path of the parquet upload manifest. Empty disables the manifest")
	command.Flags().BoolVar(&manifestToBucket, "manifest-to-bucket", false, "Stream the manifest into the target bucket instead of the local filesystem (s3 storage only)")
	command.Flags().StringVar(&googleCredentialsFile, "google-credentials", "", "Path to Google Credentials file")
	command.Flags().StringVar(&gcsBucketName, "gcs-bucket", "", "Google Cloud Storage bucket name")
	command.Flags().StringVar(&gcsProjectID, "gcs-project-id", "", "Google Cloud Storage Project ID")
	command.Flags().StringVar(&localRoot, "local-root", "./data", "Root directory of the local file storage engine")
	command.Flags().StringVar(&s3endpoint, "endpoint", "localhost:9000", "Endpoint to connect to S3")
	command.Flags().StringVar(&s3AccessKeyID, "accesskeyid", "", "Access Key of S3 instance")
	command.Flags().StringVar(&s3SecretAccessKey, "secretaccesskey", "", "Secret Key of S3 instance")
	command.Flags().StringVar(&bucketName, "bucket", "bom", "Bucket name to upload into")
	command.Flags().StringVar(&s3CaCertLocation, "ca-cert", "", "ca cert location to connect to s3 bucket")
	command.Flags().BoolVar(&s3SSL, "ssl", false, "Enable SSL for s3 connection")
	command.MarkFlagsRequiredTogether("google-credentials", "gcs-bucket", "gcs-project-id")
	err := command.MarkFlagRequired("source-dir")
	if err != nil {
		return nil, err
	}
	return &command, nil
}

type Storage string

const (
	StorageLocalFile          Storage = "file"
	StorageGoogleCloudStorage Storage = "gcs"
	StorageS3                 Storage = "s3"
)

func writeManifest(ctx context.Context, logger *logrus.Entry, storageType Storage, toBucket bool, manifestFile string, s3conf s3_utils.Config, entries []impl.ManifestEntry) error {
	var mw *impl.ManifestWriter
	var wg sync.WaitGroup

	if toBucket && storageType == StorageS3 {
		s3Client, err := s3_utils.NewS3Client(logger, s3conf)
		if err != nil {
			return errors.Wrap(err, "unable to init s3 client")
		}
		pr, pw := bufpipe.New(nil)
		pf, err := s3_utils.NewManifestFileWriter(ctx, s3conf.BucketName, manifestFile, pr, pw)
		if err != nil {
			return errors.Wrap(err, "[NewManifestFileWriter]")
		}
		wg.Add(1)
		go s3_utils.PutObject(ctx, logger, s3Client, s3conf.BucketName, manifestFile, pr, &wg)
		if mw, err = impl.NewManifestWriter(pf); err != nil {
			return err
		}
	} else {
		var err error
		if mw, err = impl.NewLocalManifestWriter(manifestFile); err != nil {
			return err
		}
	}

	for _, entry := range entries {
		if err := mw.Write(entry); err != nil {
			return errors.Wrap(err, "unable to write manifest entry")
		}
	}
	if err := mw.Close(); err != nil {
		return err
	}
	wg.Wait()
	return nil
}
