package s3_utils

import (
	"context"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// EnsureBucket provisions a bucket from scratch: it waits for the endpoint to
// accept requests, force-removes any pre-existing bucket of the same name,
// recreates it and opens it for anonymous download. The container dependency
// in the compose file only orders startup, not readiness, hence the probe
// loop at the top.
func EnsureBucket(ctx context.Context, logger *logrus.Entry, client *minio.Client, bucket string, startupTimeout time.Duration) error {
	exists, err := waitReady(ctx, client, bucket, startupTimeout)
	if err != nil {
		return errors.Wrap(err, "storage endpoint did not become ready")
	}

	if exists {
		logger.Infof("bucket %s already exists, removing", bucket)
		if err := purgeBucket(ctx, client, bucket); err != nil {
			return errors.Wrapf(err, "unable to purge bucket %s", bucket)
		}
		if err := client.RemoveBucket(ctx, bucket); err != nil {
			return errors.Wrapf(err, "unable to remove bucket %s", bucket)
		}
	}

	if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
		return errors.Wrapf(err, "unable to create bucket %s", bucket)
	}
	logger.Infof("created bucket %s", bucket)

	if err := client.SetBucketPolicy(ctx, bucket, DownloadPolicy(bucket)); err != nil {
		return errors.Wrapf(err, "unable to set download policy on bucket %s", bucket)
	}
	logger.Infof("bucket %s is open for anonymous download", bucket)

	return nil
}

// waitReady polls BucketExists until the endpoint answers or the timeout
// expires. Returns whether the bucket is present once the endpoint is up.
func waitReady(ctx context.Context, client *minio.Client, bucket string, timeout time.Duration) (bool, error) {
	deadline := time.Now().Add(timeout)
	for {
		exists, err := client.BucketExists(ctx, bucket)
		if err == nil {
			return exists, nil
		}
		if time.Now().After(deadline) {
			return false, err
		}
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(time.Second):
		}
	}
}

// purgeBucket removes every object so the bucket itself can be removed,
// mirroring `mc rm -r --force`.
func purgeBucket(ctx context.Context, client *minio.Client, bucket string) error {
	listed := client.ListObjects(ctx, bucket, minio.ListObjectsOptions{Recursive: true})

	toRemove := make(chan minio.ObjectInfo)
	var listErr error
	go func() {
		defer close(toRemove)
		for object := range listed {
			if object.Err != nil {
				listErr = object.Err
				continue
			}
			toRemove <- object
		}
	}()

	var removeErr error
	for rErr := range client.RemoveObjects(ctx, bucket, toRemove, minio.RemoveObjectsOptions{}) {
		if rErr.Err != nil && removeErr == nil {
			removeErr = errors.Wrapf(rErr.Err, "unable to remove object %s", rErr.ObjectName)
		}
	}
	if removeErr != nil {
		return removeErr
	}
	return listErr
}

// DownloadPolicy is the policy document `mc policy set download` applies:
// anonymous principals may locate the bucket, list it and fetch objects.
func DownloadPolicy(bucket string) string {
	return fmt.Sprintf(`{
  "Version": "2012-10-17",
  "Statement": [
    {
      "Effect": "Allow",
      "Principal": {"AWS": ["*"]},
      "Action": ["s3:GetBucketLocation", "s3:ListBucket"],
      "Resource": ["arn:aws:s3:::%s"]
    },
    {
      "Effect": "Allow",
      "Principal": {"AWS": ["*"]},
      "Action": ["s3:GetObject"],
      "Resource": ["arn:aws:s3:::%s/*"]
    }
  ]
}`, bucket, bucket)
}
