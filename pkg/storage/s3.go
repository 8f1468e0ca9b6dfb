package storage

import (
	"context"
	"io"
	"os"

	"github.com/acomagu/bufpipe"
	"github.com/minio/minio-go/v7"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/bomt1me/paris/pkg/s3_utils"
)

// S3Engine uploads to any S3-compatible endpoint through minio-go. File
// contents are streamed through a pipe, so nothing is buffered in full.
type S3Engine struct {
	logger *logrus.Entry
	cfg    s3_utils.Config
	client *minio.Client
}

func NewS3Engine(logger *logrus.Entry, cfg s3_utils.Config) *S3Engine {
	return &S3Engine{
		logger: logger,
		cfg:    cfg,
	}
}

func (e *S3Engine) Identifier() string {
	return "s3"
}

func (e *S3Engine) Open() error {
	if err := e.Close(); err != nil {
		return err
	}
	client, err := s3_utils.NewS3Client(e.logger, e.cfg)
	if err != nil {
		return err
	}
	e.client = client
	return nil
}

func (e *S3Engine) Close() error {
	// minio clients hold no resources that need closing.
	e.client = nil
	return nil
}

func (e *S3Engine) UploadFile(ctx context.Context, file *File) error {
	if e.client == nil {
		return errors.New("s3 engine is not open")
	}

	f, err := os.Open(file.Filepath())
	if err != nil {
		return errors.Wrapf(err, "unable to open %s", file.Filepath())
	}
	defer f.Close()

	pr, pw := bufpipe.New(nil)
	go func() {
		_, copyErr := io.Copy(pw, f)
		pw.CloseWithError(copyErr)
	}()

	_, err = e.client.PutObject(ctx, file.Bucket(), file.Key(), pr, -1,
		minio.PutObjectOptions{ContentType: "application/octet-stream"})
	if err != nil {
		return errors.Wrapf(err, "unable to put object %s", file.Key())
	}
	return nil
}
