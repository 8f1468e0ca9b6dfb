package storage

import (
	"context"
	"io"
	"os"

	gstorage "cloud.google.com/go/storage"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/bomt1me/paris/pkg/gcs_utils"
)

// GCSEngine uploads to Google Cloud Storage.
type GCSEngine struct {
	logger *logrus.Entry
	cfg    gcs_utils.Config
	client *gstorage.Client
}

func NewGCSEngine(logger *logrus.Entry, cfg gcs_utils.Config) *GCSEngine {
	return &GCSEngine{
		logger: logger,
		cfg:    cfg,
	}
}

func (e *GCSEngine) Identifier() string {
	return "gcs"
}

func (e *GCSEngine) Open() error {
	client, err := gcs_utils.Singleton(e.cfg.CredentialsFile)
	if err != nil {
		return errors.Wrap(err, "unable to create GCS client")
	}
	e.client = client
	return nil
}

func (e *GCSEngine) Close() error {
	// The client is process-wide, drop the reference only.
	e.client = nil
	return nil
}

func (e *GCSEngine) UploadFile(ctx context.Context, file *File) error {
	if e.client == nil {
		return errors.New("gcs engine is not open")
	}

	f, err := os.Open(file.Filepath())
	if err != nil {
		return errors.Wrapf(err, "unable to open %s", file.Filepath())
	}
	defer f.Close()

	w := e.client.Bucket(file.Bucket()).Object(file.Key()).NewWriter(ctx)
	if _, err = io.Copy(w, f); err != nil {
		w.Close()
		return errors.Wrapf(err, "unable to write object %s", file.Key())
	}
	if err = w.Close(); err != nil {
		return errors.Wrapf(err, "unable to finalize object %s", file.Key())
	}
	return nil
}
