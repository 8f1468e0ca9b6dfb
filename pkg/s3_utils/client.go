package s3_utils

import (
	"crypto/x509"
	"io/ioutil"
	"net/http"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

func NewS3Client(logger *logrus.Entry, cfg Config) (*minio.Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var tr *http.Transport
	if cfg.S3CaCertLocation != "" {
		var err error
		tr, err = customTransport(cfg.S3CaCertLocation)
		if err != nil {
			return nil, err
		}
	}

	// Initialize minio client object.
	minioClient, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:     credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure:    cfg.UseSSL,
		Transport: tr,
	})
	if err != nil {
		return nil, err
	}
	logger.Debugf("s3 client initialized for endpoint %s", cfg.Endpoint)

	return minioClient, nil
}

func customTransport(certPath string) (*http.Transport, error) {
	tr, err := minio.DefaultTransport(true)
	if err != nil {
		return nil, err
	}

	b, err := ioutil.ReadFile(certPath)
	if err != nil {
		return nil, err
	}

	if tr.TLSClientConfig.RootCAs == nil {
		tr.TLSClientConfig.RootCAs = x509.NewCertPool()
	}

	if ok := tr.TLSClientConfig.RootCAs.AppendCertsFromPEM(b); !ok {
		return nil, errors.Errorf("no certificates parsed from %s", certPath)
	}

	return tr, nil
}
