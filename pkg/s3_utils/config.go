package s3_utils

import "github.com/pkg/errors"

type Config struct {
	Endpoint         string
	AccessKeyID      string
	BucketName       string
	SecretAccessKey  string
	S3CaCertLocation string
	UseSSL           bool
}

// Validate rejects configs that can never authenticate. The storage server
// and the provisioning client must be handed the same credential pair, so an
// empty value here always means a wiring mistake.
func (c Config) Validate() error {
	if c.Endpoint == "" {
		return errors.New("s3 endpoint is required")
	}
	if c.AccessKeyID == "" || c.SecretAccessKey == "" {
		return errors.New("s3 access key and secret key are required")
	}
	return nil
}
