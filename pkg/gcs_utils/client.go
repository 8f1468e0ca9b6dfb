package gcs_utils

import (
	"context"
	"sync"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

var (
	once    sync.Once
	client  *storage.Client
	initErr error
)

// Singleton returns the process-wide GCS client, created on first use. An
// empty credentialsFile falls back to application default credentials.
func Singleton(credentialsFile string) (*storage.Client, error) {
	once.Do(func() {
		var opts []option.ClientOption
		if credentialsFile != "" {
			opts = append(opts, option.WithCredentialsFile(credentialsFile))
		}
		client, initErr = storage.NewClient(context.Background(), opts...)
	})
	return client, initErr
}
