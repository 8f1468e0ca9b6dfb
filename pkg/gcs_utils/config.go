package gcs_utils

type Config struct {
	ProjectId       string
	BucketName      string
	CredentialsFile string
}
