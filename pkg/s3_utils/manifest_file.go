package s3_utils

import (
	"context"
	"io"
	"sync"

	"github.com/acomagu/bufpipe"
	"github.com/minio/minio-go/v7"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/xitongsys/parquet-go/source"
)

// MinioFile is a source.ParquetFile backed by a bucket object. Writes are
// streamed through a bufpipe pair into a concurrent PutObject; reads go
// through a minio object handle.
type MinioFile struct {
	ctx    context.Context
	client *minio.Client
	offset int64

	// write side
	pipeReader *bufpipe.PipeReader
	pipeWriter *bufpipe.PipeWriter

	// read side
	fileSize   int64
	downloader *minio.Object

	BucketName string
	Key        string
}

var (
	errWhence        = errors.New("Seek: invalid whence")
	errInvalidOffset = errors.New("Seek: invalid offset")
)

// NewManifestFileWriter returns a parquet file whose bytes flow into the
// given pipe. The caller owns the PutObject side, see PutObject below.
func NewManifestFileWriter(ctx context.Context, bucket, key string, pr *bufpipe.PipeReader, pw *bufpipe.PipeWriter) (source.ParquetFile, error) {
	file := &MinioFile{
		ctx:        ctx,
		BucketName: bucket,
		Key:        key,
		pipeReader: pr,
		pipeWriter: pw,
	}
	return file.Create(key)
}

// NewManifestFileReader opens a bucket object for parquet reads.
func NewManifestFileReader(ctx context.Context, client *minio.Client, bucket, key string) (source.ParquetFile, error) {
	file := &MinioFile{
		ctx:        ctx,
		client:     client,
		BucketName: bucket,
		Key:        key,
	}
	return file.Open(key)
}

func (s *MinioFile) Seek(offset int64, whence int) (int64, error) {
	if whence < io.SeekStart || whence > io.SeekEnd {
		return 0, errWhence
	}

	if s.fileSize > 0 {
		switch whence {
		case io.SeekStart:
			if offset < 0 || offset > s.fileSize {
				return 0, errInvalidOffset
			}
		case io.SeekCurrent:
			// resolve against the tracked position, then seek absolutely so
			// the downloader's own cursor cannot be applied twice
			offset += s.offset
			whence = io.SeekStart
			if offset < 0 || offset > s.fileSize {
				return 0, errInvalidOffset
			}
		case io.SeekEnd:
			if offset > -1 || -offset > s.fileSize {
				return 0, errInvalidOffset
			}
		}
	}

	o, err := s.downloader.Seek(offset, whence)
	if err != nil {
		return 0, err
	}
	s.offset = o
	return o, nil
}

func (s *MinioFile) Read(p []byte) (n int, err error) {
	if s.fileSize > 0 && s.offset >= s.fileSize {
		return 0, io.EOF
	}

	bytesDownloaded, err := s.downloader.ReadAt(p, s.offset)
	if err != nil && err != io.EOF {
		return 0, err
	}

	s.offset += int64(bytesDownloaded)
	return bytesDownloaded, err
}

func (s *MinioFile) Write(p []byte) (n int, err error) {
	bytesWritten, writeError := s.pipeWriter.Write(p)
	if writeError != nil {
		s.pipeWriter.CloseWithError(writeError)
		return 0, writeError
	}

	return bytesWritten, nil
}

// Close signals write completion. The concurrent PutObject finishes once the
// pipe drains.
func (s *MinioFile) Close() error {
	if s.pipeWriter != nil {
		return s.pipeWriter.Close()
	}
	return nil
}

// Open creates a new MinioFile instance to perform concurrent reads
func (s *MinioFile) Open(name string) (source.ParquetFile, error) {
	pf := &MinioFile{
		ctx:        s.ctx,
		client:     s.client,
		BucketName: s.BucketName,
		Key:        name,
		offset:     0,
	}
	downloader, err := s.client.GetObject(s.ctx, s.BucketName, s.Key, minio.GetObjectOptions{})
	if err != nil {
		return pf, err
	}
	info, err := downloader.Stat()
	if err != nil {
		return pf, err
	}
	pf.downloader = downloader
	pf.fileSize = info.Size
	return pf, nil
}

// Create creates a new MinioFile instance to perform writes
func (s *MinioFile) Create(key string) (source.ParquetFile, error) {
	pf := &MinioFile{
		ctx:        s.ctx,
		BucketName: s.BucketName,
		Key:        key,
		pipeReader: s.pipeReader,
		pipeWriter: s.pipeWriter,
	}
	return pf, nil
}

// PutObject uploads everything written to the pipe as a single object of
// unknown length. Run it in its own goroutine before writing starts.
func PutObject(ctx context.Context, logger *logrus.Entry, client *minio.Client, bucket, key string, reader *bufpipe.PipeReader, wg *sync.WaitGroup) error {
	defer wg.Done()
	uploadInfo, err := client.PutObject(ctx, bucket, key, reader, -1, minio.PutObjectOptions{ContentType: "application/octet-stream"})
	if err != nil {
		logger.Errorf("not able to put object %s: %v", key, err)
		reader.CloseWithError(err)
		return err
	}
	logger.Infof("uploaded %s/%s (%d bytes)", bucket, key, uploadInfo.Size)
	return nil
}
