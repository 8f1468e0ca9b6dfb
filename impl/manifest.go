package impl

import (
	"github.com/pkg/errors"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/reader"
	"github.com/xitongsys/parquet-go/source"
	"github.com/xitongsys/parquet-go/writer"
)

// ManifestEntry is one row of the upload manifest.
type ManifestEntry struct {
	Bucket           string `parquet:"name=bucket, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Key              string `parquet:"name=key, type=BYTE_ARRAY, convertedtype=UTF8"`
	Source           string `parquet:"name=source, type=BYTE_ARRAY, convertedtype=UTF8"`
	Size             int64  `parquet:"name=size, type=INT64"`
	UploadedAtMillis int64  `parquet:"name=uploaded_at_millis, type=INT64"`
	Worker           int32  `parquet:"name=worker, type=INT32"`
}

// ManifestWriter writes upload manifest rows to a parquet file.
type ManifestWriter struct {
	pw *writer.ParquetWriter
	pf source.ParquetFile
}

// NewManifestWriter wraps an already-created parquet file (local or S3).
func NewManifestWriter(pf source.ParquetFile) (*ManifestWriter, error) {
	pw, err := writer.NewParquetWriter(pf, new(ManifestEntry), 4)
	if err != nil {
		return nil, errors.Wrap(err, "unable to create parquet writer")
	}
	pw.RowGroupSize = 128 * 1024 * 1024
	pw.CompressionType = parquet.CompressionCodec_SNAPPY
	return &ManifestWriter{pw: pw, pf: pf}, nil
}

// NewLocalManifestWriter writes the manifest to a local path.
func NewLocalManifestWriter(path string) (*ManifestWriter, error) {
	pf, err := local.NewLocalFileWriter(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to create manifest file %s", path)
	}
	return NewManifestWriter(pf)
}

func (w *ManifestWriter) Write(entry ManifestEntry) error {
	return w.pw.Write(entry)
}

func (w *ManifestWriter) Close() error {
	if err := w.pw.WriteStop(); err != nil {
		return errors.Wrap(err, "unable to finalize manifest")
	}
	return w.pf.Close()
}

// CountManifestRows reports the number of rows in a manifest parquet file.
func CountManifestRows(pf source.ParquetFile) (int64, error) {
	pr, err := reader.NewParquetReader(pf, new(ManifestEntry), 4)
	if err != nil {
		return 0, errors.Wrap(err, "unable to create parquet reader")
	}
	defer pr.ReadStop()
	return pr.GetNumRows(), nil
}
