package impl

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xitongsys/parquet-go-source/local"
)

func TestManifestWriteAndCount(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.parquet")

	mw, err := NewLocalManifestWriter(path)
	require.NoError(t, err)

	now := time.Now().UnixMilli()
	for i := 0; i < 3; i++ {
		require.NoError(t, mw.Write(ManifestEntry{
			Bucket:           "bom",
			Key:              "upload/file.dat",
			Source:           "/tmp/file.dat",
			Size:             7,
			UploadedAtMillis: now,
			Worker:           int32(i),
		}))
	}
	require.NoError(t, mw.Close())

	pf, err := local.NewLocalFileReader(path)
	require.NoError(t, err)
	defer pf.Close()

	rows, err := CountManifestRows(pf)
	require.NoError(t, err)
	assert.EqualValues(t, 3, rows)
}

func TestManifestWriterRejectsBadPath(t *testing.T) {
	_, err := NewLocalManifestWriter(filepath.Join(t.TempDir(), "missing", "manifest.parquet"))
	require.Error(t, err)
}
