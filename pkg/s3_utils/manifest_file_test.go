package s3_utils

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManifestFileReaderSeek(t *testing.T) {
	data := []byte("0123456789abcdefghij")
	modtime := time.Now()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.ServeContent(w, r, "manifest.parquet", modtime, bytes.NewReader(data))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	pf, err := NewManifestFileReader(context.Background(), client, "bom", "manifest.parquet")
	require.NoError(t, err)
	defer pf.Close()

	buf := make([]byte, 5)
	n, err := pf.Read(buf)
	require.NoError(t, err)
	require.Equal(t, 5, n)
	assert.Equal(t, data[:5], buf)

	// a relative seek lands at current+offset, not current twice
	pos, err := pf.Seek(3, io.SeekCurrent)
	require.NoError(t, err)
	assert.EqualValues(t, 8, pos)

	n, err = pf.Read(buf[:4])
	require.NoError(t, err)
	require.Equal(t, 4, n)
	assert.Equal(t, data[8:12], buf[:4])

	pos, err = pf.Seek(-4, io.SeekEnd)
	require.NoError(t, err)
	assert.EqualValues(t, int64(len(data)-4), pos)

	n, err = pf.Read(buf[:4])
	if err != nil {
		require.Equal(t, io.EOF, err)
	}
	require.Equal(t, 4, n)
	assert.Equal(t, data[16:], buf[:4])
}

func TestManifestFileReaderSeekBounds(t *testing.T) {
	data := []byte("payload")
	modtime := time.Now()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.ServeContent(w, r, "manifest.parquet", modtime, bytes.NewReader(data))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	pf, err := NewManifestFileReader(context.Background(), client, "bom", "manifest.parquet")
	require.NoError(t, err)
	defer pf.Close()

	_, err = pf.Seek(0, 42)
	assert.Equal(t, errWhence, err)

	_, err = pf.Seek(-1, io.SeekStart)
	assert.Equal(t, errInvalidOffset, err)

	_, err = pf.Seek(int64(len(data))+1, io.SeekStart)
	assert.Equal(t, errInvalidOffset, err)

	_, err = pf.Seek(-int64(len(data))-1, io.SeekEnd)
	assert.Equal(t, errInvalidOffset, err)
}
