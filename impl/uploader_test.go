package impl

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bomt1me/paris/pkg/config"
	"github.com/bomt1me/paris/pkg/log"
	"github.com/bomt1me/paris/pkg/storage"
)

type fakeEngine struct {
	uploads int64
	fail    bool
}

func (e *fakeEngine) Identifier() string { return "fake" }

func (e *fakeEngine) Open() error { return nil }

func (e *fakeEngine) Close() error { return nil }

func (e *fakeEngine) UploadFile(ctx context.Context, file *storage.File) error {
	if e.fail {
		return errors.New("upload rejected")
	}
	atomic.AddInt64(&e.uploads, 1)
	return nil
}

func newTestManager(t *testing.T, engine storage.Engine, threads, joinTimeoutSeconds int, queue chan *storage.File, onUploaded func(Uploaded)) (*Manager, *config.Config) {
	t.Helper()
	conf := config.FromProperties([][2]string{
		{"files.provider", "fake"},
		{"files.upload.bucket", "bom"},
		{"files.upload.key", "upload/"},
		{"worker.threads", strconv.Itoa(threads)},
		{"worker.join.timeout", strconv.Itoa(joinTimeoutSeconds)},
	})
	factory := storage.NewFactory(conf)
	factory.Register(engine)
	return NewManager(conf, queue, factory, log.WithContext(context.Background()), onUploaded), conf
}

func TestManagerDrainsQueue(t *testing.T) {
	engine := &fakeEngine{}
	queue := make(chan *storage.File, 10)

	var mu sync.Mutex
	var uploaded []Uploaded
	record := func(u Uploaded) {
		mu.Lock()
		defer mu.Unlock()
		uploaded = append(uploaded, u)
	}

	manager, conf := newTestManager(t, engine, 3, 5, queue, record)
	require.NoError(t, manager.Prepare())
	manager.Start(context.Background())

	for i := 0; i < 5; i++ {
		queue <- storage.NewFile(conf, "/tmp/does-not-exist.dat", "upload", "file.dat")
	}
	close(queue)

	require.NoError(t, manager.Stop())
	assert.EqualValues(t, 5, manager.Uploads())
	assert.EqualValues(t, 0, manager.Failures())
	assert.EqualValues(t, 5, atomic.LoadInt64(&engine.uploads))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, uploaded, 5)
	assert.Equal(t, "bom", uploaded[0].Bucket)
	assert.Equal(t, "upload/file.dat", uploaded[0].Key)
}

func TestManagerCountsFailures(t *testing.T) {
	engine := &fakeEngine{fail: true}
	queue := make(chan *storage.File, 10)

	recorded := int64(0)
	record := func(Uploaded) { atomic.AddInt64(&recorded, 1) }

	manager, conf := newTestManager(t, engine, 2, 5, queue, record)
	require.NoError(t, manager.Prepare())
	manager.Start(context.Background())

	for i := 0; i < 3; i++ {
		queue <- storage.NewFile(conf, "/tmp/does-not-exist.dat", "upload", "file.dat")
	}
	close(queue)

	require.NoError(t, manager.Stop())
	assert.EqualValues(t, 0, manager.Uploads())
	assert.EqualValues(t, 3, manager.Failures())
	assert.EqualValues(t, 0, atomic.LoadInt64(&recorded))
}

func TestManagerStopTimesOutOnOpenQueue(t *testing.T) {
	engine := &fakeEngine{}
	queue := make(chan *storage.File, 1)

	manager, _ := newTestManager(t, engine, 1, 0, queue, nil)
	require.NoError(t, manager.Prepare())
	manager.Start(context.Background())

	// queue is never closed, workers block on receive
	err := manager.Stop()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "did not drain")
}

func TestManagerPrepareFailsOnUnknownProvider(t *testing.T) {
	conf := config.FromProperties([][2]string{
		{"files.provider", "tape"},
	})
	factory := storage.NewFactory(conf)
	manager := NewManager(conf, make(chan *storage.File), factory, log.WithContext(context.Background()), nil)

	require.Error(t, manager.Prepare())
}
