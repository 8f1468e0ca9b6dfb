package impl

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/bomt1me/paris/pkg/config"
	"github.com/bomt1me/paris/pkg/storage"
)

// Uploaded describes one object that made it to the storage backend.
type Uploaded struct {
	Bucket     string
	Key        string
	Source     string
	Size       int64
	UploadedAt time.Time
	Worker     int
}

// Manager runs a pool of upload workers over a shared queue of files.
// Workers exit when the queue is closed and drained, or when Stop gives up
// waiting. Config keys: worker.threads (default 1), worker.join.timeout
// seconds (default 60).
type Manager struct {
	config     *config.Config
	queue      chan *storage.File
	factory    *storage.Factory
	logger     *logrus.Entry
	onUploaded func(Uploaded)

	engine      storage.Engine
	threads     int
	joinTimeout time.Duration

	cancel   context.CancelFunc
	wg       sync.WaitGroup
	uploads  int64
	failures int64
}

func NewManager(conf *config.Config, queue chan *storage.File, factory *storage.Factory, logger *logrus.Entry, onUploaded func(Uploaded)) *Manager {
	return &Manager{
		config:     conf,
		queue:      queue,
		factory:    factory,
		logger:     logger,
		onUploaded: onUploaded,
	}
}

// Prepare builds the storage engine and sizes the pool. Must be called
// before Start.
func (m *Manager) Prepare() error {
	engine, err := m.factory.Build()
	if err != nil {
		return errors.Wrap(err, "unable to build storage engine")
	}
	m.engine = engine
	m.threads = m.config.GetInt("worker.threads", 1)
	m.joinTimeout = m.config.GetSeconds("worker.join.timeout", 60*time.Second)
	return nil
}

func (m *Manager) Start(ctx context.Context) {
	ctx, m.cancel = context.WithCancel(ctx)
	for i := 0; i < m.threads; i++ {
		m.wg.Add(1)
		go m.runWorker(ctx, i)
	}
	m.logger.Infof("started %d upload workers on engine %s", m.threads, m.engine.Identifier())
}

func (m *Manager) runWorker(ctx context.Context, workerID int) {
	defer m.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case file, ok := <-m.queue:
			if !ok {
				return
			}
			m.upload(ctx, workerID, file)
		}
	}
}

func (m *Manager) upload(ctx context.Context, workerID int, file *storage.File) {
	if err := m.engine.UploadFile(ctx, file); err != nil {
		atomic.AddInt64(&m.failures, 1)
		m.logger.Errorf("[worker-%d] upload of %s failed: %v", workerID, file.Filepath(), err)
		return
	}
	atomic.AddInt64(&m.uploads, 1)

	if m.onUploaded == nil {
		return
	}
	var size int64
	if info, err := os.Stat(file.Filepath()); err == nil {
		size = info.Size()
	}
	m.onUploaded(Uploaded{
		Bucket:     file.Bucket(),
		Key:        file.Key(),
		Source:     file.Filepath(),
		Size:       size,
		UploadedAt: time.Now(),
		Worker:     workerID,
	})
}

// Stop waits for the workers to drain the queue, cancelling them if the join
// timeout passes first. The queue must already be closed by the producer.
func (m *Manager) Stop() error {
	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	var err error
	select {
	case <-done:
	case <-time.After(m.joinTimeout):
		err = errors.Errorf("upload workers did not drain within %s", m.joinTimeout)
	}

	if m.cancel != nil {
		m.cancel()
	}
	if m.engine != nil {
		if closeErr := m.engine.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}
	return err
}

// Uploads is the number of successfully uploaded files.
func (m *Manager) Uploads() int64 {
	return atomic.LoadInt64(&m.uploads)
}

// Failures is the number of failed uploads.
func (m *Manager) Failures() int64 {
	return atomic.LoadInt64(&m.failures)
}
