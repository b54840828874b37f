package persistence

import (
	"sync"

	"github.com/wfunc/teenpatti/logger"
	"github.com/wfunc/teenpatti/models"
)

// AsyncWriter queues writes onto background workers so room actors never
// wait on the database. When the queue is full the write is dropped. A
// failed write is logged and reported through OnError; it never affects
// in-memory state.
type AsyncWriter struct {
	db      Database
	jobs    chan func() error
	wg      sync.WaitGroup
	mutex   sync.RWMutex
	closed  bool
	OnError func(op string, err error)
}

const queueSize = 256

// NewAsyncWriter starts workers goroutines draining writes into db.
func NewAsyncWriter(db Database, workers int) *AsyncWriter {
	if workers < 1 {
		workers = 1
	}
	w := &AsyncWriter{
		db:   db,
		jobs: make(chan func() error, queueSize),
	}
	for i := 0; i < workers; i++ {
		w.wg.Add(1)
		go w.run()
	}
	return w
}

func (w *AsyncWriter) run() {
	defer w.wg.Done()
	for job := range w.jobs {
		_ = job()
	}
}

func (w *AsyncWriter) enqueue(op string, fn func() error) error {
	w.mutex.RLock()
	defer w.mutex.RUnlock()
	if w.closed {
		return ErrWriterClosed
	}

	job := func() error {
		err := fn()
		if err != nil {
			logger.Log.Errorw("persistence write failed", "op", op, "error", err)
			w.report(op, err)
		}
		return err
	}

	select {
	case w.jobs <- job:
		return nil
	default:
		logger.Log.Errorw("persistence queue full, dropping write", "op", op)
		w.report(op, ErrQueueFull)
		return ErrQueueFull
	}
}

func (w *AsyncWriter) report(op string, err error) {
	if w.OnError != nil {
		w.OnError(op, err)
	}
}

// SaveRoom queues the room metadata write.
func (w *AsyncWriter) SaveRoom(rec models.RoomRecord) error {
	return w.enqueue("save_room", func() error { return w.db.SaveRoom(rec) })
}

// SaveRoundResult queues the round result write.
func (w *AsyncWriter) SaveRoundResult(rec models.RoundRecord) error {
	return w.enqueue("save_round", func() error { return w.db.SaveRoundResult(rec) })
}

// Close waits for queued writes and closes the underlying database.
func (w *AsyncWriter) Close() error {
	w.mutex.Lock()
	if w.closed {
		w.mutex.Unlock()
		return nil
	}
	w.closed = true
	close(w.jobs)
	w.mutex.Unlock()

	w.wg.Wait()
	return w.db.Close()
}
