package storage

import (
	"context"
	"sync"
	"time"

	"resume-skills/internal/cv"

	"go.uber.org/zap"
)

// Recorder persists extraction results in the background so the request
// path never waits on the database. When the queue is full the record is
// dropped and logged.
type Recorder struct {
	db    *DB
	queue chan *ExtractionRecord
	wg    sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// NewRecorder starts one worker draining a queue of the given size.
func NewRecorder(db *DB, queueSize int) *Recorder {
	if queueSize <= 0 {
		queueSize = 100
	}
	r := &Recorder{
		db:    db,
		queue: make(chan *ExtractionRecord, queueSize),
	}
	r.wg.Add(1)
	go r.worker()
	zap.L().Info("[HistoryWorker] started", zap.Int("queue_size", queueSize))
	return r
}

// Record implements cv.ResultSink.
func (r *Recorder) Record(filename string, res *cv.Result) {
	skills := make([]string, len(res.Skills))
	copy(skills, res.Skills)

	rec := &ExtractionRecord{
		Filename:   filename,
		Format:     string(res.Format),
		Mode:       string(res.Mode),
		Skills:     skills,
		TextLength: res.TextLength,
		Duration:   res.Elapsed,
		CreatedAt:  time.Now().UTC(),
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return
	}

	select {
	case r.queue <- rec:
	default:
		zap.L().Warn("[HistoryWorker] queue full, dropping record", zap.String("filename", filename))
	}
}

// Close stops accepting records and waits for the queue to drain.
func (r *Recorder) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	close(r.queue)
	r.mu.Unlock()

	r.wg.Wait()
}

func (r *Recorder) worker() {
	defer r.wg.Done()

	for rec := range r.queue {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := r.db.SaveExtraction(ctx, rec); err != nil {
			zap.L().Error("[HistoryWorker] failed to save extraction",
				zap.String("filename", rec.Filename),
				zap.Error(err),
			)
		}
		cancel()
	}
}
