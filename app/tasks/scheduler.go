package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lysyi3m/rss-canon/app/cache"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

const (
	OutcomeSuccess = "success"
	OutcomeRetry   = "retry"
	OutcomeFailed  = "failed"
)

type Scheduler struct {
	store       cache.Store
	recorder    Recorder
	interval    time.Duration
	retention   time.Duration
	workerCount int
	taskTimeout time.Duration
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	taskQueue   chan TaskInterface
}

// NewScheduler builds a worker pool. When store is set and interval is
// positive, an expiry task runs every interval and drops records older
// than retention. recorder may be nil.
func NewScheduler(store cache.Store, recorder Recorder, workerCount int, interval, retention time.Duration) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	if workerCount < 1 {
		workerCount = 1
	}

	return &Scheduler{
		store:       store,
		recorder:    recorder,
		interval:    interval,
		retention:   retention,
		workerCount: workerCount,
		taskTimeout: 5 * time.Minute,
		ctx:         ctx,
		cancel:      cancel,
		taskQueue:   make(chan TaskInterface, 300),
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	if s.store == nil || s.interval <= 0 || s.retention <= 0 {
		slog.Debug("Cache expiry disabled")
		return
	}

	// Periodic cache expiry
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				if err := s.EnqueueTask(NewExpireCacheTask(s.store, s.retention)); err != nil {
					slog.Warn("Failed to enqueue ExpireCacheTask", "error", err)
				}
			}
		}
	}()
}

// Stop cancels running tasks and waits for the workers. Pending retries
// are dropped. The queue stays open so late senders get ctx errors
// instead of a panic.
func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
	}

	// Non-blocking send; a full queue is reported to the caller
	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

// worker processes queued tasks until the scheduler stops.
func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task := <-s.taskQueue:
			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, s.taskTimeout)
	defer cancel()

	err := task.Execute(taskCtx)
	if err == nil {
		s.record(task, OutcomeSuccess)
		return
	}

	slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", err)

	if errors.Is(err, ErrPermanent) || !task.CanRetry() {
		s.record(task, OutcomeFailed)
		slog.Error("Task failed permanently", "type", string(task.GetType()), "id", task.GetID(), "href", task.GetHref(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "last_error", err)
		return
	}

	// Retry with exponential backoff
	task.IncrementRetryCount()
	delay := retryDelay(task.GetRetryCount())
	s.record(task, OutcomeRetry)

	slog.Warn("Task retry scheduled", "type", string(task.GetType()), "href", task.GetHref(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", delay.String())

	go func() {
		timer := time.NewTimer(delay)
		defer timer.Stop()

		select {
		case <-s.ctx.Done():
			slog.Debug("Scheduler stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
		case <-timer.C:
			if retryErr := s.EnqueueTask(task); retryErr != nil {
				slog.Error("Failed to re-enqueue task for retry", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", retryErr)
			}
		}
	}()
}

func (s *Scheduler) record(task TaskInterface, outcome string) {
	if s.recorder != nil {
		s.recorder.RecordTask(string(task.GetType()), outcome)
	}
}
