package goal

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Recomputer interface the worker needs from the goal service.
type Recomputer interface {
	Recompute(ctx context.Context, goalID, userID uuid.UUID) error
}

const (
	// initialDelay gives the upstream search index a moment to observe
	// recent activity before the first computation runs.
	initialDelay = 5 * time.Second
	retryDelay   = 30 * time.Second
	maxAttempts  = 3
	queueSize    = 64
)

type recomputeJob struct {
	goalID  uuid.UUID
	userID  uuid.UUID
	attempt int
}

// Worker drains a queue of goal-progress computations on a single
// goroutine, retrying failed jobs a bounded number of times. It replaces an
// unawaited timer with something whose failures are at least accounted for.
type Worker struct {
	service Recomputer

	jobs chan recomputeJob
	quit chan struct{}
	wg   sync.WaitGroup

	// delay is swapped out by tests.
	delay func(attempt int) time.Duration
}

func NewWorker(service Recomputer) *Worker {
	return &Worker{
		service: service,
		jobs:    make(chan recomputeJob, queueSize),
		quit:    make(chan struct{}),
		delay: func(attempt int) time.Duration {
			if attempt == 0 {
				return initialDelay
			}
			return retryDelay * time.Duration(attempt)
		},
	}
}

func (w *Worker) Start() {
	w.wg.Add(1)
	go w.run()
}

// Stop drains nothing: queued jobs not yet picked up are dropped. Progress
// is recomputed again on the next refresh anyway.
func (w *Worker) Stop() {
	close(w.quit)
	w.wg.Wait()
}

func (w *Worker) Enqueue(goalID, userID uuid.UUID) bool {
	select {
	case w.jobs <- recomputeJob{goalID: goalID, userID: userID}:
		return true
	default:
		return false
	}
}

func (w *Worker) run() {
	defer w.wg.Done()
	for {
		select {
		case <-w.quit:
			return
		case job := <-w.jobs:
			w.process(job)
		}
	}
}

func (w *Worker) process(job recomputeJob) {
	timer := time.NewTimer(w.delay(job.attempt))
	defer timer.Stop()
	select {
	case <-w.quit:
		return
	case <-timer.C:
	}

	log := logrus.WithFields(logrus.Fields{
		"goal_id": job.goalID,
		"user_id": job.userID,
		"attempt": job.attempt + 1,
	})

	err := w.service.Recompute(context.Background(), job.goalID, job.userID)
	if err == nil {
		log.Info("Background progress recompute completed")
		return
	}

	if job.attempt+1 >= maxAttempts {
		log.WithError(err).Error("Background progress recompute gave up")
		return
	}

	log.WithError(err).Warn("Background progress recompute failed, will retry")
	job.attempt++
	select {
	case w.jobs <- job:
	default:
		log.Warn("Recompute queue full, dropping retry")
	}
}
