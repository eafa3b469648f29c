package mailer

import (
	"context"
	"sync"
	"time"

	"github.com/muddihilm/socapp/internal/logger"
)

// Sender delivers a single verification email.
type Sender interface {
	Send(ctx context.Context, to, verificationURL string) error
}

type job struct {
	to              string
	verificationURL string
}

// Queue decouples email dispatch from the request/response cycle. Contract:
// at-most-once — each job gets one send attempt, failures are logged and
// never retried, and a full buffer drops the job rather than block a
// request handler.
type Queue struct {
	sender  Sender
	jobs    chan job
	timeout time.Duration

	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewQueue starts a single dispatch worker over a buffer of the given size.
func NewQueue(sender Sender, buffer int) *Queue {
	q := &Queue{
		sender:  sender,
		jobs:    make(chan job, buffer),
		timeout: 30 * time.Second,
	}

	q.wg.Add(1)
	go q.worker()

	return q
}

func (q *Queue) worker() {
	defer q.wg.Done()

	for j := range q.jobs {
		ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
		if err := q.sender.Send(ctx, j.to, j.verificationURL); err != nil {
			logger.Log.Errorw("verification email dispatch failed", "to", j.to, "error", err)
		} else {
			logger.Log.Infow("verification email dispatched", "to", j.to)
		}
		cancel()
	}
}

// Dispatch schedules a verification email without blocking the caller.
func (q *Queue) Dispatch(to, verificationURL string) {
	select {
	case q.jobs <- job{to: to, verificationURL: verificationURL}:
	default:
		logger.Log.Errorw("mail queue full, dropping verification email", "to", to)
	}
}

// Close stops accepting jobs and waits for the worker to drain the buffer.
func (q *Queue) Close() {
	q.closeOnce.Do(func() {
		close(q.jobs)
	})
	q.wg.Wait()
}
