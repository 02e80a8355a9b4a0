package jobs

import (
	"context"
	"log"
	"time"
)

// JobProcessor is one round of background work, such as draining the Jira
// outbox. Implementations handle their own per-item errors and only return
// an error when the whole round failed.
type JobProcessor interface {
	ProcessJobs(ctx context.Context) error
}

// Worker drives a JobProcessor on a fixed poll interval until it is stopped
// or its context is cancelled.
type Worker struct {
	processor    JobProcessor
	pollInterval time.Duration
	stopChan     chan struct{}
	doneChan     chan struct{}
}

func NewWorker(processor JobProcessor, pollInterval time.Duration) *Worker {
	return &Worker{
		processor:    processor,
		pollInterval: pollInterval,
		stopChan:     make(chan struct{}),
		doneChan:     make(chan struct{}),
	}
}

// Start runs the polling loop. It blocks, so callers run it in a goroutine.
// A failed round is logged and the loop keeps going; the next tick retries.
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()
	defer close(w.doneChan)

	log.Printf("background worker started, polling every %v", w.pollInterval)

	for {
		select {
		case <-ctx.Done():
			log.Println("background worker stopped: context cancelled")
			return
		case <-w.stopChan:
			log.Println("background worker stopped: stop signal received")
			return
		case <-ticker.C:
			if err := w.processor.ProcessJobs(ctx); err != nil {
				log.Printf("background job round failed: %v", err)
			}
		}
	}
}

// Stop signals the loop to exit and waits for the in-flight round, if any,
// to finish.
func (w *Worker) Stop() {
	close(w.stopChan)
	<-w.doneChan
	log.Println("background worker shutdown complete")
}
