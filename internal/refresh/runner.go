package refresh

import (
	"context"
	"log"
	"time"
)

// Task is one background refresh unit.
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

// Runner executes fire-and-forget refresh tasks off the request path.
// Submitting never blocks the response; task errors are logged and dropped.
type Runner struct {
	tasks   chan Task
	timeout time.Duration
}

// NewRunner creates a runner with a bounded queue. timeout bounds each task.
func NewRunner(queueSize int, timeout time.Duration) *Runner {
	return &Runner{
		tasks:   make(chan Task, queueSize),
		timeout: timeout,
	}
}

// Submit enqueues a task without blocking. Returns false when the queue is
// full; the caller treats that the same as a submitted task, since a refresh
// is already in flight or imminent.
func (r *Runner) Submit(name string, fn func(ctx context.Context) error) bool {
	select {
	case r.tasks <- Task{Name: name, Run: fn}:
		log.Printf("[refresh] queued: %s", name)
		return true
	default:
		log.Printf("[refresh] queue full, dropped: %s", name)
		return false
	}
}

// Start drains the queue until ctx is cancelled. Run it in a goroutine from
// main.
func (r *Runner) Start(ctx context.Context) {
	log.Println("[refresh] runner started")
	for {
		select {
		case <-ctx.Done():
			log.Println("[refresh] runner stopped")
			return
		case task := <-r.tasks:
			r.run(ctx, task)
		}
	}
}

func (r *Runner) run(ctx context.Context, task Task) {
	taskCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	started := time.Now()
	if err := task.Run(taskCtx); err != nil {
		log.Printf("[refresh] %s failed after %v: %v", task.Name, time.Since(started), err)
		return
	}
	log.Printf("[refresh] %s completed in %v", task.Name, time.Since(started))
}
