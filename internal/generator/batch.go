package generator

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/namngocngo2210/veo3/internal/models"
	"go.uber.org/zap"
)

// Update is one per-item status notification. It carries both the
// positional index of the request in the submitted slice and a stable task
// id, so callers can key their bookkeeping by id instead of position.
type Update struct {
	Index  int
	TaskID string
	Result models.GenerationResult
}

// NewTaskIDs mints one stable id per request in a batch.
func NewTaskIDs(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = uuid.New().String()
	}
	return ids
}

// GenerateBatch runs every request under the concurrency cap and blocks
// until each has reached a terminal state. Submission follows slice order;
// completion order is whatever the network gives us. Updates are delivered
// from a single consumer goroutine, one at a time, so onUpdate needs no
// locking of its own. Cancelling ctx settles all remaining items without
// issuing further provider calls.
func (g *Generator) GenerateBatch(ctx context.Context, reqs []models.GenerationRequest, taskIDs []string, onUpdate func(Update)) {
	if len(reqs) == 0 {
		return
	}
	if len(taskIDs) != len(reqs) {
		taskIDs = NewTaskIDs(len(reqs))
	}

	updates := make(chan Update, len(reqs)*2)
	consumerDone := make(chan struct{})
	go func() {
		defer close(consumerDone)
		for u := range updates {
			onUpdate(u)
		}
	}()

	numWorkers := g.concurrencyFor(reqs[0].Model)
	if len(reqs) < numWorkers {
		numWorkers = len(reqs)
	}

	jobs := make(chan int, len(reqs))
	var wg sync.WaitGroup

	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if ctx.Err() != nil {
					// Never started; settle without any network calls.
					updates <- Update{Index: i, TaskID: taskIDs[i], Result: terminalFor(ctx.Err())}
					continue
				}
				idx := i
				g.Generate(ctx, &reqs[idx], func(res models.GenerationResult) {
					updates <- Update{Index: idx, TaskID: taskIDs[idx], Result: res}
				})
			}
		}()
	}

	for i := range reqs {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	close(updates)
	<-consumerDone

	g.logger.Info("batch finished",
		zap.Int("items", len(reqs)),
		zap.Int("workers", numWorkers))
}

// concurrencyFor picks the cap by model family: image models tolerate a
// slightly wider pool than video models.
func (g *Generator) concurrencyFor(model string) int {
	if strings.Contains(strings.ToLower(model), "image") || strings.Contains(strings.ToLower(model), "imagen") {
		return g.cfg.ImageConcurrency
	}
	return g.cfg.VideoConcurrency
}

// CancelRegistry tracks the cancel functions of in-flight batches so an API
// call can stop them cooperatively.
type CancelRegistry struct {
	mu      sync.Mutex
	cancels map[string]context.CancelFunc
}

func NewCancelRegistry() *CancelRegistry {
	return &CancelRegistry{cancels: make(map[string]context.CancelFunc)}
}

// Register stores the cancel function for a job and returns a release
// function the runner must call when the job finishes.
func (r *CancelRegistry) Register(jobID string, cancel context.CancelFunc) func() {
	r.mu.Lock()
	r.cancels[jobID] = cancel
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		delete(r.cancels, jobID)
		r.mu.Unlock()
	}
}

// Cancel requests cooperative cancellation of a job. Returns false when the
// job is not currently running.
func (r *CancelRegistry) Cancel(jobID string) bool {
	r.mu.Lock()
	cancel, ok := r.cancels[jobID]
	r.mu.Unlock()

	if ok {
		cancel()
	}
	return ok
}

// BuildJob assembles the persisted record for a new batch.
func BuildJob(jobID string, reqs []models.GenerationRequest, taskIDs []string) *models.BatchJob {
	items := make([]models.BatchItem, len(reqs))
	for i, req := range reqs {
		items[i] = models.BatchItem{
			TaskID:  taskIDs[i],
			Index:   i,
			Request: req,
			Result:  models.GenerationResult{Status: models.StatusIdle},
		}
	}
	return &models.BatchJob{
		ID:        jobID,
		Status:    models.JobStatusPending,
		Items:     items,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}
