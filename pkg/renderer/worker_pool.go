package renderer

import (
	"runtime"
	"sync"

	"github.com/df07/go-pathtracer/pkg/integrator"
)

// SpanTask represents a span rendering task for the worker pool
type SpanTask struct {
	Job    *FrameJob
	Span   Span
	Tracer integrator.Integrator
	TaskID int // Position of the span in the frame's plan
}

// SpanResult contains the result from rendering a span
type SpanResult struct {
	TaskID   int
	WorkerID int
	Stats    RenderStats
	Error    error
}

// WorkerPool manages parallel span rendering
type WorkerPool struct {
	taskQueue   chan SpanTask
	resultQueue chan SpanResult
	workers     []*Worker
	numWorkers  int
	wg          sync.WaitGroup
}

// Worker handles individual span rendering tasks
type Worker struct {
	ID          int
	taskQueue   <-chan SpanTask
	resultQueue chan<- SpanResult
}

// NewWorkerPool creates a worker pool with the specified number of workers
func NewWorkerPool(numWorkers int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}

	wp := &WorkerPool{
		taskQueue:   make(chan SpanTask, numWorkers*2),
		resultQueue: make(chan SpanResult, numWorkers*2),
		numWorkers:  numWorkers,
	}

	// Create workers
	for i := 0; i < numWorkers; i++ {
		wp.workers = append(wp.workers, &Worker{
			ID:          i,
			taskQueue:   wp.taskQueue,
			resultQueue: wp.resultQueue,
		})
	}

	return wp
}

// Start begins all workers
func (wp *WorkerPool) Start() {
	for _, worker := range wp.workers {
		wp.wg.Add(1)
		go worker.run(&wp.wg)
	}
}

// Stop gracefully shuts down all workers
func (wp *WorkerPool) Stop() {
	close(wp.taskQueue) // No more tasks
	wp.wg.Wait()        // Wait for workers to finish
	close(wp.resultQueue)
}

// SubmitTask submits a span task to the worker pool
func (wp *WorkerPool) SubmitTask(task SpanTask) {
	wp.taskQueue <- task
}

// GetResult retrieves a completed span result
func (wp *WorkerPool) GetResult() (SpanResult, bool) {
	result, ok := <-wp.resultQueue
	return result, ok
}

// GetNumWorkers returns the number of workers in the pool
func (wp *WorkerPool) GetNumWorkers() int {
	return wp.numWorkers
}

// run is the main worker loop
func (w *Worker) run(wg *sync.WaitGroup) {
	defer wg.Done()

	for task := range w.taskQueue {
		// Spans cover disjoint pixel ranges, so writing straight into the
		// shared accumulation and output buffers needs no locking
		stats, err := renderSpan(task.Job, task.Span, task.Tracer)

		w.resultQueue <- SpanResult{
			TaskID:   task.TaskID,
			WorkerID: w.ID,
			Stats:    stats,
			Error:    err,
		}
	}
}
