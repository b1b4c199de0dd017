package tracer

import "time"

// Runs the full per-job pipeline for one job: ray state machine plus
// whichever accumulator the run mode selects. Must be safe to call
// concurrently; everything it touches is either job-local or a shared
// accumulator designed for concurrent writes.
type Kernel func(Job) error

// A contiguous block of jobs that is processed by a tracer.
type BlockRequest struct {
	// First job index in the block and the number of jobs.
	FirstJob int32
	NumJobs  int32

	// A channel to signal on block completion with the number of
	// completed jobs.
	DoneChan chan<- int32

	// A channel to signal if an error occurs.
	ErrChan chan<- error
}

// Tracer statistics.
type Stats struct {
	// The number of jobs processed in the last block.
	NumJobs int32

	// The time spent tracing that block (in nanoseconds).
	TraceTime time.Duration
}

// An execution unit capable of tracing rays: a CPU worker pool, or a
// data-parallel device mapping the same kernel over its lanes.
type Tracer interface {
	// Get tracer id.
	Id() string

	// Get the tracer's computation speed estimate compared to a
	// baseline (cpu) implementation.
	Speed() uint32

	// Shutdown and cleanup tracer.
	Close()

	// Enqueue block request.
	Enqueue(BlockRequest)

	// Retrieve last block statistics.
	Stats() *Stats
}
