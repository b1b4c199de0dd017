package tracer

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/RookieLinux/bellhopcuda/env"
	"github.com/RookieLinux/bellhopcuda/log"
)

var logger = log.New("tracer")

// Panics carrying this marker abort the run instead of being folded
// into the worker error buffer; they indicate dispatcher bugs.
type fatal interface {
	Fatal()
}

// A tracer running jobs on a pool of CPU worker goroutines. Workers
// pull jobs from a shared counter via atomic fetch-and-increment and
// run each job fully to completion before requesting the next.
type cpuTracer struct {
	id      string
	workers int
	kernel  Kernel

	pos *env.Position
	ang *env.Angles

	stats Stats
}

// Create a tracer backed by a pool of CPU workers. A worker count of
// zero selects one worker per CPU.
func NewCPUTracer(workers int, pos *env.Position, ang *env.Angles, kernel Kernel) Tracer {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &cpuTracer{
		id:      fmt.Sprintf("cpu (%d workers)", workers),
		workers: workers,
		kernel:  kernel,
		pos:     pos,
		ang:     ang,
	}
}

func (tr *cpuTracer) Id() string {
	return tr.id
}

func (tr *cpuTracer) Speed() uint32 {
	return uint32(tr.workers)
}

func (tr *cpuTracer) Close() {
}

func (tr *cpuTracer) Stats() *Stats {
	return &tr.stats
}

// Number of workers in the pool.
func (tr *cpuTracer) Workers() int {
	return tr.workers
}

func (tr *cpuTracer) Enqueue(req BlockRequest) {
	go tr.process(req)
}

// Run one block of jobs to completion across the worker pool. Workers
// share nothing per-job; the only contended state is the job counter
// and the error buffer. A failed worker abandons its remaining jobs,
// the others keep going, and the aggregated failure surfaces only
// after every worker has joined.
func (tr *cpuTracer) process(req BlockRequest) {
	var (
		jobID     = req.FirstJob
		end       = req.FirstJob + req.NumJobs
		completed int32

		errMu  sync.Mutex
		errBuf []string

		wg sync.WaitGroup
	)

	start := time.Now()
	for w := 0; w < tr.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if v := recover(); v != nil {
					if _, isFatal := v.(fatal); isFatal {
						panic(v)
					}
					errMu.Lock()
					errBuf = append(errBuf, fmt.Sprintf("%v", v))
					errMu.Unlock()
				}
			}()

			for {
				job := atomic.AddInt32(&jobID, 1) - 1
				if job >= end {
					return
				}
				j, ok := DecodeJob(job, tr.pos, tr.ang)
				if !ok {
					return
				}
				if err := tr.kernel(j); err != nil {
					errMu.Lock()
					errBuf = append(errBuf, err.Error())
					errMu.Unlock()
					return
				}
				atomic.AddInt32(&completed, 1)
			}
		}()
	}
	wg.Wait()

	tr.stats.NumJobs = completed
	tr.stats.TraceTime = time.Since(start)

	if len(errBuf) > 0 {
		req.ErrChan <- errors.New(strings.Join(errBuf, "\n"))
		return
	}
	req.DoneChan <- completed
}
