package runner

import (
	"errors"
	"runtime"
	"strings"
	"time"

	"github.com/RookieLinux/bellhopcuda/env"
	"github.com/RookieLinux/bellhopcuda/field"
	"github.com/RookieLinux/bellhopcuda/log"
	"github.com/RookieLinux/bellhopcuda/ray"
	"github.com/RookieLinux/bellhopcuda/tracer"
)

var logger = log.New("runner")

// Per-tracer statistics for the last run.
type TracerStat struct {
	// The tracer id.
	Id string

	// Jobs traced and the share of the whole job space.
	NumJobs    int32
	JobPercent float32

	// Trace time for the assigned block.
	TraceTime time.Duration
}

type RunStats struct {
	// Individual tracer stats.
	Tracers []TracerStat

	// Total time for the entire run.
	RunTime time.Duration
}

// Options for a run.
type Options struct {
	// Worker count for the CPU tracer; 0 selects one worker per CPU.
	Workers int
}

// Runner drives a complete run: it owns the output accumulators,
// partitions the job space across the attached tracers and joins them,
// surfacing one aggregated failure after every tracer has finished.
type Runner struct {
	env     *env.Env
	sch     tracer.JobScheduler
	tracers []tracer.Tracer
	workers int

	// Outputs; exactly one is populated, matching the run mode.
	Rays     [][]ray.Point
	Pressure *field.PressureField
	Arrivals *field.ArrivalTable

	stats       RunStats
	lastRunTime int64
}

// Create a runner for the given environment with a CPU tracer
// attached. Additional tracers (device lanes) can be attached before
// the run starts.
func New(e *env.Env, sch tracer.JobScheduler, opts Options) (*Runner, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = e.Workers
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	r := &Runner{
		env:     e,
		sch:     sch,
		workers: workers,
	}

	numJobs := tracer.NumJobs(e.Pos, e.Angles)
	switch e.Beam.RunMode {
	case env.RunRay:
		r.Rays = make([][]ray.Point, numJobs)
	case env.RunField:
		r.Pressure = field.NewPressureField(len(e.Pos.Sz), len(e.Pos.Rz), len(e.Pos.Rr))
	case env.RunArrivals:
		nCells := len(e.Pos.Sz) * len(e.Pos.Rz) * len(e.Pos.Rr)
		table, err := field.NewArrivalTable(e.ArrMemory, nCells, workers)
		if err != nil {
			return nil, err
		}
		r.Arrivals = table
	}

	r.tracers = []tracer.Tracer{
		tracer.NewCPUTracer(workers, e.Pos, e.Angles, r.kernel()),
	}
	return r, nil
}

// Attach an additional tracer. The scheduler splits the job space
// across all attached tracers by speed estimate and past timings.
func (r *Runner) Attach(tr tracer.Tracer) {
	r.tracers = append(r.tracers, tr)
}

// Shutdown all attached tracers.
func (r *Runner) Close() {
	for _, tr := range r.tracers {
		tr.Close()
	}
}

// Get statistics for the last run.
func (r *Runner) Stats() RunStats {
	return r.stats
}

// Process every job in the run. Blocks until all tracers have joined;
// a failure inside any worker never cancels the others, it is
// aggregated and surfaced here after the run completes.
func (r *Runner) Run() error {
	numJobs := tracer.NumJobs(r.env.Pos, r.env.Angles)
	assignment := r.sch.Schedule(r.tracers, numJobs, r.lastRunTime)

	logger.Infof("dispatching %d jobs to %d tracer(s)", numJobs, len(r.tracers))

	doneChan := make(chan int32, len(r.tracers))
	errChan := make(chan error, len(r.tracers))

	start := time.Now()
	var first int32
	for idx, tr := range r.tracers {
		tr.Enqueue(tracer.BlockRequest{
			FirstJob: first,
			NumJobs:  assignment[idx],
			DoneChan: doneChan,
			ErrChan:  errChan,
		})
		first += assignment[idx]
	}

	var errBuf []string
	for pending := len(r.tracers); pending > 0; pending-- {
		select {
		case <-doneChan:
		case err := <-errChan:
			errBuf = append(errBuf, err.Error())
		}
	}

	r.stats.RunTime = time.Since(start)
	r.lastRunTime = int64(r.stats.RunTime)
	r.stats.Tracers = r.stats.Tracers[:0]
	for _, tr := range r.tracers {
		stats := tr.Stats()
		r.stats.Tracers = append(r.stats.Tracers, TracerStat{
			Id:         tr.Id(),
			NumJobs:    stats.NumJobs,
			JobPercent: 100.0 * float32(stats.NumJobs) / float32(numJobs),
			TraceTime:  stats.TraceTime,
		})
	}

	if len(errBuf) > 0 {
		return errors.New(strings.Join(errBuf, "\n"))
	}

	if r.env.Beam.RunMode == env.RunField {
		r.Pressure.Finalize(r.env)
	}
	return nil
}
