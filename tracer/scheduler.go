package tracer

import "math"

// The JobScheduler interface is implemented by all job scheduling
// algorithms.
type JobScheduler interface {
	// Split the job space into contiguous blocks and assign to the
	// pool of tracers using feedback collected from previous runs.
	//
	// This function returns the job count assignment for each tracer
	// in the input list.
	Schedule(tracers []Tracer, numJobs int32, lastRunTime int64) []int32
}

// The perfect scheduler assumes that the volume of tracing work
// between two subsequent runs over the same fan is approximately the
// same.
type perfectScheduler struct {
	blockAssignment []int32
}

// Create a new perfect scheduler instance
func NewPerfectScheduler() JobScheduler {
	return &perfectScheduler{}
}

// Split the job space into contiguous blocks and assign to the pool of
// tracers using feedback collected from previous runs.
//
// This function returns the job count assignment for each tracer in
// the input list. When previous run information is available the
// scheduler estimates the workload share for tracer w as
// (jobs,w / time,w) / Σ(jobs / time).
func (sch *perfectScheduler) Schedule(tracers []Tracer, numJobs int32, lastRunTime int64) []int32 {
	var total float64
	var scaler float64

	// If this is the first time we try to schedule or the number of
	// tracers has changed we need to reset the block assignments
	if len(sch.blockAssignment) != len(tracers) {
		sch.blockAssignment = make([]int32, len(tracers))

		// Get speed estimate for each tracer and distribute jobs accordingly
		for _, tr := range tracers {
			total += float64(tr.Speed())
		}
		scaler = float64(numJobs) / total

		var scheduled int32
		for idx, tr := range tracers {
			sch.blockAssignment[idx] = int32(math.Max(1.0, math.Floor(float64(tr.Speed())*scaler)))
			scheduled += sch.blockAssignment[idx]
		}
		sch.blockAssignment[0] += numJobs - scheduled

		return sch.blockAssignment
	}

	// Use last run statistics
	var stats *Stats
	for _, tr := range tracers {
		stats = tr.Stats()
		total += float64(stats.NumJobs) / float64(stats.TraceTime)
	}

	scaler = float64(numJobs) / total
	var scheduled int32
	for idx, tr := range tracers {
		stats = tr.Stats()
		sch.blockAssignment[idx] = int32(math.Max(1.0, math.Floor(float64(stats.NumJobs)/float64(stats.TraceTime)*scaler)))
		scheduled += sch.blockAssignment[idx]
	}

	// In case the blocks don't add up to the job count append the
	// missing jobs to the first tracer
	sch.blockAssignment[0] += numJobs - scheduled

	return sch.blockAssignment
}
