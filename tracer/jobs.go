package tracer

import "github.com/RookieLinux/bellhopcuda/env"

// One (source, launch angle) pair.
type Job struct {
	ISz    int
	IAlpha int
}

// Decode a job counter value into source and launch angle indices.
// When a single fixed launch angle is requested the job space
// collapses to the source list. Reports whether the job exists.
func DecodeJob(job int32, pos *env.Position, ang *env.Angles) (Job, bool) {
	var j Job
	if ang.SingleAlpha >= 0 {
		j.ISz = int(job)
		j.IAlpha = ang.SingleAlpha
	} else {
		j.ISz = int(job) / ang.Nalpha()
		j.IAlpha = int(job) % ang.Nalpha()
	}
	return j, j.ISz < len(pos.Sz)
}

// Total number of jobs in a run.
func NumJobs(pos *env.Position, ang *env.Angles) int32 {
	if ang.SingleAlpha >= 0 {
		return int32(len(pos.Sz))
	}
	return int32(len(pos.Sz) * ang.Nalpha())
}
