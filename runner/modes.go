package runner

import (
	"sync"

	"github.com/RookieLinux/bellhopcuda/env"
	"github.com/RookieLinux/bellhopcuda/field"
	"github.com/RookieLinux/bellhopcuda/ray"
	"github.com/RookieLinux/bellhopcuda/tracer"
)

// Select the per-job pipeline for the run mode. Each kernel is a pure
// function of (job, immutable tables) apart from the accumulator it
// feeds, so the same pipeline maps over a goroutine pool or a
// data-parallel device unchanged.
func (r *Runner) kernel() tracer.Kernel {
	if r.env.Beam.RunMode == env.RunRay {
		return r.rayModeKernel
	}
	return r.fieldModeKernel
}

// Trajectory and pressure grid buffers are large and reused across jobs.
var (
	pointBufPool sync.Pool
	gridBufPool  sync.Pool
)

func (r *Runner) trajectoryBuf() []ray.Point {
	if buf, ok := pointBufPool.Get().([]ray.Point); ok && len(buf) >= r.env.Beam.MaxSteps+2 {
		return buf
	}
	return make([]ray.Point, r.env.Beam.MaxSteps+2)
}

func (r *Runner) gridBuf() []complex128 {
	size := r.Pressure.NRz * r.Pressure.NRr
	if buf, ok := gridBufPool.Get().([]complex128); ok && len(buf) == size {
		for i := range buf {
			buf[i] = 0
		}
		return buf
	}
	return make([]complex128, size)
}

// Trace one ray and keep its full trajectory.
func (r *Runner) rayModeKernel(job tracer.Job) error {
	rt := ray.New(r.env)
	ri := ray.InitInfo{ISz: job.ISz, IAlpha: job.IAlpha}

	pts := r.trajectoryBuf()
	defer pointBufPool.Put(pts)

	point0, ok := rt.Init(&ri)
	pts[0] = point0
	nsteps := 1
	if ok {
		is := 0
		for istep := 0; istep < r.env.Beam.MaxSteps-1; istep++ {
			is += rt.Update(&pts[is], &pts[is+1], &pts[is+2])
			if rt.Terminate(&pts[is], &nsteps, is) {
				break
			}
		}
	}

	out := make([]ray.Point, nsteps)
	copy(out, pts[:nsteps])
	r.Rays[r.jobIndex(job)] = out
	return nil
}

// Trace one ray and feed its segments to the influence or arrival
// accumulator. The trajectory itself is not kept: a rolling window of
// three points supports the double step a reflection produces.
func (r *Runner) fieldModeKernel(job tracer.Job) error {
	rt := ray.New(r.env)
	ri := ray.InitInfo{ISz: job.ISz, IAlpha: job.IAlpha}

	point0, ok := rt.Init(&ri)
	if !ok {
		return nil
	}

	// Jobs with the same source share a pressure sub-array, so each job
	// accumulates into a private grid and folds it in at the end.
	var u []complex128
	if r.Pressure != nil {
		u = r.gridBuf()
		defer func() {
			r.Pressure.Merge(job.ISz, u)
			gridBufPool.Put(u)
		}()
	}
	inf := field.NewInfluence(r.env, &ri, &point0, u, r.Arrivals)

	var point1, point2 ray.Point
	is := 0
	nsteps := 0
	for istep := 0; istep < r.env.Beam.MaxSteps-1; istep++ {
		dstep := rt.Update(&point0, &point1, &point2)
		inf.Step(&point0, &point1)
		if dstep == 2 {
			inf.Step(&point1, &point2)
			point0 = point2
		} else {
			point0 = point1
		}
		is += dstep
		if rt.Terminate(&point0, &nsteps, is) {
			break
		}
	}
	return nil
}

// Flat result index for a job: ray-mode trajectories are stored per
// job in dispatch order.
func (r *Runner) jobIndex(job tracer.Job) int {
	if r.env.Angles.SingleAlpha >= 0 {
		return job.ISz
	}
	return job.ISz*r.env.Angles.Nalpha() + job.IAlpha
}
