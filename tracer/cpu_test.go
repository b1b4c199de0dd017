package tracer

import (
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/RookieLinux/bellhopcuda/env"
)

func testJobSpace(t *testing.T, nSz, nAlpha int) (*env.Position, *env.Angles) {
	t.Helper()

	sz := make([]float64, nSz)
	for i := range sz {
		sz[i] = 100.0 * float64(i+1)
	}
	pos, err := env.NewPosition(sz, []float64{50}, []float64{1000})
	if err != nil {
		t.Fatal(err)
	}
	ang, err := env.NewAngleFan(-10, 10, nAlpha)
	if err != nil {
		t.Fatal(err)
	}
	return pos, ang
}

func TestDecodeJob(t *testing.T) {
	pos, ang := testJobSpace(t, 3, 5)

	if n := NumJobs(pos, ang); n != 15 {
		t.Fatalf("expected 15 jobs; got %d", n)
	}

	j, ok := DecodeJob(7, pos, ang)
	if !ok || j.ISz != 1 || j.IAlpha != 2 {
		t.Fatalf("expected job 7 to decode to (1, 2); got %+v ok=%t", j, ok)
	}
	if _, ok = DecodeJob(15, pos, ang); ok {
		t.Fatal("expected job 15 to be out of range")
	}

	// a single fixed launch angle collapses the job space to the sources
	ang.SingleAlpha = 3
	if n := NumJobs(pos, ang); n != 3 {
		t.Fatalf("expected 3 jobs with a single launch angle; got %d", n)
	}
	j, ok = DecodeJob(2, pos, ang)
	if !ok || j.ISz != 2 || j.IAlpha != 3 {
		t.Fatalf("expected job 2 to decode to (2, 3); got %+v ok=%t", j, ok)
	}
}

func TestCPUTracerDispatchesEachJobOnce(t *testing.T) {
	pos, ang := testJobSpace(t, 3, 5)
	numJobs := NumJobs(pos, ang)

	hits := make([]int32, numJobs)
	kernel := func(j Job) error {
		atomic.AddInt32(&hits[j.ISz*ang.Nalpha()+j.IAlpha], 1)
		return nil
	}

	tr := NewCPUTracer(4, pos, ang, kernel)
	defer tr.Close()

	doneChan := make(chan int32, 1)
	errChan := make(chan error, 1)
	tr.Enqueue(BlockRequest{
		FirstJob: 0,
		NumJobs:  numJobs,
		DoneChan: doneChan,
		ErrChan:  errChan,
	})

	select {
	case err := <-errChan:
		t.Fatal(err)
	case completed := <-doneChan:
		if completed != numJobs {
			t.Fatalf("expected %d completed jobs; got %d", numJobs, completed)
		}
	}

	for job, count := range hits {
		if count != 1 {
			t.Fatalf("expected job %d to run exactly once; ran %d times", job, count)
		}
	}
	if tr.Stats().NumJobs != numJobs {
		t.Fatalf("expected the tracer stats to report %d jobs; got %d", numJobs, tr.Stats().NumJobs)
	}
}

func TestCPUTracerBlockOffsets(t *testing.T) {
	pos, ang := testJobSpace(t, 3, 5)

	hits := make([]int32, NumJobs(pos, ang))
	kernel := func(j Job) error {
		atomic.AddInt32(&hits[j.ISz*ang.Nalpha()+j.IAlpha], 1)
		return nil
	}

	tr := NewCPUTracer(2, pos, ang, kernel)
	defer tr.Close()

	// only the middle third of the job space belongs to this block
	doneChan := make(chan int32, 1)
	errChan := make(chan error, 1)
	tr.Enqueue(BlockRequest{
		FirstJob: 5,
		NumJobs:  5,
		DoneChan: doneChan,
		ErrChan:  errChan,
	})

	select {
	case err := <-errChan:
		t.Fatal(err)
	case <-doneChan:
	}

	for job, count := range hits {
		exp := int32(0)
		if job >= 5 && job < 10 {
			exp = 1
		}
		if count != exp {
			t.Fatalf("expected job %d to run %d times; ran %d times", job, exp, count)
		}
	}
}

func TestCPUTracerAggregatesErrors(t *testing.T) {
	pos, ang := testJobSpace(t, 3, 5)

	kernel := func(j Job) error {
		if j.ISz == 1 && j.IAlpha == 2 {
			return errors.New("kaboom at (1, 2)")
		}
		return nil
	}

	tr := NewCPUTracer(2, pos, ang, kernel)
	defer tr.Close()

	doneChan := make(chan int32, 1)
	errChan := make(chan error, 1)
	tr.Enqueue(BlockRequest{
		FirstJob: 0,
		NumJobs:  NumJobs(pos, ang),
		DoneChan: doneChan,
		ErrChan:  errChan,
	})

	select {
	case err := <-errChan:
		if !strings.Contains(err.Error(), "kaboom at (1, 2)") {
			t.Fatalf("expected the kernel failure surfaced; got %v", err)
		}
	case <-doneChan:
		t.Fatal("expected the block to fail")
	}
}

func TestCPUTracerRecoversWorkerPanic(t *testing.T) {
	pos, ang := testJobSpace(t, 3, 5)

	kernel := func(j Job) error {
		if j.ISz == 0 && j.IAlpha == 0 {
			panic("worker exploded")
		}
		return nil
	}

	tr := NewCPUTracer(2, pos, ang, kernel)
	defer tr.Close()

	doneChan := make(chan int32, 1)
	errChan := make(chan error, 1)
	tr.Enqueue(BlockRequest{
		FirstJob: 0,
		NumJobs:  NumJobs(pos, ang),
		DoneChan: doneChan,
		ErrChan:  errChan,
	})

	select {
	case err := <-errChan:
		if !strings.Contains(err.Error(), "worker exploded") {
			t.Fatalf("expected the panic folded into the block error; got %v", err)
		}
	case <-doneChan:
		t.Fatal("expected the block to fail")
	}
}
