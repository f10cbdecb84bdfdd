package meshing

import (
	"context"
	"errors"
	"slices"
	"sync"

	"mini-terrain/internal/world"
)

// ErrPoolClosed is returned when jobs are submitted after Shutdown.
var ErrPoolClosed = errors.New("mesh worker pool closed")

// MeshJob represents a chunk meshing request
type MeshJob struct {
	Coord world.ChunkCoord
	// Result channel - will be sent the result when done
	ResultChan chan MeshResult
}

// MeshResult contains the result of a meshing operation
type MeshResult struct {
	Coord world.ChunkCoord
	Mesh  *MeshBuffer
	Error error
}

// WorkerPool manages goroutines for chunk generation
type WorkerPool struct {
	mesher   Mesher
	jobQueue chan MeshJob
	workers  int
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// NewWorkerPool creates a new mesh worker pool
func NewWorkerPool(mesher Mesher, workers int, queueSize int) *WorkerPool {
	ctx, cancel := context.WithCancel(context.Background())
	workers = max(workers, 1)

	pool := &WorkerPool{
		mesher:   mesher,
		jobQueue: make(chan MeshJob, queueSize),
		workers:  workers,
		ctx:      ctx,
		cancel:   cancel,
	}

	for i := 0; i < workers; i++ {
		pool.wg.Add(1)
		go pool.worker(i)
	}

	return pool
}

// Workers returns the number of worker goroutines.
func (p *WorkerPool) Workers() int {
	return p.workers
}

// SubmitJob submits a job to the pool.
// Returns true if job was submitted successfully, false if queue is full
func (p *WorkerPool) SubmitJob(job MeshJob) bool {
	if p.ctx.Err() != nil {
		return false
	}
	select {
	case p.jobQueue <- job:
		return true
	default:
		return false
	}
}

// SubmitJobBlocking submits a job and blocks until it's queued.
// Returns false if the pool shut down first.
func (p *WorkerPool) SubmitJobBlocking(job MeshJob) bool {
	if p.ctx.Err() != nil {
		return false
	}
	select {
	case p.jobQueue <- job:
		return true
	case <-p.ctx.Done():
		return false
	}
}

// worker is the worker goroutine that processes mesh jobs
func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	for {
		select {
		case job := <-p.jobQueue:
			result := p.run(job.Coord)
			select {
			case job.ResultChan <- result:
			case <-p.ctx.Done():
				return
			}

		case <-p.ctx.Done():
			return
		}
	}
}

// run meshes one chunk. A panic is reported on the result instead of
// killing the worker.
func (p *WorkerPool) run(c world.ChunkCoord) MeshResult {
	return SafeMesh(p.mesher, c)
}

// MeshAll meshes every coordinate in parallel and returns the results in
// lexicographic coordinate order, independent of completion order.
func (p *WorkerPool) MeshAll(coords []world.ChunkCoord) ([]MeshResult, error) {
	results := make(chan MeshResult, len(coords))
	for _, c := range coords {
		if !p.SubmitJobBlocking(MeshJob{Coord: c, ResultChan: results}) {
			return nil, ErrPoolClosed
		}
	}
	out := make([]MeshResult, 0, len(coords))
	for range coords {
		select {
		case r := <-results:
			out = append(out, r)
		case <-p.ctx.Done():
			return nil, ErrPoolClosed
		}
	}
	slices.SortFunc(out, func(a, b MeshResult) int {
		return world.CompareCoords(a.Coord, b.Coord)
	})
	return out, nil
}

// Shutdown stops the workers and waits for them to exit.
func (p *WorkerPool) Shutdown() {
	p.cancel()
	p.wg.Wait()
}

// GetQueueLength returns the current number of jobs in the queue
func (p *WorkerPool) GetQueueLength() int {
	return len(p.jobQueue)
}
