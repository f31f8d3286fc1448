package cache

import (
	"context"
	"sync"
)

// RebuildPool runs cache rebuild tasks on a fixed set of workers fed by a
// bounded queue. The bound is the point: unbounded rebuild concurrency is the
// stampede this layer exists to prevent.
type RebuildPool struct {
	tasks    chan func(context.Context)
	workers  int
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	stopOnce sync.Once
}

func NewRebuildPool(workers, backlog int) *RebuildPool {
	if workers <= 0 {
		workers = 1
	}
	if backlog <= 0 {
		backlog = workers
	}
	return &RebuildPool{
		tasks:   make(chan func(context.Context), backlog),
		workers: workers,
	}
}

func (p *RebuildPool) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case task := <-p.tasks:
					task(ctx)
				}
			}
		}()
	}
}

func (p *RebuildPool) Stop() {
	p.stopOnce.Do(func() {
		if p.cancel != nil {
			p.cancel()
		}
		p.wg.Wait()
	})
}

// Submit enqueues a task without blocking. false means the backlog is full
// and the task was rejected; the caller decides what cleanup that requires.
func (p *RebuildPool) Submit(task func(context.Context)) bool {
	select {
	case p.tasks <- task:
		return true
	default:
		return false
	}
}
