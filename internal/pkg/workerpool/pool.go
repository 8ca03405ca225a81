package workerpool

import (
	"context"
	"sync"
	"time"
)

// Task processes one unit of work and reports a value for the caller to tally.
type Task[T any] func(ctx context.Context) (T, error)

type Result[T any] struct {
	Value T
	Err   error
}

// Pool runs submitted tasks on a fixed number of goroutines. Submit all tasks,
// Close, then drain the channel returned by Run.
type Pool[T any] struct {
	workers int
	tasks   chan Task[T]
	wg      sync.WaitGroup
	mu      sync.RWMutex
	rate    <-chan time.Time
	ticker  *time.Ticker
}

func New[T any](workers, buffer int) *Pool[T] {
	if workers <= 0 {
		workers = 1
	}
	if buffer < 0 {
		buffer = 0
	}
	return &Pool[T]{
		workers: workers,
		tasks:   make(chan Task[T], buffer),
	}
}

// SetRateLimit caps task starts per second across all workers. Zero disables it.
func (p *Pool[T]) SetRateLimit(rps int) {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopTickerLocked()
	if rps <= 0 {
		return
	}
	p.ticker = time.NewTicker(time.Second / time.Duration(rps))
	p.rate = p.ticker.C
}

func (p *Pool[T]) stopTickerLocked() {
	if p.ticker != nil {
		p.ticker.Stop()
		p.ticker = nil
		p.rate = nil
	}
}

func (p *Pool[T]) Submit(t Task[T]) {
	if p == nil || t == nil {
		return
	}
	p.tasks <- t
}

func (p *Pool[T]) Close() {
	if p == nil {
		return
	}
	close(p.tasks)
}

func (p *Pool[T]) Run(ctx context.Context) <-chan Result[T] {
	if p == nil {
		out := make(chan Result[T])
		close(out)
		return out
	}
	out := make(chan Result[T], cap(p.tasks)+p.workers)

	p.wg.Add(p.workers)
	for i := 0; i < p.workers; i++ {
		go p.work(ctx, out)
	}

	go func() {
		p.wg.Wait()
		p.mu.Lock()
		p.stopTickerLocked()
		p.mu.Unlock()
		close(out)
	}()

	return out
}

func (p *Pool[T]) work(ctx context.Context, out chan<- Result[T]) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case t, ok := <-p.tasks:
			if !ok {
				return
			}
			p.mu.RLock()
			rate := p.rate
			p.mu.RUnlock()
			if rate != nil {
				select {
				case <-ctx.Done():
					return
				case <-rate:
				}
			}
			v, err := t(ctx)
			select {
			case <-ctx.Done():
				return
			case out <- Result[T]{Value: v, Err: err}:
			}
		}
	}
}

type Options struct {
	Workers       int
	RatePerSecond int
}

// Process runs every task and returns the results in completion order. Tasks
// not started before ctx is cancelled are dropped.
func Process[T any](ctx context.Context, opts Options, tasks []Task[T]) []Result[T] {
	p := New[T](opts.Workers, len(tasks))
	p.SetRateLimit(opts.RatePerSecond)
	results := p.Run(ctx)
	for _, t := range tasks {
		p.Submit(t)
	}
	p.Close()

	out := make([]Result[T], 0, len(tasks))
	for r := range results {
		out = append(out, r)
	}
	return out
}
