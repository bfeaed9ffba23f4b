package pool

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/catalogaudit/storybook-a11y-go/internal/domain/entity"
	"github.com/catalogaudit/storybook-a11y-go/internal/domain/repository"
)

// Task is the unit of work applied to every enqueued target inside a pooled
// browser context. It must have no side effects other than driving its
// context; reporting is the pool's job.
type Task func(ctx context.Context, bc repository.BrowserContext, target entity.Target) entity.AuditOutcome

// ReportFunc receives exactly one outcome per enqueued target.
type ReportFunc func(target entity.Target, outcome entity.AuditOutcome)

// Pool runs the task over enqueued targets with bounded concurrency. Each
// worker goroutine is pinned to exactly one browser context for its whole
// lifetime, so at most len(contexts) tasks ever hold a context at once and
// no context is shared between in-flight tasks.
type Pool struct {
	ctx      context.Context
	task     Task
	report   ReportFunc
	contexts []repository.BrowserContext
	logger   *zap.Logger

	mu     sync.Mutex
	cond   *sync.Cond
	queue  []entity.Target
	closed bool

	pending sync.WaitGroup
	workers sync.WaitGroup

	shutdownOnce sync.Once
}

// New creates a pool over the given context arena and starts its workers.
// The pool takes ownership of the contexts; Shutdown closes them.
func New(ctx context.Context, contexts []repository.BrowserContext, task Task, report ReportFunc, logger *zap.Logger) *Pool {
	p := &Pool{
		ctx:      ctx,
		task:     task,
		report:   report,
		contexts: contexts,
		logger:   logger,
	}
	p.cond = sync.NewCond(&p.mu)

	for i, bc := range contexts {
		p.workers.Add(1)
		go p.worker(i, bc)
	}

	return p
}

// Size returns the maximum number of concurrently executing tasks.
func (p *Pool) Size() int {
	return len(p.contexts)
}

// Enqueue accepts a target for later execution. It never blocks; excess
// targets wait in FIFO order for a free context. Enqueue after Shutdown is
// rejected so the drain accounting stays exact.
func (p *Pool) Enqueue(target entity.Target) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return fmt.Errorf("pool is shut down, rejecting target %s", target.Name())
	}

	p.pending.Add(1)
	p.queue = append(p.queue, target)
	p.cond.Signal()
	return nil
}

// Drain suspends the caller until every enqueued target has completed and
// reported its outcome. After Drain returns the pool holds no outstanding
// work.
func (p *Pool) Drain() {
	p.pending.Wait()
}

// Shutdown stops the workers and closes every pooled context. It is safe to
// call more than once and runs regardless of individual task outcomes.
func (p *Pool) Shutdown() {
	p.shutdownOnce.Do(func() {
		p.mu.Lock()
		p.closed = true
		p.cond.Broadcast()
		p.mu.Unlock()

		p.workers.Wait()

		for i, bc := range p.contexts {
			if err := bc.Close(); err != nil {
				p.logger.Warn("failed to close pooled browser context",
					zap.Int("context", i), zap.Error(err))
			}
		}
	})
}

// next pops the oldest queued target, blocking until one is available or the
// pool is shut down.
func (p *Pool) next() (entity.Target, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for len(p.queue) == 0 && !p.closed {
		p.cond.Wait()
	}
	if len(p.queue) == 0 {
		return entity.Target{}, false
	}

	target := p.queue[0]
	p.queue = p.queue[1:]
	return target, true
}

func (p *Pool) worker(id int, bc repository.BrowserContext) {
	defer p.workers.Done()

	for {
		target, ok := p.next()
		if !ok {
			return
		}

		p.process(bc, target)
	}
}

// process runs one target end to end. The pending counter is decremented
// unconditionally so Drain terminates even when the report callback panics.
func (p *Pool) process(bc repository.BrowserContext, target entity.Target) {
	defer p.pending.Done()
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("report callback panicked",
				zap.String("target", target.Name()), zap.Any("panic", r))
		}
	}()

	p.report(target, p.runTask(bc, target))
}

// runTask executes the task, converting an unhandled panic into a failed
// outcome for this target only. The pool and its other workers keep running.
func (p *Pool) runTask(bc repository.BrowserContext, target entity.Target) (outcome entity.AuditOutcome) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("audit task panicked",
				zap.String("target", target.Name()), zap.Any("panic", r))
			outcome = entity.FailedOutcome(fmt.Errorf("audit task panicked: %v", r))
		}
	}()

	return p.task(p.ctx, bc, target)
}
