package pool

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/catalogaudit/storybook-a11y-go/internal/domain/entity"
	"github.com/catalogaudit/storybook-a11y-go/internal/domain/repository"
)

// fakeContext satisfies repository.BrowserContext for pool tests; the task
// under test never drives it, so the page methods are inert.
type fakeContext struct {
	closed atomic.Bool
}

func (f *fakeContext) Navigate(ctx context.Context, url string) error { return nil }
func (f *fakeContext) InjectAuditor(ctx context.Context) error        { return nil }
func (f *fakeContext) CollectViolations(ctx context.Context) ([]entity.Violation, error) {
	return nil, nil
}
func (f *fakeContext) Close() error {
	f.closed.Store(true)
	return nil
}

func newArena(n int) ([]repository.BrowserContext, []*fakeContext) {
	contexts := make([]repository.BrowserContext, n)
	fakes := make([]*fakeContext, n)
	for i := range contexts {
		fakes[i] = &fakeContext{}
		contexts[i] = fakes[i]
	}
	return contexts, fakes
}

type outcomeRecorder struct {
	mu       sync.Mutex
	outcomes map[string][]entity.AuditOutcome
}

func newOutcomeRecorder() *outcomeRecorder {
	return &outcomeRecorder{outcomes: map[string][]entity.AuditOutcome{}}
}

func (r *outcomeRecorder) report(target entity.Target, outcome entity.AuditOutcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes[target.Name()] = append(r.outcomes[target.Name()], outcome)
}

func (r *outcomeRecorder) total() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, list := range r.outcomes {
		n += len(list)
	}
	return n
}

func TestPoolReportsEveryTargetExactlyOnce(t *testing.T) {
	contexts, _ := newArena(4)
	recorder := newOutcomeRecorder()

	task := func(ctx context.Context, bc repository.BrowserContext, target entity.Target) entity.AuditOutcome {
		return entity.CleanOutcome()
	}

	p := New(context.Background(), contexts, task, recorder.report, zap.NewNop())
	const targetCount = 40
	for i := 0; i < targetCount; i++ {
		require.NoError(t, p.Enqueue(entity.NewTarget("http://x", "Kind", fmt.Sprintf("Story%d", i))))
	}
	p.Drain()
	p.Shutdown()

	assert.Equal(t, targetCount, recorder.total())
	for name, list := range recorder.outcomes {
		assert.Len(t, list, 1, "target %s reported more than once", name)
	}
}

func TestPoolNeverExceedsConcurrencyBound(t *testing.T) {
	const bound = 3
	contexts, _ := newArena(bound)
	recorder := newOutcomeRecorder()

	var inflight, maxInflight int64
	task := func(ctx context.Context, bc repository.BrowserContext, target entity.Target) entity.AuditOutcome {
		cur := atomic.AddInt64(&inflight, 1)
		for {
			prev := atomic.LoadInt64(&maxInflight)
			if cur <= prev || atomic.CompareAndSwapInt64(&maxInflight, prev, cur) {
				break
			}
		}
		time.Sleep(2 * time.Millisecond)
		atomic.AddInt64(&inflight, -1)
		return entity.CleanOutcome()
	}

	p := New(context.Background(), contexts, task, recorder.report, zap.NewNop())
	for i := 0; i < 30; i++ {
		require.NoError(t, p.Enqueue(entity.NewTarget("http://x", "Kind", fmt.Sprintf("Story%d", i))))
	}
	p.Drain()
	p.Shutdown()

	assert.Equal(t, 30, recorder.total())
	assert.LessOrEqual(t, atomic.LoadInt64(&maxInflight), int64(bound))
}

func TestPoolConvertsPanicToFailedOutcome(t *testing.T) {
	contexts, _ := newArena(2)
	recorder := newOutcomeRecorder()

	task := func(ctx context.Context, bc repository.BrowserContext, target entity.Target) entity.AuditOutcome {
		if target.Story == "Broken" {
			panic("renderer exploded")
		}
		return entity.CleanOutcome()
	}

	p := New(context.Background(), contexts, task, recorder.report, zap.NewNop())
	require.NoError(t, p.Enqueue(entity.NewTarget("http://x", "Kind", "Broken")))
	require.NoError(t, p.Enqueue(entity.NewTarget("http://x", "Kind", "Fine")))
	p.Drain()
	p.Shutdown()

	require.Len(t, recorder.outcomes["Kind/Broken"], 1)
	broken := recorder.outcomes["Kind/Broken"][0]
	assert.Equal(t, entity.OutcomeFailed, broken.Status)
	assert.ErrorContains(t, broken.Err, "renderer exploded")

	// The panicking target must not prevent the other one from completing.
	require.Len(t, recorder.outcomes["Kind/Fine"], 1)
	assert.Equal(t, entity.OutcomeClean, recorder.outcomes["Kind/Fine"][0].Status)
}

func TestPoolDrainCompletesWhenReportPanics(t *testing.T) {
	contexts, fakes := newArena(2)
	recorder := newOutcomeRecorder()

	task := func(ctx context.Context, bc repository.BrowserContext, target entity.Target) entity.AuditOutcome {
		return entity.CleanOutcome()
	}
	report := func(target entity.Target, outcome entity.AuditOutcome) {
		recorder.report(target, outcome)
		if target.Story == "Poison" {
			panic("report callback exploded")
		}
	}

	p := New(context.Background(), contexts, task, report, zap.NewNop())
	require.NoError(t, p.Enqueue(entity.NewTarget("http://x", "Kind", "Poison")))
	require.NoError(t, p.Enqueue(entity.NewTarget("http://x", "Kind", "Fine")))

	done := make(chan struct{})
	go func() {
		p.Drain()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Drain did not return after a panicking report callback")
	}

	p.Shutdown()

	require.Len(t, recorder.outcomes["Kind/Poison"], 1)
	require.Len(t, recorder.outcomes["Kind/Fine"], 1)
	for i, f := range fakes {
		assert.True(t, f.closed.Load(), "context %d not closed", i)
	}
}

func TestPoolShutdownClosesEveryContext(t *testing.T) {
	contexts, fakes := newArena(5)
	recorder := newOutcomeRecorder()

	task := func(ctx context.Context, bc repository.BrowserContext, target entity.Target) entity.AuditOutcome {
		return entity.FailedOutcome(fmt.Errorf("always failing"))
	}

	p := New(context.Background(), contexts, task, recorder.report, zap.NewNop())
	for i := 0; i < 10; i++ {
		require.NoError(t, p.Enqueue(entity.NewTarget("http://x", "Kind", fmt.Sprintf("Story%d", i))))
	}
	p.Drain()
	p.Shutdown()
	p.Shutdown() // idempotent

	for i, f := range fakes {
		assert.True(t, f.closed.Load(), "context %d not closed", i)
	}
}

func TestPoolRejectsEnqueueAfterShutdown(t *testing.T) {
	contexts, _ := newArena(1)
	recorder := newOutcomeRecorder()

	task := func(ctx context.Context, bc repository.BrowserContext, target entity.Target) entity.AuditOutcome {
		return entity.CleanOutcome()
	}

	p := New(context.Background(), contexts, task, recorder.report, zap.NewNop())
	p.Shutdown()

	err := p.Enqueue(entity.NewTarget("http://x", "Kind", "Late"))
	assert.Error(t, err)
	assert.Zero(t, recorder.total())
}

func TestPoolDrainWithNothingEnqueued(t *testing.T) {
	contexts, _ := newArena(2)
	recorder := newOutcomeRecorder()

	task := func(ctx context.Context, bc repository.BrowserContext, target entity.Target) entity.AuditOutcome {
		return entity.CleanOutcome()
	}

	p := New(context.Background(), contexts, task, recorder.report, zap.NewNop())
	p.Drain()
	p.Shutdown()

	assert.Zero(t, recorder.total())
	assert.Equal(t, 2, p.Size())
}
