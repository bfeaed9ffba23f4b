package aggregator

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/catalogaudit/storybook-a11y-go/internal/domain/entity"
	"github.com/catalogaudit/storybook-a11y-go/internal/shared/types"
)

// recordingConsole captures console output for assertions.
type recordingConsole struct {
	mu    sync.Mutex
	lines []string
}

func (c *recordingConsole) record(format string, a ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = append(c.lines, fmt.Sprintf(format, a...))
}

func (c *recordingConsole) Print(a ...interface{})                  { c.record("%s", fmt.Sprint(a...)) }
func (c *recordingConsole) Printf(format string, a ...interface{})  { c.record(format, a...) }
func (c *recordingConsole) Println(a ...interface{})                { c.record("%s", fmt.Sprint(a...)) }
func (c *recordingConsole) LogInfo(format string, a ...interface{}) { c.record(format, a...) }
func (c *recordingConsole) LogWarning(format string, a ...interface{}) {
	c.record("WARN "+format, a...)
}
func (c *recordingConsole) LogError(format string, a ...interface{}) { c.record("ERROR "+format, a...) }
func (c *recordingConsole) LogSuccess(format string, a ...interface{}) {
	c.record("OK "+format, a...)
}
func (c *recordingConsole) Status(message string) types.StatusHandle { return noopStatus{} }
func (c *recordingConsole) ProgressWithTotal(total int) types.ProgressHandle {
	return noopProgress{}
}
func (c *recordingConsole) CreateTable() types.TableInterface { return nil }

func (c *recordingConsole) all() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return strings.Join(c.lines, "\n")
}

type noopStatus struct{}

func (noopStatus) Update(string) {}
func (noopStatus) Stop()         {}

type noopProgress struct{}

func (noopProgress) Increment() {}
func (noopProgress) Stop()      {}

func violation(desc string, nodeSummaries ...string) entity.Violation {
	v := entity.Violation{Description: desc, HelpURL: "https://help.example/" + desc}
	for _, s := range nodeSummaries {
		v.Nodes = append(v.Nodes, entity.ViolationNode{FailureSummary: s})
	}
	return v
}

func TestAggregatorTallyMath(t *testing.T) {
	console := &recordingConsole{}
	agg := New(console, zap.NewNop(), false, nil)

	agg.Report(entity.NewTarget("http://x", "Button", "Primary"), entity.CleanOutcome())
	agg.Report(entity.NewTarget("http://x", "Button", "Disabled"), entity.ViolationsOutcome([]entity.Violation{
		violation("color-contrast", "low contrast on label"),
		violation("button-name", "button has no accessible name"),
	}))
	agg.Report(entity.NewTarget("http://x", "Alert", "Error"), entity.FailedOutcome(fmt.Errorf("navigation timeout")))

	tally, rows := agg.Finalize()
	assert.Equal(t, 3, tally.TotalTargets)
	assert.Equal(t, 1, tally.CleanTargets)
	assert.Equal(t, 1, tally.FailedTargets)
	assert.Equal(t, 2, tally.ViolationCount)
	require.Len(t, tally.Records, 2)
	assert.Equal(t, "Button/Disabled", tally.Records[0].Target.Name())
	require.Len(t, rows, 3)
}

func TestAggregatorPrintsPerTargetLines(t *testing.T) {
	console := &recordingConsole{}
	agg := New(console, zap.NewNop(), false, nil)

	agg.Report(entity.NewTarget("http://x", "Button", "Primary"), entity.CleanOutcome())
	agg.Report(entity.NewTarget("http://x", "Button", "Disabled"), entity.ViolationsOutcome([]entity.Violation{
		violation("color-contrast", "first node summary", "second node summary"),
	}))

	out := console.all()
	assert.Contains(t, out, "Button/Primary passed")
	assert.Contains(t, out, "color-contrast")
	assert.Contains(t, out, "https://help.example/color-contrast")
	assert.Contains(t, out, "first node summary")
	// Default mode surfaces only the first implicated node per violation.
	assert.NotContains(t, out, "second node summary")
}

func TestAggregatorAllNodesMode(t *testing.T) {
	console := &recordingConsole{}
	agg := New(console, zap.NewNop(), true, nil)

	agg.Report(entity.NewTarget("http://x", "Button", "Disabled"), entity.ViolationsOutcome([]entity.Violation{
		violation("color-contrast", "first node summary", "second node summary"),
	}))

	out := console.all()
	assert.Contains(t, out, "first node summary")
	assert.Contains(t, out, "second node summary")

	tally, _ := agg.Finalize()
	// Print mode never changes the count.
	assert.Equal(t, 1, tally.ViolationCount)
}

func TestAggregatorDropsDuplicateReports(t *testing.T) {
	console := &recordingConsole{}
	agg := New(console, zap.NewNop(), false, nil)

	target := entity.NewTarget("http://x", "Button", "Primary")
	agg.Report(target, entity.CleanOutcome())
	agg.Report(target, entity.ViolationsOutcome([]entity.Violation{violation("late", "n")}))

	tally, _ := agg.Finalize()
	assert.Equal(t, 1, tally.TotalTargets)
	assert.Zero(t, tally.ViolationCount)
}

func TestAggregatorRejectsReportsAfterFinalize(t *testing.T) {
	console := &recordingConsole{}
	agg := New(console, zap.NewNop(), false, nil)

	agg.Report(entity.NewTarget("http://x", "Button", "Primary"), entity.CleanOutcome())
	tally, _ := agg.Finalize()
	require.Equal(t, 1, tally.TotalTargets)

	agg.Report(entity.NewTarget("http://x", "Button", "Disabled"), entity.CleanOutcome())
	after, _ := agg.Finalize()
	assert.Equal(t, 1, after.TotalTargets)
}

// countingProgress increments a plain int on purpose: the race detector
// flags it if the aggregator ever drives the handle outside its mutex.
type countingProgress struct {
	increments int
	stops      int
}

func (p *countingProgress) Increment() { p.increments++ }
func (p *countingProgress) Stop()      { p.stops++ }

func TestAggregatorAdvancesProgressUnderLock(t *testing.T) {
	console := &recordingConsole{}
	progress := &countingProgress{}
	agg := New(console, zap.NewNop(), false, progress)

	const workers = 16
	const perWorker = 25

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				target := entity.NewTarget("http://x", fmt.Sprintf("Kind%d", w), fmt.Sprintf("Story%d", i))
				agg.Report(target, entity.CleanOutcome())
			}
		}(w)
	}
	wg.Wait()

	assert.Equal(t, workers*perWorker, progress.increments)
}

func TestAggregatorDoesNotAdvanceProgressForDuplicates(t *testing.T) {
	console := &recordingConsole{}
	progress := &countingProgress{}
	agg := New(console, zap.NewNop(), false, progress)

	target := entity.NewTarget("http://x", "Button", "Primary")
	agg.Report(target, entity.CleanOutcome())
	agg.Report(target, entity.CleanOutcome())

	assert.Equal(t, 1, progress.increments)
}

func TestAggregatorDistinguishesTargetsWithSlashes(t *testing.T) {
	console := &recordingConsole{}
	agg := New(console, zap.NewNop(), false, nil)

	// Both targets render as "Forms/Input/Fields" but are distinct stories.
	agg.Report(entity.NewTarget("http://x", "Forms/Input", "Fields"), entity.CleanOutcome())
	agg.Report(entity.NewTarget("http://x", "Forms", "Input/Fields"), entity.CleanOutcome())

	tally, rows := agg.Finalize()
	assert.Equal(t, 2, tally.TotalTargets)
	assert.Equal(t, 2, tally.CleanTargets)
	assert.Len(t, rows, 2)
}

func TestAggregatorSerializesConcurrentReports(t *testing.T) {
	console := &recordingConsole{}
	agg := New(console, zap.NewNop(), false, nil)

	const workers = 16
	const perWorker = 25

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				target := entity.NewTarget("http://x", fmt.Sprintf("Kind%d", w), fmt.Sprintf("Story%d", i))
				agg.Report(target, entity.ViolationsOutcome([]entity.Violation{
					violation("rule", "node"),
				}))
			}
		}(w)
	}
	wg.Wait()

	tally, rows := agg.Finalize()
	// Lost updates would show up as a short count here.
	assert.Equal(t, workers*perWorker, tally.TotalTargets)
	assert.Equal(t, workers*perWorker, tally.ViolationCount)
	assert.Len(t, rows, workers*perWorker)
}
