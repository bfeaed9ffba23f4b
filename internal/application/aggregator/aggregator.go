package aggregator

import (
	"sync"

	"go.uber.org/zap"

	"github.com/catalogaudit/storybook-a11y-go/internal/domain/entity"
	"github.com/catalogaudit/storybook-a11y-go/internal/shared/types"
)

// Aggregator folds per-target outcomes into the run tally. It is the single
// writer of the tally: concurrent task completions funnel through one mutex,
// so tally updates never interleave. The progress handle is driven from
// inside the same mutex because the underlying bar is not safe for
// concurrent use. Each target is counted at most once.
type Aggregator struct {
	console  types.ConsoleInterface
	logger   *zap.Logger
	allNodes bool
	progress types.ProgressHandle

	mu        sync.Mutex
	tally     entity.RunTally
	rows      []entity.ReportRow
	seen      map[targetKey]bool
	finalized bool
}

// targetKey identifies a target without collapsing kind and story into one
// string; kinds may themselves contain the display separator.
type targetKey struct {
	kind  string
	story string
}

// New creates an empty aggregator. When allNodes is set, every implicated
// node of a violation is printed instead of only the first. progress may be
// nil; when set it advances once per accepted outcome.
func New(console types.ConsoleInterface, logger *zap.Logger, allNodes bool, progress types.ProgressHandle) *Aggregator {
	return &Aggregator{
		console:  console,
		logger:   logger,
		allNodes: allNodes,
		progress: progress,
		seen:     map[targetKey]bool{},
	}
}

// Report records one target's outcome and prints its per-target status line.
// Duplicate reports for the same target are logged and dropped; reports after
// Finalize are rejected the same way.
func (a *Aggregator) Report(target entity.Target, outcome entity.AuditOutcome) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.finalized {
		a.logger.Warn("outcome reported after tally was finalized",
			zap.String("target", target.Name()))
		return
	}
	key := targetKey{kind: target.Kind, story: target.Story}
	if a.seen[key] {
		a.logger.Warn("duplicate outcome dropped", zap.String("target", target.Name()))
		return
	}
	a.seen[key] = true
	a.tally.TotalTargets++
	if a.progress != nil {
		a.progress.Increment()
	}

	switch outcome.Status {
	case entity.OutcomeClean:
		a.tally.CleanTargets++
		a.rows = append(a.rows, entity.ReportRow{
			Kind: target.Kind, Story: target.Story, URL: target.URL,
			Status: string(entity.OutcomeClean),
		})
		a.console.LogSuccess("%s passed", target.Name())

	case entity.OutcomeViolations:
		a.tally.ViolationCount += len(outcome.Violations)
		details := ""
		for _, v := range outcome.Violations {
			a.tally.Records = append(a.tally.Records, entity.ViolationRecord{
				Target:    target,
				Violation: v,
			})
			if details != "" {
				details += "; "
			}
			details += v.Description
			a.printViolation(target, v)
		}
		a.rows = append(a.rows, entity.ReportRow{
			Kind: target.Kind, Story: target.Story, URL: target.URL,
			Status:         string(entity.OutcomeViolations),
			ViolationCount: len(outcome.Violations),
			Details:        details,
		})

	case entity.OutcomeFailed:
		a.tally.FailedTargets++
		a.rows = append(a.rows, entity.ReportRow{
			Kind: target.Kind, Story: target.Story, URL: target.URL,
			Status:  string(entity.OutcomeFailed),
			Details: outcome.Err.Error(),
		})
		a.console.LogError("%s could not be audited: %v", target.Name(), outcome.Err)
		a.logger.Error("audit task failed",
			zap.String("target", target.Name()), zap.Error(outcome.Err))
	}
}

// printViolation emits the human-readable detail lines for one violation.
// All violations are counted either way; this only controls what is printed.
func (a *Aggregator) printViolation(target entity.Target, v entity.Violation) {
	a.console.LogError("%s: %s", target.Name(), v.Description)
	if v.HelpURL != "" {
		a.console.Println("  Help: " + v.HelpURL)
	}
	if len(v.Nodes) == 0 {
		return
	}
	nodes := v.Nodes[:1]
	if a.allNodes {
		nodes = v.Nodes
	}
	for _, n := range nodes {
		a.console.Println("  " + n.FailureSummary)
	}
}

// Finalize freezes the tally and returns it together with the exportable
// report rows. Further reports are dropped.
func (a *Aggregator) Finalize() (*entity.RunTally, []entity.ReportRow) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.finalized = true
	tally := a.tally
	rows := make([]entity.ReportRow, len(a.rows))
	copy(rows, a.rows)
	return &tally, rows
}
