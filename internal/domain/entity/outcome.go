package entity

// ViolationNode is one concrete DOM node implicated in a violation.
type ViolationNode struct {
	Target         []string `json:"target,omitempty"`
	HTML           string   `json:"html,omitempty"`
	FailureSummary string   `json:"failureSummary"`
}

// Violation is one rule failure reported by the auditor for a target.
// The payload comes from the external rule engine and is treated as
// read-only data; it is never re-validated here.
type Violation struct {
	Description string          `json:"description"`
	HelpURL     string          `json:"helpUrl"`
	Nodes       []ViolationNode `json:"nodes"`
}

// OutcomeStatus tags the variant of an AuditOutcome.
type OutcomeStatus string

const (
	// OutcomeClean means the auditor found no violations.
	OutcomeClean OutcomeStatus = "clean"
	// OutcomeViolations means the auditor reported one or more violations.
	OutcomeViolations OutcomeStatus = "violations"
	// OutcomeFailed means the task itself failed (navigation, injection,
	// or result retrieval); this is an engineering fault, not an audit result.
	OutcomeFailed OutcomeStatus = "failed"
)

// AuditOutcome is the result of auditing a single target. Exactly one is
// produced per enqueued target.
type AuditOutcome struct {
	Status     OutcomeStatus
	Violations []Violation
	Err        error
}

// CleanOutcome reports a target that passed every rule.
func CleanOutcome() AuditOutcome {
	return AuditOutcome{Status: OutcomeClean}
}

// ViolationsOutcome reports a target with rule failures, preserving the
// auditor's ordering.
func ViolationsOutcome(violations []Violation) AuditOutcome {
	return AuditOutcome{Status: OutcomeViolations, Violations: violations}
}

// FailedOutcome reports a target whose audit task faulted.
func FailedOutcome(cause error) AuditOutcome {
	return AuditOutcome{Status: OutcomeFailed, Err: cause}
}
