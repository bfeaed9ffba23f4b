package entity

// ViolationRecord ties a reported violation back to its target for the
// finalized report.
type ViolationRecord struct {
	Target    Target    `json:"target"`
	Violation Violation `json:"violation"`
}

// RunTally is the run-level accumulator. It is mutated exclusively by the
// aggregator while the pool drains and is read-only once finalized.
type RunTally struct {
	TotalTargets   int               `json:"total_targets"`
	CleanTargets   int               `json:"clean_targets"`
	FailedTargets  int               `json:"failed_targets"`
	ViolationCount int               `json:"violation_count"`
	Records        []ViolationRecord `json:"records,omitempty"`
}

// Passed reports whether the run should be considered successful. In strict
// mode a hard per-target failure fails the run even without violations;
// otherwise only accumulated violations do.
func (t *RunTally) Passed(strict bool) bool {
	if t.ViolationCount > 0 {
		return false
	}
	if strict && t.FailedTargets > 0 {
		return false
	}
	return true
}

// ReportRow is one exported line of the finalized report.
type ReportRow struct {
	Kind           string `json:"kind"`
	Story          string `json:"story"`
	URL            string `json:"url"`
	Status         string `json:"status"`
	ViolationCount int    `json:"violation_count"`
	Details        string `json:"details,omitempty"`
}

// AuditReport is the exportable form of a finalized run.
type AuditReport struct {
	RunID          string      `json:"run_id"`
	GeneratedAt    string      `json:"generated_at"`
	Endpoint       string      `json:"endpoint"`
	TotalTargets   int         `json:"total_targets"`
	ViolationCount int         `json:"violation_count"`
	FailedTargets  int         `json:"failed_targets"`
	Rows           []ReportRow `json:"rows"`
}
