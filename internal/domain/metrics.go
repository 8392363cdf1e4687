// Package domain contains the core data structures for the metrics pipeline.
package domain

import "time"

// Conclusion is the terminal state of a workflow run. Anything the provider
// reports outside success/failure (cancelled, skipped, timed_out, ...) is
// folded into ConclusionOther.
type Conclusion string

const (
	ConclusionSuccess Conclusion = "success"
	ConclusionFailure Conclusion = "failure"
	ConclusionOther   Conclusion = "other"
)

// WorkflowRun is one CI/CD workflow execution as reported by the source
// hosting API. It is read-only input; nothing persists it beyond the report
// computed from it.
type WorkflowRun struct {
	Name         string
	Conclusion   Conclusion
	CreatedAt    time.Time
	RunStartedAt time.Time
	UpdatedAt    time.Time
}

// PullRequest is one pull request as reported by the source hosting API.
// MergedAt is nil for unmerged PRs.
type PullRequest struct {
	AuthorLogin string
	CreatedAt   time.Time
	MergedAt    *time.Time
	State       string
}

// Report is the full metrics document written once per collection run.
// Pointer fields serialize as null when the underlying value could not be
// computed (no qualifying records).
type Report struct {
	GeneratedAt string `json:"generated_at"`
	WindowDays  int    `json:"window_days"`
	Repository  string `json:"repository"`

	DORA         DORAMetrics       `json:"dora"`
	PullRequests PRMetrics         `json:"pull_requests"`
	CIHealth     CIMetrics         `json:"ci_health"`
	DeployHealth DeployMetrics     `json:"deploy_health"`
	Security     SecurityMetrics   `json:"security"`
	Dependabot   DependabotMetrics `json:"dependabot"`
}

// DORAMetrics covers deployment frequency, change-failure rate and the
// recovery-time proxy, computed from CD workflow runs.
type DORAMetrics struct {
	DeploymentsTotal         int      `json:"deployments_total"`
	DeploymentsSuccessful    int      `json:"deployments_successful"`
	DeploymentsFailed        int      `json:"deployments_failed"`
	ChangeFailureRatePercent float64  `json:"change_failure_rate_percent"`
	MTTRHours                *float64 `json:"mttr_hours"`
}

// PRMetrics covers merged-PR throughput and lead time within the window.
type PRMetrics struct {
	Throughput          int      `json:"pr_throughput"`
	LeadTimeAvgHours    *float64 `json:"pr_lead_time_avg_hours"`
	LeadTimeMedianHours *float64 `json:"pr_lead_time_median_hours"`
}

// CIMetrics covers CI workflow health.
type CIMetrics struct {
	RunsTotal          int      `json:"ci_runs_total"`
	SuccessRatePercent float64  `json:"ci_success_rate_percent"`
	AvgDurationMinutes *float64 `json:"ci_avg_duration_minutes"`
}

// DeployMetrics covers deploy duration for successful CD runs.
type DeployMetrics struct {
	AvgDurationMinutes *float64 `json:"deploy_avg_duration_minutes"`
}

// SecurityMetrics covers the security scanning workflow.
type SecurityMetrics struct {
	RunsTotal          int     `json:"security_runs_total"`
	SuccessRatePercent float64 `json:"security_success_rate_percent"`
	LastConclusion     *string `json:"security_last_conclusion"`
}

// DependabotMetrics covers bot-authored dependency update PRs.
type DependabotMetrics struct {
	PRsOpen   int `json:"dependabot_prs_open"`
	PRsMerged int `json:"dependabot_prs_merged"`
}
