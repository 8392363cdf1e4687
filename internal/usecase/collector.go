// Package usecase contains the business logic of the metrics pipeline.
package usecase

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/montanaflynn/stats"

	"github.com/calcboard/calcboard/internal/domain"
	"github.com/calcboard/calcboard/internal/gateway"
)

// Workflow names and author logins the aggregations filter on. Workflow-name
// matching is case-insensitive.
const (
	cdWorkflowName       = "CD - Azure Web App"
	ciWorkflowName       = "CI"
	securityWorkflowName = "Security"
	dependabotLogin      = "dependabot[bot]"
)

// Collector runs every metric aggregation against a Fetcher and assembles
// the resulting report. All fetches are sequential and any fetch error aborts
// the whole report.
type Collector struct {
	fetcher    gateway.Fetcher
	repository string
	windowDays int
	logger     *log.Logger
	now        func() time.Time
}

// NewCollector creates a new Collector instance. The window is anchored at
// now minus windowDays.
func NewCollector(fetcher gateway.Fetcher, repository string, windowDays int, logger *log.Logger) *Collector {
	return &Collector{
		fetcher:    fetcher,
		repository: repository,
		windowDays: windowDays,
		logger:     logger,
		now:        time.Now,
	}
}

// Collect runs all aggregations unconditionally, one after another, and
// returns the assembled report tagged with the generation timestamp and
// window size.
func (c *Collector) Collect(ctx context.Context) (*domain.Report, error) {
	c.logger.Println("Usecase: starting metrics collection...")

	dora, err := c.collectDORA(ctx)
	if err != nil {
		return nil, fmt.Errorf("collect dora metrics: %w", err)
	}
	prs, err := c.collectPullRequests(ctx)
	if err != nil {
		return nil, fmt.Errorf("collect pull request metrics: %w", err)
	}
	ci, err := c.collectCIHealth(ctx)
	if err != nil {
		return nil, fmt.Errorf("collect ci metrics: %w", err)
	}
	deploy, err := c.collectDeployHealth(ctx)
	if err != nil {
		return nil, fmt.Errorf("collect deploy duration metrics: %w", err)
	}
	security, err := c.collectSecurity(ctx)
	if err != nil {
		return nil, fmt.Errorf("collect security metrics: %w", err)
	}
	dependabot, err := c.collectDependabot(ctx)
	if err != nil {
		return nil, fmt.Errorf("collect dependabot metrics: %w", err)
	}

	c.logger.Println("Usecase: collection complete.")
	return &domain.Report{
		GeneratedAt:  c.now().UTC().Format(time.RFC3339),
		WindowDays:   c.windowDays,
		Repository:   c.repository,
		DORA:         dora,
		PullRequests: prs,
		CIHealth:     ci,
		DeployHealth: deploy,
		Security:     security,
		Dependabot:   dependabot,
	}, nil
}

// collectDORA computes deployment counts, the change-failure rate and the
// recovery-time proxy from CD workflow runs.
func (c *Collector) collectDORA(ctx context.Context) (domain.DORAMetrics, error) {
	c.logger.Println("[1/6] Collecting DORA metrics...")
	runs, err := c.workflowRuns(ctx, cdWorkflowName)
	if err != nil {
		return domain.DORAMetrics{}, err
	}

	m := domain.DORAMetrics{DeploymentsTotal: len(runs)}
	for _, run := range runs {
		switch run.Conclusion {
		case domain.ConclusionSuccess:
			m.DeploymentsSuccessful++
		case domain.ConclusionFailure:
			m.DeploymentsFailed++
		}
	}
	if m.DeploymentsTotal > 0 {
		m.ChangeFailureRatePercent = round2(float64(m.DeploymentsFailed) / float64(m.DeploymentsTotal) * 100)
	}

	// Recovery-time proxy: elapsed time between the first failed run and the
	// next chronologically later successful run, in ascending creation-time
	// order, stopping at the first qualifying pair.
	sorted := append([]domain.WorkflowRun(nil), runs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].CreatedAt.Before(sorted[j].CreatedAt) })
	var mttr *float64
outer:
	for i, run := range sorted {
		if run.Conclusion != domain.ConclusionFailure {
			continue
		}
		for _, next := range sorted[i+1:] {
			if next.Conclusion == domain.ConclusionSuccess {
				hours := next.CreatedAt.Sub(run.CreatedAt).Hours()
				mttr = &hours
				break outer
			}
		}
	}
	m.MTTRHours = roundedOrNil(mttr)
	return m, nil
}

// collectPullRequests computes merged-PR throughput and lead time over the
// window.
func (c *Collector) collectPullRequests(ctx context.Context) (domain.PRMetrics, error) {
	c.logger.Println("[2/6] Collecting pull request metrics...")
	prs, err := c.fetcher.ListPullRequests(ctx, "closed")
	if err != nil {
		return domain.PRMetrics{}, err
	}

	windowStart := c.windowStart()
	var leadTimes []float64
	for _, pr := range prs {
		if pr.MergedAt == nil || pr.MergedAt.Before(windowStart) {
			continue
		}
		leadTimes = append(leadTimes, pr.MergedAt.Sub(pr.CreatedAt).Hours())
	}

	return domain.PRMetrics{
		Throughput:          len(leadTimes),
		LeadTimeAvgHours:    roundedOrNil(mean(leadTimes)),
		LeadTimeMedianHours: roundedOrNil(medianProxy(leadTimes)),
	}, nil
}

// collectCIHealth computes CI run counts, success rate and average duration.
func (c *Collector) collectCIHealth(ctx context.Context) (domain.CIMetrics, error) {
	c.logger.Println("[3/6] Collecting CI health metrics...")
	runs, err := c.workflowRuns(ctx, ciWorkflowName)
	if err != nil {
		return domain.CIMetrics{}, err
	}

	m := domain.CIMetrics{RunsTotal: len(runs)}
	successful := 0
	var durations []float64
	for _, run := range runs {
		if run.Conclusion == domain.ConclusionSuccess {
			successful++
		}
		if !run.RunStartedAt.IsZero() && !run.UpdatedAt.IsZero() {
			durations = append(durations, run.UpdatedAt.Sub(run.RunStartedAt).Minutes())
		}
	}
	if m.RunsTotal > 0 {
		m.SuccessRatePercent = round2(float64(successful) / float64(m.RunsTotal) * 100)
	}
	m.AvgDurationMinutes = roundedOrNil(mean(durations))
	return m, nil
}

// collectDeployHealth computes the average duration of successful CD runs.
func (c *Collector) collectDeployHealth(ctx context.Context) (domain.DeployMetrics, error) {
	c.logger.Println("[4/6] Collecting deploy duration metrics...")
	runs, err := c.workflowRuns(ctx, cdWorkflowName)
	if err != nil {
		return domain.DeployMetrics{}, err
	}

	var durations []float64
	for _, run := range runs {
		if run.Conclusion != domain.ConclusionSuccess || run.RunStartedAt.IsZero() || run.UpdatedAt.IsZero() {
			continue
		}
		durations = append(durations, run.UpdatedAt.Sub(run.RunStartedAt).Minutes())
	}
	return domain.DeployMetrics{AvgDurationMinutes: roundedOrNil(mean(durations))}, nil
}

// collectSecurity computes security workflow health and the conclusion of the
// most recent run.
func (c *Collector) collectSecurity(ctx context.Context) (domain.SecurityMetrics, error) {
	c.logger.Println("[5/6] Collecting security metrics...")
	runs, err := c.workflowRuns(ctx, securityWorkflowName)
	if err != nil {
		return domain.SecurityMetrics{}, err
	}

	m := domain.SecurityMetrics{RunsTotal: len(runs)}
	successful := 0
	for _, run := range runs {
		if run.Conclusion == domain.ConclusionSuccess {
			successful++
		}
	}
	if m.RunsTotal > 0 {
		m.SuccessRatePercent = round2(float64(successful) / float64(m.RunsTotal) * 100)
	}
	if len(runs) > 0 {
		latest := runs[0]
		for _, run := range runs[1:] {
			if run.CreatedAt.After(latest.CreatedAt) {
				latest = run
			}
		}
		conclusion := string(latest.Conclusion)
		m.LastConclusion = &conclusion
	}
	return m, nil
}

// collectDependabot counts open and window-merged PRs authored by the bot.
func (c *Collector) collectDependabot(ctx context.Context) (domain.DependabotMetrics, error) {
	c.logger.Println("[6/6] Collecting dependabot metrics...")

	open, err := c.fetcher.ListPullRequests(ctx, "open")
	if err != nil {
		return domain.DependabotMetrics{}, err
	}
	closed, err := c.fetcher.ListPullRequests(ctx, "closed")
	if err != nil {
		return domain.DependabotMetrics{}, err
	}

	windowStart := c.windowStart()
	m := domain.DependabotMetrics{}
	for _, pr := range open {
		if pr.AuthorLogin == dependabotLogin {
			m.PRsOpen++
		}
	}
	for _, pr := range closed {
		if pr.AuthorLogin == dependabotLogin && pr.MergedAt != nil && !pr.MergedAt.Before(windowStart) {
			m.PRsMerged++
		}
	}
	return m, nil
}

// workflowRuns fetches all runs in the window and keeps those whose workflow
// name matches, case-insensitively.
func (c *Collector) workflowRuns(ctx context.Context, name string) ([]domain.WorkflowRun, error) {
	runs, err := c.fetcher.ListWorkflowRuns(ctx, c.windowStart())
	if err != nil {
		return nil, err
	}
	filtered := make([]domain.WorkflowRun, 0, len(runs))
	for _, run := range runs {
		if strings.EqualFold(run.Name, name) {
			filtered = append(filtered, run)
		}
	}
	return filtered, nil
}

func (c *Collector) windowStart() time.Time {
	return c.now().UTC().AddDate(0, 0, -c.windowDays)
}

// mean returns the average of values, or nil when there are none.
func mean(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	avg, err := stats.Mean(values)
	if err != nil {
		return nil
	}
	return &avg
}

// medianProxy returns the upper-middle element of the ascending-sorted
// values. For even-length input this is NOT the mathematical median; the tie
// policy is part of the report contract and must not be "fixed".
func medianProxy(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	v := sorted[len(sorted)/2]
	return &v
}

// roundedOrNil rounds to two decimals, reporting a missing or zero value as
// null.
func roundedOrNil(v *float64) *float64 {
	if v == nil || *v == 0 {
		return nil
	}
	r := round2(*v)
	return &r
}

func round2(v float64) float64 {
	rounded, err := stats.Round(v, 2)
	if err != nil {
		return 0
	}
	return rounded
}
