package usecase

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/calcboard/calcboard/internal/domain"
)

// mockFetcher is a mock implementation of the gateway.Fetcher interface.
type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) ListWorkflowRuns(ctx context.Context, since time.Time) ([]domain.WorkflowRun, error) {
	args := m.Called(ctx, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.WorkflowRun), args.Error(1)
}

func (m *mockFetcher) ListPullRequests(ctx context.Context, state string) ([]domain.PullRequest, error) {
	args := m.Called(ctx, state)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PullRequest), args.Error(1)
}

var testNow = time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

// newTestCollector wires a collector with a fixed clock and discarded logs.
func newTestCollector(fetcher *mockFetcher) *Collector {
	c := NewCollector(fetcher, "acme/widgets", 30, log.New(io.Discard, "", 0))
	c.now = func() time.Time { return testNow }
	return c
}

// cdRun builds a CD workflow run created at the given hour offset from the
// window start.
func cdRun(conclusion domain.Conclusion, hoursIn float64) domain.WorkflowRun {
	created := testNow.AddDate(0, 0, -30).Add(time.Duration(hoursIn * float64(time.Hour)))
	return domain.WorkflowRun{
		Name:         "cd - azure web app",
		Conclusion:   conclusion,
		CreatedAt:    created,
		RunStartedAt: created.Add(time.Minute),
		UpdatedAt:    created.Add(6 * time.Minute),
	}
}

// mergedPR builds a closed PR merged inside the window with the given lead
// time in hours.
func mergedPR(leadHours float64) domain.PullRequest {
	created := testNow.Add(-48 * time.Hour)
	merged := created.Add(time.Duration(leadHours * float64(time.Hour)))
	return domain.PullRequest{
		AuthorLogin: "octocat",
		CreatedAt:   created,
		MergedAt:    &merged,
		State:       "closed",
	}
}

func TestCollector_Collect(t *testing.T) {
	fetcher := new(mockFetcher)
	runs := []domain.WorkflowRun{
		cdRun(domain.ConclusionFailure, 0),
		cdRun(domain.ConclusionSuccess, 3),
		cdRun(domain.ConclusionSuccess, 10),
		{
			Name:         "CI",
			Conclusion:   domain.ConclusionSuccess,
			CreatedAt:    testNow.Add(-24 * time.Hour),
			RunStartedAt: testNow.Add(-24 * time.Hour),
			UpdatedAt:    testNow.Add(-24*time.Hour + 4*time.Minute),
		},
		{
			Name:       "Security",
			Conclusion: domain.ConclusionFailure,
			CreatedAt:  testNow.Add(-12 * time.Hour),
			UpdatedAt:  testNow.Add(-12 * time.Hour),
		},
	}
	open := []domain.PullRequest{
		{AuthorLogin: "dependabot[bot]", CreatedAt: testNow.Add(-time.Hour), State: "open"},
		{AuthorLogin: "octocat", CreatedAt: testNow.Add(-time.Hour), State: "open"},
	}
	closed := []domain.PullRequest{mergedPR(1), mergedPR(2), mergedPR(3), mergedPR(4)}

	fetcher.On("ListWorkflowRuns", mock.Anything, mock.Anything).Return(runs, nil)
	fetcher.On("ListPullRequests", mock.Anything, "open").Return(open, nil)
	fetcher.On("ListPullRequests", mock.Anything, "closed").Return(closed, nil)

	report, err := newTestCollector(fetcher).Collect(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "2026-08-30T12:00:00Z", report.GeneratedAt)
	assert.Equal(t, 30, report.WindowDays)
	assert.Equal(t, "acme/widgets", report.Repository)

	// DORA: workflow-name match is case-insensitive, so the three cd runs
	// count and CI/Security do not.
	assert.Equal(t, 3, report.DORA.DeploymentsTotal)
	assert.Equal(t, 2, report.DORA.DeploymentsSuccessful)
	assert.Equal(t, 1, report.DORA.DeploymentsFailed)
	assert.Equal(t, 33.33, report.DORA.ChangeFailureRatePercent)
	// Recovery proxy: failure at +0h, first later success at +3h.
	require.NotNil(t, report.DORA.MTTRHours)
	assert.Equal(t, 3.0, *report.DORA.MTTRHours)

	// Lead times 1,2,3,4 → avg 2.5, median proxy = upper-middle element 3.
	assert.Equal(t, 4, report.PullRequests.Throughput)
	require.NotNil(t, report.PullRequests.LeadTimeAvgHours)
	assert.Equal(t, 2.5, *report.PullRequests.LeadTimeAvgHours)
	require.NotNil(t, report.PullRequests.LeadTimeMedianHours)
	assert.Equal(t, 3.0, *report.PullRequests.LeadTimeMedianHours)

	assert.Equal(t, 1, report.CIHealth.RunsTotal)
	assert.Equal(t, 100.0, report.CIHealth.SuccessRatePercent)
	require.NotNil(t, report.CIHealth.AvgDurationMinutes)
	assert.Equal(t, 4.0, *report.CIHealth.AvgDurationMinutes)

	// Two successful CD runs, 5 minutes each.
	require.NotNil(t, report.DeployHealth.AvgDurationMinutes)
	assert.Equal(t, 5.0, *report.DeployHealth.AvgDurationMinutes)

	assert.Equal(t, 1, report.Security.RunsTotal)
	assert.Equal(t, 0.0, report.Security.SuccessRatePercent)
	require.NotNil(t, report.Security.LastConclusion)
	assert.Equal(t, "failure", *report.Security.LastConclusion)

	assert.Equal(t, 1, report.Dependabot.PRsOpen)
	assert.Equal(t, 0, report.Dependabot.PRsMerged, "all closed PRs here are octocat-authored")
}

func TestCollector_Collect_EmptySources(t *testing.T) {
	fetcher := new(mockFetcher)
	fetcher.On("ListWorkflowRuns", mock.Anything, mock.Anything).Return([]domain.WorkflowRun{}, nil)
	fetcher.On("ListPullRequests", mock.Anything, mock.Anything).Return([]domain.PullRequest{}, nil)

	report, err := newTestCollector(fetcher).Collect(context.Background())
	require.NoError(t, err)

	// Rates are 0, not errors, when the total count is 0; averages are null.
	assert.Equal(t, 0, report.DORA.DeploymentsTotal)
	assert.Equal(t, 0.0, report.DORA.ChangeFailureRatePercent)
	assert.Nil(t, report.DORA.MTTRHours)
	assert.Equal(t, 0, report.PullRequests.Throughput)
	assert.Nil(t, report.PullRequests.LeadTimeAvgHours)
	assert.Nil(t, report.PullRequests.LeadTimeMedianHours)
	assert.Equal(t, 0.0, report.CIHealth.SuccessRatePercent)
	assert.Nil(t, report.CIHealth.AvgDurationMinutes)
	assert.Nil(t, report.DeployHealth.AvgDurationMinutes)
	assert.Nil(t, report.Security.LastConclusion)
}

func TestCollector_Collect_FetchErrorIsFatal(t *testing.T) {
	fetcher := new(mockFetcher)
	fetcher.On("ListWorkflowRuns", mock.Anything, mock.Anything).Return(nil, errors.New("boom"))

	report, err := newTestCollector(fetcher).Collect(context.Background())
	require.Error(t, err)
	assert.Nil(t, report, "no partial report on a fetch failure")
	assert.Contains(t, err.Error(), "collect dora metrics")
}

func TestCollector_MTTR_NoRecovery(t *testing.T) {
	fetcher := new(mockFetcher)
	// A failure with no later success: no qualifying pair.
	runs := []domain.WorkflowRun{
		cdRun(domain.ConclusionSuccess, 0),
		cdRun(domain.ConclusionFailure, 5),
	}
	fetcher.On("ListWorkflowRuns", mock.Anything, mock.Anything).Return(runs, nil)

	m, err := newTestCollector(fetcher).collectDORA(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 50.0, m.ChangeFailureRatePercent)
	assert.Nil(t, m.MTTRHours)
}

func TestCollector_MTTR_SuccessBeforeFailureIgnored(t *testing.T) {
	fetcher := new(mockFetcher)
	// Out-of-order input: the scan must sort by creation time first, and a
	// success preceding the failure must not qualify.
	runs := []domain.WorkflowRun{
		cdRun(domain.ConclusionSuccess, 8),
		cdRun(domain.ConclusionFailure, 2),
		cdRun(domain.ConclusionSuccess, 1),
	}
	fetcher.On("ListWorkflowRuns", mock.Anything, mock.Anything).Return(runs, nil)

	m, err := newTestCollector(fetcher).collectDORA(context.Background())
	require.NoError(t, err)
	require.NotNil(t, m.MTTRHours)
	assert.Equal(t, 6.0, *m.MTTRHours)
}

func TestCollector_PullRequests_WindowFiltering(t *testing.T) {
	fetcher := new(mockFetcher)
	oldMerged := testNow.AddDate(0, 0, -45)
	oldCreated := oldMerged.Add(-2 * time.Hour)
	closed := []domain.PullRequest{
		mergedPR(2),
		{AuthorLogin: "octocat", CreatedAt: oldCreated, MergedAt: &oldMerged, State: "closed"},
		{AuthorLogin: "octocat", CreatedAt: testNow.Add(-3 * time.Hour), State: "closed"}, // closed unmerged
	}
	fetcher.On("ListPullRequests", mock.Anything, "closed").Return(closed, nil)

	m, err := newTestCollector(fetcher).collectPullRequests(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, m.Throughput, "only PRs merged inside the window count")
	require.NotNil(t, m.LeadTimeAvgHours)
	assert.Equal(t, 2.0, *m.LeadTimeAvgHours)
}

func TestMedianProxy_UpperMiddleTiePolicy(t *testing.T) {
	v := medianProxy([]float64{1, 2, 3, 4})
	require.NotNil(t, v)
	assert.Equal(t, 3.0, *v, "even-length input yields the upper-middle element")

	v = medianProxy([]float64{4, 1, 3, 2, 5})
	require.NotNil(t, v)
	assert.Equal(t, 3.0, *v)

	assert.Nil(t, medianProxy(nil))
}

func TestRoundedOrNil(t *testing.T) {
	assert.Nil(t, roundedOrNil(nil))

	zero := 0.0
	assert.Nil(t, roundedOrNil(&zero), "zero values report as null")

	v := 1.23456
	r := roundedOrNil(&v)
	require.NotNil(t, r)
	assert.Equal(t, 1.23, *r)
}
