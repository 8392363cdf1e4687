// Package gateway provides a gateway to the GitHub REST API for the metrics
// collector, abstracting away the underlying client.
package gateway

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"

	"github.com/calcboard/calcboard/internal/domain"
)

const (
	// perPage is the page size requested from every listing endpoint.
	perPage = 100

	// maxPages is a safety bound against unbounded iteration, not a
	// completeness guarantee: collection stops after this many pages even
	// if the endpoint has more.
	maxPages = 10

	// requestTimeout is the fixed per-call ceiling for outbound requests.
	requestTimeout = 30 * time.Second
)

// Fetcher defines the behavior of a gateway for fetching delivery records
// from the source hosting API.
type Fetcher interface {
	// ListWorkflowRuns returns all workflow runs created at or after since,
	// across every workflow in the repository.
	ListWorkflowRuns(ctx context.Context, since time.Time) ([]domain.WorkflowRun, error)

	// ListPullRequests returns pull requests in the given state ("open" or
	// "closed"). Closed PRs are listed most-recently-updated first.
	ListPullRequests(ctx context.Context, state string) ([]domain.PullRequest, error)
}

// GitHubGateway is the concrete implementation of the Fetcher interface.
type GitHubGateway struct {
	client *github.Client
	owner  string
	repo   string
	logger *log.Logger
}

// NewGitHubGateway creates a gateway for the given "owner/name" repository.
// The token is forwarded as a bearer token on every request; requests honor
// GitHub's secondary rate limits via a rate limit waiter.
func NewGitHubGateway(token, repository string, logger *log.Logger) (Fetcher, error) {
	owner, repo, ok := strings.Cut(repository, "/")
	if ok {
		ok = owner != "" && repo != "" && !strings.Contains(repo, "/")
	}
	if !ok {
		return nil, fmt.Errorf("invalid repository %q: want owner/name", repository)
	}

	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(1*time.Hour, nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := &http.Client{
		Timeout: requestTimeout,
		Transport: &oauth2.Transport{
			Base:   rateLimitWaiter,
			Source: ts,
		},
	}
	return &GitHubGateway{
		client: github.NewClient(httpClient),
		owner:  owner,
		repo:   repo,
		logger: logger,
	}, nil
}

// ListWorkflowRuns fetches workflow runs page by page. Collection stops at
// the first short page or after maxPages, whichever comes first; any
// non-success response aborts the whole listing.
func (g *GitHubGateway) ListWorkflowRuns(ctx context.Context, since time.Time) ([]domain.WorkflowRun, error) {
	g.logger.Println("Fetching workflow runs...")
	opts := &github.ListWorkflowRunsOptions{
		Created:     fmt.Sprintf(">=%s", since.Format("2006-01-02")),
		ListOptions: github.ListOptions{PerPage: perPage, Page: 1},
	}

	var all []domain.WorkflowRun
	for {
		result, _, err := g.client.Actions.ListRepositoryWorkflowRuns(ctx, g.owner, g.repo, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list workflow runs: %w", err)
		}
		for _, run := range result.WorkflowRuns {
			all = append(all, toWorkflowRun(run))
		}
		if len(result.WorkflowRuns) < perPage {
			break
		}
		opts.Page++
		if opts.Page > maxPages {
			break
		}
		g.logger.Println("  Fetching next page of workflow runs...")
	}
	g.logger.Printf("Completed fetching workflow runs: %d total\n", len(all))
	return all, nil
}

// ListPullRequests fetches pull requests page by page with the same stop
// rules as ListWorkflowRuns.
func (g *GitHubGateway) ListPullRequests(ctx context.Context, state string) ([]domain.PullRequest, error) {
	g.logger.Printf("Fetching %s pull requests...\n", state)
	opts := &github.PullRequestListOptions{
		State:       state,
		ListOptions: github.ListOptions{PerPage: perPage, Page: 1},
	}
	if state == "closed" {
		opts.Sort = "updated"
		opts.Direction = "desc"
	}

	var all []domain.PullRequest
	for {
		prs, _, err := g.client.PullRequests.List(ctx, g.owner, g.repo, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list pull requests: %w", err)
		}
		for _, pr := range prs {
			all = append(all, toPullRequest(pr))
		}
		if len(prs) < perPage {
			break
		}
		opts.Page++
		if opts.Page > maxPages {
			break
		}
		g.logger.Println("  Fetching next page of pull requests...")
	}
	g.logger.Printf("Completed fetching pull requests: %d total\n", len(all))
	return all, nil
}

func toWorkflowRun(run *github.WorkflowRun) domain.WorkflowRun {
	var conclusion domain.Conclusion
	switch run.GetConclusion() {
	case "success":
		conclusion = domain.ConclusionSuccess
	case "failure":
		conclusion = domain.ConclusionFailure
	default:
		conclusion = domain.ConclusionOther
	}
	return domain.WorkflowRun{
		Name:         run.GetName(),
		Conclusion:   conclusion,
		CreatedAt:    run.GetCreatedAt().Time,
		RunStartedAt: run.GetRunStartedAt().Time,
		UpdatedAt:    run.GetUpdatedAt().Time,
	}
}

func toPullRequest(pr *github.PullRequest) domain.PullRequest {
	out := domain.PullRequest{
		AuthorLogin: pr.GetUser().GetLogin(),
		CreatedAt:   pr.GetCreatedAt().Time,
		State:       pr.GetState(),
	}
	if pr.MergedAt != nil {
		merged := pr.MergedAt.Time
		out.MergedAt = &merged
	}
	return out
}
