package progress

// Metric is the closed set of GitHub activity measurements a goal can track.
type Metric string

const (
	MetricCommits       Metric = "commits"
	MetricPullRequests  Metric = "pull_requests"
	MetricCodeReviews   Metric = "code_reviews"
	MetricIssues        Metric = "issues"
	MetricContributions Metric = "contributions"
	MetricRepositories  Metric = "repositories"
)

var AllMetrics = []Metric{
	MetricCommits,
	MetricPullRequests,
	MetricCodeReviews,
	MetricIssues,
	MetricContributions,
	MetricRepositories,
}

func (m Metric) IsValid() bool {
	for _, v := range AllMetrics {
		if m == v {
			return true
		}
	}
	return false
}
