package dashboard

type StatsResponse struct {
	PublicRepos int `json:"publicRepos"`
	TotalRepos  int `json:"totalRepos"`
	TotalStars  int `json:"totalStars"`
	TotalForks  int `json:"totalForks"`
	TotalIssues int `json:"totalIssues"`
	Followers   int `json:"followers"`
	Following   int `json:"following"`
}

type StatsSummaryResponse struct {
	Commits      int `json:"commits"`
	PullRequests int `json:"pullRequests"`
	OpenIssues   int `json:"openIssues"`
	ActiveRepos  int `json:"activeRepos"`
}

type WeekdayActivity struct {
	Day     string `json:"day"`
	Commits int    `json:"commits"`
}
