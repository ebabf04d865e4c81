package services

// Raw provider payload, shaped after the GraphQL node tree. The REST fallback
// path assembles the same shape so the normalizer has a single input.

type RawUser struct {
	Login                   string            `json:"login"`
	Name                    *string           `json:"name"`
	Bio                     *string           `json:"bio"`
	AvatarURL               string            `json:"avatarUrl"`
	Location                *string           `json:"location"`
	Company                 *string           `json:"company"`
	CreatedAt               string            `json:"createdAt"`
	Followers               RawCount          `json:"followers"`
	Following               RawCount          `json:"following"`
	Repositories            RawRepositories   `json:"repositories"`
	ContributionsCollection *RawContributions `json:"contributionsCollection"`
}

type RawCount struct {
	TotalCount int `json:"totalCount"`
}

type RawRepositories struct {
	TotalCount int             `json:"totalCount"`
	Nodes      []RawRepository `json:"nodes"`
}

type RawRepository struct {
	Name             string               `json:"name"`
	Description      *string              `json:"description"`
	URL              string               `json:"url"`
	StargazerCount   int                  `json:"stargazerCount"`
	ForkCount        int                  `json:"forkCount"`
	PrimaryLanguage  *RawPrimaryLanguage  `json:"primaryLanguage"`
	Languages        RawLanguages         `json:"languages"`
	CreatedAt        string               `json:"createdAt"`
	UpdatedAt        string               `json:"updatedAt"`
	PushedAt         string               `json:"pushedAt"`
	IsPrivate        bool                 `json:"isPrivate"`
	DefaultBranchRef *RawDefaultBranchRef `json:"defaultBranchRef"`
}

type RawPrimaryLanguage struct {
	Name  string  `json:"name"`
	Color *string `json:"color"`
}

type RawLanguages struct {
	Edges []RawLanguageEdge `json:"edges"`
}

type RawLanguageEdge struct {
	Size int64           `json:"size"`
	Node RawLanguageNode `json:"node"`
}

type RawLanguageNode struct {
	Name  string  `json:"name"`
	Color *string `json:"color"`
}

type RawDefaultBranchRef struct {
	Target *RawCommitTarget `json:"target"`
}

type RawCommitTarget struct {
	History *RawCommitHistory `json:"history"`
}

type RawCommitHistory struct {
	TotalCount int             `json:"totalCount"`
	Nodes      []RawCommitNode `json:"nodes"`
}

type RawCommitNode struct {
	CommittedDate string `json:"committedDate"`
	Message       string `json:"message"`
	Additions     int    `json:"additions"`
	Deletions     int    `json:"deletions"`
}

type RawContributions struct {
	TotalCommitContributions      int                      `json:"totalCommitContributions"`
	TotalPullRequestContributions int                      `json:"totalPullRequestContributions"`
	TotalIssueContributions       int                      `json:"totalIssueContributions"`
	ContributionCalendar          *RawContributionCalendar `json:"contributionCalendar"`
}

type RawContributionCalendar struct {
	TotalContributions int       `json:"totalContributions"`
	Weeks              []RawWeek `json:"weeks"`
}

type RawWeek struct {
	ContributionDays []RawContributionDay `json:"contributionDays"`
}

type RawContributionDay struct {
	ContributionCount int    `json:"contributionCount"`
	Date              string `json:"date"`
	Weekday           int    `json:"weekday"`
}
