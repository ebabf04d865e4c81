package models

// GitHubUser holds the profile fields of the account owner.
type GitHubUser struct {
	Login     string  `json:"login"`
	Name      *string `json:"name"`
	Bio       *string `json:"bio"`
	AvatarURL string  `json:"avatarUrl"`
	Location  *string `json:"location"`
	Company   *string `json:"company"`
	CreatedAt string  `json:"createdAt"`
	Followers int     `json:"followers"`
	Following int     `json:"following"`
}

// RecentCommit is a single commit from a repository's default branch history.
type RecentCommit struct {
	CommittedDate string `json:"committedDate"`
	Message       string `json:"message"`
	Additions     int    `json:"additions"`
	Deletions     int    `json:"deletions"`
}

// Repository is one fetched repository of the profile, most recently updated first.
type Repository struct {
	Name          string         `json:"name"`
	Description   *string        `json:"description"`
	URL           string         `json:"url"`
	Stars         int            `json:"stars"`
	Forks         int            `json:"forks"`
	Language      *string        `json:"language"`
	LanguageColor *string        `json:"languageColor"`
	CreatedAt     string         `json:"createdAt"`
	UpdatedAt     string         `json:"updatedAt"`
	PushedAt      string         `json:"pushedAt"`
	CommitCount   int            `json:"commitCount"`
	RecentCommits []RecentCommit `json:"recentCommits"`
}

// LanguageUsage is the aggregated byte count of one language across all
// fetched repositories.
type LanguageUsage struct {
	Name  string `json:"name"`
	Bytes int64  `json:"bytes"`
	Color string `json:"color"`
}

// HeatmapDay is one cell of the contribution calendar.
type HeatmapDay struct {
	Date    string `json:"date"`
	Count   int    `json:"count"`
	Weekday int    `json:"weekday"`
}

// Contributions aggregates the user's contribution activity. All fields are
// zero/empty on the REST fallback path, which has no contribution data.
type Contributions struct {
	Total        int          `json:"total"`
	Commits      int          `json:"commits"`
	PullRequests int          `json:"pullRequests"`
	Issues       int          `json:"issues"`
	Heatmap      []HeatmapDay `json:"heatmap"`
}

// Stats holds account-level totals. TotalRepos counts the whole account;
// TotalStars and TotalForks are sums over the fetched repository window only.
type Stats struct {
	TotalRepos int `json:"totalRepos"`
	TotalStars int `json:"totalStars"`
	TotalForks int `json:"totalForks"`
}

// GitHubProfile is the normalized profile returned to callers and cached.
type GitHubProfile struct {
	User          GitHubUser      `json:"user"`
	Repositories  []Repository    `json:"repositories"`
	Languages     []LanguageUsage `json:"languages"`
	Contributions Contributions   `json:"contributions"`
	Stats         Stats           `json:"stats"`
}

// ProfileRequest is the inbound request body of the profile endpoint.
type ProfileRequest struct {
	Username     string `json:"username"`
	ForceRefresh bool   `json:"forceRefresh"`
}

// ProfileResponse is the profile plus cache provenance.
type ProfileResponse struct {
	GitHubProfile
	FromCache bool `json:"fromCache"`
}
