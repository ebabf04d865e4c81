package services

import (
	"sort"

	"github.com/gitfolio/gitfolio/internal/models"
)

// Recent commits kept per repository in the normalized profile
const recentCommitLimit = 10

// NormalizeProfile transforms a raw provider payload into the canonical
// profile. It is a total function: absent optional fields default to
// nil/zero/empty, never an error.
func NormalizeProfile(raw *RawUser) *models.GitHubProfile {
	profile := &models.GitHubProfile{
		User: models.GitHubUser{
			Login:     raw.Login,
			Name:      raw.Name,
			Bio:       raw.Bio,
			AvatarURL: raw.AvatarURL,
			Location:  raw.Location,
			Company:   raw.Company,
			CreatedAt: raw.CreatedAt,
			Followers: raw.Followers.TotalCount,
			Following: raw.Following.TotalCount,
		},
		Repositories:  make([]models.Repository, 0, len(raw.Repositories.Nodes)),
		Languages:     aggregateLanguages(raw.Repositories.Nodes),
		Contributions: normalizeContributions(raw.ContributionsCollection),
	}

	totalStars := 0
	totalForks := 0
	for _, node := range raw.Repositories.Nodes {
		repo := models.Repository{
			Name:          node.Name,
			Description:   node.Description,
			URL:           node.URL,
			Stars:         node.StargazerCount,
			Forks:         node.ForkCount,
			CreatedAt:     node.CreatedAt,
			UpdatedAt:     node.UpdatedAt,
			PushedAt:      node.PushedAt,
			RecentCommits: []models.RecentCommit{},
		}

		if node.PrimaryLanguage != nil {
			name := node.PrimaryLanguage.Name
			repo.Language = &name
			if node.PrimaryLanguage.Color != nil {
				repo.LanguageColor = node.PrimaryLanguage.Color
			} else {
				color := LanguageColor(name)
				repo.LanguageColor = &color
			}
		}

		// Empty repositories have no default branch, so no history
		if node.DefaultBranchRef != nil && node.DefaultBranchRef.Target != nil && node.DefaultBranchRef.Target.History != nil {
			history := node.DefaultBranchRef.Target.History
			repo.CommitCount = history.TotalCount
			limit := recentCommitLimit
			if len(history.Nodes) < limit {
				limit = len(history.Nodes)
			}
			for _, commit := range history.Nodes[:limit] {
				repo.RecentCommits = append(repo.RecentCommits, models.RecentCommit{
					CommittedDate: commit.CommittedDate,
					Message:       commit.Message,
					Additions:     commit.Additions,
					Deletions:     commit.Deletions,
				})
			}
		}

		totalStars += repo.Stars
		totalForks += repo.Forks
		profile.Repositories = append(profile.Repositories, repo)
	}

	profile.Stats = models.Stats{
		TotalRepos: raw.Repositories.TotalCount,
		// Sums cover the fetched window only, not the whole account
		TotalStars: totalStars,
		TotalForks: totalForks,
	}

	return profile
}

// aggregateLanguages sums per-language byte contributions across all fetched
// repositories and sorts them descending by total bytes. Equal byte counts
// keep their first-seen order.
func aggregateLanguages(repos []RawRepository) []models.LanguageUsage {
	totals := make(map[string]*models.LanguageUsage)
	order := make([]string, 0)

	for _, repo := range repos {
		for _, edge := range repo.Languages.Edges {
			name := edge.Node.Name
			usage, ok := totals[name]
			if !ok {
				color := LanguageColor(name)
				if edge.Node.Color != nil && *edge.Node.Color != "" {
					color = *edge.Node.Color
				}
				usage = &models.LanguageUsage{Name: name, Color: color}
				totals[name] = usage
				order = append(order, name)
			}
			usage.Bytes += edge.Size
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return totals[order[i]].Bytes > totals[order[j]].Bytes
	})

	languages := make([]models.LanguageUsage, 0, len(order))
	for _, name := range order {
		languages = append(languages, *totals[name])
	}
	return languages
}

func normalizeContributions(raw *RawContributions) models.Contributions {
	contributions := models.Contributions{
		Heatmap: []models.HeatmapDay{},
	}
	if raw == nil {
		return contributions
	}

	contributions.Commits = raw.TotalCommitContributions
	contributions.PullRequests = raw.TotalPullRequestContributions
	contributions.Issues = raw.TotalIssueContributions

	if raw.ContributionCalendar != nil {
		contributions.Total = raw.ContributionCalendar.TotalContributions
		for _, week := range raw.ContributionCalendar.Weeks {
			for _, day := range week.ContributionDays {
				contributions.Heatmap = append(contributions.Heatmap, models.HeatmapDay{
					Date:    day.Date,
					Count:   day.ContributionCount,
					Weekday: day.Weekday,
				})
			}
		}
	}

	return contributions
}
