package services

import (
	"testing"

	"github.com/gitfolio/gitfolio/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string {
	return &s
}

func repoWithLanguages(name string, stars, forks int, langs ...RawLanguageEdge) RawRepository {
	return RawRepository{
		Name:           name,
		URL:            "https://github.com/octocat/" + name,
		StargazerCount: stars,
		ForkCount:      forks,
		Languages:      RawLanguages{Edges: langs},
	}
}

func langEdge(name string, size int64) RawLanguageEdge {
	return RawLanguageEdge{Size: size, Node: RawLanguageNode{Name: name}}
}

func TestNormalizeProfileLanguageAggregation(t *testing.T) {
	raw := &RawUser{
		Login: "octocat",
		Repositories: RawRepositories{
			TotalCount: 2,
			Nodes: []RawRepository{
				repoWithLanguages("repo-a", 10, 1, langEdge("TypeScript", 1000)),
				repoWithLanguages("repo-b", 5, 2, langEdge("TypeScript", 500), langEdge("JavaScript", 200)),
			},
		},
	}

	profile := NormalizeProfile(raw)

	require.Len(t, profile.Languages, 2)
	assert.Equal(t, "TypeScript", profile.Languages[0].Name)
	assert.Equal(t, int64(1500), profile.Languages[0].Bytes)
	assert.Equal(t, "JavaScript", profile.Languages[1].Name)
	assert.Equal(t, int64(200), profile.Languages[1].Bytes)

	assert.Equal(t, 15, profile.Stats.TotalStars)
	assert.Equal(t, 3, profile.Stats.TotalForks)
	assert.Equal(t, 2, profile.Stats.TotalRepos)
}

func TestNormalizeProfileLanguageOrdering(t *testing.T) {
	t.Run("Sorted descending by bytes", func(t *testing.T) {
		raw := &RawUser{
			Repositories: RawRepositories{
				Nodes: []RawRepository{
					repoWithLanguages("a", 0, 0, langEdge("Go", 100), langEdge("Rust", 900)),
				},
			},
		}

		profile := NormalizeProfile(raw)

		require.Len(t, profile.Languages, 2)
		assert.Equal(t, "Rust", profile.Languages[0].Name)
		assert.Equal(t, "Go", profile.Languages[1].Name)
	})

	t.Run("Ties keep first-seen order", func(t *testing.T) {
		raw := &RawUser{
			Repositories: RawRepositories{
				Nodes: []RawRepository{
					repoWithLanguages("a", 0, 0, langEdge("Ruby", 300), langEdge("PHP", 300), langEdge("Swift", 300)),
				},
			},
		}

		profile := NormalizeProfile(raw)

		require.Len(t, profile.Languages, 3)
		assert.Equal(t, "Ruby", profile.Languages[0].Name)
		assert.Equal(t, "PHP", profile.Languages[1].Name)
		assert.Equal(t, "Swift", profile.Languages[2].Name)
	})

	t.Run("Byte totals sum across repositories", func(t *testing.T) {
		raw := &RawUser{
			Repositories: RawRepositories{
				Nodes: []RawRepository{
					repoWithLanguages("a", 0, 0, langEdge("Go", 100), langEdge("Shell", 50)),
					repoWithLanguages("b", 0, 0, langEdge("Go", 200)),
					repoWithLanguages("c", 0, 0),
				},
			},
		}

		profile := NormalizeProfile(raw)

		var total int64
		for _, lang := range profile.Languages {
			total += lang.Bytes
		}
		assert.Equal(t, int64(350), total)
	})
}

func TestNormalizeProfileLanguageColors(t *testing.T) {
	t.Run("Provider color wins", func(t *testing.T) {
		raw := &RawUser{
			Repositories: RawRepositories{
				Nodes: []RawRepository{
					{Languages: RawLanguages{Edges: []RawLanguageEdge{
						{Size: 100, Node: RawLanguageNode{Name: "Go", Color: strPtr("#123456")}},
					}}},
				},
			},
		}

		profile := NormalizeProfile(raw)

		require.Len(t, profile.Languages, 1)
		assert.Equal(t, "#123456", profile.Languages[0].Color)
	})

	t.Run("Static table when provider omits color", func(t *testing.T) {
		raw := &RawUser{
			Repositories: RawRepositories{
				Nodes: []RawRepository{
					repoWithLanguages("a", 0, 0, langEdge("Go", 100), langEdge("SomeObscureLang", 50)),
				},
			},
		}

		profile := NormalizeProfile(raw)

		require.Len(t, profile.Languages, 2)
		assert.Equal(t, "#00ADD8", profile.Languages[0].Color)
		assert.Equal(t, "#8b949e", profile.Languages[1].Color)
	})
}

func TestNormalizeProfileCommitHistory(t *testing.T) {
	t.Run("Missing defaultBranchRef defaults to zero", func(t *testing.T) {
		raw := &RawUser{
			Repositories: RawRepositories{
				Nodes: []RawRepository{
					{Name: "empty-repo"},
				},
			},
		}

		profile := NormalizeProfile(raw)

		require.Len(t, profile.Repositories, 1)
		assert.Equal(t, 0, profile.Repositories[0].CommitCount)
		assert.Empty(t, profile.Repositories[0].RecentCommits)
	})

	t.Run("Recent commits capped at ten", func(t *testing.T) {
		commits := make([]RawCommitNode, 25)
		for i := range commits {
			commits[i] = RawCommitNode{Message: "commit", Additions: 1, Deletions: 1}
		}
		raw := &RawUser{
			Repositories: RawRepositories{
				Nodes: []RawRepository{
					{
						Name: "busy-repo",
						DefaultBranchRef: &RawDefaultBranchRef{
							Target: &RawCommitTarget{
								History: &RawCommitHistory{TotalCount: 25, Nodes: commits},
							},
						},
					},
				},
			},
		}

		profile := NormalizeProfile(raw)

		require.Len(t, profile.Repositories, 1)
		assert.Equal(t, 25, profile.Repositories[0].CommitCount)
		assert.Len(t, profile.Repositories[0].RecentCommits, 10)
	})
}

func TestNormalizeProfilePrimaryLanguage(t *testing.T) {
	raw := &RawUser{
		Repositories: RawRepositories{
			Nodes: []RawRepository{
				{Name: "no-language"},
				{Name: "with-color", PrimaryLanguage: &RawPrimaryLanguage{Name: "Rust", Color: strPtr("#dea584")}},
				{Name: "without-color", PrimaryLanguage: &RawPrimaryLanguage{Name: "Python"}},
			},
		},
	}

	profile := NormalizeProfile(raw)

	require.Len(t, profile.Repositories, 3)
	assert.Nil(t, profile.Repositories[0].Language)
	assert.Nil(t, profile.Repositories[0].LanguageColor)
	assert.Equal(t, "Rust", *profile.Repositories[1].Language)
	assert.Equal(t, "#dea584", *profile.Repositories[1].LanguageColor)
	assert.Equal(t, "Python", *profile.Repositories[2].Language)
	assert.Equal(t, "#3572A5", *profile.Repositories[2].LanguageColor)
}

func TestNormalizeProfileContributions(t *testing.T) {
	t.Run("Missing collection defaults to empty", func(t *testing.T) {
		profile := NormalizeProfile(&RawUser{Login: "octocat"})

		assert.Equal(t, 0, profile.Contributions.Total)
		assert.Equal(t, 0, profile.Contributions.Commits)
		assert.NotNil(t, profile.Contributions.Heatmap)
		assert.Empty(t, profile.Contributions.Heatmap)
	})

	t.Run("Heatmap flattens calendar weeks", func(t *testing.T) {
		raw := &RawUser{
			ContributionsCollection: &RawContributions{
				TotalCommitContributions:      120,
				TotalPullRequestContributions: 30,
				TotalIssueContributions:       12,
				ContributionCalendar: &RawContributionCalendar{
					TotalContributions: 162,
					Weeks: []RawWeek{
						{ContributionDays: []RawContributionDay{
							{ContributionCount: 3, Date: "2026-01-05", Weekday: 1},
							{ContributionCount: 0, Date: "2026-01-06", Weekday: 2},
						}},
						{ContributionDays: []RawContributionDay{
							{ContributionCount: 7, Date: "2026-01-12", Weekday: 1},
						}},
					},
				},
			},
		}

		profile := NormalizeProfile(raw)

		assert.Equal(t, 162, profile.Contributions.Total)
		assert.Equal(t, 120, profile.Contributions.Commits)
		assert.Equal(t, 30, profile.Contributions.PullRequests)
		assert.Equal(t, 12, profile.Contributions.Issues)
		require.Len(t, profile.Contributions.Heatmap, 3)
		assert.Equal(t, models.HeatmapDay{Date: "2026-01-12", Count: 7, Weekday: 1}, profile.Contributions.Heatmap[2])
	})
}

func TestNormalizeProfileUserFields(t *testing.T) {
	raw := &RawUser{
		Login:     "octocat",
		Name:      strPtr("The Octocat"),
		AvatarURL: "https://avatars.githubusercontent.com/u/583231",
		CreatedAt: "2011-01-25T18:44:36Z",
		Followers: RawCount{TotalCount: 3938},
		Following: RawCount{TotalCount: 9},
		Repositories: RawRepositories{
			TotalCount: 8,
		},
	}

	profile := NormalizeProfile(raw)

	assert.Equal(t, "octocat", profile.User.Login)
	assert.Equal(t, "The Octocat", *profile.User.Name)
	assert.Nil(t, profile.User.Bio)
	assert.Equal(t, 3938, profile.User.Followers)
	assert.Equal(t, 9, profile.User.Following)
	// Account-wide count is independent of the fetched window
	assert.Equal(t, 8, profile.Stats.TotalRepos)
	assert.Empty(t, profile.Repositories)
}
