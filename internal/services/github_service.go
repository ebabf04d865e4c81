package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/gitfolio/gitfolio/pkg/logger"
	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"
)

const githubGraphQLURL = "https://api.github.com/graphql"

const (
	// Bounded window of repositories fetched per profile
	repoWindowSize = 20
	// Per-repository language fetches on the REST fallback path
	restLanguageFanout = 10
)

// userQuery requests the profile, the 20 most recently updated owned
// repositories with languages and default-branch history, and the
// contribution calendar in a single round trip.
const userQuery = `
query($username: String!) {
  user(login: $username) {
    login
    name
    bio
    avatarUrl
    location
    company
    createdAt
    followers {
      totalCount
    }
    following {
      totalCount
    }
    repositories(first: 20, orderBy: {field: UPDATED_AT, direction: DESC}, ownerAffiliations: OWNER) {
      totalCount
      nodes {
        name
        description
        url
        stargazerCount
        forkCount
        primaryLanguage {
          name
          color
        }
        languages(first: 5) {
          edges {
            size
            node {
              name
              color
            }
          }
        }
        createdAt
        updatedAt
        pushedAt
        isPrivate
        defaultBranchRef {
          target {
            ... on Commit {
              history(first: 100) {
                totalCount
                nodes {
                  committedDate
                  message
                  additions
                  deletions
                }
              }
            }
          }
        }
      }
    }
    contributionsCollection {
      totalCommitContributions
      totalPullRequestContributions
      totalIssueContributions
      contributionCalendar {
        totalContributions
        weeks {
          contributionDays {
            contributionCount
            date
            weekday
          }
        }
      }
    }
  }
}
`

type graphQLRequest struct {
	Query     string            `json:"query"`
	Variables map[string]string `json:"variables"`
}

type graphQLError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type graphQLResponse struct {
	Data struct {
		User *RawUser `json:"user"`
	} `json:"data"`
	Errors []graphQLError `json:"errors"`
}

// GitHubService retrieves raw profile data from GitHub. With a configured
// token it issues a single GraphQL query; without one it falls back to a
// sequence of unauthenticated REST calls. Both paths share one retrying
// transport, so every upstream call gets the same backoff and content-type
// handling.
type GitHubService struct {
	token      string
	graphqlURL string
	httpClient *http.Client
	restClient *github.Client
}

func NewGitHubService(token string) *GitHubService {
	base := &http.Client{
		Transport: newRetryTransport(nil),
		Timeout:   30 * time.Second,
	}

	service := &GitHubService{
		token:      token,
		graphqlURL: githubGraphQLURL,
		httpClient: base,
		restClient: github.NewClient(base),
	}

	if token != "" {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		service.httpClient = oauth2.NewClient(ctx, ts)
	}

	return service
}

// FetchUser retrieves the raw provider payload for a username, preferring the
// richer GraphQL query when a token is configured.
func (s *GitHubService) FetchUser(ctx context.Context, username string) (*RawUser, error) {
	if s.token != "" {
		return s.fetchGraphQL(ctx, username)
	}
	return s.fetchREST(ctx, username)
}

func (s *GitHubService) fetchGraphQL(ctx context.Context, username string) (*RawUser, error) {
	body, err := json.Marshal(graphQLRequest{
		Query:     userQuery,
		Variables: map[string]string{"username": username},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode GraphQL request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.graphqlURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GraphQL request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests {
		if rateErr := rateLimitFromHeaders(resp); rateErr != nil {
			return nil, rateErr
		}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GitHub GraphQL API returned status %d", resp.StatusCode)
	}

	var envelope graphQLResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("failed to decode GraphQL response: %w", err)
	}

	if len(envelope.Errors) > 0 {
		for _, gqlErr := range envelope.Errors {
			if gqlErr.Type == "NOT_FOUND" {
				return nil, ErrUserNotFound
			}
		}
		return nil, fmt.Errorf("GraphQL query failed: %s", envelope.Errors[0].Message)
	}

	if envelope.Data.User == nil {
		return nil, ErrUserNotFound
	}

	return envelope.Data.User, nil
}

func (s *GitHubService) fetchREST(ctx context.Context, username string) (*RawUser, error) {
	user, _, err := s.restClient.Users.Get(ctx, username)
	if err != nil {
		return nil, mapRESTError(err)
	}

	opt := &github.RepositoryListOptions{
		Type:        "owner",
		Sort:        "updated",
		Direction:   "desc",
		ListOptions: github.ListOptions{PerPage: repoWindowSize},
	}
	repos, _, err := s.restClient.Repositories.List(ctx, username, opt)
	if err != nil {
		return nil, mapRESTError(err)
	}

	breakdowns := s.fetchLanguageBreakdowns(ctx, username, repos)

	nodes := make([]RawRepository, 0, len(repos))
	for i, repo := range repos {
		node := RawRepository{
			Name:           repo.GetName(),
			Description:    repo.Description,
			URL:            repo.GetHTMLURL(),
			StargazerCount: repo.GetStargazersCount(),
			ForkCount:      repo.GetForksCount(),
			CreatedAt:      formatTimestamp(repo.GetCreatedAt()),
			UpdatedAt:      formatTimestamp(repo.GetUpdatedAt()),
			PushedAt:       formatTimestamp(repo.GetPushedAt()),
			IsPrivate:      repo.GetPrivate(),
		}

		if lang := repo.GetLanguage(); lang != "" {
			color := LanguageColor(lang)
			node.PrimaryLanguage = &RawPrimaryLanguage{Name: lang, Color: &color}
		}

		if i < len(breakdowns) && breakdowns[i] != nil {
			node.Languages.Edges = languageEdges(breakdowns[i])
		}

		nodes = append(nodes, node)
	}

	return &RawUser{
		Login:     user.GetLogin(),
		Name:      user.Name,
		Bio:       user.Bio,
		AvatarURL: user.GetAvatarURL(),
		Location:  user.Location,
		Company:   user.Company,
		CreatedAt: formatTimestamp(user.GetCreatedAt()),
		Followers: RawCount{TotalCount: user.GetFollowers()},
		Following: RawCount{TotalCount: user.GetFollowing()},
		Repositories: RawRepositories{
			TotalCount: user.GetPublicRepos(),
			Nodes:      nodes,
		},
		// Contribution data is not available without a token
		ContributionsCollection: nil,
	}, nil
}

// fetchLanguageBreakdowns fans out per-repository language fetches for the
// first restLanguageFanout repositories. A failed fetch degrades that
// repository to an empty breakdown instead of failing the whole request.
func (s *GitHubService) fetchLanguageBreakdowns(ctx context.Context, username string, repos []*github.Repository) []map[string]int {
	limit := restLanguageFanout
	if len(repos) < limit {
		limit = len(repos)
	}

	breakdowns := make([]map[string]int, len(repos))
	var wg sync.WaitGroup
	for i := 0; i < limit; i++ {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			languages, _, err := s.restClient.Repositories.ListLanguages(ctx, username, name)
			if err != nil {
				logger.WithError(err).WithField("repository", name).Warn("Failed to fetch language breakdown")
				return
			}
			breakdowns[i] = languages
		}(i, repos[i].GetName())
	}
	wg.Wait()

	return breakdowns
}

// languageEdges converts a REST language byte map into edges ordered by size
// descending, name ascending for equal sizes, so the normalizer sees a
// deterministic first-seen order.
func languageEdges(breakdown map[string]int) []RawLanguageEdge {
	names := make([]string, 0, len(breakdown))
	for name := range breakdown {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if breakdown[names[i]] != breakdown[names[j]] {
			return breakdown[names[i]] > breakdown[names[j]]
		}
		return names[i] < names[j]
	})

	edges := make([]RawLanguageEdge, 0, len(names))
	for _, name := range names {
		color := LanguageColor(name)
		edges = append(edges, RawLanguageEdge{
			Size: int64(breakdown[name]),
			Node: RawLanguageNode{Name: name, Color: &color},
		})
	}
	return edges
}

func mapRESTError(err error) error {
	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return &RateLimitError{
			Remaining: rateErr.Rate.Remaining,
			Reset:     rateErr.Rate.Reset.Time,
		}
	}

	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		rateLimit := &RateLimitError{}
		if abuseErr.RetryAfter != nil {
			rateLimit.Reset = time.Now().Add(*abuseErr.RetryAfter)
		}
		return rateLimit
	}

	var respErr *github.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		switch respErr.Response.StatusCode {
		case http.StatusNotFound:
			return ErrUserNotFound
		case http.StatusForbidden, http.StatusTooManyRequests:
			if rateErr := rateLimitFromHeaders(respErr.Response); rateErr != nil {
				return rateErr
			}
		}
	}

	return fmt.Errorf("GitHub API request failed: %w", err)
}

// rateLimitFromHeaders builds a RateLimitError from the X-RateLimit response
// headers, or returns nil when the response is not quota-related.
func rateLimitFromHeaders(resp *http.Response) *RateLimitError {
	remaining := resp.Header.Get("X-RateLimit-Remaining")
	if resp.StatusCode != http.StatusTooManyRequests && remaining != "0" {
		return nil
	}

	rateLimit := &RateLimitError{}
	if n, err := strconv.Atoi(remaining); err == nil {
		rateLimit.Remaining = n
	}
	if reset, err := strconv.ParseInt(resp.Header.Get("X-RateLimit-Reset"), 10, 64); err == nil && reset > 0 {
		rateLimit.Reset = time.Unix(reset, 0)
	}
	return rateLimit
}

func formatTimestamp(ts github.Timestamp) string {
	if ts.IsZero() {
		return ""
	}
	return ts.UTC().Format(time.RFC3339)
}
