package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gitfolio/gitfolio/internal/models"
	"github.com/gitfolio/gitfolio/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCache struct {
	mu      sync.Mutex
	entries map[string]*models.ProfileCacheEntry
}

func (s *stubCache) Get(username string) (*models.ProfileCacheEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[models.CacheKey(username)]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return entry, nil
}

func (s *stubCache) Upsert(username, payload string, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[models.CacheKey(username)] = &models.ProfileCacheEntry{
		Username:  models.CacheKey(username),
		Payload:   payload,
		UpdatedAt: updatedAt,
	}
	return nil
}

type stubFetcher struct {
	mu    sync.Mutex
	calls int
	raw   *services.RawUser
	err   error
}

func (s *stubFetcher) FetchUser(ctx context.Context, username string) (*services.RawUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.raw, nil
}

func (s *stubFetcher) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func newTestRouter(fetcher *stubFetcher) *gin.Engine {
	gin.SetMode(gin.TestMode)

	cache := &stubCache{entries: make(map[string]*models.ProfileCacheEntry)}
	profileService := services.NewProfileService(cache, fetcher, 6)
	handler := NewProfileHandler(profileService)

	router := gin.New()
	router.POST("/api/profile", handler.GetProfile)
	return router
}

func postProfile(router *gin.Engine, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/profile", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestGetProfileValidation(t *testing.T) {
	testCases := []struct {
		name string
		body string
	}{
		{name: "Empty username", body: `{"username": ""}`},
		{name: "Whitespace username", body: `{"username": "   "}`},
		{name: "Missing username", body: `{}`},
		{name: "Malformed body", body: `{"username"`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fetcher := &stubFetcher{}
			router := newTestRouter(fetcher)

			w := postProfile(router, tc.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.JSONEq(t, `{"error": "Username is required"}`, w.Body.String())
			// Rejected before any upstream I/O
			assert.Equal(t, 0, fetcher.callCount())
		})
	}
}

func TestGetProfileSuccess(t *testing.T) {
	fetcher := &stubFetcher{raw: &services.RawUser{
		Login: "octocat",
		Repositories: services.RawRepositories{
			TotalCount: 2,
			Nodes: []services.RawRepository{
				{Name: "repo-a", StargazerCount: 10, ForkCount: 1},
			},
		},
	}}
	router := newTestRouter(fetcher)

	w := postProfile(router, `{"username": "octocat"}`)

	require.Equal(t, http.StatusOK, w.Code)

	var response models.ProfileResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "octocat", response.User.Login)
	assert.Equal(t, 10, response.Stats.TotalStars)
	assert.False(t, response.FromCache)
}

func TestGetProfileErrorMapping(t *testing.T) {
	t.Run("User not found", func(t *testing.T) {
		fetcher := &stubFetcher{err: services.ErrUserNotFound}
		router := newTestRouter(fetcher)

		w := postProfile(router, `{"username": "doesnotexist123456"}`)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"error": "User not found"}`, w.Body.String())
	})

	t.Run("Rate limited includes reset metadata", func(t *testing.T) {
		reset := time.Now().Add(time.Hour).Truncate(time.Second)
		fetcher := &stubFetcher{err: &services.RateLimitError{Remaining: 0, Reset: reset}}
		router := newTestRouter(fetcher)

		w := postProfile(router, `{"username": "octocat"}`)

		assert.Equal(t, http.StatusTooManyRequests, w.Code)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "GitHub API rate limit exceeded", body["error"])
		assert.NotEmpty(t, body["message"])
		assert.EqualValues(t, 0, body["rateLimitRemaining"])
		assert.EqualValues(t, reset.Unix(), body["rateLimitReset"])
	})

	t.Run("Generic upstream failure", func(t *testing.T) {
		fetcher := &stubFetcher{err: assert.AnError}
		router := newTestRouter(fetcher)

		w := postProfile(router, `{"username": "octocat"}`)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"error": "Failed to fetch GitHub data"}`, w.Body.String())
	})
}

func TestGetProfileServesFromCacheOnSecondCall(t *testing.T) {
	fetcher := &stubFetcher{raw: &services.RawUser{Login: "octocat"}}
	router := newTestRouter(fetcher)

	first := postProfile(router, `{"username": "octocat"}`)
	require.Equal(t, http.StatusOK, first.Code)

	assert.Eventually(t, func() bool {
		w := postProfile(router, `{"username": "octocat"}`)
		var response models.ProfileResponse
		if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
			return false
		}
		return response.FromCache
	}, time.Second, 10*time.Millisecond)
}
