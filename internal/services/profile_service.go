package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gitfolio/gitfolio/internal/models"
	"github.com/gitfolio/gitfolio/pkg/logger"
)

// ProfileFetcher retrieves the raw provider payload for a username.
type ProfileFetcher interface {
	FetchUser(ctx context.Context, username string) (*RawUser, error)
}

// ProfileCache is the subset of the cache repository the orchestrator needs.
type ProfileCache interface {
	Get(username string) (*models.ProfileCacheEntry, error)
	Upsert(username, payload string, updatedAt time.Time) error
}

// ProfileService sequences cache lookup, upstream fetch, normalization, and
// the fire-and-forget cache write for one profile request.
type ProfileService struct {
	cache   ProfileCache
	fetcher ProfileFetcher
	ttl     time.Duration
	now     func() time.Time
}

func NewProfileService(cache ProfileCache, fetcher ProfileFetcher, ttlHours int) *ProfileService {
	return &ProfileService{
		cache:   cache,
		fetcher: fetcher,
		ttl:     time.Duration(ttlHours) * time.Hour,
		now:     time.Now,
	}
}

// GetProfile returns the profile for a username, serving from cache when a
// fresh entry exists and forceRefresh is not set. Upstream errors propagate
// unchanged; a cache write failure never does.
func (s *ProfileService) GetProfile(ctx context.Context, username string, forceRefresh bool) (*models.ProfileResponse, error) {
	if !forceRefresh {
		if cached := s.lookupCache(username); cached != nil {
			return &models.ProfileResponse{GitHubProfile: *cached, FromCache: true}, nil
		}
	}

	raw, err := s.fetcher.FetchUser(ctx, username)
	if err != nil {
		return nil, err
	}

	profile := NormalizeProfile(raw)

	// The response never waits on the cache write; losing it only costs a
	// future cache miss.
	go s.writeCache(username, profile)

	return &models.ProfileResponse{GitHubProfile: *profile, FromCache: false}, nil
}

// lookupCache returns the cached profile when a fresh entry exists. Expired
// and missing entries are both treated as misses.
func (s *ProfileService) lookupCache(username string) *models.GitHubProfile {
	entry, err := s.cache.Get(username)
	if err != nil {
		return nil
	}

	if s.now().Sub(entry.UpdatedAt) > s.ttl {
		return nil
	}

	var profile models.GitHubProfile
	if err := json.Unmarshal([]byte(entry.Payload), &profile); err != nil {
		logger.WithError(err).WithField("username", username).Warn("Discarding unreadable cache entry")
		return nil
	}

	return &profile
}

func (s *ProfileService) writeCache(username string, profile *models.GitHubProfile) {
	payload, err := json.Marshal(profile)
	if err != nil {
		logger.WithError(err).WithField("username", username).Error("Failed to encode profile for cache")
		return
	}

	if err := s.cache.Upsert(username, string(payload), s.now()); err != nil {
		logger.WithError(err).WithField("username", username).Error("Failed to write profile cache")
	}
}
