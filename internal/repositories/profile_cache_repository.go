package repositories

import (
	"database/sql"
	"time"

	"github.com/gitfolio/gitfolio/internal/models"
)

type ProfileCacheRepository struct {
	db *sql.DB
}

func NewProfileCacheRepository(db *sql.DB) *ProfileCacheRepository {
	return &ProfileCacheRepository{
		db: db,
	}
}

// Get retrieves a cache entry by username. The key is normalized to
// lowercase; a missing row returns sql.ErrNoRows.
func (r *ProfileCacheRepository) Get(username string) (*models.ProfileCacheEntry, error) {
	query := `SELECT username, payload, updated_at FROM profile_cache WHERE username = ?`

	var entry models.ProfileCacheEntry
	err := r.db.QueryRow(query, models.CacheKey(username)).Scan(
		&entry.Username,
		&entry.Payload,
		&entry.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &entry, nil
}

// Upsert writes a cache entry, overwriting any existing row for the same
// username. The single-statement upsert keeps concurrent readers from ever
// observing a partially written row.
func (r *ProfileCacheRepository) Upsert(username, payload string, updatedAt time.Time) error {
	query := `
		INSERT INTO profile_cache (username, payload, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(username) DO UPDATE SET
			payload = excluded.payload,
			updated_at = excluded.updated_at
	`

	_, err := r.db.Exec(query, models.CacheKey(username), payload, updatedAt)
	return err
}
