package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/calepin/calepin/internal/cache"
	"github.com/calepin/calepin/internal/db"
	"github.com/calepin/calepin/internal/model"
	"github.com/calepin/calepin/internal/plugin"
	"github.com/calepin/calepin/internal/util"
	"github.com/calepin/calepin/internal/util/compression"
)

// CachingPostRepository layers a TTL cache over another repository: the
// published listing is held in memory, assembled posts are persisted in the
// local database (compressed JSON) so restarts don't re-fetch everything.
type CachingPostRepository struct { // implements PostRepository
	inner PostRepository

	db         db.DB
	compressor compression.Compressor
	ttl        time.Duration

	mu        sync.RWMutex
	summaries cache.Expiring[[]model.PostSummary]
	primed    bool

	reloadNotifier func(slug string)
}

func NewCachingPostRepository(inner PostRepository, database db.DB, ttl time.Duration) *CachingPostRepository {
	return &CachingPostRepository{
		inner: inner,

		db:         database,
		compressor: compression.ZstdCompressor{},
		ttl:        ttl,
	}
}

// SetReloadNotifier sets a function called with a post's slug whenever the
// refresh loop detects that its content changed upstream.
func (r *CachingPostRepository) SetReloadNotifier(notifier func(slug string)) {
	r.reloadNotifier = notifier
}

func (r *CachingPostRepository) RegisterPlugin(p plugin.Renderer) {
	r.inner.RegisterPlugin(p)
}

func (r *CachingPostRepository) AvailablePlugins() []string {
	return r.inner.AvailablePlugins()
}

func (r *CachingPostRepository) ListPublished(ctx context.Context) ([]model.PostSummary, error) {
	r.mu.RLock()
	if r.primed && r.summaries.Fresh(r.ttl) {
		summaries := r.summaries.Value
		r.mu.RUnlock()
		return summaries, nil
	}
	r.mu.RUnlock()

	summaries, err := r.inner.ListPublished(ctx)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.summaries = cache.NewExpiring(summaries)
	r.primed = true
	r.mu.Unlock()

	return summaries, nil
}

func (r *CachingPostRepository) GetBySlug(ctx context.Context, slug string) (*model.Post, error) {
	if post, ok := r.readCached(slug); ok {
		return post, nil
	}

	post, err := r.inner.GetBySlug(ctx, slug)
	if errors.Is(err, ErrNotFound) {
		// Drop whatever stale row the slug may still have.
		if _, derr := r.db.Exec(`DELETE FROM cached_posts WHERE slug = ?`, slug); derr != nil {
			repoLogger.Error().Err(derr).Str("slug", slug).Msg("Error deleting stale cache row")
		}
		return nil, err
	} else if err != nil {
		return nil, err
	}

	if err := r.store(post); err != nil {
		repoLogger.Error().Err(err).Str("slug", slug).Msg("Error writing post cache")
	}
	return post, nil
}

// StartRefreshLoop re-fetches the published listing and every cached post on
// the TTL cadence, notifying on content changes. It blocks until ctx is done.
func (r *CachingPostRepository) StartRefreshLoop(ctx context.Context) {
	interval := r.ttl
	if interval <= 0 {
		interval = time.Hour
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.refresh(ctx)
		}
	}
}

func (r *CachingPostRepository) refresh(ctx context.Context) {
	summaries, err := r.inner.ListPublished(ctx)
	if err != nil {
		repoLogger.Error().Err(err).Msg("Error refreshing published listing")
		return
	}

	r.mu.Lock()
	r.summaries = cache.NewExpiring(summaries)
	r.primed = true
	r.mu.Unlock()

	published := make(map[string]bool, len(summaries))
	for _, s := range summaries {
		published[s.Slug] = true
	}

	cached, err := r.cachedHashes()
	if err != nil {
		repoLogger.Error().Err(err).Msg("Error reading cached post hashes")
		return
	}

	for slug, oldHash := range cached {
		if !published[slug] {
			repoLogger.Info().Str("slug", slug).Msg("Post no longer published, evicting")
			if _, err := r.db.Exec(`DELETE FROM cached_posts WHERE slug = ?`, slug); err != nil {
				repoLogger.Error().Err(err).Str("slug", slug).Msg("Error evicting post")
			}
			continue
		}

		post, err := r.inner.GetBySlug(ctx, slug)
		if err != nil {
			repoLogger.Error().Err(err).Str("slug", slug).Msg("Error refreshing post")
			continue
		}

		if err := r.store(post); err != nil {
			repoLogger.Error().Err(err).Str("slug", slug).Msg("Error writing post cache")
			continue
		}

		if newHash, _, err := r.rowMeta(slug); err == nil && newHash != oldHash {
			repoLogger.Info().Str("slug", slug).Msg("Post content changed, reloading")
			if r.reloadNotifier != nil {
				go r.reloadNotifier(slug)
			}
		}
	}
}

func (r *CachingPostRepository) readCached(slug string) (*model.Post, bool) {
	var compressed []byte
	var fetchedAt time.Time

	row := r.db.Get().QueryRow(`SELECT content, fetched_at FROM cached_posts WHERE slug = ?`, slug)
	if err := row.Scan(&compressed, &fetchedAt); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			repoLogger.Error().Err(err).Str("slug", slug).Msg("Error reading post cache")
		}
		return nil, false
	}

	if r.ttl > 0 && time.Since(fetchedAt) >= r.ttl {
		return nil, false
	}

	encoded, err := r.compressor.Decompress(compressed)
	if err != nil {
		// Rows written before the zstd switch are gzip.
		encoded, err = compression.GzipCompressor{}.Decompress(compressed)
		if err != nil {
			repoLogger.Error().Err(err).Str("slug", slug).Msg("Error decompressing cached post")
			return nil, false
		}
	}

	var post model.Post
	if err := json.Unmarshal(encoded, &post); err != nil {
		repoLogger.Error().Err(err).Str("slug", slug).Msg("Error decoding cached post")
		return nil, false
	}
	return &post, true
}

func (r *CachingPostRepository) store(post *model.Post) error {
	encoded, err := json.Marshal(post)
	if err != nil {
		return fmt.Errorf("encoding post: %w", err)
	}

	compressed, err := r.compressor.Compress(encoded)
	if err != nil {
		return fmt.Errorf("compressing post: %w", err)
	}

	_, err = r.db.Exec(`
		INSERT OR REPLACE INTO cached_posts (slug, title, content, content_hash, fetched_at)
		VALUES (?, ?, ?, ?, ?)`,
		post.Slug, post.Title, compressed, util.ContentHash(encoded), time.Now(),
	)
	return err
}

func (r *CachingPostRepository) cachedHashes() (map[string]string, error) {
	rows, err := r.db.Query(`SELECT slug, content_hash FROM cached_posts`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	hashes := make(map[string]string)
	for rows.Next() {
		var slug, hash string
		if err := rows.Scan(&slug, &hash); err != nil {
			return nil, err
		}
		hashes[slug] = hash
	}
	return hashes, rows.Err()
}

func (r *CachingPostRepository) rowMeta(slug string) (hash string, fetchedAt time.Time, err error) {
	row := r.db.Get().QueryRow(`SELECT content_hash, fetched_at FROM cached_posts WHERE slug = ?`, slug)
	err = row.Scan(&hash, &fetchedAt)
	return hash, fetchedAt, err
}
