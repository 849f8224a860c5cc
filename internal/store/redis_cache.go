package store

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/serroba/registry-client/internal/submission"
)

// RedisCacheRepository wraps a Repository with Redis caching for reads.
type RedisCacheRepository struct {
	store  submission.Repository
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisCacheRepository creates a new Redis-cached repository decorator.
func NewRedisCacheRepository(
	store submission.Repository, client *redis.Client, ttl time.Duration,
) *RedisCacheRepository {
	return &RedisCacheRepository{
		store:  store,
		client: client,
		prefix: "submission:",
		ttl:    ttl,
	}
}

// Save stores a submission in the underlying store and updates the cache.
func (r *RedisCacheRepository) Save(ctx context.Context, s *submission.Submission) error {
	if err := r.store.Save(ctx, s); err != nil {
		return err
	}

	r.cache(ctx, s)

	return nil
}

// GetByID retrieves a submission, checking the cache first.
func (r *RedisCacheRepository) GetByID(ctx context.Context, id submission.ID) (*submission.Submission, error) {
	if s, err := r.getFromCache(ctx, id); err == nil {
		return s, nil
	}

	s, err := r.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	r.cache(ctx, s)

	return s, nil
}

// UpdateStatus updates the underlying store and evicts the cached copy.
// The worker and the API run in different processes, so the next read
// goes to the store rather than trusting a partial cache update.
func (r *RedisCacheRepository) UpdateStatus(ctx context.Context, id submission.ID, outcome submission.Outcome) error {
	if err := r.store.UpdateStatus(ctx, id, outcome); err != nil {
		return err
	}

	return r.client.Del(ctx, r.prefix+string(id)).Err()
}

func (r *RedisCacheRepository) getFromCache(ctx context.Context, id submission.ID) (*submission.Submission, error) {
	result, err := r.client.HGetAll(ctx, r.prefix+string(id)).Result()
	if err != nil {
		return nil, err
	}

	if len(result) == 0 {
		return nil, submission.ErrNotFound
	}

	return &submission.Submission{
		ID:         submission.ID(result["id"]),
		DocID:      result["doc_id"],
		Status:     submission.Status(result["status"]),
		RegistryID: result["registry_id"],
		Error:      result["error"],
		ClientIP:   result["client_ip"],
		CreatedAt:  parseNanos(result["created_at"]),
		UpdatedAt:  parseNanos(result["updated_at"]),
	}, nil
}

func (r *RedisCacheRepository) cache(ctx context.Context, s *submission.Submission) {
	pipe := r.client.Pipeline()
	key := r.prefix + string(s.ID)

	pipe.HSet(ctx, key, map[string]interface{}{
		"id":          string(s.ID),
		"doc_id":      s.DocID,
		"status":      string(s.Status),
		"registry_id": s.RegistryID,
		"error":       s.Error,
		"client_ip":   s.ClientIP,
		"created_at":  s.CreatedAt.UnixNano(),
		"updated_at":  s.UpdatedAt.UnixNano(),
	})

	if r.ttl > 0 {
		pipe.Expire(ctx, key, r.ttl)
	}

	_, _ = pipe.Exec(ctx)
}

// Shutdown is a no-op for RedisCacheRepository (client managed externally).
func (r *RedisCacheRepository) Shutdown() error {
	return nil
}

func parseNanos(v string) time.Time {
	nanos, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return time.Time{}
	}

	return time.Unix(0, nanos)
}

// Compile-time check.
var _ submission.Repository = (*RedisCacheRepository)(nil)
