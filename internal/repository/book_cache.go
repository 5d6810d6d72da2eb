package repository

import (
	"context"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/deppfellow/bookshelf/internal/model/book"
)

// CachedBookRepository caches FindUnique hits of another BookStore in Redis.
//
// Misses are never cached. Update and Delete bump a per-book generation and
// drop the key once the wrapped store has been called; a read only fills the
// cache if the generation it saw before reading the store is still current.
// A failing Redis is logged and bypassed.
type CachedBookRepository struct {
	next   BookStore
	client *redis.Client
	ttl    time.Duration
	logger *zerolog.Logger
}

func NewCachedBookRepository(next BookStore, client *redis.Client, ttl time.Duration, logger *zerolog.Logger) *CachedBookRepository {
	return &CachedBookRepository{
		next:   next,
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func bookCacheKey(id int64) string {
	return fmt.Sprintf("book:%d", id)
}

func bookGenerationKey(id int64) string {
	return fmt.Sprintf("book:%d:gen", id)
}

func (r *CachedBookRepository) FindMany(ctx context.Context) ([]book.Book, error) {
	return r.next.FindMany(ctx)
}

func (r *CachedBookRepository) FindUnique(ctx context.Context, id int64) (*book.Book, error) {
	key := bookCacheKey(id)
	genKey := bookGenerationKey(id)

	generation, cacheable := "", false
	values, err := r.client.MGet(ctx, key, genKey).Result()
	if err != nil {
		r.logger.Warn().Err(err).Str("key", key).Msg("book cache read failed")
	} else {
		cacheable = true
		generation, _ = values[1].(string)

		if data, ok := values[0].(string); ok {
			var cached book.Book
			if err := jsoniter.ConfigFastest.UnmarshalFromString(data, &cached); err == nil {
				return &cached, nil
			}
			r.logger.Warn().Str("key", key).Msg("discarding undecodable cached book")
		}
	}

	b, err := r.next.FindUnique(ctx, id)
	if err != nil || b == nil {
		return b, err
	}

	if cacheable {
		r.store(ctx, id, generation, b)
	}

	return b, nil
}

func (r *CachedBookRepository) Create(ctx context.Context, title string) (*book.Book, error) {
	return r.next.Create(ctx, title)
}

func (r *CachedBookRepository) Update(ctx context.Context, id int64, title string) (*book.Book, error) {
	b, err := r.next.Update(ctx, id, title)
	r.invalidate(ctx, id)
	return b, err
}

func (r *CachedBookRepository) Delete(ctx context.Context, id int64) error {
	err := r.next.Delete(ctx, id)
	r.invalidate(ctx, id)
	return err
}

// store writes b under its key unless the book was invalidated after
// generation was read.
func (r *CachedBookRepository) store(ctx context.Context, id int64, generation string, b *book.Book) {
	key := bookCacheKey(id)
	genKey := bookGenerationKey(id)

	data, err := jsoniter.ConfigFastest.Marshal(b)
	if err != nil {
		r.logger.Warn().Err(err).Str("key", key).Msg("encoding book for cache failed")
		return
	}

	err = r.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, genKey).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != generation {
			return errStaleRead
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, r.ttl)
			return nil
		})
		return err
	}, genKey)

	switch {
	case err == nil:
	case errors.Is(err, errStaleRead), errors.Is(err, redis.TxFailedErr):
		r.logger.Debug().Str("key", key).Msg("skipping cache fill for invalidated book")
	default:
		r.logger.Warn().Err(err).Str("key", key).Msg("book cache write failed")
	}
}

func (r *CachedBookRepository) invalidate(ctx context.Context, id int64) {
	key := bookCacheKey(id)
	genKey := bookGenerationKey(id)

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, genKey)
		if r.ttl > 0 {
			pipe.Expire(ctx, genKey, r.ttl)
		}
		pipe.Del(ctx, key)
		return nil
	})
	if err != nil {
		r.logger.Warn().Err(err).Str("key", key).Msg("book cache invalidation failed")
	}
}

var errStaleRead = errors.New("book invalidated during read")
