package repo

import (
	"context"
	"errors"
	"time"

	"github.com/bytedance/sonic"
	"github.com/quixio/test-rig-demo-test-rig-simulator/internal/modules/model"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

const (
	testCachePrefix = "test-manager:test:"
	testGenPrefix   = "test-manager:test-gen:"
)

// cachedTestRepo is a read-through cache in front of a TestRepo. Reads by id
// are served from Redis when present; every write drops the cached copy and
// bumps a per-test generation key. A miss populates the cache only if the
// generation is unchanged between the underlying read and the SET, so a read
// that raced a write never caches the pre-write document.
// Cache failures degrade to the underlying repo.
type cachedTestRepo struct {
	TestRepo
	rdb *redis.Client
	ttl time.Duration
	log *zap.Logger
}

func NewCachedTestRepo(next TestRepo, rdb *redis.Client, ttl time.Duration, log *zap.Logger) TestRepo {
	return &cachedTestRepo{TestRepo: next, rdb: rdb, ttl: ttl, log: log}
}

func testCacheKey(testID string) string { return testCachePrefix + testID }
func testGenKey(testID string) string { return testGenPrefix + testID }

func (r *cachedTestRepo) GetByID(ctx context.Context, testID string) (*model.Test, error) {
	raw, err := r.rdb.Get(ctx, testCacheKey(testID)).Bytes()
	if err == nil {
		var t model.Test
		if err := sonic.Unmarshal(raw, &t); err == nil {
			return &t, nil
		}
		r.log.Warn("drop undecodable cached test", zap.String("test_id", testID))
	} else if !errors.Is(err, redis.Nil) {
		r.log.Warn("redis get failed", zap.String("test_id", testID), zap.Error(err))
	}

	var (
		t       *model.Test
		readErr error
		read    bool
	)
	err = r.rdb.Watch(ctx, func(tx *redis.Tx) error {
		t, readErr = r.TestRepo.GetByID(ctx, testID)
		read = true
		if readErr != nil {
			return nil
		}
		b, err := sonic.Marshal(t)
		if err != nil {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, testCacheKey(testID), b, r.ttl)
			return nil
		})
		return err
	}, testGenKey(testID))

	switch {
	case !read:
		r.log.Warn("redis watch failed", zap.String("test_id", testID), zap.Error(err))
		return r.TestRepo.GetByID(ctx, testID)
	case readErr != nil:
		return nil, readErr
	case errors.Is(err, redis.TxFailedErr):
		r.log.Debug("skip cache populate after concurrent write", zap.String("test_id", testID))
	case err != nil:
		r.log.Warn("redis set failed", zap.String("test_id", testID), zap.Error(err))
	}
	return t, nil
}

func (r *cachedTestRepo) invalidate(ctx context.Context, testID string) {
	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, testGenKey(testID))
		pipe.Expire(ctx, testGenKey(testID), r.genTTL())
		pipe.Del(ctx, testCacheKey(testID))
		return nil
	})
	if err != nil {
		r.log.Warn("redis invalidate failed", zap.String("test_id", testID), zap.Error(err))
	}
}

// genTTL outlives any read that started before the bump.
func (r *cachedTestRepo) genTTL() time.Duration {
	if r.ttl < time.Minute {
		return time.Minute
	}
	return r.ttl
}

func (r *cachedTestRepo) Update(ctx context.Context, testID string, fields bson.M) (*model.Test, error) {
	defer r.invalidate(ctx, testID)
	return r.TestRepo.Update(ctx, testID, fields)
}

func (r *cachedTestRepo) Delete(ctx context.Context, testID string) error {
	defer r.invalidate(ctx, testID)
	return r.TestRepo.Delete(ctx, testID)
}

func (r *cachedTestRepo) SetFile(ctx context.Context, testID string, f model.File) error {
	defer r.invalidate(ctx, testID)
	return r.TestRepo.SetFile(ctx, testID, f)
}

func (r *cachedTestRepo) UnsetFile(ctx context.Context, testID string, fileID string) (bool, error) {
	defer r.invalidate(ctx, testID)
	return r.TestRepo.UnsetFile(ctx, testID, fileID)
}

func (r *cachedTestRepo) PushLink(ctx context.Context, testID string, l model.Link) error {
	defer r.invalidate(ctx, testID)
	return r.TestRepo.PushLink(ctx, testID, l)
}

func (r *cachedTestRepo) PullLink(ctx context.Context, testID string, linkID string) (bool, error) {
	defer r.invalidate(ctx, testID)
	return r.TestRepo.PullLink(ctx, testID, linkID)
}
