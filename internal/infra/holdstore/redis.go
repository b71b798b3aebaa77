// Package holdstore keeps transient slot holds in Redis. A hold claims every
// granularity bucket its time range covers; all buckets are claimed
// atomically by a Lua script and carry the same TTL, so abandoned holds
// vanish on their own and are never persisted.
package holdstore

import (
	"context"
	"fmt"
	"time"

	"beautybook/internal/domain/schedule"
	"beautybook/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	ErrSlotHeld    = errs.New("slot is already held")
	ErrHoldExpired = errs.New("hold no longer exists")
)

// claimScript sets every key to the hold token iff none of them exist.
var claimScript = redis.NewScript(`
for i = 1, #KEYS do
	if redis.call('EXISTS', KEYS[i]) == 1 then
		return 0
	end
end
for i = 1, #KEYS do
	redis.call('SET', KEYS[i], ARGV[1], 'PX', ARGV[2])
end
return 1
`)

// releaseScript deletes only buckets still owned by the token, so a hold
// that expired and was re-claimed by someone else is left alone.
var releaseScript = redis.NewScript(`
local n = 0
for i = 1, #KEYS do
	if redis.call('GET', KEYS[i]) == ARGV[1] then
		redis.call('DEL', KEYS[i])
		n = n + 1
	end
end
return n
`)

// Hold is the caller's handle on a claimed slot.
type Hold struct {
	Token  string
	ShopID uuid.UUID
	Range  schedule.TimeRange
	keys   []string
}

type RedisHoldStore struct {
	client      *redis.Client
	granularity time.Duration
	ttl         time.Duration
}

func NewRedisHoldStore(client *redis.Client, granularity, ttl time.Duration) *RedisHoldStore {
	return &RedisHoldStore{
		client:      client,
		granularity: granularity,
		ttl:         ttl,
	}
}

// Acquire atomically claims the slot for the shop. ErrSlotHeld means a
// concurrent hold overlaps; exactly one of two racing callers ever wins.
func (s *RedisHoldStore) Acquire(ctx context.Context, shopID uuid.UUID, slot schedule.TimeRange) (*Hold, error) {
	token := uuid.NewString()
	keys := s.bucketKeys(shopID, slot)

	ok, err := claimScript.Run(ctx, s.client, keys, token, s.ttl.Milliseconds()).Int()
	if err != nil {
		return nil, errs.Wrap(err, "failed to claim slot hold")
	}
	if ok == 0 {
		return nil, ErrSlotHeld
	}

	return &Hold{Token: token, ShopID: shopID, Range: slot, keys: keys}, nil
}

// Release frees the hold's buckets. Releasing an already-expired hold is not
// an error; the TTL got there first.
func (s *RedisHoldStore) Release(ctx context.Context, hold *Hold) error {
	if hold == nil {
		return nil
	}
	if err := releaseScript.Run(ctx, s.client, hold.keys, hold.Token).Err(); err != nil {
		return errs.Wrap(err, "failed to release slot hold")
	}
	return nil
}

// HeldRanges lists the bucket intervals currently held for a shop within the
// window, so availability queries can exclude them.
func (s *RedisHoldStore) HeldRanges(ctx context.Context, shopID uuid.UUID, window schedule.TimeRange) ([]schedule.TimeRange, error) {
	keys := s.bucketKeys(shopID, window)
	if len(keys) == 0 {
		return nil, nil
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, errs.Wrap(err, "failed to read slot holds")
	}

	var held []schedule.TimeRange
	bucketStart := window.Start().Truncate(s.granularity)
	for i, v := range values {
		if v == nil {
			continue
		}
		start := bucketStart.Add(time.Duration(i) * s.granularity)
		held = append(held, schedule.MustTimeRange(start, start.Add(s.granularity)))
	}
	return held, nil
}

func (s *RedisHoldStore) bucketKeys(shopID uuid.UUID, slot schedule.TimeRange) []string {
	var keys []string
	for t := slot.Start().Truncate(s.granularity); t.Before(slot.End()); t = t.Add(s.granularity) {
		keys = append(keys, fmt.Sprintf("hold:%s:%d", shopID, t.Unix()))
	}
	return keys
}
