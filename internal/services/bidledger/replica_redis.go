package bidledger

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	replicaKeyPrefix = "auc:"
	timerKeyPrefix   = "auc_t:"
)

// redisReplicaStore keeps one hash per auction id. The hash has no expiry;
// a replica is only ever replaced by a newer event. The companion timer
// key's TTL drives the end-of-auction trigger via keyspace notifications.
type redisReplicaStore struct {
	rdc *redis.Client
	now func() time.Time
}

func NewRedisReplicaStore(rdc *redis.Client) ReplicaStore {
	return &redisReplicaStore{rdc: rdc, now: time.Now}
}

func (s *redisReplicaStore) Get(ctx context.Context, id string) (*Replica, error) {
	data, err := s.rdc.HGetAll(ctx, replicaKeyPrefix+id).Result()
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, ErrReplicaNotFound
	}

	rp, _ := strconv.ParseInt(data["rp"], 10, 64)
	ea, _ := strconv.ParseInt(data["ea"], 10, 64)
	return &Replica{
		ID:           id,
		Seller:       data["sid"],
		ReservePrice: rp,
		AuctionEnd:   time.Unix(ea, 0).UTC(),
		Finished:     data["fin"] == "1",
	}, nil
}

func (s *redisReplicaStore) Put(ctx context.Context, r *Replica) error {
	fin := "0"
	if r.Finished {
		fin = "1"
	}
	err := s.rdc.HSet(ctx, replicaKeyPrefix+r.ID,
		"sid", r.Seller,
		"rp", strconv.FormatInt(r.ReservePrice, 10),
		"ea", strconv.FormatInt(r.AuctionEnd.Unix(), 10),
		"fin", fin,
	).Err()
	if err != nil {
		return fmt.Errorf("store replica %s: %w", r.ID, err)
	}

	if ttl := r.AuctionEnd.Sub(s.now()); !r.Finished && ttl > 0 {
		if err := s.rdc.SetNX(ctx, timerKeyPrefix+r.ID, "1", ttl).Err(); err != nil {
			return fmt.Errorf("arm end timer %s: %w", r.ID, err)
		}
	}
	return nil
}

func (s *redisReplicaStore) MarkFinished(ctx context.Context, id string) error {
	if err := s.rdc.HSet(ctx, replicaKeyPrefix+id, "fin", "1").Err(); err != nil {
		return fmt.Errorf("mark replica %s finished: %w", id, err)
	}
	// drop a still-armed timer so an early stop does not re-trigger
	return s.rdc.Del(ctx, timerKeyPrefix+id).Err()
}
