package services

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const (
	onlineSetKey      = "pres:online"
	presenceKeyPrefix = "pres:user:"
)

// RedisPresence mirrors the in-memory presence table into Redis so other
// processes can answer "who is online" without reaching the socket server.
type RedisPresence struct {
	Client *redis.Client
}

// NewRedisPresence connects to addr and verifies the connection
func NewRedisPresence(ctx context.Context, addr string) (*RedisPresence, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to reach redis at %s: %w", addr, err)
	}
	log.WithField("addr", addr).Info("✅ Connected to Redis presence mirror")
	return &RedisPresence{Client: client}, nil
}

func presenceKey(userID string) string {
	return presenceKeyPrefix + userID
}

// MarkOnline stores the socket id for the user and adds them to the online set
func (rp *RedisPresence) MarkOnline(ctx context.Context, userID, socketID string) error {
	_, err := rp.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, presenceKey(userID), "socketId", socketID, "since", time.Now().UTC().Format(time.RFC3339))
		pipe.SAdd(ctx, onlineSetKey, userID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to mirror %s online: %w", userID, err)
	}
	return nil
}

// MarkOffline removes the user from the online set
func (rp *RedisPresence) MarkOffline(ctx context.Context, userID string) error {
	_, err := rp.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, presenceKey(userID))
		pipe.SRem(ctx, onlineSetKey, userID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to mirror %s offline: %w", userID, err)
	}
	return nil
}

// OnlineCount returns the size of the mirrored online set
func (rp *RedisPresence) OnlineCount(ctx context.Context) (int64, error) {
	return rp.Client.SCard(ctx, onlineSetKey).Result()
}

// Reset clears the online set left behind by a previous process
func (rp *RedisPresence) Reset(ctx context.Context) error {
	members, err := rp.Client.SMembers(ctx, onlineSetKey).Result()
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(members)+1)
	for _, id := range members {
		keys = append(keys, presenceKey(id))
	}
	keys = append(keys, onlineSetKey)
	return rp.Client.Del(ctx, keys...).Err()
}

func (rp *RedisPresence) Close() error {
	return rp.Client.Close()
}
