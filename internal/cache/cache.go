// internal/cache/cache.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Rdb is the shared Redis client. It stays nil when Redis is not
// configured; callers must check before use.
var Rdb *redis.Client

// GameActionRecord captures one logged room action for the per-room
// history list in Redis.
type GameActionRecord struct {
	RoomCode      string                 `json:"roomCode"`
	ActionIndex   int                    `json:"actionIndex"`
	ActorID       uuid.UUID              `json:"actorId"`
	ActionType    string                 `json:"actionType"`
	ActionPayload map[string]interface{} `json:"actionPayload"`
	Timestamp     int64                  `json:"timestamp"`
}

// InitRedis connects the shared client using REDIS_HOST/REDIS_PORT.
// A failed ping leaves Rdb nil so the server runs without history.
func InitRedis(ctx context.Context) error {
	host := os.Getenv("REDIS_HOST")
	if host == "" {
		host = "localhost"
	}
	port := os.Getenv("REDIS_PORT")
	if port == "" {
		port = "6379"
	}

	client := redis.NewClient(&redis.Options{
		Addr: fmt.Sprintf("%s:%s", host, port),
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	Rdb = client
	logrus.Infof("Connected to Redis at %s:%s", host, port)
	return nil
}

// PublishGameAction appends the record to the room's action list and
// refreshes its expiry.
func PublishGameAction(ctx context.Context, rec GameActionRecord) error {
	if Rdb == nil {
		return fmt.Errorf("redis client not initialized")
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal action record: %w", err)
	}
	key := fmt.Sprintf("room:%s:actions", rec.RoomCode)
	if err := Rdb.RPush(ctx, key, data).Err(); err != nil {
		return fmt.Errorf("rpush %s: %w", key, err)
	}
	// Rooms are short-lived; keep history for a day at most.
	return Rdb.Expire(ctx, key, 24*time.Hour).Err()
}

// GameActions returns the logged history for a room in insertion order.
func GameActions(ctx context.Context, roomCode string) ([]GameActionRecord, error) {
	if Rdb == nil {
		return nil, fmt.Errorf("redis client not initialized")
	}
	key := fmt.Sprintf("room:%s:actions", roomCode)
	raw, err := Rdb.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("lrange %s: %w", key, err)
	}
	records := make([]GameActionRecord, 0, len(raw))
	for _, item := range raw {
		var rec GameActionRecord
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			logrus.Warnf("Skipping malformed action record in %s: %v", key, err)
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}
