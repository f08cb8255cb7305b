package publisher

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// OddsStream is the stream the websocket layer consumes.
const OddsStream = "odds.updates.basketball_nba"

// streamMaxLen keeps the stream bounded; consumers only care about recent
// refreshes.
const streamMaxLen = 256

// UpdateEvent is one odds refresh notification.
type UpdateEvent struct {
	GameCount int       `json:"gameCount"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// OddsPublisher publishes odds refresh events to a Redis stream.
type OddsPublisher struct {
	client *redis.Client
}

// NewOddsPublisher wraps an existing Redis client.
func NewOddsPublisher(client *redis.Client) *OddsPublisher {
	return &OddsPublisher{client: client}
}

// NotifyOddsUpdated publishes a refresh event. It satisfies the odds
// service's Notifier; publish failures are logged, never propagated, so a
// Redis outage cannot fail a refresh.
func (p *OddsPublisher) NotifyOddsUpdated(ctx context.Context, gameCount int, updatedAt time.Time) {
	if p == nil || p.client == nil {
		return
	}

	event := UpdateEvent{GameCount: gameCount, UpdatedAt: updatedAt}
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("[publisher] encoding update event: %v", err)
		return
	}

	err = p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: OddsStream,
		MaxLen: streamMaxLen,
		Approx: true,
		Values: map[string]interface{}{
			"data":      string(data),
			"timestamp": time.Now().Unix(),
		},
	}).Err()
	if err != nil {
		log.Printf("[publisher] publishing to %s: %v", OddsStream, err)
	}
}
