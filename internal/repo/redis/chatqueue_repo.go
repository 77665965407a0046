package redis

import (
	"context"
	"encoding/json"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
)

const chatQueueKey = "chats:pending"

// PendingChat is a match whose chat provisioning failed at creation time
// and is waiting for a retry.
type PendingChat struct {
	MatchID int64 `json:"match_id"`
	User1ID int64 `json:"user1_id"`
	User2ID int64 `json:"user2_id"`
}

// ChatQueueRepo is the retry queue behind best-effort chat provisioning.
// Entries are pushed when the chat gateway fails during match creation
// and drained by the reconcile job.
type ChatQueueRepo struct {
	client *goredis.Client
}

func NewChatQueueRepo(client *goredis.Client) *ChatQueueRepo {
	return &ChatQueueRepo{client: client}
}

func (r *ChatQueueRepo) Enqueue(ctx context.Context, pending PendingChat) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if pending.MatchID <= 0 || pending.User1ID <= 0 || pending.User2ID <= 0 {
		return fmt.Errorf("invalid pending chat payload")
	}

	payload, err := json.Marshal(pending)
	if err != nil {
		return fmt.Errorf("marshal pending chat: %w", err)
	}

	if err := r.client.LPush(ctx, chatQueueKey, payload).Err(); err != nil {
		return fmt.Errorf("enqueue pending chat: %w", err)
	}

	return nil
}

// Dequeue pops up to max entries, oldest first. An empty queue returns
// an empty slice.
func (r *ChatQueueRepo) Dequeue(ctx context.Context, max int) ([]PendingChat, error) {
	if r.client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}
	if max <= 0 {
		max = 10
	}

	items := make([]PendingChat, 0, max)
	for i := 0; i < max; i++ {
		raw, err := r.client.RPop(ctx, chatQueueKey).Bytes()
		if err != nil {
			if err == goredis.Nil {
				break
			}
			return nil, fmt.Errorf("dequeue pending chat: %w", err)
		}

		var pending PendingChat
		if err := json.Unmarshal(raw, &pending); err != nil {
			return nil, fmt.Errorf("unmarshal pending chat: %w", err)
		}
		items = append(items, pending)
	}

	return items, nil
}

func (r *ChatQueueRepo) Len(ctx context.Context) (int64, error) {
	if r.client == nil {
		return 0, fmt.Errorf("redis client is nil")
	}

	n, err := r.client.LLen(ctx, chatQueueKey).Result()
	if err != nil {
		return 0, fmt.Errorf("pending chat queue length: %w", err)
	}

	return n, nil
}
