package chatreconcile

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	redrepo "github.com/matchapp-io/match-service/internal/repo/redis"
)

type ChatQueue interface {
	Dequeue(ctx context.Context, max int) ([]redrepo.PendingChat, error)
	Enqueue(ctx context.Context, pending redrepo.PendingChat) error
}

type ChatGateway interface {
	CreateChat(ctx context.Context, user1ID, user2ID int64) (int64, error)
}

// Job retries chat provisioning for matches created while the chat
// service was unreachable. The chat service owns the match-to-chat
// linkage, so a successful retry needs no local write.
type Job struct {
	queue     ChatQueue
	gateway   ChatGateway
	batchSize int
	logger    *zap.Logger
}

func New(queue ChatQueue, gateway ChatGateway, batchSize int, logger *zap.Logger) *Job {
	if batchSize <= 0 {
		batchSize = 20
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Job{
		queue:     queue,
		gateway:   gateway,
		batchSize: batchSize,
		logger:    logger,
	}
}

// Run drains one batch from the pending queue. Pairs that still fail go
// back on the queue for the next pass.
func (j *Job) Run(ctx context.Context) error {
	if j.queue == nil || j.gateway == nil {
		return nil
	}

	pending, err := j.queue.Dequeue(ctx, j.batchSize)
	if err != nil {
		return fmt.Errorf("dequeue pending chats: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	provisioned := 0
	for _, entry := range pending {
		chatID, err := j.gateway.CreateChat(ctx, entry.User1ID, entry.User2ID)
		if err != nil {
			j.logger.Warn("chat retry failed, re-queueing",
				zap.Int64("match_id", entry.MatchID),
				zap.Error(err),
			)
			if qErr := j.queue.Enqueue(ctx, entry); qErr != nil {
				j.logger.Error("failed to re-queue pending chat", zap.Int64("match_id", entry.MatchID), zap.Error(qErr))
			}
			continue
		}

		provisioned++
		j.logger.Info("chat provisioned on retry",
			zap.Int64("match_id", entry.MatchID),
			zap.Int64("chat_id", chatID),
		)
	}

	if provisioned > 0 {
		j.logger.Info("chat reconcile pass completed", zap.Int("provisioned", provisioned))
	}
	return nil
}

// Start runs reconcile passes on the given interval until the context
// is cancelled.
func (j *Job) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := j.Run(ctx); err != nil {
				j.logger.Error("chat reconcile pass failed", zap.Error(err))
			}
		}
	}
}
