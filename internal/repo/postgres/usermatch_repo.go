package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/matchapp-io/match-service/internal/domain/model"
	"github.com/matchapp-io/match-service/internal/domain/pair"
)

// UserMatchRepo persists the per-pair acknowledgement ledger. Pairs are
// stored in canonical order, same convention as MatchRepo.
type UserMatchRepo struct {
	pool *pgxpool.Pool
}

func NewUserMatchRepo(pool *pgxpool.Pool) *UserMatchRepo {
	return &UserMatchRepo{pool: pool}
}

func (r *UserMatchRepo) ListByUserID(ctx context.Context, userID int64) ([]model.UserMatch, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return []model.UserMatch{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, user1_id, user2_id, created_at, updated_at
FROM user_matches
WHERE user1_id = $1 OR user2_id = $1
ORDER BY updated_at DESC, id DESC
`, userID)
	if err != nil {
		return nil, fmt.Errorf("list user matches: %w", err)
	}
	defer rows.Close()

	items := make([]model.UserMatch, 0)
	for rows.Next() {
		var um model.UserMatch
		if err := rows.Scan(&um.ID, &um.User1ID, &um.User2ID, &um.CreatedAt, &um.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan user match: %w", err)
		}
		items = append(items, um)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate user matches: %w", rows.Err())
	}

	return items, nil
}

// MarkSeen upserts the pair's ledger row: inserts it on first sight,
// refreshes updated_at on every later call.
func (r *UserMatchRepo) MarkSeen(ctx context.Context, userA, userB int64) (*model.UserMatch, error) {
	if !pair.Valid(userA, userB) {
		return nil, fmt.Errorf("invalid pair")
	}
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	user1, user2 := pair.Canonical(userA, userB)

	var um model.UserMatch
	err := r.pool.QueryRow(ctx, `
INSERT INTO user_matches (user1_id, user2_id, created_at, updated_at)
VALUES ($1, $2, NOW(), NOW())
ON CONFLICT (user1_id, user2_id)
DO UPDATE SET updated_at = NOW()
RETURNING id, user1_id, user2_id, created_at, updated_at
`, user1, user2).Scan(&um.ID, &um.User1ID, &um.User2ID, &um.CreatedAt, &um.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("mark pair seen: %w", err)
	}

	return &um, nil
}
