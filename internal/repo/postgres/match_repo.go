package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/matchapp-io/match-service/internal/domain/model"
	"github.com/matchapp-io/match-service/internal/domain/pair"
)

// ErrDuplicatePair is returned by Create when the pair already has a
// match row. The unique constraint on the canonical pair enforces the
// one-row-per-pair invariant; hitting it is a normal outcome.
var ErrDuplicatePair = errors.New("match already exists for pair")

type MatchRepo struct {
	pool *pgxpool.Pool
}

func NewMatchRepo(pool *pgxpool.Pool) *MatchRepo {
	return &MatchRepo{pool: pool}
}

func (r *MatchRepo) Create(ctx context.Context, userA, userB int64, createdAt time.Time) (*model.Match, error) {
	if !pair.Valid(userA, userB) {
		return nil, fmt.Errorf("invalid match payload")
	}
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	user1, user2 := pair.Canonical(userA, userB)

	var m model.Match
	err := r.pool.QueryRow(ctx, `
INSERT INTO matches (
	user1_id,
	user2_id,
	view1,
	view2,
	created_at
) VALUES ($1, $2, FALSE, FALSE, $3)
ON CONFLICT (user1_id, user2_id) DO NOTHING
RETURNING id, user1_id, user2_id, view1, view2, created_at
`, user1, user2, createdAt.UTC()).Scan(&m.ID, &m.User1ID, &m.User2ID, &m.View1, &m.View2, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDuplicatePair
		}
		return nil, fmt.Errorf("create match: %w", err)
	}

	return &m, nil
}

// GetByID returns nil when no match has the given id.
func (r *MatchRepo) GetByID(ctx context.Context, id int64) (*model.Match, error) {
	if id <= 0 {
		return nil, fmt.Errorf("invalid match id")
	}
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	var m model.Match
	err := r.pool.QueryRow(ctx, `
SELECT id, user1_id, user2_id, view1, view2, created_at
FROM matches
WHERE id = $1
`, id).Scan(&m.ID, &m.User1ID, &m.User2ID, &m.View1, &m.View2, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get match by id: %w", err)
	}

	return &m, nil
}

func (r *MatchRepo) GetByUserID(ctx context.Context, userID int64) ([]model.Match, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return []model.Match{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, user1_id, user2_id, view1, view2, created_at
FROM matches
WHERE user1_id = $1 OR user2_id = $1
ORDER BY created_at DESC, id DESC
`, userID)
	if err != nil {
		return nil, fmt.Errorf("list matches by user: %w", err)
	}
	defer rows.Close()

	return scanMatches(rows)
}

// GetByPair resolves the match regardless of argument order. Returns nil
// when the pair has no match.
func (r *MatchRepo) GetByPair(ctx context.Context, userA, userB int64) (*model.Match, error) {
	if !pair.Valid(userA, userB) {
		return nil, fmt.Errorf("invalid pair")
	}
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	user1, user2 := pair.Canonical(userA, userB)

	var m model.Match
	err := r.pool.QueryRow(ctx, `
SELECT id, user1_id, user2_id, view1, view2, created_at
FROM matches
WHERE user1_id = $1 AND user2_id = $2
`, user1, user2).Scan(&m.ID, &m.User1ID, &m.User2ID, &m.View1, &m.View2, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get match by pair: %w", err)
	}

	return &m, nil
}

func (r *MatchRepo) GetAll(ctx context.Context) ([]model.Match, error) {
	if r.pool == nil {
		return []model.Match{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, user1_id, user2_id, view1, view2, created_at
FROM matches
ORDER BY created_at DESC, id DESC
`)
	if err != nil {
		return nil, fmt.Errorf("list all matches: %w", err)
	}
	defer rows.Close()

	return scanMatches(rows)
}

// UpdateViews overwrites only the view flags of the pair's match row.
// view1 and view2 refer to the canonical slots regardless of argument
// order. created_at is deliberately untouched. Returns false when the
// pair has no match row.
func (r *MatchRepo) UpdateViews(ctx context.Context, userA, userB int64, view1, view2 bool) (bool, error) {
	if !pair.Valid(userA, userB) {
		return false, fmt.Errorf("invalid pair")
	}
	if r.pool == nil {
		return false, fmt.Errorf("postgres pool is nil")
	}

	user1, user2 := pair.Canonical(userA, userB)

	result, err := r.pool.Exec(ctx, `
UPDATE matches
SET view1 = $3, view2 = $4
WHERE user1_id = $1 AND user2_id = $2
`, user1, user2, view1, view2)
	if err != nil {
		return false, fmt.Errorf("update match views: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

// Delete removes the match by id together with the pair's
// acknowledgement ledger row. Deleting an absent id is not an error.
func (r *MatchRepo) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("invalid match id")
	}
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	return WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		var user1, user2 int64
		err := tx.QueryRow(ctx, `
DELETE FROM matches
WHERE id = $1
RETURNING user1_id, user2_id
`, id).Scan(&user1, &user2)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("delete match: %w", err)
		}

		if _, err := tx.Exec(ctx, `
DELETE FROM user_matches
WHERE user1_id = $1 AND user2_id = $2
`, user1, user2); err != nil {
			return fmt.Errorf("delete user match ledger: %w", err)
		}

		return nil
	})
}

// TopUsersByMatchCount aggregates match counts per user, most matched
// first. Ties break on ascending user id so the ordering is stable.
func (r *MatchRepo) TopUsersByMatchCount(ctx context.Context, limit int) ([]model.RankEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	if r.pool == nil {
		return []model.RankEntry{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT user_id, COUNT(*) AS match_qty
FROM (
	SELECT user1_id AS user_id FROM matches
	UNION ALL
	SELECT user2_id FROM matches
) AS participants
GROUP BY user_id
ORDER BY match_qty DESC, user_id ASC
LIMIT $1
`, limit)
	if err != nil {
		return nil, fmt.Errorf("aggregate top matched users: %w", err)
	}
	defer rows.Close()

	entries := make([]model.RankEntry, 0, limit)
	for rows.Next() {
		var entry model.RankEntry
		if err := rows.Scan(&entry.UserID, &entry.MatchQty); err != nil {
			return nil, fmt.Errorf("scan rank entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate rank entries: %w", rows.Err())
	}

	return entries, nil
}

func scanMatches(rows pgx.Rows) ([]model.Match, error) {
	items := make([]model.Match, 0)
	for rows.Next() {
		var m model.Match
		if err := rows.Scan(&m.ID, &m.User1ID, &m.User2ID, &m.View1, &m.View2, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		items = append(items, m)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate matches: %w", rows.Err())
	}

	return items, nil
}
