// Package redis persists recommendations as JSON documents with sorted-set indexes.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/Dsharma2002/FitGenie-AI/internal/domain"
	"github.com/Dsharma2002/FitGenie-AI/internal/persistence"
)

// Connect dials Redis and verifies the connection.
func Connect(ctx context.Context, addr string) (*goredis.Client, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, fmt.Errorf("missing redis address")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

// Store implements domain.RecommendationStore on Redis.
//
//	rec:{id}             JSON document
//	recs:user:{id}       sorted set of recommendation ids scored by created_at (µs)
//	recs:activity:{id}   same, per activity
type Store struct {
	rdb goredis.UniversalClient
}

// NewStore wraps an existing client.
func NewStore(rdb goredis.UniversalClient) *Store {
	return &Store{rdb: rdb}
}

func recordKey(id string) string { return "rec:" + id }

func userIndexKey(userID string) string { return "recs:user:" + userID }

func activityIndexKey(activityID string) string { return "recs:activity:" + activityID }

func score(ts time.Time) float64 { return float64(ts.UnixMicro()) }

// Insert writes the document and both index entries in one MULTI/EXEC.
func (s *Store) Insert(ctx context.Context, rec domain.Recommendation) (domain.Recommendation, error) {
	if strings.TrimSpace(rec.ID) == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	rec.CreatedAt = rec.CreatedAt.UTC().Truncate(time.Microsecond)

	raw, err := json.Marshal(rec)
	if err != nil {
		return domain.Recommendation{}, err
	}

	member := goredis.Z{Score: score(rec.CreatedAt), Member: rec.ID}
	_, err = s.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.SetNX(ctx, recordKey(rec.ID), raw, 0)
		pipe.ZAdd(ctx, userIndexKey(rec.UserID), member)
		pipe.ZAdd(ctx, activityIndexKey(rec.ActivityID), member)
		return nil
	})
	if err != nil {
		return domain.Recommendation{}, err
	}
	return rec, nil
}

// ListByActivity returns every recommendation for the activity, newest first.
func (s *Store) ListByActivity(ctx context.Context, activityID string) ([]domain.Recommendation, error) {
	ids, err := s.rdb.ZRevRange(ctx, activityIndexKey(activityID), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	return s.load(ctx, ids)
}

// ListByUser pages through a user's recommendations, newest first.
func (s *Store) ListByUser(ctx context.Context, userID string, cursor *domain.Cursor, limit int) ([]domain.Recommendation, *domain.Cursor, error) {
	limit = persistence.ClampLimit(limit)

	maxScore := "+inf"
	var cursorScore int64
	if cursor != nil {
		cursorScore = cursor.CreatedAt.UnixMicro()
		maxScore = strconv.FormatInt(cursorScore, 10)
	}

	// Entries sharing the cursor's score are filtered by id, so scan in batches until the page fills.
	ids := make([]string, 0, limit)
	batch := int64(limit + 1)
	for offset := int64(0); len(ids) < limit; {
		entries, err := s.rdb.ZRevRangeByScoreWithScores(ctx, userIndexKey(userID), &goredis.ZRangeBy{
			Max:    maxScore,
			Min:    "-inf",
			Offset: offset,
			Count:  batch,
		}).Result()
		if err != nil {
			return nil, nil, err
		}
		for _, entry := range entries {
			id, _ := entry.Member.(string)
			if cursor != nil && int64(entry.Score) == cursorScore && id >= cursor.ID {
				continue
			}
			ids = append(ids, id)
			if len(ids) == limit {
				break
			}
		}
		if int64(len(entries)) < batch {
			break
		}
		offset += int64(len(entries))
	}

	results, err := s.load(ctx, ids)
	if err != nil {
		return nil, nil, err
	}
	return results, persistence.NextCursor(results, limit), nil
}

func (s *Store) load(ctx context.Context, ids []string) ([]domain.Recommendation, error) {
	results := make([]domain.Recommendation, 0, len(ids))
	if len(ids) == 0 {
		return results, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = recordKey(id)
	}
	values, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	for i, value := range values {
		raw, ok := value.(string)
		if !ok {
			// Index entry without a document; skip it.
			continue
		}
		var rec domain.Recommendation
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, fmt.Errorf("decode %s: %w", keys[i], err)
		}
		results = append(results, rec)
	}
	return results, nil
}
