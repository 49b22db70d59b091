package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/daily-stamp/internal/model"
)

const summaryKeyPrefix = "summary:"

// SummaryRepo keeps post-stamp summaries in Redis under a random token.
// Entries expire after TTL and are deleted on first read.
type SummaryRepo struct {
	RDB *redis.Client
	TTL time.Duration
}

func NewSummaryRepo(rdb *redis.Client, ttl time.Duration) *SummaryRepo {
	return &SummaryRepo{RDB: rdb, TTL: ttl}
}

// Save stores s and returns the token that retrieves it.
func (r *SummaryRepo) Save(ctx context.Context, s model.StampSummary) (string, error) {
	body, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	token := uuid.NewString()
	if err := r.RDB.Set(ctx, summaryKeyPrefix+token, body, r.TTL).Err(); err != nil {
		return "", err
	}
	return token, nil
}

// Take returns and removes the summary for token.  ok is false when the
// token is unknown or has expired.
func (r *SummaryRepo) Take(ctx context.Context, token string) (s model.StampSummary, ok bool, err error) {
	if _, err := uuid.Parse(token); err != nil {
		return s, false, nil
	}
	body, err := r.RDB.GetDel(ctx, summaryKeyPrefix+token).Bytes()
	if errors.Is(err, redis.Nil) {
		return s, false, nil
	}
	if err != nil {
		return s, false, err
	}
	if err := json.Unmarshal(body, &s); err != nil {
		return s, false, err
	}
	return s, true, nil
}
