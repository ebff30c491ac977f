// Package leaderboard keeps the bounded high-score list.
package leaderboard

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/verte-zerg/cyberdefender/internal/model"
)

// Key is the storage slot holding the serialized entries.
const Key = "cyberDefenderLeaderboard"

// DateLayout formats LeaderboardEntry.Date.
const DateLayout = "2006-01-02"

// KV is the persistence the leaderboard needs.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Board reads and records high scores. Failures never reach the caller: a
// bad read is an empty board and a failed write is dropped.
type Board struct {
	kv       KV
	capacity int
	logger   *zap.Logger
	now      func() time.Time
}

// New returns a board holding at most capacity entries.
func New(kv KV, capacity int, logger *zap.Logger) *Board {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Board{kv: kv, capacity: capacity, logger: logger, now: time.Now}
}

// Read returns the stored entries, best first.
func (b *Board) Read(ctx context.Context) []model.LeaderboardEntry {
	raw, ok, err := b.kv.Get(ctx, Key)
	if err != nil {
		b.logger.Warn("failed to read leaderboard", zap.Error(err))
		return []model.LeaderboardEntry{}
	}
	if !ok || raw == "" {
		return []model.LeaderboardEntry{}
	}
	var entries []model.LeaderboardEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		b.logger.Warn("discarding corrupt leaderboard", zap.Error(err))
		return []model.LeaderboardEntry{}
	}
	if entries == nil {
		return []model.LeaderboardEntry{}
	}
	return entries
}

// Record adds a score. Empty nicknames and negative scores are ignored.
func (b *Board) Record(ctx context.Context, nickname string, score int) {
	if nickname == "" || score < 0 {
		b.logger.Debug("leaderboard entry rejected", zap.String("nickname", nickname), zap.Int("score", score))
		return
	}
	entry := model.LeaderboardEntry{
		Nickname: nickname,
		Score:    score,
		Date:     b.now().Format(DateLayout),
	}
	entries := Insert(b.Read(ctx), entry, b.capacity)
	data, err := json.Marshal(entries)
	if err != nil {
		b.logger.Error("failed to encode leaderboard", zap.Error(err))
		return
	}
	if err := b.kv.Put(ctx, Key, string(data)); err != nil {
		b.logger.Warn("failed to save leaderboard", zap.Error(err))
		return
	}
	b.logger.Info("leaderboard updated", zap.String("nickname", nickname), zap.Int("score", score))
}

// Clear removes every entry.
func (b *Board) Clear(ctx context.Context) error {
	return b.kv.Delete(ctx, Key)
}

// Insert appends entry, sorts by score descending keeping insertion order on
// ties, and truncates to capacity. entries is not modified.
func Insert(entries []model.LeaderboardEntry, entry model.LeaderboardEntry, capacity int) []model.LeaderboardEntry {
	out := make([]model.LeaderboardEntry, 0, len(entries)+1)
	out = append(out, entries...)
	out = append(out, entry)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	if capacity > 0 && len(out) > capacity {
		out = out[:capacity]
	}
	return out
}
