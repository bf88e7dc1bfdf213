package repository

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/rhythmduel-backend/internal/entity"
)

type ScoreRepository interface {
	Submit(ctx context.Context, score *entity.Score) (int64, error)
	Top(ctx context.Context, songID, diffKey string, limit int) ([]entity.RankEntry, error)
}

type dbScore struct {
	client *redis.Client
}

// NewScoreRepository - keeps one sorted set per chart, member is the nickname.
func NewScoreRepository(client *redis.Client) ScoreRepository {
	return &dbScore{
		client: client,
	}
}

// Submit - stores the score only if it beats the player's best and returns the best score.
func (that *dbScore) Submit(ctx context.Context, score *entity.Score) (int64, error) {
	key := rankingKey(score.SongID, score.DiffKey)

	var best *redis.FloatCmd
	_, err := that.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZAddArgs(ctx, key, redis.ZAddArgs{
			GT:      true,
			Members: []redis.Z{{Score: float64(score.Score), Member: score.Nickname}},
		})
		best = pipe.ZScore(ctx, key, score.Nickname)

		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to submit score: %w", err)
	}

	return int64(best.Val()), nil
}

func (that *dbScore) Top(ctx context.Context, songID, diffKey string, limit int) ([]entity.RankEntry, error) {
	if limit <= 0 {
		return []entity.RankEntry{}, nil
	}

	members, err := that.client.ZRevRangeWithScores(ctx, rankingKey(songID, diffKey), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get ranking: %w", err)
	}

	entries := make([]entity.RankEntry, 0, len(members))
	for i, member := range members {
		nickname, _ := member.Member.(string)
		entries = append(entries, entity.RankEntry{
			Rank:     i + 1,
			Nickname: nickname,
			Score:    int64(member.Score),
		})
	}

	return entries, nil
}

func rankingKey(songID, diffKey string) string {
	return "ranking:" + songID + ":" + diffKey
}
