package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rocketscienceinc/rhythmduel-backend/internal/apperror"
	"github.com/rocketscienceinc/rhythmduel-backend/internal/entity"
)

const (
	DefaultRankingLimit = 10
	MaxRankingLimit     = 100
)

type scoreRepo interface {
	Submit(ctx context.Context, score *entity.Score) (int64, error)
	Top(ctx context.Context, songID, diffKey string, limit int) ([]entity.RankEntry, error)
}

type ScoreService struct {
	scoreRepo scoreRepo
}

func NewScoreService(scoreRepo scoreRepo) *ScoreService {
	return &ScoreService{
		scoreRepo: scoreRepo,
	}
}

// Submit - validates the score and stores it if it is the player's best on that chart.
func (that *ScoreService) Submit(ctx context.Context, score *entity.Score) (int64, error) {
	score.Nickname = strings.TrimSpace(score.Nickname)
	score.DiffKey = entity.DiffKey(score.DiffKey)

	if score.Nickname == "" || score.SongID == "" || score.DiffKey == "" || score.Score < 0 {
		return 0, apperror.ErrInvalidScore
	}

	best, err := that.scoreRepo.Submit(ctx, score)
	if err != nil {
		return 0, fmt.Errorf("failed to submit score: %w", err)
	}

	return best, nil
}

// Ranking - returns the top of a chart; limit is clamped to [1, MaxRankingLimit].
func (that *ScoreService) Ranking(ctx context.Context, songID, diffKey string, limit int) ([]entity.RankEntry, error) {
	switch {
	case limit <= 0:
		limit = DefaultRankingLimit
	case limit > MaxRankingLimit:
		limit = MaxRankingLimit
	}

	entries, err := that.scoreRepo.Top(ctx, songID, entity.DiffKey(diffKey), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get ranking: %w", err)
	}

	return entries, nil
}
