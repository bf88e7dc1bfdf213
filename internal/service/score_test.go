package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/rhythmduel-backend/internal/apperror"
	"github.com/rocketscienceinc/rhythmduel-backend/internal/entity"
)

type mockScoreRepo struct {
	mock.Mock
}

func (that *mockScoreRepo) Submit(ctx context.Context, score *entity.Score) (int64, error) {
	args := that.Called(ctx, score)
	return args.Get(0).(int64), args.Error(1)
}

func (that *mockScoreRepo) Top(ctx context.Context, songID, diffKey string, limit int) ([]entity.RankEntry, error) {
	args := that.Called(ctx, songID, diffKey, limit)
	entries, _ := args.Get(0).([]entity.RankEntry)
	return entries, args.Error(1)
}

func TestScoreService_Submit(t *testing.T) {
	ctx := context.Background()

	t.Run("Normalizes the diff key and returns the best score", func(t *testing.T) {
		// Given: a repository that already holds a better score
		repo := &mockScoreRepo{}
		repo.On("Submit", mock.Anything, mock.MatchedBy(func(s *entity.Score) bool {
			return s.DiffKey == "hard" && s.Nickname == "alice"
		})).Return(int64(990000), nil).Once()
		scoreService := NewScoreService(repo)

		// When: a score is submitted with a chart file name
		best, err := scoreService.Submit(ctx, &entity.Score{Nickname: "alice", SongID: "neon_rush", DiffKey: "Hard.json", Score: 800000})

		// Then: the best score is returned
		require.NoError(t, err)
		assert.Equal(t, int64(990000), best)
		repo.AssertExpectations(t)
	})

	t.Run("Rejects incomplete scores", func(t *testing.T) {
		repo := &mockScoreRepo{}
		scoreService := NewScoreService(repo)

		for _, score := range []*entity.Score{
			{SongID: "neon_rush", DiffKey: "hard", Score: 1},
			{Nickname: "alice", DiffKey: "hard", Score: 1},
			{Nickname: "alice", SongID: "neon_rush", Score: 1},
			{Nickname: "alice", SongID: "neon_rush", DiffKey: "hard", Score: -5},
		} {
			_, err := scoreService.Submit(ctx, score)
			require.ErrorIs(t, err, apperror.ErrInvalidScore)
		}

		repo.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything)
	})
}

func TestScoreService_Ranking(t *testing.T) {
	ctx := context.Background()

	t.Run("Uses the default limit", func(t *testing.T) {
		repo := &mockScoreRepo{}
		repo.On("Top", mock.Anything, "neon_rush", "hard", DefaultRankingLimit).
			Return([]entity.RankEntry{{Rank: 1, Nickname: "bob", Score: 10}}, nil).
			Once()
		scoreService := NewScoreService(repo)

		entries, err := scoreService.Ranking(ctx, "neon_rush", "hard", 0)

		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	t.Run("Clamps the limit", func(t *testing.T) {
		repo := &mockScoreRepo{}
		repo.On("Top", mock.Anything, "neon_rush", "hard", MaxRankingLimit).
			Return([]entity.RankEntry{}, nil).
			Once()
		scoreService := NewScoreService(repo)

		_, err := scoreService.Ranking(ctx, "neon_rush", "hard", 5000)

		require.NoError(t, err)
		repo.AssertExpectations(t)
	})
}
