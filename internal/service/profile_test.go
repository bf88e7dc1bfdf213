package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/rhythmduel-backend/internal/apperror"
	"github.com/rocketscienceinc/rhythmduel-backend/internal/entity"
)

var errRedisDown = errors.New("redis down")

type mockProfileRepo struct {
	mock.Mock
}

func (that *mockProfileRepo) CreateOrUpdate(ctx context.Context, profile *entity.Profile) error {
	args := that.Called(ctx, profile)
	return args.Error(0)
}

func (that *mockProfileRepo) GetByNickname(ctx context.Context, nickname string) (*entity.Profile, error) {
	args := that.Called(ctx, nickname)
	profile, _ := args.Get(0).(*entity.Profile)
	return profile, args.Error(1)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestProfileService_GetRating(t *testing.T) {
	ctx := context.Background()

	t.Run("Returns the stored rating", func(t *testing.T) {
		// Given: a stored profile
		repo := &mockProfileRepo{}
		repo.On("GetByNickname", mock.Anything, "alice").
			Return(&entity.Profile{Nickname: "alice", Rating: 1420}, nil).
			Once()
		profileService := NewProfileService(testLogger(), repo, 1000)

		// When: looking up the rating
		rating := profileService.GetRating(ctx, "alice")

		// Then: the stored rating is returned
		assert.Equal(t, 1420, rating)
		repo.AssertExpectations(t)
	})

	t.Run("Returns the default rating when the profile is missing", func(t *testing.T) {
		repo := &mockProfileRepo{}
		repo.On("GetByNickname", mock.Anything, "ghost").
			Return(nil, apperror.ErrProfileNotFound).
			Once()
		profileService := NewProfileService(testLogger(), repo, 1000)

		assert.Equal(t, 1000, profileService.GetRating(ctx, "ghost"))
	})

	t.Run("Returns the default rating when the store fails", func(t *testing.T) {
		repo := &mockProfileRepo{}
		repo.On("GetByNickname", mock.Anything, "alice").
			Return(nil, errRedisDown).
			Once()
		profileService := NewProfileService(testLogger(), repo, 1000)

		assert.Equal(t, 1000, profileService.GetRating(ctx, "alice"))
	})

	t.Run("Falls back to entity.DefaultRating when no default is configured", func(t *testing.T) {
		repo := &mockProfileRepo{}
		repo.On("GetByNickname", mock.Anything, "alice").
			Return(&entity.Profile{Nickname: "alice", Rating: 0}, nil).
			Once()
		profileService := NewProfileService(testLogger(), repo, 0)

		assert.Equal(t, entity.DefaultRating, profileService.GetRating(ctx, "alice"))
	})
}

func TestProfileService_UpdateRating(t *testing.T) {
	ctx := context.Background()

	t.Run("Stores the new rating", func(t *testing.T) {
		// Given: a repository accepting writes
		repo := &mockProfileRepo{}
		repo.On("CreateOrUpdate", mock.Anything, mock.MatchedBy(func(p *entity.Profile) bool {
			return p.Nickname == "alice" && p.Rating == 1500
		})).Return(nil).Once()
		profileService := NewProfileService(testLogger(), repo, 1000)

		// When: updating the rating
		profile, err := profileService.UpdateRating(ctx, " alice ", 1500)

		// Then: the trimmed profile is stored
		require.NoError(t, err)
		assert.Equal(t, "alice", profile.Nickname)
		assert.False(t, profile.UpdatedAt.IsZero())
		repo.AssertExpectations(t)
	})

	t.Run("Rejects a negative rating", func(t *testing.T) {
		repo := &mockProfileRepo{}
		profileService := NewProfileService(testLogger(), repo, 1000)

		_, err := profileService.UpdateRating(ctx, "alice", -1)

		require.ErrorIs(t, err, ErrInvalidProfile)
		repo.AssertNotCalled(t, "CreateOrUpdate", mock.Anything, mock.Anything)
	})

	t.Run("Returns error if the store fails", func(t *testing.T) {
		repo := &mockProfileRepo{}
		repo.On("CreateOrUpdate", mock.Anything, mock.Anything).Return(errRedisDown).Once()
		profileService := NewProfileService(testLogger(), repo, 1000)

		profile, err := profileService.UpdateRating(ctx, "alice", 1200)

		require.ErrorIs(t, err, errRedisDown)
		assert.Nil(t, profile)
	})
}
