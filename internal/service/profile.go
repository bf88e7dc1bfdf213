package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rocketscienceinc/rhythmduel-backend/internal/apperror"
	"github.com/rocketscienceinc/rhythmduel-backend/internal/entity"
)

const ratingLookupTimeout = 2 * time.Second

var ErrInvalidProfile = errors.New("invalid profile")

type profileRepo interface {
	CreateOrUpdate(ctx context.Context, profile *entity.Profile) error
	GetByNickname(ctx context.Context, nickname string) (*entity.Profile, error)
}

// ProfileService reads and writes player profiles. The matchmaker only uses GetRating.
type ProfileService struct {
	logger        *slog.Logger
	profileRepo   profileRepo
	defaultRating int
}

func NewProfileService(logger *slog.Logger, profileRepo profileRepo, defaultRating int) *ProfileService {
	if defaultRating <= 0 {
		defaultRating = entity.DefaultRating
	}

	return &ProfileService{
		logger:        logger.With("component", "profile"),
		profileRepo:   profileRepo,
		defaultRating: defaultRating,
	}
}

// GetRating - returns the stored rating of the player, or the default rating when the
// profile is missing or the store is unavailable. Lookup failures are logged only.
func (that *ProfileService) GetRating(ctx context.Context, nickname string) int {
	log := that.logger.With("method", "GetRating", "nickname", nickname)

	ctx, cancel := context.WithTimeout(ctx, ratingLookupTimeout)
	defer cancel()

	profile, err := that.profileRepo.GetByNickname(ctx, nickname)
	if errors.Is(err, apperror.ErrProfileNotFound) {
		return that.defaultRating
	}

	if err != nil {
		log.Warn("rating lookup failed, using default", "error", err)
		return that.defaultRating
	}

	if profile.Rating <= 0 {
		return that.defaultRating
	}

	return profile.Rating
}

func (that *ProfileService) GetProfile(ctx context.Context, nickname string) (*entity.Profile, error) {
	profile, err := that.profileRepo.GetByNickname(ctx, nickname)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	return profile, nil
}

func (that *ProfileService) UpdateRating(ctx context.Context, nickname string, rating int) (*entity.Profile, error) {
	nickname = strings.TrimSpace(nickname)
	if nickname == "" || rating < 0 {
		return nil, ErrInvalidProfile
	}

	profile := &entity.Profile{
		Nickname:  nickname,
		Rating:    rating,
		UpdatedAt: time.Now().UTC(),
	}

	if err := that.profileRepo.CreateOrUpdate(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return profile, nil
}
