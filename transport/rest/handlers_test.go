package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/rhythmduel-backend/internal/apperror"
	"github.com/rocketscienceinc/rhythmduel-backend/internal/entity"
	"github.com/rocketscienceinc/rhythmduel-backend/internal/service"
)

var errRedisDown = errors.New("redis down")

type mockScoreService struct {
	mock.Mock
}

func (that *mockScoreService) Submit(ctx context.Context, score *entity.Score) (int64, error) {
	args := that.Called(ctx, score)
	return args.Get(0).(int64), args.Error(1)
}

func (that *mockScoreService) Ranking(ctx context.Context, songID, diffKey string, limit int) ([]entity.RankEntry, error) {
	args := that.Called(ctx, songID, diffKey, limit)
	entries, _ := args.Get(0).([]entity.RankEntry)
	return entries, args.Error(1)
}

type mockProfileService struct {
	mock.Mock
}

func (that *mockProfileService) GetProfile(ctx context.Context, nickname string) (*entity.Profile, error) {
	args := that.Called(ctx, nickname)
	profile, _ := args.Get(0).(*entity.Profile)
	return profile, args.Error(1)
}

func (that *mockProfileService) UpdateRating(ctx context.Context, nickname string, rating int) (*entity.Profile, error) {
	args := that.Called(ctx, nickname, rating)
	profile, _ := args.Get(0).(*entity.Profile)
	return profile, args.Error(1)
}

type staticLobby []entity.RoomSummary

func (that staticLobby) RoomList() []entity.RoomSummary {
	return that
}

type fixture struct {
	scores   *mockScoreService
	profiles *mockProfileService
	router   http.Handler
}

func newFixture(lobby staticLobby) *fixture {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	scores := &mockScoreService{}
	profiles := &mockProfileService{}

	return &fixture{
		scores:   scores,
		profiles: profiles,
		router:   Routes(logger, NewHandlers(logger, scores, profiles, lobby)),
	}
}

func (that *fixture) do(method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	that.router.ServeHTTP(rec, req)

	return rec
}

func TestHandlers_Ping(t *testing.T) {
	rec := newFixture(nil).do(http.MethodGet, "/ping", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pong", rec.Body.String())
}

func TestHandlers_SubmitScore(t *testing.T) {
	t.Run("Returns the best score", func(t *testing.T) {
		// Given: a score service that keeps the best score
		f := newFixture(nil)
		f.scores.On("Submit", mock.Anything, &entity.Score{Nickname: "alice", SongID: "neon_rush", DiffKey: "hard", Score: 900}).
			Return(int64(1200), nil).
			Once()

		// When: posting a score
		rec := f.do(http.MethodPost, "/api/scores", `{"nickname":"alice","songId":"neon_rush","diffKey":"hard","score":900}`)

		// Then: the best score comes back
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"best":1200}`, rec.Body.String())
		f.scores.AssertExpectations(t)
	})

	t.Run("Rejects an invalid score", func(t *testing.T) {
		f := newFixture(nil)
		f.scores.On("Submit", mock.Anything, mock.Anything).Return(int64(0), apperror.ErrInvalidScore).Once()

		rec := f.do(http.MethodPost, "/api/scores", `{"nickname":"alice"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Rejects a broken body", func(t *testing.T) {
		f := newFixture(nil)

		rec := f.do(http.MethodPost, "/api/scores", `{`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		f.scores.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything)
	})

	t.Run("Returns 500 if the store fails", func(t *testing.T) {
		f := newFixture(nil)
		f.scores.On("Submit", mock.Anything, mock.Anything).Return(int64(0), errRedisDown).Once()

		rec := f.do(http.MethodPost, "/api/scores", `{"nickname":"alice","songId":"neon_rush","diffKey":"hard","score":1}`)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestHandlers_Ranking(t *testing.T) {
	t.Run("Passes the path and limit to the service", func(t *testing.T) {
		f := newFixture(nil)
		f.scores.On("Ranking", mock.Anything, "neon_rush", "hard", 3).
			Return([]entity.RankEntry{{Rank: 1, Nickname: "bob", Score: 1500}}, nil).
			Once()

		rec := f.do(http.MethodGet, "/api/rankings/neon_rush/hard?limit=3", "")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[{"rank":1,"nickname":"bob","score":1500}]`, rec.Body.String())
	})

	t.Run("Returns an empty list rather than null", func(t *testing.T) {
		f := newFixture(nil)
		f.scores.On("Ranking", mock.Anything, "neon_rush", "easy", 0).Return(nil, nil).Once()

		rec := f.do(http.MethodGet, "/api/rankings/neon_rush/easy", "")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, rec.Body.String())
	})

	t.Run("Rejects a non numeric limit", func(t *testing.T) {
		rec := newFixture(nil).do(http.MethodGet, "/api/rankings/neon_rush/hard?limit=ten", "")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandlers_Profile(t *testing.T) {
	t.Run("Returns a stored profile", func(t *testing.T) {
		f := newFixture(nil)
		f.profiles.On("GetProfile", mock.Anything, "alice").
			Return(&entity.Profile{Nickname: "alice", Rating: 1400}, nil).
			Once()

		rec := f.do(http.MethodGet, "/api/profiles/alice", "")

		require.Equal(t, http.StatusOK, rec.Code)
		var profile entity.Profile
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &profile))
		assert.Equal(t, 1400, profile.Rating)
	})

	t.Run("Returns 404 for an unknown nickname", func(t *testing.T) {
		f := newFixture(nil)
		f.profiles.On("GetProfile", mock.Anything, "ghost").
			Return(nil, apperror.ErrProfileNotFound).
			Once()

		rec := f.do(http.MethodGet, "/api/profiles/ghost", "")

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("Updates the rating", func(t *testing.T) {
		f := newFixture(nil)
		f.profiles.On("UpdateRating", mock.Anything, "alice", 1550).
			Return(&entity.Profile{Nickname: "alice", Rating: 1550}, nil).
			Once()

		rec := f.do(http.MethodPut, "/api/profiles/alice", `{"rating":1550}`)

		require.Equal(t, http.StatusOK, rec.Code)
		f.profiles.AssertExpectations(t)
	})

	t.Run("Rejects an invalid rating", func(t *testing.T) {
		f := newFixture(nil)
		f.profiles.On("UpdateRating", mock.Anything, "alice", -3).
			Return(nil, service.ErrInvalidProfile).
			Once()

		rec := f.do(http.MethodPut, "/api/profiles/alice", `{"rating":-3}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandlers_ListRooms(t *testing.T) {
	f := newFixture(staticLobby{{ID: 1, Title: "duel", Host: "alice", Status: entity.StatusWaiting, PCount: 1}})

	rec := f.do(http.MethodGet, "/api/rooms", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"id":1,"title":"duel","host":"alice","status":"WAITING","pCount":1}]`, rec.Body.String())
}
