package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/rocketscienceinc/rhythmduel-backend/internal/apperror"
	"github.com/rocketscienceinc/rhythmduel-backend/internal/entity"
	"github.com/rocketscienceinc/rhythmduel-backend/internal/service"
)

type Handlers interface {
	PingHandler(w http.ResponseWriter, _ *http.Request)

	SubmitScore(w http.ResponseWriter, r *http.Request)
	Ranking(w http.ResponseWriter, r *http.Request)
	GetProfile(w http.ResponseWriter, r *http.Request)
	UpdateProfile(w http.ResponseWriter, r *http.Request)
	ListRooms(w http.ResponseWriter, _ *http.Request)
}

type scoreService interface {
	Submit(ctx context.Context, score *entity.Score) (int64, error)
	Ranking(ctx context.Context, songID, diffKey string, limit int) ([]entity.RankEntry, error)
}

type profileService interface {
	GetProfile(ctx context.Context, nickname string) (*entity.Profile, error)
	UpdateRating(ctx context.Context, nickname string, rating int) (*entity.Profile, error)
}

type lobby interface {
	RoomList() []entity.RoomSummary
}

type handlers struct {
	logger         *slog.Logger
	scoreService   scoreService
	profileService profileService
	lobby          lobby
}

func NewHandlers(logger *slog.Logger, scoreService scoreService, profileService profileService, lobby lobby) Handlers {
	return &handlers{
		logger:         logger.With("component", "rest"),
		scoreService:   scoreService,
		profileService: profileService,
		lobby:          lobby,
	}
}

func (that *handlers) PingHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("pong")); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
}

type submitScoreResponse struct {
	Best int64 `json:"best"`
}

func (that *handlers) SubmitScore(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "SubmitScore")

	var score entity.Score
	if err := json.NewDecoder(r.Body).Decode(&score); err != nil {
		that.errorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	best, err := that.scoreService.Submit(r.Context(), &score)
	if errors.Is(err, apperror.ErrInvalidScore) {
		that.errorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err != nil {
		log.Error("failed to submit score", "nickname", score.Nickname, "error", err)
		that.errorResponse(w, "Failed to submit score", http.StatusInternalServerError)
		return
	}

	that.jsonResponse(w, submitScoreResponse{Best: best}, http.StatusOK)
}

func (that *handlers) Ranking(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "Ranking")

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		var err error
		if limit, err = strconv.Atoi(raw); err != nil {
			that.errorResponse(w, "Invalid limit", http.StatusBadRequest)
			return
		}
	}

	entries, err := that.scoreService.Ranking(r.Context(), r.PathValue("songId"), r.PathValue("diffKey"), limit)
	if err != nil {
		log.Error("failed to get ranking", "error", err)
		that.errorResponse(w, "Failed to get ranking", http.StatusInternalServerError)
		return
	}

	if entries == nil {
		entries = []entity.RankEntry{}
	}

	that.jsonResponse(w, entries, http.StatusOK)
}

func (that *handlers) GetProfile(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "GetProfile")

	profile, err := that.profileService.GetProfile(r.Context(), r.PathValue("nickname"))
	if errors.Is(err, apperror.ErrProfileNotFound) {
		that.errorResponse(w, "Profile not found", http.StatusNotFound)
		return
	}

	if err != nil {
		log.Error("failed to get profile", "error", err)
		that.errorResponse(w, "Failed to get profile", http.StatusInternalServerError)
		return
	}

	that.jsonResponse(w, profile, http.StatusOK)
}

type updateProfileRequest struct {
	Rating int `json:"rating"`
}

func (that *handlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "UpdateProfile")

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		that.errorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	profile, err := that.profileService.UpdateRating(r.Context(), r.PathValue("nickname"), req.Rating)
	if errors.Is(err, service.ErrInvalidProfile) {
		that.errorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err != nil {
		log.Error("failed to update profile", "error", err)
		that.errorResponse(w, "Failed to update profile", http.StatusInternalServerError)
		return
	}

	that.jsonResponse(w, profile, http.StatusOK)
}

func (that *handlers) ListRooms(w http.ResponseWriter, _ *http.Request) {
	that.jsonResponse(w, that.lobby.RoomList(), http.StatusOK)
}

func (that *handlers) jsonResponse(w http.ResponseWriter, data any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		that.logger.Error("failed to encode response", "error", err)
	}
}

func (that *handlers) errorResponse(w http.ResponseWriter, message string, status int) {
	that.jsonResponse(w, map[string]string{"error": message}, status)
}
