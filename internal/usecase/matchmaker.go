package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/rocketscienceinc/rhythmduel-backend/internal/apperror"
	"github.com/rocketscienceinc/rhythmduel-backend/internal/catalog"
	"github.com/rocketscienceinc/rhythmduel-backend/internal/entity"
)

// DefaultStartDelay is the lead time between the match being formed and the song starting.
// It covers the rating lookups and the client-side loading and countdown.
const DefaultStartDelay = 21 * time.Second

type notifier interface {
	Send(connID string, action Action, payload any)
	Broadcast(action Action, payload any)
}

type ratingGateway interface {
	GetRating(ctx context.Context, nickname string) int
}

type songPicker interface {
	RandomPick() catalog.Pick
}

// Matchmaker routes connection events to the room registry and emits the resulting events.
// The registry transition and the events it causes are issued under one lock, so every
// connection sees the events of a room in the order the registry accepted them.
type Matchmaker struct {
	logger   *slog.Logger
	registry *RoomRegistry
	ratings  ratingGateway
	songs    songPicker
	notifier notifier

	startDelay time.Duration
	now        func() time.Time

	mu sync.Mutex
}

func NewMatchmaker(
	logger *slog.Logger,
	registry *RoomRegistry,
	ratings ratingGateway,
	songs songPicker,
	notifier notifier,
	startDelay time.Duration,
) *Matchmaker {
	if startDelay <= 0 {
		startDelay = DefaultStartDelay
	}

	return &Matchmaker{
		logger:     logger.With("component", "matchmaker"),
		registry:   registry,
		ratings:    ratings,
		songs:      songs,
		notifier:   notifier,
		startDelay: startDelay,
		now:        time.Now,
	}
}

// Dispatch - handles one inbound event of connID.
func (that *Matchmaker) Dispatch(ctx context.Context, connID string, event Event) error {
	var err error

	switch event.Action {
	case ActionRequestRoomList:
		that.handleRoomList(connID)
	case ActionCreateRoom:
		err = that.handleCreateRoom(ctx, connID, event.Payload)
	case ActionJoinRoom:
		err = that.handleJoinRoom(ctx, connID, event.Payload)
	case ActionQuickMatch:
		err = that.handleQuickMatch(ctx, connID, event.Payload)
	case ActionSendScore:
		err = that.handleSendScore(connID, event.Payload)
	case ActionGameOver:
		err = that.handleGameOver(connID, event.Payload)
	case ActionLeaveRoom:
		that.leave(connID, false)
	default:
		return fmt.Errorf("%w: %s", apperror.ErrUnknownAction, event.Action)
	}

	if errors.Is(err, apperror.ErrMalformedEvent) {
		that.notifier.Send(connID, ActionErrorMsg, MsgMalformed)
	}

	if err != nil {
		return fmt.Errorf("failed to handle %s: %w", event.Action, err)
	}

	return nil
}

// Disconnect - the transport lost connID. A player in a live match keeps its seat.
func (that *Matchmaker) Disconnect(connID string) {
	that.leave(connID, true)
}

// Reap - deletes rooms nobody is connected to and refreshes the lobby.
func (that *Matchmaker) Reap() int {
	that.mu.Lock()
	defer that.mu.Unlock()

	deleted := that.registry.Sweep()
	if len(deleted) > 0 {
		that.logger.Info("reaped abandoned rooms", "method", "Reap", "roomIDs", deleted)
		that.broadcastRoomListLocked()
	}

	return len(deleted)
}

func (that *Matchmaker) RoomList() []entity.RoomSummary {
	return that.registry.RoomList()
}

func (that *Matchmaker) handleRoomList(connID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.notifier.Send(connID, ActionUpdateRoomList, that.registry.RoomList())
}

func (that *Matchmaker) handleCreateRoom(ctx context.Context, connID string, payload json.RawMessage) error {
	var req createRoomRequest
	if err := decode(payload, &req); err != nil {
		return err
	}

	req.Nickname = strings.TrimSpace(req.Nickname)
	if req.Nickname == "" {
		return fmt.Errorf("%w: nickname is required", apperror.ErrMalformedEvent)
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = req.Nickname + "'s room"
	}

	that.createRoom(connID, title, req.Nickname, that.resolveRating(ctx, req.Nickname, req.Rating))

	return nil
}

func (that *Matchmaker) createRoom(connID, title, nickname string, rating int) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.detachLocked(connID, 0)

	room := that.registry.CreateRoom(connID, title, nickname, rating)

	that.logger.Info("room created", "method", "createRoom", "roomID", room.ID, "connID", connID, "nickname", nickname)

	that.notifier.Send(connID, ActionRoomJoined, RoomJoinedPayload{RoomID: room.ID, RoomData: room, IsHost: true})
	that.broadcastRoomListLocked()
}

func (that *Matchmaker) handleJoinRoom(ctx context.Context, connID string, payload json.RawMessage) error {
	var req joinRoomRequest
	if err := decode(payload, &req); err != nil {
		return err
	}

	req.Nickname = strings.TrimSpace(req.Nickname)
	if req.Nickname == "" || req.RoomID <= 0 {
		return fmt.Errorf("%w: roomId and nickname are required", apperror.ErrMalformedEvent)
	}

	roomID := int64(req.RoomID)

	// the seat may change hands while the lookup runs, so it is resolved even for
	// a reconnect; the registry ignores it when the nickname is already seated
	rating := entity.DefaultRating
	if _, ok := that.registry.Room(roomID); ok {
		rating = that.resolveRating(ctx, req.Nickname, req.Rating)
	}

	outcome := that.joinRoom(connID, roomID, req.Nickname, rating)

	switch outcome.Result {
	case JoinNotFound:
		return apperror.ErrRoomNotFound
	case JoinFull:
		return apperror.ErrRoomFull
	}

	if outcome.Started {
		that.startGame(ctx, outcome.Room)
	}

	return nil
}

func (that *Matchmaker) joinRoom(connID string, roomID int64, nickname string, rating int) JoinOutcome {
	log := that.logger.With("method", "joinRoom", "roomID", roomID, "connID", connID, "nickname", nickname)

	that.mu.Lock()
	defer that.mu.Unlock()

	// a rejected join leaves the connection where it was
	if room, ok := that.registry.Room(roomID); ok && (room.FindByNickname(nickname) != nil || !room.IsFull()) {
		that.detachLocked(connID, roomID)
	}

	outcome := that.registry.Join(roomID, connID, nickname, rating)

	switch outcome.Result {
	case JoinNotFound:
		that.notifier.Send(connID, ActionErrorMsg, msgRoomNotFound)
	case JoinFull:
		that.notifier.Send(connID, ActionErrorMsg, msgRoomFull)
	case JoinReconnected:
		log.Info("player reconnected", "status", outcome.Room.Status)
		that.notifier.Send(connID, ActionRoomJoined, RoomJoinedPayload{
			RoomID:   roomID,
			RoomData: outcome.Room,
			IsHost:   outcome.Room.Host == nickname,
		})
	case JoinJoined:
		log.Info("player joined", "started", outcome.Started)
		that.notifier.Send(connID, ActionRoomJoined, RoomJoinedPayload{
			RoomID:   roomID,
			RoomData: outcome.Room,
			IsHost:   outcome.Room.Host == nickname,
		})

		for _, other := range outcome.Room.Others(connID) {
			if other.Connected {
				that.notifier.Send(other.ConnID, ActionPlayerEntered, PlayerEnteredPayload{Nickname: nickname, Rating: rating})
			}
		}

		that.broadcastRoomListLocked()
	}

	return outcome
}

// startGame - sends every player of a freshly formed match its own start payload,
// carrying the rating of its opponent. Nothing is sent when the match was broken up
// or replaced by another one while the ratings were looked up.
func (that *Matchmaker) startGame(ctx context.Context, room *entity.Room) {
	log := that.logger.With("method", "startGame", "roomID", room.ID, "match", room.Match)

	pick := that.songs.RandomPick()

	ratings := make(map[string]int, len(room.Players))
	for _, player := range room.Players {
		ratings[player.Nickname] = that.ratings.GetRating(ctx, player.Nickname)
	}

	startTime := that.now().Add(that.startDelay).UnixMilli()

	that.mu.Lock()
	defer that.mu.Unlock()

	current, ok := that.registry.Room(room.ID)
	if !ok || !current.IsPlaying() || current.Match != room.Match {
		log.Warn("room changed before the game could start")
		return
	}

	for _, player := range current.Players {
		if !player.Connected {
			continue
		}

		opponentRP := entity.DefaultRating
		for _, opponent := range current.Others(player.ConnID) {
			if rating, found := ratings[opponent.Nickname]; found {
				opponentRP = rating
			}
		}

		that.notifier.Send(player.ConnID, ActionGameStart, GameStartPayload{
			SongFolder: pick.Song.ID,
			SongTitle:  pick.Song.Title,
			SongArtist: pick.Song.Artist,
			DiffKey:    pick.DiffKey,
			StartTime:  startTime,
			OpponentRP: opponentRP,
		})
	}

	log.Info("game started", "song", pick.Song.ID, "diffKey", pick.DiffKey, "startTime", startTime)
}

func (that *Matchmaker) handleQuickMatch(ctx context.Context, connID string, payload json.RawMessage) error {
	var req quickMatchRequest
	if err := decode(payload, &req); err != nil {
		return err
	}

	req.Nickname = strings.TrimSpace(req.Nickname)
	if req.Nickname == "" {
		return fmt.Errorf("%w: nickname is required", apperror.ErrMalformedEvent)
	}

	if that.suggestRoom(connID, req.Nickname) {
		return nil
	}

	that.createRoom(connID, quickMatchTitle, req.Nickname, that.resolveRating(ctx, req.Nickname, req.Rating))

	return nil
}

// suggestRoom - tells the connection which room to join; the client joins on its own.
func (that *Matchmaker) suggestRoom(connID, nickname string) bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	room, ok := that.registry.FindJoinable(nickname)
	if !ok {
		return false
	}

	that.notifier.Send(connID, ActionQuickMatchFound, room.ID)

	return true
}

func (that *Matchmaker) handleSendScore(connID string, payload json.RawMessage) error {
	var ref roomRef
	if err := decode(payload, &ref); err != nil {
		return err
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	room, ok := that.registry.Room(int64(ref.RoomID))
	if !ok {
		return nil
	}

	for _, other := range room.Others(connID) {
		if other.Connected {
			that.notifier.Send(other.ConnID, ActionOpponentUpdate, payload)
		}
	}

	return nil
}

func (that *Matchmaker) handleGameOver(connID string, payload json.RawMessage) error {
	var req gameOverRequest
	if err := decode(payload, &req); err != nil {
		return err
	}

	log := that.logger.With("method", "handleGameOver", "roomID", req.RoomID, "connID", connID)

	that.mu.Lock()
	defer that.mu.Unlock()

	room, ok := that.registry.Room(int64(req.RoomID))
	if !ok {
		return apperror.ErrRoomNotFound
	}

	if room.FindByConn(connID) == nil {
		return apperror.ErrNotInRoom
	}

	for _, other := range room.Others(connID) {
		if other.Connected {
			that.notifier.Send(other.ConnID, ActionOpponentFinished, OpponentFinishedPayload{FinishType: req.FinishType})
		}
	}

	outcome := that.registry.Finish(room.ID, connID)
	if outcome.Deleted {
		log.Info("match completed, room deleted")
		that.broadcastRoomListLocked()
	}

	return nil
}

func (that *Matchmaker) leave(connID string, keepIfPlaying bool) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.leaveLocked(connID, keepIfPlaying)
}

func (that *Matchmaker) leaveLocked(connID string, keepIfPlaying bool) {
	outcome := that.registry.Leave(connID, keepIfPlaying)
	if !outcome.Found {
		return
	}

	that.logger.Info("player left room",
		"method", "leave",
		"roomID", outcome.RoomID,
		"connID", connID,
		"dropped", outcome.Dropped,
		"deleted", outcome.Deleted,
		"downgraded", outcome.Downgraded,
	)

	if outcome.Downgraded && outcome.Remaining.Connected {
		that.notifier.Send(outcome.Remaining.ConnID, ActionOpponentLeft, nil)
	}

	that.broadcastRoomListLocked()
}

// detachLocked - takes connID out of any room other than keepRoomID,
// so a connection is never seated in two rooms.
func (that *Matchmaker) detachLocked(connID string, keepRoomID int64) {
	room, ok := that.registry.RoomOf(connID)
	if !ok || room.ID == keepRoomID {
		return
	}

	that.leaveLocked(connID, false)
}

func (that *Matchmaker) broadcastRoomListLocked() {
	that.notifier.Broadcast(ActionUpdateRoomList, that.registry.RoomList())
}

func (that *Matchmaker) resolveRating(ctx context.Context, nickname string, supplied *int) int {
	if supplied != nil && *supplied > 0 {
		return *supplied
	}

	return that.ratings.GetRating(ctx, nickname)
}
