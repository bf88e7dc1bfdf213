package usecase

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/rocketscienceinc/rhythmduel-backend/internal/apperror"
	"github.com/rocketscienceinc/rhythmduel-backend/internal/entity"
)

type Action string

// inbound
const (
	ActionRequestRoomList Action = "request_room_list"
	ActionCreateRoom      Action = "create_room"
	ActionJoinRoom        Action = "join_room"
	ActionQuickMatch      Action = "quick_match"
	ActionSendScore       Action = "send_score"
	ActionGameOver        Action = "game_over"
	ActionLeaveRoom       Action = "leave_room"
)

// ActionDisconnect names the transport losing a connection. It is reported through
// Matchmaker.Disconnect only; Dispatch rejects it like any other unknown action.
const ActionDisconnect Action = "disconnect"

// outbound
const (
	ActionUpdateRoomList   Action = "update_room_list"
	ActionRoomJoined       Action = "room_joined"
	ActionPlayerEntered    Action = "player_entered"
	ActionErrorMsg         Action = "error_msg"
	ActionQuickMatchFound  Action = "quick_match_found"
	ActionGameStart        Action = "game_start"
	ActionOpponentUpdate   Action = "opponent_update"
	ActionOpponentFinished Action = "opponent_finished"
	ActionOpponentLeft     Action = "opponent_left"
)

// MsgMalformed is the error_msg text for an event that could not be decoded.
const MsgMalformed = "Malformed request."

const (
	msgRoomNotFound = "Room does not exist."
	msgRoomFull     = "Room is full."

	quickMatchTitle = "Quick Match"
)

// Event is one inbound event of a connection.
type Event struct {
	Action  Action
	Payload json.RawMessage
}

// RoomID accepts both 12 and "12" on the wire.
type RoomID int64

func (that *RoomID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}

	data = bytes.Trim(data, `"`)

	id, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("%w: room id %s", apperror.ErrMalformedEvent, data)
	}

	*that = RoomID(id)

	return nil
}

type createRoomRequest struct {
	Title    string `json:"title"`
	Nickname string `json:"nickname"`
	Rating   *int   `json:"rating,omitempty"`
}

type joinRoomRequest struct {
	RoomID   RoomID `json:"roomId"`
	Nickname string `json:"nickname"`
	Rating   *int   `json:"rating,omitempty"`
}

type quickMatchRequest struct {
	Nickname string `json:"nickname"`
	Rating   *int   `json:"rating,omitempty"`
}

// roomRef is the part of send_score read by the server; the rest is relayed untouched.
type roomRef struct {
	RoomID RoomID `json:"roomId"`
}

type gameOverRequest struct {
	RoomID     RoomID          `json:"roomId"`
	FinishType json.RawMessage `json:"finishType"`
}

type RoomJoinedPayload struct {
	RoomID   int64        `json:"roomId"`
	RoomData *entity.Room `json:"roomData"`
	IsHost   bool         `json:"isHost"`
}

type PlayerEnteredPayload struct {
	Nickname string `json:"nickname"`
	Rating   int    `json:"rating"`
}

type GameStartPayload struct {
	SongFolder string `json:"songFolder"`
	SongTitle  string `json:"songTitle"`
	SongArtist string `json:"songArtist"`
	DiffKey    string `json:"diffKey"`
	StartTime  int64  `json:"startTime"`
	OpponentRP int    `json:"opponentRP"`
}

type OpponentFinishedPayload struct {
	FinishType json.RawMessage `json:"finishType"`
}

func decode(payload json.RawMessage, v any) error {
	if len(payload) == 0 {
		return fmt.Errorf("%w: empty payload", apperror.ErrMalformedEvent)
	}

	if err := json.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("%w: %w", apperror.ErrMalformedEvent, err)
	}

	return nil
}
