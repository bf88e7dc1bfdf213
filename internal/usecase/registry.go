package usecase

import (
	"slices"
	"sync"

	"github.com/rocketscienceinc/rhythmduel-backend/internal/entity"
)

type JoinResult int

const (
	JoinNotFound JoinResult = iota
	JoinFull
	JoinReconnected
	JoinJoined
)

func (that JoinResult) String() string {
	switch that {
	case JoinNotFound:
		return "not_found"
	case JoinFull:
		return "full"
	case JoinReconnected:
		return "reconnected"
	case JoinJoined:
		return "joined"
	default:
		return "unknown"
	}
}

// JoinOutcome describes a join. Room is a snapshot taken after the join, nil on JoinNotFound.
// Started is set when the join seated the second player and moved the room to PLAYING;
// Room.Match then identifies this match.
type JoinOutcome struct {
	Result  JoinResult
	Room    *entity.Room
	Started bool
}

// LeaveOutcome describes what a leave did to the room of the connection.
type LeaveOutcome struct {
	Found  bool
	RoomID int64
	// Room is a snapshot after the leave, nil when the room was deleted.
	Room    *entity.Room
	Deleted bool
	// Dropped is set when the player stays seated as disconnected in a PLAYING room.
	Dropped bool
	// Downgraded is set when the room went back to WAITING; Remaining must be told.
	Downgraded bool
	Remaining  *entity.RoomPlayer
}

type FinishOutcome struct {
	Found   bool
	Member  bool
	Room    *entity.Room
	Deleted bool
}

// RoomRegistry owns every active room and the room id counter.
// All methods are safe for concurrent use and hand out snapshots, never the stored rooms.
type RoomRegistry struct {
	mu        sync.Mutex
	lastID    int64
	lastMatch int64
	rooms     map[int64]*entity.Room
	order     []int64
}

func NewRoomRegistry() *RoomRegistry {
	return &RoomRegistry{
		rooms: make(map[int64]*entity.Room),
	}
}

// CreateRoom - opens a WAITING room with the host seated.
func (that *RoomRegistry) CreateRoom(connID, title, nickname string, rating int) *entity.Room {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.lastID++
	room := entity.NewRoom(that.lastID, title, connID, nickname, rating)

	that.rooms[room.ID] = room
	that.order = append(that.order, room.ID)

	return room.Clone()
}

// FindJoinable - returns the oldest WAITING room with a free seat.
// Rooms already holding nickname and rooms nobody is connected to are skipped.
func (that *RoomRegistry) FindJoinable(nickname string) (*entity.Room, bool) {
	that.mu.Lock()
	defer that.mu.Unlock()

	for _, id := range that.order {
		room := that.rooms[id]
		if !room.IsWaiting() || room.IsFull() || !room.HasConnected() {
			continue
		}

		if nickname != "" && room.FindByNickname(nickname) != nil {
			continue
		}

		return room.Clone(), true
	}

	return nil, false
}

// Join - seats a player. A nickname already seated in the room is a reconnect of that
// player whatever the room status: only its connection is replaced.
func (that *RoomRegistry) Join(roomID int64, connID, nickname string, rating int) JoinOutcome {
	that.mu.Lock()
	defer that.mu.Unlock()

	room, ok := that.rooms[roomID]
	if !ok {
		return JoinOutcome{Result: JoinNotFound}
	}

	if player := room.FindByNickname(nickname); player != nil {
		player.ConnID = connID
		player.Connected = true

		return JoinOutcome{Result: JoinReconnected, Room: room.Clone()}
	}

	if room.IsFull() {
		return JoinOutcome{Result: JoinFull, Room: room.Clone()}
	}

	room.Players = append(room.Players, entity.NewRoomPlayer(connID, nickname, rating))

	started := false
	if room.IsFull() && room.IsWaiting() {
		room.Status = entity.StatusPlaying
		that.lastMatch++
		room.Match = that.lastMatch
		for _, player := range room.Players {
			player.Finished = false
		}
		started = true
	}

	return JoinOutcome{Result: JoinJoined, Room: room.Clone(), Started: started}
}

// Leave - takes the connection out of its room. In a PLAYING room with keepIfPlaying the
// player stays seated as disconnected so it can reconnect; otherwise it is removed.
// A second call for the same connection finds nothing.
func (that *RoomRegistry) Leave(connID string, keepIfPlaying bool) LeaveOutcome {
	that.mu.Lock()
	defer that.mu.Unlock()

	room, player := that.findByConnLocked(connID)
	if room == nil {
		return LeaveOutcome{}
	}

	outcome := LeaveOutcome{Found: true, RoomID: room.ID}

	if room.IsPlaying() && keepIfPlaying {
		player.Connected = false
		outcome.Dropped = true
		outcome.Room = room.Clone()

		return outcome
	}

	wasPlaying := room.IsPlaying()
	room.RemovePlayer(player.Nickname)

	if room.IsEmpty() {
		that.deleteLocked(room.ID)
		outcome.Deleted = true

		return outcome
	}

	remaining := room.Players[0]
	room.Status = entity.StatusWaiting
	remaining.Finished = false
	if room.Host == player.Nickname {
		room.Host = remaining.Nickname
	}

	if wasPlaying {
		outcome.Downgraded = true
		p := *remaining
		outcome.Remaining = &p
	}

	outcome.Room = room.Clone()

	return outcome
}

// Finish - records the completion report of the connection's player and deletes the room
// once every seated player has reported.
func (that *RoomRegistry) Finish(roomID int64, connID string) FinishOutcome {
	that.mu.Lock()
	defer that.mu.Unlock()

	room, ok := that.rooms[roomID]
	if !ok {
		return FinishOutcome{}
	}

	player := room.FindByConn(connID)
	if player == nil {
		return FinishOutcome{Found: true, Room: room.Clone()}
	}

	player.Finished = true

	if room.AllFinished() {
		that.deleteLocked(room.ID)
		return FinishOutcome{Found: true, Member: true, Room: room.Clone(), Deleted: true}
	}

	return FinishOutcome{Found: true, Member: true, Room: room.Clone()}
}

func (that *RoomRegistry) Room(roomID int64) (*entity.Room, bool) {
	that.mu.Lock()
	defer that.mu.Unlock()

	room, ok := that.rooms[roomID]
	if !ok {
		return nil, false
	}

	return room.Clone(), true
}

// RoomOf - returns the room where connID is a connected player.
func (that *RoomRegistry) RoomOf(connID string) (*entity.Room, bool) {
	that.mu.Lock()
	defer that.mu.Unlock()

	room, _ := that.findByConnLocked(connID)
	if room == nil {
		return nil, false
	}

	return room.Clone(), true
}

// RoomList - lobby view in arrival order.
func (that *RoomRegistry) RoomList() []entity.RoomSummary {
	that.mu.Lock()
	defer that.mu.Unlock()

	list := make([]entity.RoomSummary, 0, len(that.order))
	for _, id := range that.order {
		list = append(list, that.rooms[id].Summary())
	}

	return list
}

// Sweep - deletes every room without a connected player and returns their ids.
func (that *RoomRegistry) Sweep() []int64 {
	that.mu.Lock()
	defer that.mu.Unlock()

	var deleted []int64
	for _, id := range slices.Clone(that.order) {
		if !that.rooms[id].HasConnected() {
			that.deleteLocked(id)
			deleted = append(deleted, id)
		}
	}

	return deleted
}

func (that *RoomRegistry) Len() int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return len(that.rooms)
}

func (that *RoomRegistry) findByConnLocked(connID string) (*entity.Room, *entity.RoomPlayer) {
	for _, id := range that.order {
		room := that.rooms[id]
		if player := room.FindByConn(connID); player != nil {
			return room, player
		}
	}

	return nil, nil
}

func (that *RoomRegistry) deleteLocked(roomID int64) {
	delete(that.rooms, roomID)
	that.order = slices.DeleteFunc(that.order, func(id int64) bool {
		return id == roomID
	})
}
