package entity

type RoomStatus string

const (
	StatusWaiting RoomStatus = "WAITING"
	StatusPlaying RoomStatus = "PLAYING"
)

// MaxRoomPlayers is the size of a match; rooms are strictly 1v1.
const MaxRoomPlayers = 2

// RoomPlayer is a player seated in a room. Nickname is the identity inside the room,
// ConnID only points at the socket the player currently uses and changes on reconnect.
type RoomPlayer struct {
	ConnID    string `json:"-"`
	Nickname  string `json:"nickname"`
	Rating    int    `json:"rating"`
	Ready     bool   `json:"ready"`
	Connected bool   `json:"connected"`
	Finished  bool   `json:"finished"`
}

type Room struct {
	ID      int64         `json:"id"`
	Title   string        `json:"title"`
	Host    string        `json:"host"`
	Players []*RoomPlayer `json:"players"`
	Status  RoomStatus    `json:"status"`
	// Match numbers each WAITING -> PLAYING transition of the room; zero before the first one.
	Match   int64         `json:"-"`
}

// RoomSummary is the lobby view of a room.
type RoomSummary struct {
	ID     int64      `json:"id"`
	Title  string     `json:"title"`
	Host   string     `json:"host"`
	Status RoomStatus `json:"status"`
	PCount int        `json:"pCount"`
}

func NewRoom(id int64, title, hostConnID, hostNickname string, hostRating int) *Room {
	return &Room{
		ID:     id,
		Title:  title,
		Host:   hostNickname,
		Status: StatusWaiting,
		Players: []*RoomPlayer{
			NewRoomPlayer(hostConnID, hostNickname, hostRating),
		},
	}
}

func NewRoomPlayer(connID, nickname string, rating int) *RoomPlayer {
	return &RoomPlayer{
		ConnID:    connID,
		Nickname:  nickname,
		Rating:    rating,
		Ready:     true,
		Connected: true,
	}
}

func (that *Room) IsWaiting() bool {
	return that.Status == StatusWaiting
}

func (that *Room) IsPlaying() bool {
	return that.Status == StatusPlaying
}

func (that *Room) IsFull() bool {
	return len(that.Players) >= MaxRoomPlayers
}

func (that *Room) IsEmpty() bool {
	return len(that.Players) == 0
}

// FindByNickname returns the seated player with the given nickname, connected or not.
func (that *Room) FindByNickname(nickname string) *RoomPlayer {
	for _, player := range that.Players {
		if player.Nickname == nickname {
			return player
		}
	}

	return nil
}

// FindByConn returns the connected player that uses connID.
// A player dropped from a live match keeps its stale ConnID but is not returned.
func (that *Room) FindByConn(connID string) *RoomPlayer {
	for _, player := range that.Players {
		if player.Connected && player.ConnID == connID {
			return player
		}
	}

	return nil
}

// Others returns every seated player that does not use connID.
func (that *Room) Others(connID string) []*RoomPlayer {
	others := make([]*RoomPlayer, 0, len(that.Players))
	for _, player := range that.Players {
		if player.ConnID != connID {
			others = append(others, player)
		}
	}

	return others
}

func (that *Room) RemovePlayer(nickname string) bool {
	for i, player := range that.Players {
		if player.Nickname == nickname {
			that.Players = append(that.Players[:i], that.Players[i+1:]...)
			return true
		}
	}

	return false
}

func (that *Room) ConnectedCount() int {
	count := 0
	for _, player := range that.Players {
		if player.Connected {
			count++
		}
	}

	return count
}

func (that *Room) HasConnected() bool {
	return that.ConnectedCount() > 0
}

// AllFinished reports whether every seated player has reported completion.
// Disconnected players that already finished still count.
func (that *Room) AllFinished() bool {
	if that.IsEmpty() {
		return false
	}

	for _, player := range that.Players {
		if !player.Finished {
			return false
		}
	}

	return true
}

func (that *Room) Summary() RoomSummary {
	return RoomSummary{
		ID:     that.ID,
		Title:  that.Title,
		Host:   that.Host,
		Status: that.Status,
		PCount: that.ConnectedCount(),
	}
}

// Clone returns a deep copy that can leave the registry without sharing state.
func (that *Room) Clone() *Room {
	clone := *that
	clone.Players = make([]*RoomPlayer, 0, len(that.Players))
	for _, player := range that.Players {
		p := *player
		clone.Players = append(clone.Players, &p)
	}

	return &clone
}
