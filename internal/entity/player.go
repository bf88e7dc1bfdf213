package entity

import "time"

// DefaultRating is the rating of a player without a stored profile.
const DefaultRating = 1000

type Profile struct {
	Nickname  string    `json:"nickname"`
	Rating    int       `json:"rating"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Score struct {
	Nickname string `json:"nickname"`
	SongID   string `json:"songId"`
	DiffKey  string `json:"diffKey"`
	Score    int64  `json:"score"`
}

type RankEntry struct {
	Rank     int    `json:"rank"`
	Nickname string `json:"nickname"`
	Score    int64  `json:"score"`
}
