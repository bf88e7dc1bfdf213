package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rocketscienceinc/rhythmduel-backend/internal/entity"
)

//go:embed songs.yml
var defaultSongs []byte

var ErrEmptyCatalog = errors.New("catalog has no playable songs")

// Pick is the song and chart chosen for a match.
type Pick struct {
	Song    entity.Song
	ChartID string
	DiffKey string
}

type document struct {
	Songs []entity.Song `yaml:"songs"`
}

// Catalog is the static list of playable songs; it is never mutated after Load.
type Catalog struct {
	songs []entity.Song
}

// Load - reads the catalog from path, or the embedded default when path is empty.
func Load(path string) (*Catalog, error) {
	data := defaultSongs

	if path != "" {
		var err error
		if data, err = os.ReadFile(path); err != nil {
			return nil, fmt.Errorf("failed to read catalog file: %w", err)
		}
	}

	return Parse(data)
}

// Parse - decodes a YAML catalog, skipping songs without charts.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}

	return New(doc.Songs)
}

func New(songs []entity.Song) (*Catalog, error) {
	playable := make([]entity.Song, 0, len(songs))
	for _, song := range songs {
		if song.ID == "" || len(song.Charts) == 0 {
			continue
		}
		playable = append(playable, song)
	}

	if len(playable) == 0 {
		return nil, ErrEmptyCatalog
	}

	return &Catalog{songs: playable}, nil
}

func (that *Catalog) Songs() []entity.Song {
	songs := make([]entity.Song, len(that.songs))
	copy(songs, that.songs)

	return songs
}

// RandomPick - picks a song uniformly at random, then one of its charts uniformly at random.
func (that *Catalog) RandomPick() Pick {
	//nolint: gosec // song choice is not security sensitive
	song := that.songs[rand.IntN(len(that.songs))]
	chartID := song.Charts[rand.IntN(len(song.Charts))]

	return Pick{
		Song:    song,
		ChartID: chartID,
		DiffKey: entity.DiffKey(chartID),
	}
}
