package entity

import (
	"path"
	"strings"
)

// Song is a playable track with the identifiers of its difficulty charts.
type Song struct {
	ID     string   `yaml:"id" json:"id"`
	Title  string   `yaml:"title" json:"title"`
	Artist string   `yaml:"artist" json:"artist"`
	Charts []string `yaml:"charts" json:"charts"`
}

// DiffKey derives the difficulty key from a chart identifier:
// "charts/Hard.json" -> "hard".
func DiffKey(chartID string) string {
	base := path.Base(strings.TrimSpace(chartID))
	base = strings.TrimSuffix(base, path.Ext(base))

	return strings.ToLower(base)
}
