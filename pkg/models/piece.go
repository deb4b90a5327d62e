package models

import (
	"strconv"
	"strings"
)

// Piece represents an artwork collected into the gallery
type Piece struct {
	ID       string `json:"_id,omitempty"`
	Title    string `json:"title" validate:"required"`
	Style    string `json:"style" validate:"required"`
	Artist   string `json:"artist,omitempty"`
	Year     int    `json:"year,omitempty" validate:"omitempty,min=0,max=9999"`
	URL      string `json:"url,omitempty" validate:"omitempty,url"`
	ImageURL string `json:"image_url,omitempty" validate:"omitempty,url"`
}

func (p *Piece) HasArtist() bool {
	return strings.TrimSpace(p.Artist) != ""
}

// Label returns "Title (Artist, Year)" with missing parts left out.
func (p *Piece) Label() string {
	var extra []string
	if p.HasArtist() {
		extra = append(extra, p.Artist)
	}
	if p.Year > 0 {
		extra = append(extra, strconv.Itoa(p.Year))
	}
	if len(extra) == 0 {
		return p.Title
	}
	return p.Title + " (" + strings.Join(extra, ", ") + ")"
}
