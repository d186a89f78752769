package ui

import (
	"strconv"
	"sync"
)

// DefaultMaxRating is the star count used when none is configured
const DefaultMaxRating = 5

// StarRating is a controlled star input. Hovering a star previews a value,
// selecting one commits it and reports it to the owner.
type StarRating struct {
	mu      sync.Mutex
	max     int
	labels  []string
	rating  int
	preview int
	onRate  func(int)
}

// NewStarRating creates a widget with max stars. labels are only used when
// there is exactly one per star.
func NewStarRating(max int, labels []string, onRate func(int)) *StarRating {
	if max < 1 {
		max = DefaultMaxRating
	}
	return &StarRating{
		max:    max,
		labels: labels,
		onRate: onRate,
	}
}

// Max returns the number of stars
func (s *StarRating) Max() int {
	return s.max
}

// Hover previews the value of star i (0-indexed)
func (s *StarRating) Hover(i int) bool {
	if i < 0 || i >= s.max {
		return false
	}
	s.mu.Lock()
	s.preview = i + 1
	s.mu.Unlock()
	return true
}

// Leave clears the preview
func (s *StarRating) Leave() {
	s.mu.Lock()
	s.preview = 0
	s.mu.Unlock()
}

// Rate commits the value of star i (0-indexed) and notifies the owner
func (s *StarRating) Rate(i int) bool {
	if i < 0 || i >= s.max {
		return false
	}
	s.mu.Lock()
	s.rating = i + 1
	onRate := s.onRate
	s.mu.Unlock()

	if onRate != nil {
		onRate(i + 1)
	}
	return true
}

// Rating returns the committed value, 0 when none
func (s *StarRating) Rating() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rating
}

// Preview returns the hover value, 0 when none
func (s *StarRating) Preview() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.preview
}

// Active is the preview when present, otherwise the committed value
func (s *StarRating) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeLocked()
}

func (s *StarRating) activeLocked() int {
	if s.preview != 0 {
		return s.preview
	}
	return s.rating
}

// Full reports whether star i renders filled
func (s *StarRating) Full(i int) bool {
	return s.Active() >= i+1
}

// Label is the text shown next to the stars
func (s *StarRating) Label() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	active := s.activeLocked()
	if len(s.labels) == s.max {
		if active == 0 {
			return ""
		}
		return s.labels[active-1]
	}
	if active == 0 {
		return ""
	}
	return strconv.Itoa(active)
}

// RatingView is the JSON shape of the widget
type RatingView struct {
	Max     int    `json:"max"`
	Rating  int    `json:"rating"`
	Preview int    `json:"preview"`
	Label   string `json:"label"`
}

// View snapshots the widget
func (s *StarRating) View() RatingView {
	return RatingView{
		Max:     s.max,
		Rating:  s.Rating(),
		Preview: s.Preview(),
		Label:   s.Label(),
	}
}
