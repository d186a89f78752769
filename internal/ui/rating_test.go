package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStarRating_DefaultMax(t *testing.T) {
	assert.Equal(t, DefaultMaxRating, NewStarRating(0, nil, nil).Max())
	assert.Equal(t, 10, NewStarRating(10, nil, nil).Max())
}

func TestStarRating_HoverAndRate(t *testing.T) {
	var committed []int
	r := NewStarRating(10, nil, func(v int) { committed = append(committed, v) })

	assert.Equal(t, "", r.Label())

	assert.True(t, r.Hover(4))
	assert.Equal(t, 5, r.Preview())
	assert.Equal(t, 5, r.Active())
	assert.Equal(t, "5", r.Label())
	assert.True(t, r.Full(4))
	assert.False(t, r.Full(5))

	r.Leave()
	assert.Equal(t, 0, r.Preview())
	assert.Equal(t, 0, r.Active())

	assert.True(t, r.Rate(7))
	assert.Equal(t, 8, r.Rating())
	assert.Equal(t, "8", r.Label())
	assert.Equal(t, []int{8}, committed)

	// preview wins over the committed value while hovering
	r.Hover(1)
	assert.Equal(t, 2, r.Active())
	r.Leave()
	assert.Equal(t, 8, r.Active())
}

func TestStarRating_OutOfRange(t *testing.T) {
	called := false
	r := NewStarRating(5, nil, func(int) { called = true })

	assert.False(t, r.Hover(-1))
	assert.False(t, r.Hover(5))
	assert.False(t, r.Rate(5))
	assert.False(t, called)
	assert.Equal(t, 0, r.Rating())
}

func TestStarRating_Labels(t *testing.T) {
	labels := []string{"Terrible", "Bad", "Okay", "Good", "Amazing"}
	r := NewStarRating(5, labels, nil)

	assert.Equal(t, "", r.Label())
	r.Rate(2)
	assert.Equal(t, "Okay", r.Label())
	r.Hover(4)
	assert.Equal(t, "Amazing", r.Label())

	// labels that do not match the star count fall back to numbers
	mismatched := NewStarRating(10, []string{"okay", "good", "amazing"}, nil)
	mismatched.Rate(2)
	assert.Equal(t, "3", mismatched.Label())
}

func TestStarRating_View(t *testing.T) {
	r := NewStarRating(10, nil, nil)
	r.Rate(5)
	r.Hover(8)

	assert.Equal(t, RatingView{Max: 10, Rating: 6, Preview: 9, Label: "9"}, r.View())
}
