package handler

import (
	"errors"
	"fmt"

	"dinehalal/internal/restaurants"
)

// VerifyRequest carries one candidate restaurant for verification.
type VerifyRequest struct {
	PlaceID     string  `json:"place_id"`
	Name        string  `json:"name"`
	Vicinity    string  `json:"vicinity"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Rating      float64 `json:"rating"`
	RatingCount int     `json:"rating_count"`
	OpenNow     bool    `json:"open_now"`
}

func (r VerifyRequest) Validate() error {
	if r.PlaceID == "" {
		return errors.New("place_id is required")
	}
	if r.Name == "" {
		return errors.New("name is required")
	}
	return nil
}

func (r VerifyRequest) Restaurant() restaurants.Restaurant {
	return restaurants.Restaurant{
		PlaceID:     r.PlaceID,
		Name:        r.Name,
		Vicinity:    r.Vicinity,
		Latitude:    r.Latitude,
		Longitude:   r.Longitude,
		Rating:      r.Rating,
		RatingCount: r.RatingCount,
		OpenNow:     r.OpenNow,
	}
}

// BatchVerifyRequest is a bare JSON array of candidates.
type BatchVerifyRequest []VerifyRequest

func (b BatchVerifyRequest) Validate() error {
	if len(b) == 0 {
		return errors.New("at least one restaurant is required")
	}
	for i, r := range b {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("restaurant %d: %w", i, err)
		}
	}
	return nil
}

func (b BatchVerifyRequest) Restaurants() []restaurants.Restaurant {
	out := make([]restaurants.Restaurant, len(b))
	for i, r := range b {
		out[i] = r.Restaurant()
	}
	return out
}
