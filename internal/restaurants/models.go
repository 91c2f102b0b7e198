package restaurants

// Restaurant is a candidate record supplied by an external places lookup.
// PlaceID is the stable identifier for the physical place and is the join key
// for vote and verification state; every other field is display data we pass
// through untouched.
type Restaurant struct {
	PlaceID     string  `json:"place_id"`
	Name        string  `json:"name"`
	Vicinity    string  `json:"vicinity"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Rating      float64 `json:"rating"`
	RatingCount int     `json:"rating_count"`
	OpenNow     bool    `json:"open_now"`
}
