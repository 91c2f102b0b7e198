package votes

// VoteData holds the community vote tally for a single restaurant. Unknown
// restaurants carry a zero tally rather than an error.
type VoteData struct {
	Upvotes   int `json:"upvotes"`
	Downvotes int `json:"downvotes"`
}

// Total returns the number of votes cast.
func (v VoteData) Total() int {
	return v.Upvotes + v.Downvotes
}

// ApprovalRatio returns the share of upvotes, or 0 when no votes exist.
func (v VoteData) ApprovalRatio() float64 {
	total := v.Total()
	if total == 0 {
		return 0
	}
	return float64(v.Upvotes) / float64(total)
}
