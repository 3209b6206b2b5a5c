package domain

import "time"

// BookSnapshot is a point-in-time copy of one market's resting orders,
// published to the cache after every book mutation.
type BookSnapshot struct {
	Market    string    `json:"market"`
	Bids      []Order   `json:"bids"`
	Asks      []Order   `json:"asks"`
	Timestamp time.Time `json:"timestamp"`
}

func (s *BookSnapshot) DeepCopy() *BookSnapshot {
	if s == nil {
		return nil
	}
	cp := *s
	cp.Bids = append([]Order(nil), s.Bids...)
	cp.Asks = append([]Order(nil), s.Asks...)
	return &cp
}
