package domain

import (
	"strings"
)

// Market identifies one order book: an item traded at a location.
// Canonical string form is "ITEM@LOCATION".
type Market struct {
	Item     string
	Location string
}

func (m Market) String() string {
	return m.Item + "@" + m.Location
}

func (m Market) Valid() bool {
	return m.Item != "" && m.Location != ""
}

// ParseMarket parses the canonical "ITEM@LOCATION" form.
func ParseMarket(s string) (Market, error) {
	item, loc, ok := strings.Cut(s, "@")
	if !ok || item == "" || loc == "" {
		return Market{}, ErrValidation
	}
	return Market{Item: item, Location: loc}, nil
}
