package core

import (
	"sort"
	"time"

	"github.com/emberhollow/tradepost/internal/domain"
)

// Book holds one market's resting orders, one price-time-ordered side
// each way: bids by price descending, asks by price ascending, ties
// broken by ascending submission sequence. Only open orders ever rest
// here; filled and cancelled orders are removed immediately.
type Book struct {
	Market domain.Market
	bids   []*domain.Order
	asks   []*domain.Order
}

func NewBook(market domain.Market) *Book {
	return &Book{Market: market}
}

// Insert places an order at its price-time position.
func (b *Book) Insert(o *domain.Order) {
	if o.Side == domain.Buy {
		i := sort.Search(len(b.bids), func(i int) bool {
			if b.bids[i].Price != o.Price {
				return b.bids[i].Price < o.Price
			}
			return b.bids[i].Seq > o.Seq
		})
		b.bids = append(b.bids, nil)
		copy(b.bids[i+1:], b.bids[i:])
		b.bids[i] = o
		return
	}
	i := sort.Search(len(b.asks), func(i int) bool {
		if b.asks[i].Price != o.Price {
			return b.asks[i].Price > o.Price
		}
		return b.asks[i].Seq > o.Seq
	})
	b.asks = append(b.asks, nil)
	copy(b.asks[i+1:], b.asks[i:])
	b.asks[i] = o
}

// Remove deletes the order with the given id from its side, if present.
func (b *Book) Remove(orderID string) bool {
	for i, o := range b.bids {
		if o.ID == orderID {
			b.bids = append(b.bids[:i], b.bids[i+1:]...)
			return true
		}
	}
	for i, o := range b.asks {
		if o.ID == orderID {
			b.asks = append(b.asks[:i], b.asks[i+1:]...)
			return true
		}
	}
	return false
}

// Opposing returns the side an incoming order matches against, best
// candidate first.
func (b *Book) Opposing(side domain.Side) []*domain.Order {
	if side == domain.Buy {
		return b.asks
	}
	return b.bids
}

// PopBest removes the head of the given slice's side after a full fill.
func (b *Book) PopBest(side domain.Side) {
	if side == domain.Buy {
		b.asks = b.asks[1:]
	} else {
		b.bids = b.bids[1:]
	}
}

func (b *Book) BidCount() int { return len(b.bids) }
func (b *Book) AskCount() int { return len(b.asks) }

// Orders returns every resting order, bids first, in book order.
func (b *Book) Orders() []*domain.Order {
	out := make([]*domain.Order, 0, len(b.bids)+len(b.asks))
	out = append(out, b.bids...)
	out = append(out, b.asks...)
	return out
}

// Snapshot copies the book for the cache and query surface.
func (b *Book) Snapshot() *domain.BookSnapshot {
	snap := &domain.BookSnapshot{
		Market:    b.Market.String(),
		Bids:      make([]domain.Order, len(b.bids)),
		Asks:      make([]domain.Order, len(b.asks)),
		Timestamp: time.Now(),
	}
	for i, o := range b.bids {
		snap.Bids[i] = *o
	}
	for i, o := range b.asks {
		snap.Asks[i] = *o
	}
	return snap
}

// crosses reports whether the incoming order's limit crosses the
// candidate's: a buy takes any ask at or below its limit, a sell takes
// any bid at or above.
func crosses(incoming, candidate *domain.Order) bool {
	if incoming.Side == domain.Buy {
		return incoming.Price >= candidate.Price
	}
	return incoming.Price <= candidate.Price
}
