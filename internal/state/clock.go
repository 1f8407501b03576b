package state

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// Ticket identifies one asynchronous load request. Only the most recently
// issued ticket of a Clock is current.
type Ticket struct {
	ID  string
	Seq uint64
}

// Clock issues load tickets. Issuing a ticket or calling Invalidate makes
// every earlier ticket stale.
type Clock struct {
	seq atomic.Uint64
}

// Next issues a new current ticket.
func (c *Clock) Next() Ticket {
	return Ticket{ID: uuid.NewString(), Seq: c.seq.Add(1)}
}

// Invalidate makes all outstanding tickets stale.
func (c *Clock) Invalidate() {
	c.seq.Add(1)
}

// Current reports whether t is still the latest ticket.
func (c *Clock) Current(t Ticket) bool {
	return c.seq.Load() == t.Seq
}
