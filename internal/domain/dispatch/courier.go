package dispatch

import (
	"github.com/google/uuid"
)

// Location is a courier's last reported position.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Courier availability is toggled by the courier's own heartbeat and by the
// dispatcher when an offer is accepted.
type Courier struct {
	id                uuid.UUID
	available         bool
	lastKnownLocation *Location
}

func ReconstructCourier(id uuid.UUID, available bool, loc *Location) *Courier {
	return &Courier{
		id:                id,
		available:         available,
		lastKnownLocation: loc,
	}
}

func (c *Courier) ID() uuid.UUID { return c.id }
func (c *Courier) Available() bool { return c.available }
func (c *Courier) Location() *Location { return c.lastKnownLocation }
