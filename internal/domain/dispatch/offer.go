package dispatch

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrUnknownOfferStatus = errors.New("unknown offer status")
	ErrOfferNotPending    = errors.New("offer is not pending")
)

// OfferStatus is the closed set of delivery offer states. Offers are never
// deleted; resolved ones remain as the dispatch audit trail.
type OfferStatus string

const (
	OfferPending   OfferStatus = "pending"
	OfferAccepted  OfferStatus = "accepted"
	OfferExpired   OfferStatus = "expired"
	OfferCancelled OfferStatus = "cancelled"
)

func (s OfferStatus) String() string {
	return string(s)
}

func (s OfferStatus) IsValid() bool {
	switch s {
	case OfferPending, OfferAccepted, OfferExpired, OfferCancelled:
		return true
	default:
		return false
	}
}

func ParseOfferStatus(raw string) (OfferStatus, error) {
	s := OfferStatus(raw)
	if !s.IsValid() {
		return "", ErrUnknownOfferStatus
	}
	return s, nil
}

// Offer is a time-boxed proposal of one delivery job to one courier.
type Offer struct {
	id        uuid.UUID
	orderID   uuid.UUID
	courierID uuid.UUID
	status    OfferStatus
	createdAt time.Time
	expiresAt time.Time
}

func NewOffer(orderID, courierID uuid.UUID, now time.Time, ttl time.Duration) *Offer {
	return &Offer{
		id:        uuid.New(),
		orderID:   orderID,
		courierID: courierID,
		status:    OfferPending,
		createdAt: now,
		expiresAt: now.Add(ttl),
	}
}

func ReconstructOffer(id, orderID, courierID uuid.UUID, status OfferStatus, createdAt, expiresAt time.Time) *Offer {
	return &Offer{
		id:        id,
		orderID:   orderID,
		courierID: courierID,
		status:    status,
		createdAt: createdAt,
		expiresAt: expiresAt,
	}
}

// IsDue reports whether a still-pending offer has passed its deadline. Only the
// expiration sweep converts due offers to expired.
func (o *Offer) IsDue(now time.Time) bool {
	return o.status == OfferPending && !now.Before(o.expiresAt)
}

func (o *Offer) IsResolved() bool {
	return o.status != OfferPending
}

func (o *Offer) ID() uuid.UUID { return o.id }
func (o *Offer) OrderID() uuid.UUID { return o.orderID }
func (o *Offer) CourierID() uuid.UUID { return o.courierID }
func (o *Offer) Status() OfferStatus { return o.status }
func (o *Offer) CreatedAt() time.Time { return o.createdAt }
func (o *Offer) ExpiresAt() time.Time { return o.expiresAt }
